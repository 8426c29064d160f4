// services/identity.go
package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"festival-registration-system/models"
)

const identityMaxAttempts = 10

// IdentityGenerator produces human-readable registration ids of the form
// PREFIX<year>-<4 digits>, e.g. GDN2026-0421. Uniqueness is checked by query
// only; the unique index on registrations.registration_id is the final
// arbiter, and a conflict there surfaces as a retryable durability error.
type IdentityGenerator struct {
	db     *gorm.DB
	prefix string

	// injectable for tests
	randInt func(n int) int
	now     func() time.Time
}

func NewIdentityGenerator(db *gorm.DB, prefix string) *IdentityGenerator {
	return &IdentityGenerator{
		db:      db,
		prefix:  prefix,
		randInt: rand.Intn,
		now:     time.Now,
	}
}

// Generate returns an id that is unused at the time of the check. It retries
// random suffixes up to a fixed bound, then falls back to a timestamp-derived
// suffix so a burst of collisions cannot loop forever.
func (g *IdentityGenerator) Generate(ctx context.Context) (string, error) {
	year := g.now().Year()

	for attempt := 0; attempt < identityMaxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%d-%04d", g.prefix, year, g.randInt(10000))
		taken, err := g.taken(ctx, candidate)
		if err != nil {
			return "", durabilityError(err, "failed to check registration id uniqueness")
		}
		if !taken {
			return candidate, nil
		}
	}

	// Nanosecond suffix; collides only if two requests hit this branch in
	// the same nanosecond, which the final check below still catches.
	fallback := fmt.Sprintf("%s%d-%d", g.prefix, year, g.now().UnixNano())
	taken, err := g.taken(ctx, fallback)
	if err != nil {
		return "", durabilityError(err, "failed to check registration id uniqueness")
	}
	if taken {
		return "", identityExhaustedError(fmt.Errorf("fallback id %s already taken", fallback))
	}
	return fallback, nil
}

func (g *IdentityGenerator) taken(ctx context.Context, id string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("registration_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
