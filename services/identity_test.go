package services

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festival-registration-system/models"
)

var registrationIDPattern = regexp.MustCompile(`^GDN\d{4}-\d{4}$`)

func TestIdentityGeneratorFormat(t *testing.T) {
	db := newTestDB(t)
	gen := NewIdentityGenerator(db, "GDN")

	id, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, registrationIDPattern, id)
	assert.Contains(t, id, fmt.Sprintf("GDN%d-", time.Now().Year()))
}

func TestIdentityGeneratorUniqueAcrossRun(t *testing.T) {
	db := newTestDB(t)
	event := seedIndividualEvent(t, db)
	gen := NewIdentityGenerator(db, "GDN")

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := gen.Generate(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[id], "generated id %s twice", id)
		seen[id] = true

		// claim the id so the next iteration's uniqueness check sees it
		require.NoError(t, db.Create(&models.Registration{
			ID:             uuid.NewString(),
			RegistrationID: id,
			EventID:        event.ID,
			LeaderName:     "Test",
			LeaderEmail:    "test@example.com",
			LeaderPhone:    "1234567",
		}).Error)
	}
}

func TestIdentityGeneratorFallsBackOnCollisions(t *testing.T) {
	db := newTestDB(t)
	event := seedIndividualEvent(t, db)
	gen := NewIdentityGenerator(db, "GDN")

	fixedNow := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixedNow }
	gen.randInt = func(n int) int { return 7 } // every random attempt collides

	require.NoError(t, db.Create(&models.Registration{
		ID:             uuid.NewString(),
		RegistrationID: "GDN2026-0007",
		EventID:        event.ID,
		LeaderName:     "Holder",
		LeaderEmail:    "holder@example.com",
		LeaderPhone:    "1234567",
	}).Error)

	id, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("GDN2026-%d", fixedNow.UnixNano()), id)
}

func TestIdentityGeneratorExhaustion(t *testing.T) {
	db := newTestDB(t)
	event := seedIndividualEvent(t, db)
	gen := NewIdentityGenerator(db, "GDN")

	fixedNow := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixedNow }
	gen.randInt = func(n int) int { return 7 }

	for _, id := range []string{
		"GDN2026-0007",
		fmt.Sprintf("GDN2026-%d", fixedNow.UnixNano()),
	} {
		require.NoError(t, db.Create(&models.Registration{
			ID:             uuid.NewString(),
			RegistrationID: id,
			EventID:        event.ID,
			LeaderName:     "Holder",
			LeaderEmail:    "holder@example.com",
			LeaderPhone:    "1234567",
		}).Error)
	}

	_, err := gen.Generate(context.Background())
	require.Error(t, err)
	we, ok := AsWorkflowError(err)
	require.True(t, ok)
	assert.Equal(t, KindIdentityExhausted, we.Kind)
}

func TestUniqueViolationDetection(t *testing.T) {
	db := newTestDB(t)
	event := seedIndividualEvent(t, db)

	first := &models.Registration{
		ID:             uuid.NewString(),
		RegistrationID: "GDN2026-1234",
		EventID:        event.ID,
		LeaderName:     "First",
		LeaderEmail:    "first@example.com",
		LeaderPhone:    "1234567",
	}
	require.NoError(t, db.Create(first).Error)

	dup := &models.Registration{
		ID:             uuid.NewString(),
		RegistrationID: "GDN2026-1234",
		EventID:        event.ID,
		LeaderName:     "Second",
		LeaderEmail:    "second@example.com",
		LeaderPhone:    "1234567",
	}
	err := db.Create(dup).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}
