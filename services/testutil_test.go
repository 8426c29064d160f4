package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"festival-registration-system/models"
	"festival-registration-system/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Event{},
		&models.EventContact{},
		&models.Registration{},
		&models.TeamMember{},
		&models.DownloadEvent{},
		&models.ContactMessage{},
	))
	return db
}

func seedGroupEvent(t *testing.T, db *gorm.DB) *models.Event {
	t.Helper()
	event := &models.Event{
		ID:            uuid.NewString(),
		Slug:          "robo-wars",
		Title:         "Robo Wars",
		Category:      models.CategoryTechnical,
		Mode:          models.ModeGroup,
		TeamSizeMin:   2,
		TeamSizeMax:   4,
		OnCampusDate:  "2026-03-14",
		OffCampusDate: "2026-03-15",
		Rules:         "Robots must weigh under 8kg\nNo projectile weapons",
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func seedIndividualEvent(t *testing.T, db *gorm.DB) *models.Event {
	t.Helper()
	event := &models.Event{
		ID:            uuid.NewString(),
		Slug:          "solo-quiz",
		Title:         "Solo Quiz",
		Category:      models.CategoryCultural,
		Mode:          models.ModeIndividual,
		TeamSizeMin:   1,
		TeamSizeMax:   1,
		OnCampusDate:  "2026-03-14",
		OffCampusDate: "2026-03-15",
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func newTestRegistrationService(t *testing.T, db *gorm.DB, artifacts storage.Store) *RegistrationService {
	t.Helper()
	log := zerolog.Nop()
	if artifacts == nil {
		store, err := storage.NewLocalStore(t.TempDir(), "http://localhost/files")
		require.NoError(t, err)
		artifacts = store
	}
	return NewRegistrationService(
		db,
		NewEventService(db, log),
		NewIdentityGenerator(db, "GDN"),
		NewTicketRenderer("Gradient Festival", ""),
		artifacts,
		nil,
		log,
		5*time.Second,
	)
}

func groupRequest(eventRef string) *CreateRegistrationRequest {
	return &CreateRegistrationRequest{
		EventRef:          eventRef,
		IsHomeInstitution: false,
		LeaderName:        "A. Kumar",
		LeaderEmail:       "a.kumar@example.edu",
		LeaderPhone:       "9876543210",
		LeaderCollege:     "Northfield Institute of Technology",
		TeamMembers: []TeamMemberRequest{
			{Name: "B. Rao", College: "Northfield Institute of Technology"},
		},
	}
}

// failingStore simulates an unavailable artifact store.
type failingStore struct{}

func (failingStore) Store(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	return "", errors.New("storage unavailable")
}

func (failingStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	return nil, storage.ErrObjectNotFound
}

func (failingStore) Exists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (failingStore) Delete(ctx context.Context, name string) (bool, error) {
	return false, nil
}
