// workers/download_tracker.go
package workers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"festival-registration-system/models"
)

const trackerBufferSize = 256

// DownloadTracker records ticket downloads off the request path. Track never
// blocks; when the buffer is full the event is dropped, which is acceptable
// for a pure analytics side channel.
type DownloadTracker struct {
	db     *gorm.DB
	log    zerolog.Logger
	events chan models.DownloadEvent
}

func NewDownloadTracker(db *gorm.DB, log zerolog.Logger) *DownloadTracker {
	return &DownloadTracker{
		db:     db,
		log:    log.With().Str("component", "download_tracker").Logger(),
		events: make(chan models.DownloadEvent, trackerBufferSize),
	}
}

// Track enqueues a download event without blocking the caller.
func (t *DownloadTracker) Track(registrationID, clientInfo string) {
	event := models.DownloadEvent{
		ID:             uuid.NewString(),
		RegistrationID: registrationID,
		ClientInfo:     clientInfo,
	}
	select {
	case t.events <- event:
	default:
		t.log.Warn().Str("registration_id", registrationID).Msg("download tracker buffer full, event dropped")
	}
}

// Start consumes the queue until ctx is cancelled, draining what is left
// before returning.
func (t *DownloadTracker) Start(ctx context.Context) {
	t.log.Info().Msg("download tracker started")
	for {
		select {
		case <-ctx.Done():
			t.drain()
			t.log.Info().Msg("download tracker stopped")
			return
		case event := <-t.events:
			t.persist(event)
		}
	}
}

func (t *DownloadTracker) drain() {
	for {
		select {
		case event := <-t.events:
			t.persist(event)
		default:
			return
		}
	}
}

func (t *DownloadTracker) persist(event models.DownloadEvent) {
	if err := t.db.Create(&event).Error; err != nil {
		t.log.Warn().Err(err).
			Str("registration_id", event.RegistrationID).
			Msg("failed to record download event")
	}
}
