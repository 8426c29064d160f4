package workers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"festival-registration-system/models"
)

func newTrackerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DownloadEvent{}))
	return db
}

func TestDownloadTrackerPersistsEvents(t *testing.T) {
	db := newTrackerDB(t)
	tracker := NewDownloadTracker(db, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tracker.Start(ctx)
		close(done)
	}()

	tracker.Track("GDN2026-0001", "test-agent")
	tracker.Track("GDN2026-0001", "another-agent")
	tracker.Track("GDN2026-0002", "test-agent")

	require.Eventually(t, func() bool {
		var count int64
		if err := db.Model(&models.DownloadEvent{}).Count(&count).Error; err != nil {
			return false
		}
		return count == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not stop after cancellation")
	}

	var events []models.DownloadEvent
	require.NoError(t, db.Where("registration_id = ?", "GDN2026-0001").Find(&events).Error)
	assert.Len(t, events, 2)
}

func TestDownloadTrackerDropsWhenBufferFull(t *testing.T) {
	db := newTrackerDB(t)
	tracker := NewDownloadTracker(db, zerolog.Nop())

	// no consumer running; overfill the buffer and confirm Track never blocks
	for i := 0; i < trackerBufferSize+10; i++ {
		tracker.Track("GDN2026-0003", "burst-agent")
	}
	assert.Len(t, tracker.events, trackerBufferSize)
}
