package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festival-registration-system/models"
)

func TestResolveByIDThenSlug(t *testing.T) {
	db := newTestDB(t)
	event := seedGroupEvent(t, db)
	svc := NewEventService(db, zerolog.Nop())

	byID, err := svc.Resolve(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, MatchedByID, byID.MatchedBy)
	assert.Equal(t, event.ID, byID.Event.ID)

	bySlug, err := svc.Resolve(context.Background(), "robo-wars")
	require.NoError(t, err)
	assert.Equal(t, MatchedBySlug, bySlug.MatchedBy)
	assert.Equal(t, event.ID, bySlug.Event.ID)
}

func TestResolveUnknownReference(t *testing.T) {
	db := newTestDB(t)
	seedGroupEvent(t, db)
	svc := NewEventService(db, zerolog.Nop())

	_, err := svc.Resolve(context.Background(), "missing-event")
	require.Error(t, err)
	we, ok := AsWorkflowError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, we.Kind)
}

func TestResolveEmptyReference(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, zerolog.Nop())

	_, err := svc.Resolve(context.Background(), "  ")
	require.Error(t, err)
	we, ok := AsWorkflowError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, we.Kind)
}

func TestEventDateForAffiliation(t *testing.T) {
	event := models.Event{OnCampusDate: "2026-03-14", OffCampusDate: "2026-03-15"}

	assert.Equal(t, "2026-03-14", event.EventDateFor(true))
	assert.Equal(t, "2026-03-15", event.EventDateFor(false))
}

func TestRuleList(t *testing.T) {
	event := models.Event{Rules: "Robots must weigh under 8kg\n\nNo projectile weapons\n"}

	rules := event.RuleList()
	require.Len(t, rules, 2)
	assert.Equal(t, "Robots must weigh under 8kg", rules[0])
	assert.Equal(t, "No projectile weapons", rules[1])
}
