// services/event_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"festival-registration-system/models"
)

var validate = validator.New()

const (
	MatchedByID   = "id"
	MatchedBySlug = "slug"
)

// ResolvedEvent is the canonical result of event-reference resolution.
// MatchedBy records which key matched; downstream code never sees the raw,
// ambiguous reference again.
type ResolvedEvent struct {
	Event     *models.Event
	MatchedBy string
}

// EventService owns the event catalog: resolution for the workflow, CRUD
// for admins.
type EventService struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

func NewEventService(db *gorm.DB, log zerolog.Logger) *EventService {
	return &EventService{DB: db, Log: log.With().Str("component", "events").Logger()}
}

// Resolve looks an event up by primary key first and falls back to the slug.
// Historical data mixed both reference styles, so both stay accepted at this
// boundary only.
func (s *EventService) Resolve(ctx context.Context, ref string) (*ResolvedEvent, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, validationErrorf("event reference is required")
	}

	var event models.Event
	err := s.DB.WithContext(ctx).Preload("Contacts").First(&event, "id = ?", ref).Error
	if err == nil {
		return &ResolvedEvent{Event: &event, MatchedBy: MatchedByID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, durabilityError(err, "failed to look up event %s", ref)
	}

	err = s.DB.WithContext(ctx).Preload("Contacts").First(&event, "slug = ?", ref).Error
	if err == nil {
		return &ResolvedEvent{Event: &event, MatchedBy: MatchedBySlug}, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErrorf("event %q not found", ref)
	}
	return nil, durabilityError(err, "failed to look up event %s", ref)
}

type EventRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=120"`
	Category      string   `json:"category" validate:"required,oneof=technical cultural workshop gaming"`
	Mode          string   `json:"mode" validate:"required,oneof=individual group"`
	TeamSizeMin   int      `json:"team_size_min" validate:"gte=1"`
	TeamSizeMax   int      `json:"team_size_max" validate:"gte=1"`
	OnCampusDate  string   `json:"on_campus_date" validate:"required"`
	OffCampusDate string   `json:"off_campus_date" validate:"required"`
	Rules         []string `json:"rules"`
	Eligibility   string   `json:"eligibility"`
	Contacts      []struct {
		Name  string `json:"name" validate:"required"`
		Phone string `json:"phone" validate:"required"`
	} `json:"contacts" validate:"dive"`
}

func (r *EventRequest) check() error {
	if err := validate.Struct(r); err != nil {
		return validationErrorf("invalid event payload: %v", err)
	}
	if r.Mode == models.ModeIndividual {
		// Individual events always carry a team size of exactly one.
		r.TeamSizeMin, r.TeamSizeMax = 1, 1
	}
	if r.TeamSizeMin > r.TeamSizeMax {
		return validationErrorf("team_size_min (%d) cannot exceed team_size_max (%d)",
			r.TeamSizeMin, r.TeamSizeMax)
	}
	return nil
}

// CreateEvent handles POST /admin/events.
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, validationErrorf("invalid JSON: %v", err))
	}
	if err := req.check(); err != nil {
		return respondError(c, err)
	}

	event := models.Event{
		ID:            uuid.NewString(),
		Slug:          slug.Make(req.Title),
		Title:         req.Title,
		Category:      req.Category,
		Mode:          req.Mode,
		TeamSizeMin:   req.TeamSizeMin,
		TeamSizeMax:   req.TeamSizeMax,
		OnCampusDate:  req.OnCampusDate,
		OffCampusDate: req.OffCampusDate,
		Rules:         strings.Join(req.Rules, "\n"),
		Eligibility:   req.Eligibility,
	}
	for _, contact := range req.Contacts {
		event.Contacts = append(event.Contacts, models.EventContact{
			ID:      uuid.NewString(),
			EventID: event.ID,
			Name:    contact.Name,
			Phone:   contact.Phone,
		})
	}

	if err := s.DB.WithContext(c.Context()).Create(&event).Error; err != nil {
		if isUniqueViolation(err) {
			return respondError(c, validationErrorf("an event with slug %q already exists", event.Slug))
		}
		s.Log.Error().Err(err).Str("slug", event.Slug).Msg("failed to create event")
		return respondError(c, durabilityError(err, "failed to create event"))
	}

	s.Log.Info().Str("event_id", event.ID).Str("slug", event.Slug).Msg("event created")
	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateEvent handles PUT /admin/events/:ref. Dates and bounds may change;
// existing registrations keep the date that was copied onto them.
func (s *EventService) UpdateEvent(c *fiber.Ctx) error {
	resolved, err := s.Resolve(c.Context(), c.Params("ref"))
	if err != nil {
		return respondError(c, err)
	}

	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, validationErrorf("invalid JSON: %v", err))
	}
	if err := req.check(); err != nil {
		return respondError(c, err)
	}

	event := resolved.Event
	event.Title = req.Title
	event.Category = req.Category
	event.Mode = req.Mode
	event.TeamSizeMin = req.TeamSizeMin
	event.TeamSizeMax = req.TeamSizeMax
	event.OnCampusDate = req.OnCampusDate
	event.OffCampusDate = req.OffCampusDate
	event.Rules = strings.Join(req.Rules, "\n")
	event.Eligibility = req.Eligibility

	err = s.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventContact{}).Error; err != nil {
			return err
		}
		event.Contacts = nil
		for _, contact := range req.Contacts {
			event.Contacts = append(event.Contacts, models.EventContact{
				ID:      uuid.NewString(),
				EventID: event.ID,
				Name:    contact.Name,
				Phone:   contact.Phone,
			})
		}
		return tx.Save(event).Error
	})
	if err != nil {
		s.Log.Error().Err(err).Str("event_id", event.ID).Msg("failed to update event")
		return respondError(c, durabilityError(err, "failed to update event"))
	}

	return c.JSON(event)
}

// GetAllEvents handles GET /events.
func (s *EventService) GetAllEvents(c *fiber.Ctx) error {
	var events []models.Event
	query := s.DB.WithContext(c.Context()).Preload("Contacts").Order("title asc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&events).Error; err != nil {
		s.Log.Error().Err(err).Msg("failed to list events")
		return respondError(c, durabilityError(err, "failed to list events"))
	}
	return c.JSON(events)
}

// GetEvent handles GET /events/:ref, accepting either an id or a slug.
func (s *EventService) GetEvent(c *fiber.Ctx) error {
	resolved, err := s.Resolve(c.Context(), c.Params("ref"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resolved.Event)
}
