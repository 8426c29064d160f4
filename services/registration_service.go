// services/registration_service.go
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"festival-registration-system/models"
	"festival-registration-system/storage"
	"festival-registration-system/workers"
)

// RegistrationService drives the issuance pipeline: validate, resolve the
// event, enforce team bounds, assign an identity, persist, then best-effort
// render+store the ticket. Persisting the registration is the durability
// checkpoint; everything after it degrades instead of failing the request.
type RegistrationService struct {
	DB        *gorm.DB
	Events    *EventService
	Identity  *IdentityGenerator
	Tickets   *TicketRenderer
	Artifacts storage.Store
	Downloads *workers.DownloadTracker
	Log       zerolog.Logger

	// Bound on the render+store stage so a hung renderer cannot delay the
	// response indefinitely.
	ArtifactTimeout time.Duration

	now func() time.Time
}

func NewRegistrationService(
	db *gorm.DB,
	events *EventService,
	identity *IdentityGenerator,
	tickets *TicketRenderer,
	artifacts storage.Store,
	downloads *workers.DownloadTracker,
	log zerolog.Logger,
	artifactTimeout time.Duration,
) *RegistrationService {
	return &RegistrationService{
		DB:              db,
		Events:          events,
		Identity:        identity,
		Tickets:         tickets,
		Artifacts:       artifacts,
		Downloads:       downloads,
		Log:             log.With().Str("component", "registrations").Logger(),
		ArtifactTimeout: artifactTimeout,
		now:             time.Now,
	}
}

type TeamMemberRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=120"`
	RegisterNo string `json:"register_no"`
	College    string `json:"college"`
}

type CreateRegistrationRequest struct {
	EventRef          string              `json:"event_ref" validate:"required"`
	IsHomeInstitution bool                `json:"is_home_institution"`
	LeaderName        string              `json:"leader_name" validate:"required,min=2,max=120"`
	LeaderEmail       string              `json:"leader_email" validate:"required,email"`
	LeaderPhone       string              `json:"leader_phone" validate:"required,min=7,max=20"`
	LeaderRegisterNo  string              `json:"leader_register_no"`
	LeaderCollege     string              `json:"leader_college"`
	TeamMembers       []TeamMemberRequest `json:"team_members" validate:"dive"`
}

// RegistrationResult is the caller-visible success shape. TicketURL and
// QRImage are nil when artifact production degraded.
type RegistrationResult struct {
	RegistrationID    string  `json:"registration_id"`
	EventTitle        string  `json:"event_title"`
	ResolvedEventDate string  `json:"resolved_event_date"`
	ApprovalState     string  `json:"approval_state"`
	PaymentState      string  `json:"payment_state"`
	TicketURL         *string `json:"ticket_url,omitempty"`
	QRImage           []byte  `json:"-"`
}

func (req *CreateRegistrationRequest) check() error {
	if err := validate.Struct(req); err != nil {
		return validationErrorf("invalid registration payload: %v", err)
	}
	if req.IsHomeInstitution {
		if strings.TrimSpace(req.LeaderRegisterNo) == "" {
			return validationErrorf("leader_register_no is required for home-institution participants")
		}
	} else if strings.TrimSpace(req.LeaderCollege) == "" {
		return validationErrorf("leader_college is required for external participants")
	}
	for i, member := range req.TeamMembers {
		if req.IsHomeInstitution {
			if strings.TrimSpace(member.RegisterNo) == "" {
				return validationErrorf("team_members[%d].register_no is required for home-institution teams", i)
			}
		} else if strings.TrimSpace(member.College) == "" {
			return validationErrorf("team_members[%d].college is required for external teams", i)
		}
	}
	return nil
}

// Create runs the workflow end to end. Every returned error carries one of
// the workflow kinds; ARTIFACT never escapes this method.
func (s *RegistrationService) Create(ctx context.Context, req *CreateRegistrationRequest) (*RegistrationResult, error) {
	// 1. request shape
	if err := req.check(); err != nil {
		return nil, err
	}

	// 2. event resolution
	resolved, err := s.Events.Resolve(ctx, req.EventRef)
	if err != nil {
		return nil, err
	}
	event := resolved.Event

	// 3. team-size bounds
	teamSize := 1 + len(req.TeamMembers)
	switch event.Mode {
	case models.ModeGroup:
		if teamSize < event.TeamSizeMin || teamSize > event.TeamSizeMax {
			return nil, capacityErrorf("team size %d is outside the allowed range %d to %d for %s",
				teamSize, event.TeamSizeMin, event.TeamSizeMax, event.Title)
		}
	default:
		// Individual events reject team payloads outright rather than
		// silently truncating them.
		if len(req.TeamMembers) > 0 {
			return nil, validationErrorf("%s is an individual event and does not accept team members", event.Title)
		}
	}

	// 5. identity
	registrationID, err := s.Identity.Generate(ctx)
	if err != nil {
		if we, ok := AsWorkflowError(err); ok && we.Kind == KindIdentityExhausted {
			s.Log.Error().Err(err).Str("event_id", event.ID).Msg("identity generation exhausted")
		}
		return nil, err
	}

	now := s.now()
	reg := models.Registration{
		ID:                uuid.NewString(),
		RegistrationID:    registrationID,
		EventID:           event.ID,
		IsHomeInstitution: req.IsHomeInstitution,
		LeaderName:        req.LeaderName,
		LeaderEmail:       req.LeaderEmail,
		LeaderPhone:       req.LeaderPhone,
		LeaderRegisterNo:  req.LeaderRegisterNo,
		LeaderCollege:     req.LeaderCollege,
		// 4. date fixed at creation; later event edits must not move it
		ResolvedEventDate: event.EventDateFor(req.IsHomeInstitution),
		ApprovalState:     models.ApprovalApproved,
		PaymentState:      models.PaymentPending,
		CreatedAt:         now,
	}
	for i, member := range req.TeamMembers {
		reg.TeamMembers = append(reg.TeamMembers, models.TeamMember{
			ID:             uuid.NewString(),
			RegistrationID: reg.ID,
			Name:           member.Name,
			RegisterNo:     member.RegisterNo,
			College:        member.College,
			SortOrder:      i,
		})
	}

	// 6. verification payload
	payload := BuildVerificationPayload(&reg, event, now)
	serialized, err := payload.Encode()
	if err != nil {
		// A fixed field set that fails to marshal means a programming
		// error, not bad input.
		return nil, durabilityError(err, "failed to build verification payload")
	}
	reg.VerificationPayload = serialized

	// 7. durability checkpoint
	if err := s.DB.WithContext(ctx).Create(&reg).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, durabilityError(err, "registration id conflict, please retry")
		}
		return nil, durabilityError(err, "failed to persist registration")
	}
	s.Log.Info().
		Str("registration_id", reg.RegistrationID).
		Str("event_id", event.ID).
		Int("team_size", teamSize).
		Msg("registration persisted")

	// 8-9. best-effort ticket production
	result := &RegistrationResult{
		RegistrationID:    reg.RegistrationID,
		EventTitle:        event.Title,
		ResolvedEventDate: reg.ResolvedEventDate,
		ApprovalState:     reg.ApprovalState,
		PaymentState:      reg.PaymentState,
	}
	ticketURL, qrPNG := s.produceTicket(ctx, &reg, event)
	if ticketURL != "" {
		if err := s.DB.WithContext(ctx).Model(&models.Registration{}).
			Where("id = ?", reg.ID).
			Update("ticket_url", ticketURL).Error; err != nil {
			// The registration stands; the URL just is not recorded.
			s.Log.Warn().Err(err).
				Str("registration_id", reg.RegistrationID).
				Msg("failed to record ticket url")
		} else {
			result.TicketURL = &ticketURL
		}
	}
	result.QRImage = qrPNG

	return result, nil
}

// produceTicket renders the QR and PDF and stores the artifact. Failures are
// logged with their stage and absorbed; the empty url signals degradation.
func (s *RegistrationService) produceTicket(ctx context.Context, reg *models.Registration, event *models.Event) (string, []byte) {
	artifactCtx, cancel := context.WithTimeout(ctx, s.ArtifactTimeout)
	defer cancel()

	qrPNG, err := RenderQR(reg.VerificationPayload)
	if err != nil {
		s.logArtifactFailure(reg.RegistrationID, "render_qr", err)
		return "", nil
	}

	pdfBytes, err := s.Tickets.Render(reg, event, qrPNG)
	if err != nil {
		s.logArtifactFailure(reg.RegistrationID, "render_pdf", err)
		return "", qrPNG
	}

	url, err := s.Artifacts.Store(artifactCtx, ticketObjectName(reg.RegistrationID), pdfBytes, "application/pdf")
	if err != nil {
		s.logArtifactFailure(reg.RegistrationID, "store", err)
		return "", qrPNG
	}
	return url, qrPNG
}

func (s *RegistrationService) logArtifactFailure(registrationID, stage string, err error) {
	s.Log.Warn().Err(err).
		Str("registration_id", registrationID).
		Str("stage", stage).
		Msg("ticket production degraded")
}

// GetTicket returns the stored ticket PDF for a registration. The two 404
// cases are distinct: unknown registration vs registration without a ticket.
func (s *RegistrationService) GetTicket(ctx context.Context, registrationID, clientInfo string) ([]byte, error) {
	reg, err := s.byRegistrationID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.TicketURL == nil {
		return nil, notFoundErrorf("ticket not available for registration %s", registrationID)
	}

	data, err := s.Artifacts.Fetch(ctx, ticketObjectName(registrationID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, notFoundErrorf("ticket not available for registration %s", registrationID)
		}
		return nil, durabilityError(err, "failed to fetch ticket for %s", registrationID)
	}

	if s.Downloads != nil {
		s.Downloads.Track(registrationID, clientInfo)
	}
	return data, nil
}

func (s *RegistrationService) byRegistrationID(ctx context.Context, registrationID string) (*models.Registration, error) {
	var reg models.Registration
	err := s.DB.WithContext(ctx).
		Preload("TeamMembers", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		First(&reg, "registration_id = ?", registrationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrorf("registration %s not found", registrationID)
		}
		return nil, durabilityError(err, "failed to load registration %s", registrationID)
	}
	return &reg, nil
}

// CreateRegistration handles POST /registrations. Both full and degraded
// success return 201; a missing ticket_url tells the client to offer a
// retry-ticket affordance.
func (s *RegistrationService) CreateRegistration(c *fiber.Ctx) error {
	var req CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, validationErrorf("invalid JSON: %v", err))
	}

	result, err := s.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	body := fiber.Map{
		"registration_id":     result.RegistrationID,
		"event_title":         result.EventTitle,
		"resolved_event_date": result.ResolvedEventDate,
		"approval_state":      result.ApprovalState,
		"payment_state":       result.PaymentState,
		"ticket_url":          result.TicketURL,
	}
	if result.QRImage != nil {
		body["qr_image"] = base64.StdEncoding.EncodeToString(result.QRImage)
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

// GetRegistrationTicket handles GET /registrations/:registration_id/ticket.
func (s *RegistrationService) GetRegistrationTicket(c *fiber.Ctx) error {
	registrationID := c.Params("registration_id")
	data, err := s.GetTicket(c.Context(), registrationID, c.Get("User-Agent"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+registrationID+`.pdf"`)
	return c.Send(data)
}

// GetRegistration handles GET /admin/registrations/:registration_id.
func (s *RegistrationService) GetRegistration(c *fiber.Ctx) error {
	reg, err := s.byRegistrationID(c.Context(), c.Params("registration_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reg)
}

// ListRegistrations handles GET /admin/registrations with optional event and
// payment-state filters.
func (s *RegistrationService) ListRegistrations(c *fiber.Ctx) error {
	query := s.DB.WithContext(c.Context()).
		Preload("TeamMembers").
		Order("created_at desc")
	if eventRef := c.Query("event"); eventRef != "" {
		resolved, err := s.Events.Resolve(c.Context(), eventRef)
		if err != nil {
			return respondError(c, err)
		}
		query = query.Where("event_id = ?", resolved.Event.ID)
	}
	if state := c.Query("payment_state"); state != "" {
		query = query.Where("payment_state = ?", state)
	}

	var regs []models.Registration
	if err := query.Find(&regs).Error; err != nil {
		s.Log.Error().Err(err).Msg("failed to list registrations")
		return respondError(c, durabilityError(err, "failed to list registrations"))
	}
	return c.JSON(regs)
}

func ticketObjectName(registrationID string) string {
	return "tickets/" + registrationID + ".pdf"
}

// isUniqueViolation matches unique-index conflicts across the postgres and
// sqlite drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
