// services/admin_service.go
package services

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"festival-registration-system/models"
)

// AdminService covers the reporting surface: payment-state mutation,
// aggregate stats and contact-message CRUD. It never touches the issuance
// pipeline.
type AdminService struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

func NewAdminService(db *gorm.DB, log zerolog.Logger) *AdminService {
	return &AdminService{DB: db, Log: log.With().Str("component", "admin").Logger()}
}

// UpdatePaymentState flips the payment state of a single registration and
// nothing else on the record.
func (s *AdminService) UpdatePaymentState(ctx context.Context, registrationID, state string) (*models.Registration, error) {
	if state != models.PaymentPending && state != models.PaymentDone {
		return nil, validationErrorf("payment_state must be %q or %q", models.PaymentPending, models.PaymentDone)
	}

	res := s.DB.WithContext(ctx).
		Model(&models.Registration{}).
		Where("registration_id = ?", registrationID).
		Update("payment_state", state)
	if res.Error != nil {
		return nil, durabilityError(res.Error, "failed to update payment state for %s", registrationID)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundErrorf("registration %s not found", registrationID)
	}

	var reg models.Registration
	err := s.DB.WithContext(ctx).
		Preload("TeamMembers").
		First(&reg, "registration_id = ?", registrationID).Error
	if err != nil {
		return nil, durabilityError(err, "failed to reload registration %s", registrationID)
	}

	s.Log.Info().
		Str("registration_id", registrationID).
		Str("payment_state", state).
		Msg("payment state updated")
	return &reg, nil
}

type countRow struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// StatsReport aggregates over the registration collection.
type StatsReport struct {
	TotalRegistrations int64      `json:"total_registrations"`
	TicketsIssued      int64      `json:"tickets_issued"`
	ByPaymentState     []countRow `json:"by_payment_state"`
	ByAffiliation      []countRow `json:"by_affiliation"`
	ByEvent            []countRow `json:"by_event"`
}

// Stats computes the report. Read-only; heavy lifting stays in SQL.
func (s *AdminService) Stats(ctx context.Context) (*StatsReport, error) {
	db := s.DB.WithContext(ctx)
	report := &StatsReport{}

	if err := db.Model(&models.Registration{}).Count(&report.TotalRegistrations).Error; err != nil {
		return nil, durabilityError(err, "failed to count registrations")
	}
	if err := db.Model(&models.Registration{}).
		Where("ticket_url IS NOT NULL").
		Count(&report.TicketsIssued).Error; err != nil {
		return nil, durabilityError(err, "failed to count issued tickets")
	}

	if err := db.Model(&models.Registration{}).
		Select("payment_state as key, count(*) as count").
		Group("payment_state").
		Scan(&report.ByPaymentState).Error; err != nil {
		return nil, durabilityError(err, "failed to group by payment state")
	}

	if err := db.Model(&models.Registration{}).
		Select("case when is_home_institution then 'home' else 'external' end as key, count(*) as count").
		Group("is_home_institution").
		Scan(&report.ByAffiliation).Error; err != nil {
		return nil, durabilityError(err, "failed to group by affiliation")
	}

	if err := db.Model(&models.Registration{}).
		Select("events.title as key, count(*) as count").
		Joins("join events on events.id = registrations.event_id").
		Group("events.title").
		Order("count desc").
		Scan(&report.ByEvent).Error; err != nil {
		return nil, durabilityError(err, "failed to group by event")
	}

	return report, nil
}

// UpdateRegistrationPayment handles PATCH /admin/registrations/:registration_id/payment.
func (s *AdminService) UpdateRegistrationPayment(c *fiber.Ctx) error {
	var req struct {
		PaymentState string `json:"payment_state"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, validationErrorf("invalid JSON: %v", err))
	}

	reg, err := s.UpdatePaymentState(c.Context(), c.Params("registration_id"), req.PaymentState)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reg)
}

// GetStats handles GET /admin/stats.
func (s *AdminService) GetStats(c *fiber.Ctx) error {
	report, err := s.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=5,max=4000"`
}

// CreateContactMessage handles POST /contact (public).
func (s *AdminService) CreateContactMessage(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, validationErrorf("invalid JSON: %v", err))
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, validationErrorf("invalid contact payload: %v", err))
	}

	msg := models.ContactMessage{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := s.DB.WithContext(c.Context()).Create(&msg).Error; err != nil {
		s.Log.Error().Err(err).Msg("failed to store contact message")
		return respondError(c, durabilityError(err, "failed to store contact message"))
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// ListContactMessages handles GET /admin/contact.
func (s *AdminService) ListContactMessages(c *fiber.Ctx) error {
	var msgs []models.ContactMessage
	if err := s.DB.WithContext(c.Context()).Order("created_at desc").Find(&msgs).Error; err != nil {
		return respondError(c, durabilityError(err, "failed to list contact messages"))
	}
	return c.JSON(msgs)
}

// DeleteContactMessage handles DELETE /admin/contact/:id.
func (s *AdminService) DeleteContactMessage(c *fiber.Ctx) error {
	res := s.DB.WithContext(c.Context()).Delete(&models.ContactMessage{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return respondError(c, durabilityError(res.Error, "failed to delete contact message"))
	}
	if res.RowsAffected == 0 {
		return respondError(c, notFoundErrorf("contact message not found"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
