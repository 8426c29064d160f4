// handlers/registration.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"festival-registration-system/services"
)

func SetupRegistrationRoutes(app *fiber.App, registrationService *services.RegistrationService) {
	// Public registrant-facing surface
	app.Post("/registrations", registrationService.CreateRegistration)
	app.Get("/registrations/:registration_id/ticket", registrationService.GetRegistrationTicket)
}
