// handlers/admin.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"festival-registration-system/middleware"
	"festival-registration-system/services"
)

func SetupAdminRoutes(
	app *fiber.App,
	adminToken string,
	eventService *services.EventService,
	registrationService *services.RegistrationService,
	adminService *services.AdminService,
) {
	// Public contact form; everything else below requires the admin token.
	app.Post("/contact", adminService.CreateContactMessage)

	admin := app.Group("/admin", middleware.AdminAuth(adminToken))

	admin.Post("/events", eventService.CreateEvent)
	admin.Put("/events/:ref", eventService.UpdateEvent)

	admin.Get("/registrations", registrationService.ListRegistrations)
	admin.Get("/registrations/:registration_id", registrationService.GetRegistration)
	admin.Patch("/registrations/:registration_id/payment", adminService.UpdateRegistrationPayment)

	admin.Get("/stats", adminService.GetStats)
	admin.Get("/contact", adminService.ListContactMessages)
	admin.Delete("/contact/:id", adminService.DeleteContactMessage)
}
