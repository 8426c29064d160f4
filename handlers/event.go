// handlers/event.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"festival-registration-system/services"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	// Public catalog — :ref accepts either an event id or a slug
	app.Get("/events", eventService.GetAllEvents)
	app.Get("/events/:ref", eventService.GetEvent)
}
