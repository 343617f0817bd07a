package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remodela/remodela-backend/internal/api/handlers"
	"github.com/remodela/remodela-backend/internal/chat"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *chat.Service) {
	v1 := app.Group("/api/v1")

	// Health check
	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	// One-shot questions
	v1.Post("/ask", handlers.Ask(svc))

	// Conversations
	v1.Post("/sessions", handlers.CreateSession(svc))
	v1.Get("/sessions", handlers.GetSessions(svc))
	v1.Get("/sessions/:id", handlers.GetSession(svc))
	v1.Delete("/sessions/:id", handlers.DeleteSession(svc))
	v1.Post("/sessions/:id/ask", handlers.AskInSession(svc))
	v1.Get("/sessions/:id/messages", handlers.GetSessionMessages(svc))
}
