package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remodela/remodela-backend/internal/chat"
)

// CreateSession creates a new chat session
func CreateSession(svc *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Title string `json:"title"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		session, err := svc.CreateSession(c.Context(), req.Title)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(session)
	}
}

// GetSessions returns all sessions
func GetSessions(svc *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions, err := svc.ListSessions(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"sessions": sessions,
		})
	}
}

// GetSession returns a specific session
func GetSession(svc *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := svc.GetSession(c.Context(), c.Params("id"))
		if err != nil {
			if err == chat.ErrSessionNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Session not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(session)
	}
}

// DeleteSession deletes a session and its messages
func DeleteSession(svc *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteSession(c.Context(), c.Params("id")); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message": "Session deleted successfully",
		})
	}
}

// GetSessionMessages returns messages for a session in conversation order
func GetSessionMessages(svc *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		messages, err := svc.SessionMessages(c.Context(), c.Params("id"))
		if err != nil {
			if err == chat.ErrSessionNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Session not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"messages": messages,
		})
	}
}
