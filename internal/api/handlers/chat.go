package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/remodela/remodela-backend/internal/chat"
)

// Ask answers a standalone question without conversation state
func Ask(svc *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Question string `json:"question"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if strings.TrimSpace(req.Question) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Question is required",
			})
		}

		result, err := svc.Ask(c.Context(), req.Question)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"answer": result.Answer,
			"images": result.Images,
		})
	}
}

// AskInSession answers a question within an existing conversation
func AskInSession(svc *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		var req struct {
			Question string `json:"question"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if strings.TrimSpace(req.Question) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Question is required",
			})
		}

		result, err := svc.AskInSession(c.Context(), sessionID, req.Question)
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
			"answer": result.Answer,
			"images": result.Images,
		})
	}
}
