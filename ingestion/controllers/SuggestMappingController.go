package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SuggestMapping runs the automatic mapping passes over the session's columns
// and stores the suggestion as the session mapping.
func (ic *IngestionController) SuggestMapping(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid session ID"})
	}

	session, ok := ic.Sessions.Get(sessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Session not found or expired"})
	}

	result := ic.Mapper.SuggestMapping(c.Context(), session.Headers, session.Rows, session.Mappings)

	session.Mappings = result.Mappings
	session.Result = nil

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id":       session.ID,
		"mappings":         result.Mappings,
		"explanations":     result.Explanations,
		"used_external":    result.UsedExternal,
		"unmapped_headers": result.UnmappedHeaders,
	})
}
