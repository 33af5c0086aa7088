package controllers

import (
	"errors"

	"inventory-intake-backend/ingestion/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type updateMappingRequest struct {
	Mappings []services.ColumnMapping `json:"mappings"`
}

// UpdateMapping replaces the session mapping with a manual override. A mapping
// where two columns claim the same field is rejected outright.
func (ic *IngestionController) UpdateMapping(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid session ID"})
	}

	session, ok := ic.Sessions.Get(sessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Session not found or expired"})
	}

	var req updateMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	known := make(map[string]bool, len(session.Headers))
	for _, header := range session.Headers {
		known[header] = true
	}
	for _, mapping := range req.Mappings {
		if !known[mapping.FileHeader] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unknown column " + mapping.FileHeader,
			})
		}
	}

	if err := services.ValidateMappings(req.Mappings); err != nil {
		var conflict *services.MappingConflictError
		if errors.As(err, &conflict) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Mapping conflict",
				"error":   conflict.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid mapping",
			"error":   err.Error(),
		})
	}

	// A manual override is a deliberate choice, not a detected one.
	for i := range req.Mappings {
		req.Mappings[i].AutoDetected = false
	}

	session.Mappings = req.Mappings
	// Any previous validation result was computed against the old mapping
	session.Result = nil

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id": session.ID,
		"mappings":   session.Mappings,
	})
}
