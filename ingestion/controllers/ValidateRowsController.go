package controllers

import (
	"inventory-intake-backend/ingestion/services"
	"inventory-intake-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ValidateRows runs the full validation pass over the session rows under the
// current mapping. Progress is streamed to WebSocket subscribers of the
// session while the pass runs.
func (ic *IngestionController) ValidateRows(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid session ID"})
	}

	session, ok := ic.Sessions.Get(sessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Session not found or expired"})
	}

	hasTarget := false
	for _, mapping := range session.Mappings {
		if mapping.TargetField != nil {
			hasTarget = true
			break
		}
	}
	if !hasTarget {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No columns are mapped yet",
		})
	}

	result := services.ValidateRows(session.Rows, session.Mappings, func(percent int) {
		ic.Hub.BroadcastToSession(session.ID.String(), websocket.WebSocketMessage{
			Type:    websocket.MessageTypeValidateProgress,
			Payload: fiber.Map{"percent": percent},
		})
	})

	session.Result = &result

	ic.Hub.BroadcastToSession(session.ID.String(), websocket.WebSocketMessage{
		Type: websocket.MessageTypeStageComplete,
		Payload: fiber.Map{
			"stage":       "validate",
			"valid_count": len(result.ValidRecords),
			"error_count": len(result.Errors),
		},
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id":     session.ID,
		"total_rows":     result.TotalRows,
		"valid_count":    len(result.ValidRecords),
		"errors":         result.Errors,
		"duplicate_skus": result.DuplicateSkus,
		"warnings":       result.Warnings,
	})
}
