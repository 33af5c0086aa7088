package controllers

import (
	"errors"
	"fmt"
	"os"

	"inventory-intake-backend/config"
	"inventory-intake-backend/ingestion/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DecodeUpload receives the spreadsheet, decodes it and opens a wizard
// session. The parsed rows live in the session so later steps never touch the
// file again.
func (ic *IngestionController) DecodeUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to get file"})
	}

	if file.Size > services.MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"message": fmt.Sprintf("File exceeds the %d MB limit", services.MaxUploadBytes>>20),
		})
	}

	actor := c.FormValue("created_by")
	if actor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing 'created_by' field in FormData"})
	}

	ownerScope, err := uuid.Parse(c.FormValue("owner_scope"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing or invalid 'owner_scope' field in FormData"})
	}

	tempFilePath := fmt.Sprintf("./tmp/%s_%s", uuid.New().String(), file.Filename)
	if err := c.SaveFile(file, tempFilePath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to save file"})
	}
	defer os.Remove(tempFilePath)

	data, err := os.ReadFile(tempFilePath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read file"})
	}

	decoded, err := services.DecodeFile(file.Filename, data, nil)
	if err != nil {
		var decodeErr *services.DecodeError
		if errors.As(err, &decodeErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Failed to decode file",
				"error":   decodeErr.Reason,
			})
		}
		config.Logger.Error("Unexpected decode failure",
			zap.String("file_name", file.Filename),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to decode file"})
	}

	session := ic.Sessions.Create(ownerScope, actor, file.Filename, decoded)

	config.Logger.Info("Upload session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("file_name", file.Filename),
		zap.Int("row_count", len(decoded.Rows)),
	)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id": session.ID,
		"file_name":  file.Filename,
		"headers":    decoded.Headers,
		"row_count":  len(decoded.Rows),
		"mappings":   decoded.Mappings,
	})
}
