package controllers

import (
	"inventory-intake-backend/audit/repositories"
	"inventory-intake-backend/config"
	"inventory-intake-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditController struct {
	UploadLogRepo repositories.UploadLogRepository
}

func (ac *AuditController) GetUploadLogsController(c *fiber.Ctx) error {
	ownerScope, err := uuid.Parse(c.Query("owner_scope"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid owner_scope parameter"})
	}

	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	offset := (params.Page - 1) * params.PageSize
	entries, total, err := ac.UploadLogRepo.GetUploadLogEntries(c.Context(), ownerScope, params.PageSize, offset)
	if err != nil {
		config.Logger.Error("Failed to fetch upload log entries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch upload log entries"})
	}

	return c.Status(fiber.StatusOK).JSON(pagination.NewPaginatedResponse(c, entries, total, params))
}
