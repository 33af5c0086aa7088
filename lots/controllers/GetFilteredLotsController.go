package controllers

import (
	"inventory-intake-backend/config"
	"inventory-intake-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (lc *LotController) GetFilteredLotsController(c *fiber.Ctx) error {
	ownerScope, err := uuid.Parse(c.Query("owner_scope"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid owner_scope parameter"})
	}

	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	filters := make(map[string]string)
	for _, key := range []string{"status", "lot_number", "source_file", "start_date", "end_date"} {
		if value := c.Query(key); value != "" && value != "null" {
			filters[key] = value
		}
	}

	offset := (params.Page - 1) * params.PageSize
	lots, total, err := lc.LotRepo.GetFilteredLots(c.Context(), ownerScope, params.PageSize, offset, filters)
	if err != nil {
		config.Logger.Error("Failed to fetch filtered lots", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch filtered lots"})
	}

	return c.Status(fiber.StatusOK).JSON(pagination.NewPaginatedResponse(c, lots, total, params))
}

func (lc *LotController) GetLotEntriesController(c *fiber.Ctx) error {
	lotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lot ID"})
	}

	lot, err := lc.LotRepo.GetLotByID(c.Context(), lotID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lot not found"})
	}

	entries, err := lc.LotRepo.GetLotEntries(c.Context(), lotID)
	if err != nil {
		config.Logger.Error("Failed to fetch lot entries",
			zap.String("lot_id", lotID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch lot entries"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"lot":     lot,
		"entries": entries,
	})
}
