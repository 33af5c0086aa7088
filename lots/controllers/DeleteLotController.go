package controllers

import (
	"errors"

	"inventory-intake-backend/config"
	"inventory-intake-backend/lots/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeleteLotController removes a lot together with its products. A lot whose
// products are already referenced by orders is refused with the blocked count.
func (lc *LotController) DeleteLotController(c *fiber.Ctx) error {
	lotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lot ID"})
	}

	deleted, err := lc.LotService.DeleteLot(c.Context(), lotID)
	if err != nil {
		var referenced *services.ReferencedInventoryError
		if errors.As(err, &referenced) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":       "Lot cannot be deleted, some of its products are referenced by orders",
				"blocked_count": referenced.Blocked,
			})
		}
		config.Logger.Error("Failed to delete lot",
			zap.String("lot_id", lotID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete lot"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":       "Lot deleted",
		"deleted_count": deleted,
	})
}
