package controllers

import (
	"inventory-intake-backend/config"
	"inventory-intake-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (ic *IngestionController) GetFilteredProductsController(c *fiber.Ctx) error {
	ownerScope, err := uuid.Parse(c.Query("owner_scope"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid owner_scope parameter"})
	}

	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	filters := make(map[string]string)
	for _, key := range []string{"status", "sku", "name", "brand", "low_stock", "start_date", "end_date"} {
		if value := c.Query(key); value != "" && value != "null" {
			filters[key] = value
		}
	}

	offset := (params.Page - 1) * params.PageSize
	products, total, err := ic.ProductRepo.GetFilteredProducts(c.Context(), ownerScope, params.PageSize, offset, filters)
	if err != nil {
		config.Logger.Error("Failed to fetch filtered products", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch filtered products"})
	}

	return c.Status(fiber.StatusOK).JSON(pagination.NewPaginatedResponse(c, products, total, params))
}
