package controllers

import (
	"github.com/gofiber/fiber/v2"
)

func (c *SearchController) SearchProductsController(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	status := ctx.Query("status")
	brand := ctx.Query("brand")
	ownerScope := ctx.Query("owner_scope")

	results, err := c.repo.SearchProducts(query, status, brand, ownerScope)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	var matches []interface{}
	for _, hit := range results.Hits {
		doc, err := c.repo.GetProductDocument(hit.ID)
		if err != nil {
			continue
		}
		matches = append(matches, doc)
	}

	return ctx.JSON(fiber.Map{
		"results": matches,
		"total":   results.Total,
	})
}
