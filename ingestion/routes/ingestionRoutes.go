package routes

import (
	"inventory-intake-backend/ingestion/controllers"
	"inventory-intake-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

func IngestionRouterInit(app *fiber.App, controller *controllers.IngestionController, appCtx *middleware.AppContext) {
	ingestion := app.Group("/ingestion", middleware.ProtectedRoute(appCtx))

	ingestion.Post("/decode", controller.DecodeUpload)
	ingestion.Post("/sessions/:id/suggest-mapping", controller.SuggestMapping)
	ingestion.Put("/sessions/:id/mapping", controller.UpdateMapping)
	ingestion.Post("/sessions/:id/validate", controller.ValidateRows)
	ingestion.Post("/sessions/:id/upload", controller.UploadRecords)

	products := app.Group("/products", middleware.ProtectedRoute(appCtx))
	products.Get("/", controller.GetFilteredProductsController)
}
