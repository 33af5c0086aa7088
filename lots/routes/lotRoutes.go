package routes

import (
	"inventory-intake-backend/lots/controllers"
	"inventory-intake-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

func LotRouterInit(app *fiber.App, controller *controllers.LotController, appCtx *middleware.AppContext) {
	lots := app.Group("/lots", middleware.ProtectedRoute(appCtx))

	lots.Get("/", controller.GetFilteredLotsController)
	lots.Get("/:id", controller.GetLotEntriesController)
	lots.Delete("/:id", controller.DeleteLotController)
}
