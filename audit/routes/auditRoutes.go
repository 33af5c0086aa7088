package routes

import (
	"inventory-intake-backend/audit/controllers"
	"inventory-intake-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

func AuditRouterInit(app *fiber.App, controller *controllers.AuditController, appCtx *middleware.AppContext) {
	audit := app.Group("/upload-logs", middleware.ProtectedRoute(appCtx))

	audit.Get("/", controller.GetUploadLogsController)
}
