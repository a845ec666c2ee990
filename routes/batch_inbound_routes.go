package routes

import (
	"warehouse-app/config"
	"warehouse-app/controllers"
	"warehouse-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupBatchInboundRoutes(app *fiber.App, db *gorm.DB) {
	batchInboundController := controllers.NewBatchInboundController(db)

	api := app.Group(config.MAIN_ROUTES+"/batch-inbound", middleware.AuthMiddleware)

	api.Post("/", batchInboundController.ReserveOrder)
	api.Get("/", batchInboundController.GetAllOrders)
	api.Get("/:id", batchInboundController.GetOrderByID)
	api.Post("/:id/upload", batchInboundController.UploadSpreadsheet)
	api.Post("/:id/confirm-item/:item_id", batchInboundController.ConfirmItem)
	api.Post("/:id/confirm-box", batchInboundController.ConfirmBox)
	api.Post("/:id/confirm-all", batchInboundController.ConfirmAll)
	api.Put("/:id/refs", batchInboundController.UpdateLogisticsRefs)
	api.Delete("/:id", batchInboundController.DeleteOrder)
}
