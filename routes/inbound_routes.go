package routes

import (
	"warehouse-app/config"
	"warehouse-app/controllers"
	"warehouse-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupInboundRoutes(app *fiber.App, db *gorm.DB) {
	inboundController := controllers.NewInboundController(db)

	api := app.Group(config.MAIN_ROUTES+"/inbound", middleware.AuthMiddleware)

	api.Post("/", inboundController.CreateInbound)
	api.Get("/", inboundController.GetAllInbound)
	api.Get("/:id", inboundController.GetInboundByID)
	api.Post("/complete/:id", inboundController.CompleteInbound)
}
