package routes

import (
	"warehouse-app/config"
	"warehouse-app/controllers"
	"warehouse-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupMasterRoutes(app *fiber.App, db *gorm.DB) {
	masterController := controllers.NewMasterController(db)

	api := app.Group(config.MAIN_ROUTES, middleware.AuthMiddleware)

	api.Post("/shelf", masterController.CreateShelf)
	api.Get("/shelf", masterController.GetAllShelves)
	api.Put("/shelf/:id", masterController.UpdateShelf)
	api.Post("/sku", masterController.CreateSku)
	api.Get("/sku", masterController.GetAllSkus)
	api.Get("/box", masterController.GetAllBoxes)
}
