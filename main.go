package main

import (
	"fmt"
	"log"

	"warehouse-app/config"
	"warehouse-app/controllers/idgen"
	"warehouse-app/database"
	"warehouse-app/migration"
	"warehouse-app/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {

	config.LoadConfig()

	app := fiber.New()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, db)
	routes.SetupMasterRoutes(app, db)
	routes.SetupBatchInboundRoutes(app, db)
	routes.SetupInboundRoutes(app, db)
	routes.SetupInventoryRoutes(app, db)

	port := config.APP_PORT
	fmt.Println("🚀 Server running on port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
