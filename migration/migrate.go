package migration

import (
	"warehouse-app/models"

	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Shelf{},
		&models.Box{},
		&models.Sku{},
		&models.BatchInboundOrder{},
		&models.BatchInboundItem{},
		&models.InboundOrder{},
		&models.InboundItem{},
		&models.InventoryBoxSku{},
		&models.StockMovement{},
		&models.OperationAuditLog{},
	)
}
