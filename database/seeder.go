package database

import (
	"errors"
	"log"

	"warehouse-app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RunSeeders creates the admin user and one active shelf when the
// database is empty, so a fresh install can run the inbound happy path.
func RunSeeders(db *gorm.DB) {
	seedAdminUser(db)
	seedDefaultShelf(db)
}

func seedAdminUser(db *gorm.DB) {
	var user models.User
	err := db.Where("email = ?", "admin@warehouse.local").First(&user).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check admin user: %v", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	user = models.User{
		Name:     "Administrator",
		Email:    "admin@warehouse.local",
		Password: string(hashed),
		Role:     "admin",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
	}
}

func seedDefaultShelf(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Shelf{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	shelf := models.Shelf{Code: "SH-01", Name: "Default Shelf", IsActive: true}
	if err := db.Create(&shelf).Error; err != nil {
		log.Printf("Failed to seed default shelf: %v", err)
	}
}
