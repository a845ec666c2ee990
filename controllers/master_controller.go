package controllers

import (
	"errors"

	"warehouse-app/models"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MasterController is the thin master-data surface the inbound flows
// consume: shelves, SKUs and boxes.
type MasterController struct {
	DB *gorm.DB
}

func NewMasterController(DB *gorm.DB) *MasterController {
	return &MasterController{DB: DB}
}

var shelfInput struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"max=100"`
	IsActive *bool  `json:"is_active"`
}

func (c *MasterController) CreateShelf(ctx *fiber.Ctx) error {
	if err := ctx.BodyParser(&shelfInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(shelfInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	active := true
	if shelfInput.IsActive != nil {
		active = *shelfInput.IsActive
	}

	shelf := models.Shelf{
		Code:      shelfInput.Code,
		Name:      shelfInput.Name,
		IsActive:  active,
		CreatedBy: int(ctx.Locals("userID").(float64)),
	}
	if err := c.DB.Create(&shelf).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Shelf created successfully", "data": shelf})
}

func (c *MasterController) GetAllShelves(ctx *fiber.Ctx) error {
	var shelves []models.Shelf
	if err := c.DB.Order("id asc").Find(&shelves).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": shelves})
}

func (c *MasterController) UpdateShelf(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var shelf models.Shelf
	if err := c.DB.First(&shelf, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Shelf not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ctx.BodyParser(&shelfInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{
		"name":       shelfInput.Name,
		"updated_by": int(ctx.Locals("userID").(float64)),
	}
	if shelfInput.Code != "" {
		updates["code"] = shelfInput.Code
	}
	if shelfInput.IsActive != nil {
		updates["is_active"] = *shelfInput.IsActive
	}

	if err := c.DB.Model(&models.Shelf{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Shelf updated"})
}

var skuInput struct {
	Code string `json:"code" validate:"required,max=64"`
	Name string `json:"name" validate:"max=200"`
}

func (c *MasterController) CreateSku(ctx *fiber.Ctx) error {
	if err := ctx.BodyParser(&skuInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(skuInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	name := skuInput.Name
	if name == "" {
		name = skuInput.Code
	}

	sku := models.Sku{
		Code:      skuInput.Code,
		Name:      name,
		CreatedBy: int(ctx.Locals("userID").(float64)),
	}
	if err := c.DB.Create(&sku).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Sku created successfully", "data": sku})
}

func (c *MasterController) GetAllSkus(ctx *fiber.Ctx) error {
	var skus []models.Sku
	if err := c.DB.Order("code asc").Find(&skus).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": skus})
}

func (c *MasterController) GetAllBoxes(ctx *fiber.Ctx) error {
	var boxes []models.Box
	if err := c.DB.Order("ordinal asc").Find(&boxes).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": boxes})
}
