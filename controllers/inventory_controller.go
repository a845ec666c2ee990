package controllers

import (
	"errors"
	"fmt"
	"time"

	"warehouse-app/controllers/helpers"
	"warehouse-app/models"
	"warehouse-app/repositories"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// InventoryController exposes the stock listing, the manual adjustment
// flow and the excel export.
type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(DB *gorm.DB) *InventoryController {
	return &InventoryController{DB: DB}
}

func (c *InventoryController) GetStockList(ctx *fiber.Ctx) error {
	stocks, err := repositories.NewInventoryRepository(c.DB).GetStockList()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": stocks})
}

type adjustmentInput struct {
	BoxCode  string `json:"box_code" validate:"required"`
	SkuCode  string `json:"sku_code" validate:"required"`
	QtyDelta int    `json:"qty_delta" validate:"required"`
	Remark   string `json:"remark" validate:"max=255"`
}

// AdjustStock applies one signed manual delta through the ledger. A
// delta that would drive the quantity negative is rejected as a
// conflict before commit.
func (c *InventoryController) AdjustStock(ctx *fiber.Ctx) error {
	var payload adjustmentInput
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID := int(ctx.Locals("userID").(float64))

	ordinal := helpers.DecodeBoxCode(payload.BoxCode)
	if ordinal == 0 {
		return helpers.ErrorResponse(ctx, helpers.NewValidationError("invalid box code "+payload.BoxCode))
	}

	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var box models.Box
	if err := tx.First(&box, "code = ?", helpers.EncodeBoxCode(ordinal)).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.ErrorResponse(ctx, helpers.NewNotFound("box "+payload.BoxCode+" not found"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var sku models.Sku
	if err := tx.First(&sku, "code = ?", payload.SkuCode).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.ErrorResponse(ctx, helpers.NewNotFound("sku "+payload.SkuCode+" not found"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	inventory := repositories.NewInventoryRepository(tx)
	before, after, err := inventory.IncrementStock(box.ID, sku.ID, payload.QtyDelta,
		models.MovementAdjustment, models.RefManual, 0, userID)
	if err != nil {
		tx.Rollback()
		return helpers.ErrorResponse(ctx, err)
	}

	err = helpers.RecordOperation(tx, "inventory_box_sku",
		fmt.Sprintf("%d:%d", box.ID, sku.ID),
		models.AuditActionUpdate, "inventory.adjustment",
		fiber.Map{"box_code": box.Code, "sku_code": sku.Code, "qty": before},
		fiber.Map{"box_code": box.Code, "sku_code": sku.Code, "qty": after},
		userID, requestID(ctx), payload.Remark)
	if err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Stock adjusted",
		"data":    fiber.Map{"box_code": box.Code, "sku_code": sku.Code, "qty_before": before, "qty_after": after},
	})
}

// ExportStockExcel streams the current stock as an xlsx download.
func (c *InventoryController) ExportStockExcel(ctx *fiber.Ctx) error {
	stocks, err := repositories.NewInventoryRepository(c.DB).GetStockList()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Box Code", "Shelf", "SKU Code", "SKU Name", "Qty"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for rowIdx, stock := range stocks {
		values := []interface{}{stock.BoxCode, stock.Shelf, stock.SkuCode, stock.SkuName, stock.Qty}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	fileName := fmt.Sprintf("stock_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="`+fileName+`"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return nil
}
