package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"warehouse-app/controllers/helpers"
	"warehouse-app/models"
	"warehouse-app/repositories"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InboundController handles the plain (non-batch) inbound flow. Lines
// reference boxes and SKUs that already exist; confirmation applies the
// same ledger primitive as the batch flow with positive deltas.
type InboundController struct {
	DB *gorm.DB
}

func NewInboundController(DB *gorm.DB) *InboundController {
	return &InboundController{DB: DB}
}

type inboundItemInput struct {
	BoxCode  string `json:"box_code" validate:"required"`
	SkuCode  string `json:"sku_code" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type inboundInput struct {
	Remarks string             `json:"remarks"`
	Items   []inboundItemInput `json:"items" validate:"required,min=1,dive"`
}

// GenerateInboundNo builds the next sequential inbound number,
// INB<yyyymmdd><seq>, resetting the sequence each day.
func (c *InboundController) GenerateInboundNo() (string, error) {
	var last models.InboundOrder
	if err := c.DB.Order("inbound_no desc").First(&last).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	today := time.Now().Format("20060102")
	if last.InboundNo != "" && len(last.InboundNo) >= 15 && last.InboundNo[3:11] == today {
		lastSeq, _ := strconv.Atoi(last.InboundNo[11:])
		return fmt.Sprintf("INB%s%04d", today, lastSeq+1), nil
	}
	return fmt.Sprintf("INB%s%04d", today, 1), nil
}

func (c *InboundController) CreateInbound(ctx *fiber.Ctx) error {
	var payload inboundInput
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID := int(ctx.Locals("userID").(float64))

	inboundNo, err := c.GenerateInboundNo()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order := models.InboundOrder{
		InboundNo: inboundNo,
		Status:    models.InboundOpen,
		Remarks:   payload.Remarks,
		CreatedBy: userID,
		UpdatedBy: userID,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	for _, item := range payload.Items {
		ordinal := helpers.DecodeBoxCode(item.BoxCode)
		if ordinal == 0 {
			tx.Rollback()
			return helpers.ErrorResponse(ctx, helpers.NewValidationError("invalid box code "+item.BoxCode))
		}

		var box models.Box
		if err := tx.First(&box, "code = ?", helpers.EncodeBoxCode(ordinal)).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helpers.ErrorResponse(ctx, helpers.NewNotFound("box "+item.BoxCode+" not found"))
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		var sku models.Sku
		if err := tx.First(&sku, "code = ?", item.SkuCode).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helpers.ErrorResponse(ctx, helpers.NewNotFound("sku "+item.SkuCode+" not found"))
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		detail := models.InboundItem{
			OrderId:   order.ID,
			BoxId:     box.ID,
			BoxCode:   box.Code,
			SkuId:     sku.ID,
			SkuCode:   sku.Code,
			Quantity:  item.Quantity,
			CreatedBy: userID,
			UpdatedBy: userID,
		}
		if err := tx.Create(&detail).Error; err != nil {
			tx.Rollback()
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	if err := helpers.RecordOperation(tx, "inbound_order", order.ID,
		models.AuditActionCreate, "inbound.create", nil, order, userID, requestID(ctx), ""); err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Inbound created successfully",
		"data":    fiber.Map{"inbound_id": order.ID, "inbound_no": order.InboundNo},
	})
}

func (c *InboundController) GetAllInbound(ctx *fiber.Ctx) error {
	var orders []models.InboundOrder
	if err := c.DB.Order("id desc").Find(&orders).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": orders})
}

func (c *InboundController) GetInboundByID(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var order models.InboundOrder
	if err := c.DB.First(&order, "id = ?", orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Inbound not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var items []models.InboundItem
	if err := c.DB.Where("order_id = ?", order.ID).Order("box_code asc, sku_code asc").Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	order.Items = items

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": order})
}

// CompleteInbound applies every line's quantity to the ledger and
// closes the order. Already-completed orders are rejected.
func (c *InboundController) CompleteInbound(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	userID := int(ctx.Locals("userID").(float64))

	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order models.InboundOrder
	if err := tx.First(&order, "id = ?", orderId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.ErrorResponse(ctx, helpers.NewNotFound("inbound order not found"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if order.Status == models.InboundComplete {
		tx.Rollback()
		return helpers.ErrorResponse(ctx, helpers.NewIllegalState("inbound "+order.InboundNo+" is already complete"))
	}

	var items []models.InboundItem
	if err := tx.Where("order_id = ?", order.ID).Order("box_code asc, sku_code asc, id asc").Find(&items).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	inventory := repositories.NewInventoryRepository(tx)
	for _, item := range items {
		before, after, err := inventory.IncrementStock(item.BoxId, item.SkuId, item.Quantity,
			models.MovementPlainInbound, models.RefInboundOrder, order.ID, userID)
		if err != nil {
			tx.Rollback()
			return helpers.ErrorResponse(ctx, err)
		}

		err = helpers.RecordOperation(tx, "inventory_box_sku",
			fmt.Sprintf("%d:%d", item.BoxId, item.SkuId),
			models.AuditActionUpdate, "inbound.complete_item",
			fiber.Map{"box_code": item.BoxCode, "sku_code": item.SkuCode, "qty": before},
			fiber.Map{"box_code": item.BoxCode, "sku_code": item.SkuCode, "qty": after},
			userID, requestID(ctx), order.InboundNo)
		if err != nil {
			tx.Rollback()
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	if err := tx.Model(&models.InboundOrder{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{"status": models.InboundComplete, "updated_by": userID}).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Inbound complete"})
}
