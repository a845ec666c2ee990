package controllers

import (
	"warehouse-app/controllers/helpers"
	"warehouse-app/services"
	"warehouse-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// BatchInboundController exposes the batch inbound order endpoints.
// Every mutating handler runs the service inside one transaction.
type BatchInboundController struct {
	DB *gorm.DB
}

func NewBatchInboundController(DB *gorm.DB) *BatchInboundController {
	return &BatchInboundController{DB: DB}
}

func operatorID(ctx *fiber.Ctx) int {
	return int(ctx.Locals("userID").(float64))
}

func requestID(ctx *fiber.Ctx) string {
	return ctx.Get("X-Request-ID")
}

func (c *BatchInboundController) ReserveOrder(ctx *fiber.Ctx) error {
	var payload services.ReserveInput
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order, err := services.NewBatchInboundService(tx).WithRequestID(requestID(ctx)).ReserveRange(payload, operatorID(ctx))
	if err != nil {
		tx.Rollback()
		return helpers.ErrorResponse(ctx, err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Range reserved successfully",
		"data":    order,
	})
}

func (c *BatchInboundController) GetAllOrders(ctx *fiber.Ctx) error {
	summaries, err := services.NewBatchInboundService(c.DB).ListOrders()
	if err != nil {
		return helpers.ErrorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": summaries})
}

func (c *BatchInboundController) GetOrderByID(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	detail, err := services.NewBatchInboundService(c.DB).GetOrderDetail(int64(orderId))
	if err != nil {
		return helpers.ErrorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": detail})
}

func (c *BatchInboundController) UploadSpreadsheet(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}

	fileContent, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to open uploaded file"})
	}
	defer fileContent.Close()

	f, err := excelize.OpenReader(fileContent)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read Excel file"})
	}
	defer f.Close()

	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	detail, err := services.NewBatchInboundService(tx).WithRequestID(requestID(ctx)).UploadSpreadsheet(
		int64(orderId), f, fileHeader.Filename, operatorID(ctx))
	if err != nil {
		tx.Rollback()
		return helpers.ErrorResponse(ctx, err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Spreadsheet uploaded successfully",
		"data":    detail,
	})
}

func (c *BatchInboundController) ConfirmItem(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	itemId, err := ctx.ParamsInt("item_id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	return c.runConfirm(ctx, func(s *services.BatchInboundService) (*services.ConfirmResult, error) {
		return s.ConfirmItem(int64(orderId), int64(itemId), operatorID(ctx))
	})
}

func (c *BatchInboundController) ConfirmBox(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var payload struct {
		BoxCode string `json:"box_code" validate:"required"`
	}
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.runConfirm(ctx, func(s *services.BatchInboundService) (*services.ConfirmResult, error) {
		return s.ConfirmBox(int64(orderId), payload.BoxCode, operatorID(ctx))
	})
}

func (c *BatchInboundController) ConfirmAll(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	return c.runConfirm(ctx, func(s *services.BatchInboundService) (*services.ConfirmResult, error) {
		return s.ConfirmAll(int64(orderId), operatorID(ctx))
	})
}

// runConfirm wraps one confirmation variant in a transaction and sends
// the confirmation mail after commit when the order flipped.
func (c *BatchInboundController) runConfirm(ctx *fiber.Ctx, fn func(s *services.BatchInboundService) (*services.ConfirmResult, error)) error {
	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result, err := fn(services.NewBatchInboundService(tx).WithRequestID(requestID(ctx)))
	if err != nil {
		tx.Rollback()
		return helpers.ErrorResponse(ctx, err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if result.StatusBecameConfirmed {
		detail, detailErr := services.NewBatchInboundService(c.DB).GetOrderDetail(result.OrderID)
		if detailErr == nil {
			go utils.SendOrderConfirmedMail(detail.Order.OrderNo, len(detail.Items))
		}
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

func (c *BatchInboundController) UpdateLogisticsRefs(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var payload services.LogisticsRefsInput
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order, err := services.NewBatchInboundService(tx).WithRequestID(requestID(ctx)).UpdateLogisticsRefs(int64(orderId), payload, operatorID(ctx))
	if err != nil {
		tx.Rollback()
		return helpers.ErrorResponse(ctx, err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Order updated", "data": order})
}

func (c *BatchInboundController) DeleteOrder(ctx *fiber.Ctx) error {
	orderId, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order, err := services.NewBatchInboundService(tx).WithRequestID(requestID(ctx)).DeleteOrder(int64(orderId), operatorID(ctx))
	if err != nil {
		tx.Rollback()
		return helpers.ErrorResponse(ctx, err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Order voided", "data": order})
}
