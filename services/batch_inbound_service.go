package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"warehouse-app/controllers/helpers"
	"warehouse-app/models"
	"warehouse-app/repositories"
	"warehouse-app/types"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// BatchInboundService runs the reservation / upload / confirmation flows
// of one batch inbound order. Every method expects to be constructed
// over an open transaction; nested lookups and mutations all use that
// same handle so a failure rolls back atomically.
type BatchInboundService struct {
	db        *gorm.DB
	orders    *repositories.BatchInboundRepository
	inventory *repositories.InventoryRepository
	requestId string
}

func NewBatchInboundService(db *gorm.DB) *BatchInboundService {
	return &BatchInboundService{
		db:        db,
		orders:    repositories.NewBatchInboundRepository(db),
		inventory: repositories.NewInventoryRepository(db),
	}
}

// WithRequestID attaches the caller's correlation id; it lands on every
// audit row the service writes.
func (s *BatchInboundService) WithRequestID(requestId string) *BatchInboundService {
	s.requestId = requestId
	return s
}

var batchNoRe = regexp.MustCompile(`^[1-9]\d*$`)

type ReserveInput struct {
	BatchNo  string `json:"batch_no" validate:"required"`
	BoxCount int    `json:"box_count" validate:"required,min=1,max=500"`
}

// ConfirmResult is the compact response of every confirmation variant.
type ConfirmResult struct {
	OrderID     int64  `json:"order_id"`
	Status      string `json:"status"`
	Idempotent  bool   `json:"idempotent"`
	ChangedRows int    `json:"changed_rows"`

	// set when this call flipped the order into confirmed status
	StatusBecameConfirmed bool `json:"-"`
}

// OrderDetail is the full order snapshot with its item list.
type OrderDetail struct {
	Order models.BatchInboundOrder  `json:"order"`
	Items []models.BatchInboundItem `json:"items"`
}

// ReserveRange allocates the smallest free contiguous range of box
// ordinals, collects their canonical codes and creates the order in
// waiting_upload status.
func (s *BatchInboundService) ReserveRange(input ReserveInput, operator int) (*models.BatchInboundOrder, error) {
	batchNo := strings.TrimLeft(strings.TrimSpace(input.BatchNo), "0")
	if !batchNoRe.MatchString(batchNo) {
		return nil, helpers.NewValidationError("batch number must be a positive integer")
	}
	if input.BoxCount < 1 || input.BoxCount > 500 {
		return nil, helpers.NewValidationError("box count must be between 1 and 500")
	}

	occupied, err := s.orders.GetOccupiedOrdinals()
	if err != nil {
		return nil, err
	}
	start, err := helpers.FindFreeRange(occupied, input.BoxCount)
	if err != nil {
		return nil, err
	}
	end := start + input.BoxCount - 1

	codes := make(types.StringList, 0, input.BoxCount)
	for ord := start; ord <= end; ord++ {
		codes = append(codes, helpers.EncodeBoxCode(ord))
	}

	orderNo := fmt.Sprintf("BINB-%s-%s-%d", time.Now().Format("20060102"), batchNo, input.BoxCount)

	order := models.BatchInboundOrder{
		OrderNo:           orderNo,
		BatchNo:           batchNo,
		Status:            models.BatchOrderWaitingUpload,
		ExpectedBoxCount:  input.BoxCount,
		RangeStart:        start,
		RangeEnd:          end,
		CollectedBoxCodes: codes,
		CreatedBy:         operator,
		UpdatedBy:         operator,
	}
	if err := s.db.Create(&order).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, helpers.NewConflict("order number " + orderNo + " already exists")
		}
		return nil, err
	}

	if err := helpers.RecordOperation(s.db, "batch_inbound_order", order.ID,
		models.AuditActionCreate, "batch_inbound.reserve", nil, order, operator, s.requestId, ""); err != nil {
		return nil, err
	}

	return &order, nil
}

// UploadSpreadsheet parses the uploaded workbook, reconciles its box
// code set against the reservation and replaces the order's items
// wholesale. Re-upload is allowed while the order is not terminal.
func (s *BatchInboundService) UploadSpreadsheet(orderId int64, f *excelize.File, fileName string, operator int) (*OrderDetail, error) {
	order, err := s.orders.GetOrderForUpdate(orderId)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case models.BatchOrderConfirmed:
		return nil, helpers.NewIllegalState("order " + order.OrderNo + " is already confirmed and cannot accept an upload")
	case models.BatchOrderVoid:
		return nil, helpers.NewIllegalState("order " + order.OrderNo + " is void and cannot accept an upload")
	}

	lines, err := helpers.ParseBatchInboundSheet(f)
	if err != nil {
		return nil, err
	}
	if err := helpers.ReconcileBoxCodes(lines, order.CollectedBoxCodes); err != nil {
		return nil, err
	}

	before := *order

	if err := s.orders.ReplaceItems(order.ID, lines, operator); err != nil {
		return nil, err
	}

	order.Status = models.BatchOrderWaitingInbound
	order.UploadedFileName = fileName
	order.UpdatedBy = operator
	if err := s.db.Model(&models.BatchInboundOrder{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":             order.Status,
			"uploaded_file_name": order.UploadedFileName,
			"updated_by":         operator,
		}).Error; err != nil {
		return nil, err
	}

	if err := helpers.RecordOperation(s.db, "batch_inbound_order", order.ID,
		models.AuditActionUpdate, "batch_inbound.upload", before, *order, operator, s.requestId, fileName); err != nil {
		return nil, err
	}

	items, err := s.orders.GetOrderItems(order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, Items: items}, nil
}

// ConfirmItem confirms one item. Confirming an already-confirmed item
// is an idempotent no-op.
func (s *BatchInboundService) ConfirmItem(orderId, itemId int64, operator int) (*ConfirmResult, error) {
	order, err := s.orders.GetOrderForUpdate(orderId)
	if err != nil {
		return nil, err
	}
	if err := checkConfirmable(order); err != nil {
		return nil, err
	}

	var item models.BatchInboundItem
	if err := s.db.First(&item, "id = ? AND order_id = ?", itemId, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helpers.NewNotFound("batch inbound item not found")
		}
		return nil, err
	}

	if item.Status == models.BatchItemConfirmed {
		return &ConfirmResult{OrderID: order.ID, Status: order.Status, Idempotent: true, ChangedRows: 0}, nil
	}

	if err := s.applyItems(order, []models.BatchInboundItem{item}, operator); err != nil {
		return nil, err
	}
	return s.finishConfirm(order, 1, operator)
}

// ConfirmBox confirms every pending item of one box code. No pending
// item for the code is an idempotent no-op.
func (s *BatchInboundService) ConfirmBox(orderId int64, boxCode string, operator int) (*ConfirmResult, error) {
	ordinal := helpers.DecodeBoxCode(boxCode)
	if ordinal == 0 {
		return nil, helpers.NewValidationError("invalid box code " + boxCode)
	}

	order, err := s.orders.GetOrderForUpdate(orderId)
	if err != nil {
		return nil, err
	}
	if err := checkConfirmable(order); err != nil {
		return nil, err
	}

	items, err := s.orders.GetPendingItems(orderId, helpers.EncodeBoxCode(ordinal))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &ConfirmResult{OrderID: order.ID, Status: order.Status, Idempotent: true, ChangedRows: 0}, nil
	}

	if err := s.applyItems(order, items, operator); err != nil {
		return nil, err
	}
	return s.finishConfirm(order, len(items), operator)
}

// ConfirmAll confirms every pending item of the order. A fully
// confirmed order is an idempotent no-op.
func (s *BatchInboundService) ConfirmAll(orderId int64, operator int) (*ConfirmResult, error) {
	order, err := s.orders.GetOrderForUpdate(orderId)
	if err != nil {
		return nil, err
	}
	if err := checkConfirmable(order); err != nil {
		return nil, err
	}

	items, err := s.orders.GetPendingItems(orderId, "")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &ConfirmResult{OrderID: order.ID, Status: order.Status, Idempotent: true, ChangedRows: 0}, nil
	}

	if err := s.applyItems(order, items, operator); err != nil {
		return nil, err
	}
	return s.finishConfirm(order, len(items), operator)
}

// checkConfirmable rejects confirm-family calls in states where they
// are illegal. Confirmed orders stay callable; idempotence is decided
// per item set.
func checkConfirmable(order *models.BatchInboundOrder) error {
	switch order.Status {
	case models.BatchOrderWaitingUpload:
		return helpers.NewIllegalState("order " + order.OrderNo + " has no uploaded spreadsheet yet")
	case models.BatchOrderVoid:
		return helpers.NewIllegalState("order " + order.OrderNo + " is void")
	}
	return nil
}

// applyItems runs the shared per-item confirmation procedure over an
// already-sorted pending item set: resolve masters, increment the
// ledger, stamp the item, audit the stock change.
func (s *BatchInboundService) applyItems(order *models.BatchInboundOrder, items []models.BatchInboundItem, operator int) error {
	for _, item := range items {
		sku, err := s.resolveSku(item.SkuCode, operator)
		if err != nil {
			return err
		}
		box, err := s.resolveBox(item.BoxCode, operator)
		if err != nil {
			return err
		}

		before, after, err := s.inventory.IncrementStock(box.ID, sku.ID, item.Quantity,
			models.MovementBatchInbound, models.RefBatchInboundOrder, order.ID, operator)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := s.db.Model(&models.BatchInboundItem{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"status":       models.BatchItemConfirmed,
				"confirmed_at": now,
				"updated_by":   operator,
			}).Error; err != nil {
			return err
		}

		err = helpers.RecordOperation(s.db, "inventory_box_sku",
			fmt.Sprintf("%d:%d", box.ID, sku.ID),
			models.AuditActionUpdate, "batch_inbound.confirm_item",
			map[string]interface{}{"box_code": box.Code, "sku_code": sku.Code, "qty": before},
			map[string]interface{}{"box_code": box.Code, "sku_code": sku.Code, "qty": after},
			operator, s.requestId, order.OrderNo)
		if err != nil {
			return err
		}
	}
	return nil
}

// finishConfirm recomputes the aggregate status after the requested
// item mutations, inside the same transaction, and builds the result.
func (s *BatchInboundService) finishConfirm(order *models.BatchInboundOrder, changed, operator int) (*ConfirmResult, error) {
	total, pending, err := s.orders.CountItems(order.ID)
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{OrderID: order.ID, Status: order.Status, ChangedRows: changed}

	if total > 0 && pending == 0 && order.Status != models.BatchOrderConfirmed {
		beforeStatus := order.Status
		order.Status = models.BatchOrderConfirmed
		order.UpdatedBy = operator
		if err := s.db.Model(&models.BatchInboundOrder{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"status": order.Status, "updated_by": operator}).Error; err != nil {
			return nil, err
		}
		if err := helpers.RecordOperation(s.db, "batch_inbound_order", order.ID,
			models.AuditActionUpdate, "batch_inbound.status",
			map[string]interface{}{"status": beforeStatus},
			map[string]interface{}{"status": order.Status},
			operator, s.requestId, ""); err != nil {
			return nil, err
		}
		result.Status = order.Status
		result.StatusBecameConfirmed = true
	}

	return result, nil
}

// resolveSku finds the SKU master record by code, creating it on first
// reference.
func (s *BatchInboundService) resolveSku(code string, operator int) (*models.Sku, error) {
	var sku models.Sku
	err := s.db.First(&sku, "code = ?", code).Error
	if err == nil {
		return &sku, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sku = models.Sku{Code: code, Name: code, CreatedBy: operator, UpdatedBy: operator}
	if err := s.db.Create(&sku).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, helpers.NewConflict("sku " + code + " was created concurrently")
		}
		return nil, err
	}
	return &sku, nil
}

// resolveBox finds the box master record by canonical code, creating it
// on first reference. Auto-created boxes attach to the first active
// shelf by ascending id.
func (s *BatchInboundService) resolveBox(code string, operator int) (*models.Box, error) {
	var box models.Box
	err := s.db.First(&box, "code = ?", code).Error
	if err == nil {
		return &box, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var shelf models.Shelf
	if err := s.db.Where("is_active = ?", true).Order("id asc").First(&shelf).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helpers.NewCapacityError("no active shelf available for new box " + code)
		}
		return nil, err
	}

	box = models.Box{
		Code:      code,
		Ordinal:   helpers.DecodeBoxCode(code),
		ShelfId:   shelf.ID,
		CreatedBy: operator,
		UpdatedBy: operator,
	}
	if err := s.db.Create(&box).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, helpers.NewConflict("box " + code + " was created concurrently")
		}
		return nil, err
	}
	return &box, nil
}

// DeleteOrder voids a non-confirmed order: its items are removed, its
// reservation drops out of the occupied-ordinal query and the freed
// range becomes available to the next allocation.
func (s *BatchInboundService) DeleteOrder(orderId int64, operator int) (*models.BatchInboundOrder, error) {
	order, err := s.orders.GetOrderForUpdate(orderId)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case models.BatchOrderConfirmed:
		return nil, helpers.NewIllegalState("order " + order.OrderNo + " is confirmed and cannot be deleted")
	case models.BatchOrderVoid:
		return nil, helpers.NewIllegalState("order " + order.OrderNo + " is already void")
	}

	before := *order

	if err := s.db.Unscoped().Where("order_id = ?", order.ID).
		Delete(&models.BatchInboundItem{}).Error; err != nil {
		return nil, err
	}

	order.Status = models.BatchOrderVoid
	order.UpdatedBy = operator
	order.DeletedBy = operator
	if err := s.db.Model(&models.BatchInboundOrder{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":     order.Status,
			"updated_by": operator,
			"deleted_by": operator,
		}).Error; err != nil {
		return nil, err
	}

	if err := helpers.RecordOperation(s.db, "batch_inbound_order", order.ID,
		models.AuditActionDelete, "batch_inbound.void", before, *order, operator, s.requestId, ""); err != nil {
		return nil, err
	}

	return order, nil
}

type LogisticsRefsInput struct {
	LogisticsNo   string `json:"logistics_no" validate:"max=100"`
	CourierRemark string `json:"courier_remark" validate:"max=255"`
}

// UpdateLogisticsRefs updates the two free-text logistics reference
// fields on a non-void order.
func (s *BatchInboundService) UpdateLogisticsRefs(orderId int64, input LogisticsRefsInput, operator int) (*models.BatchInboundOrder, error) {
	order, err := s.orders.GetOrderByID(orderId)
	if err != nil {
		return nil, err
	}
	if order.Status == models.BatchOrderVoid {
		return nil, helpers.NewIllegalState("order " + order.OrderNo + " is void")
	}

	before := *order

	order.LogisticsNo = input.LogisticsNo
	order.CourierRemark = input.CourierRemark
	order.UpdatedBy = operator
	if err := s.db.Model(&models.BatchInboundOrder{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"logistics_no":   order.LogisticsNo,
			"courier_remark": order.CourierRemark,
			"updated_by":     operator,
		}).Error; err != nil {
		return nil, err
	}

	if err := helpers.RecordOperation(s.db, "batch_inbound_order", order.ID,
		models.AuditActionUpdate, "batch_inbound.logistics_refs", before, *order, operator, s.requestId, ""); err != nil {
		return nil, err
	}

	return order, nil
}

func (s *BatchInboundService) ListOrders() ([]repositories.OrderSummary, error) {
	return s.orders.ListOrders()
}

func (s *BatchInboundService) GetOrderDetail(orderId int64) (*OrderDetail, error) {
	order, err := s.orders.GetOrderByID(orderId)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.GetOrderItems(orderId)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, Items: items}, nil
}

// isDuplicateKeyError detects unique-constraint violations across the
// supported drivers so a losing concurrent creator gets a structured
// conflict instead of a generic failure.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed") || strings.Contains(msg, "constraint failed")
}
