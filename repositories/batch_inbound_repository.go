package repositories

import (
	"errors"

	"warehouse-app/controllers/helpers"
	"warehouse-app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BatchInboundRepository struct {
	db *gorm.DB
}

// NewBatchInboundRepository builds the repository over the given handle,
// which may be an open transaction.
func NewBatchInboundRepository(db *gorm.DB) *BatchInboundRepository {
	return &BatchInboundRepository{db}
}

// GetOccupiedOrdinals returns the ordinals of real boxes unioned with
// the reserved ranges of every order still waiting for upload or
// inbound. Confirmed and voided orders release their range implicitly
// by dropping out of this query.
func (r *BatchInboundRepository) GetOccupiedOrdinals() (map[int]bool, error) {
	occupied := make(map[int]bool)

	var ordinals []int
	if err := r.db.Model(&models.Box{}).Pluck("ordinal", &ordinals).Error; err != nil {
		return nil, err
	}
	for _, ord := range ordinals {
		occupied[ord] = true
	}

	type reservedRange struct {
		RangeStart int
		RangeEnd   int
	}
	var ranges []reservedRange
	if err := r.db.Model(&models.BatchInboundOrder{}).
		Where("status IN ?", []string{models.BatchOrderWaitingUpload, models.BatchOrderWaitingInbound}).
		Find(&ranges).Error; err != nil {
		return nil, err
	}
	for _, rr := range ranges {
		for ord := rr.RangeStart; ord <= rr.RangeEnd; ord++ {
			occupied[ord] = true
		}
	}

	return occupied, nil
}

// GetOrderForUpdate takes an exclusive row lock on the order before
// reading it, so concurrent confirmations of the same order serialize.
// The sqlite dialect has no FOR UPDATE; its single writer serializes
// transactions anyway.
func (r *BatchInboundRepository) GetOrderForUpdate(id int64) (*models.BatchInboundOrder, error) {
	q := r.db
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var order models.BatchInboundOrder
	if err := q.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helpers.NewNotFound("batch inbound order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *BatchInboundRepository) GetOrderByID(id int64) (*models.BatchInboundOrder, error) {
	var order models.BatchInboundOrder
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helpers.NewNotFound("batch inbound order not found")
		}
		return nil, err
	}
	return &order, nil
}

// GetOrderItems returns the order's items in the fixed processing order:
// box code, then sku code, then item id.
func (r *BatchInboundRepository) GetOrderItems(orderId int64) ([]models.BatchInboundItem, error) {
	var items []models.BatchInboundItem
	if err := r.db.Where("order_id = ?", orderId).
		Order("box_code asc, sku_code asc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetPendingItems returns the pending items of one order, optionally
// restricted to one box code, in the fixed processing order.
func (r *BatchInboundRepository) GetPendingItems(orderId int64, boxCode string) ([]models.BatchInboundItem, error) {
	q := r.db.Where("order_id = ? AND status = ?", orderId, models.BatchItemPending)
	if boxCode != "" {
		q = q.Where("box_code = ?", boxCode)
	}

	var items []models.BatchInboundItem
	if err := q.Order("box_code asc, sku_code asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountItems returns the total and pending item counts of one order.
func (r *BatchInboundRepository) CountItems(orderId int64) (total int64, pending int64, err error) {
	if err = r.db.Model(&models.BatchInboundItem{}).
		Where("order_id = ?", orderId).Count(&total).Error; err != nil {
		return
	}
	err = r.db.Model(&models.BatchInboundItem{}).
		Where("order_id = ? AND status = ?", orderId, models.BatchItemPending).Count(&pending).Error
	return
}

// ReplaceItems deletes the order's items wholesale and inserts the
// merged upload lines as pending items.
func (r *BatchInboundRepository) ReplaceItems(orderId int64, lines []helpers.BatchLine, operator int) error {
	if err := r.db.Unscoped().Where("order_id = ?", orderId).
		Delete(&models.BatchInboundItem{}).Error; err != nil {
		return err
	}

	for _, line := range lines {
		item := models.BatchInboundItem{
			OrderId:     orderId,
			BoxCode:     line.BoxCode,
			SkuCode:     line.SkuCode,
			Quantity:    line.Quantity,
			Status:      models.BatchItemPending,
			SourceRowNo: line.SourceRowNo,
			CreatedBy:   operator,
			UpdatedBy:   operator,
		}
		if err := r.db.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

// OrderSummary is one row of the order listing.
type OrderSummary struct {
	ID               int64  `json:"id"`
	OrderNo          string `json:"order_no"`
	BatchNo          string `json:"batch_no"`
	Status           string `json:"status"`
	ExpectedBoxCount int    `json:"expected_box_count"`
	RangeStart       int    `json:"range_start"`
	RangeEnd         int    `json:"range_end"`
	UploadedFileName string `json:"uploaded_file_name"`
	LogisticsNo      string `json:"logistics_no"`
	CourierRemark    string `json:"courier_remark"`
	PendingItems     int    `json:"pending_items"`
	ConfirmedItems   int    `json:"confirmed_items"`
	CreatedAt        string `json:"created_at"`
}

// ListOrders returns order summaries with pending/confirmed item counts,
// newest first.
func (r *BatchInboundRepository) ListOrders() ([]OrderSummary, error) {
	sql := `SELECT a.id, a.order_no, a.batch_no, a.status, a.expected_box_count,
	a.range_start, a.range_end, a.uploaded_file_name, a.logistics_no, a.courier_remark,
	a.created_at,
	COALESCE(SUM(CASE WHEN b.status = 'pending' THEN 1 ELSE 0 END), 0) AS pending_items,
	COALESCE(SUM(CASE WHEN b.status = 'confirmed' THEN 1 ELSE 0 END), 0) AS confirmed_items
	FROM batch_inbound_orders a
	LEFT JOIN batch_inbound_items b ON b.order_id = a.id AND b.deleted_at IS NULL
	WHERE a.deleted_at IS NULL
	GROUP BY a.id, a.order_no, a.batch_no, a.status, a.expected_box_count,
	a.range_start, a.range_end, a.uploaded_file_name, a.logistics_no, a.courier_remark,
	a.created_at
	ORDER BY a.id DESC`

	var summaries []OrderSummary
	if err := r.db.Raw(sql).Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}
