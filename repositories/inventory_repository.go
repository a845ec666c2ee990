package repositories

import (
	"errors"
	"fmt"

	"warehouse-app/controllers/helpers"
	"warehouse-app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository builds the repository over the given handle,
// which may be an open transaction.
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db}
}

// IncrementStock is the single choke point for quantity changes. It
// locks (or lazily creates) the ledger row for (box, sku), applies the
// signed delta and unconditionally appends a StockMovement referencing
// the originating operation. A delta that would drive the quantity
// negative is a conflict.
func (r *InventoryRepository) IncrementStock(boxId, skuId uint, delta int, movementType, refType string, refId int64, operator int) (before int, after int, err error) {
	q := r.db
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row models.InventoryBoxSku
	err = q.Where("box_id = ? AND sku_id = ?", boxId, skuId).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.InventoryBoxSku{BoxId: boxId, SkuId: skuId, Qty: 0, CreatedBy: operator, UpdatedBy: operator}
		if err = r.db.Create(&row).Error; err != nil {
			return 0, 0, err
		}
	} else if err != nil {
		return 0, 0, err
	}

	before = row.Qty
	after = before + delta
	if after < 0 {
		return before, before, helpers.NewConflict(
			fmt.Sprintf("stock of sku %d in box %d would become negative (%d%+d)", skuId, boxId, before, delta))
	}

	if err = r.db.Model(&models.InventoryBoxSku{}).Where("id = ?", row.ID).
		Updates(map[string]interface{}{"qty": after, "updated_by": operator}).Error; err != nil {
		return before, before, err
	}

	movement := models.StockMovement{
		MovementType: movementType,
		RefType:      refType,
		RefId:        refId,
		BoxId:        boxId,
		SkuId:        skuId,
		QtyDelta:     delta,
		CreatedBy:    operator,
	}
	if err = r.db.Create(&movement).Error; err != nil {
		return before, before, err
	}

	return before, after, nil
}

// StockRow is one line of the stock listing.
type StockRow struct {
	BoxCode string `json:"box_code"`
	Shelf   string `json:"shelf"`
	SkuCode string `json:"sku_code"`
	SkuName string `json:"sku_name"`
	Qty     int    `json:"qty"`
}

// GetStockList returns current stock joined with box and sku masters,
// ordered by box ordinal then sku code.
func (r *InventoryRepository) GetStockList() ([]StockRow, error) {
	sql := `SELECT b.code AS box_code, COALESCE(sh.code, '') AS shelf,
	s.code AS sku_code, s.name AS sku_name, a.qty
	FROM inventory_box_skus a
	INNER JOIN boxes b ON a.box_id = b.id
	INNER JOIN skus s ON a.sku_id = s.id
	LEFT JOIN shelves sh ON b.shelf_id = sh.id
	WHERE a.deleted_at IS NULL
	ORDER BY b.ordinal ASC, s.code ASC`

	var stocks []StockRow
	if err := r.db.Raw(sql).Scan(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// CountMovements returns the number of movement rows for one reference.
func (r *InventoryRepository) CountMovements(refType string, refId int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.StockMovement{}).
		Where("ref_type = ? AND ref_id = ?", refType, refId).Count(&count).Error
	return count, err
}
