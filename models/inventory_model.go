package models

import (
	"warehouse-app/controllers/idgen"

	"gorm.io/gorm"
)

// Stock movement types and originating order kinds.
const (
	MovementBatchInbound = "batch_inbound_confirm"
	MovementPlainInbound = "inbound_confirm"
	MovementAdjustment   = "manual_adjustment"

	RefBatchInboundOrder = "batch_inbound_order"
	RefInboundOrder      = "inbound_order"
	RefManual            = "manual"
)

// InventoryBoxSku is the ledger row: current quantity of one SKU inside
// one box. Created lazily on first movement into the pair.
type InventoryBoxSku struct {
	gorm.Model
	BoxId     uint `json:"box_id" gorm:"uniqueIndex:idx_inventory_box_sku;not null"`
	SkuId     uint `json:"sku_id" gorm:"uniqueIndex:idx_inventory_box_sku;not null"`
	Qty       int  `json:"qty" gorm:"default:0"`
	CreatedBy int  `json:"created_by"`
	UpdatedBy int  `json:"updated_by"`
}

// StockMovement is the append-only movement log. Rows are never updated
// or deleted; the ledger qty always equals the sum of its deltas.
type StockMovement struct {
	gorm.Model
	ID           int64  `json:"id" gorm:"primary_key"`
	MovementType string `json:"movement_type"`
	RefType      string `json:"ref_type"`
	RefId        int64  `json:"ref_id"`
	BoxId        uint   `json:"box_id" gorm:"index"`
	SkuId        uint   `json:"sku_id" gorm:"index"`
	QtyDelta     int    `json:"qty_delta"`
	CreatedBy    int    `json:"created_by"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == 0 {
		m.ID = idgen.GenerateID()
	}
	return
}
