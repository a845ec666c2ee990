package models

import (
	"warehouse-app/controllers/idgen"

	"gorm.io/gorm"
)

const (
	InboundOpen     = "open"
	InboundComplete = "complete"
)

// InboundOrder is the plain (non-batch) inbound flow: lines against
// already-known boxes and SKUs, confirmed in one shot through the same
// ledger primitive as the batch flow.
type InboundOrder struct {
	gorm.Model
	ID        int64  `json:"id" gorm:"primary_key"`
	InboundNo string `json:"inbound_no" gorm:"unique"`
	Status    string `json:"status" gorm:"default:'open'"`
	Remarks   string `json:"remarks"`
	CreatedBy int    `json:"created_by"`
	UpdatedBy int    `json:"updated_by"`

	Items []InboundItem `gorm:"foreignKey:OrderId;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

func (o *InboundOrder) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == 0 {
		o.ID = idgen.GenerateID()
	}
	return
}

type InboundItem struct {
	gorm.Model
	OrderId   int64  `json:"order_id" gorm:"index"`
	BoxId     uint   `json:"box_id"`
	BoxCode   string `json:"box_code"`
	SkuId     uint   `json:"sku_id"`
	SkuCode   string `json:"sku_code"`
	Quantity  int    `json:"quantity"`
	CreatedBy int    `json:"created_by"`
	UpdatedBy int    `json:"updated_by"`
}
