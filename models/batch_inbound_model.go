package models

import (
	"time"

	"warehouse-app/controllers/idgen"
	"warehouse-app/types"

	"gorm.io/gorm"
)

// Batch inbound order lifecycle. Transitions only move forward
// (waiting_upload -> waiting_inbound -> confirmed) or sideways into void.
const (
	BatchOrderWaitingUpload  = "waiting_upload"
	BatchOrderWaitingInbound = "waiting_inbound"
	BatchOrderConfirmed      = "confirmed"
	BatchOrderVoid           = "void"

	BatchItemPending   = "pending"
	BatchItemConfirmed = "confirmed"
)

type BatchInboundOrder struct {
	gorm.Model
	ID                int64            `json:"id" gorm:"primary_key"`
	OrderNo           string           `json:"order_no" gorm:"unique"`
	BatchNo           string           `json:"batch_no"`
	Status            string           `json:"status" gorm:"default:'waiting_upload'"`
	ExpectedBoxCount  int              `json:"expected_box_count"`
	RangeStart        int              `json:"range_start"`
	RangeEnd          int              `json:"range_end"`
	CollectedBoxCodes types.StringList `json:"collected_box_codes" gorm:"type:text"`
	UploadedFileName  string           `json:"uploaded_file_name"`
	LogisticsNo       string           `json:"logistics_no"`
	CourierRemark     string           `json:"courier_remark"`
	CreatedBy         int              `json:"created_by"`
	UpdatedBy         int              `json:"updated_by"`
	DeletedBy         int              `json:"deleted_by"`

	Items []BatchInboundItem `gorm:"foreignKey:OrderId;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

func (o *BatchInboundOrder) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == 0 {
		o.ID = idgen.GenerateID()
	}
	return
}

type BatchInboundItem struct {
	gorm.Model
	OrderId     int64      `json:"order_id" gorm:"index;uniqueIndex:idx_batch_item_order_box_sku"`
	BoxCode     string     `json:"box_code" gorm:"size:32;uniqueIndex:idx_batch_item_order_box_sku"`
	SkuCode     string     `json:"sku_code" gorm:"size:64;uniqueIndex:idx_batch_item_order_box_sku"`
	Quantity    int        `json:"quantity"`
	Status      string     `json:"status" gorm:"default:'pending'"`
	SourceRowNo int        `json:"source_row_no"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	CreatedBy   int        `json:"created_by"`
	UpdatedBy   int        `json:"updated_by"`
}
