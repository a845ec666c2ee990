package models

import (
	"gorm.io/gorm"
)

const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// OperationAuditLog is an append-only record of one mutation: normalized
// before/after snapshots plus the derived changed-field diff.
type OperationAuditLog struct {
	gorm.Model
	EntityType    string `json:"entity_type" gorm:"index"`
	EntityId      string `json:"entity_id" gorm:"index"`
	Action        string `json:"action"`
	EventType     string `json:"event_type"`
	BeforeJson    string `json:"before_json" gorm:"type:text"`
	AfterJson     string `json:"after_json" gorm:"type:text"`
	ChangedFields string `json:"changed_fields" gorm:"type:text"`
	OperatorId    int    `json:"operator_id"`
	RequestId     string `json:"request_id"`
	Remark        string `json:"remark"`
}
