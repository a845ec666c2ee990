package models

import (
	"gorm.io/gorm"
)

// Shelf is a physical storage shelf. Boxes auto-created by the batch
// inbound flow attach to the first active shelf by ascending id.
type Shelf struct {
	gorm.Model
	Code      string `json:"code" gorm:"unique;not null"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	CreatedBy int    `json:"created_by"`
	UpdatedBy int    `json:"updated_by"`
}

// Box is a physical storage container. Code is the canonical form
// (B-0001); Ordinal is the decoded integer used by range allocation.
type Box struct {
	gorm.Model
	Code      string `json:"code" gorm:"unique;not null"`
	Ordinal   int    `json:"ordinal" gorm:"uniqueIndex;not null"`
	ShelfId   uint   `json:"shelf_id"`
	CreatedBy int    `json:"created_by"`
	UpdatedBy int    `json:"updated_by"`
}

type Sku struct {
	gorm.Model
	Code      string `json:"code" gorm:"unique;not null"`
	Name      string `json:"name"`
	CreatedBy int    `json:"created_by"`
	UpdatedBy int    `json:"updated_by"`
}
