package models

import "time"

// Inbound order sources.
const (
	SourceEstimate  = "estimate"
	SourceWorkOrder = "work_order"
)

// InboundOrder is one supplier's purchase order, created when material is
// ordered for a group of line items. Description holds one line per part.
type InboundOrder struct {
	ID                  uint   `gorm:"primaryKey"`
	PurchaseOrderNumber string `gorm:"size:40;not null;index"` // formatted, e.g. "PO1042"
	Supplier            string `gorm:"not null;index"`
	ClientName          string
	Description         string `gorm:"type:text"`
	Status              string `gorm:"size:16;not null;default:'ordered'"` // ordered, received
	SourceType          string `gorm:"size:16;not null"`                   // estimate, work_order
	SourceID            uint   `gorm:"not null;index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
