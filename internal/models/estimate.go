package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material sourcing for a line item.
const (
	MaterialCustomerSupplied = "customer_supplied"
	MaterialWeOrder          = "we_order"
	MaterialInStock          = "in_stock"
)

// Estimate is the immutable source of truth for a quote. Once converted it
// points at its work order via WorkOrderID; re-conversion is blocked unless
// the work order no longer exists and the link is explicitly reset.
type Estimate struct {
	ID             uint   `gorm:"primaryKey"`
	EstimateNumber string `gorm:"size:40;index"`
	ClientName     string `gorm:"not null;index"`
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	Status         string          `gorm:"size:16;not null;default:'draft'"` // draft, sent, accepted
	GrandTotal     decimal.Decimal `gorm:"type:numeric"`
	WorkOrderID    *uint
	AcceptedAt     *time.Time
	Parts          []EstimatePart `gorm:"foreignKey:EstimateID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type EstimatePart struct {
	ID                  uint   `gorm:"primaryKey"`
	EstimateID          uint   `gorm:"not null;index"`
	PartNumber          int    `gorm:"not null"` // position within the estimate
	PartType            string // ex: bracket, frame, panel
	MaterialDescription string
	Quantity            int             `gorm:"not null;default:1"`
	UnitPrice           decimal.Decimal `gorm:"type:numeric"`
	LineTotal           decimal.Decimal `gorm:"type:numeric"`
	MaterialSource      string          `gorm:"size:32;not null;default:'customer_supplied'"` // customer_supplied, we_order, in_stock
	SupplierName        string
	MaterialOrdered     bool
	// Formatted PO the material was ordered on, e.g. "PO1042".
	MaterialPurchaseOrderNumber string
	MaterialOrderedAt           *time.Time
	MaterialReceived            bool
	InboundOrderID              *uint
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}
