package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Work order statuses.
const (
	WorkOrderReceived            = "received"
	WorkOrderWaitingForMaterials = "waiting_for_materials"
)

// WorkOrder is created by converting an estimate. OrderNumber is always
// assigned ("DR-<n>", or a timestamp fallback when numbering is deferred);
// DRNumber stays nil until a number is allocated.
type WorkOrder struct {
	ID                        uint   `gorm:"primaryKey"`
	OrderNumber               string `gorm:"size:40;not null;uniqueIndex"`
	DRNumber                  *int   `gorm:"index"`
	EstimateID                uint   `gorm:"not null;index"`
	ClientName                string `gorm:"not null;index"`
	ContactName               string
	ContactEmail              string
	ContactPhone              string
	ClientPurchaseOrderNumber string
	PromisedDate              *time.Time
	StorageLocation           string
	Status                    string          `gorm:"size:32;not null"` // received, waiting_for_materials
	EstimateTotal             decimal.Decimal `gorm:"type:numeric"`
	PendingInboundCount       int             // we_order parts not yet received
	Parts                     []WorkOrderPart `gorm:"foreignKey:WorkOrderID"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// WorkOrderPart is copied field-for-field from an EstimatePart at conversion
// time; see services.WorkOrderPartFromEstimatePart for the mapping.
type WorkOrderPart struct {
	ID                          uint   `gorm:"primaryKey"`
	WorkOrderID                 uint   `gorm:"not null;index"`
	EstimatePartID              uint   `gorm:"index"`
	PartNumber                  int    `gorm:"not null"`
	PartType                    string
	MaterialDescription         string
	Quantity                    int             `gorm:"not null;default:1"`
	UnitPrice                   decimal.Decimal `gorm:"type:numeric"`
	LineTotal                   decimal.Decimal `gorm:"type:numeric"`
	MaterialSource              string          `gorm:"size:32;not null"`
	SupplierName                string
	MaterialOrdered             bool
	MaterialPurchaseOrderNumber string
	MaterialOrderedAt           *time.Time
	MaterialReceived            bool
	InboundOrderID              *uint
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}
