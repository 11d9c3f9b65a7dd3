package models

import "time"

// Activity logging
type ActivityLog struct {
	ID             uint   `gorm:"primaryKey"`
	EventID        string `gorm:"size:36;index"` // correlates with request logs
	Type           string // ex: "estimate_converted", "material_ordered", "number_voided"
	ResourceType   string // ex: "WorkOrder", "InboundOrder", "NumberedDocument"
	ResourceID     uint
	ResourceNumber string // display form, ex: "DR-3000", "PO1042"
	ClientName     string
	Description    string
	Details        string // free-form JSON or text
	CreatedAt      time.Time
}
