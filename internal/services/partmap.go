package services

import "github.com/fabworks/shoptrack/internal/models"

// WorkOrderPartFromEstimatePart copies an estimate line item onto a work
// order. Every specification and pricing field carries over; PartNumber
// ordering is preserved. MaterialReceived is forced true for
// customer-supplied parts — the client brings that material with the job.
func WorkOrderPartFromEstimatePart(workOrderID uint, p models.EstimatePart) models.WorkOrderPart {
	return models.WorkOrderPart{
		WorkOrderID:                 workOrderID,
		EstimatePartID:              p.ID,
		PartNumber:                  p.PartNumber,
		PartType:                    p.PartType,
		MaterialDescription:         p.MaterialDescription,
		Quantity:                    p.Quantity,
		UnitPrice:                   p.UnitPrice,
		LineTotal:                   p.LineTotal,
		MaterialSource:              p.MaterialSource,
		SupplierName:                p.SupplierName,
		MaterialOrdered:             p.MaterialOrdered,
		MaterialPurchaseOrderNumber: p.MaterialPurchaseOrderNumber,
		MaterialOrderedAt:           p.MaterialOrderedAt,
		MaterialReceived:            p.MaterialSource == models.MaterialCustomerSupplied || p.MaterialReceived,
		InboundOrderID:              p.InboundOrderID,
	}
}
