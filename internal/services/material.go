package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fabworks/shoptrack/internal/models"
	"github.com/fabworks/shoptrack/internal/numbering"

	"gorm.io/gorm"
)

// UnknownSupplierLabel groups parts whose supplier was never filled in.
const UnknownSupplierLabel = "Unknown Supplier"

// MaterialOrderService splits a selection of we_order line items into one
// inbound purchase order per supplier, numbering the orders sequentially from
// a base PO number.
type MaterialOrderService struct {
	DB       *gorm.DB
	Numbers  *numbering.Service
	Activity ActivityLogger
}

func NewMaterialOrderService(db *gorm.DB, numbers *numbering.Service, activity ActivityLogger) *MaterialOrderService {
	if activity == nil {
		activity = NopActivityLogger{}
	}
	return &MaterialOrderService{DB: db, Numbers: numbers, Activity: activity}
}

// OwnerRef names the record the selected parts belong to.
type OwnerRef struct {
	Type string // estimate, work_order
	ID   uint
}

type PurchaseOrderResult struct {
	InboundOrderID      uint   `json:"inbound_order_id"`
	PurchaseOrderNumber string `json:"purchase_order_number"`
	Supplier            string `json:"supplier"`
	PartCount           int    `json:"part_count"`
}

type OrderMaterialResult struct {
	PurchaseOrders []PurchaseOrderResult `json:"purchase_orders"`
	TotalOrders    int                   `json:"total_orders"`
}

// materialLine is the supplier-grouping view of a part, independent of which
// table it came from.
type materialLine struct {
	id         uint
	partNumber int
	label      string
	quantity   int
	supplier   string
}

// OrderMaterial partitions the selected parts by supplier and creates one
// inbound order per group, numbered basePO, basePO+1, ... in lexicographic
// supplier order. Parts outside the caller's pre-filtered selection (wrong
// owner, not we_order, already ordered) are dropped, not rejected. The whole
// operation commits atomically or not at all.
func (s *MaterialOrderService) OrderMaterial(owner OwnerRef, basePO int, partIDs []uint) (*OrderMaterialResult, error) {
	if basePO <= 0 {
		return nil, ErrMissingPONumber
	}
	if len(partIDs) == 0 {
		return nil, ErrNoPartsSelected
	}
	clientName, estimateID, err := s.loadOwner(owner)
	if err != nil {
		return nil, err
	}
	lines, err := s.loadLines(owner, partIDs)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoValidParts
	}

	groups := map[string][]materialLine{}
	for _, l := range lines {
		key := l.supplier
		if strings.TrimSpace(key) == "" {
			key = UnknownSupplierLabel
		}
		groups[key] = append(groups[key], l)
	}
	suppliers := make([]string, 0, len(groups))
	for k := range groups {
		suppliers = append(suppliers, k)
	}
	sort.Strings(suppliers)

	result := &OrderMaterialResult{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for i, supplier := range suppliers {
			poNumber := basePO + i
			formatted := fmt.Sprintf("PO%d", poNumber)
			group := groups[supplier]

			descLines := make([]string, 0, len(group))
			ids := make([]uint, 0, len(group))
			for _, l := range group {
				descLines = append(descLines, fmt.Sprintf("Part %d: %s (Qty: %d)", l.partNumber, l.label, l.quantity))
				ids = append(ids, l.id)
			}

			io := models.InboundOrder{
				PurchaseOrderNumber: formatted,
				Supplier:            supplier,
				ClientName:          clientName,
				Description:         strings.Join(descLines, "\n"),
				Status:              "ordered",
				SourceType:          owner.Type,
				SourceID:            owner.ID,
			}
			if err := tx.Create(&io).Error; err != nil {
				return fmt.Errorf("create inbound order %s: %w", formatted, err)
			}

			explicit := poNumber
			if _, err := s.Numbers.AllocateAndRegisterTx(tx, numbering.AllocateRegisterInput{
				Kind:       models.KindPO,
				Explicit:   &explicit,
				OwnerType:  models.OwnerTypeInboundOrder,
				OwnerID:    io.ID,
				ClientName: clientName,
				EstimateID: estimateID,
			}); err != nil {
				return err
			}

			updates := map[string]any{
				"material_ordered":               true,
				"material_purchase_order_number": formatted,
				"material_ordered_at":            now,
				"inbound_order_id":               io.ID,
			}
			var markErr error
			if owner.Type == models.SourceWorkOrder {
				markErr = tx.Model(&models.WorkOrderPart{}).Where("id IN ?", ids).Updates(updates).Error
			} else {
				markErr = tx.Model(&models.EstimatePart{}).Where("id IN ?", ids).Updates(updates).Error
			}
			if markErr != nil {
				return fmt.Errorf("mark parts ordered for %s: %w", formatted, markErr)
			}

			result.PurchaseOrders = append(result.PurchaseOrders, PurchaseOrderResult{
				InboundOrderID:      io.ID,
				PurchaseOrderNumber: formatted,
				Supplier:            supplier,
				PartCount:           len(group),
			})
		}
		result.TotalOrders = len(result.PurchaseOrders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, po := range result.PurchaseOrders {
		s.Activity.Log("material_ordered", "InboundOrder", po.InboundOrderID, po.PurchaseOrderNumber, clientName,
			fmt.Sprintf("Ordered %d part(s) from %s on %s", po.PartCount, po.Supplier, po.PurchaseOrderNumber), "")
	}
	return result, nil
}

func (s *MaterialOrderService) loadOwner(owner OwnerRef) (clientName string, estimateID *uint, err error) {
	switch owner.Type {
	case models.SourceEstimate:
		var est models.Estimate
		if err := s.DB.Select("id", "client_name").First(&est, owner.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", nil, fmt.Errorf("%w: estimate %d", ErrOwnerNotFound, owner.ID)
			}
			return "", nil, fmt.Errorf("load estimate %d: %w", owner.ID, err)
		}
		id := est.ID
		return est.ClientName, &id, nil
	case models.SourceWorkOrder:
		var wo models.WorkOrder
		if err := s.DB.Select("id", "client_name", "estimate_id").First(&wo, owner.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", nil, fmt.Errorf("%w: work order %d", ErrOwnerNotFound, owner.ID)
			}
			return "", nil, fmt.Errorf("load work order %d: %w", owner.ID, err)
		}
		id := wo.EstimateID
		return wo.ClientName, &id, nil
	default:
		return "", nil, fmt.Errorf("%w: owner type %q", ErrOwnerNotFound, owner.Type)
	}
}

func (s *MaterialOrderService) loadLines(owner OwnerRef, partIDs []uint) ([]materialLine, error) {
	lines := []materialLine{}
	if owner.Type == models.SourceWorkOrder {
		var parts []models.WorkOrderPart
		err := s.DB.Where("id IN ? AND work_order_id = ? AND material_source = ? AND material_ordered = ?",
			partIDs, owner.ID, models.MaterialWeOrder, false).Find(&parts).Error
		if err != nil {
			return nil, fmt.Errorf("load work order parts: %w", err)
		}
		for _, p := range parts {
			lines = append(lines, materialLine{
				id: p.ID, partNumber: p.PartNumber, label: lineLabel(p.MaterialDescription, p.PartType),
				quantity: p.Quantity, supplier: p.SupplierName,
			})
		}
		return lines, nil
	}
	var parts []models.EstimatePart
	err := s.DB.Where("id IN ? AND estimate_id = ? AND material_source = ? AND material_ordered = ?",
		partIDs, owner.ID, models.MaterialWeOrder, false).Find(&parts).Error
	if err != nil {
		return nil, fmt.Errorf("load estimate parts: %w", err)
	}
	for _, p := range parts {
		lines = append(lines, materialLine{
			id: p.ID, partNumber: p.PartNumber, label: lineLabel(p.MaterialDescription, p.PartType),
			quantity: p.Quantity, supplier: p.SupplierName,
		})
	}
	return lines, nil
}

func lineLabel(materialDescription, partType string) string {
	if strings.TrimSpace(materialDescription) != "" {
		return materialDescription
	}
	return partType
}
