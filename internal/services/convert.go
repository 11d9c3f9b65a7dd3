package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/fabworks/shoptrack/internal/models"
	"github.com/fabworks/shoptrack/internal/numbering"

	"gorm.io/gorm"
)

// ConversionService turns an accepted estimate into a work order: one
// transaction covering the DR allocation, the work order and its parts, the
// ledger registration, and the estimate back-link. A failure anywhere rolls
// back all of it.
type ConversionService struct {
	DB       *gorm.DB
	Numbers  *numbering.Service
	Activity ActivityLogger
}

func NewConversionService(db *gorm.DB, numbers *numbering.Service, activity ActivityLogger) *ConversionService {
	if activity == nil {
		activity = NopActivityLogger{}
	}
	return &ConversionService{DB: db, Numbers: numbers, Activity: activity}
}

type ConvertOptions struct {
	ClientPurchaseOrderNumber string
	PromisedDate              *time.Time
	StorageLocation           string
	CustomDRNumber            *int
	// DeferNumbering preserves the legacy path that leaves a work order
	// unnumbered while materials are pending. The HTTP endpoint never sets
	// it; the canonical conversion always assigns a DR number.
	DeferNumbering bool
}

func (s *ConversionService) Convert(estimateID uint, opts ConvertOptions) (*models.WorkOrder, error) {
	// Preconditions are checked before any write.
	var est models.Estimate
	err := s.DB.Preload("Parts", func(db *gorm.DB) *gorm.DB {
		return db.Order("part_number asc")
	}).First(&est, estimateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrEstimateNotFound, estimateID)
	}
	if err != nil {
		return nil, fmt.Errorf("load estimate %d: %w", estimateID, err)
	}
	if est.WorkOrderID != nil {
		return nil, fmt.Errorf("%w: estimate %d -> work order %d", ErrAlreadyConverted, est.ID, *est.WorkOrderID)
	}
	blocking := 0
	allCustomerSupplied := true
	for _, p := range est.Parts {
		if p.MaterialSource != models.MaterialCustomerSupplied {
			allCustomerSupplied = false
		}
		if p.MaterialSource == models.MaterialWeOrder && !p.MaterialOrdered {
			blocking++
		}
	}
	if blocking > 0 {
		return nil, &MaterialNotOrderedError{Blocking: blocking}
	}

	var wo models.WorkOrder
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-check the conversion link inside the transaction; a concurrent
		// convert on the same estimate must not slip through.
		var cur models.Estimate
		if err := tx.Select("id", "work_order_id").First(&cur, est.ID).Error; err != nil {
			return fmt.Errorf("reload estimate: %w", err)
		}
		if cur.WorkOrderID != nil {
			return fmt.Errorf("%w: estimate %d -> work order %d", ErrAlreadyConverted, est.ID, *cur.WorkOrderID)
		}

		assignNumber := allCustomerSupplied || !opts.DeferNumbering
		var doc *models.NumberedDocument
		var drNumber *int
		var orderNumber string
		if assignNumber {
			estID := est.ID
			var err error
			doc, err = s.Numbers.AllocateAndRegisterTx(tx, numbering.AllocateRegisterInput{
				Kind:       models.KindDR,
				Explicit:   opts.CustomDRNumber,
				OwnerType:  models.OwnerTypeWorkOrder,
				ClientName: est.ClientName,
				EstimateID: &estID,
			})
			if err != nil {
				return err
			}
			n := doc.Number
			drNumber = &n
			orderNumber = fmt.Sprintf("DR-%d", n)
		} else {
			orderNumber = "WO-" + time.Now().Format("20060102-150405")
		}

		status := models.WorkOrderReceived
		if !allCustomerSupplied {
			status = models.WorkOrderWaitingForMaterials
		}

		parts := make([]models.WorkOrderPart, 0, len(est.Parts))
		pending := 0
		for _, p := range est.Parts {
			wp := WorkOrderPartFromEstimatePart(0, p)
			if wp.MaterialSource == models.MaterialWeOrder && !wp.MaterialReceived {
				pending++
			}
			parts = append(parts, wp)
		}

		wo = models.WorkOrder{
			OrderNumber:               orderNumber,
			DRNumber:                  drNumber,
			EstimateID:                est.ID,
			ClientName:                est.ClientName,
			ContactName:               est.ContactName,
			ContactEmail:              est.ContactEmail,
			ContactPhone:              est.ContactPhone,
			ClientPurchaseOrderNumber: opts.ClientPurchaseOrderNumber,
			PromisedDate:              opts.PromisedDate,
			StorageLocation:           opts.StorageLocation,
			Status:                    status,
			EstimateTotal:             est.GrandTotal,
			PendingInboundCount:       pending,
		}
		if err := tx.Create(&wo).Error; err != nil {
			return fmt.Errorf("create work order: %w", err)
		}
		for i := range parts {
			parts[i].WorkOrderID = wo.ID
		}
		if len(parts) > 0 {
			if err := tx.Create(&parts).Error; err != nil {
				return fmt.Errorf("create work order parts: %w", err)
			}
		}
		if doc != nil {
			if err := s.Numbers.BindOwnerTx(tx, doc, wo.ID); err != nil {
				return fmt.Errorf("bind dr number: %w", err)
			}
		}
		now := time.Now()
		est.Status = "accepted"
		est.AcceptedAt = &now
		est.WorkOrderID = &wo.ID
		if err := tx.Model(&models.Estimate{ID: est.ID}).
			Select("status", "accepted_at", "work_order_id").
			Updates(map[string]any{"status": "accepted", "accepted_at": now, "work_order_id": wo.ID}).Error; err != nil {
			return fmt.Errorf("update estimate: %w", err)
		}
		wo.Parts = parts
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Activity.Log("estimate_converted", "WorkOrder", wo.ID, wo.OrderNumber, wo.ClientName,
		fmt.Sprintf("Converted estimate %d to work order %s", est.ID, wo.OrderNumber), "")
	return &wo, nil
}

// ResetConversion clears the estimate's work-order link so it can be
// converted again. Allowed only once the work order itself is gone; resetting
// under a live work order would orphan it.
func (s *ConversionService) ResetConversion(estimateID uint) error {
	var est models.Estimate
	err := s.DB.First(&est, estimateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %d", ErrEstimateNotFound, estimateID)
	}
	if err != nil {
		return fmt.Errorf("load estimate %d: %w", estimateID, err)
	}
	if est.WorkOrderID == nil {
		return nil // nothing to reset
	}
	var count int64
	if err := s.DB.Model(&models.WorkOrder{}).Where("id = ?", *est.WorkOrderID).Count(&count).Error; err != nil {
		return fmt.Errorf("check work order: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: work order %d", ErrWorkOrderStillExists, *est.WorkOrderID)
	}
	return s.DB.Model(&models.Estimate{ID: est.ID}).
		Select("status", "work_order_id").
		Updates(map[string]any{"status": "accepted", "work_order_id": nil}).Error
}
