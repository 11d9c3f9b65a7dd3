package numbering

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fabworks/shoptrack/internal/models"

	"gorm.io/gorm"
)

type RegisterInput struct {
	Kind       string
	Number     int
	OwnerType  string
	OwnerID    uint
	ClientName string
	EstimateID *uint
}

// RegisterTx creates the ledger row for an allocated number with status
// active. Returns ErrDuplicateNumber if (kind, number) was already issued.
func (s *Service) RegisterTx(tx *gorm.DB, in RegisterInput) (*models.NumberedDocument, error) {
	if err := validKind(in.Kind); err != nil {
		return nil, err
	}
	ownerID := in.OwnerID
	doc := models.NumberedDocument{
		Kind:       in.Kind,
		Number:     in.Number,
		Status:     models.DocStatusActive,
		OwnerType:  in.OwnerType,
		OwnerID:    &ownerID,
		EstimateID: in.EstimateID,
		ClientName: in.ClientName,
	}
	if err := tx.Create(&doc).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, fmt.Errorf("%w: %s %d", ErrDuplicateNumber, in.Kind, in.Number)
		}
		return nil, fmt.Errorf("register %s %d: %w", in.Kind, in.Number, err)
	}
	return &doc, nil
}

// BindOwnerTx attaches a ledger row to its owner record. Used when the owner
// row is created after the number is claimed, inside the same transaction.
func (s *Service) BindOwnerTx(tx *gorm.DB, doc *models.NumberedDocument, ownerID uint) error {
	doc.OwnerID = &ownerID
	return tx.Model(doc).Update("owner_id", ownerID).Error
}

// Void retires a number for good: the bound work order and its parts are
// deleted, the ledger row flips to void and detaches from its owner. The
// number is never reissued. active → void is the only transition; there is
// no way back.
func (s *Service) Void(kind string, number int, reason, voidedBy string) (*models.NumberedDocument, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}
	if strings.TrimSpace(voidedBy) == "" {
		voidedBy = "admin"
	}
	var doc models.NumberedDocument
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).Where("kind = ? AND number = ?", kind, number).First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s %d", ErrNotFound, kind, number)
		}
		if err != nil {
			return fmt.Errorf("load document %s %d: %w", kind, number, err)
		}
		if doc.Status == models.DocStatusVoid {
			return fmt.Errorf("%w: %s %d", ErrAlreadyVoid, kind, number)
		}
		if doc.OwnerType == models.OwnerTypeWorkOrder && doc.OwnerID != nil {
			if err := tx.Where("work_order_id = ?", *doc.OwnerID).Delete(&models.WorkOrderPart{}).Error; err != nil {
				return fmt.Errorf("delete work order parts: %w", err)
			}
			if err := tx.Delete(&models.WorkOrder{}, *doc.OwnerID).Error; err != nil {
				return fmt.Errorf("delete work order: %w", err)
			}
		}
		now := time.Now()
		doc.Status = models.DocStatusVoid
		doc.VoidedAt = &now
		doc.VoidedBy = voidedBy
		doc.VoidReason = reason
		doc.OwnerID = nil
		return tx.Model(&doc).
			Select("status", "voided_at", "voided_by", "void_reason", "owner_id").
			Updates(&doc).Error
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Stats summarizes one kind's number space.
type Stats struct {
	Kind             string `json:"kind"`
	LastActiveNumber int    `json:"last_active_number"`
	NextNumber       int    `json:"next_number"`
	ActiveCount      int64  `json:"active_count"`
	VoidedCount      int64  `json:"voided_count"`
}

func (s *Service) Stats(kind string) (Stats, error) {
	if err := validKind(kind); err != nil {
		return Stats{}, err
	}
	st := Stats{Kind: kind}
	err := s.DB.Model(&models.NumberedDocument{}).
		Where("kind = ? AND status = ?", kind, models.DocStatusActive).
		Select("COALESCE(MAX(number), 0)").Scan(&st.LastActiveNumber).Error
	if err != nil {
		return Stats{}, fmt.Errorf("scan last active: %w", err)
	}
	if err := s.DB.Model(&models.NumberedDocument{}).
		Where("kind = ? AND status = ?", kind, models.DocStatusActive).
		Count(&st.ActiveCount).Error; err != nil {
		return Stats{}, err
	}
	if err := s.DB.Model(&models.NumberedDocument{}).
		Where("kind = ? AND status = ?", kind, models.DocStatusVoid).
		Count(&st.VoidedCount).Error; err != nil {
		return Stats{}, err
	}
	next, err := s.Peek(kind)
	if err != nil {
		return Stats{}, err
	}
	st.NextNumber = next
	return st, nil
}
