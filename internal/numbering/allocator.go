package numbering

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fabworks/shoptrack/internal/models"

	"gorm.io/gorm"
)

// allocateRetries bounds the duplicate-conflict retry loop before the
// allocation is surfaced as ErrAllocationConflict.
const allocateRetries = 3

// AllocateTx allocates the next number for kind inside tx and advances the
// counter. With explicit set, that exact number is used — failing with
// ErrNumberAlreadyIssued if it was ever issued — and the counter advances to
// max(counter, explicit+1).
func (s *Service) AllocateTx(tx *gorm.DB, kind string, explicit *int) (int, error) {
	if err := validKind(kind); err != nil {
		return 0, err
	}
	if explicit != nil {
		n := *explicit
		var count int64
		if err := tx.Model(&models.NumberedDocument{}).
			Where("kind = ? AND number = ?", kind, n).Count(&count).Error; err != nil {
			return 0, fmt.Errorf("check issued numbers: %w", err)
		}
		if count > 0 {
			return 0, fmt.Errorf("%w: %s %d", ErrNumberAlreadyIssued, kind, n)
		}
		ctr, err := s.lockCounter(tx, kind)
		if err != nil {
			return 0, err
		}
		if ctr.NextValue < n+1 {
			if err := tx.Model(ctr).Update("next_value", n+1).Error; err != nil {
				return 0, fmt.Errorf("advance counter: %w", err)
			}
		}
		return n, nil
	}
	ctr, err := s.lockCounter(tx, kind)
	if err != nil {
		return 0, err
	}
	n := ctr.NextValue
	if err := tx.Model(ctr).Update("next_value", n+1).Error; err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}
	return n, nil
}

// AllocateRegisterInput names the owner the allocated number will be bound to.
type AllocateRegisterInput struct {
	Kind       string
	Explicit   *int
	OwnerType  string
	OwnerID    uint
	ClientName string
	EstimateID *uint
}

// AllocateAndRegisterTx allocates a number and registers it in the ledger,
// retrying with a freshly advanced counter when the register hits a number
// that was issued before the counter existed. The register runs under a
// savepoint so a duplicate insert does not poison the outer transaction.
func (s *Service) AllocateAndRegisterTx(tx *gorm.DB, in AllocateRegisterInput) (*models.NumberedDocument, error) {
	for attempt := 0; attempt < allocateRetries; attempt++ {
		n, err := s.AllocateTx(tx, in.Kind, in.Explicit)
		if err != nil {
			return nil, err
		}
		var doc *models.NumberedDocument
		regErr := tx.Transaction(func(stx *gorm.DB) error {
			var rerr error
			doc, rerr = s.RegisterTx(stx, RegisterInput{
				Kind:       in.Kind,
				Number:     n,
				OwnerType:  in.OwnerType,
				OwnerID:    in.OwnerID,
				ClientName: in.ClientName,
				EstimateID: in.EstimateID,
			})
			return rerr
		})
		if regErr == nil {
			return doc, nil
		}
		if !errors.Is(regErr, ErrDuplicateNumber) {
			return nil, regErr
		}
		if in.Explicit != nil {
			return nil, fmt.Errorf("%w: %s %d", ErrNumberAlreadyIssued, in.Kind, n)
		}
		// Counter already advanced past n; the next attempt re-reads it.
	}
	return nil, fmt.Errorf("%w: %s", ErrAllocationConflict, in.Kind)
}

// isDuplicateErr recognizes unique-constraint violations across the gorm
// error translator, postgres, and sqlite.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
