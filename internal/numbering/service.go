package numbering

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fabworks/shoptrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns the sequence counters and the numbered-document ledger.
// Allocation must happen inside the same transaction as the ledger insert and
// the owner-record write, so a downstream failure rolls back the counter
// advance too; the *Tx methods take that enclosing transaction.
type Service struct {
	DB *gorm.DB
	// DRFloor keeps new DR numbers above pre-migration records when the
	// counter is derived from existing tables.
	DRFloor int
}

func NewService(db *gorm.DB, drFloor int) *Service {
	return &Service{DB: db, DRFloor: drFloor}
}

func validKind(kind string) error {
	if kind != models.KindDR && kind != models.KindPO {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}

// lockCounter reads the counter row under a row lock, seeding it from the
// existing tables if it does not exist yet. The lock is held until the
// enclosing transaction ends.
func (s *Service) lockCounter(tx *gorm.DB, kind string) (*models.SequenceCounter, error) {
	key := models.CounterKeyFor(kind)
	var ctr models.SequenceCounter
	err := lockForUpdate(tx).Where("key = ?", key).First(&ctr).Error
	if err == nil {
		return &ctr, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("read counter %s: %w", key, err)
	}
	next, err := s.nextFromTables(tx, kind)
	if err != nil {
		return nil, err
	}
	ctr = models.SequenceCounter{Key: key, NextValue: next}
	if err := tx.Create(&ctr).Error; err != nil {
		// Another transaction seeded the row first; re-read under lock.
		if isDuplicateErr(err) {
			if rerr := lockForUpdate(tx).Where("key = ?", key).First(&ctr).Error; rerr == nil {
				return &ctr, nil
			}
		}
		return nil, fmt.Errorf("seed counter %s: %w", key, err)
	}
	return &ctr, nil
}

// lockForUpdate applies SELECT ... FOR UPDATE where the dialect supports it.
// sqlite serializes writers at the database level, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// nextFromTables derives the next number from the ledger plus the owner-table
// high-water mark. This is the one-time seeding path; steady state reads the
// counter row.
func (s *Service) nextFromTables(tx *gorm.DB, kind string) (int, error) {
	var maxDoc int
	err := tx.Model(&models.NumberedDocument{}).
		Where("kind = ?", kind).
		Select("COALESCE(MAX(number), 0)").Scan(&maxDoc).Error
	if err != nil {
		return 0, fmt.Errorf("scan ledger high-water: %w", err)
	}
	high := maxDoc
	switch kind {
	case models.KindDR:
		var maxWO int
		err := tx.Model(&models.WorkOrder{}).
			Select("COALESCE(MAX(dr_number), 0)").Scan(&maxWO).Error
		if err != nil {
			return 0, fmt.Errorf("scan work order high-water: %w", err)
		}
		if maxWO > high {
			high = maxWO
		}
		if high+1 < s.DRFloor {
			return s.DRFloor, nil
		}
	case models.KindPO:
		// Inbound orders store the formatted "PO<n>" string; parse in Go.
		var formatted []string
		err := tx.Model(&models.InboundOrder{}).
			Pluck("purchase_order_number", &formatted).Error
		if err != nil {
			return 0, fmt.Errorf("scan inbound order high-water: %w", err)
		}
		for _, f := range formatted {
			var n int
			if _, serr := fmt.Sscanf(strings.TrimSpace(f), "PO%d", &n); serr == nil && n > high {
				high = n
			}
		}
	}
	return high + 1, nil
}

// Bootstrap seeds the counter row for kind if it is missing and returns the
// next value. Safe to call repeatedly; an existing counter is left alone.
func (s *Service) Bootstrap(kind string) (int, error) {
	if err := validKind(kind); err != nil {
		return 0, err
	}
	var next int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ctr, err := s.lockCounter(tx, kind)
		if err != nil {
			return err
		}
		next = ctr.NextValue
		return nil
	})
	return next, err
}

// Peek returns the number the next allocation would yield without advancing
// anything. Used by the UI to pre-fill form fields.
func (s *Service) Peek(kind string) (int, error) {
	if err := validKind(kind); err != nil {
		return 0, err
	}
	var ctr models.SequenceCounter
	err := s.DB.Where("key = ?", models.CounterKeyFor(kind)).First(&ctr).Error
	if err == nil {
		return ctr.NextValue, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	return s.nextFromTables(s.DB, kind)
}
