package models

import "time"

// Document numbering. DR numbers identify work orders, PO numbers identify
// inbound purchase orders. A number, once issued, is never reused — voiding
// retires it permanently.

const (
	KindDR = "dr"
	KindPO = "po"

	DocStatusActive = "active"
	DocStatusVoid   = "void"

	OwnerTypeWorkOrder    = "work_order"
	OwnerTypeInboundOrder = "inbound_order"

	CounterKeyDR = "dr_number"
	CounterKeyPO = "po_number"
)

// CounterKeyFor maps a document kind to its sequence counter key.
func CounterKeyFor(kind string) string {
	if kind == KindPO {
		return CounterKeyPO
	}
	return CounterKeyDR
}

// SequenceCounter is the single source of truth for "what number comes next".
// At most one row per key; read and advanced only under a row lock inside the
// allocating transaction.
type SequenceCounter struct {
	Key       string `gorm:"primaryKey;size:32"` // dr_number, po_number
	NextValue int    `gorm:"not null"`
	UpdatedAt time.Time
}

// NumberedDocument is the append-only ledger of every DR/PO number ever
// issued. The (kind, number) unique index is the safety net the allocator's
// retry logic depends on.
type NumberedDocument struct {
	ID         uint   `gorm:"primaryKey"`
	Kind       string `gorm:"size:8;not null;uniqueIndex:idx_docs_kind_number,priority:1"` // dr, po
	Number     int    `gorm:"not null;uniqueIndex:idx_docs_kind_number,priority:2"`
	Status     string `gorm:"size:16;not null;default:'active'"` // active, void
	OwnerType  string `gorm:"size:32"`                           // work_order, inbound_order
	OwnerID    *uint  // nil exactly when status=void
	EstimateID *uint  `gorm:"index"` // originating estimate, when known
	ClientName string
	VoidedAt   *time.Time
	VoidedBy   string
	VoidReason string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
