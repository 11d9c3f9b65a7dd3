package numbering

import "errors"

var (
	// ErrUnknownKind is returned for any kind other than dr/po.
	ErrUnknownKind = errors.New("unknown number kind")
	// ErrNotFound means no ledger row exists for (kind, number).
	ErrNotFound = errors.New("numbered document not found")
	// ErrAlreadyVoid means the number was voided before; void is terminal.
	ErrAlreadyVoid = errors.New("number already void")
	// ErrDuplicateNumber is the registry's unique-constraint violation.
	ErrDuplicateNumber = errors.New("duplicate number")
	// ErrNumberAlreadyIssued rejects an explicitly requested number that was
	// ever issued, active or void.
	ErrNumberAlreadyIssued = errors.New("number already issued")
	// ErrAllocationConflict surfaces after the bounded retry limit is hit.
	ErrAllocationConflict = errors.New("number allocation conflict")
	// ErrEmptyReason rejects a void without a reason.
	ErrEmptyReason = errors.New("void reason required")
)
