package services

import (
	"errors"
	"fmt"
)

var (
	ErrEstimateNotFound     = errors.New("estimate not found")
	ErrOwnerNotFound        = errors.New("owner record not found")
	ErrAlreadyConverted     = errors.New("estimate already converted")
	ErrWorkOrderStillExists = errors.New("work order still exists")
	ErrMissingPONumber      = errors.New("base purchase order number required")
	ErrNoPartsSelected      = errors.New("no parts selected")
	ErrNoValidParts         = errors.New("selection matched no orderable parts")
)

// MaterialNotOrderedError blocks conversion while we_order parts are still
// unordered; Blocking tells the caller how many parts stand in the way.
type MaterialNotOrderedError struct {
	Blocking int
}

func (e *MaterialNotOrderedError) Error() string {
	return fmt.Sprintf("%d part(s) need material ordered before conversion", e.Blocking)
}
