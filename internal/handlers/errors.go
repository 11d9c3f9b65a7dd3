package handlers

import (
	"errors"
	"net/http"

	"github.com/fabworks/shoptrack/internal/httpx"
	"github.com/fabworks/shoptrack/internal/numbering"
	"github.com/fabworks/shoptrack/internal/services"
)

// writeServiceError maps the core error taxonomy onto HTTP codes. Every
// failure body carries a machine-readable code; partial success never leaves
// this layer.
func writeServiceError(w http.ResponseWriter, err error) {
	var notOrdered *services.MaterialNotOrderedError
	switch {
	case errors.As(err, &notOrdered):
		httpx.JSONError(w, http.StatusConflict, "material_not_ordered", map[string]int{"blocking_parts": notOrdered.Blocking})
	case errors.Is(err, services.ErrEstimateNotFound),
		errors.Is(err, services.ErrOwnerNotFound),
		errors.Is(err, numbering.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrAlreadyConverted):
		httpx.JSONError(w, http.StatusConflict, "already_converted", nil)
	case errors.Is(err, services.ErrWorkOrderStillExists):
		httpx.JSONError(w, http.StatusConflict, "work_order_still_exists", nil)
	case errors.Is(err, numbering.ErrAlreadyVoid):
		httpx.JSONError(w, http.StatusConflict, "already_void", nil)
	case errors.Is(err, numbering.ErrNumberAlreadyIssued):
		httpx.JSONError(w, http.StatusConflict, "number_already_issued", nil)
	case errors.Is(err, numbering.ErrDuplicateNumber):
		httpx.JSONError(w, http.StatusConflict, "duplicate_number", nil)
	case errors.Is(err, numbering.ErrAllocationConflict):
		httpx.JSONError(w, http.StatusConflict, "allocation_conflict", nil)
	case errors.Is(err, services.ErrMissingPONumber):
		httpx.JSONError(w, http.StatusBadRequest, "missing_po_number", nil)
	case errors.Is(err, services.ErrNoPartsSelected):
		httpx.JSONError(w, http.StatusBadRequest, "no_parts_selected", nil)
	case errors.Is(err, services.ErrNoValidParts):
		httpx.JSONError(w, http.StatusBadRequest, "no_valid_parts", nil)
	case errors.Is(err, numbering.ErrEmptyReason):
		httpx.JSONError(w, http.StatusBadRequest, "reason_required", nil)
	case errors.Is(err, numbering.ErrUnknownKind):
		httpx.JSONError(w, http.StatusBadRequest, "unknown_kind", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
