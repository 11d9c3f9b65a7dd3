package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fabworks/shoptrack/internal/httpx"
	"github.com/fabworks/shoptrack/internal/models"
	"github.com/fabworks/shoptrack/internal/services"

	"gorm.io/gorm"
)

type EstimateHandler struct {
	DB  *gorm.DB
	Svc *services.ConversionService
}

func NewEstimateHandler(db *gorm.DB, svc *services.ConversionService) *EstimateHandler {
	return &EstimateHandler{DB: db, Svc: svc}
}

func idParam(r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// Get: GET /estimates?id=... – estimate with its parts.
func (h *EstimateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var est models.Estimate
	err := h.DB.Preload("Parts", func(db *gorm.DB) *gorm.DB {
		return db.Order("part_number asc")
	}).First(&est, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_estimate", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

// Convert: POST /estimates/convert?id=... – turns the estimate into a work order.
func (h *EstimateHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	type convertReq struct {
		ClientPurchaseOrderNumber string `json:"client_po_number"`
		PromisedDate              string `json:"promised_date"` // RFC 3339 or 2006-01-02
		StorageLocation           string `json:"storage_location"`
		CustomDRNumber            *int   `json:"custom_dr_number"`
	}
	var req convertReq
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	}
	opts := services.ConvertOptions{
		ClientPurchaseOrderNumber: req.ClientPurchaseOrderNumber,
		StorageLocation:           req.StorageLocation,
		CustomDRNumber:            req.CustomDRNumber,
	}
	if req.PromisedDate != "" {
		t, err := time.Parse(time.RFC3339, req.PromisedDate)
		if err != nil {
			t, err = time.Parse("2006-01-02", req.PromisedDate)
		}
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_promised_date", nil)
			return
		}
		opts.PromisedDate = &t
	}
	wo, err := h.Svc.Convert(id, opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, wo)
}

// ResetConversion: POST /estimates/reset-conversion?id=... – clears the
// work-order link, only once the work order is gone.
func (h *EstimateHandler) ResetConversion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.ResetConversion(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
