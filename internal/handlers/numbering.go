package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fabworks/shoptrack/internal/httpx"
	"github.com/fabworks/shoptrack/internal/models"
	"github.com/fabworks/shoptrack/internal/numbering"
	"github.com/fabworks/shoptrack/internal/services"

	"gorm.io/gorm"
)

// NumberingHandler exposes the number space: preview, stats, the ledger, and
// voiding.
type NumberingHandler struct {
	DB       *gorm.DB
	Numbers  *numbering.Service
	Activity services.ActivityLogger
}

func NewNumberingHandler(db *gorm.DB, numbers *numbering.Service, activity services.ActivityLogger) *NumberingHandler {
	if activity == nil {
		activity = services.NopActivityLogger{}
	}
	return &NumberingHandler{DB: db, Numbers: numbers, Activity: activity}
}

func kindParam(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind")))
}

// Next: GET /numbers/next?kind=dr – read-only preview, does not advance the counter.
func (h *NumberingHandler) Next(w http.ResponseWriter, r *http.Request) {
	kind := kindParam(r)
	n, err := h.Numbers.Peek(kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"kind": kind, "next_number": n})
}

// Stats: GET /numbers/stats?kind=dr
func (h *NumberingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Numbers.Stats(kindParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

// List: GET /numbers?kind=dr&status=void – the ledger, newest first.
func (h *NumberingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	dbq := h.DB.Model(&models.NumberedDocument{})
	if kind := kindParam(r); kind != "" {
		dbq = dbq.Where("kind = ?", kind)
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var total int64
	dbq.Count(&total)
	var docs []models.NumberedDocument
	if err := dbq.Order("number desc").Limit(limit).Offset(offset).Find(&docs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_numbers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": docs, "total": total, "limit": limit, "offset": offset})
}

// Void: POST /numbers/void – retires a number and deletes its work order.
func (h *NumberingHandler) Void(w http.ResponseWriter, r *http.Request) {
	type voidReq struct {
		Kind     string `json:"kind"`
		Number   int    `json:"number"`
		Reason   string `json:"reason"`
		VoidedBy string `json:"voided_by"`
	}
	var req voidReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	doc, err := h.Numbers.Void(kind, req.Number, req.Reason, req.VoidedBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	display := fmt.Sprintf("PO%d", doc.Number)
	if kind == models.KindDR {
		display = fmt.Sprintf("DR-%d", doc.Number)
	}
	h.Activity.Log("number_voided", "NumberedDocument", doc.ID, display, doc.ClientName,
		fmt.Sprintf("Voided %s: %s", display, doc.VoidReason), "")
	httpx.JSON(w, http.StatusOK, doc)
}
