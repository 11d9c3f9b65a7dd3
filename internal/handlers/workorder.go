package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fabworks/shoptrack/internal/httpx"
	"github.com/fabworks/shoptrack/internal/models"

	"gorm.io/gorm"
)

type WorkOrderHandler struct {
	DB *gorm.DB
}

func NewWorkOrderHandler(db *gorm.DB) *WorkOrderHandler { return &WorkOrderHandler{DB: db} }

// Get: GET /workorders?id=... – work order with its parts.
func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var wo models.WorkOrder
	err := h.DB.Preload("Parts", func(db *gorm.DB) *gorm.DB {
		return db.Order("part_number asc")
	}).First(&wo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_work_order", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, wo)
}

// List: GET /workorders/list?limit=... – newest first.
func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	var total int64
	h.DB.Model(&models.WorkOrder{}).Count(&total)
	var wos []models.WorkOrder
	if err := h.DB.Order("id desc").Limit(limit).Find(&wos).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_work_orders", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": wos, "total": total, "limit": limit})
}
