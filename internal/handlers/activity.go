package handlers

import (
	"net/http"
	"strconv"

	"github.com/fabworks/shoptrack/internal/httpx"
	"github.com/fabworks/shoptrack/internal/models"

	"gorm.io/gorm"
)

type ActivityHandler struct {
	DB *gorm.DB
}

func NewActivityHandler(db *gorm.DB) *ActivityHandler { return &ActivityHandler{DB: db} }

// List: GET /activity?limit=... – newest events first.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	var entries []models.ActivityLog
	if err := h.DB.Order("id desc").Limit(limit).Find(&entries).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_activity", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries, "limit": limit})
}
