package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fabworks/shoptrack/internal/httpx"
	"github.com/fabworks/shoptrack/internal/models"
	"github.com/fabworks/shoptrack/internal/services"
)

type MaterialHandler struct {
	Svc *services.MaterialOrderService
}

func NewMaterialHandler(svc *services.MaterialOrderService) *MaterialHandler {
	return &MaterialHandler{Svc: svc}
}

// Order: POST /materials/order – one purchase order per supplier group.
func (h *MaterialHandler) Order(w http.ResponseWriter, r *http.Request) {
	type orderReq struct {
		OwnerType    string `json:"owner_type"` // estimate, work_order
		OwnerID      uint   `json:"owner_id"`
		BasePONumber int    `json:"base_po_number"`
		PartIDs      []uint `json:"part_ids"`
	}
	var req orderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	ownerType := strings.ToLower(strings.TrimSpace(req.OwnerType))
	if ownerType == "" {
		ownerType = models.SourceEstimate
	}
	res, err := h.Svc.OrderMaterial(services.OwnerRef{Type: ownerType, ID: req.OwnerID}, req.BasePONumber, req.PartIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}
