package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fabworks/shoptrack/internal/config"
	"github.com/fabworks/shoptrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.SequenceCounter{}, &models.NumberedDocument{},
		&models.Estimate{}, &models.EstimatePart{},
		&models.WorkOrder{}, &models.WorkOrderPart{},
		&models.InboundOrder{}, &models.ActivityLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, config.Config{DRNumberFloor: 3000}), db
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := setupRouter(t)
	if w := do(t, h, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("/health: %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("/healthz: %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := setupRouter(t)
	if w := do(t, h, http.MethodPost, "/numbers/next", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST on a GET route: %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/numbers/void", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET on a POST route: %d", w.Code)
	}
}

// Walks the whole lifecycle over HTTP: order material for an estimate, convert
// it, inspect the ledger, void the number.
func TestEstimateLifecycle(t *testing.T) {
	h, db := setupRouter(t)

	est := models.Estimate{EstimateNumber: "EST-9", ClientName: "Acme Fabrication", Status: "sent", GrandTotal: decimal.NewFromInt(900)}
	if err := db.Create(&est).Error; err != nil {
		t.Fatalf("seed estimate: %v", err)
	}
	parts := []models.EstimatePart{
		{EstimateID: est.ID, PartNumber: 1, PartType: "frame", SupplierName: "Acme Steel", MaterialSource: models.MaterialWeOrder, Quantity: 2},
		{EstimateID: est.ID, PartNumber: 2, PartType: "panel", MaterialSource: models.MaterialCustomerSupplied, Quantity: 1},
	}
	if err := db.Create(&parts).Error; err != nil {
		t.Fatalf("seed parts: %v", err)
	}

	// Conversion is blocked until the we_order material is on order.
	w := do(t, h, http.MethodPost, fmt.Sprintf("/estimates/convert?id=%d", est.ID), "")
	if w.Code != http.StatusConflict {
		t.Fatalf("convert before ordering: %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/materials/order",
		fmt.Sprintf(`{"owner_id":%d,"base_po_number":100,"part_ids":[%d]}`, est.ID, parts[0].ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("order material: %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, fmt.Sprintf("/estimates/convert?id=%d", est.ID), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("convert: %d %s", w.Code, w.Body.String())
	}
	var wo struct {
		DRNumber    *int
		OrderNumber string
		Status      string
	}
	if err := json.Unmarshal(w.Body.Bytes(), &wo); err != nil {
		t.Fatalf("decode work order: %v", err)
	}
	if wo.DRNumber == nil || *wo.DRNumber != 3000 || wo.OrderNumber != "DR-3000" {
		t.Fatalf("work order numbering: %+v", wo)
	}
	if wo.Status != models.WorkOrderWaitingForMaterials {
		t.Fatalf("status: %s", wo.Status)
	}

	// The ledger now holds PO100 and DR-3000, both active.
	w = do(t, h, http.MethodGet, "/numbers?status=active", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var list struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("ledger total: %d", list.Total)
	}

	w = do(t, h, http.MethodGet, "/numbers/next?kind=dr", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "3001") {
		t.Fatalf("peek after convert: %d %s", w.Code, w.Body.String())
	}

	// Void the DR: the work order disappears, the number stays retired.
	w = do(t, h, http.MethodPost, "/numbers/void", `{"kind":"dr","number":3000,"reason":"duplicate order entry","voided_by":"jules"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("void: %d %s", w.Code, w.Body.String())
	}
	var woCount int64
	db.Model(&models.WorkOrder{}).Count(&woCount)
	if woCount != 0 {
		t.Fatalf("work order survived the void")
	}
	w = do(t, h, http.MethodGet, "/numbers/next?kind=dr", "")
	if !strings.Contains(w.Body.String(), "3001") {
		t.Fatalf("voided number must stay retired: %s", w.Body.String())
	}
}
