package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fabworks/shoptrack/internal/models"
	"github.com/fabworks/shoptrack/internal/services"
)

func TestConvertEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	svc := services.NewConversionService(db, newNumbers(db), services.NopActivityLogger{})
	h := NewEstimateHandler(db, svc)
	seedHandlerEstimate(t, db,
		models.EstimatePart{PartNumber: 1, PartType: "gate", MaterialSource: models.MaterialCustomerSupplied, Quantity: 1},
	)

	body := `{"client_po_number":"ACME-PO-77","promised_date":"2026-09-15","storage_location":"rack 4"}`
	r := httptest.NewRequest(http.MethodPost, "/estimates/convert?id=1", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Convert(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["OrderNumber"] != "DR-3000" || resp["DRNumber"] != float64(3000) {
		t.Fatalf("body: %v", resp)
	}
	if resp["ClientPurchaseOrderNumber"] != "ACME-PO-77" || resp["StorageLocation"] != "rack 4" {
		t.Fatalf("options not applied: %v", resp)
	}

	// Second conversion of the same estimate conflicts.
	w2 := httptest.NewRecorder()
	h.Convert(w2, httptest.NewRequest(http.MethodPost, "/estimates/convert?id=1", nil))
	if w2.Code != http.StatusConflict || decodeBody(t, w2)["error"] != "already_converted" {
		t.Fatalf("repeat convert: %d %s", w2.Code, w2.Body.String())
	}
}

func TestConvertEndpointBlocked(t *testing.T) {
	db := setupHandlerTestDB(t)
	svc := services.NewConversionService(db, newNumbers(db), services.NopActivityLogger{})
	h := NewEstimateHandler(db, svc)
	seedHandlerEstimate(t, db,
		models.EstimatePart{PartNumber: 1, PartType: "frame", MaterialSource: models.MaterialWeOrder, MaterialOrdered: false, Quantity: 2},
		models.EstimatePart{PartNumber: 2, PartType: "panel", MaterialSource: models.MaterialWeOrder, MaterialOrdered: false, Quantity: 1},
	)

	w := httptest.NewRecorder()
	h.Convert(w, httptest.NewRequest(http.MethodPost, "/estimates/convert?id=1", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["error"] != "material_not_ordered" {
		t.Fatalf("error code: %v", resp["error"])
	}
	details := resp["details"].(map[string]any)
	if details["blocking_parts"] != float64(2) {
		t.Fatalf("details: %v", details)
	}
}

func TestConvertEndpointValidation(t *testing.T) {
	db := setupHandlerTestDB(t)
	svc := services.NewConversionService(db, newNumbers(db), services.NopActivityLogger{})
	h := NewEstimateHandler(db, svc)
	seedHandlerEstimate(t, db,
		models.EstimatePart{PartNumber: 1, PartType: "gate", MaterialSource: models.MaterialCustomerSupplied, Quantity: 1},
	)

	w := httptest.NewRecorder()
	h.Convert(w, httptest.NewRequest(http.MethodPost, "/estimates/convert", nil))
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != "invalid_id" {
		t.Fatalf("missing id: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Convert(w, httptest.NewRequest(http.MethodPost, "/estimates/convert?id=1", strings.NewReader(`{"promised_date":"next tuesday"}`)))
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != "invalid_promised_date" {
		t.Fatalf("bad date: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Convert(w, httptest.NewRequest(http.MethodPost, "/estimates/convert?id=99", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing estimate: %d %s", w.Code, w.Body.String())
	}
}

func TestGetEstimateEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	svc := services.NewConversionService(db, newNumbers(db), services.NopActivityLogger{})
	h := NewEstimateHandler(db, svc)
	seedHandlerEstimate(t, db,
		models.EstimatePart{PartNumber: 2, PartType: "panel", MaterialSource: models.MaterialCustomerSupplied, Quantity: 1},
		models.EstimatePart{PartNumber: 1, PartType: "frame", MaterialSource: models.MaterialWeOrder, Quantity: 2},
	)

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/estimates?id=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	parts := resp["Parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("parts: %v", parts)
	}
	// Parts come back ordered by part number, not insertion order.
	if parts[0].(map[string]any)["PartNumber"] != float64(1) {
		t.Fatalf("part order: %v", parts)
	}

	w = httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/estimates?id=42", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing estimate: %d", w.Code)
	}
}

func TestResetConversionEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	nums := newNumbers(db)
	svc := services.NewConversionService(db, nums, services.NopActivityLogger{})
	h := NewEstimateHandler(db, svc)
	seedHandlerEstimate(t, db,
		models.EstimatePart{PartNumber: 1, PartType: "gate", MaterialSource: models.MaterialCustomerSupplied, Quantity: 1},
	)
	if _, err := svc.Convert(1, services.ConvertOptions{}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	w := httptest.NewRecorder()
	h.ResetConversion(w, httptest.NewRequest(http.MethodPost, "/estimates/reset-conversion?id=1", nil))
	if w.Code != http.StatusConflict || decodeBody(t, w)["error"] != "work_order_still_exists" {
		t.Fatalf("reset with live work order: %d %s", w.Code, w.Body.String())
	}

	if _, err := nums.Void(models.KindDR, 3000, "entered against wrong client", "jules"); err != nil {
		t.Fatalf("void: %v", err)
	}
	w = httptest.NewRecorder()
	h.ResetConversion(w, httptest.NewRequest(http.MethodPost, "/estimates/reset-conversion?id=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d %s", w.Code, w.Body.String())
	}
}
