package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/fabworks/shoptrack/internal/models"
	"github.com/fabworks/shoptrack/internal/numbering"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newNumbers(db *gorm.DB) *numbering.Service {
	return numbering.NewService(db, 3000)
}

func seedHandlerEstimate(t *testing.T, db *gorm.DB, parts ...models.EstimatePart) models.Estimate {
	t.Helper()
	est := models.Estimate{
		EstimateNumber: "EST-1",
		ClientName:     "Acme Fabrication",
		Status:         "sent",
		GrandTotal:     decimal.NewFromInt(500),
	}
	if err := db.Create(&est).Error; err != nil {
		t.Fatalf("create estimate: %v", err)
	}
	for i := range parts {
		parts[i].EstimateID = est.ID
		if parts[i].PartNumber == 0 {
			parts[i].PartNumber = i + 1
		}
	}
	if len(parts) > 0 {
		if err := db.Create(&parts).Error; err != nil {
			t.Fatalf("create parts: %v", err)
		}
	}
	return est
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}
