package services

import (
	"log"

	"github.com/fabworks/shoptrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLogger records business events. Implementations are fire-and-forget:
// a logging failure must never fail the operation that emitted the event.
type ActivityLogger interface {
	Log(eventType, resourceType string, resourceID uint, resourceNumber, clientName, description, details string)
}

// DBActivityLogger appends events to the activity_logs table.
type DBActivityLogger struct {
	DB *gorm.DB
}

func NewDBActivityLogger(db *gorm.DB) *DBActivityLogger { return &DBActivityLogger{DB: db} }

func (l *DBActivityLogger) Log(eventType, resourceType string, resourceID uint, resourceNumber, clientName, description, details string) {
	entry := models.ActivityLog{
		EventID:        uuid.NewString(),
		Type:           eventType,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		ResourceNumber: resourceNumber,
		ClientName:     clientName,
		Description:    description,
		Details:        details,
	}
	if err := l.DB.Create(&entry).Error; err != nil {
		log.Printf("activity log failed type=%s resource=%s/%d: %v", eventType, resourceType, resourceID, err)
	}
}

// NopActivityLogger drops events. Used by tests.
type NopActivityLogger struct{}

func (NopActivityLogger) Log(string, string, uint, string, string, string, string) {}
