// internal/events/events.go

// Package events publishes notifications about logged meals.
package events

import (
	"context"
	"time"

	"nutrition-log/internal/models"
)

const (
	DefaultTopic      = "meal_logged"
	EventTypeLogged   = "meal_logged"
	mealLoggedVersion = "v1"
)

// MealLogged is the payload emitted after a record is persisted.
type MealLogged struct {
	EventType   string    `json:"event_type"`
	Version     string    `json:"version"`
	RecordID    string    `json:"record_id"`
	UserID      string    `json:"user_id"`
	LoggedAt    time.Time `json:"logged_at"`
	Description string    `json:"description"`
	AmountGrams int       `json:"amount_grams"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Fat         float64   `json:"fat"`
	Carbs       float64   `json:"carbs"`
}

// NewMealLogged builds the event for record.
func NewMealLogged(record models.MealRecord) MealLogged {
	return MealLogged{
		EventType:   EventTypeLogged,
		Version:     mealLoggedVersion,
		RecordID:    record.ID,
		UserID:      record.UserID,
		LoggedAt:    record.LoggedAt,
		Description: record.Description,
		AmountGrams: record.AmountGrams,
		Calories:    record.Calories,
		Protein:     record.Protein,
		Fat:         record.Fat,
		Carbs:       record.Carbs,
	}
}

// Publisher announces persisted records. Callers treat failures as
// non-fatal.
type Publisher interface {
	PublishMealLogged(ctx context.Context, record models.MealRecord) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishMealLogged(context.Context, models.MealRecord) error { return nil }

func (NopPublisher) Close() error { return nil }
