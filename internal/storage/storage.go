// internal/storage/storage.go

// Package storage persists meal records. Records are append-only and every
// query returns them in insertion order.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nutrition-log/internal/models"
)

// Store is the query surface shared by the SQLite and Postgres backends.
type Store interface {
	Append(ctx context.Context, record *models.MealRecord) error
	QueryByUserAndDay(ctx context.Context, userID, day string) ([]models.MealRecord, error)
	QueryByUserSince(ctx context.Context, userID string, since time.Time) ([]models.MealRecord, error)
	QueryAllByUser(ctx context.Context, userID string) ([]models.MealRecord, error)
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver      string
	SQLitePath  string
	PostgresURL string
	Location    *time.Location
}

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverSQLite:
		return NewSQLiteStorage(cfg.SQLitePath, cfg.Location)
	case DriverPostgres:
		return NewPostgresStorage(ctx, cfg.PostgresURL, cfg.Location)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

const selectRecords = `SELECT record_id, user_id, logged_at, description, amount_grams, calories, protein, fat, carbs FROM meal_records`

func validateRecord(record *models.MealRecord) error {
	switch {
	case record == nil:
		return fmt.Errorf("%w: nil meal record", models.ErrInvalidInput)
	case strings.TrimSpace(record.ID) == "":
		return fmt.Errorf("%w: record id is required", models.ErrInvalidInput)
	case strings.TrimSpace(record.UserID) == "":
		return fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	case record.AmountGrams <= 0:
		return fmt.Errorf("%w: amount_grams must be > 0", models.ErrInvalidInput)
	case int64(record.AmountGrams) > models.MaxAmountGrams:
		return fmt.Errorf("%w: amount_grams must be <= %d", models.ErrInvalidInput, models.MaxAmountGrams)
	case record.Calories < 0 || record.Protein < 0 || record.Fat < 0 || record.Carbs < 0:
		return fmt.Errorf("%w: nutrient values must be >= 0", models.ErrInvalidInput)
	}
	return nil
}

// validateDay also keeps LIKE wildcards out of day prefixes.
func validateDay(day string) error {
	if _, err := time.Parse(models.DayLayout, day); err != nil {
		return fmt.Errorf("%w: day must be YYYY-MM-DD, got %q", models.ErrInvalidInput, day)
	}
	return nil
}
