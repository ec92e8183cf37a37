// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"nutrition-log/internal/models"
)

// SQLiteStorage keeps one long-lived handle; writes are serialized by mu.
type SQLiteStorage struct {
	db  *sql.DB
	loc *time.Location
	mu  sync.Mutex
}

func NewSQLiteStorage(dbPath string, loc *time.Location) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", models.ErrStorage, err)
	}
	// A single connection keeps ":memory:" databases intact and makes
	// the busy_timeout pragma below apply to every statement.
	db.SetMaxOpenConns(1)

	if loc == nil {
		loc = time.Local
	}
	storage := &SQLiteStorage{db: db, loc: loc}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to initialize schema: %w", models.ErrStorage, err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    PRAGMA busy_timeout = 5000;

    CREATE TABLE IF NOT EXISTS meal_records (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        record_id TEXT NOT NULL UNIQUE,
        user_id TEXT NOT NULL,
        logged_at TEXT NOT NULL,
        description TEXT NOT NULL,
        amount_grams INTEGER NOT NULL CHECK (amount_grams > 0),
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        fat REAL NOT NULL,
        carbs REAL NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_meal_records_user_logged_at ON meal_records(user_id, logged_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Append stores record. If the user's newest record is later than
// record.LoggedAt, LoggedAt is raised to it so time never runs backwards.
func (s *SQLiteStorage) Append(ctx context.Context, record *models.MealRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to start transaction: %w", models.ErrStorage, err)
	}
	defer tx.Rollback()

	var latest sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(logged_at) FROM meal_records WHERE user_id = ?`, record.UserID).Scan(&latest)
	if err != nil {
		return fmt.Errorf("%w: failed to read latest timestamp: %w", models.ErrStorage, err)
	}

	loggedAt := models.FormatTimestamp(record.LoggedAt.In(s.loc))
	if latest.Valid && latest.String > loggedAt {
		loggedAt = latest.String
	}

	query := `
        INSERT INTO meal_records (record_id, user_id, logged_at, description, amount_grams, calories, protein, fat, carbs)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, query,
		record.ID, record.UserID, loggedAt, record.Description, record.AmountGrams,
		record.Calories, record.Protein, record.Fat, record.Carbs)
	if err != nil {
		return fmt.Errorf("%w: failed to insert meal record: %w", models.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit meal record: %w", models.ErrStorage, err)
	}

	record.LoggedAt, err = models.ParseTimestamp(loggedAt, s.loc)
	if err != nil {
		return fmt.Errorf("%w: failed to parse logged_at: %w", models.ErrStorage, err)
	}
	return nil
}

// QueryByUserAndDay returns the user's records whose logged_at falls on day (YYYY-MM-DD).
func (s *SQLiteStorage) QueryByUserAndDay(ctx context.Context, userID, day string) ([]models.MealRecord, error) {
	if err := validateDay(day); err != nil {
		return nil, err
	}
	return s.query(ctx, selectRecords+` WHERE user_id = ? AND logged_at LIKE ? ORDER BY id`, userID, day+"%")
}

// QueryByUserSince returns the user's records with logged_at >= since.
func (s *SQLiteStorage) QueryByUserSince(ctx context.Context, userID string, since time.Time) ([]models.MealRecord, error) {
	bound := models.FormatTimestamp(since.In(s.loc))
	return s.query(ctx, selectRecords+` WHERE user_id = ? AND logged_at >= ? ORDER BY id`, userID, bound)
}

func (s *SQLiteStorage) QueryAllByUser(ctx context.Context, userID string) ([]models.MealRecord, error) {
	return s.query(ctx, selectRecords+` WHERE user_id = ? ORDER BY id`, userID)
}

func (s *SQLiteStorage) query(ctx context.Context, query string, args ...interface{}) ([]models.MealRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query meal records: %w", models.ErrStorage, err)
	}
	defer rows.Close()

	records := []models.MealRecord{}
	for rows.Next() {
		var record models.MealRecord
		var loggedAt string

		err := rows.Scan(
			&record.ID, &record.UserID, &loggedAt, &record.Description, &record.AmountGrams,
			&record.Calories, &record.Protein, &record.Fat, &record.Carbs)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan meal record: %w", models.ErrStorage, err)
		}

		if record.LoggedAt, err = models.ParseTimestamp(loggedAt, s.loc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse logged_at: %w", models.ErrStorage, err)
		}

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read meal records: %w", models.ErrStorage, err)
	}

	return records, nil
}
