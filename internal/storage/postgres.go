// internal/storage/postgres.go
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutrition-log/internal/models"
)

// PostgresStorage stores meal records in Postgres. Same-user appends are
// serialized with a transaction-scoped advisory lock.
type PostgresStorage struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

func NewPostgresStorage(ctx context.Context, connString string, loc *time.Location) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to postgres: %w", models.ErrStorage, err)
	}

	storage, err := NewPostgresStorageFromPool(ctx, pool, loc)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return storage, nil
}

// NewPostgresStorageFromPool wraps an existing pool and ensures the schema exists.
func NewPostgresStorageFromPool(ctx context.Context, pool *pgxpool.Pool, loc *time.Location) (*PostgresStorage, error) {
	if loc == nil {
		loc = time.Local
	}
	storage := &PostgresStorage{pool: pool, loc: loc}
	if err := storage.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize schema: %w", models.ErrStorage, err)
	}
	return storage, nil
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	const schema = `
    CREATE TABLE IF NOT EXISTS meal_records (
        id BIGSERIAL PRIMARY KEY,
        record_id TEXT NOT NULL UNIQUE,
        user_id TEXT NOT NULL,
        logged_at TEXT NOT NULL,
        description TEXT NOT NULL,
        amount_grams INTEGER NOT NULL CHECK (amount_grams > 0),
        calories DOUBLE PRECISION NOT NULL,
        protein DOUBLE PRECISION NOT NULL,
        fat DOUBLE PRECISION NOT NULL,
        carbs DOUBLE PRECISION NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_meal_records_user_logged_at ON meal_records(user_id, logged_at);
    `

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Append stores record; see SQLiteStorage.Append for the timestamp clamp.
func (s *PostgresStorage) Append(ctx context.Context, record *models.MealRecord) (err error) {
	if err := validateRecord(record); err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: failed to start transaction: %w", models.ErrStorage, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", record.UserID); err != nil {
		return fmt.Errorf("%w: failed to lock user: %w", models.ErrStorage, err)
	}

	var latest *string
	if err = tx.QueryRow(ctx, `SELECT MAX(logged_at) FROM meal_records WHERE user_id=$1`, record.UserID).Scan(&latest); err != nil {
		return fmt.Errorf("%w: failed to read latest timestamp: %w", models.ErrStorage, err)
	}

	loggedAt := models.FormatTimestamp(record.LoggedAt.In(s.loc))
	if latest != nil && *latest > loggedAt {
		loggedAt = *latest
	}

	const insert = `INSERT INTO meal_records (record_id, user_id, logged_at, description, amount_grams, calories, protein, fat, carbs)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, insert,
		record.ID,
		record.UserID,
		loggedAt,
		record.Description,
		record.AmountGrams,
		record.Calories,
		record.Protein,
		record.Fat,
		record.Carbs,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert meal record: %w", models.ErrStorage, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit meal record: %w", models.ErrStorage, err)
	}

	parsed, perr := models.ParseTimestamp(loggedAt, s.loc)
	if perr != nil {
		return fmt.Errorf("%w: failed to parse logged_at: %w", models.ErrStorage, perr)
	}
	record.LoggedAt = parsed
	return nil
}

func (s *PostgresStorage) QueryByUserAndDay(ctx context.Context, userID, day string) ([]models.MealRecord, error) {
	if err := validateDay(day); err != nil {
		return nil, err
	}
	return s.query(ctx, selectRecords+` WHERE user_id=$1 AND logged_at LIKE $2 ORDER BY id`, userID, day+"%")
}

func (s *PostgresStorage) QueryByUserSince(ctx context.Context, userID string, since time.Time) ([]models.MealRecord, error) {
	bound := models.FormatTimestamp(since.In(s.loc))
	return s.query(ctx, selectRecords+` WHERE user_id=$1 AND logged_at >= $2 ORDER BY id`, userID, bound)
}

func (s *PostgresStorage) QueryAllByUser(ctx context.Context, userID string) ([]models.MealRecord, error) {
	return s.query(ctx, selectRecords+` WHERE user_id=$1 ORDER BY id`, userID)
}

func (s *PostgresStorage) query(ctx context.Context, query string, args ...interface{}) ([]models.MealRecord, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to acquire connection: %w", models.ErrStorage, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query meal records: %w", models.ErrStorage, err)
	}
	defer rows.Close()

	records := []models.MealRecord{}
	for rows.Next() {
		var record models.MealRecord
		var loggedAt string
		if err := rows.Scan(&record.ID, &record.UserID, &loggedAt, &record.Description, &record.AmountGrams,
			&record.Calories, &record.Protein, &record.Fat, &record.Carbs); err != nil {
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
