package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"

	"github.com/lib/pq"
)

const activeSlotIndex = "appointments_active_slot_uq"

//go:embed schema.sql
var schema string

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Migrate creates the tables and indexes if they do not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// mapErr turns constraint violations into domain errors.
func mapErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505":
		if pqErr.Constraint == activeSlotIndex {
			return fmt.Errorf("%w: %s", response.ErrSlotNotAvailable, pqErr.Message)
		}
		return fmt.Errorf("%w: %s", response.ErrConflict, pqErr.Message)
	case "23503":
		return fmt.Errorf("%w: %s", response.ErrNotFound, pqErr.Message)
	case "22P02":
		// malformed uuid in a lookup
		return fmt.Errorf("%w: %s", response.ErrNotFound, pqErr.Message)
	}

	return err
}

// #### providers ####

func (s *Storage) UpsertProvider(ctx context.Context, p models.Provider) error {
	const op = "storage.postgres.UpsertProvider"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO providers (id, name, available_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE
		SET name = EXCLUDED.name,
			available_time = EXCLUDED.available_time`,
		p.ID, p.Name, p.AvailableTime,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return nil
}

func (s *Storage) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	const op = "storage.postgres.GetProvider"

	var p models.Provider
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, available_time FROM providers WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.AvailableTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

// #### weekly windows ####

func (s *Storage) ListWeeklyWindows(ctx context.Context, providerID string) ([]schedule.Window, error) {
	const op = "storage.postgres.ListWeeklyWindows"

	rows, err := s.db.QueryContext(ctx, `
		SELECT weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM weekly_windows
		WHERE provider_id = $1
		ORDER BY weekday, start_time`,
		providerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var windows []schedule.Window
	for rows.Next() {
		var (
			day        int
			start, end string
		)
		if err := rows.Scan(&day, &start, &end); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		w := schedule.Window{Day: time.Weekday(day)}
		if w.Start, err = schedule.ParseTimeOfDay(start); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if w.End, err = schedule.ParseTimeOfDay(end); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return windows, nil
}

// ReplaceWeeklyWindows swaps the provider's whole week in one transaction.
func (s *Storage) ReplaceWeeklyWindows(ctx context.Context, providerID string, windows []schedule.Window) error {
	const op = "storage.postgres.ReplaceWeeklyWindows"

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1)`, providerID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_windows WHERE provider_id = $1`, providerID); err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	if len(windows) > 0 {
		args := make([]any, 0, len(windows)*4)
		placeholders := make([]string, 0, len(windows))
		for i, w := range windows {
			n := i * 4
			placeholders = append(placeholders,
				fmt.Sprintf("($%d, $%d, $%d::time, $%d::time)", n+1, n+2, n+3, n+4))
			args = append(args, providerID, int(w.Day), w.Start.String(), w.End.String())
		}

		query := fmt.Sprintf(`
			INSERT INTO weekly_windows (provider_id, weekday, start_time, end_time)
			VALUES %s`,
			strings.Join(placeholders, ","),
		)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: insert: %w", op, mapErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}
