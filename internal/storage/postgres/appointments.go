package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"
)

const appointmentColumns = `
	id, provider_id, consumer_id,
	to_char(date, 'YYYY-MM-DD'), to_char(slot, 'HH24:MI'),
	duration_minutes, reason, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row scanner) (*models.Appointment, error) {
	var (
		a          models.Appointment
		date, slot string
		minutes    int
	)

	err := row.Scan(
		&a.ID, &a.ProviderID, &a.ConsumerID,
		&date, &slot,
		&minutes, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.Date, err = schedule.ParseDate(date); err != nil {
		return nil, err
	}
	if a.Slot, err = schedule.ParseTimeOfDay(slot); err != nil {
		return nil, err
	}
	a.Duration = time.Duration(minutes) * time.Minute
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()

	return &a, nil
}

func slotTaken(ctx context.Context, tx *sql.Tx, providerID string, date time.Time, slot schedule.TimeOfDay, exceptID string) (bool, error) {
	var taken bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE provider_id = $1 AND date = $2::date AND slot = $3::time
			  AND status IN ('Pending', 'Confirmed')
			  AND ($4 = '' OR id::text <> $4)
		)`,
		providerID, date.Format(schedule.DateLayout), slot.String(), exceptID,
	).Scan(&taken)

	return taken, err
}

func (s *Storage) ActiveSlots(ctx context.Context, providerID string, date time.Time) ([]schedule.TimeOfDay, error) {
	const op = "storage.postgres.ActiveSlots"

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(slot, 'HH24:MI')
		FROM appointments
		WHERE provider_id = $1 AND date = $2::date AND status IN ('Pending', 'Confirmed')
		ORDER BY slot`,
		providerID, date.Format(schedule.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []schedule.TimeOfDay
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		t, err := schedule.ParseTimeOfDay(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		slots = append(slots, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

// CreateAppointment inserts appt if its slot is free. The pre-check gives a
// clean answer in the common case; the partial unique index settles races
// between transactions that both passed it.
func (s *Storage) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	const op = "storage.postgres.CreateAppointment"

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	if appt.Status.Active() {
		taken, err := slotTaken(ctx, tx, appt.ProviderID, appt.Date, appt.Slot, "")
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if taken {
			return fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments
			(id, provider_id, consumer_id, date, slot, duration_minutes, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8, $9, $10)`,
		appt.ID, appt.ProviderID, appt.ConsumerID,
		appt.Date.Format(schedule.DateLayout), appt.Slot.String(),
		int(appt.Duration/time.Minute), appt.Reason, appt.Status,
		appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: insert: %w", op, mapErr(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, mapErr(err))
	}

	return nil
}

func (s *Storage) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	const op = "storage.postgres.GetAppointment"

	a, err := scanAppointment(s.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return a, nil
}

func (s *Storage) ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]*models.Appointment, error) {
	const op = "storage.postgres.ListAppointments"

	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ProviderID != "" {
		add("provider_id = $%d", filter.ProviderID)
	}
	if !filter.From.IsZero() {
		add("date >= $%d::date", filter.From.Format(schedule.DateLayout))
	}
	if !filter.To.IsZero() {
		add("date <= $%d::date", filter.To.Format(schedule.DateLayout))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date, slot"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]*models.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateAppointmentStatus sets status to `to` only if it is still `from`.
func (s *Storage) UpdateAppointmentStatus(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error) {
	const op = "storage.postgres.UpdateAppointmentStatus"

	a, err := scanAppointment(s.db.QueryRowContext(ctx, `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+appointmentColumns,
		id, from, to,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.missedUpdate(ctx, op, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return a, nil
}

// MoveAppointment re-slots an appointment whose status is still `from`.
func (s *Storage) MoveAppointment(ctx context.Context, id string, from, to models.AppointmentStatus, date time.Time, slot schedule.TimeOfDay, reason string) (*models.Appointment, error) {
	const op = "storage.postgres.MoveAppointment"

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	var providerID string
	err = tx.QueryRowContext(ctx, `SELECT provider_id FROM appointments WHERE id = $1`, id).Scan(&providerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	if to.Active() {
		taken, err := slotTaken(ctx, tx, providerID, date, slot, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if taken {
			return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
		}
	}

	a, err := scanAppointment(tx.QueryRowContext(ctx, `
		UPDATE appointments
		SET date = $3::date, slot = $4::time, reason = $5, status = $6, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+appointmentColumns,
		id, from, date.Format(schedule.DateLayout), slot.String(), reason, to,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, mapErr(err))
	}

	return a, nil
}

// missedUpdate explains why a compare-and-set matched no row.
func (s *Storage) missedUpdate(ctx context.Context, op, id string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return fmt.Errorf("%s: %w", op, response.ErrInvalidTransition)
}

func (s *Storage) DeleteAppointment(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAppointment"

	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
