package postgres

import (
	"context"
	"fmt"

	"appointment-service/internal/models"

	"github.com/lib/pq"
)

func (s *Storage) SaveNotification(ctx context.Context, n models.Notification) error {
	const op = "storage.postgres.SaveNotification"

	var appointmentID any
	if n.AppointmentID != "" {
		appointmentID = n.AppointmentID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, appointment_id, kind, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		n.ID, n.RecipientID, appointmentID, n.Kind, n.Title, n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return nil
}

func (s *Storage) ListNotifications(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	const op = "storage.postgres.ListNotifications"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipient_id, COALESCE(appointment_id::text, ''), kind, title, message, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT NULLIF($2, 0)`,
		recipientID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.AppointmentID, &n.Kind, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		n.CreatedAt = n.CreatedAt.UTC()
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Storage) MarkNotificationsRead(ctx context.Context, recipientID string, ids []string) error {
	const op = "storage.postgres.MarkNotificationsRead"

	if len(ids) == 0 {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE recipient_id = $1 AND id = ANY($2::uuid[]) AND NOT is_read`,
		recipientID, pq.Array(ids),
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
