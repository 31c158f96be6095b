package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/repository"
)

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository stores the outcome of every notification action.
func NewNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Record(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO notifications (appointment_id, channel, recipient, event, outcome, error)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		n.AppointmentID,
		n.Channel,
		n.Recipient,
		n.Event,
		n.Outcome,
		n.Error,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListByAppointment(ctx context.Context, appointmentID int64) ([]domain.Notification, error) {
	const query = `
	SELECT id, appointment_id, channel, recipient, event, outcome, error, created_at
	FROM notifications
	WHERE appointment_id = $1
	ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.AppointmentID, &n.Channel, &n.Recipient, &n.Event, &n.Outcome, &n.Error, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
