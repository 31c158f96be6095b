package repository

import (
	"context"

	"github.com/fastygo/salon/domain"
)

type NotificationRepository interface {
	Record(ctx context.Context, n *domain.Notification) error
	ListByAppointment(ctx context.Context, appointmentID int64) ([]domain.Notification, error)
}
