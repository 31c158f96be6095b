package repository

import (
	"context"

	"github.com/fastygo/salon/domain"
)

type AppointmentFilter struct {
	Status domain.Status
	Limit  int
	Offset int
}

// TransitionGuard decides whether a status change is legal.
type TransitionGuard func(current, requested domain.Status) bool

type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error)
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	// UpdateStatus reads the row under a lock, evaluates guard against that row and
	// writes requested only if the guard allows it. It returns the updated row and the
	// status it replaced.
	UpdateStatus(ctx context.Context, id int64, requested domain.Status, guard TransitionGuard) (*domain.Appointment, domain.Status, error)
	Delete(ctx context.Context, id int64) error
}
