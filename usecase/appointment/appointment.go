package appointment

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/pkg/clock"
	"github.com/fastygo/salon/repository"
	"github.com/fastygo/salon/usecase"
)

const lockStripes = 64

type UseCase struct {
	appointments  repository.AppointmentRepository
	notifications repository.NotificationRepository
	dispatcher   usecase.NotificationDispatcher
	clock        clock.Clock
	logger       *zap.Logger

	// locks keeps write+broadcast for one appointment in commit order within this process.
	locks [lockStripes]sync.Mutex
}

func New(
	appointments repository.AppointmentRepository,
	notifications repository.NotificationRepository,
	dispatcher usecase.NotificationDispatcher,
	clk clock.Clock,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &UseCase{
		appointments:  appointments,
		notifications: notifications,
		dispatcher:    dispatcher,
		clock:         clk,
		logger:        logger,
	}
}

func (uc *UseCase) List(ctx context.Context, caller domain.Caller, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown status filter")
	}
	appts, err := uc.appointments.List(ctx, filter)
	if err != nil {
		return nil, domain.AsStorageFailure(err)
	}
	return appts, nil
}

func (uc *UseCase) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Appointment, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	appt, err := uc.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, domain.AsStorageFailure(err)
	}
	return appt, nil
}

// Notifications returns the delivery history recorded for one appointment,
// oldest first.
func (uc *UseCase) Notifications(ctx context.Context, caller domain.Caller, id int64) ([]domain.Notification, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	if _, err := uc.appointments.GetByID(ctx, id); err != nil {
		return nil, domain.AsStorageFailure(err)
	}
	if uc.notifications == nil {
		return []domain.Notification{}, nil
	}
	records, err := uc.notifications.ListByAppointment(ctx, id)
	if err != nil {
		return nil, domain.AsStorageFailure(err)
	}
	if records == nil {
		records = []domain.Notification{}
	}
	return records, nil
}

// UpdateStatus moves an appointment to the requested status. The transition is
// checked against the row read under the store's lock, and the update event is
// dispatched only after the write committed.
func (uc *UseCase) UpdateStatus(ctx context.Context, caller domain.Caller, id int64, rawStatus string) (*domain.Appointment, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	requested, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, domain.NewValidationError("status", "status must be CONFIRMED or CANCELLED")
	}

	mu := uc.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	updated, previous, err := uc.appointments.UpdateStatus(ctx, id, requested, domain.CanTransition)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeInvalidTransition) && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Error("failed to update appointment status", zap.Int64("appointment_id", id), zap.Error(err))
		}
		return nil, domain.AsStorageFailure(err)
	}

	uc.logger.Info("appointment status changed",
		zap.Int64("appointment_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(updated.Status)),
		zap.String("user_id", caller.UserID),
	)

	if uc.dispatcher != nil {
		uc.dispatcher.Dispatch(ctx, domain.NewStatusChangedEvent(updated, previous, uc.clock.Now()))
	}
	return updated, nil
}

// Delete removes an appointment regardless of its status.
func (uc *UseCase) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	if err := authorize(caller); err != nil {
		return err
	}

	mu := uc.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if err := uc.appointments.Delete(ctx, id); err != nil {
		return domain.AsStorageFailure(err)
	}
	uc.logger.Info("appointment deleted", zap.Int64("appointment_id", id), zap.String("user_id", caller.UserID))
	return nil
}

func (uc *UseCase) lockFor(id int64) *sync.Mutex {
	idx := id % lockStripes
	if idx < 0 {
		idx = -idx
	}
	return &uc.locks[idx]
}

func authorize(caller domain.Caller) error {
	if caller.UserID == "" {
		return domain.ErrUnauthorized
	}
	if !caller.IsStaff() {
		return domain.ErrForbidden
	}
	return nil
}
