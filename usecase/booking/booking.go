package booking

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/pkg/clock"
	"github.com/fastygo/salon/repository"
	"github.com/fastygo/salon/usecase"
)

// Request is an unauthenticated booking submission.
type Request struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	ServiceID   int64
	EmployeeID  *int64
	StartTime   string
	// Status is ignored; new bookings always start PENDING.
	Status string
}

type UseCase struct {
	appointments repository.AppointmentRepository
	catalog      repository.CatalogRepository
	dispatcher   usecase.NotificationDispatcher
	clock        clock.Clock
	logger       *zap.Logger
}

func New(
	appointments repository.AppointmentRepository,
	catalog repository.CatalogRepository,
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
		appointments: appointments,
		catalog:      catalog,
		dispatcher:   dispatcher,
		clock:        clk,
		logger:       logger,
	}
}

// SubmitBooking validates the request, persists a PENDING appointment and
// dispatches a created event once the store has assigned its id.
func (uc *UseCase) SubmitBooking(ctx context.Context, req Request) (*domain.Appointment, error) {
	appt, err := uc.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	created, err := uc.appointments.Create(ctx, appt)
	if err != nil {
		uc.logger.Error("failed to persist booking", zap.Error(err))
		return nil, domain.AsStorageFailure(err)
	}
	if created.ServiceName == "" {
		created.ServiceName = appt.ServiceName
	}

	uc.logger.Info("booking submitted",
		zap.Int64("appointment_id", created.ID),
		zap.Int64("service_id", created.ServiceID),
	)

	if uc.dispatcher != nil {
		uc.dispatcher.Dispatch(ctx, domain.NewCreatedEvent(created, uc.clock.Now()))
	}
	return created, nil
}

// validate checks fields in a fixed order and stops at the first problem.
func (uc *UseCase) validate(ctx context.Context, req Request) (*domain.Appointment, error) {
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return nil, domain.NewValidationError("client_name", "client name is required")
	}

	email := strings.TrimSpace(req.ClientEmail)
	if email == "" {
		return nil, domain.NewValidationError("client_email", "client email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return nil, domain.NewValidationError("client_email", "client email is malformed")
	}
	// Display names are dropped; the bare address is what SMTP delivers to.
	email = addr.Address

	if req.ServiceID <= 0 {
		return nil, domain.NewValidationError("service_id", "service id is required")
	}
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, domain.AsStorageFailure(err)
	}

	startTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		return nil, domain.NewValidationError("start_time", "start time must be an RFC 3339 timestamp")
	}

	if req.EmployeeID != nil {
		if _, err := uc.catalog.GetEmployee(ctx, *req.EmployeeID); err != nil {
			return nil, domain.AsStorageFailure(err)
		}
	}

	appt := &domain.Appointment{
		ClientName:  name,
		ClientEmail: email,
		ClientPhone: strings.TrimSpace(req.ClientPhone),
		ServiceID:   service.ID,
		ServiceName: service.Name,
		StartTime:   startTime,
		Status:      domain.StatusPending,
	}
	if req.EmployeeID != nil {
		id := *req.EmployeeID
		appt.EmployeeID = &id
	}
	return appt, nil
}
