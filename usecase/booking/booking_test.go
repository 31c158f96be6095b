package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/pkg/clock"
	"github.com/fastygo/salon/repository"
)

type fakeAppointments struct {
	mu      sync.Mutex
	nextID  int64
	created []domain.Appointment
	err     error
}

func (r *fakeAppointments) GetByID(context.Context, int64) (*domain.Appointment, error) {
	return nil, domain.ErrAppointmentNotFound
}

func (r *fakeAppointments) List(context.Context, repository.AppointmentFilter) ([]domain.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointments) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	out := appt.Snapshot()
	out.ID = r.nextID
	r.created = append(r.created, out)
	return &out, nil
}

func (r *fakeAppointments) UpdateStatus(context.Context, int64, domain.Status, repository.TransitionGuard) (*domain.Appointment, domain.Status, error) {
	return nil, "", errors.New("not implemented")
}

func (r *fakeAppointments) Delete(context.Context, int64) error {
	return nil
}

type fakeCatalog struct {
	services  map[int64]domain.Service
	employees map[int64]domain.Employee
	err       error
}

func (c *fakeCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	if c.err != nil {
		return nil, c.err
	}
	s, ok := c.services[id]
	if !ok {
		return nil, domain.ErrServiceNotFound
	}
	return &s, nil
}

func (c *fakeCatalog) GetEmployee(_ context.Context, id int64) (*domain.Employee, error) {
	if c.err != nil {
		return nil, c.err
	}
	e, ok := c.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return &e, nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
}

func (d *fakeDispatcher) Dispatch(_ context.Context, evt domain.NotificationEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
}

func newCatalog() *fakeCatalog {
	return &fakeCatalog{
		services:  map[int64]domain.Service{3: {ID: 3, Name: "Haircut", DurationMinutes: 45}},
		employees: map[int64]domain.Employee{5: {ID: 5, Name: "Grace"}},
	}
}

func validRequest() Request {
	return Request{
		ClientName:  "Ada",
		ClientEmail: "ada@x.com",
		ServiceID:   3,
		StartTime:   "2025-06-01T10:00:00Z",
	}
}

func TestSubmitBooking_Success(t *testing.T) {
	t.Parallel()

	store := &fakeAppointments{nextID: 41}
	dispatcher := &fakeDispatcher{}
	now := time.Date(2025, 5, 30, 8, 0, 0, 0, time.UTC)
	uc := New(store, newCatalog(), dispatcher, clock.NewFixed(now), nil)

	req := validRequest()
	req.Status = "CONFIRMED"

	appt, err := uc.SubmitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if appt.ID != 42 {
		t.Fatalf("expected id 42, got %d", appt.ID)
	}
	if appt.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", appt.Status)
	}
	if appt.ServiceName != "Haircut" {
		t.Fatalf("expected service name Haircut, got %q", appt.ServiceName)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 write, got %d", len(store.created))
	}

	if len(dispatcher.events) != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", len(dispatcher.events))
	}
	evt := dispatcher.events[0]
	if evt.Kind != domain.EventCreated || evt.Appointment.ID != 42 {
		t.Fatalf("expected created event for id 42, got %+v", evt)
	}
	if !evt.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v, got %v", now, evt.OccurredAt)
	}
}

func TestSubmitBooking_WithEmployee(t *testing.T) {
	t.Parallel()

	store := &fakeAppointments{}
	uc := New(store, newCatalog(), &fakeDispatcher{}, nil, nil)

	req := validRequest()
	employee := int64(5)
	req.EmployeeID = &employee

	appt, err := uc.SubmitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if appt.EmployeeID == nil || *appt.EmployeeID != 5 {
		t.Fatalf("expected employee 5, got %v", appt.EmployeeID)
	}
}

func TestSubmitBooking_StoresBareAddress(t *testing.T) {
	t.Parallel()

	store := &fakeAppointments{}
	dispatcher := &fakeDispatcher{}
	uc := New(store, newCatalog(), dispatcher, nil, nil)

	req := validRequest()
	req.ClientEmail = "  Ada Lovelace <ada@x.com> "

	appt, err := uc.SubmitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if appt.ClientEmail != "ada@x.com" {
		t.Fatalf("expected bare address, got %q", appt.ClientEmail)
	}
	if store.created[0].ClientEmail != "ada@x.com" {
		t.Fatalf("expected stored bare address, got %q", store.created[0].ClientEmail)
	}
	if got := dispatcher.events[0].Appointment.ClientEmail; got != "ada@x.com" {
		t.Fatalf("expected dispatched bare address, got %q", got)
	}
}

func TestSubmitBooking_Rejections(t *testing.T) {
	t.Parallel()

	missingEmployee := int64(99)

	cases := []struct {
		name   string
		mutate func(*Request)
		code   domain.ErrorCode
		field  string
	}{
		{"empty name", func(r *Request) { r.ClientName = "  " }, domain.ErrCodeInvalid, "client_name"},
		{"empty email", func(r *Request) { r.ClientEmail = "" }, domain.ErrCodeInvalid, "client_email"},
		{"malformed email", func(r *Request) { r.ClientEmail = "not-an-address" }, domain.ErrCodeInvalid, "client_email"},
		{"missing service id", func(r *Request) { r.ServiceID = 0 }, domain.ErrCodeInvalid, "service_id"},
		{"unknown service", func(r *Request) { r.ServiceID = 999 }, domain.ErrCodeNotFound, ""},
		{"bad start time", func(r *Request) { r.StartTime = "tomorrow" }, domain.ErrCodeInvalid, "start_time"},
		{"unknown employee", func(r *Request) { r.EmployeeID = &missingEmployee }, domain.ErrCodeNotFound, ""},
		{"first failure wins", func(r *Request) { r.ClientName = ""; r.ServiceID = 999 }, domain.ErrCodeInvalid, "client_name"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeAppointments{}
			dispatcher := &fakeDispatcher{}
			uc := New(store, newCatalog(), dispatcher, nil, nil)

			req := validRequest()
			tc.mutate(&req)

			_, err := uc.SubmitBooking(context.Background(), req)
			var dErr *domain.Error
			if !errors.As(err, &dErr) {
				t.Fatalf("expected domain error, got %v", err)
			}
			if dErr.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, dErr.Code)
			}
			if tc.field != "" && dErr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, dErr.Field)
			}
			if len(store.created) != 0 {
				t.Fatalf("expected no write, got %d", len(store.created))
			}
			if len(dispatcher.events) != 0 {
				t.Fatalf("expected no dispatch, got %d", len(dispatcher.events))
			}
		})
	}
}

func TestSubmitBooking_StoreFailure(t *testing.T) {
	t.Parallel()

	t.Run("create fails", func(t *testing.T) {
		store := &fakeAppointments{err: errors.New("connection refused")}
		dispatcher := &fakeDispatcher{}
		uc := New(store, newCatalog(), dispatcher, nil, nil)

		_, err := uc.SubmitBooking(context.Background(), validRequest())
		if !domain.IsDomainError(err, domain.ErrCodeUnavailable) {
			t.Fatalf("expected UNAVAILABLE, got %v", err)
		}
		if len(dispatcher.events) != 0 {
			t.Fatalf("expected no dispatch, got %d", len(dispatcher.events))
		}
	})

	t.Run("catalog lookup fails", func(t *testing.T) {
		catalog := newCatalog()
		catalog.err = context.DeadlineExceeded
		uc := New(&fakeAppointments{}, catalog, &fakeDispatcher{}, nil, nil)

		_, err := uc.SubmitBooking(context.Background(), validRequest())
		if !domain.IsDomainError(err, domain.ErrCodeUnavailable) {
			t.Fatalf("expected UNAVAILABLE, got %v", err)
		}
	})
}
