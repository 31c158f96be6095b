package domain

import "time"

// Appointment is a scheduled service booking with a lifecycle status.
type Appointment struct {
	ID          int64     `json:"id"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	ClientPhone string    `json:"client_phone,omitempty"`
	ServiceID   int64     `json:"service_id"`
	ServiceName string    `json:"service_name,omitempty"`
	EmployeeID  *int64    `json:"employee_id,omitempty"`
	StartTime   time.Time `json:"start_time"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a copy that shares no memory with the receiver.
func (a *Appointment) Snapshot() Appointment {
	if a == nil {
		return Appointment{}
	}
	out := *a
	if a.EmployeeID != nil {
		id := *a.EmployeeID
		out.EmployeeID = &id
	}
	return out
}

// Service is a bookable offering from the catalog.
type Service struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

// Employee is a staff member that can be assigned to an appointment.
type Employee struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
