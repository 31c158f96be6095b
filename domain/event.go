package domain

import "time"

// EventKind identifies what happened to an appointment.
type EventKind string

const (
	EventCreated       EventKind = "created"
	EventStatusChanged EventKind = "status_changed"
)

// Live channel event names.
const (
	EventNameNew    = "appointment:new"
	EventNameUpdate = "appointment:update"
)

// NotificationEvent describes an appointment change to be fanned out.
// Appointment is a snapshot, never a live reference.
type NotificationEvent struct {
	Kind           EventKind   `json:"kind"`
	Appointment    Appointment `json:"appointment"`
	PreviousStatus Status      `json:"previous_status,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

// StatusUpdate is the payload broadcast for appointment:update.
type StatusUpdate struct {
	Appointment    Appointment `json:"appointment"`
	PreviousStatus Status      `json:"previous_status"`
}

func NewCreatedEvent(appt *Appointment, at time.Time) NotificationEvent {
	return NotificationEvent{Kind: EventCreated, Appointment: appt.Snapshot(), OccurredAt: at}
}

func NewStatusChangedEvent(appt *Appointment, previous Status, at time.Time) NotificationEvent {
	return NotificationEvent{
		Kind:           EventStatusChanged,
		Appointment:    appt.Snapshot(),
		PreviousStatus: previous,
		OccurredAt:     at,
	}
}

// Name returns the live channel event name.
func (e NotificationEvent) Name() string {
	if e.Kind == EventStatusChanged {
		return EventNameUpdate
	}
	return EventNameNew
}

// Payload returns the body pushed to live subscribers.
func (e NotificationEvent) Payload() interface{} {
	if e.Kind == EventStatusChanged {
		return StatusUpdate{Appointment: e.Appointment, PreviousStatus: e.PreviousStatus}
	}
	return e.Appointment
}

// Notification channels and outcomes.
const (
	ChannelLive  = "live"
	ChannelEmail = "email"
	ChannelRelay = "relay"

	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeQueued  = "queued"
	OutcomeSkipped = "skipped"
)

// Notification is the durable record of one notification action.
type Notification struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	Channel       string    `json:"channel"`
	Recipient     string    `json:"recipient,omitempty"`
	Event         string    `json:"event"`
	Outcome       string    `json:"outcome"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
