package usecase

import (
	"context"
	"errors"

	"github.com/fastygo/salon/domain"
)

// ErrDeliveryDeferred reports that a message could not be sent now but was kept for retry.
var ErrDeliveryDeferred = errors.New("delivery deferred")

// Email is an outbound message tied to the appointment event that produced it.
type Email struct {
	AppointmentID int64
	Event         string
	To            string
	Subject       string
	Body          string
}

// Mailer delivers outbound email. Implementations may return an error wrapping
// ErrDeliveryDeferred when the message was queued instead of sent.
type Mailer interface {
	Deliver(ctx context.Context, email Email) error
}

// Broadcaster pushes an event to live dashboard connections and reports how
// many received it.
type Broadcaster interface {
	Broadcast(event string, payload interface{}) (int, error)
}

// EventPublisher relays appointment events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}

// NotificationDispatcher fans an appointment event out to every notification channel.
// It never fails the caller.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event domain.NotificationEvent)
}
