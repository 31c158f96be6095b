package buffer

import (
	"time"

	"github.com/google/uuid"
)

// Item is an email that could not be delivered on the first attempt.
type Item struct {
	ID            string    `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	Event         string    `json:"event"`
	To            string    `json:"to"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	Retries       int       `json:"retries"`
	LastError     string    `json:"last_error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	CreatedAt     time.Time `json:"created_at"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = i.Timestamp
	}
}
