package monitor

import "time"

// Status is the last observed state of the service dependencies.
type Status struct {
	PostgreSQL  bool      `json:"postgresql"`
	Redis       bool      `json:"redis"`
	Outbox      bool      `json:"outbox"`
	OutboxSize  int       `json:"outbox_size"`
	Subscribers int       `json:"subscribers"`
	LastCheck   time.Time `json:"last_check"`
}
