package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/internal/config"
)

type captureWriter struct {
	msgs   []kafkago.Message
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	w := &captureWriter{}
	p := NewPublisherWithWriter(w)

	appt := &domain.Appointment{ID: 42, Status: domain.StatusConfirmed}
	evt := domain.NewStatusChangedEvent(appt, domain.StatusPending, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))

	if err := p.Publish(context.Background(), evt); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "42" {
		t.Fatalf("expected key 42, got %s", msg.Key)
	}

	var env struct {
		Event   string `json:"event"`
		Payload struct {
			PreviousStatus string `json:"previous_status"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if env.Event != domain.EventNameUpdate || env.Payload.PreviousStatus != "PENDING" {
		t.Fatalf("unexpected envelope %s", msg.Value)
	}

	var eventType string
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			eventType = string(h.Value)
		}
	}
	if eventType != domain.EventNameUpdate {
		t.Fatalf("expected event_type header, got %q", eventType)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("expected writer closed")
	}
}

func TestNewPublisher_DisabledWithoutBrokers(t *testing.T) {
	t.Parallel()

	if p := NewPublisher(config.KafkaConfig{Topic: "t"}); p != nil {
		t.Fatalf("expected nil publisher without brokers")
	}
}
