package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/internal/config"
	"github.com/fastygo/salon/usecase"
)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Envelope is the message value written for every appointment event.
type Envelope struct {
	EventID    string      `json:"event_id"`
	Event      string      `json:"event"`
	Kind       string      `json:"kind"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher relays appointment events to a Kafka topic keyed by appointment id,
// so all events of one appointment land on the same partition in order.
type Publisher struct {
	writer Writer
}

// NewPublisher returns nil when no brokers are configured.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return NewPublisherWithWriter(&kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	})
}

func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, evt domain.NotificationEvent) error {
	env := Envelope{
		EventID:    uuid.NewString(),
		Event:      evt.Name(),
		Kind:       string(evt.Kind),
		OccurredAt: evt.OccurredAt,
		Payload:    evt.Payload(),
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(evt.Appointment.ID, 10)),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(env.EventID)},
			{Key: "event_type", Value: []byte(env.Event)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

var _ usecase.EventPublisher = (*Publisher)(nil)
