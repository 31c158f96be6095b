package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/internal/mail"
	"github.com/fastygo/salon/pkg/clock"
	"github.com/fastygo/salon/repository"
	"github.com/fastygo/salon/usecase"
)

// Options toggles the optional notification actions.
type Options struct {
	// StaffEmail receives a fallback message when no dashboard got the live event.
	StaffEmail string
	// StatusEmails sends the client an email on confirmation and cancellation.
	StatusEmails bool
	// Timeout bounds the background work of a single dispatch.
	Timeout time.Duration
}

// Dispatcher fans an appointment event out to the live channel, email and the
// event relay. Failures are logged and recorded, never returned.
type Dispatcher struct {
	live      usecase.Broadcaster
	mailer    usecase.Mailer
	publisher usecase.EventPublisher
	records   repository.NotificationRepository
	clock     clock.Clock
	logger    *zap.Logger
	opts      Options

	wg sync.WaitGroup
}

func New(
	live usecase.Broadcaster,
	mailer usecase.Mailer,
	publisher usecase.EventPublisher,
	records repository.NotificationRepository,
	clk clock.Clock,
	logger *zap.Logger,
	opts Options,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Dispatcher{
		live:      live,
		mailer:    mailer,
		publisher: publisher,
		records:   records,
		clock:     clk,
		logger:    logger,
		opts:      opts,
	}
}

// Dispatch broadcasts synchronously so callers holding a per-appointment lock
// keep live events ordered. Recording, mail and relay work continue in the
// background on a context detached from the request and bounded by Timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, evt domain.NotificationEvent) {
	logger := d.logger.With(
		zap.Int64("appointment_id", evt.Appointment.ID),
		zap.String("event", evt.Name()),
	)

	live := d.broadcast(evt, logger)

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("notification dispatch panicked", zap.Any("panic", r))
			}
		}()

		if live.attempted {
			d.record(bg, evt, domain.ChannelLive, "", live.outcome, live.err)
		}
		d.emailClient(bg, evt, logger)
		if live.delivered == 0 {
			d.emailStaff(bg, evt, logger)
		}
		d.relay(bg, evt, logger)
	}()
}

// Wait blocks until background dispatch work has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

type liveResult struct {
	attempted bool
	delivered int
	outcome   string
	err       error
}

func (d *Dispatcher) broadcast(evt domain.NotificationEvent, logger *zap.Logger) liveResult {
	if d.live == nil {
		return liveResult{}
	}
	n, err := d.live.Broadcast(evt.Name(), evt.Payload())
	if err != nil {
		logger.Error("live broadcast failed", zap.Error(err))
		return liveResult{attempted: true, outcome: domain.OutcomeFailed, err: err}
	}
	outcome := domain.OutcomeSent
	if n == 0 {
		outcome = domain.OutcomeSkipped
	}
	logger.Debug("live broadcast", zap.Int("subscribers", n))
	return liveResult{attempted: true, delivered: n, outcome: outcome}
}

func (d *Dispatcher) emailClient(ctx context.Context, evt domain.NotificationEvent, logger *zap.Logger) {
	if evt.Kind == domain.EventStatusChanged {
		if !d.opts.StatusEmails || evt.Appointment.Status == domain.StatusPending {
			return
		}
	}
	to := evt.Appointment.ClientEmail
	if to == "" {
		return
	}
	msg, err := mail.ClientMessage(evt)
	if err != nil {
		logger.Error("render client email", zap.Error(err))
		d.record(ctx, evt, domain.ChannelEmail, to, domain.OutcomeFailed, err)
		return
	}
	d.deliver(ctx, evt, to, msg, logger)
}

func (d *Dispatcher) emailStaff(ctx context.Context, evt domain.NotificationEvent, logger *zap.Logger) {
	to := d.opts.StaffEmail
	if to == "" {
		return
	}
	msg, err := mail.StaffMessage(evt)
	if err != nil {
		logger.Error("render staff email", zap.Error(err))
		d.record(ctx, evt, domain.ChannelEmail, to, domain.OutcomeFailed, err)
		return
	}
	d.deliver(ctx, evt, to, msg, logger)
}

func (d *Dispatcher) deliver(ctx context.Context, evt domain.NotificationEvent, to string, msg mail.Message, logger *zap.Logger) {
	if d.mailer == nil {
		return
	}
	err := d.mailer.Deliver(ctx, usecase.Email{
		AppointmentID: evt.Appointment.ID,
		Event:         evt.Name(),
		To:            to,
		Subject:       msg.Subject,
		Body:          msg.Body,
	})
	switch {
	case err == nil:
		d.record(ctx, evt, domain.ChannelEmail, to, domain.OutcomeSent, nil)
	case errors.Is(err, usecase.ErrDeliveryDeferred):
		logger.Warn("email queued for retry", zap.String("to", to), zap.Error(err))
		d.record(ctx, evt, domain.ChannelEmail, to, domain.OutcomeQueued, err)
	default:
		logger.Error("email delivery failed", zap.String("to", to), zap.Error(err))
		d.record(ctx, evt, domain.ChannelEmail, to, domain.OutcomeFailed, err)
	}
}

func (d *Dispatcher) relay(ctx context.Context, evt domain.NotificationEvent, logger *zap.Logger) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, evt); err != nil {
		logger.Error("event relay failed", zap.Error(err))
		d.record(ctx, evt, domain.ChannelRelay, "", domain.OutcomeFailed, err)
		return
	}
	d.record(ctx, evt, domain.ChannelRelay, "", domain.OutcomeSent, nil)
}

func (d *Dispatcher) record(ctx context.Context, evt domain.NotificationEvent, channel, recipient, outcome string, cause error) {
	if d.records == nil {
		return
	}
	n := &domain.Notification{
		AppointmentID: evt.Appointment.ID,
		Channel:       channel,
		Recipient:     recipient,
		Event:         evt.Name(),
		Outcome:       outcome,
		CreatedAt:     d.clock.Now(),
	}
	if cause != nil {
		n.Error = cause.Error()
	}
	if err := d.records.Record(ctx, n); err != nil {
		d.logger.Warn("failed to record notification",
			zap.Int64("appointment_id", n.AppointmentID),
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}

var _ usecase.NotificationDispatcher = (*Dispatcher)(nil)
