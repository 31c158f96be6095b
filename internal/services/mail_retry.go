package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/internal/infrastructure/buffer"
	"github.com/fastygo/salon/internal/mail"
	"github.com/fastygo/salon/repository"
)

// RetryConfig controls how often the outbox is drained.
type RetryConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// MailRetryProcessor resends queued mail on a schedule.
type MailRetryProcessor struct {
	store   *buffer.Store
	sender  mail.Sender
	records repository.NotificationRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     RetryConfig
}

func NewMailRetryProcessor(
	store *buffer.Store,
	sender mail.Sender,
	records repository.NotificationRepository,
	logger *zap.Logger,
	cfg RetryConfig,
) *MailRetryProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &MailRetryProcessor{
		store:   store,
		sender:  sender,
		records: records,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", max(int(cfg.Interval.Seconds()), 1))
	_, _ = p.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := p.Drain(ctx); err != nil {
			p.logger.Error("mail outbox drain failed", zap.Error(err))
		}
	})
	_, _ = p.cron.AddFunc("@hourly", func() {
		removed, err := p.store.Cleanup(time.Now().Add(-cfg.Retention))
		if err != nil {
			p.logger.Error("mail outbox cleanup failed", zap.Error(err))
			return
		}
		if removed > 0 {
			p.logger.Warn("expired queued mail dropped", zap.Int("count", removed))
		}
	})

	return p
}

// Start launches the cron scheduler.
func (p *MailRetryProcessor) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Info("mail retry processor started")
}

// Stop waits for running jobs or ctx, whichever comes first.
func (p *MailRetryProcessor) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Info("mail retry processor stopped")
}

// Drain attempts delivery of one batch of queued mail.
func (p *MailRetryProcessor) Drain(ctx context.Context) error {
	if p == nil || p.store == nil {
		return nil
	}

	items, err := p.store.GetBatch(p.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := p.sender.Send(ctx, item.To, item.Subject, item.Body); err != nil {
			item.Retries++
			item.LastError = err.Error()
			if item.Retries >= p.cfg.MaxRetries {
				p.logger.Warn("dropping queued mail (max retries reached)",
					zap.String("item_id", item.ID),
					zap.Int64("appointment_id", item.AppointmentID),
					zap.Error(err))
				if rmErr := p.store.Remove(item); rmErr != nil {
					p.logger.Warn("failed to remove queued mail", zap.Error(rmErr))
				}
				p.record(ctx, item, domain.OutcomeFailed, err.Error())
				continue
			}
			if rqErr := p.store.Requeue(item); rqErr != nil {
				p.logger.Error("failed to requeue mail", zap.String("item_id", item.ID), zap.Error(rqErr))
			}
			continue
		}

		if err := p.store.Remove(item); err != nil {
			p.logger.Warn("failed to purge delivered mail", zap.Error(err))
		}
		p.record(ctx, item, domain.OutcomeSent, "")
	}
	return nil
}

// Size returns the number of queued messages.
func (p *MailRetryProcessor) Size() int {
	if p == nil || p.store == nil {
		return 0
	}
	size, err := p.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (p *MailRetryProcessor) record(ctx context.Context, item buffer.Item, outcome, errText string) {
	if p.records == nil {
		return
	}
	n := &domain.Notification{
		AppointmentID: item.AppointmentID,
		Channel:       domain.ChannelEmail,
		Recipient:     item.To,
		Event:         item.Event,
		Outcome:       outcome,
		Error:         errText,
	}
	if err := p.records.Record(ctx, n); err != nil {
		p.logger.Warn("failed to record retried mail outcome", zap.Error(err))
	}
}
