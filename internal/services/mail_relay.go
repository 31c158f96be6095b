package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/salon/internal/infrastructure/buffer"
	"github.com/fastygo/salon/internal/mail"
	"github.com/fastygo/salon/usecase"
)

// MailRelay sends mail immediately and falls back to the outbox when the relay fails.
type MailRelay struct {
	sender mail.Sender
	store  *buffer.Store
	logger *zap.Logger
}

func NewMailRelay(sender mail.Sender, store *buffer.Store, logger *zap.Logger) *MailRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailRelay{sender: sender, store: store, logger: logger}
}

func (r *MailRelay) Deliver(ctx context.Context, email usecase.Email) error {
	if r.sender == nil {
		return errors.New("mail sender not configured")
	}
	sendErr := r.sender.Send(ctx, email.To, email.Subject, email.Body)
	if sendErr == nil {
		return nil
	}
	if r.store == nil {
		return sendErr
	}

	item := buffer.Item{
		AppointmentID: email.AppointmentID,
		Event:         email.Event,
		To:            email.To,
		Subject:       email.Subject,
		Body:          email.Body,
		LastError:     sendErr.Error(),
	}
	if err := r.store.Enqueue(item); err != nil {
		r.logger.Error("failed to queue undelivered email", zap.String("to", email.To), zap.Error(err))
		return errors.Join(sendErr, err)
	}
	return fmt.Errorf("%w: %v", usecase.ErrDeliveryDeferred, sendErr)
}

var _ usecase.Mailer = (*MailRelay)(nil)
