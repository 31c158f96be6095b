package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sender delivers one plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through an SMTP relay, authenticating when credentials are set.
type SMTPSender struct {
	addr string
	host string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	host = strings.TrimSpace(host)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@salon.local"
	}
	s := &SMTPSender{
		addr: net.JoinHostPort(host, strings.TrimSpace(port)),
		host: host,
		from: from,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

// Send honours ctx by running the blocking SMTP exchange on a goroutine.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := buildMessage(s.from, to, subject, body, time.Now())
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender writes messages to the log instead of sending them. It is used when
// no SMTP relay is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("email (smtp disabled)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

func buildMessage(from, to, subject, body string, at time.Time) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		sanitizeHeader(from),
		sanitizeHeader(to),
		sanitizeHeader(subject),
		at.Format(time.RFC1123Z),
		strings.ReplaceAll(body, "\n", "\r\n"),
	)
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
