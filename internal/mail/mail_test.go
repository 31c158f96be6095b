package mail

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/salon/domain"
)

func sampleEvent(kind domain.EventKind) domain.NotificationEvent {
	appt := &domain.Appointment{
		ID:          12,
		ClientName:  "Ada",
		ClientEmail: "ada@x.com",
		ServiceID:   1,
		ServiceName: "Haircut",
		StartTime:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:      domain.StatusPending,
	}
	if kind == domain.EventStatusChanged {
		appt.Status = domain.StatusConfirmed
		return domain.NewStatusChangedEvent(appt, domain.StatusPending, time.Now())
	}
	return domain.NewCreatedEvent(appt, time.Now())
}

func TestClientMessage(t *testing.T) {
	t.Parallel()

	msg, err := ClientMessage(sampleEvent(domain.EventCreated))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{"Ada", "Haircut", "Sun, 01 Jun 2025 10:00:00 UTC", "PENDING"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("expected body to contain %q, got:\n%s", want, msg.Body)
		}
	}
	if !strings.Contains(msg.Subject, "Haircut") {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}

	msg, err = ClientMessage(sampleEvent(domain.EventStatusChanged))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(msg.Subject, "Appointment confirmed") {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
}

func TestStaffMessage(t *testing.T) {
	t.Parallel()

	msg, err := StaffMessage(sampleEvent(domain.EventStatusChanged))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if msg.Subject != "Appointment #12 confirmed" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "(was PENDING)") {
		t.Fatalf("expected previous status in body, got:\n%s", msg.Body)
	}
}

func TestClientMessage_FallsBackToServiceID(t *testing.T) {
	t.Parallel()

	evt := sampleEvent(domain.EventCreated)
	evt.Appointment.ServiceName = ""
	msg, err := ClientMessage(evt)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(msg.Body, "service #1") {
		t.Fatalf("expected service id fallback, got:\n%s", msg.Body)
	}
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	raw := buildMessage("from@x", "to@x", "hi\r\nBcc: evil@x", "line1\nline2", time.Unix(0, 0).UTC())
	if strings.Contains(raw, "\r\nBcc:") {
		t.Fatalf("expected header injection to be neutralised:\n%s", raw)
	}
	if !strings.HasSuffix(raw, "line1\r\nline2\r\n") {
		t.Fatalf("expected CRLF body, got %q", raw)
	}

	raw = buildMessage("from@x", "to@x\r\nBcc: evil@x", "hi", "body", time.Unix(0, 0).UTC())
	if strings.Contains(raw, "\r\nBcc:") {
		t.Fatalf("expected recipient header injection to be neutralised:\n%s", raw)
	}
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))
	if err := s.Send(context.Background(), "ada@x.com", "subject", "body"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["to"] != "ada@x.com" {
		t.Fatalf("expected one log entry addressed to ada@x.com")
	}
}

func TestSMTPSender_RespectsContext(t *testing.T) {
	t.Parallel()

	// 192.0.2.0/24 is reserved for documentation and never answers.
	s := NewSMTPSender("192.0.2.1", "25", "", "", "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := s.Send(ctx, "ada@x.com", "s", "b"); err == nil {
		t.Fatalf("expected error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("expected send to return promptly on context deadline")
	}
}
