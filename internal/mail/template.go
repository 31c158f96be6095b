package mail

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/fastygo/salon/domain"
)

// Message is a rendered email.
type Message struct {
	Subject string
	Body    string
}

var (
	clientCreatedTmpl = template.Must(template.New("client_created").Parse(
		`Hello {{.ClientName}},

Thank you for your booking. Here are the details:

  Service: {{.ServiceName}}
  Time:    {{.StartTime}}
  Status:  {{.Status}}

We will let you know once the appointment is confirmed.
`))

	clientStatusTmpl = template.Must(template.New("client_status").Parse(
		`Hello {{.ClientName}},

Your appointment for {{.ServiceName}} on {{.StartTime}} is now {{.Status}}.
`))

	staffTmpl = template.Must(template.New("staff").Parse(
		`{{.Headline}}

  Appointment: #{{.ID}}
  Client:      {{.ClientName}} <{{.ClientEmail}}>{{if .ClientPhone}} {{.ClientPhone}}{{end}}
  Service:     {{.ServiceName}}
  Time:        {{.StartTime}}
  Status:      {{.Status}}{{if .PreviousStatus}} (was {{.PreviousStatus}}){{end}}

No dashboard was connected when this happened.
`))
)

type templateData struct {
	Headline       string
	ID             int64
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	ServiceName    string
	StartTime      string
	Status         domain.Status
	PreviousStatus domain.Status
}

func newTemplateData(evt domain.NotificationEvent) templateData {
	appt := evt.Appointment
	service := appt.ServiceName
	if service == "" {
		service = fmt.Sprintf("service #%d", appt.ServiceID)
	}
	return templateData{
		ID:             appt.ID,
		ClientName:     appt.ClientName,
		ClientEmail:    appt.ClientEmail,
		ClientPhone:    appt.ClientPhone,
		ServiceName:    service,
		StartTime:      appt.StartTime.Format(time.RFC1123),
		Status:         appt.Status,
		PreviousStatus: evt.PreviousStatus,
	}
}

// ClientMessage renders the email sent to the client for the event.
func ClientMessage(evt domain.NotificationEvent) (Message, error) {
	data := newTemplateData(evt)
	tmpl := clientCreatedTmpl
	subject := fmt.Sprintf("Booking received: %s on %s", data.ServiceName, data.StartTime)
	if evt.Kind == domain.EventStatusChanged {
		tmpl = clientStatusTmpl
		subject = fmt.Sprintf("Appointment %s: %s on %s", statusWord(evt.Appointment.Status), data.ServiceName, data.StartTime)
	}
	return render(tmpl, subject, data)
}

// StaffMessage renders the fallback email sent to the salon when no dashboard is connected.
func StaffMessage(evt domain.NotificationEvent) (Message, error) {
	data := newTemplateData(evt)
	data.Headline = fmt.Sprintf("New booking from %s", data.ClientName)
	if evt.Kind == domain.EventStatusChanged {
		data.Headline = fmt.Sprintf("Appointment #%d %s", data.ID, statusWord(evt.Appointment.Status))
	}
	return render(staffTmpl, data.Headline, data)
}

func render(tmpl *template.Template, subject string, data templateData) (Message, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{Subject: subject, Body: buf.String()}, nil
}

func statusWord(s domain.Status) string {
	switch s {
	case domain.StatusConfirmed:
		return "confirmed"
	case domain.StatusCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}
