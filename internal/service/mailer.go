package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"cms-backend/internal/event"
)

// Sender delivers a single plain-text message.
type Sender interface {
	Send(to string, subject string, body string) error
}

// SMTPSender delivers mail through go-mail.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPSender(host string, port int, user string, pass string, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTPSender) Send(to string, subject string, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{mail.WithPort(s.port)}
	if s.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.user),
			mail.WithPassword(s.pass))
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}

// NoopSender is used when no SMTP host is configured.
type NoopSender struct{}

func (NoopSender) Send(to string, subject string, _ string) error {
	slog.Debug("mail delivery skipped, smtp not configured", "to", to, "subject", subject)
	return nil
}

// Mailer turns auth events into notification emails. Delivery is best
// effort: a failed send is logged and never reaches the caller.
type Mailer struct {
	bus    event.Bus
	sender Sender
}

func NewMailer(bus event.Bus, sender Sender) *Mailer {
	return &Mailer{bus: bus, sender: sender}
}

// Run consumes events until ctx is cancelled. Intended to run in its own
// goroutine.
func (m *Mailer) Run(ctx context.Context) {
	events, unsubscribe := m.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			m.handle(e)
		}
	}
}

func (m *Mailer) handle(e event.Event) {
	var to, subject, body string

	switch payload := e.Payload.(type) {
	case event.SwitchPayload:
		to = payload.Email
		subject = "Active company changed"
		body = fmt.Sprintf("Hi %s,\n\nYour active company is now %s.\n\nIf this was not you, please contact support.\n",
			displayName(payload.UserPayload), payload.CompanyName)
	case event.UserPayload:
		to = payload.Email
		switch e.Type {
		case event.TypeUserRegistered:
			subject = "Welcome aboard"
			body = fmt.Sprintf("Hi %s,\n\nYour account %s has been created. A default company was set up for you.\n",
				displayName(payload), payload.Username)
		case event.TypeUserLogin:
			subject = "New sign-in to your account"
			body = fmt.Sprintf("Hi %s,\n\nA new sign-in to your account was just recorded. Any previously issued sessions are no longer valid.\n",
				displayName(payload))
		default:
			return
		}
	default:
		return
	}

	if err := m.sender.Send(to, subject, body); err != nil {
		slog.Error("send notification mail", "type", e.Type, "to", to, "error", err)
		return
	}
	slog.Debug("notification mail sent", "type", e.Type, "to", to)
}

func displayName(p event.UserPayload) string {
	if p.FirstName != "" {
		return p.FirstName
	}
	return p.Username
}
