package notification

import (
	"context"
	"log/slog"

	mail "github.com/wneessen/go-mail"
)

// Message describes an outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages to members.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that records deliveries on the
// logger. Used when no SMTP server is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the delivery to the structured logger. The body is omitted so
// reset tokens never reach log storage.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("email delivery skipped, no SMTP configured",
		"to", message.To, "subject", message.Subject)
	return nil
}

// SMTPMailer delivers messages over SMTP.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer builds an SMTP-backed mailer.
func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{client: client, from: from}, nil
}

// Send delivers the message, honoring context cancellation.
func (m *SMTPMailer) Send(ctx context.Context, message Message) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(message.To); err != nil {
		return err
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.Body)
	return m.client.DialAndSendWithContext(ctx, msg)
}
