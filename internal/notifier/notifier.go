package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sender delivers messages over one SMTP session per call.
// *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Config holds SMTP notification configuration.
type Config struct {
	Host       string
	Port       int // 465 = implicit TLS submission
	Username   string
	Password   string
	From       string
	Recipients []string
	Timeout    time.Duration
}

// Notifier e-mails a computed score to a fixed list of recipients.
type Notifier struct {
	config Config
	sender Sender
}

// New creates a Notifier backed by an authenticated SSL SMTP client.
func New(config Config) (*Notifier, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if config.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if config.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if len(config.Recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	if config.Port == 0 {
		config.Port = 465
	}
	if config.Username == "" {
		config.Username = config.From
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	client, err := mail.NewClient(config.Host,
		mail.WithPort(config.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(config.Username),
		mail.WithPassword(config.Password),
		mail.WithTimeout(config.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &Notifier{config: config, sender: client}, nil
}

// Notify sends one message per recipient, each in its own session. Every
// recipient is attempted; failures are joined into the returned error.
func (n *Notifier) Notify(ctx context.Context, keyword string, score float64, at time.Time) error {
	subject := Subject(keyword)
	body := Body(keyword, score, at)

	var errs []error
	for _, rcpt := range n.config.Recipients {
		msg, err := n.compose(rcpt, subject, body, at)
		if err != nil {
			errs = append(errs, fmt.Errorf("compose for %s: %w", rcpt, err))
			continue
		}

		if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
			slog.Debug("notification send failed", "recipient", rcpt, "error", err)
			errs = append(errs, fmt.Errorf("send to %s: %w", rcpt, err))
			continue
		}
		slog.Debug("notification sent", "recipient", rcpt, "keyword", keyword)
	}

	return errors.Join(errs...)
}

func (n *Notifier) compose(rcpt, subject, body string, at time.Time) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.config.From); err != nil {
		return nil, err
	}
	if err := msg.To(rcpt); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetDateWithValue(at)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

var titleCaser = cases.Title(language.English)

// Subject returns the message subject for keyword.
func Subject(keyword string) string {
	return fmt.Sprintf("Sentiment score for %s", titleCaser.String(keyword))
}

// Body returns the plaintext message: title-cased keyword, score with two
// decimals and the computation timestamp.
func Body(keyword string, score float64, at time.Time) string {
	return fmt.Sprintf("Hello,\n\nThe sentiment score for %s is %.2f out of 10.\n\nComputed at: %s\n",
		titleCaser.String(keyword), score, at.Format("2006-01-02 15:04:05 MST"))
}
