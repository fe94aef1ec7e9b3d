// Package notify delivers verification and reset messages.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/wneessen/go-mail"
)

// Notifier sends a plain-text message. Delivery is best effort; callers log
// a failure and carry on.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogNotifier writes the message to the log instead of sending it. Used
// when no SMTP server is configured.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "notify")}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.logger.Info(ctx, "smtp not configured, printing message", "to", to, "subject", subject, "body", body)
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Timeout bounds dialing and the whole SMTP exchange. Zero means
	// DefaultSMTPTimeout.
	Timeout time.Duration
}

const DefaultSMTPTimeout = 15 * time.Second

// Configured reports whether enough is set to talk to a server.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

// dialAndSend is a seam for tests.
var dialAndSend = func(ctx context.Context, c *mail.Client, msgs ...*mail.Msg) error {
	return c.DialAndSendWithContext(ctx, msgs...)
}

type SMTPNotifier struct {
	cfg    SMTPConfig
	logger logging.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, l logging.Logger) *SMTPNotifier {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSMTPTimeout
	}
	return &SMTPNotifier{cfg: cfg, logger: l.With("module", "notify")}
}

func (n *SMTPNotifier) client() (*mail.Client, error) {
	return mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.User),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(n.cfg.Timeout),
	)
}

// Send returns once the server accepted the message, or when ctx or the
// configured timeout expires, whichever is first.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := NewMessage(n.cfg.From, to, subject, body)
	if err != nil {
		return err
	}
	c, err := n.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- dialAndSend(ctx, c, msg) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	n.logger.Info(ctx, "email sent", "to", to, "subject", subject)
	return nil
}

// NewMessage builds a plain-text message with Date and Message-ID set.
// Addresses are parsed, so CR/LF in them is rejected rather than
// smuggled into headers.
func NewMessage(from, to, subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(strings.NewReplacer("\r", "", "\n", "").Replace(subject))
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

// New picks SMTP when configured and the log notifier otherwise.
func New(cfg SMTPConfig, l logging.Logger) Notifier {
	if cfg.Configured() {
		return NewSMTPNotifier(cfg, l)
	}
	return NewLogNotifier(l)
}
