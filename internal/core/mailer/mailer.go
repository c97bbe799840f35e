// Package mailer delivers transactional email. Sends are best-effort: the
// Dispatcher runs them in the background and only logs the outcome.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront-api/internal/core/config"
)

type Message struct {
	Email      string
	Name       string
	Subject    string
	TemplateID string
	Data       map[string]any
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// New picks the sender configured by mail.driver.
func New(c config.Mail, l *zap.Logger) (Sender, error) {
	switch strings.ToLower(c.Driver) {
	case "mailersend":
		if c.APIKey == "" {
			return nil, fmt.Errorf("mailer: mail.api_key is required for the mailersend driver")
		}
		return NewMailerSend(c), nil
	case "smtp":
		return NewSMTP(c)
	case "", "log":
		return LogSender{log: l.With(zap.String("component", "mailer"))}, nil
	default:
		return nil, fmt.Errorf("mailer: unknown driver %q", c.Driver)
	}
}

// LogSender only logs the message. Local development.
type LogSender struct{ log *zap.Logger }

func (s LogSender) Send(_ context.Context, m Message) error {
	s.log.Info("mail (log driver)",
		zap.String("to", m.Email),
		zap.String("subject", m.Subject),
		zap.String("template", m.TemplateID),
		zap.Any("data", m.Data),
	)
	return nil
}
