package mailer

import (
	"context"
	"fmt"

	"github.com/mailersend/mailersend-go"

	"storefront-api/internal/core/config"
)

// MailerSendSender sends provider-side templates through the MailerSend API.
type MailerSendSender struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(c config.Mail) *MailerSendSender {
	return &MailerSendSender{
		client: mailersend.NewMailersend(c.APIKey),
		from:   mailersend.From{Name: c.FromName, Email: c.FromEmail},
	}
}

func (s *MailerSendSender) Send(ctx context.Context, m Message) error {
	msg := s.client.Email.NewMessage()
	msg.SetFrom(s.from)
	msg.SetReplyTo(mailersend.Recipient{Name: s.from.Name, Email: s.from.Email})
	msg.SetRecipients([]mailersend.Recipient{{Name: m.Name, Email: m.Email}})
	msg.SetSubject(m.Subject)
	msg.SetTemplateID(m.TemplateID)
	msg.SetPersonalization([]mailersend.Personalization{{Email: m.Email, Data: m.Data}})

	if _, err := s.client.Email.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailersend send: %w", err)
	}
	return nil
}
