package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"

	mail "github.com/go-mail/mail"

	"storefront-api/internal/core/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// SMTPSender renders the embedded template named by Message.TemplateID and
// relays it over SMTP.
type SMTPSender struct {
	cfg   config.Mail
	pages *template.Template
}

func NewSMTP(c config.Mail) (*SMTPSender, error) {
	if c.SMTP.Host == "" {
		return nil, fmt.Errorf("mailer: mail.smtp.host is required for the smtp driver")
	}
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mailer: parse templates: %w", err)
	}
	return &SMTPSender{cfg: c, pages: pages}, nil
}

// Render executes the template for m into an HTML body.
func (s *SMTPSender) Render(m Message) (string, error) {
	page := s.pages.Lookup(m.TemplateID + ".html")
	if page == nil {
		return "", fmt.Errorf("mailer: unknown template %q", m.TemplateID)
	}
	var buf bytes.Buffer
	data := map[string]any{"Name": m.Name, "Email": m.Email}
	for k, v := range m.Data {
		data[k] = v
	}
	if err := page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mailer: render %s: %w", m.TemplateID, err)
	}
	return buf.String(), nil
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	body, err := s.Render(m)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", s.cfg.FromEmail, s.cfg.FromName)
	msg.SetAddressHeader("To", m.Email, m.Name)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", body)

	sc := s.cfg.SMTP
	d := mail.NewDialer(sc.Host, sc.Port, sc.Username, sc.Password)
	d.Timeout = s.cfg.Timeout()
	d.TLSConfig = &tls.Config{ServerName: sc.Host}
	switch sc.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// auto: STARTTLS when the server offers it
	}

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
