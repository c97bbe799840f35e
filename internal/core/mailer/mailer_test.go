package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-api/internal/core/config"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
	wait time.Duration
}

func (r *recordingSender) Send(ctx context.Context, m Message) error {
	if r.wait > 0 {
		time.Sleep(r.wait)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return r.err
}

func TestDispatcher_SendsInBackground(t *testing.T) {
	rec := &recordingSender{wait: 20 * time.Millisecond}
	d := NewDispatcher(rec, time.Second, zap.NewNop())

	start := time.Now()
	d.Dispatch(Message{Email: "a@example.com", TemplateID: "verify-email"})
	d.Dispatch(Message{Email: "b@example.com", TemplateID: "reset-password"})
	assert.Less(t, time.Since(start), 20*time.Millisecond)

	d.Wait()
	assert.Len(t, rec.sent, 2)
}

func TestDispatcher_SwallowsErrors(t *testing.T) {
	rec := &recordingSender{err: errors.New("provider down")}
	d := NewDispatcher(rec, time.Second, zap.NewNop())
	assert.NotPanics(t, func() {
		d.Dispatch(Message{Email: "a@example.com"})
		d.Wait()
	})
	assert.Len(t, rec.sent, 1)
}

func TestSMTPSender_Render(t *testing.T) {
	s, err := NewSMTP(config.Mail{SMTP: config.SMTP{Host: "localhost", Port: 1025}})
	require.NoError(t, err)

	body, err := s.Render(Message{Name: "Ana", TemplateID: "verify-email", Data: map[string]any{"name": "Ana", "verificationCode": "123456"}})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Ana")
	assert.Contains(t, body, "123456")

	body, err = s.Render(Message{Name: "<b>x</b>", TemplateID: "reset-password", Data: map[string]any{"name": "<b>x</b>", "verificationCode": "654321"}})
	require.NoError(t, err)
	assert.Contains(t, body, "654321")
	assert.NotContains(t, body, "<b>x</b>")

	_, err = s.Render(Message{TemplateID: "nope"})
	assert.Error(t, err)
}

func TestNew_SelectsDriver(t *testing.T) {
	l := zap.NewNop()

	s, err := New(config.Mail{Driver: "log"}, l)
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)
	assert.NoError(t, s.Send(context.Background(), Message{Email: "a@example.com"}))

	s, err = New(config.Mail{Driver: "mailersend", APIKey: "mlsn.test"}, l)
	require.NoError(t, err)
	assert.IsType(t, &MailerSendSender{}, s)

	_, err = New(config.Mail{Driver: "mailersend"}, l)
	assert.Error(t, err)

	s, err = New(config.Mail{Driver: "smtp", SMTP: config.SMTP{Host: "localhost"}}, l)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	_, err = New(config.Mail{Driver: "pigeon"}, l)
	assert.Error(t, err)
}
