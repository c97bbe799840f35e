package mailer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront-api/internal/core/metrics"
)

// Dispatcher fires sends in the background. Callers never see the outcome.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(s Sender, timeout time.Duration, l *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{sender: s, timeout: timeout, log: l.With(zap.String("component", "mailer"))}
}

// Dispatch returns immediately. The send runs on a context detached from the
// request so it survives the response being written.
func (d *Dispatcher) Dispatch(m Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.MailDispatch.WithLabelValues("error").Inc()
				d.log.Error("mail send panic", zap.Any("panic", r), zap.String("to", m.Email))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		err := d.sender.Send(ctx, m)
		metrics.MailDispatch.WithLabelValues(metrics.Outcome(err)).Inc()
		if err != nil {
			d.log.Error("mail send failed", zap.String("to", m.Email), zap.String("template", m.TemplateID), zap.Error(err))
			return
		}
		d.log.Info("mail sent", zap.String("to", m.Email), zap.String("template", m.TemplateID))
	}()
}

// Wait blocks until every dispatched send has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }
