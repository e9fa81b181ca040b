package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/melba-site-backend/errs"
)

const DefaultMailTimeout = 15 * time.Second

// Dispatcher delivers submission notifications in the background. Delivery
// failures are logged and never reach the caller.
type Dispatcher struct {
	mailer       Mailer
	alerter      Alerter
	contactEmail string
	timeout      time.Duration

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

func WithTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithAlerter adds an SMS alert alongside the admin email.
func WithAlerter(a Alerter) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.alerter = a
	}
}

func NewDispatcher(mailer Mailer, contactEmail string, opts ...DispatcherOption) *Dispatcher {
	if mailer == nil {
		mailer = LogMailer{}
	}
	d := &Dispatcher{mailer: mailer, contactEmail: contactEmail, timeout: DefaultMailTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch returns immediately. Notifications dispatched after Wait has
// been called are dropped with a warning.
func (d *Dispatcher) Dispatch(n Notification) {
	if n.Submitted.IsZero() {
		n.Submitted = time.Now()
	}

	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		log.Warn().Str("kind", n.Kind).Msg("dispatcher is shutting down, notification dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.deliver(n)
	}()
}

// Wait stops accepting notifications, then blocks until in-flight ones
// finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(n Notification) {
	logger := log.With().
		Str("kind", n.Kind).
		Str("submitterName", redactName(n.Name)).
		Str("submitterEmail", redactEmail(n.Email)).
		Logger()

	var g errgroup.Group
	if d.contactEmail != "" {
		g.Go(guard(logger, "admin", func() error {
			env, err := adminEnvelope(n, d.contactEmail)
			if err != nil {
				logger.Error().Err(err).Msg("failed to render admin notification")
				return err
			}
			return d.send(logger, "admin", env)
		}))
	} else {
		logger.Warn().Msg("CONTACT_EMAIL not set, skipping admin notification")
	}

	if n.Acknowledge && n.Email != "" {
		g.Go(guard(logger, "submitter", func() error {
			env, err := ackEnvelope(n, d.contactEmail)
			if err != nil {
				logger.Error().Err(err).Msg("failed to render acknowledgement")
				return err
			}
			return d.send(logger, "submitter", env)
		}))
	}

	if d.alerter != nil {
		g.Go(guard(logger, "sms", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			body := fmt.Sprintf("%s: new %s from %s", siteName, n.Label, n.Name)
			if err := d.alerter.Alert(ctx, body); err != nil {
				logger.Error().Err(err).Msg("admin SMS alert failed")
				return err
			}
			return nil
		}))
	}

	if err := g.Wait(); err != nil {
		logger.Warn().Msg("notification finished with failures")
		return
	}
	logger.Info().Msg("notification delivered")
}

// guard turns a panic in a transport into an error for that send only.
func guard(logger zerolog.Logger, role string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Str("role", role).Msg("notification delivery panicked")
				err = fmt.Errorf("%s delivery panicked: %v", role, r)
			}
		}()
		return fn()
	}
}

func (d *Dispatcher) send(logger zerolog.Logger, role string, env Envelope) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := d.mailer.Send(ctx, env); err != nil {
		logger.Error().
			Err(errs.NotificationFault(redactEmail(env.To), err)).
			Str("role", role).
			Dur("elapsed", time.Since(start)).
			Msg("email send failed")
		return err
	}
	logger.Debug().Str("role", role).Dur("elapsed", time.Since(start)).Msg("email sent")
	return nil
}
