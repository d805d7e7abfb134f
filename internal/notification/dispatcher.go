package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hotel/internal/domain"

	"github.com/sirupsen/logrus"
)

// ErrNoRecipient is returned by channels that need an address the event does not carry.
var ErrNoRecipient = errors.New("notification has no recipient")

// Channel delivers a booking event over one transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, ev domain.BookingEvent) error
}

// Recorder stores the outcome of every delivery attempt.
type Recorder interface {
	Record(ctx context.Context, ev domain.BookingEvent, channel string, status domain.NotificationStatus, sendErr error)
}

// Deduper reports whether ev is seen for the first time.
type Deduper interface {
	FirstDelivery(ctx context.Context, ev domain.BookingEvent) bool
}

type Options struct {
	Async   bool
	Timeout time.Duration
}

// Dispatcher fans a booking event out to its channels. Failures are logged and
// recorded, never returned: a booking never fails because a mail did.
type Dispatcher struct {
	channels []Channel
	recorder Recorder
	dedupe   Deduper
	opts     Options
	log      *logrus.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(log *logrus.Logger, opts Options, channels ...Channel) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Dispatcher{channels: channels, opts: opts, log: log}
}

func (d *Dispatcher) WithRecorder(r Recorder) *Dispatcher {
	d.recorder = r
	return d
}

func (d *Dispatcher) WithDeduper(dd Deduper) *Dispatcher {
	d.dedupe = dd
	return d
}

func (d *Dispatcher) Notify(ctx context.Context, ev domain.BookingEvent) {
	if !d.opts.Async {
		d.deliver(ctx, ev)
		return
	}

	// the request context is cancelled as soon as the handler returns
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(detached, ev)
	}()
}

// Wait blocks until in-flight async deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, ev domain.BookingEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	entry := d.log.WithFields(logrus.Fields{
		"kind":       ev.Kind,
		"booking_id": ev.Booking.ID,
	})
	defer func() {
		if r := recover(); r != nil {
			entry.Errorf("notification panic: %v", r)
		}
	}()

	if d.dedupe != nil && !d.dedupe.FirstDelivery(ctx, ev) {
		entry.Info("notification already delivered, skipping")
		return
	}

	for _, ch := range d.channels {
		err := ch.Send(ctx, ev)
		status := domain.NotificationSent
		switch {
		case errors.Is(err, ErrNoRecipient):
			status = domain.NotificationSkipped
			entry.WithField("channel", ch.Name()).Warn("notification skipped: no recipient")
		case err != nil:
			status = domain.NotificationFailed
			entry.WithField("channel", ch.Name()).WithError(err).Error("notification failed")
		default:
			entry.WithField("channel", ch.Name()).Debug("notification sent")
		}
		if d.recorder != nil {
			d.recorder.Record(ctx, ev, ch.Name(), status, err)
		}
	}
}

func subject(ev domain.BookingEvent) string {
	switch ev.Kind {
	case domain.NotifBookingCreated:
		return fmt.Sprintf("Booking #%d received", ev.Booking.ID)
	case domain.NotifBookingConfirmed:
		return fmt.Sprintf("Booking #%d confirmed", ev.Booking.ID)
	case domain.NotifCheckedIn:
		return fmt.Sprintf("Welcome! Booking #%d checked in", ev.Booking.ID)
	case domain.NotifCheckedOut:
		return fmt.Sprintf("Thank you for staying with us (booking #%d)", ev.Booking.ID)
	case domain.NotifCancelled:
		return fmt.Sprintf("Booking #%d cancelled", ev.Booking.ID)
	}
	return fmt.Sprintf("Booking #%d update", ev.Booking.ID)
}
