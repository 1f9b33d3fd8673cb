package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// DeliveryFailure records one channel that could not be notified.
type DeliveryFailure struct {
	Channel model.NotificationChannel
	Err     error
}

// DispatchResult summarizes delivery of one alert.
type DispatchResult struct {
	Sent     int
	Skipped  int
	Failures []DeliveryFailure
}

// Dispatcher fans an alert out to the channels whose filters match it.
// A failing channel never blocks delivery to the others.
type Dispatcher struct {
	senders *SenderRegistry
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher. timeout bounds each individual send;
// zero means the default HTTP timeout.
func NewDispatcher(senders *SenderRegistry, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if senders == nil {
		senders = DefaultSenders()
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{senders: senders, timeout: timeout, logger: logger}
}

// Dispatch delivers alert to every matching channel.
func (d *Dispatcher) Dispatch(ctx context.Context, alert model.CostAlert, channels []model.NotificationChannel) DispatchResult {
	var result DispatchResult

	for _, ch := range channels {
		if !Matches(ch, alert) {
			continue
		}

		sender, ok := d.senders.Get(ch.Type)
		if !ok {
			d.logger.Warn("no sender for channel type",
				"channel", ch.ID,
				"type", ch.Type,
				"alert", alert.ID,
			)
			result.Skipped++
			continue
		}

		if err := d.send(ctx, sender, alert, ch); err != nil {
			d.logger.Error("send alert failed",
				"channel", ch.ID,
				"type", ch.Type,
				"alert", alert.ID,
				"error", err,
			)
			result.Failures = append(result.Failures, DeliveryFailure{Channel: ch, Err: err})
			continue
		}
		result.Sent++
	}

	return result
}

// send bounds a single delivery by the dispatcher timeout even when the
// sender ignores ctx.
func (d *Dispatcher) send(ctx context.Context, sender Sender, alert model.CostAlert, ch model.NotificationChannel) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("sender %s panicked: %v", ch.Type, r)
			}
		}()
		done <- sender.Send(ctx, alert, ch.Config)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
