package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// Event is implemented by every notification the engine publishes.
type Event interface {
	// Kind returns a stable event name, e.g. "alertTriggered".
	Kind() string
}

type MonitoringStarted struct{ At time.Time }

type MonitoringStopped struct{ At time.Time }

// DataCollected is published once per provider after a successful fetch.
type DataCollected struct {
	Provider  string
	Timestamp time.Time
	Points    int
}

type DataCollectionError struct {
	Provider string
	Err      error
}

type AlertTriggered struct{ Alert model.CostAlert }

type AlertAcknowledged struct{ Alert model.CostAlert }

type AlertResolved struct{ Alert model.CostAlert }

type NotificationError struct {
	Channel model.NotificationChannel
	Alert   model.CostAlert
	Err     error
}

// MonitoringError carries a failure caught at the tick boundary.
type MonitoringError struct{ Err error }

type ThresholdAdded struct{ Threshold model.AlertThreshold }

type ThresholdRemoved struct{ Threshold model.AlertThreshold }

type ThresholdUpdated struct{ Threshold model.AlertThreshold }

func (MonitoringStarted) Kind() string   { return "monitoringStarted" }
func (MonitoringStopped) Kind() string   { return "monitoringStopped" }
func (DataCollected) Kind() string       { return "dataCollected" }
func (DataCollectionError) Kind() string { return "dataCollectionError" }
func (AlertTriggered) Kind() string      { return "alertTriggered" }
func (AlertAcknowledged) Kind() string   { return "alertAcknowledged" }
func (AlertResolved) Kind() string       { return "alertResolved" }
func (NotificationError) Kind() string   { return "notificationError" }
func (MonitoringError) Kind() string     { return "monitoringError" }
func (ThresholdAdded) Kind() string      { return "thresholdAdded" }
func (ThresholdRemoved) Kind() string    { return "thresholdRemoved" }
func (ThresholdUpdated) Kind() string    { return "thresholdUpdated" }

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

type bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func (b *bus) subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *bus) publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// LogEvents returns a handler that writes every event to logger.
func LogEvents(logger *slog.Logger) Handler {
	return func(e Event) {
		switch ev := e.(type) {
		case MonitoringStarted, MonitoringStopped:
			logger.Info(e.Kind())
		case DataCollected:
			logger.Debug(e.Kind(), "provider", ev.Provider, "points", ev.Points)
		case DataCollectionError:
			logger.Error(e.Kind(), "provider", ev.Provider, "error", ev.Err)
		case AlertTriggered:
			logger.Warn(e.Kind(),
				"alert", ev.Alert.ID,
				"threshold", ev.Alert.ThresholdID,
				"severity", ev.Alert.Severity,
				"current", ev.Alert.CurrentValue,
				"limit", ev.Alert.ThresholdValue,
			)
		case AlertAcknowledged:
			logger.Info(e.Kind(), "alert", ev.Alert.ID)
		case AlertResolved:
			logger.Info(e.Kind(), "alert", ev.Alert.ID)
		case NotificationError:
			logger.Error(e.Kind(), "channel", ev.Channel.ID, "alert", ev.Alert.ID, "error", ev.Err)
		case MonitoringError:
			logger.Error(e.Kind(), "error", ev.Err)
		case ThresholdAdded:
			logger.Info(e.Kind(), "threshold", ev.Threshold.ID)
		case ThresholdRemoved:
			logger.Info(e.Kind(), "threshold", ev.Threshold.ID)
		case ThresholdUpdated:
			logger.Info(e.Kind(), "threshold", ev.Threshold.ID)
		default:
			logger.Info(e.Kind())
		}
	}
}
