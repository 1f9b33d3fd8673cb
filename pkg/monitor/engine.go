package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/alerts"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/providers"
)

// ErrAlreadyRunning is returned by Start on a running engine.
var ErrAlreadyRunning = errors.New("monitoring already running")

const (
	defaultRetentionDays       = 30
	defaultProviderTimeout     = 30 * time.Second
	defaultNotificationTimeout = 10 * time.Second
)

// Config is everything the engine needs. It is validated once by New.
type Config struct {
	Providers  []providers.Provider
	Thresholds []model.AlertThreshold
	Channels   []model.NotificationChannel

	// Interval between ticks. Ignored when Schedule is set.
	Interval time.Duration
	Schedule Schedule

	RetentionDays       int
	ProviderTimeout     time.Duration
	NotificationTimeout time.Duration

	// Senders defaults to alerts.DefaultSenders.
	Senders *alerts.SenderRegistry
	Clock   Clock
	Logger  *slog.Logger
}

// Engine runs the collect, evaluate, dispatch and prune loop.
type Engine struct {
	store      *Store
	thresholds *Thresholds
	alerts     *Alerts
	collector  *Collector
	dispatcher *alerts.Dispatcher
	events     bus

	channels  []model.NotificationChannel
	schedule  Schedule
	retention time.Duration
	clock     Clock
	logger    *slog.Logger

	// mu serializes Start and Stop.
	mu      sync.Mutex
	running atomic.Bool
	baseCtx context.Context

	// tickMu serializes ticks so cooldown checks never race.
	tickMu sync.Mutex

	collections        atomic.Int64
	pointsCollected    atomic.Int64
	alertsTriggered    atomic.Int64
	notificationsSent  atomic.Int64
	notificationErrors atomic.Int64
	lastCollection     atomic.Pointer[time.Time]
}

// New validates cfg and builds a stopped engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Schedule == nil && cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", model.ErrInvalid)
	}
	if cfg.RetentionDays < 0 {
		return nil, fmt.Errorf("%w: retention days must not be negative", model.ErrInvalid)
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = defaultRetentionDays
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	if cfg.NotificationTimeout <= 0 {
		cfg.NotificationTimeout = defaultNotificationTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Schedule == nil {
		cfg.Schedule = NewIntervalSchedule(cfg.Interval)
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for i, p := range cfg.Providers {
		if p == nil {
			return nil, fmt.Errorf("%w: provider %d is nil", model.ErrInvalid, i)
		}
		if seen[p.Name()] {
			return nil, fmt.Errorf("%w: duplicate provider %q", model.ErrInvalid, p.Name())
		}
		seen[p.Name()] = true
	}

	thresholds := NewThresholds()
	for _, t := range cfg.Thresholds {
		if err := thresholds.Add(t); err != nil {
			return nil, fmt.Errorf("add threshold: %w", err)
		}
	}

	channelIDs := make(map[string]bool, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		if err := model.ValidateChannel(ch); err != nil {
			return nil, err
		}
		if channelIDs[ch.ID] {
			return nil, fmt.Errorf("%w: duplicate channel %q", model.ErrInvalid, ch.ID)
		}
		channelIDs[ch.ID] = true
	}

	e := &Engine{
		store:      NewStore(),
		thresholds: thresholds,
		alerts:     NewAlerts(),
		collector:  NewCollector(cfg.Providers, cfg.ProviderTimeout, cfg.Clock),
		dispatcher: alerts.NewDispatcher(cfg.Senders, cfg.NotificationTimeout, cfg.Logger),
		channels:   cfg.Channels,
		schedule:   cfg.Schedule,
		retention:  time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
	}
	e.events.subscribe(LogEvents(cfg.Logger))
	return e, nil
}

// Subscribe registers h for every event published after the call.
func (e *Engine) Subscribe(h Handler) {
	e.events.subscribe(h)
}

// Start collects once immediately and then starts the schedule. A failing
// provider does not fail Start.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running.Load() {
		return ErrAlreadyRunning
	}
	if e.thresholds.Len() == 0 {
		e.logger.Warn("monitoring started with no thresholds")
	}

	e.baseCtx = context.WithoutCancel(ctx)
	e.Collect(ctx)

	if err := e.schedule.Start(e.tick); err != nil {
		return fmt.Errorf("start schedule: %w", err)
	}
	e.running.Store(true)
	e.events.publish(MonitoringStarted{At: e.clock.Now()})
	return nil
}

// Stop cancels the schedule and waits for an in-flight tick. Stopping a
// stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running.Load() {
		return
	}
	e.schedule.Stop()
	e.running.Store(false)
	e.events.publish(MonitoringStopped{At: e.clock.Now()})
}

// Running reports whether the schedule is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// tick is the schedule entry point. Failures and panics stay inside the
// tick so the next one still fires.
func (e *Engine) tick() {
	defer func() {
		if r := recover(); r != nil {
			e.events.publish(MonitoringError{Err: fmt.Errorf("tick panicked: %v", r)})
		}
	}()

	// baseCtx is written before the schedule starts and not again until
	// it has stopped.
	if err := e.RunTick(e.baseCtx); err != nil {
		e.events.publish(MonitoringError{Err: err})
	}
}

// RunTick runs one full cycle: collect, evaluate every enabled threshold,
// dispatch new alerts and prune expired data.
func (e *Engine) RunTick(ctx context.Context) error {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	e.Collect(ctx)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run tick: %w", err)
	}

	now := e.clock.Now()
	snapshot := e.store.Snapshot()
	for _, t := range e.thresholds.List() {
		if !t.Enabled {
			continue
		}
		res := Evaluate(t, snapshot, now)
		if !res.Triggered {
			continue
		}
		alert, ok := e.alerts.Trigger(t, res, now)
		if !ok {
			e.logger.Debug("alert suppressed by cooldown", "threshold", t.ID)
			continue
		}
		e.alertsTriggered.Add(1)
		e.events.publish(AlertTriggered{Alert: alert})
		e.notify(ctx, alert)
	}

	if removed := e.store.Prune(now.Add(-e.retention)); removed > 0 {
		e.logger.Debug("pruned data points", "removed", removed)
	}
	return nil
}

// Collect fetches every provider once and appends the resulting points. It
// returns the number of points added.
func (e *Engine) Collect(ctx context.Context) int {
	results := e.collector.Collect(ctx)

	var added int
	for _, r := range results {
		if r.Err != nil {
			e.events.publish(DataCollectionError{Provider: r.Provider, Err: r.Err})
			continue
		}
		if len(r.Rejected) > 0 {
			e.logger.Warn("skipped services with invalid cost",
				"provider", r.Provider,
				"services", r.Rejected,
			)
		}
		e.store.Append(r.Points...)
		added += len(r.Points)
		ts := e.clock.Now()
		if len(r.Points) > 0 {
			ts = r.Points[0].Timestamp
		}
		e.events.publish(DataCollected{Provider: r.Provider, Timestamp: ts, Points: len(r.Points)})
	}

	now := e.clock.Now()
	e.lastCollection.Store(&now)
	e.collections.Add(1)
	e.pointsCollected.Add(int64(added))
	return added
}

func (e *Engine) notify(ctx context.Context, alert model.CostAlert) {
	result := e.dispatcher.Dispatch(ctx, alert, e.channels)
	e.notificationsSent.Add(int64(result.Sent))
	for _, f := range result.Failures {
		e.notificationErrors.Add(1)
		e.events.publish(NotificationError{Channel: f.Channel, Alert: alert, Err: f.Err})
	}
}

// AddThreshold validates and registers a threshold.
func (e *Engine) AddThreshold(t model.AlertThreshold) error {
	if err := e.thresholds.Add(t); err != nil {
		return err
	}
	e.events.publish(ThresholdAdded{Threshold: t})
	return nil
}

// RemoveThreshold deletes a threshold. Alerts it already raised stay active.
func (e *Engine) RemoveThreshold(id string) error {
	t, err := e.thresholds.Remove(id)
	if err != nil {
		return err
	}
	e.events.publish(ThresholdRemoved{Threshold: t})
	return nil
}

// UpdateThreshold patches a threshold in place.
func (e *Engine) UpdateThreshold(id string, patch model.ThresholdPatch) (model.AlertThreshold, error) {
	t, err := e.thresholds.Update(id, patch)
	if err != nil {
		return model.AlertThreshold{}, err
	}
	e.events.publish(ThresholdUpdated{Threshold: t})
	return t, nil
}

// AcknowledgeAlert flags an active alert as seen.
func (e *Engine) AcknowledgeAlert(id string) (model.CostAlert, error) {
	alert, changed, err := e.alerts.Acknowledge(id)
	if err != nil {
		return model.CostAlert{}, err
	}
	if changed {
		e.events.publish(AlertAcknowledged{Alert: alert})
	}
	return alert, nil
}

// ResolveAlert moves an active alert into history.
func (e *Engine) ResolveAlert(id string) (model.CostAlert, error) {
	alert, err := e.alerts.Resolve(id, e.clock.Now())
	if err != nil {
		return model.CostAlert{}, err
	}
	e.events.publish(AlertResolved{Alert: alert})
	return alert, nil
}

func (e *Engine) GetActiveAlerts() []model.CostAlert {
	return e.alerts.Active()
}

func (e *Engine) GetAlertHistory() []model.CostAlert {
	return e.alerts.History()
}

func (e *Engine) GetThresholds() []model.AlertThreshold {
	return e.thresholds.List()
}

// GetMetrics summarizes stored costs and operational counters.
func (e *Engine) GetMetrics() model.MonitoringMetrics {
	m := Summarize(e.store.Snapshot(), e.clock.Now(), e.alerts.ActiveCount())
	m.CollectionsRun = e.collections.Load()
	m.DataPointsCollected = e.pointsCollected.Load()
	m.AlertsTriggered = e.alertsTriggered.Load()
	m.NotificationsSent = e.notificationsSent.Load()
	m.NotificationErrors = e.notificationErrors.Load()
	m.AverageCollectionDuration = e.collector.AverageLatency()
	if last := e.lastCollection.Load(); last != nil {
		m.LastCollection = *last
	}
	return m
}

// GetHealthStatus reports the coarse engine health.
func (e *Engine) GetHealthStatus() model.HealthStatus {
	m := e.GetMetrics()
	return model.HealthStatus{
		Status:         HealthState(m.ActiveAlerts),
		Running:        e.Running(),
		ActiveAlerts:   m.ActiveAlerts,
		HealthScore:    m.HealthScore,
		LastCollection: m.LastCollection,
		Providers:      e.collector.Providers(),
		Thresholds:     e.thresholds.Len(),
		CheckedAt:      e.clock.Now(),
	}
}
