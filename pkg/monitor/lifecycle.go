package monitor

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

var ErrAlertNotFound = errors.New("alert not found")

// Alerts owns the active alert set, the per-threshold cooldown clock and
// the resolved history.
type Alerts struct {
	mu        sync.Mutex
	active    map[string]model.CostAlert
	order     []string
	lastAlert map[string]time.Time
	history   []model.CostAlert
}

// NewAlerts creates an empty alert manager.
func NewAlerts() *Alerts {
	return &Alerts{
		active:    make(map[string]model.CostAlert),
		lastAlert: make(map[string]time.Time),
	}
}

// Trigger records a new alert for t unless the threshold is still cooling
// down. The cooldown check and insert happen under one lock.
func (a *Alerts) Trigger(t model.AlertThreshold, res Result, now time.Time) (model.CostAlert, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if last, ok := a.lastAlert[t.ID]; ok && now.Sub(last) < t.Cooldown() {
		return model.CostAlert{}, false
	}

	alert := model.CostAlert{
		ID:             uuid.New().String(),
		Timestamp:      now,
		ThresholdID:    t.ID,
		Provider:       res.Provider,
		Service:        res.Service,
		CurrentValue:   res.CurrentValue,
		ThresholdValue: t.Value,
		Severity:       t.Severity,
		Message:        alertMessage(t, res),
		Details:        res.Details,
	}
	a.active[alert.ID] = alert
	a.order = append(a.order, alert.ID)
	a.lastAlert[t.ID] = now
	return alert, true
}

// Acknowledge marks an active alert as acknowledged. It reports whether the
// flag changed; acknowledging twice is not an error.
func (a *Alerts) Acknowledge(id string) (model.CostAlert, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	alert, ok := a.active[id]
	if !ok {
		return model.CostAlert{}, false, fmt.Errorf("%w: %q", ErrAlertNotFound, id)
	}
	if alert.Acknowledged {
		return alert, false, nil
	}
	alert.Acknowledged = true
	a.active[id] = alert
	return alert, true, nil
}

// Resolve moves an active alert into history.
func (a *Alerts) Resolve(id string, now time.Time) (model.CostAlert, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	alert, ok := a.active[id]
	if !ok {
		return model.CostAlert{}, fmt.Errorf("%w: %q", ErrAlertNotFound, id)
	}
	resolved := now
	alert.ResolvedAt = &resolved

	delete(a.active, id)
	a.order = slices.DeleteFunc(a.order, func(s string) bool { return s == id })
	a.history = append(a.history, alert)
	return alert, nil
}

// Active returns the unresolved alerts in trigger order.
func (a *Alerts) Active() []model.CostAlert {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]model.CostAlert, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.active[id])
	}
	return out
}

// History returns resolved alerts in resolution order.
func (a *Alerts) History() []model.CostAlert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.history)
}

// ActiveCount returns the number of unresolved alerts.
func (a *Alerts) ActiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.active)
}

func alertMessage(t model.AlertThreshold, res Result) string {
	target := res.Provider
	if target == "" {
		target = "all providers"
	}
	if res.Service != "" {
		target += "/" + res.Service
	}

	switch t.Type {
	case model.ThresholdPercentage:
		return fmt.Sprintf("%s: %s cost changed %.1f%% (threshold %.1f%%)", t.Name, target, res.CurrentValue, t.Value)
	case model.ThresholdAnomaly:
		return fmt.Sprintf("%s: %s cost anomaly, z-score %.2f above %.2f", t.Name, target, res.Details["z_score"], t.Value)
	case model.ThresholdTrend:
		return fmt.Sprintf("%s: %s cost trending %.1f%% per sample (threshold %.1f%%)", t.Name, target, res.CurrentValue, t.Value)
	case model.ThresholdBudgetForecast:
		return fmt.Sprintf("%s: %s projected month-end spend $%.2f against budget $%.2f", t.Name, target, res.CurrentValue, t.Value)
	default:
		return fmt.Sprintf("%s: %s cost $%.2f against threshold $%.2f", t.Name, target, res.CurrentValue, t.Value)
	}
}
