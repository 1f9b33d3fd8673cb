package monitor_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
)

var baseTime = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeProvider struct {
	name      string
	breakdown *model.CostBreakdown
	err       error
	hang      bool
	stall     time.Duration
	panics    bool
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) GetCostBreakdown(ctx context.Context) (*model.CostBreakdown, error) {
	if p.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.stall > 0 {
		time.Sleep(p.stall)
	}
	if p.panics {
		panic("nil pointer in adapter")
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.breakdown, nil
}

func breakdown(thisMonth, lastMonth map[string]float64) *model.CostBreakdown {
	return &model.CostBreakdown{TotalsByService: model.ServiceTotals{
		ThisMonth: thisMonth,
		LastMonth: lastMonth,
		Last7Days: map[string]float64{},
		Yesterday: map[string]float64{},
	}}
}

// series builds points one minute apart ending at end.
func series(provider, service string, end time.Time, costs ...float64) []model.CostDataPoint {
	points := make([]model.CostDataPoint, len(costs))
	for i, c := range costs {
		points[i] = model.CostDataPoint{
			Timestamp: end.Add(-time.Duration(len(costs)-1-i) * time.Minute),
			Provider:  provider,
			Service:   service,
			Cost:      c,
		}
	}
	return points
}

func threshold(id string, typ model.ThresholdType, cond model.Condition, value float64) model.AlertThreshold {
	return model.AlertThreshold{
		ID:                    id,
		Name:                  id,
		Type:                  typ,
		Condition:             cond,
		Value:                 value,
		TimeWindowMinutes:     60,
		Severity:              model.SeverityHigh,
		Enabled:               true,
		CooldownPeriodMinutes: 60,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// eventLog records published events for assertions.
type eventLog struct {
	mu     sync.Mutex
	events []monitor.Event
}

func (l *eventLog) handle(e monitor.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) kinds() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Kind())
	}
	return out
}

func (l *eventLog) all() []monitor.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]monitor.Event(nil), l.events...)
}
