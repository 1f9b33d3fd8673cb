package monitor

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/providers"
	"golang.org/x/sync/errgroup"
)

const latencySamples = 100

// ProviderResult is the outcome of fetching one provider.
type ProviderResult struct {
	Provider string
	Points   []model.CostDataPoint
	// Rejected lists services whose cost was negative or not a finite
	// number. They produce no point.
	Rejected []string
	Err      error
}

// Collector fetches cost breakdowns from every provider and turns them into
// data points.
type Collector struct {
	providers []providers.Provider
	timeout   time.Duration
	clock     Clock

	mu      sync.Mutex
	latency [latencySamples]time.Duration
	count   int
	next    int
}

// NewCollector creates a collector. timeout bounds each provider fetch.
func NewCollector(provs []providers.Provider, timeout time.Duration, clock Clock) *Collector {
	if clock == nil {
		clock = systemClock{}
	}
	return &Collector{providers: provs, timeout: timeout, clock: clock}
}

// Collect queries all providers concurrently. Results come back in provider
// order; a failing provider only affects its own result.
func (c *Collector) Collect(ctx context.Context) []ProviderResult {
	start := time.Now()
	now := c.clock.Now()
	results := make([]ProviderResult, len(c.providers))

	var g errgroup.Group
	for i, p := range c.providers {
		g.Go(func() error {
			res := ProviderResult{Provider: p.Name()}
			breakdown, err := c.fetch(ctx, p)
			if err != nil {
				res.Err = err
			} else {
				res.Points, res.Rejected = toPoints(res.Provider, breakdown, now)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	c.record(time.Since(start))
	return results
}

type fetchResult struct {
	breakdown *model.CostBreakdown
	err       error
}

// fetch runs the adapter in its own goroutine so an adapter that ignores
// ctx still cannot hold the collection past the timeout.
func (c *Collector) fetch(ctx context.Context, p providers.Provider) (*model.CostBreakdown, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("provider %s panicked: %v", p.Name(), r)}
			}
		}()
		b, err := p.GetCostBreakdown(ctx)
		done <- fetchResult{breakdown: b, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("get cost breakdown: %w", res.err)
		}
		return res.breakdown, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("get cost breakdown: %w", ctx.Err())
	}
}

// toPoints emits one point per service billed this month, in service name
// order. Prior-period figures for the service ride along as metadata.
// Services with an invalid cost are returned as rejected instead.
func toPoints(provider string, b *model.CostBreakdown, now time.Time) (points []model.CostDataPoint, rejected []string) {
	if b == nil {
		return nil, nil
	}
	totals := b.TotalsByService

	services := make([]string, 0, len(totals.ThisMonth))
	for svc := range totals.ThisMonth {
		services = append(services, svc)
	}
	slices.Sort(services)

	points = make([]model.CostDataPoint, 0, len(services))
	for _, svc := range services {
		cost := totals.ThisMonth[svc]
		if !validCost(cost) {
			rejected = append(rejected, svc)
			continue
		}
		meta := make(map[string]any, 3)
		if v, ok := totals.LastMonth[svc]; ok && validCost(v) {
			meta[model.MetaLastMonth] = v
		}
		if v, ok := totals.Last7Days[svc]; ok && validCost(v) {
			meta[model.MetaLast7Days] = v
		}
		if v, ok := totals.Yesterday[svc]; ok && validCost(v) {
			meta[model.MetaYesterday] = v
		}
		points = append(points, model.CostDataPoint{
			Timestamp: now,
			Provider:  provider,
			Service:   svc,
			Cost:      cost,
			Metadata:  meta,
		})
	}
	return points, rejected
}

func validCost(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (c *Collector) record(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latency[c.next] = d
	c.next = (c.next + 1) % latencySamples
	if c.count < latencySamples {
		c.count++
	}
}

// AverageLatency returns the mean duration of the most recent collections.
func (c *Collector) AverageLatency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range c.latency[:c.count] {
		total += d
	}
	return total / time.Duration(c.count)
}

// Providers returns the number of configured providers.
func (c *Collector) Providers() int {
	return len(c.providers)
}
