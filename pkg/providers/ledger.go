package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/storage"
)

// Ledger reads cost breakdowns for one provider name out of a local cost
// ledger. Records are written by `ccm ledger record` or by external billing
// exports.
type Ledger struct {
	name  string
	store storage.Storage
	now   func() time.Time
}

// NewLedger creates a ledger-backed provider. A nil now uses time.Now.
func NewLedger(name string, store storage.Storage, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{name: name, store: store, now: now}
}

func (l *Ledger) Name() string { return l.name }

func (l *Ledger) GetCostBreakdown(ctx context.Context) (*model.CostBreakdown, error) {
	now := l.now()
	totals := emptyTotals()

	periods := []struct {
		period model.Period
		dst    map[string]float64
	}{
		{model.PeriodThisMonth, totals.ThisMonth},
		{model.PeriodLastMonth, totals.LastMonth},
		{model.PeriodLast7Days, totals.Last7Days},
		{model.PeriodYesterday, totals.Yesterday},
	}

	for _, p := range periods {
		start, end := model.PeriodBounds(p.period, now)
		byService, err := l.store.TotalsByService(ctx, model.CostFilter{
			Provider:  l.name,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return nil, fmt.Errorf("ledger %s %s: %w", l.name, p.period, err)
		}
		copyTotals(p.dst, byService)
	}

	return &model.CostBreakdown{TotalsByService: totals}, nil
}
