package providers

import (
	"context"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// Provider is the adapter interface for a cloud account's cost source.
type Provider interface {
	// Name returns the provider identifier (e.g., "aws", "azure-prod").
	Name() string

	// GetCostBreakdown returns per-service totals for the standard periods.
	// Implementations must be safe for concurrent use.
	GetCostBreakdown(ctx context.Context) (*model.CostBreakdown, error)
}

func emptyTotals() model.ServiceTotals {
	return model.ServiceTotals{
		ThisMonth: map[string]float64{},
		LastMonth: map[string]float64{},
		Last7Days: map[string]float64{},
		Yesterday: map[string]float64{},
	}
}
