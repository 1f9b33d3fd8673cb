package storage

import (
	"context"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// Storage defines the cost ledger read by the ledger provider.
type Storage interface {
	// RecordCost persists a single cost record.
	RecordCost(ctx context.Context, record *model.CostRecord) error

	// QueryCosts retrieves cost records matching the given filter.
	QueryCosts(ctx context.Context, filter model.CostFilter) ([]model.CostRecord, error)

	// TotalsByService sums cost per service for records matching the filter.
	TotalsByService(ctx context.Context, filter model.CostFilter) (map[string]float64, error)

	// Close releases resources.
	Close() error
}
