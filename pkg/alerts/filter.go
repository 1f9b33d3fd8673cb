package alerts

import (
	"slices"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// Matches reports whether a channel should receive an alert: it must be
// enabled, the alert must meet the minimum severity, and the provider and
// service filters (when set) must include the alert's values. An alert
// without a service passes the service filter.
func Matches(ch model.NotificationChannel, alert model.CostAlert) bool {
	if !ch.Enabled {
		return false
	}
	if alert.Severity.Rank() < ch.Filters.MinSeverity.Rank() {
		return false
	}
	if len(ch.Filters.Providers) > 0 && !slices.Contains(ch.Filters.Providers, alert.Provider) {
		return false
	}
	if len(ch.Filters.Services) > 0 && alert.Service != "" && !slices.Contains(ch.Filters.Services, alert.Service) {
		return false
	}
	return true
}
