package alerts_test

import (
	"testing"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/alerts"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	base := model.NotificationChannel{ID: "c", Type: model.ChannelSlack, Enabled: true}

	tests := []struct {
		name    string
		filters model.ChannelFilters
		enabled bool
		alert   model.CostAlert
		want    bool
	}{
		{"no filters", model.ChannelFilters{}, true, testAlert(model.SeverityLow), true},
		{"disabled", model.ChannelFilters{}, false, testAlert(model.SeverityCritical), false},
		{"below min severity", model.ChannelFilters{MinSeverity: model.SeverityHigh}, true, testAlert(model.SeverityMedium), false},
		{"at min severity", model.ChannelFilters{MinSeverity: model.SeverityHigh}, true, testAlert(model.SeverityHigh), true},
		{"above min severity", model.ChannelFilters{MinSeverity: model.SeverityHigh}, true, testAlert(model.SeverityCritical), true},
		{"provider match", model.ChannelFilters{Providers: []string{"gcp", "aws"}}, true, testAlert(model.SeverityLow), true},
		{"provider miss", model.ChannelFilters{Providers: []string{"gcp"}}, true, testAlert(model.SeverityLow), false},
		{"service match", model.ChannelFilters{Services: []string{"EC2"}}, true, testAlert(model.SeverityLow), true},
		{"service miss", model.ChannelFilters{Services: []string{"S3"}}, true, testAlert(model.SeverityLow), false},
		{"alert without service", model.ChannelFilters{Services: []string{"S3"}}, true, func() model.CostAlert {
			a := testAlert(model.SeverityLow)
			a.Service = ""
			return a
		}(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := base
			ch.Enabled = tt.enabled
			ch.Filters = tt.filters
			assert.Equal(t, tt.want, alerts.Matches(ch, tt.alert))
		})
	}
}
