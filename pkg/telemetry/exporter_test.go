package telemetry_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct{ metrics model.MonitoringMetrics }

func (s staticSource) GetMetrics() model.MonitoringMetrics { return s.metrics }

func TestExporter_Handle(t *testing.T) {
	reg := prometheus.NewRegistry()
	exp := telemetry.NewExporter(reg, nil)

	exp.Handle(monitor.DataCollected{Provider: "aws", Points: 3})
	exp.Handle(monitor.DataCollected{Provider: "aws", Points: 2})
	exp.Handle(monitor.DataCollectionError{Provider: "gcp", Err: errors.New("boom")})
	exp.Handle(monitor.AlertTriggered{Alert: model.CostAlert{
		Severity: model.SeverityHigh,
		Details:  map[string]any{"type": "ANOMALY"},
	}})
	exp.Handle(monitor.NotificationError{Channel: model.NotificationChannel{Type: model.ChannelSlack}})
	exp.Handle(monitor.MonitoringError{Err: errors.New("tick failed")})
	exp.Handle(monitor.ThresholdAdded{})

	expected := `
# HELP ccm_data_points_total Cost data points collected.
# TYPE ccm_data_points_total counter
ccm_data_points_total{provider="aws"} 5
# HELP ccm_provider_fetches_total Provider fetches that returned data.
# TYPE ccm_provider_fetches_total counter
ccm_provider_fetches_total{provider="aws"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ccm_data_points_total", "ccm_provider_fetches_total"))

	count, err := testutil.GatherAndCount(reg,
		"ccm_collections_total",
		"ccm_collection_errors_total",
		"ccm_alerts_triggered_total",
		"ccm_notification_errors_total",
		"ccm_monitoring_errors_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestExporter_Gauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	telemetry.NewExporter(reg, staticSource{metrics: model.MonitoringMetrics{ActiveAlerts: 4, HealthScore: 80, CollectionsRun: 7}})

	expected := `
# HELP ccm_collections_total Collection rounds run across all providers.
# TYPE ccm_collections_total counter
ccm_collections_total 7
# HELP ccm_active_alerts Unresolved alerts.
# TYPE ccm_active_alerts gauge
ccm_active_alerts 4
# HELP ccm_health_score Engine health score from 0 to 100.
# TYPE ccm_health_score gauge
ccm_health_score 80
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ccm_collections_total", "ccm_active_alerts", "ccm_health_score"))
}

func TestExporter_Handler(t *testing.T) {
	exp := telemetry.NewExporter(nil, nil)
	exp.Handle(monitor.DataCollected{Provider: "aws", Points: 1})

	srv := httptest.NewServer(exp.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ccm_data_points_total{provider="aws"} 1`)
}
