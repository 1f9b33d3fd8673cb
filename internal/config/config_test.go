package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/internal/config"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "config.yaml", "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Monitor.Interval)
	assert.Empty(t, cfg.Monitor.Schedule)
	assert.Equal(t, 30, cfg.Monitor.RetentionDays)
	assert.Equal(t, 30*time.Second, cfg.Monitor.ProviderTimeout)
	assert.Equal(t, 10*time.Second, cfg.Monitor.NotificationTimeout)
	assert.Equal(t, ":8090", cfg.Server.Listen)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Contains(t, cfg.Storage.Path, "ledger.db")
	assert.Empty(t, cfg.Providers)
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", `
monitor:
  interval: 1m
  retention_days: 7
providers:
  - name: aws-prod
    type: aws
    profile: prod
  - name: onprem
    type: static
    path: /etc/ccm/onprem.yaml
thresholds:
  - id: ec2-spike
    name: EC2 spike
    type: PERCENTAGE
    condition: GREATER_THAN
    value: 50
    time_window_minutes: 1440
    provider: aws-prod
    service: EC2
    severity: HIGH
    enabled: true
    cooldown_period_minutes: 60
channels:
  - id: ops-slack
    type: SLACK
    enabled: true
    config:
      webhook_url: https://hooks.slack.test/T000
      channel: "#cloud-costs"
    filters:
      min_severity: MEDIUM
      providers: [aws-prod]
logging:
  level: debug
`)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Monitor.Interval)
	assert.Equal(t, 7, cfg.Monitor.RetentionDays)
	assert.Equal(t, "debug", cfg.Logging.Level)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "aws-prod", cfg.Providers[0].Name)
	assert.Equal(t, config.ProviderAWS, cfg.Providers[0].Type)
	assert.Equal(t, "prod", cfg.Providers[0].Profile)

	require.Len(t, cfg.Thresholds, 1)
	th := cfg.Thresholds[0]
	assert.Equal(t, "ec2-spike", th.ID)
	assert.Equal(t, model.ThresholdPercentage, th.Type)
	assert.Equal(t, model.ConditionGreaterThan, th.Condition)
	assert.Equal(t, 50.0, th.Value)
	assert.Equal(t, 1440, th.TimeWindowMinutes)
	assert.Equal(t, model.SeverityHigh, th.Severity)
	assert.True(t, th.Enabled)
	assert.NoError(t, model.ValidateThreshold(th))

	require.Len(t, cfg.Channels, 1)
	ch := cfg.Channels[0]
	assert.Equal(t, model.ChannelSlack, ch.Type)
	assert.Equal(t, "https://hooks.slack.test/T000", ch.Config["webhook_url"])
	assert.Equal(t, model.SeverityMedium, ch.Filters.MinSeverity)
	assert.Equal(t, []string{"aws-prod"}, ch.Filters.Providers)
	assert.NoError(t, model.ValidateChannel(ch))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CCM_LOGGING_LEVEL", "error")
	t.Setenv("CCM_SERVER_LISTEN", ":7070")
	t.Setenv("CCM_MONITOR_INTERVAL", "90s")

	cfg, err := config.Load(writeFile(t, "config.yaml", "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, 90*time.Second, cfg.Monitor.Interval)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := config.Load(writeFile(t, "bad.yaml", "invalid: [yaml"))
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	costFile := writeFile(t, "costs.yaml", `
provider: onprem
totals_by_service:
  this_month:
    vmware: 120
  last_month:
    vmware: 100
`)
	cfg, err := config.Load(writeFile(t, "config.yaml", "{}\n"))
	require.NoError(t, err)

	cfg.Storage.Path = filepath.Join(t.TempDir(), "ledger.db")
	cfg.Monitor.Schedule = "*/10 * * * *"
	cfg.Providers = []config.ProviderConfig{
		{Name: "onprem", Type: config.ProviderStatic, Path: costFile},
		{Name: "gcp", Type: config.ProviderLedger},
		{Name: "azure", Type: config.ProviderLedger},
	}

	rt, err := config.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, rt.Close()) })

	require.Len(t, rt.Engine.Providers, 3)
	assert.Equal(t, "onprem", rt.Engine.Providers[0].Name())
	assert.Equal(t, "gcp", rt.Engine.Providers[1].Name())
	assert.IsType(t, &monitor.CronSchedule{}, rt.Engine.Schedule)
	assert.Equal(t, 30, rt.Engine.RetentionDays)

	e, err := monitor.New(rt.Engine)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Collect(context.Background()))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"unknown type", config.Config{Providers: []config.ProviderConfig{{Name: "x", Type: "oracle"}}}},
		{"static without path", config.Config{Providers: []config.ProviderConfig{{Name: "x", Type: config.ProviderStatic}}}},
		{"missing cost file", config.Config{Providers: []config.ProviderConfig{{Name: "x", Type: config.ProviderStatic, Path: "/nonexistent/costs.yaml"}}}},
		{"ledger without name", config.Config{Providers: []config.ProviderConfig{{Type: config.ProviderLedger}}}},
		{"bad cron", config.Config{Monitor: config.MonitorConfig{Schedule: "every tuesday"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Build(context.Background(), &tt.cfg, nil)
			assert.Error(t, err)
		})
	}
}
