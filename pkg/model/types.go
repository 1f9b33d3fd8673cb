package model

import "time"

// CostDataPoint is a single cost sample collected from a provider.
type CostDataPoint struct {
	Timestamp     time.Time      `json:"timestamp"`
	Provider      string         `json:"provider"`
	Service       string         `json:"service"`
	Cost          float64        `json:"cost"`
	ResourceCount int            `json:"resource_count"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Metadata keys written by the collector alongside each sample.
const (
	MetaLastMonth = "last_month"
	MetaLast7Days = "last_7_days"
	MetaYesterday = "yesterday"
)

// Baseline returns the prior-period cost the provider reported for this
// sample's service, if any.
func (p CostDataPoint) Baseline() (float64, bool) {
	v, ok := p.Metadata[MetaLastMonth]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// CostBreakdown is what a provider adapter returns per collection.
type CostBreakdown struct {
	TotalsByService ServiceTotals `json:"totals_by_service" yaml:"totals_by_service"`
}

// ServiceTotals holds per-service totals for the standard reporting periods.
type ServiceTotals struct {
	ThisMonth map[string]float64 `json:"this_month" yaml:"this_month"`
	LastMonth map[string]float64 `json:"last_month" yaml:"last_month"`
	Last7Days map[string]float64 `json:"last_7_days" yaml:"last_7_days"`
	Yesterday map[string]float64 `json:"yesterday" yaml:"yesterday"`
}

// ThresholdType selects the evaluation algorithm.
type ThresholdType string

const (
	ThresholdAbsolute       ThresholdType = "ABSOLUTE"
	ThresholdPercentage     ThresholdType = "PERCENTAGE"
	ThresholdAnomaly        ThresholdType = "ANOMALY"
	ThresholdTrend          ThresholdType = "TREND"
	ThresholdBudgetForecast ThresholdType = "BUDGET_FORECAST"
)

// Condition is the comparison applied to an evaluated value.
type Condition string

const (
	ConditionGreaterThan Condition = "GREATER_THAN"
	ConditionLessThan    Condition = "LESS_THAN"
	ConditionEquals      Condition = "EQUALS"
	ConditionDeviation   Condition = "DEVIATION"
)

// Severity orders alerts for channel filtering.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the ordinal of s (LOW=1 .. CRITICAL=4), 0 when unknown.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// AlertThreshold is a configured rule evaluated on every tick.
type AlertThreshold struct {
	ID                    string        `json:"id" mapstructure:"id" validate:"required"`
	Name                  string        `json:"name" mapstructure:"name" validate:"required"`
	Type                  ThresholdType `json:"type" mapstructure:"type" validate:"required,oneof=ABSOLUTE PERCENTAGE ANOMALY TREND BUDGET_FORECAST"`
	Condition             Condition     `json:"condition" mapstructure:"condition" validate:"required,oneof=GREATER_THAN LESS_THAN EQUALS DEVIATION"`
	Value                 float64       `json:"value" mapstructure:"value" validate:"gt=0"`
	TimeWindowMinutes     int           `json:"time_window_minutes" mapstructure:"time_window_minutes" validate:"gt=0"`
	Provider              string        `json:"provider,omitempty" mapstructure:"provider"`
	Service               string        `json:"service,omitempty" mapstructure:"service"`
	Severity              Severity      `json:"severity" mapstructure:"severity" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Enabled               bool          `json:"enabled" mapstructure:"enabled"`
	CooldownPeriodMinutes int           `json:"cooldown_period_minutes" mapstructure:"cooldown_period_minutes" validate:"gte=1"`
	Description           string        `json:"description,omitempty" mapstructure:"description"`
}

// TimeWindow returns the evaluation window as a duration.
func (t AlertThreshold) TimeWindow() time.Duration {
	return time.Duration(t.TimeWindowMinutes) * time.Minute
}

// Cooldown returns the cooldown period as a duration.
func (t AlertThreshold) Cooldown() time.Duration {
	return time.Duration(t.CooldownPeriodMinutes) * time.Minute
}

// ThresholdPatch carries the fields to change on an existing threshold.
// Nil fields are left untouched. The threshold id cannot be patched.
type ThresholdPatch struct {
	Name                  *string        `json:"name,omitempty"`
	Type                  *ThresholdType `json:"type,omitempty"`
	Condition             *Condition     `json:"condition,omitempty"`
	Value                 *float64       `json:"value,omitempty"`
	TimeWindowMinutes     *int           `json:"time_window_minutes,omitempty"`
	Provider              *string        `json:"provider,omitempty"`
	Service               *string        `json:"service,omitempty"`
	Severity              *Severity      `json:"severity,omitempty"`
	Enabled               *bool          `json:"enabled,omitempty"`
	CooldownPeriodMinutes *int           `json:"cooldown_period_minutes,omitempty"`
	Description           *string        `json:"description,omitempty"`
}

// Apply returns a copy of t with the patch applied.
func (p ThresholdPatch) Apply(t AlertThreshold) AlertThreshold {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Condition != nil {
		t.Condition = *p.Condition
	}
	if p.Value != nil {
		t.Value = *p.Value
	}
	if p.TimeWindowMinutes != nil {
		t.TimeWindowMinutes = *p.TimeWindowMinutes
	}
	if p.Provider != nil {
		t.Provider = *p.Provider
	}
	if p.Service != nil {
		t.Service = *p.Service
	}
	if p.Severity != nil {
		t.Severity = *p.Severity
	}
	if p.Enabled != nil {
		t.Enabled = *p.Enabled
	}
	if p.CooldownPeriodMinutes != nil {
		t.CooldownPeriodMinutes = *p.CooldownPeriodMinutes
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	return t
}

// CostAlert is raised when a threshold is breached outside its cooldown.
type CostAlert struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	ThresholdID    string         `json:"threshold_id"`
	Provider       string         `json:"provider"`
	Service        string         `json:"service,omitempty"`
	CurrentValue   float64        `json:"current_value"`
	ThresholdValue float64        `json:"threshold_value"`
	Severity       Severity       `json:"severity"`
	Message        string         `json:"message"`
	Details        map[string]any `json:"details,omitempty"`
	Acknowledged   bool           `json:"acknowledged"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
}

// ChannelType identifies a notification transport.
type ChannelType string

const (
	ChannelEmail   ChannelType = "EMAIL"
	ChannelSlack   ChannelType = "SLACK"
	ChannelWebhook ChannelType = "WEBHOOK"
	ChannelSMS     ChannelType = "SMS"
	ChannelTeams   ChannelType = "TEAMS"
	ChannelDiscord ChannelType = "DISCORD"
)

// ChannelFilters restricts which alerts a channel receives.
type ChannelFilters struct {
	MinSeverity Severity `json:"min_severity" mapstructure:"min_severity" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Providers   []string `json:"providers,omitempty" mapstructure:"providers"`
	Services    []string `json:"services,omitempty" mapstructure:"services"`
}

// NotificationChannel is a configured notification destination.
type NotificationChannel struct {
	ID      string         `json:"id" mapstructure:"id" validate:"required"`
	Type    ChannelType    `json:"type" mapstructure:"type" validate:"required,oneof=EMAIL SLACK WEBHOOK SMS TEAMS DISCORD"`
	Config  map[string]any `json:"config" mapstructure:"config"`
	Enabled bool           `json:"enabled" mapstructure:"enabled"`
	Filters ChannelFilters `json:"filters" mapstructure:"filters"`
}

// CostDriver is a provider/service pair ranked by day-over-day change.
type CostDriver struct {
	Provider         string  `json:"provider"`
	Service          string  `json:"service"`
	Cost             float64 `json:"cost"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"change_percentage"`
}

// MonitoringMetrics is a point-in-time summary derived from the store.
type MonitoringMetrics struct {
	TotalCostToday            float64       `json:"total_cost_today"`
	TotalCostYesterday        float64       `json:"total_cost_yesterday"`
	CostChangeToday           float64       `json:"cost_change_today"`
	CostChangePercentage      float64       `json:"cost_change_percentage"`
	TopCostDrivers            []CostDriver  `json:"top_cost_drivers"`
	ActiveAlerts              int           `json:"active_alerts"`
	HealthScore               float64       `json:"health_score"`
	DataPoints                int           `json:"data_points"`
	CollectionsRun            int64         `json:"collections_run"`
	DataPointsCollected       int64         `json:"data_points_collected"`
	AlertsTriggered           int64         `json:"alerts_triggered"`
	NotificationsSent         int64         `json:"notifications_sent"`
	NotificationErrors        int64         `json:"notification_errors"`
	AverageCollectionDuration time.Duration `json:"average_collection_duration"`
	LastCollection            time.Time     `json:"last_collection,omitempty"`
	LastUpdated               time.Time     `json:"last_updated"`
}

// HealthState is the coarse engine health bucket.
type HealthState string

const (
	HealthHealthy  HealthState = "healthy"
	HealthWarning  HealthState = "warning"
	HealthCritical HealthState = "critical"
)

// HealthStatus summarizes engine health for operators.
type HealthStatus struct {
	Status         HealthState `json:"status"`
	Running        bool        `json:"running"`
	ActiveAlerts   int         `json:"active_alerts"`
	HealthScore    float64     `json:"health_score"`
	LastCollection time.Time   `json:"last_collection,omitempty"`
	Providers      int         `json:"providers"`
	Thresholds     int         `json:"thresholds"`
	CheckedAt      time.Time   `json:"checked_at"`
}

// CostRecord is a single line item in a local cost ledger.
type CostRecord struct {
	ID            string    `json:"id" db:"id"`
	Provider      string    `json:"provider" db:"provider"`
	Service       string    `json:"service" db:"service"`
	CostUSD       float64   `json:"cost_usd" db:"cost_usd"`
	ResourceCount int       `json:"resource_count" db:"resource_count"`
	Metadata      string    `json:"metadata,omitempty" db:"metadata"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
}

// CostFilter controls which ledger records are included in a query.
type CostFilter struct {
	Provider  string    `json:"provider,omitempty"`
	Service   string    `json:"service,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}
