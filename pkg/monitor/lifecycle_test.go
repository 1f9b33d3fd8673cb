package monitor_test

import (
	"testing"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breach() monitor.Result {
	return monitor.Result{
		Triggered:    true,
		Provider:     "aws",
		Service:      "EC2",
		CurrentValue: 150,
		Details:      map[string]any{"type": "ABSOLUTE"},
	}
}

func TestAlerts_Cooldown(t *testing.T) {
	th := threshold("abs", model.ThresholdAbsolute, model.ConditionGreaterThan, 100)

	t.Run("within cooldown", func(t *testing.T) {
		a := monitor.NewAlerts()
		_, ok := a.Trigger(th, breach(), baseTime)
		require.True(t, ok)
		_, ok = a.Trigger(th, breach(), baseTime.Add(5*time.Minute))
		assert.False(t, ok)
		assert.Len(t, a.Active(), 1)
	})

	t.Run("after cooldown", func(t *testing.T) {
		a := monitor.NewAlerts()
		_, ok := a.Trigger(th, breach(), baseTime)
		require.True(t, ok)
		_, ok = a.Trigger(th, breach(), baseTime.Add(61*time.Minute))
		assert.True(t, ok)
		assert.Len(t, a.Active(), 2)
	})

	t.Run("independent per threshold", func(t *testing.T) {
		a := monitor.NewAlerts()
		other := th
		other.ID = "other"
		_, ok := a.Trigger(th, breach(), baseTime)
		require.True(t, ok)
		_, ok = a.Trigger(other, breach(), baseTime)
		assert.True(t, ok)
	})
}

func TestAlerts_TriggerSnapshot(t *testing.T) {
	th := threshold("abs", model.ThresholdAbsolute, model.ConditionGreaterThan, 100)
	a := monitor.NewAlerts()

	alert, ok := a.Trigger(th, breach(), baseTime)
	require.True(t, ok)
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "abs", alert.ThresholdID)
	assert.Equal(t, 150.0, alert.CurrentValue)
	assert.Equal(t, 100.0, alert.ThresholdValue)
	assert.Equal(t, model.SeverityHigh, alert.Severity)
	assert.Equal(t, baseTime, alert.Timestamp)
	assert.Contains(t, alert.Message, "aws/EC2")
	assert.False(t, alert.Acknowledged)
	assert.Nil(t, alert.ResolvedAt)
}

func TestAlerts_AcknowledgeIdempotent(t *testing.T) {
	th := threshold("abs", model.ThresholdAbsolute, model.ConditionGreaterThan, 100)
	a := monitor.NewAlerts()
	alert, _ := a.Trigger(th, breach(), baseTime)

	got, changed, err := a.Acknowledge(alert.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, got.Acknowledged)

	got, changed, err = a.Acknowledge(alert.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, got.Acknowledged)

	active := a.Active()
	require.Len(t, active, 1)
	assert.True(t, active[0].Acknowledged)
}

func TestAlerts_Resolve(t *testing.T) {
	th := threshold("abs", model.ThresholdAbsolute, model.ConditionGreaterThan, 100)
	a := monitor.NewAlerts()
	alert, _ := a.Trigger(th, breach(), baseTime)
	_, _, err := a.Acknowledge(alert.ID)
	require.NoError(t, err)

	resolvedAt := baseTime.Add(time.Hour)
	resolved, err := a.Resolve(alert.ID, resolvedAt)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, resolvedAt, *resolved.ResolvedAt)
	assert.True(t, resolved.Acknowledged)

	assert.Empty(t, a.Active())
	history := a.History()
	require.Len(t, history, 1)
	assert.Equal(t, alert.ID, history[0].ID)

	_, err = a.Resolve(alert.ID, resolvedAt)
	assert.ErrorIs(t, err, monitor.ErrAlertNotFound)
	assert.Len(t, a.History(), 1)
}

func TestAlerts_NotFound(t *testing.T) {
	a := monitor.NewAlerts()

	_, _, err := a.Acknowledge("missing")
	assert.ErrorIs(t, err, monitor.ErrAlertNotFound)

	_, err = a.Resolve("missing", baseTime)
	assert.ErrorIs(t, err, monitor.ErrAlertNotFound)
}
