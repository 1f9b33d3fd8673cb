package monitor_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Collect(t *testing.T) {
	aws := &fakeProvider{name: "aws", breakdown: &model.CostBreakdown{TotalsByService: model.ServiceTotals{
		ThisMonth: map[string]float64{"S3": 20, "EC2": 100},
		LastMonth: map[string]float64{"EC2": 50},
		Last7Days: map[string]float64{"EC2": 30, "S3": 5},
		Yesterday: map[string]float64{"EC2": 4},
	}}}
	broken := &fakeProvider{name: "gcp", err: errors.New("credentials expired")}

	c := monitor.NewCollector([]providers.Provider{broken, aws}, time.Second, newFakeClock(baseTime))
	results := c.Collect(context.Background())

	require.Len(t, results, 2)
	assert.Equal(t, "gcp", results[0].Provider)
	assert.ErrorContains(t, results[0].Err, "credentials expired")
	assert.Empty(t, results[0].Points)

	assert.Equal(t, "aws", results[1].Provider)
	require.NoError(t, results[1].Err)
	require.Len(t, results[1].Points, 2)

	ec2 := results[1].Points[0]
	assert.Equal(t, "EC2", ec2.Service)
	assert.Equal(t, 100.0, ec2.Cost)
	assert.Equal(t, baseTime, ec2.Timestamp)
	assert.Equal(t, 50.0, ec2.Metadata[model.MetaLastMonth])
	assert.Equal(t, 30.0, ec2.Metadata[model.MetaLast7Days])
	assert.Equal(t, 4.0, ec2.Metadata[model.MetaYesterday])

	s3 := results[1].Points[1]
	assert.Equal(t, "S3", s3.Service)
	assert.NotContains(t, s3.Metadata, model.MetaLastMonth)
}

func TestCollector_TimeoutIsolated(t *testing.T) {
	hung := &fakeProvider{name: "hung", hang: true}
	ok := &fakeProvider{name: "ok", breakdown: breakdown(map[string]float64{"EC2": 1}, nil)}

	c := monitor.NewCollector([]providers.Provider{hung, ok}, 20*time.Millisecond, nil)
	start := time.Now()
	results := c.Collect(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.NoError(t, results[1].Err)
	assert.Len(t, results[1].Points, 1)
}

func TestCollector_ProviderIgnoringContext(t *testing.T) {
	stuck := &fakeProvider{name: "stuck", stall: 3 * time.Second, breakdown: breakdown(map[string]float64{"EC2": 1}, nil)}
	broken := &fakeProvider{name: "broken", panics: true}
	ok := &fakeProvider{name: "ok", breakdown: breakdown(map[string]float64{"EC2": 1}, nil)}

	c := monitor.NewCollector([]providers.Provider{stuck, broken, ok}, 20*time.Millisecond, nil)
	start := time.Now()
	results := c.Collect(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.ErrorContains(t, results[1].Err, "panicked")
	assert.NoError(t, results[2].Err)
	assert.Len(t, results[2].Points, 1)
}

func TestCollector_RejectsInvalidCosts(t *testing.T) {
	aws := &fakeProvider{name: "aws", breakdown: breakdown(
		map[string]float64{"Credits": -40, "EC2": 10, "Broken": math.NaN(), "S3": math.Inf(1)},
		map[string]float64{"EC2": -5},
	)}

	c := monitor.NewCollector([]providers.Provider{aws}, time.Second, newFakeClock(baseTime))
	results := c.Collect(context.Background())

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Len(t, results[0].Points, 1)
	assert.Equal(t, "EC2", results[0].Points[0].Service)
	assert.Equal(t, 10.0, results[0].Points[0].Cost)
	assert.NotContains(t, results[0].Points[0].Metadata, model.MetaLastMonth)
	assert.Equal(t, []string{"Broken", "Credits", "S3"}, results[0].Rejected)
}

func TestCollector_AverageLatency(t *testing.T) {
	c := monitor.NewCollector(nil, time.Second, nil)
	assert.Zero(t, c.AverageLatency())

	for range 150 {
		c.Collect(context.Background())
	}
	assert.GreaterOrEqual(t, c.AverageLatency(), time.Duration(0))
	assert.Equal(t, 0, c.Providers())
}
