package providers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCostExplorer struct {
	inputs []*costexplorer.GetCostAndUsageInput
	err    error
}

func (f *fakeCostExplorer) GetCostAndUsage(_ context.Context, in *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *in
	f.inputs = append(f.inputs, &copied)

	group := func(service, amount string) cetypes.Group {
		return cetypes.Group{
			Keys:    []string{service},
			Metrics: map[string]cetypes.MetricValue{"UnblendedCost": {Amount: aws.String(amount), Unit: aws.String("USD")}},
		}
	}

	// The first call for this period returns a page token; the second ends it.
	if in.NextPageToken == nil {
		return &costexplorer.GetCostAndUsageOutput{
			ResultsByTime: []cetypes.ResultByTime{{Groups: []cetypes.Group{group("Amazon EC2", "10.5"), group("Amazon S3", "1")}}},
			NextPageToken: aws.String("page-2"),
		}, nil
	}
	return &costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []cetypes.ResultByTime{{Groups: []cetypes.Group{group("Amazon EC2", "4.5")}}},
	}, nil
}

func TestAWSCostExplorer_GetCostBreakdown(t *testing.T) {
	fake := &fakeCostExplorer{}
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	p := providers.NewAWSCostExplorerWithClient("aws-prod", fake, func() time.Time { return now })
	assert.Equal(t, "aws-prod", p.Name())

	b, err := p.GetCostBreakdown(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 15.0, b.TotalsByService.ThisMonth["Amazon EC2"], 1e-9)
	assert.InDelta(t, 1.0, b.TotalsByService.ThisMonth["Amazon S3"], 1e-9)
	assert.InDelta(t, 15.0, b.TotalsByService.LastMonth["Amazon EC2"], 1e-9)
	assert.InDelta(t, 15.0, b.TotalsByService.Yesterday["Amazon EC2"], 1e-9)

	// Four periods, two pages each.
	require.Len(t, fake.inputs, 8)
	first := fake.inputs[0]
	assert.Equal(t, "2025-03-01", *first.TimePeriod.Start)
	assert.Equal(t, "2025-03-16", *first.TimePeriod.End)
	assert.Equal(t, cetypes.GranularityMonthly, first.Granularity)
	assert.Equal(t, "SERVICE", *first.GroupBy[0].Key)
}

func TestAWSCostExplorer_Error(t *testing.T) {
	fake := &fakeCostExplorer{err: errors.New("AccessDeniedException")}
	p := providers.NewAWSCostExplorerWithClient("aws", fake, nil)

	_, err := p.GetCostBreakdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDeniedException")
}
