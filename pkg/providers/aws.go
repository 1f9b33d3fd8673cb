package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

const (
	costExplorerRegion = "us-east-1"
	costMetric         = "UnblendedCost"
	ceDateLayout       = "2006-01-02"
)

// CostExplorerAPI is the subset of the Cost Explorer client used here.
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// AWSConfig configures the Cost Explorer adapter. Empty keys fall back to
// the default credential chain.
type AWSConfig struct {
	Name            string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
}

// AWSCostExplorer reads per-service costs from AWS Cost Explorer.
type AWSCostExplorer struct {
	name   string
	client CostExplorerAPI
	now    func() time.Time
}

// NewAWSCostExplorer builds an adapter from the default AWS config chain.
// Cost Explorer is only served from us-east-1.
func NewAWSCostExplorer(ctx context.Context, cfg AWSConfig) (*AWSCostExplorer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(costExplorerRegion),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "aws"
	}
	return NewAWSCostExplorerWithClient(name, costexplorer.NewFromConfig(awsCfg), nil), nil
}

// NewAWSCostExplorerWithClient wraps an existing client. A nil now uses time.Now.
func NewAWSCostExplorerWithClient(name string, client CostExplorerAPI, now func() time.Time) *AWSCostExplorer {
	if now == nil {
		now = time.Now
	}
	return &AWSCostExplorer{name: name, client: client, now: now}
}

func (a *AWSCostExplorer) Name() string { return a.name }

func (a *AWSCostExplorer) GetCostBreakdown(ctx context.Context) (*model.CostBreakdown, error) {
	now := a.now().UTC()
	totals := emptyTotals()

	// Cost Explorer end dates are exclusive, so the current month runs
	// through tomorrow.
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

	queries := []struct {
		period      model.Period
		granularity cetypes.Granularity
		dst         map[string]float64
	}{
		{model.PeriodThisMonth, cetypes.GranularityMonthly, totals.ThisMonth},
		{model.PeriodLastMonth, cetypes.GranularityMonthly, totals.LastMonth},
		{model.PeriodLast7Days, cetypes.GranularityDaily, totals.Last7Days},
		{model.PeriodYesterday, cetypes.GranularityDaily, totals.Yesterday},
	}

	for _, q := range queries {
		start, end := model.PeriodBounds(q.period, now)
		if q.period == model.PeriodThisMonth {
			end = tomorrow
		}
		if err := a.sumByService(ctx, start, end, q.granularity, q.dst); err != nil {
			return nil, fmt.Errorf("aws cost explorer %s: %w", q.period, err)
		}
	}

	return &model.CostBreakdown{TotalsByService: totals}, nil
}

func (a *AWSCostExplorer) sumByService(ctx context.Context, start, end time.Time, granularity cetypes.Granularity, dst map[string]float64) error {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format(ceDateLayout)),
			End:   aws.String(end.Format(ceDateLayout)),
		},
		Granularity: granularity,
		Metrics:     []string{costMetric},
		GroupBy: []cetypes.GroupDefinition{
			{
				Type: cetypes.GroupDefinitionTypeDimension,
				Key:  aws.String("SERVICE"),
			},
		},
	}

	for {
		out, err := a.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return err
		}

		for _, byTime := range out.ResultsByTime {
			for _, group := range byTime.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				metric, ok := group.Metrics[costMetric]
				if !ok || metric.Amount == nil {
					continue
				}
				amount, err := strconv.ParseFloat(*metric.Amount, 64)
				if err != nil {
					return fmt.Errorf("parse amount for %s: %w", group.Keys[0], err)
				}
				dst[group.Keys[0]] += amount
			}
		}

		if out.NextPageToken == nil || *out.NextPageToken == "" {
			return nil
		}
		input.NextPageToken = out.NextPageToken
	}
}
