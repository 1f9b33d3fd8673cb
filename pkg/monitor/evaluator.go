package monitor

import (
	"fmt"
	"math"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

const (
	equalsTolerance     = 1e-9
	minPercentagePoints = 2
	minTrendPoints      = 3
	minAnomalyPoints    = 5
)

// Result is the outcome of evaluating one threshold.
type Result struct {
	Triggered    bool
	Provider     string
	Service      string
	CurrentValue float64
	Details      map[string]any
}

// Evaluate decides whether threshold t is breached by the points inside its
// time window ending at now. points may hold the whole store; Evaluate
// applies the window and the provider/service filters itself.
func Evaluate(t model.AlertThreshold, points []model.CostDataPoint, now time.Time) Result {
	window := Window(points, now, t.TimeWindow(), t.Provider, t.Service)

	res := Result{
		Provider: scope(t.Provider, window, func(p model.CostDataPoint) string { return p.Provider }),
		Service:  scope(t.Service, window, func(p model.CostDataPoint) string { return p.Service }),
		Details: map[string]any{
			"type":        string(t.Type),
			"condition":   string(t.Condition),
			"data_points": len(window),
		},
	}
	if len(window) == 0 {
		res.Details["reason"] = "no data in window"
		return res
	}

	switch t.Type {
	case model.ThresholdAbsolute:
		evalAbsolute(t, window, &res)
	case model.ThresholdPercentage:
		evalPercentage(t, window, &res)
	case model.ThresholdAnomaly:
		evalAnomaly(t, window, &res)
	case model.ThresholdTrend:
		evalTrend(t, window, &res)
	case model.ThresholdBudgetForecast:
		evalBudgetForecast(t, window, now, &res)
	default:
		res.Details["reason"] = fmt.Sprintf("unknown threshold type %q", t.Type)
	}
	return res
}

func evalAbsolute(t model.AlertThreshold, window []model.CostDataPoint, res *Result) {
	total := sumCost(window)
	res.CurrentValue = total
	res.Details["total_cost"] = total
	res.Triggered = compare(t.Condition, total, t.Value)
}

// evalPercentage compares the last cost in the window to the first. When the
// earliest point carries a prior-period baseline, that baseline is the
// series head.
func evalPercentage(t model.AlertThreshold, window []model.CostDataPoint, res *Result) {
	series := costs(window)
	if baseline, ok := window[0].Baseline(); ok {
		series = append([]float64{baseline}, series...)
		res.Details["baseline"] = baseline
	}
	if len(series) < minPercentagePoints {
		res.Details["reason"] = "insufficient data"
		return
	}

	first, last := series[0], series[len(series)-1]
	res.Details["first_cost"] = first
	res.Details["last_cost"] = last
	if first == 0 {
		res.Details["reason"] = "zero baseline"
		return
	}

	pct := (last - first) / first * 100
	res.CurrentValue = pct
	res.Details["percentage_change"] = pct
	res.Triggered = compare(t.Condition, pct, t.Value)
}

func evalAnomaly(t model.AlertThreshold, window []model.CostDataPoint, res *Result) {
	if len(window) < minAnomalyPoints {
		res.Details["reason"] = "insufficient data"
		return
	}

	series := costs(window)
	historical, current := series[:len(series)-1], series[len(series)-1]
	mean, stddev := meanStddev(historical)

	var z float64
	if stddev > 0 {
		z = math.Abs(current-mean) / stddev
	}

	res.CurrentValue = current
	res.Details["mean"] = mean
	res.Details["stddev"] = stddev
	res.Details["z_score"] = z
	res.Details["current_cost"] = current
	res.Triggered = z > t.Value
}

func evalTrend(t model.AlertThreshold, window []model.CostDataPoint, res *Result) {
	if len(window) < minTrendPoints {
		res.Details["reason"] = "insufficient data"
		return
	}

	series := costs(window)
	intercept, slope := leastSquares(series)
	mean, _ := meanStddev(series)

	var pct float64
	if mean != 0 {
		pct = slope / mean * 100
	}

	res.CurrentValue = pct
	res.Details["slope"] = slope
	res.Details["intercept"] = intercept
	res.Details["mean_cost"] = mean
	res.Details["trend_percentage"] = pct
	res.Triggered = compare(t.Condition, pct, t.Value)
}

func evalBudgetForecast(t model.AlertThreshold, window []model.CostDataPoint, now time.Time, res *Result) {
	spent := sumCost(window)
	elapsed := now.Day()
	days := model.DaysInMonth(now)

	projected := spent / float64(elapsed) * float64(days)
	utilization := projected / t.Value * 100

	res.CurrentValue = projected
	res.Details["current_month_cost"] = spent
	res.Details["days_elapsed"] = elapsed
	res.Details["days_in_month"] = days
	res.Details["projected_cost"] = projected
	res.Details["budget"] = t.Value
	res.Details["utilization"] = utilization

	switch t.Condition {
	case model.ConditionGreaterThan:
		res.Triggered = utilization > 100
	case model.ConditionLessThan:
		res.Triggered = utilization < t.Value
	}
}

func compare(c model.Condition, value, limit float64) bool {
	switch c {
	case model.ConditionGreaterThan:
		return value > limit
	case model.ConditionLessThan:
		return value < limit
	case model.ConditionEquals:
		return math.Abs(value-limit) <= equalsTolerance
	case model.ConditionDeviation:
		return math.Abs(value) > limit
	default:
		return false
	}
}

func costs(points []model.CostDataPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Cost
	}
	return out
}

func sumCost(points []model.CostDataPoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Cost
	}
	return total
}

// meanStddev returns the mean and population standard deviation.
func meanStddev(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}

// leastSquares fits y = a + b*i over the series index.
func leastSquares(ys []float64) (a, b float64) {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / n, 0
	}
	b = (n*sumXY - sumX*sumY) / denom
	a = (sumY - b*sumX) / n
	return a, b
}

// scope returns the configured filter value, or the value shared by every
// point in the window. Mixed windows yield "".
func scope(configured string, window []model.CostDataPoint, field func(model.CostDataPoint) string) string {
	if configured != "" {
		return configured
	}
	if len(window) == 0 {
		return ""
	}
	v := field(window[0])
	for _, p := range window[1:] {
		if field(p) != v {
			return ""
		}
	}
	return v
}
