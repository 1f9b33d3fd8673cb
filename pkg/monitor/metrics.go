package monitor

import (
	"cmp"
	"slices"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

const topDrivers = 10

// Summarize derives the cost summary fields of MonitoringMetrics from the
// stored points. Today and yesterday are calendar days in now's location.
func Summarize(points []model.CostDataPoint, now time.Time, activeAlerts int) model.MonitoringMetrics {
	todayStart, todayEnd := model.PeriodBounds(model.PeriodToday, now)
	yesterdayStart, _ := model.PeriodBounds(model.PeriodYesterday, now)

	type key struct{ provider, service string }
	type pair struct{ today, yesterday float64 }
	byService := make(map[key]*pair)

	var today, yesterday float64
	for _, p := range points {
		ts := p.Timestamp.In(now.Location())
		var isToday bool
		switch {
		case !ts.Before(todayStart) && ts.Before(todayEnd):
			isToday = true
		case !ts.Before(yesterdayStart) && ts.Before(todayStart):
		default:
			continue
		}

		k := key{p.Provider, p.Service}
		agg, ok := byService[k]
		if !ok {
			agg = &pair{}
			byService[k] = agg
		}
		if isToday {
			today += p.Cost
			agg.today += p.Cost
		} else {
			yesterday += p.Cost
			agg.yesterday += p.Cost
		}
	}

	change := today - yesterday
	changePct := percentChange(yesterday, today)

	drivers := make([]model.CostDriver, 0, len(byService))
	for k, agg := range byService {
		drivers = append(drivers, model.CostDriver{
			Provider:         k.provider,
			Service:          k.service,
			Cost:             agg.today,
			Change:           agg.today - agg.yesterday,
			ChangePercentage: percentChange(agg.yesterday, agg.today),
		})
	}
	slices.SortFunc(drivers, func(a, b model.CostDriver) int {
		if c := cmp.Compare(b.Change, a.Change); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Provider, b.Provider); c != 0 {
			return c
		}
		return cmp.Compare(a.Service, b.Service)
	})
	if len(drivers) > topDrivers {
		drivers = drivers[:topDrivers]
	}

	return model.MonitoringMetrics{
		TotalCostToday:       today,
		TotalCostYesterday:   yesterday,
		CostChangeToday:      change,
		CostChangePercentage: changePct,
		TopCostDrivers:       drivers,
		ActiveAlerts:         activeAlerts,
		HealthScore:          HealthScore(changePct, activeAlerts),
		DataPoints:           len(points),
		LastUpdated:          now,
	}
}

// HealthScore scores engine health from 0 to 100 using the day-over-day
// cost change percentage and the number of active alerts.
func HealthScore(changePct float64, activeAlerts int) float64 {
	score := 100.0
	switch {
	case changePct > 20:
		score -= 30
	case changePct > 10:
		score -= 20
	case changePct > 5:
		score -= 10
	}
	score -= 5 * float64(activeAlerts)
	if changePct < -5 {
		score += 10
	}
	return max(0, min(100, score))
}

// HealthState buckets the active alert count.
func HealthState(activeAlerts int) model.HealthState {
	switch {
	case activeAlerts == 0:
		return model.HealthHealthy
	case activeAlerts < 3:
		return model.HealthWarning
	default:
		return model.HealthCritical
	}
}

func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}
