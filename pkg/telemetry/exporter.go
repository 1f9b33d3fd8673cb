// Package telemetry exposes engine activity as Prometheus metrics.
package telemetry

import (
	"net/http"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ccm"

// StatusSource supplies point-in-time values read at scrape time.
type StatusSource interface {
	GetMetrics() model.MonitoringMetrics
}

// Exporter turns engine events into Prometheus counters and publishes
// gauges read from the engine on each scrape.
type Exporter struct {
	registry *prometheus.Registry

	providerFetches    *prometheus.CounterVec
	collectionErrors   *prometheus.CounterVec
	dataPoints         *prometheus.CounterVec
	alertsTriggered    *prometheus.CounterVec
	notificationErrors *prometheus.CounterVec
	monitoringErrors   prometheus.Counter
}

// NewExporter registers all metrics on registry. A nil registry gets a
// fresh one.
func NewExporter(registry *prometheus.Registry, source StatusSource) *Exporter {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{
		registry: registry,
		providerFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetches_total",
			Help:      "Provider fetches that returned data.",
		}, []string{"provider"}),
		collectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_errors_total",
			Help:      "Provider fetches that failed.",
		}, []string{"provider"}),
		dataPoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_points_total",
			Help:      "Cost data points collected.",
		}, []string{"provider"}),
		alertsTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_triggered_total",
			Help:      "Alerts raised by threshold evaluation.",
		}, []string{"severity", "type"}),
		notificationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_errors_total",
			Help:      "Failed notification deliveries.",
		}, []string{"channel_type"}),
		monitoringErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitoring_errors_total",
			Help:      "Ticks that ended in an error.",
		}),
	}

	registry.MustRegister(
		e.providerFetches,
		e.collectionErrors,
		e.dataPoints,
		e.alertsTriggered,
		e.notificationErrors,
		e.monitoringErrors,
	)

	if source != nil {
		registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collections_total",
				Help:      "Collection rounds run across all providers.",
			}, func() float64 { return float64(source.GetMetrics().CollectionsRun) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_alerts",
				Help:      "Unresolved alerts.",
			}, func() float64 { return float64(source.GetMetrics().ActiveAlerts) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "health_score",
				Help:      "Engine health score from 0 to 100.",
			}, func() float64 { return source.GetMetrics().HealthScore }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collection_latency_seconds",
				Help:      "Mean duration of recent collection rounds.",
			}, func() float64 { return source.GetMetrics().AverageCollectionDuration.Seconds() }),
		)
	}

	return e
}

// Handle records one engine event. Pass it to Engine.Subscribe.
func (e *Exporter) Handle(ev monitor.Event) {
	switch ev := ev.(type) {
	case monitor.DataCollected:
		e.providerFetches.WithLabelValues(ev.Provider).Inc()
		e.dataPoints.WithLabelValues(ev.Provider).Add(float64(ev.Points))
	case monitor.DataCollectionError:
		e.collectionErrors.WithLabelValues(ev.Provider).Inc()
	case monitor.AlertTriggered:
		typ, _ := ev.Alert.Details["type"].(string)
		e.alertsTriggered.WithLabelValues(string(ev.Alert.Severity), typ).Inc()
	case monitor.NotificationError:
		e.notificationErrors.WithLabelValues(string(ev.Channel.Type)).Inc()
	case monitor.MonitoringError:
		e.monitoringErrors.Inc()
	}
}

// Registry returns the registry the exporter writes to.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
