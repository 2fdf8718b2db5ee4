package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	SourcesFetchedTotal *prometheus.CounterVec
	SourceFetchSeconds  *prometheus.HistogramVec
	EntriesTotal        *prometheus.CounterVec
	Prefixes            *prometheus.GaugeVec
	BuildsTotal         *prometheus.CounterVec
	LastBuildTimestamp  prometheus.Gauge
	ErrorsTotal         *prometheus.CounterVec
}

var metrics *Metrics

func init() {
	metrics = &Metrics{
		SourcesFetchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blgen",
				Subsystem: "core",
				Name:      "sources_fetched_total",
				Help:      "Total number of source fetches",
			},
			[]string{"list", "status"},
		),
		SourceFetchSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "blgen",
				Subsystem: "core",
				Name:      "source_fetch_seconds",
				Help:      "Source fetch duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"list"},
		),
		EntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blgen",
				Subsystem: "core",
				Name:      "entries_total",
				Help:      "Total number of normalized source lines",
			},
			[]string{"list", "result"},
		),
		Prefixes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "blgen",
				Subsystem: "core",
				Name:      "prefixes",
				Help:      "Number of prefixes produced by the last run of a stage",
			},
			[]string{"stage"},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blgen",
				Subsystem: "core",
				Name:      "builds_total",
				Help:      "Total number of pipeline builds",
			},
			[]string{"status"},
		),
		LastBuildTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "blgen",
				Subsystem: "core",
				Name:      "last_build_timestamp_seconds",
				Help:      "Unix time of the last successful build",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blgen",
				Subsystem: "core",
				Name:      "errors_total",
				Help:      "Total number of errors",
			},
			[]string{"stage"},
		),
	}
}

func Get() *Metrics {
	return metrics
}

func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.SourcesFetchedTotal)
	reg.MustRegister(m.SourceFetchSeconds)
	reg.MustRegister(m.EntriesTotal)
	reg.MustRegister(m.Prefixes)
	reg.MustRegister(m.BuildsTotal)
	reg.MustRegister(m.LastBuildTimestamp)
	reg.MustRegister(m.ErrorsTotal)
}
