package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors, registered via Register. Helpers
// below no-op until registration succeeds so embedding the launcher without
// metrics costs nothing.
var (
	regOK atomic.Bool

	launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modlaunch",
			Subsystem: "launcher",
			Name:      "launches_total",
			Help:      "Number of successful launches by mode.",
		}, []string{"mode"},
	)
	launchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modlaunch",
			Subsystem: "launcher",
			Name:      "launch_failures_total",
			Help:      "Number of failed launches by mode and failure category.",
		}, []string{"mode", "category"},
	)
	stops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modlaunch",
			Subsystem: "launcher",
			Name:      "stops_total",
			Help:      "Number of successful stops.",
		},
	)
	stopFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modlaunch",
			Subsystem: "launcher",
			Name:      "stop_failures_total",
			Help:      "Number of failed stops by failure category.",
		}, []string{"category"},
	)
	stopDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modlaunch",
			Subsystem: "launcher",
			Name:      "stop_duration_seconds",
			Help:      "Wall time of stop calls including the graceful wait.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	runningGroups = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modlaunch",
			Subsystem: "launcher",
			Name:      "running_groups",
			Help:      "Currently tracked process groups.",
		},
	)
)

// Register registers all collectors with r. Safe to call repeatedly; an
// AlreadyRegisteredError is tolerated so the default registry can be used
// from both the daemon and an embedding program.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{launches, launchFailures, stops, stopFailures, stopDuration, runningGroups}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default gatherer; the caller wires the route.
func Handler() http.Handler { return promhttp.Handler() }

func IncLaunch(mode string) {
	if regOK.Load() {
		launches.WithLabelValues(mode).Inc()
	}
}

func IncLaunchFailure(mode, category string) {
	if regOK.Load() {
		launchFailures.WithLabelValues(mode, category).Inc()
	}
}

func IncStop() {
	if regOK.Load() {
		stops.Inc()
	}
}

func IncStopFailure(category string) {
	if regOK.Load() {
		stopFailures.WithLabelValues(category).Inc()
	}
}

func ObserveStopDuration(seconds float64) {
	if regOK.Load() {
		stopDuration.Observe(seconds)
	}
}

func SetRunningGroups(n int) {
	if regOK.Load() {
		runningGroups.Set(float64(n))
	}
}
