// Package metrics exposes Prometheus metrics for the hotline router.
// Metrics are fed from routing events, so the engine never imports this package.
package metrics

import (
	"context"

	"hotline-router/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry served on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// QueueLength is the number of calls waiting for a representative.
var QueueLength = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "hotline",
	Name:      "queue_length",
	Help:      "Number of calls waiting in the hotline queue",
})

// ActiveCalls is the number of connected calls.
var ActiveCalls = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "hotline",
	Name:      "active_calls",
	Help:      "Number of calls currently connected to a representative",
})

// CallsTotal counts arrivals by first outcome (connected or queued).
var CallsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hotline",
	Name:      "calls_total",
	Help:      "Calls received, by outcome on arrival",
}, []string{"outcome"})

var CallsEndedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "hotline",
	Name:      "calls_ended_total",
	Help:      "Calls ended after being connected",
})

// WaitSeconds observes time spent queued by calls connected from the queue.
var WaitSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "hotline",
	Name:      "wait_seconds",
	Help:      "Time queued calls waited before connecting",
	Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200, 1800, 3600},
})

var TalkSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "hotline",
	Name:      "talk_seconds",
	Help:      "Duration of ended calls",
	Buckets:   []float64{15, 30, 60, 120, 300, 600, 1200, 1800, 3600},
})

// Observe updates metrics for one routing event.
func Observe(e events.Event) {
	QueueLength.Set(float64(e.QueueLength))
	ActiveCalls.Set(float64(e.ActiveCount))

	switch e.Type {
	case events.TypeCallQueued:
		CallsTotal.WithLabelValues("queued").Inc()
	case events.TypeCallConnected:
		if e.FromQueue {
			WaitSeconds.Observe(float64(e.WaitSeconds))
			return
		}
		CallsTotal.WithLabelValues("connected").Inc()
	case events.TypeCallEnded:
		CallsEndedTotal.Inc()
		TalkSeconds.Observe(float64(e.TalkSeconds))
	}
}

// Run observes events until ctx is done or in is closed.
func Run(ctx context.Context, in <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-in:
			if !ok {
				return
			}
			Observe(e)
		}
	}
}
