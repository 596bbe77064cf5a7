// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package metrics defines the prometheus metrics of the canvas.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "archcanvas"

// Label values.
const (
	ModeStored = "stored"
	ModeAuto   = "auto"

	ResultOK    = "ok"
	ResultError = "error"

	TriggerDrag     = "drag"
	TriggerRelayout = "relayout"
)

// Metrics collected by the canvas.
type Metrics struct {
	Layouts        *prometheus.CounterVec // Layouts by mode.
	ViewFetches    *prometheus.CounterVec // View fetches by result.
	PositionWrites *prometheus.CounterVec // Position writes by trigger and result.
	StaleResponses prometheus.Counter     // View responses discarded as stale.
	Sessions       prometheus.Gauge       // Open canvas sessions.
}

// New creates metrics registered with reg. If reg is nil the metrics are not registered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Layouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "layouts_total", Help: "Views laid out, by mode (stored positions or automatic).",
		}, []string{"mode"}),
		ViewFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "view_fetches_total", Help: "View fetches from the backend, by result.",
		}, []string{"result"}),
		PositionWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "position_writes_total", Help: "Node position writes to the backend, by trigger and result.",
		}, []string{"trigger", "result"}),
		StaleResponses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "stale_responses_total", Help: "View responses discarded because a newer request was made.",
		}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sessions", Help: "Open canvas sessions.",
		}),
	}
}

// Result label for err.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
