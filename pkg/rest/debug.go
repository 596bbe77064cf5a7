// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package rest

import (
	"github.com/archcanvas/archcanvas/internal/pkg/metrics"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsPath serves prometheus metrics.
const MetricsPath = "/metrics"

// Debug registers the profiling endpoints under /debug/pprof and metrics gathered by g at [MetricsPath].
func Debug(r *gin.Engine, g prometheus.Gatherer) {
	pprof.Register(r)
	if g != nil {
		r.GET(MetricsPath, gin.WrapH(metrics.Handler(g)))
	}
}
