package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register wires HTTP routes to handlers.
// Keep this free of business logic; handlers delegate to internal modules.
func Register(r *gin.Engine, h Handlers, metricsRegistry *prometheus.Registry) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/hotline", h.GetHotline)

		v1.POST("/calls", h.InitiateCall)
		v1.GET("/calls/:call_id", h.GetCallStatus)
		v1.POST("/calls/:call_id/end", h.EndCall)

		v1.GET("/active-calls", h.ListActiveCalls)
		v1.GET("/queue", h.ListQueue)
		v1.GET("/stats", h.GetStats)

		v1.GET("/representatives", h.ListRepresentatives)
		v1.PUT("/representatives/:id/availability", h.SetAvailability)

		v1.GET("/reports/summary", h.CallsSummary)

		v1.GET("/events", h.StreamEvents)
	}
}
