// Package monitor exposes run health and counters over HTTP.
package monitor

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/concordia247/drafts/internal/metrics"
)

// Stats reports a component snapshot for /metrics.
type Stats func() interface{}

// NewRouter serves /health and /metrics from m. Each extra entry is added to
// the /metrics document under its key.
func NewRouter(m *metrics.Metrics, extra map[string]Stats, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	})

	r.GET("/health", func(c *gin.Context) {
		stats := m.GetStats()
		status, code := "ok", http.StatusOK
		if !m.Healthy() {
			status, code = "error", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"last_run":   stats["last_run_time"],
			"last_error": stats["last_error"],
		})
	})
	r.GET("/metrics", func(c *gin.Context) {
		stats := m.GetStats()
		for name, fn := range extra {
			stats[name] = fn()
		}
		c.JSON(http.StatusOK, stats)
	})
	return r
}

// NewServer returns an http.Server for addr; the caller starts and stops it.
func NewServer(addr string, m *metrics.Metrics, extra map[string]Stats, log *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(m, extra, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
