package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/imdbapi/models"
)

// Health returns a handler for GET /health.
//
// Status is "degraded" while the browser is down (the next request will
// relaunch it) or when more than 80% of the tab slots are in use.
func Health(stats SessionStats, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := stats.Stats()

		status := "healthy"
		if !info.Running || (info.MaxTabs > 0 && info.OpenTabs > int(float64(info.MaxTabs)*0.8)) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Browser: info,
			Version: Version,
		})
	}
}
