package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heat-alert-service/internal/config"
	"heat-alert-service/internal/logging"
)

func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		// Readings
		api.POST("/sensor-data", h.IngestReading)
		api.GET("/data", h.RecentData)
		api.DELETE("/data", h.ClearData)
		api.GET("/data/export.xlsx", h.ExportXLSX)
		api.GET("/data/export.pdf", h.ExportPDF)

		// Alerts
		api.GET("/alert-state", h.AlertState)
		api.GET("/alerts", h.RecentAlerts)

		// Live stream
		api.GET("/ws", h.Stream)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.API.DashboardDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.API.DashboardDir))))
	}
	return r
}
