package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"heat-alert-service/internal/export"
	"heat-alert-service/internal/ingest"
	"heat-alert-service/internal/models"
	"heat-alert-service/internal/throttle"
	"heat-alert-service/internal/websocket"
)

const (
	maxBodyBytes = 1 << 16
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// IngestReading accepts one reading. The response reflects the store write only.
func (h *Handler) IngestReading(c *gin.Context) {
	log := h.logger.WithRequest(requestID(c))
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Errorf("Read request body failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := h.ingester.IngestJSON(c.Request.Context(), raw, "http"); err != nil {
		switch {
		case ingest.IsValidation(err):
			log.Warnf("Rejected reading: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ingest.ErrStore):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to store reading"})
		default:
			log.Errorf("Ingest failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process reading"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data received successfully."})
}

// RecentData returns the most recent readings, newest first unless order=asc.
func (h *Handler) RecentData(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")

	readings, err := h.store.RecentReadings(c.Request.Context(), h.pageSize)
	if err != nil {
		h.logger.WithRequest(requestID(c)).Errorf("Failed to get recent readings: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to get readings"})
		return
	}
	if readings == nil {
		readings = []models.Reading{}
	}
	if c.Query("order") == "asc" {
		for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
			readings[i], readings[j] = readings[j], readings[i]
		}
	}
	c.JSON(http.StatusOK, readings)
}

// ClearData deletes every stored reading. Alert state is left alone.
func (h *Handler) ClearData(c *gin.Context) {
	log := h.logger.WithRequest(requestID(c))
	n, err := h.store.ClearReadings(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to clear readings: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to clear readings"})
		return
	}
	log.Infof("Cleared %d readings", n)
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type alertStateResponse struct {
	throttle.State
	Active bool `json:"active"`
}

// AlertState returns a snapshot of the current alert event.
func (h *Handler) AlertState(c *gin.Context) {
	s := h.state.Snapshot()
	c.JSON(http.StatusOK, alertStateResponse{State: s, Active: s.Active()})
}

// RecentAlerts returns recent dispatch records, newest first.
func (h *Handler) RecentAlerts(c *gin.Context) {
	alerts, err := h.store.RecentAlerts(c.Request.Context(), h.pageSize)
	if err != nil {
		h.logger.WithRequest(requestID(c)).Errorf("Failed to get alerts: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to get alerts"})
		return
	}
	if alerts == nil {
		alerts = []models.AlertRecord{}
	}
	c.JSON(http.StatusOK, alerts)
}

// ExportXLSX downloads recent readings and dispatch records as a workbook.
func (h *Handler) ExportXLSX(c *gin.Context) {
	log := h.logger.WithRequest(requestID(c))
	readings, err := h.store.RecentReadings(c.Request.Context(), h.pageSize)
	if err != nil {
		log.Errorf("Failed to get readings for export: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to get readings"})
		return
	}
	alerts, err := h.store.RecentAlerts(c.Request.Context(), h.pageSize)
	if err != nil {
		log.Errorf("Failed to get alerts for export: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to get alerts"})
		return
	}
	data, err := export.ReadingsXLSX(readings, alerts)
	if err != nil {
		log.Errorf("Failed to build workbook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="readings.xlsx"`)
	c.Data(http.StatusOK, xlsxMIME, data)
}

// ExportPDF downloads a printable report of recent readings.
func (h *Handler) ExportPDF(c *gin.Context) {
	log := h.logger.WithRequest(requestID(c))
	readings, err := h.store.RecentReadings(c.Request.Context(), h.pageSize)
	if err != nil {
		log.Errorf("Failed to get readings for export: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to get readings"})
		return
	}
	data, err := export.ReadingsPDF(readings, h.state.Snapshot(), time.Now())
	if err != nil {
		log.Errorf("Failed to build report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="readings.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// Stream upgrades to a websocket, sends the recent history, then live events.
func (h *Handler) Stream(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live stream disabled"})
		return
	}
	log := h.logger.WithRequest(requestID(c))

	conn, err := websocket.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	readings, err := h.store.RecentReadings(c.Request.Context(), h.pageSize)
	if err != nil {
		log.Warnf("Failed to load history for stream: %v", err)
		readings = []models.Reading{}
	}
	if err := conn.WriteJSON(models.Event{Type: models.EventHistory, Payload: readings}); err != nil {
		log.Warnf("Send history failed: %v", err)
		conn.Close()
		return
	}

	client := websocket.NewClient(h.hub, conn)
	if !h.hub.Register(c.Request.Context(), client) {
		conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump()
}
