package api

import (
	"context"

	"heat-alert-service/internal/ingest"
	"heat-alert-service/internal/logging"
	"heat-alert-service/internal/models"
	"heat-alert-service/internal/throttle"
	"heat-alert-service/internal/websocket"
)

// Ingester accepts raw reading payloads.
type Ingester interface {
	IngestJSON(ctx context.Context, raw []byte, source string) (ingest.Result, error)
}

// Store is the read and maintenance side of the reading store and alert log.
type Store interface {
	RecentReadings(ctx context.Context, limit int) ([]models.Reading, error)
	ClearReadings(ctx context.Context) (int64, error)
	RecentAlerts(ctx context.Context, limit int) ([]models.AlertRecord, error)
}

// StateSource exposes a read-only view of the alert event.
type StateSource interface {
	Snapshot() throttle.State
}

// Handler serves the HTTP surface.
type Handler struct {
	ingester Ingester
	store    Store
	state    StateSource
	hub      *websocket.Hub
	logger   *logging.Logger
	pageSize int
}

// NewHandler wires the handler. hub may be nil, in which case the stream endpoint is unavailable.
func NewHandler(ingester Ingester, store Store, state StateSource, hub *websocket.Hub, logger *logging.Logger, pageSize int) *Handler {
	return &Handler{
		ingester: ingester,
		store:    store,
		state:    state,
		hub:      hub,
		logger:   logger,
		pageSize: pageSize,
	}
}
