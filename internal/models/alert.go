package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispatch statuses of an alert record.
const (
	AlertStatusPending = "pending"
	AlertStatusSent    = "sent"
	AlertStatusFailed  = "failed"
	AlertStatusDropped = "dropped"
)

// NotificationRequest is produced by an authorized throttle decision and consumed once by the dispatcher.
type NotificationRequest struct {
	ID           uuid.UUID
	Temperature  float64
	Ordinal      int
	AuthorizedAt time.Time
}

// AlertRecord is the persisted outcome of one dispatch.
type AlertRecord struct {
	ID          uuid.UUID `json:"id"`
	Ordinal     int       `json:"ordinal"`
	Temperature float64   `json:"temperature"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Event is a message fanned out to dashboards and event streams.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types.
const (
	EventReading  = "reading"
	EventDecision = "decision"
	EventHistory  = "history"
)
