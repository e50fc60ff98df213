package models

import (
	"time"

	"github.com/google/uuid"
)

// Reading is one stored sensor sample. It is never mutated after insert.
type Reading struct {
	ID          uuid.UUID `json:"id"`
	Temperature float64   `json:"temperature"` // °F
	Moisture    int       `json:"moisture_value"`
	ObservedAt  float64   `json:"timestamp"` // seconds since epoch, as sent by the device
	ReceivedAt  time.Time `json:"received_at"`
}

// ObservedTime converts ObservedAt to a time.Time.
func (r Reading) ObservedTime() time.Time {
	sec := int64(r.ObservedAt)
	nsec := int64((r.ObservedAt - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// ReadingPayload is the inbound wire shape. Pointers distinguish absent fields from zero values.
type ReadingPayload struct {
	Temperature   *float64 `json:"temperature"`
	Moisture      *int     `json:"moisture_value"`
	MoistureAlias *int     `json:"moisture"`
	Timestamp     *float64 `json:"timestamp"`
}
