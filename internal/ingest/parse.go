package ingest

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"heat-alert-service/internal/models"
)

// DecodePayload parses a JSON reading. Unknown fields are ignored.
func DecodePayload(raw []byte) (models.ReadingPayload, error) {
	var p models.ReadingPayload
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&p); err != nil {
		return models.ReadingPayload{}, &ValidationError{Reason: "malformed JSON: " + err.Error()}
	}
	return p, nil
}

// NewReading validates p and builds a Reading. A missing timestamp takes now.
func NewReading(p models.ReadingPayload, now time.Time) (models.Reading, error) {
	if p.Temperature == nil {
		return models.Reading{}, &ValidationError{Field: "temperature", Reason: "is required"}
	}
	if math.IsNaN(*p.Temperature) || math.IsInf(*p.Temperature, 0) {
		return models.Reading{}, &ValidationError{Field: "temperature", Reason: "must be a finite number"}
	}
	moisture := p.Moisture
	if moisture == nil {
		moisture = p.MoistureAlias
	}
	if moisture == nil {
		return models.Reading{}, &ValidationError{Field: "moisture_value", Reason: "is required"}
	}

	observed := float64(now.UnixNano()) / float64(time.Second)
	if p.Timestamp != nil {
		if math.IsNaN(*p.Timestamp) || math.IsInf(*p.Timestamp, 0) || *p.Timestamp < 0 {
			return models.Reading{}, &ValidationError{Field: "timestamp", Reason: "must be seconds since epoch"}
		}
		observed = *p.Timestamp
	}

	return models.Reading{
		ID:          uuid.New(),
		Temperature: *p.Temperature,
		Moisture:    *moisture,
		ObservedAt:  observed,
		ReceivedAt:  now.UTC(),
	}, nil
}
