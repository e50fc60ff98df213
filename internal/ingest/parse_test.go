package ingest

import (
	"errors"
	"testing"
	"time"
)

func TestDecodePayloadAcceptsBothMoistureNames(t *testing.T) {
	now := time.Unix(1752498000, 0)
	for _, raw := range []string{
		`{"temperature":85.5,"moisture_value":412,"timestamp":1752498000.25}`,
		`{"temperature":85.5,"moisture":412,"timestamp":1752498000.25}`,
	} {
		p, err := DecodePayload([]byte(raw))
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		r, err := NewReading(p, now)
		if err != nil {
			t.Fatalf("new reading %s: %v", raw, err)
		}
		if r.Temperature != 85.5 || r.Moisture != 412 || r.ObservedAt != 1752498000.25 {
			t.Fatalf("unexpected reading: %+v", r)
		}
	}
}

func TestNewReadingDefaultsTimestamp(t *testing.T) {
	now := time.Unix(1752498000, 0)
	p, err := DecodePayload([]byte(`{"temperature":70,"moisture_value":0}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, err := NewReading(p, now)
	if err != nil {
		t.Fatalf("new reading: %v", err)
	}
	if r.ObservedAt != 1752498000 {
		t.Fatalf("expected server time, got %v", r.ObservedAt)
	}
}

func TestNewReadingRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":            `{"temperature":`,
		"missing temperature": `{"moisture_value":3}`,
		"null temperature":    `{"temperature":null,"moisture_value":3}`,
		"string temperature":  `{"temperature":"85","moisture_value":3}`,
		"missing moisture":    `{"temperature":85}`,
		"negative timestamp":  `{"temperature":85,"moisture_value":3,"timestamp":-1}`,
		"array":               `[]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := DecodePayload([]byte(raw))
			if err == nil {
				_, err = NewReading(p, time.Now())
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if errors.Is(err, ErrStore) {
				t.Fatal("validation error must not be a store error")
			}
		})
	}
}
