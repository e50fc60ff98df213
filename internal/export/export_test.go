package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"heat-alert-service/internal/models"
	"heat-alert-service/internal/throttle"
)

func sampleReadings() []models.Reading {
	return []models.Reading{
		{ID: uuid.New(), Temperature: 86.5, Moisture: 410, ObservedAt: 1752498060, ReceivedAt: time.Unix(1752498060, 0)},
		{ID: uuid.New(), Temperature: 79.0, Moisture: 405, ObservedAt: 1752498000, ReceivedAt: time.Unix(1752498000, 0)},
	}
}

func TestReadingsXLSX(t *testing.T) {
	alerts := []models.AlertRecord{{ID: uuid.New(), Ordinal: 1, Temperature: 86.5, Status: models.AlertStatusSent, CreatedAt: time.Unix(1752498060, 0)}}
	data, err := ReadingsXLSX(sampleReadings(), alerts)
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue(readingsSheet, "B2"); v != "86.5" {
		t.Fatalf("expected newest temperature in B2, got %q", v)
	}
	if v, _ := f.GetCellValue(readingsSheet, "A3"); v != "2025-07-14 13:00:00" {
		t.Fatalf("unexpected observed time %q", v)
	}
	if v, _ := f.GetCellValue(alertsSheet, "D2"); v != models.AlertStatusSent {
		t.Fatalf("expected alert status, got %q", v)
	}
}

func TestReadingsPDF(t *testing.T) {
	at := time.Unix(1752498060, 0)
	data, err := ReadingsPDF(sampleReadings(), throttle.State{CallCount: 1, MaxAlerts: 5, LastAlertAt: &at}, at)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}
