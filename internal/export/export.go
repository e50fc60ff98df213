// Package export renders recent readings for download.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"heat-alert-service/internal/models"
	"heat-alert-service/internal/throttle"
)

const (
	readingsSheet = "readings"
	alertsSheet   = "alerts"
	timeLayout    = "2006-01-02 15:04:05"
)

// ReadingsXLSX renders readings (newest first) and dispatch records as a workbook.
func ReadingsXLSX(readings []models.Reading, alerts []models.AlertRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", readingsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(alertsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(readingsSheet, "A1", "Observed (UTC)")
	_ = f.SetCellValue(readingsSheet, "B1", "Temperature (°F)")
	_ = f.SetCellValue(readingsSheet, "C1", "Moisture")
	_ = f.SetCellValue(readingsSheet, "D1", "Received (UTC)")
	_ = f.SetCellValue(readingsSheet, "E1", "ID")
	for i, r := range readings {
		row := i + 2
		_ = f.SetCellValue(readingsSheet, fmt.Sprintf("A%d", row), r.ObservedTime().Format(timeLayout))
		_ = f.SetCellValue(readingsSheet, fmt.Sprintf("B%d", row), r.Temperature)
		_ = f.SetCellValue(readingsSheet, fmt.Sprintf("C%d", row), r.Moisture)
		_ = f.SetCellValue(readingsSheet, fmt.Sprintf("D%d", row), r.ReceivedAt.UTC().Format(timeLayout))
		_ = f.SetCellValue(readingsSheet, fmt.Sprintf("E%d", row), r.ID.String())
	}

	_ = f.SetCellValue(alertsSheet, "A1", "Created (UTC)")
	_ = f.SetCellValue(alertsSheet, "B1", "Ordinal")
	_ = f.SetCellValue(alertsSheet, "C1", "Temperature (°F)")
	_ = f.SetCellValue(alertsSheet, "D1", "Status")
	_ = f.SetCellValue(alertsSheet, "E1", "Error")
	for i, a := range alerts {
		row := i + 2
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("A%d", row), a.CreatedAt.UTC().Format(timeLayout))
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("B%d", row), a.Ordinal)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("C%d", row), a.Temperature)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("D%d", row), a.Status)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("E%d", row), a.Error)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadingsPDF renders a one-page report of the alert state and recent readings.
func ReadingsPDF(readings []models.Reading, state throttle.State, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Heat Alert Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generated.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Alerts sent this event: %d of %d", state.CallCount, state.MaxAlerts))
	pdf.Ln(5)
	if state.LastAlertAt != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Last alert: %s", state.LastAlertAt.UTC().Format(time.RFC3339)))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Observed (UTC)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Temperature (F)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Moisture", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, r := range readings {
		pdf.CellFormat(60, 6, r.ObservedTime().Format(timeLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.1f", r.Temperature), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%d", r.Moisture), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
