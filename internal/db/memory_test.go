package db

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"heat-alert-service/internal/models"
)

func TestMemoryStoreRecentNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i, ts := range []float64{100, 300, 200, 300} {
		r := models.Reading{ID: uuid.New(), Temperature: float64(70 + i), ObservedAt: ts}
		if err := s.InsertReading(ctx, r); err != nil {
			t.Fatalf("InsertReading: %v", err)
		}
	}

	got, err := s.RecentReadings(ctx, 3)
	if err != nil {
		t.Fatalf("RecentReadings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	if got[0].Temperature != 73 || got[1].Temperature != 71 || got[2].Temperature != 72 {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestMemoryStoreEmptyAndClear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.RecentReadings(ctx, 50)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}

	for i := 0; i < 4; i++ {
		_ = s.InsertReading(ctx, models.Reading{ID: uuid.New(), ObservedAt: float64(i)})
	}
	n, err := s.ClearReadings(ctx)
	if err != nil || n != 4 {
		t.Fatalf("expected 4 deleted, got %d %v", n, err)
	}
	if got, _ := s.RecentReadings(ctx, 50); len(got) != 0 {
		t.Fatalf("expected no readings after clear, got %d", len(got))
	}
}

func TestMemoryStoreCapacity(t *testing.T) {
	s := &MemoryStore{capacity: 2}
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		_ = s.InsertReading(ctx, models.Reading{ID: uuid.New(), ObservedAt: float64(i)})
	}
	got, _ := s.RecentReadings(ctx, 0)
	if len(got) != 2 || got[1].ObservedAt != 2 {
		t.Fatalf("expected oldest dropped, got %+v", got)
	}
}

func TestMemoryStoreAlertLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()
	if err := s.CreateAlert(ctx, models.AlertRecord{ID: id, Ordinal: 1, Status: models.AlertStatusPending}); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}
	if err := s.UpdateAlertStatus(ctx, id, models.AlertStatusSent, "hello", ""); err != nil {
		t.Fatalf("UpdateAlertStatus: %v", err)
	}
	if err := s.UpdateAlertStatus(ctx, uuid.New(), models.AlertStatusSent, "", ""); err == nil {
		t.Fatal("expected error for unknown id")
	}
	alerts, _ := s.RecentAlerts(ctx, 10)
	if len(alerts) != 1 || alerts[0].Status != models.AlertStatusSent || alerts[0].Message != "hello" {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}
}
