package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"heat-alert-service/internal/models"
)

const memoryCapacity = 10000 // oldest readings are dropped beyond this

// MemoryStore keeps readings and alert records in process memory. It backs
// local runs without DB_DSN and the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []models.Reading
	alerts   []models.AlertRecord
	capacity int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{capacity: memoryCapacity}
}

func (s *MemoryStore) InsertReading(_ context.Context, r models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.readings) >= s.capacity {
		// Remove the oldest element
		s.readings = s.readings[1:]
	}
	s.readings = append(s.readings, r)
	return nil
}

func (s *MemoryStore) RecentReadings(_ context.Context, limit int) ([]models.Reading, error) {
	s.mu.RLock()
	sorted := make([]models.Reading, 0, len(s.readings))
	for i := len(s.readings) - 1; i >= 0; i-- {
		sorted = append(sorted, s.readings[i])
	}
	s.mu.RUnlock()

	// newest first; later inserts win ties
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ObservedAt > sorted[j].ObservedAt
	})
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (s *MemoryStore) ClearReadings(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.readings))
	s.readings = nil
	return n, nil
}

func (s *MemoryStore) CreateAlert(_ context.Context, a models.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *MemoryStore) UpdateAlertStatus(_ context.Context, id uuid.UUID, status, message, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Status = status
			s.alerts[i].Message = message
			s.alerts[i].Error = lastError
			s.alerts[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("no alert record updated for id %s", id)
}

func (s *MemoryStore) RecentAlerts(_ context.Context, limit int) ([]models.AlertRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AlertRecord, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		out = append(out, s.alerts[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() {}
