package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"heat-alert-service/internal/config"
	"heat-alert-service/internal/db"
	"heat-alert-service/internal/ingest"
	"heat-alert-service/internal/logging"
	"heat-alert-service/internal/models"
	"heat-alert-service/internal/threshold"
	"heat-alert-service/internal/throttle"
)

type nopDispatcher struct{ count int }

func (d *nopDispatcher) Dispatch(models.NotificationRequest) bool {
	d.count++
	return true
}

type brokenStore struct{ *db.MemoryStore }

func (brokenStore) InsertReading(context.Context, models.Reading) error {
	return errors.New("connection reset")
}

func (brokenStore) RecentReadings(context.Context, int) ([]models.Reading, error) {
	return nil, errors.New("connection reset")
}

type testServer struct {
	router     *gin.Engine
	store      *db.MemoryStore
	machine    *throttle.Machine
	dispatcher *nopDispatcher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	machine := throttle.New(threshold.NewEvaluator(80, 5), 5, 60*time.Second)
	dispatcher := &nopDispatcher{}
	logger := logging.NewDiscard()
	gw := ingest.NewGateway(store, machine, dispatcher, logger)

	var cfg config.Config
	cfg.API.BasePath = "/api"
	h := NewHandler(gw, store, machine, nil, logger, 50)
	return &testServer{router: NewRouter(logger, cfg, h), store: store, machine: machine, dispatcher: dispatcher}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestIngestReadingSuccess(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/sensor-data", `{"temperature":85.5,"moisture_value":400,"timestamp":1752498000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "Data received successfully." {
		t.Fatalf("unexpected body %v", body)
	}
	if s.dispatcher.count != 1 {
		t.Fatalf("expected one dispatch, got %d", s.dispatcher.count)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func TestIngestReadingValidation(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/sensor-data", `{"moisture_value":400}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if s.machine.Snapshot().Active() {
		t.Fatal("invalid reading must not touch alert state")
	}
}

func TestIngestReadingStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logging.NewDiscard()
	store := brokenStore{db.NewMemoryStore()}
	machine := throttle.New(threshold.NewEvaluator(80, 5), 5, time.Minute)
	gw := ingest.NewGateway(store, machine, &nopDispatcher{}, logger)
	var cfg config.Config
	cfg.API.BasePath = "/api"
	r := NewRouter(logger, cfg, NewHandler(gw, store, machine, nil, logger, 50))

	req := httptest.NewRequest(http.MethodPost, "/api/sensor-data", strings.NewReader(`{"temperature":90,"moisture_value":1}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/data", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from query, got %d", rec.Code)
	}
}

func TestRecentDataEmptyIsArray(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/data", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected [], got %s", rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS header")
	}
}

func TestRecentDataOrderAndLimit(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 55; i++ {
		r := models.Reading{Temperature: 70, Moisture: i, ObservedAt: float64(1752498000 + i)}
		if err := s.store.InsertReading(context.Background(), r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	var desc []models.Reading
	rec := s.do(http.MethodGet, "/api/data", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(desc) != 50 || desc[0].Moisture != 54 || desc[49].Moisture != 5 {
		t.Fatalf("unexpected page: len=%d first=%d last=%d", len(desc), desc[0].Moisture, desc[len(desc)-1].Moisture)
	}

	var asc []models.Reading
	rec = s.do(http.MethodGet, "/api/data?order=asc", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &asc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(asc) != 50 || asc[0].Moisture != 5 || asc[49].Moisture != 54 {
		t.Fatalf("unexpected ascending page: first=%d last=%d", asc[0].Moisture, asc[49].Moisture)
	}
}

func TestClearDataKeepsAlertState(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/sensor-data", `{"temperature":90,"moisture_value":1}`)
	s.do(http.MethodPost, "/api/sensor-data", `{"temperature":91,"moisture_value":1}`)

	rec := s.do(http.MethodDelete, "/api/data", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["deleted"] != 2 {
		t.Fatalf("expected 2 deleted, got %v", body)
	}
	if st := s.machine.Snapshot(); st.CallCount != 1 {
		t.Fatalf("clear must not reset alert state, got %+v", st)
	}
}

func TestAlertStateSnapshot(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/sensor-data", `{"temperature":90,"moisture_value":1}`)

	rec := s.do(http.MethodGet, "/api/alert-state", "")
	var body struct {
		Active    bool    `json:"active"`
		CallCount int     `json:"call_count"`
		MaxAlerts int     `json:"max_alerts"`
		Cooldown  float64 `json:"cooldown_seconds"`
		LastAlert *string `json:"last_alert_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Active || body.CallCount != 1 || body.MaxAlerts != 5 || body.Cooldown != 60 || body.LastAlert == nil {
		t.Fatalf("unexpected state %+v", body)
	}
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/sensor-data", `{"temperature":77,"moisture_value":1}`)
	rec := s.do(http.MethodGet, "/api/data/export.xlsx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != xlsxMIME {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Fatal("expected a zip container")
	}
}

func TestStreamDisabledWithoutHub(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/ws", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
