package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"heat-alert-service/internal/logging"
	"heat-alert-service/internal/metrics"
	"heat-alert-service/internal/models"
)

// TextGenerator turns a prompt into spoken alert text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Caller places a voice call that speaks message to recipient.
type Caller interface {
	PlaceCall(ctx context.Context, message, recipient string) error
}

// Mirror receives a copy of the alert text on a secondary channel.
type Mirror interface {
	Post(ctx context.Context, text string) error
}

// AlertLog persists dispatch outcomes.
type AlertLog interface {
	CreateAlert(ctx context.Context, a models.AlertRecord) error
	UpdateAlertStatus(ctx context.Context, id uuid.UUID, status, message, lastError string) error
}

// Settings configures the worker pool and the call target.
type Settings struct {
	Recipient  string
	MaxAlerts  int
	QueueSize  int
	MaxWorkers int
	Timeout    time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithMirror adds a secondary channel for the generated text.
func WithMirror(m Mirror) Option {
	return func(s *Service) {
		s.mirror = m
	}
}

// Service runs authorized notifications on a worker pool, detached from the
// request that authorized them. It never touches throttle state: a failed
// dispatch keeps its consumed slot.
type Service struct {
	alerts   AlertLog
	logger   *logging.Logger
	text     TextGenerator
	caller   Caller
	mirror   Mirror
	settings Settings

	mu     sync.RWMutex
	closed bool
	tasks  chan models.NotificationRequest
	wg     *sync.WaitGroup
}

// New constructs a notification Service.
func New(alerts AlertLog, logger *logging.Logger, text TextGenerator, caller Caller, settings Settings, opts ...Option) *Service {
	if settings.QueueSize < 1 {
		settings.QueueSize = 1
	}
	if settings.MaxWorkers < 1 {
		settings.MaxWorkers = 1
	}
	svc := &Service{
		alerts:   alerts,
		logger:   logger,
		text:     text,
		caller:   caller,
		settings: settings,
		tasks:    make(chan models.NotificationRequest, settings.QueueSize),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.settings.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop stops accepting work. Workers finish the queued requests and exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.tasks)
	}
}

// Dispatch enqueues a request without blocking. It reports whether the
// request was accepted; a dropped request is logged and not retried.
func (s *Service) Dispatch(req models.NotificationRequest) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Errorf("Dispatcher stopped, dropping alert #%d", req.Ordinal)
		metrics.IncDispatch("queue", metrics.ResultDropped)
		return false
	}
	select {
	case s.tasks <- req:
		s.logger.Debugf("Queued alert #%d: dispatch_id=%s", req.Ordinal, req.ID)
		return true
	default:
		s.logger.Errorf("Queue full, dropping alert #%d: dispatch_id=%s", req.Ordinal, req.ID)
		metrics.IncDispatch("queue", metrics.ResultDropped)
		return false
	}
}

// worker processes requests until the queue is closed.
func (s *Service) worker(id int) {
	defer s.wg.Done()
	for req := range s.tasks {
		s.handle(req)
	}
	s.logger.Infof("Worker %d stopped", id)
}

// BuildPrompt embeds the ordinal and temperature in the text-generation prompt.
func BuildPrompt(temperature float64, ordinal, maxAlerts int) string {
	return fmt.Sprintf(
		"Create a short, urgent voice alert. This is alert number %d of %d. "+
			"The temperature inside a car is still at an unsafe level. "+
			"The current temperature is %.1f degrees Fahrenheit. "+
			"Start the message with 'This is an urgent safety alert.'",
		ordinal, maxAlerts, temperature,
	)
}

// handle generates the text, places the call and records the outcome.
func (s *Service) handle(req models.NotificationRequest) {
	start := time.Now()
	ctx := context.Background()
	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}
	log := s.logger.WithFields(logrus.Fields{"dispatch_id": req.ID.String(), "ordinal": req.Ordinal})

	now := time.Now().UTC()
	record := models.AlertRecord{
		ID:          req.ID,
		Ordinal:     req.Ordinal,
		Temperature: req.Temperature,
		Status:      models.AlertStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.alerts.CreateAlert(ctx, record); err != nil {
		log.Warnf("CreateAlert failed: %v", err)
	}

	log.Infof("Unsafe temperature detected. Generating alert #%d", req.Ordinal)
	message, err := s.text.Generate(ctx, BuildPrompt(req.Temperature, req.Ordinal, s.settings.MaxAlerts))
	if err == nil && strings.TrimSpace(message) == "" {
		err = errors.New("empty alert text")
	}
	if err != nil {
		metrics.IncDispatch("text", metrics.ResultError)
		s.finish(ctx, log, req, models.AlertStatusFailed, "", fmt.Errorf("generate alert text: %w", err), start)
		return
	}
	metrics.IncDispatch("text", metrics.ResultSuccess)
	log.Infof("Generated message: %q", message)

	if err := s.caller.PlaceCall(ctx, message, s.settings.Recipient); err != nil {
		metrics.IncDispatch("call", metrics.ResultError)
		s.finish(ctx, log, req, models.AlertStatusFailed, message, fmt.Errorf("place call: %w", err), start)
		return
	}
	metrics.IncDispatch("call", metrics.ResultSuccess)

	if s.mirror != nil {
		if err := s.mirror.Post(ctx, message); err != nil {
			metrics.IncDispatch("mirror", metrics.ResultError)
			log.Warnf("Mirror post failed: %v", err)
		} else {
			metrics.IncDispatch("mirror", metrics.ResultSuccess)
		}
	}

	s.finish(ctx, log, req, models.AlertStatusSent, message, nil, start)
}

func (s *Service) finish(ctx context.Context, log *logrus.Entry, req models.NotificationRequest, status, message string, dispatchErr error, start time.Time) {
	metrics.ObserveDispatch(time.Since(start))

	lastError := ""
	if dispatchErr != nil {
		lastError = dispatchErr.Error()
		log.Errorf("Failed to send alert notification #%d: %v", req.Ordinal, dispatchErr)
	} else {
		log.Infof("Call #%d initiated successfully", req.Ordinal)
	}

	// The request context may already be spent; give the status write its own budget.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := s.alerts.UpdateAlertStatus(ctx, req.ID, status, message, lastError); err != nil {
		log.Warnf("UpdateAlertStatus failed: %v", err)
	}
}
