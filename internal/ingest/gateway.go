package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"heat-alert-service/internal/logging"
	"heat-alert-service/internal/metrics"
	"heat-alert-service/internal/models"
	"heat-alert-service/internal/throttle"
)

// ReadingStore persists readings.
type ReadingStore interface {
	InsertReading(ctx context.Context, r models.Reading) error
}

// Dispatcher accepts authorized notifications without blocking.
type Dispatcher interface {
	Dispatch(req models.NotificationRequest) bool
}

// Publisher fans events out to observers. Implementations must not block for long.
type Publisher interface {
	Publish(ctx context.Context, event models.Event)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Result is what a successful ingestion produced.
type Result struct {
	Reading  models.Reading    `json:"reading"`
	Decision throttle.Decision `json:"decision"`
}

// Option customizes the Gateway.
type Option func(*Gateway)

// WithPublisher assigns an event publisher.
func WithPublisher(p Publisher) Option {
	return func(g *Gateway) {
		g.publisher = p
	}
}

// WithClock assigns a clock.
func WithClock(c Clock) Option {
	return func(g *Gateway) {
		if c != nil {
			g.clock = c
		}
	}
}

// Gateway stores a reading, runs the throttle and hands authorized alerts to
// the dispatcher. Store and throttle are separate critical sections; the
// dispatch itself runs detached.
type Gateway struct {
	store      ReadingStore
	throttle   *throttle.Machine
	dispatcher Dispatcher
	publisher  Publisher
	logger     *logging.Logger
	clock      Clock
}

// NewGateway constructs a Gateway.
func NewGateway(store ReadingStore, machine *throttle.Machine, dispatcher Dispatcher, logger *logging.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		store:      store,
		throttle:   machine,
		dispatcher: dispatcher,
		logger:     logger,
		clock:      systemClock{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IngestJSON decodes raw and ingests it.
func (g *Gateway) IngestJSON(ctx context.Context, raw []byte, source string) (Result, error) {
	p, err := DecodePayload(raw)
	if err != nil {
		metrics.ObserveIngest(source, metrics.ResultInvalid, 0)
		return Result{}, err
	}
	return g.Ingest(ctx, p, source)
}

// Ingest validates, stores and evaluates one reading. It returns once the
// store write completes; dispatch outcome never affects the result.
func (g *Gateway) Ingest(ctx context.Context, p models.ReadingPayload, source string) (Result, error) {
	start := time.Now()
	now := g.clock.Now()

	reading, err := NewReading(p, now)
	if err != nil {
		metrics.ObserveIngest(source, metrics.ResultInvalid, time.Since(start))
		return Result{}, err
	}

	log := g.logger.WithFields(logrus.Fields{"source": source, "reading_id": reading.ID.String()})
	log.Infof("Received reading: Temp=%.1f°F moisture=%d", reading.Temperature, reading.Moisture)

	// No evaluation without a stored record.
	if err := g.store.InsertReading(ctx, reading); err != nil {
		metrics.ObserveIngest(source, metrics.ResultError, time.Since(start))
		log.Errorf("Store reading failed: %v", err)
		return Result{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	g.publish(ctx, models.Event{Type: models.EventReading, Payload: reading})

	decision := g.throttle.Evaluate(reading.Temperature, now)
	g.record(log, decision)

	if decision.Kind == throttle.Authorize {
		req := models.NotificationRequest{
			ID:           uuid.New(),
			Temperature:  reading.Temperature,
			Ordinal:      decision.Ordinal,
			AuthorizedAt: now,
		}
		g.dispatcher.Dispatch(req)
	}
	g.publish(ctx, models.Event{Type: models.EventDecision, Payload: decision})

	metrics.ObserveIngest(source, metrics.ResultSuccess, time.Since(start))
	return Result{Reading: reading, Decision: decision}, nil
}

func (g *Gateway) record(log *logrus.Entry, d throttle.Decision) {
	metrics.IncDecision(d.Kind.String(), string(d.Reason))
	switch d.Kind {
	case throttle.Authorize:
		log.Infof("[ALERT] Conditions met. Triggering alert #%d of %d", d.Ordinal, g.throttle.MaxAlerts())
	case throttle.Suppressed:
		switch d.Reason {
		case throttle.ReasonMaxReached:
			log.Infof("[ALERT] Max alerts (%d) already sent. Silencing further alerts for this event", g.throttle.MaxAlerts())
		case throttle.ReasonCooldown:
			log.Infof("[ALERT] In cooldown period. Not sending alert. Time left: %ds", d.RemainingSeconds())
		}
	case throttle.NoAction:
		if d.EventEnded {
			metrics.IncEventEnded()
			log.Infof("Temperature is back to a %s level. Resetting alert system", d.Tier)
		}
	}
}

func (g *Gateway) publish(ctx context.Context, event models.Event) {
	if g.publisher == nil {
		return
	}
	g.publisher.Publish(ctx, event)
}

// MultiPublisher forwards events to several publishers.
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher skips nil entries.
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish forwards event to every publisher.
func (m *MultiPublisher) Publish(ctx context.Context, event models.Event) {
	if m == nil {
		return
	}
	for _, p := range m.publishers {
		p.Publish(ctx, event)
	}
}
