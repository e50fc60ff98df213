// Package throttle decides whether a danger-tier reading may trigger a new
// outbound notification.
//
// The machine has two implicit states: event-inactive (callCount == 0) and
// event-active (callCount > 0). Within an active event at most maxAlerts
// notifications are authorized, each at least cooldown apart. Any non-danger
// reading ends the event.
package throttle

import (
	"math"
	"sync"
	"time"

	"heat-alert-service/internal/threshold"
)

// Kind is the outcome of an evaluation.
type Kind int

const (
	NoAction Kind = iota
	Authorize
	Suppressed
)

func (k Kind) String() string {
	switch k {
	case NoAction:
		return "no_action"
	case Authorize:
		return "authorize"
	case Suppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// MarshalText lets kinds serialize as their names.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Reason explains a Suppressed decision.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonMaxReached Reason = "max-reached"
	ReasonCooldown   Reason = "cooldown"
)

// Decision is the result of a single Evaluate call.
type Decision struct {
	Kind        Kind           `json:"kind"`
	Tier        threshold.Tier `json:"tier"`
	Temperature float64        `json:"temperature"`
	// Ordinal is the 1-based alert number within the event; set on Authorize.
	Ordinal int    `json:"ordinal,omitempty"`
	Reason  Reason `json:"reason,omitempty"`
	// Remaining is the cooldown left when Reason is ReasonCooldown.
	Remaining time.Duration `json:"-"`
	// EventEnded is true only on the evaluation that reset an active event.
	EventEnded bool `json:"event_ended,omitempty"`
}

// RemainingSeconds rounds the remaining cooldown to whole seconds.
func (d Decision) RemainingSeconds() int {
	return int(math.Round(d.Remaining.Seconds()))
}

// State is a read-only copy of the alert event state.
type State struct {
	CallCount   int        `json:"call_count"`
	LastAlertAt *time.Time `json:"last_alert_at"`
	MaxAlerts   int        `json:"max_alerts"`
	Cooldown    float64    `json:"cooldown_seconds"`
}

// Active reports whether an alert event is in progress.
func (s State) Active() bool {
	return s.CallCount > 0
}

// Machine owns the process-wide alert event state. All reads and writes of
// that state go through Evaluate or Snapshot under mu.
type Machine struct {
	evaluator threshold.Evaluator
	maxAlerts int
	cooldown  time.Duration

	mu          sync.Mutex
	callCount   int
	lastAlertAt *time.Time
}

// New constructs a Machine in the event-inactive state.
func New(evaluator threshold.Evaluator, maxAlerts int, cooldown time.Duration) *Machine {
	return &Machine{
		evaluator: evaluator,
		maxAlerts: maxAlerts,
		cooldown:  cooldown,
	}
}

// Evaluate classifies temperature and atomically applies the throttle rules.
// On Authorize the count and timestamp are updated before returning so that
// concurrent callers observe the consumed slot.
func (m *Machine) Evaluate(temperature float64, now time.Time) Decision {
	tier := m.evaluator.Tier(temperature)
	d := Decision{Tier: tier, Temperature: temperature}

	m.mu.Lock()
	defer m.mu.Unlock()

	if tier != threshold.Danger {
		if m.callCount > 0 {
			m.callCount = 0
			m.lastAlertAt = nil
			d.EventEnded = true
		}
		d.Kind = NoAction
		return d
	}

	if m.callCount >= m.maxAlerts {
		d.Kind = Suppressed
		d.Reason = ReasonMaxReached
		return d
	}

	if m.lastAlertAt != nil {
		if elapsed := now.Sub(*m.lastAlertAt); elapsed < m.cooldown {
			d.Kind = Suppressed
			d.Reason = ReasonCooldown
			d.Remaining = m.cooldown - elapsed
			return d
		}
	}

	m.callCount++
	at := now
	m.lastAlertAt = &at
	d.Kind = Authorize
	d.Ordinal = m.callCount
	return d
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		CallCount: m.callCount,
		MaxAlerts: m.maxAlerts,
		Cooldown:  m.cooldown.Seconds(),
	}
	if m.lastAlertAt != nil {
		at := *m.lastAlertAt
		s.LastAlertAt = &at
	}
	return s
}

// MaxAlerts returns the per-event alert cap.
func (m *Machine) MaxAlerts() int {
	return m.maxAlerts
}
