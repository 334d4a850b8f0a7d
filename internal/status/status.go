// Package status provides a thread-safe status tracker for the assistant-power daemon.
// The run loop writes to it; HTTP handlers and MQTT system events read from it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/assistant-power/internal/gesture"
	"github.com/sweeney/assistant-power/internal/power"
)

// Config contains daemon configuration for display.
type Config struct {
	IdleTimeout     int
	ShutdownTimeout int
	ShutdownMode    string
	LongPressMs     int64
	MultiClickMs    int64
	MultiClickCount int
	PollMs          int64
	TickMs          int64
	HeartbeatMs     int64
	Broker          string
	HTTPAddr        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Power         power.State
	Enabled       bool
	Counters      power.Counters
	Phase         gesture.Phase
	Baselined     bool
	Gestures      gesture.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdatePower sets the controller state and counters.
// Called from the run loop after every power tick.
func (t *Tracker) UpdatePower(state power.State, enabled bool, counters power.Counters) {
	t.mu.Lock()
	t.snap.Power = state
	t.snap.Enabled = enabled
	t.snap.Counters = counters
	t.mu.Unlock()
}

// UpdateGesture sets the recognizer phase, baseline status and counts.
func (t *Tracker) UpdateGesture(phase gesture.Phase, baselined bool, counts gesture.EventCounts) {
	t.mu.Lock()
	t.snap.Phase = phase
	t.snap.Baselined = baselined
	t.snap.Gestures = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
