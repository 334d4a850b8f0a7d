// Package gesture classifies debounced button levels into clicks,
// long presses and multi-click sequences.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package gesture

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the recognizer's position in the press/release cycle.
type Phase string

const (
	PhaseIdle              Phase = "IDLE"
	PhasePressed           Phase = "PRESSED"
	PhaseLongPressFired    Phase = "LONG_PRESS_FIRED"
	PhaseWaitingMultiClick Phase = "WAITING_MULTI_CLICK"
)

// EventType identifies a recognized gesture.
type EventType string

const (
	EventClick       EventType = "CLICK"
	EventLongPress   EventType = "LONG_PRESS"
	EventLongPressUp EventType = "LONG_PRESS_UP"
	EventMultiClick  EventType = "MULTI_CLICK"
)

// Event is a recognized gesture.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Count     int // clicks in the sequence; set for CLICK and MULTI_CLICK
}

// Input is a single debounced sample of the button level.
type Input struct {
	Pressed bool // true = held down (already inverted from raw GPIO)
	Time    time.Time
}

// EventCounts tracks the number of each gesture since startup.
type EventCounts struct {
	Click       int
	LongPress   int
	LongPressUp int
	MultiClick  int
}

// Default timing, matching the stock button driver on the board.
const (
	DefaultLongPress        = 1 * time.Second
	DefaultMultiClickWindow = 500 * time.Millisecond
)

// ErrInvalidConfig is returned for non-positive durations.
var ErrInvalidConfig = errors.New("invalid gesture config")

// Config holds the gesture timing thresholds.
type Config struct {
	LongPress        time.Duration // hold duration that makes a press long
	MultiClickWindow time.Duration // max gap between clicks in one sequence
}

// Validate reports whether both durations are usable.
func (c Config) Validate() error {
	if c.LongPress <= 0 {
		return fmt.Errorf("long press %v: %w", c.LongPress, ErrInvalidConfig)
	}
	if c.MultiClickWindow <= 0 {
		return fmt.Errorf("multi-click window %v: %w", c.MultiClickWindow, ErrInvalidConfig)
	}
	return nil
}
