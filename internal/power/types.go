// Package power contains the idle/shutdown timing logic for the device.
// This package has NO external dependencies (no GPIO, MQTT, OS, or clocks).
// Time advances only through Tick, one call per scheduling interval.
package power

import (
	"errors"
	"fmt"
)

// State represents the power state of the device.
type State string

const (
	StateActive          State = "ACTIVE"
	StateLowPower        State = "LOW_POWER"
	StateShutdownPending State = "SHUTDOWN_PENDING"
	StateOff             State = "OFF"
)

// Disabled turns off a timeout when used as IdleTimeout or ShutdownTimeout.
const Disabled = -1

// ShutdownMode selects which counter the shutdown timeout is measured against.
type ShutdownMode string

const (
	// ShutdownAfterLowPower counts seconds spent in LowPower.
	ShutdownAfterLowPower ShutdownMode = "low-power"
	// ShutdownAfterIdle counts seconds since the last activity, including
	// the time spent Active before dozing off.
	ShutdownAfterIdle ShutdownMode = "idle"
)

var (
	// ErrInvalidTimeout is returned for timeouts below Disabled.
	ErrInvalidTimeout = errors.New("invalid timeout")
	// ErrInvalidMode is returned for an unknown ShutdownMode.
	ErrInvalidMode = errors.New("invalid shutdown mode")
	// ErrNotPending is returned by MarkOff outside ShutdownPending.
	ErrNotPending = errors.New("shutdown not pending")
)

// Config holds the timing configuration. It is copied by New and never
// changes afterwards.
type Config struct {
	IdleTimeout     int // seconds of inactivity before LowPower, or Disabled
	ShutdownTimeout int // seconds before ShutdownPending, or Disabled
	Mode            ShutdownMode
}

// Validate reports the first configuration error, if any.
func (c Config) Validate() error {
	if c.IdleTimeout < Disabled {
		return fmt.Errorf("idle timeout %d: %w", c.IdleTimeout, ErrInvalidTimeout)
	}
	if c.ShutdownTimeout < Disabled {
		return fmt.Errorf("shutdown timeout %d: %w", c.ShutdownTimeout, ErrInvalidTimeout)
	}
	switch c.Mode {
	case "", ShutdownAfterLowPower, ShutdownAfterIdle:
	default:
		return fmt.Errorf("%q: %w", c.Mode, ErrInvalidMode)
	}
	return nil
}

// Counters is a point-in-time copy of the controller's activity counters.
type Counters struct {
	SecondsSinceActivity int
	SecondsInLowPower    int
	Uptime               int
}

// Transition records a state change, used for logging and publishing.
type Transition struct {
	From   State
	To     State
	Reason string // "idle-timeout", "shutdown-timeout", "wake", "shutdown-request", "off"
}
