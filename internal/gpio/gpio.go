// Package gpio provides push-button reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

import "time"

// Button reads the push button level.
type Button interface {
	// Read returns true while the button is held down.
	// The raw GPIO value is inverted: raw low = pressed (active-low).
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinButton = 17 // Boot/talk button, also the wake line
)

// PollInterval is how often WaitInactive samples the line.
const PollInterval = 10 * time.Millisecond
