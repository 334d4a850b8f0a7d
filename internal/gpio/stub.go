//go:build !linux

package gpio

import (
	"context"
	"errors"
	"time"
)

// RealButton is not available on non-Linux platforms.
type RealButton struct {
	WakeupPath string
}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(pin int, debounce time.Duration) (*RealButton, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (b *RealButton) Read() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// WaitInactive is not implemented on non-Linux platforms.
func (b *RealButton) WaitInactive(ctx context.Context) error {
	return errors.New("gpio: not supported")
}

// Arm is not implemented on non-Linux platforms.
func (b *RealButton) Arm() error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *RealButton) Close() error {
	return nil
}
