//go:build linux

package gpio

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
)

// RealButton reads a push button from actual hardware using the Linux GPIO
// character device. The same line doubles as the wake source.
type RealButton struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	pin  int

	// WakeupPath, if set, is a sysfs power/wakeup attribute written with
	// "enabled" when the line is armed.
	WakeupPath string
}

// NewRealButton requests pin as an active-low input with pull-up.
// A non-zero debounce is applied by the kernel, so Read only ever sees
// settled levels.
func NewRealButton(pin int, debounce time.Duration) (*RealButton, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("assistant-power"),
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}

	line, err := chip.RequestLine(pin, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &RealButton{
		chip: chip,
		line: line,
		pin:  pin,
	}, nil
}

// Read returns true while the button is held.
// Inverts raw GPIO: raw low (0) = pressed, raw high (1) = released.
func (b *RealButton) Read() (bool, error) {
	raw, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return raw == 0, nil
}

// WaitInactive polls until the line reads high. A press still held at
// power-off would otherwise wake the device straight back up.
func (b *RealButton) WaitInactive(ctx context.Context) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		pressed, err := b.Read()
		if err != nil {
			return err
		}
		if !pressed {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wake pin %d still active: %w", b.pin, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Arm configures the line for falling-edge detection with pull-up and
// enables it as a system wakeup source.
func (b *RealButton) Arm() error {
	if err := b.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithFallingEdge); err != nil {
		return fmt.Errorf("arm wake pin %d: %w", b.pin, err)
	}
	if b.WakeupPath != "" {
		if err := os.WriteFile(b.WakeupPath, []byte("enabled"), 0o644); err != nil {
			return fmt.Errorf("enable wakeup %s: %w", b.WakeupPath, err)
		}
	}
	log.Printf("gpio: wake source armed on pin %d", b.pin)
	return nil
}

// Close releases GPIO resources.
// The line is left as input with pull-up so the button stays readable by
// the bootloader.
func (b *RealButton) Close() error {
	var err error
	if b.line != nil {
		err = multierr.Append(err, wrap("reconfigure button pin", b.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp)))
		err = multierr.Append(err, wrap("close button pin", b.line.Close()))
	}
	if b.chip != nil {
		err = multierr.Append(err, wrap("close chip", b.chip.Close()))
	}
	return err
}

func wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
