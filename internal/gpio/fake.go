package gpio

import (
	"context"
	"errors"
)

// FakeButton is a test double that returns scripted button levels.
type FakeButton struct {
	// Samples contains scripted pressed values to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeButton creates a FakeButton with the given samples.
func NewFakeButton(samples []bool) *FakeButton {
	return &FakeButton{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeButton) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the button to the first sample.
func (f *FakeButton) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeWakeSource records wake source calls.
type FakeWakeSource struct {
	// Held keeps WaitInactive blocked until ctx is done.
	Held bool

	// Calls lists "wait" and "arm" in call order.
	Calls []string

	Armed bool

	// ArmError, if set, will be returned by Arm()
	ArmError error
}

// WaitInactive returns immediately unless Held is set.
func (f *FakeWakeSource) WaitInactive(ctx context.Context) error {
	f.Calls = append(f.Calls, "wait")
	if f.Held {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// Arm marks the source as armed.
func (f *FakeWakeSource) Arm() error {
	f.Calls = append(f.Calls, "arm")
	if f.ArmError != nil {
		return f.ArmError
	}
	f.Armed = true
	return nil
}
