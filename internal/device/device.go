// Package device declares the peripheral capabilities the power core drives.
// Implementations live elsewhere (MQTT bus, GPIO character device, syscalls);
// this package only holds the interfaces and test doubles.
package device

import "context"

// State is the coarse application state reported by the assistant.
type State string

const (
	StateUnknown     State = "unknown"
	StateStarting    State = "starting"
	StateConfiguring State = "configuring"
	StateIdle        State = "idle"
	StateConnecting  State = "connecting"
	StateListening   State = "listening"
	StateSpeaking    State = "speaking"
)

// Busy reports whether the assistant is mid-conversation.
func (s State) Busy() bool {
	return s == StateListening || s == StateSpeaking || s == StateConnecting
}

// Audio controls the codec paths.
type Audio interface {
	EnableInput(enable bool) error
	EnableOutput(enable bool) error
	// SetOutputVolume sets the output volume in percent (0-100).
	SetOutputVolume(volume int) error
	// WaitForAudioPlayback blocks until queued playback has finished or
	// ctx is done.
	WaitForAudioPlayback(ctx context.Context) error
}

// Display shows chat messages.
type Display interface {
	SetChatMessage(role, text string) error
}

// App is the assistant application.
type App interface {
	DeviceState() (State, error)
	ToggleChat() error
	Reboot() error
	StartConfiguration() error
}

// WakeSource is the single active-low GPIO that wakes the device from
// power-off.
type WakeSource interface {
	// WaitInactive blocks until the wake line reads inactive or ctx is done.
	WaitInactive(ctx context.Context) error
	// Arm configures the line as the wake source.
	Arm() error
}

// PowerOff cuts power. On success it does not return.
type PowerOff interface {
	PowerOff() error
}
