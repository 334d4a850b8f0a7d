package device

import (
	"context"
	"strconv"
)

// FakeAudio records audio calls for test assertions.
type FakeAudio struct {
	// Calls lists method calls in order, e.g. "input=false", "volume=70", "wait".
	Calls []string

	InputEnabled  bool
	OutputEnabled bool
	Volume        int

	// Err, if set, is returned by every method.
	Err error
}

// NewFakeAudio creates a FakeAudio with both paths enabled.
func NewFakeAudio() *FakeAudio {
	return &FakeAudio{InputEnabled: true, OutputEnabled: true}
}

// EnableInput records the call.
func (f *FakeAudio) EnableInput(enable bool) error {
	f.Calls = append(f.Calls, "input="+boolString(enable))
	if f.Err != nil {
		return f.Err
	}
	f.InputEnabled = enable
	return nil
}

// EnableOutput records the call.
func (f *FakeAudio) EnableOutput(enable bool) error {
	f.Calls = append(f.Calls, "output="+boolString(enable))
	if f.Err != nil {
		return f.Err
	}
	f.OutputEnabled = enable
	return nil
}

// SetOutputVolume records the call.
func (f *FakeAudio) SetOutputVolume(volume int) error {
	f.Calls = append(f.Calls, "volume="+strconv.Itoa(volume))
	if f.Err != nil {
		return f.Err
	}
	f.Volume = volume
	return nil
}

// WaitForAudioPlayback records the call and returns immediately.
func (f *FakeAudio) WaitForAudioPlayback(ctx context.Context) error {
	f.Calls = append(f.Calls, "wait")
	return f.Err
}

// FakeDisplay records chat messages.
type FakeDisplay struct {
	Messages []ChatMessage
	Err      error
}

// ChatMessage is a recorded SetChatMessage call.
type ChatMessage struct {
	Role string
	Text string
}

// SetChatMessage records the message.
func (f *FakeDisplay) SetChatMessage(role, text string) error {
	f.Messages = append(f.Messages, ChatMessage{Role: role, Text: text})
	return f.Err
}

// FakeApp is a scripted application.
type FakeApp struct {
	State State

	Toggles        int
	Reboots        int
	Configurations int

	// StateErr, if set, is returned by DeviceState.
	StateErr error
}

// DeviceState returns the scripted state.
func (f *FakeApp) DeviceState() (State, error) {
	if f.StateErr != nil {
		return StateUnknown, f.StateErr
	}
	return f.State, nil
}

// ToggleChat counts the call.
func (f *FakeApp) ToggleChat() error {
	f.Toggles++
	return nil
}

// Reboot counts the call.
func (f *FakeApp) Reboot() error {
	f.Reboots++
	return nil
}

// StartConfiguration counts the call and switches to configuring.
func (f *FakeApp) StartConfiguration() error {
	f.Configurations++
	f.State = StateConfiguring
	return nil
}

// FakePowerOff records power-off requests. Unlike the real thing it returns.
type FakePowerOff struct {
	Calls int
	Err   error
}

// PowerOff counts the call.
func (f *FakePowerOff) PowerOff() error {
	f.Calls++
	return f.Err
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
