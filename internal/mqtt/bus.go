package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/multierr"

	"github.com/sweeney/assistant-power/internal/device"
)

// Bus reaches the audio service, the display and the assistant application
// over MQTT. It implements device.Audio, device.Display and device.App.
type Bus struct {
	publish func(topic string, payload []byte) error

	mu       sync.Mutex
	appState device.State
	playing  bool
	idle     chan struct{} // closed while nothing is playing
}

// NewBus creates a bus on an existing client and subscribes to the state
// topics. Call Subscribe again after a reconnect.
func NewBus(client paho.Client) *Bus {
	b := newBus(func(topic string, payload []byte) error {
		if !client.IsConnectionOpen() {
			return ErrNotConnected
		}
		token := client.Publish(topic, 1, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish %s timeout", topic)
		}
		return token.Error()
	})
	b.Subscribe(client)
	return b
}

func newBus(publish func(topic string, payload []byte) error) *Bus {
	idle := make(chan struct{})
	close(idle)
	return &Bus{
		publish:  publish,
		appState: device.StateUnknown,
		idle:     idle,
	}
}

// Subscribe (re)subscribes to the application and audio state topics.
// Failures are logged; the bus keeps the last known states.
func (b *Bus) Subscribe(c paho.Client) {
	if !c.IsConnectionOpen() {
		return // resubscribed from the connect handler
	}
	if err := b.subscribe(c); err != nil {
		log.Printf("mqtt: %v", err)
	}
}

func (b *Bus) subscribe(c paho.Client) error {
	if !c.IsConnectionOpen() {
		return ErrNotConnected
	}
	subs := []struct {
		topic string
		set   func(string)
	}{
		{TopicAppState, b.setAppState},
		{TopicAudioState, b.setAudioState},
	}

	var errs error
	for _, sub := range subs {
		set := sub.set
		token := c.Subscribe(sub.topic, 1, func(_ paho.Client, m paho.Message) {
			set(string(m.Payload()))
		})
		if !token.WaitTimeout(publishTimeout) {
			errs = multierr.Append(errs, fmt.Errorf("subscribe %s timeout", sub.topic))
			continue
		}
		if err := token.Error(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("subscribe %s: %w", sub.topic, err))
		}
	}
	return errs
}

func (b *Bus) setAppState(s string) {
	state := device.State(strings.ToLower(strings.TrimSpace(s)))
	b.mu.Lock()
	b.appState = state
	b.mu.Unlock()
}

func (b *Bus) setAudioState(s string) {
	playing := strings.TrimSpace(s) == AudioPlaying

	b.mu.Lock()
	defer b.mu.Unlock()
	if playing == b.playing {
		return
	}
	b.playing = playing
	if playing {
		b.idle = make(chan struct{})
	} else {
		close(b.idle)
	}
}

func (b *Bus) send(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	if err := b.publish(topic, payload); err != nil {
		return fmt.Errorf("send %s: %w", topic, err)
	}
	return nil
}

// EnableInput switches the microphone path.
func (b *Bus) EnableInput(enable bool) error {
	return b.send(TopicAudioCmd, Command{Command: CmdEnableInput, Enable: &enable})
}

// EnableOutput switches the speaker path.
func (b *Bus) EnableOutput(enable bool) error {
	return b.send(TopicAudioCmd, Command{Command: CmdEnableOutput, Enable: &enable})
}

// SetOutputVolume sets the speaker volume, clamped to 0-100.
func (b *Bus) SetOutputVolume(volume int) error {
	if volume < 0 {
		volume = 0
	} else if volume > 100 {
		volume = 100
	}
	return b.send(TopicAudioCmd, Command{Command: CmdSetVolume, Volume: &volume})
}

// WaitForAudioPlayback blocks until the audio service reports idle.
func (b *Bus) WaitForAudioPlayback(ctx context.Context) error {
	b.mu.Lock()
	idle := b.idle
	b.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audio still playing: %w", ctx.Err())
	}
}

// SetChatMessage shows a chat line on the display.
func (b *Bus) SetChatMessage(role, text string) error {
	return b.send(TopicDisplayChat, ChatMessage{Role: role, Text: text})
}

// DeviceState returns the last state the application announced.
func (b *Bus) DeviceState() (device.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appState, nil
}

// ToggleChat starts or stops a conversation.
func (b *Bus) ToggleChat() error {
	return b.send(TopicAppCmd, Command{Command: CmdToggleChat})
}

// Reboot asks the application to restart the device.
func (b *Bus) Reboot() error {
	log.Printf("mqtt: requesting reboot")
	return b.send(TopicAppCmd, Command{Command: CmdReboot})
}

// StartConfiguration asks the application to enter network configuration.
func (b *Bus) StartConfiguration() error {
	return b.send(TopicAppCmd, Command{Command: CmdStartConfiguration})
}
