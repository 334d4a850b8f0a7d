// Package mqtt provides MQTT publishing and the peripheral command bus,
// with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/assistant-power/internal/gesture"
	"github.com/sweeney/assistant-power/internal/power"
)

// Topics published by this daemon.
const (
	TopicPower   = "assistant/power/events"
	TopicGesture = "assistant/power/gestures"
	TopicSystem  = "assistant/power/system"
)

// Topics owned by the assistant application and its peripherals.
const (
	TopicAudioCmd    = "assistant/audio/cmd"
	TopicAudioState  = "assistant/audio/state"
	TopicDisplayChat = "assistant/display/chat"
	TopicAppCmd      = "assistant/app/cmd"
	TopicAppState    = "assistant/app/state"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishPower sends a power state transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishPower(event PowerEvent) error

	// PublishGesture sends a recognized button gesture to the broker.
	PublishGesture(event gesture.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// PowerEvent is a power state transition with the counters at that moment.
type PowerEvent struct {
	Timestamp  time.Time
	Transition power.Transition
	Counters   power.Counters
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "POWER_OFF"
	Reason     string // e.g., "SIGTERM", "idle-timeout" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// PowerPayload represents the MQTT payload for power transitions.
type PowerPayload struct {
	Power PowerPayloadInner `json:"power"`
}

// PowerPayloadInner contains the transition details.
type PowerPayloadInner struct {
	Timestamp            string `json:"timestamp"`
	From                 string `json:"from"`
	To                   string `json:"to"`
	Reason               string `json:"reason"`
	SecondsSinceActivity int    `json:"seconds_since_activity"`
	SecondsInLowPower    int    `json:"seconds_in_low_power"`
	UptimeSeconds        int    `json:"uptime_seconds"`
}

// FormatPowerPayload creates the JSON payload for a power transition.
func FormatPowerPayload(event PowerEvent) ([]byte, error) {
	return json.Marshal(PowerPayload{
		Power: PowerPayloadInner{
			Timestamp:            event.Timestamp.UTC().Format(time.RFC3339),
			From:                 string(event.Transition.From),
			To:                   string(event.Transition.To),
			Reason:               event.Transition.Reason,
			SecondsSinceActivity: event.Counters.SecondsSinceActivity,
			SecondsInLowPower:    event.Counters.SecondsInLowPower,
			UptimeSeconds:        event.Counters.Uptime,
		},
	})
}

// GesturePayload represents the MQTT payload for button gestures.
type GesturePayload struct {
	Button GesturePayloadInner `json:"button"`
}

// GesturePayloadInner contains the gesture details.
type GesturePayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Count     int    `json:"count,omitempty"`
}

// FormatGesturePayload creates the JSON payload for a gesture.
func FormatGesturePayload(event gesture.Event) ([]byte, error) {
	return json.Marshal(GesturePayload{
		Button: GesturePayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Count:     event.Count,
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// Command is a request sent to a peripheral or the application.
type Command struct {
	Command string `json:"command"`
	Enable  *bool  `json:"enable,omitempty"`
	Volume  *int   `json:"volume,omitempty"`
}

// ChatMessage is the payload for TopicDisplayChat.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Command names understood by the audio service and the application.
const (
	CmdEnableInput        = "enable_input"
	CmdEnableOutput       = "enable_output"
	CmdSetVolume          = "set_volume"
	CmdToggleChat         = "toggle_chat"
	CmdReboot             = "reboot"
	CmdStartConfiguration = "start_configuration"
)

// Audio state values on TopicAudioState.
const (
	AudioPlaying = "playing"
	AudioIdle    = "idle"
)
