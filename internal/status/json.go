package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Power         string       `json:"power"`
	Enabled       bool         `json:"enabled"`
	Button        ButtonJSON   `json:"button"`
	Counters      CountersJSON `json:"counters"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Gestures      GesturesJSON `json:"gesture_counts"`
	Config        *ConfigJSON  `json:"config,omitempty"`
}

// ButtonJSON reports the recognizer state.
type ButtonJSON struct {
	Phase string `json:"phase"`
	Ready bool   `json:"ready"`
}

// CountersJSON is the JSON representation of the power counters.
type CountersJSON struct {
	SecondsSinceActivity int `json:"seconds_since_activity"`
	SecondsInLowPower    int `json:"seconds_in_low_power"`
	ActiveSeconds        int `json:"active_seconds"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// GesturesJSON is the JSON representation of gesture counts.
type GesturesJSON struct {
	Click       int `json:"click"`
	LongPress   int `json:"long_press"`
	LongPressUp int `json:"long_press_up"`
	MultiClick  int `json:"multi_click"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	IdleTimeout     int    `json:"idle_timeout"`
	ShutdownTimeout int    `json:"shutdown_timeout"`
	ShutdownMode    string `json:"shutdown_mode"`
	LongPressMs     int64  `json:"long_press_ms"`
	MultiClickMs    int64  `json:"multi_click_ms"`
	MultiClickCount int    `json:"multi_click_count"`
	PollMs          int64  `json:"poll_ms"`
	TickMs          int64  `json:"tick_ms"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Broker          string `json:"broker"`
	HTTPAddr        string `json:"http_addr"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Power:   orUnknown(string(snap.Power)),
		Enabled: snap.Enabled,
		Button: ButtonJSON{
			Phase: orUnknown(string(snap.Phase)),
			Ready: snap.Baselined,
		},
		Counters: CountersJSON{
			SecondsSinceActivity: snap.Counters.SecondsSinceActivity,
			SecondsInLowPower:    snap.Counters.SecondsInLowPower,
			ActiveSeconds:        snap.Counters.Uptime,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Gestures: GesturesJSON{
			Click:       snap.Gestures.Click,
			LongPress:   snap.Gestures.LongPress,
			LongPressUp: snap.Gestures.LongPressUp,
			MultiClick:  snap.Gestures.MultiClick,
		},
	}
}

func buildConfig(cfg Config) *ConfigJSON {
	return &ConfigJSON{
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		ShutdownMode:    cfg.ShutdownMode,
		LongPressMs:     cfg.LongPressMs,
		MultiClickMs:    cfg.MultiClickMs,
		MultiClickCount: cfg.MultiClickCount,
		PollMs:          cfg.PollMs,
		TickMs:          cfg.TickMs,
		HeartbeatMs:     cfg.HeartbeatMs,
		Broker:          cfg.Broker,
		HTTPAddr:        cfg.HTTPAddr,
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	inner.Config = buildConfig(snap.Config)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
// Only STARTUP carries the config block.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	if event == "STARTUP" {
		inner.Config = buildConfig(snap.Config)
	}

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
