package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/assistant-power/internal/gesture"
	"github.com/sweeney/assistant-power/internal/power"
)

func TestFormatPowerPayload(t *testing.T) {
	event := PowerEvent{
		Timestamp:  time.Date(2026, 1, 3, 14, 22, 1, 0, time.UTC),
		Transition: power.Transition{From: power.StateActive, To: power.StateLowPower, Reason: "idle-timeout"},
		Counters:   power.Counters{SecondsSinceActivity: 180, SecondsInLowPower: 0, Uptime: 600},
	}

	payload, err := FormatPowerPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"power":{"timestamp":"2026-01-03T14:22:01Z","from":"ACTIVE","to":"LOW_POWER","reason":"idle-timeout","seconds_since_activity":180,"seconds_in_low_power":0,"uptime_seconds":600}}`
	if string(payload) != expected {
		t.Errorf("payload mismatch:\nexpected: %s\ngot:      %s", expected, string(payload))
	}
}

func TestFormatGesturePayload(t *testing.T) {
	event := gesture.Event{
		Timestamp: time.Date(2026, 1, 3, 14, 22, 1, 0, time.UTC),
		Type:      gesture.EventMultiClick,
		Count:     3,
	}

	payload, err := FormatGesturePayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"button":{"timestamp":"2026-01-03T14:22:01Z","event":"MULTI_CLICK","count":3}}`
	if string(payload) != expected {
		t.Errorf("payload mismatch:\nexpected: %s\ngot:      %s", expected, string(payload))
	}
}

func TestFormatGesturePayloadOmitsZeroCount(t *testing.T) {
	payload, err := FormatGesturePayload(gesture.Event{
		Timestamp: time.Date(2026, 1, 3, 14, 22, 1, 0, time.UTC),
		Type:      gesture.EventLongPress,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"button":{"timestamp":"2026-01-03T14:22:01Z","event":"LONG_PRESS"}}`
	if string(payload) != expected {
		t.Errorf("payload mismatch:\nexpected: %s\ngot:      %s", expected, string(payload))
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	ts := time.Date(2026, 1, 3, 9, 0, 0, 0, loc)

	payload, err := FormatGesturePayload(gesture.Event{Timestamp: ts, Type: gesture.EventClick, Count: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed GesturePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Button.Timestamp != "2026-01-03T14:00:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Button.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-01T08:00:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("payload mismatch:\nexpected: %s\ngot:      %s", expected, string(payload))
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Event:     "HEARTBEAT",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-01T08:00:00Z","event":"HEARTBEAT"}}`
	if string(payload) != expected {
		t.Errorf("payload mismatch:\nexpected: %s\ngot:      %s", expected, string(payload))
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)

	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if err := f.PublishPower(PowerEvent{Timestamp: ts, Transition: power.Transition{From: power.StateActive, To: power.StateLowPower}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishGesture(gesture.Event{Timestamp: ts, Type: gesture.EventClick, Count: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.PowerEvents) != 1 {
		t.Errorf("expected 1 power event, got %d", len(f.PowerEvents))
	}
	if len(f.GestureEvents) != 1 {
		t.Errorf("expected 1 gesture event, got %d", len(f.GestureEvents))
	}
	if len(f.Payloads) != 2 {
		t.Errorf("expected 2 payloads, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")
	f.PublishSystemError = errors.New("broker down")

	if err := f.PublishPower(PowerEvent{}); err == nil {
		t.Error("expected PublishPower error")
	}
	if err := f.PublishGesture(gesture.Event{}); err == nil {
		t.Error("expected PublishGesture error")
	}
	if err := f.PublishSystem(SystemEvent{}); err == nil {
		t.Error("expected PublishSystem error")
	}
	if len(f.PowerEvents)+len(f.GestureEvents)+len(f.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.PublishPower(PowerEvent{})
	f.PublishGesture(gesture.Event{})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()

	if f.PowerEvents != nil || f.GestureEvents != nil || f.Payloads != nil {
		t.Error("events should be cleared")
	}
	if f.SystemEvents != nil || f.SystemPayloads != nil {
		t.Error("system events should be cleared")
	}
	if f.Closed || f.Connected {
		t.Error("flags should be cleared")
	}
}

func TestFakePublisherSatisfiesInterfaces(t *testing.T) {
	var _ Publisher = NewFakePublisher()
	var _ ConnectionStatus = NewFakePublisher()
	var _ Publisher = (*RealPublisher)(nil)
	var _ ConnectionStatus = (*RealPublisher)(nil)
}
