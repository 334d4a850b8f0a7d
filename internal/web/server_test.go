package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/assistant-power/internal/gesture"
	"github.com/sweeney/assistant-power/internal/power"
	"github.com/sweeney/assistant-power/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		IdleTimeout:     180,
		ShutdownTimeout: 300,
		ShutdownMode:    "low-power",
		LongPressMs:     1000,
		MultiClickMs:    500,
		MultiClickCount: 3,
		PollMs:          10,
		TickMs:          1000,
		HeartbeatMs:     900000,
		Broker:          "tcp://192.168.1.200:1883",
		HTTPAddr:        ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.UpdatePower(power.StateActive, true, power.Counters{SecondsSinceActivity: 12, Uptime: 60})
	tr.UpdateGesture(gesture.PhaseIdle, true, gesture.EventCounts{Click: 5, MultiClick: 2})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Power != "ACTIVE" {
		t.Errorf("Power: got %q, want ACTIVE", sj.Status.Power)
	}
	if !sj.Status.Enabled {
		t.Error("expected Enabled=true")
	}
	if sj.Status.Counters.SecondsSinceActivity != 12 {
		t.Errorf("SecondsSinceActivity: got %d, want 12", sj.Status.Counters.SecondsSinceActivity)
	}
	if !sj.Status.Button.Ready {
		t.Error("expected Button.Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Gestures.Click != 5 {
		t.Errorf("Gestures.Click: got %d, want 5", sj.Status.Gestures.Click)
	}
	if sj.Status.Gestures.MultiClick != 2 {
		t.Errorf("Gestures.MultiClick: got %d, want 2", sj.Status.Gestures.MultiClick)
	}
	if sj.Status.Config == nil {
		t.Fatal("expected config block")
	}
	if sj.Status.Config.IdleTimeout != 180 {
		t.Errorf("Config.IdleTimeout: got %d, want 180", sj.Status.Config.IdleTimeout)
	}
	if sj.Status.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Config.Broker: got %q", sj.Status.Config.Broker)
	}
}

func TestJSONUnknownStateBeforeUpdate(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Power != "UNKNOWN" {
		t.Errorf("Power before update: got %q, want UNKNOWN", sj.Status.Power)
	}
	if sj.Status.Button.Ready {
		t.Error("expected Button.Ready=false before baseline")
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.UpdatePower(power.StateLowPower, true, power.Counters{SecondsInLowPower: 30})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "LOW_POWER") {
		t.Error("expected LOW_POWER in page")
	}
	if !strings.Contains(string(body), `class="low"`) {
		t.Error("expected low power styling")
	}
}

func TestHTMLShowsDisabledTimeouts(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, status.Config{IdleTimeout: power.Disabled, ShutdownTimeout: power.Disabled})
	ts := httptest.NewServer(New(":0", tr).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if strings.Count(string(body), "disabled") < 2 {
		t.Errorf("expected disabled timeouts in page:\n%s", body)
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.MQTT.Connected {
		t.Error("expected MQTT disconnected initially")
	}

	tr.UpdatePower(power.StateShutdownPending, true, power.Counters{})
	tr.UpdateGesture(gesture.PhaseLongPressFired, true, gesture.EventCounts{LongPress: 1})
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.Power != "SHUTDOWN_PENDING" {
		t.Errorf("Power: got %q, want SHUTDOWN_PENDING", sj2.Status.Power)
	}
	if sj2.Status.Button.Phase != string(gesture.PhaseLongPressFired) {
		t.Errorf("Button.Phase: got %q", sj2.Status.Button.Phase)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func getPower(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url + "/power")
	if err != nil {
		t.Fatalf("GET /power: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type: got %q, want text/plain", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestPowerEndpointLowPower(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.UpdatePower(power.StateLowPower, true, power.Counters{SecondsSinceActivity: 200, SecondsInLowPower: 20, Uptime: 250})
	tr.UpdateGesture(gesture.PhaseIdle, true, gesture.EventCounts{})

	code, body := getPower(t, ts.URL)
	if code != http.StatusOK {
		t.Errorf("status: got %d, want 200", code)
	}
	for _, line := range []string{
		"state=LOW_POWER\n",
		"enabled=true\n",
		"seconds_since_activity=200\n",
		"seconds_in_low_power=20\n",
		"button_ready=true\n",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("expected %q in body:\n%s", line, body)
		}
	}
}

func TestPowerEndpointUnavailable(t *testing.T) {
	ts, tr := newTestServer(t)

	code, body := getPower(t, ts.URL)
	if code != http.StatusServiceUnavailable {
		t.Errorf("before first tick: got %d, want 503", code)
	}
	if !strings.HasPrefix(body, "state=UNKNOWN\n") {
		t.Errorf("expected UNKNOWN state, got:\n%s", body)
	}

	tr.UpdatePower(power.StateShutdownPending, true, power.Counters{})
	if code, _ := getPower(t, ts.URL); code != http.StatusOK {
		t.Errorf("shutdown pending: got %d, want 200", code)
	}

	tr.UpdatePower(power.StateOff, true, power.Counters{})
	code, body = getPower(t, ts.URL)
	if code != http.StatusServiceUnavailable {
		t.Errorf("off: got %d, want 503", code)
	}
	if !strings.HasPrefix(body, "state=OFF\n") {
		t.Errorf("expected OFF state, got:\n%s", body)
	}
}

func TestEndpointsAreReadOnly(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/", "/index.json", "/power"} {
		resp, err := http.Post(ts.URL+path, "text/plain", strings.NewReader("OFF"))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, resp.StatusCode)
		}
		if allow := resp.Header.Get("Allow"); allow != "GET, HEAD" {
			t.Errorf("POST %s: Allow got %q", path, allow)
		}
	}
}
