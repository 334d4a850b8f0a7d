// Package web serves the assistant-power status page, its JSON form and a
// plain-text power endpoint for scripts on the device.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/sweeney/assistant-power/internal/power"
	"github.com/sweeney/assistant-power/internal/status"
)

// Server serves daemon state over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", readOnly(s.handleIndex))
	mux.HandleFunc("/index.html", readOnly(s.handleIndex))
	mux.HandleFunc("/index.json", readOnly(s.handleJSON))
	mux.HandleFunc("/power", readOnly(s.handlePower))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// readOnly rejects anything but GET and HEAD. Nothing here changes state;
// power control goes through the button or MQTT.
func readOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handlePower reports the power state as key=value lines. It answers 503
// until the controller has ticked once and after the device is off, so
// `curl -f` only succeeds while the assistant can respond.
func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()

	code := http.StatusOK
	if snap.Power == "" || snap.Power == power.StateOff {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)

	state := string(snap.Power)
	if state == "" {
		state = "UNKNOWN"
	}
	fmt.Fprintf(w, "state=%s\n", state)
	fmt.Fprintf(w, "enabled=%t\n", snap.Enabled)
	fmt.Fprintf(w, "seconds_since_activity=%d\n", snap.Counters.SecondsSinceActivity)
	fmt.Fprintf(w, "seconds_in_low_power=%d\n", snap.Counters.SecondsInLowPower)
	fmt.Fprintf(w, "button_ready=%t\n", snap.Baselined)
}
