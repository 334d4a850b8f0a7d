package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/assistant-power/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"timeout": func(secs int) string {
		if secs < 0 {
			return "disabled"
		}
		return fmt.Sprintf("%ds", secs)
	},
	"powerClass": func(s string) string {
		switch s {
		case "ACTIVE":
			return "on"
		case "LOW_POWER", "SHUTDOWN_PENDING":
			return "low"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Assistant Power</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.low { color: orange; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Assistant Power</h1>

<h2>Power</h2>
<table>
<tr><th>State</th><td id="power-state" class="{{powerClass (orUnknown (printf "%s" .Power))}}">{{orUnknown (printf "%s" .Power)}}</td></tr>
<tr><th>Timers</th><td>{{if .Enabled}}enabled{{else}}disabled{{end}}</td></tr>
<tr><th>Since activity</th><td>{{.Counters.SecondsSinceActivity}}s</td></tr>
<tr><th>In low power</th><td>{{.Counters.SecondsInLowPower}}s</td></tr>
</table>

<h2>Button</h2>
<table>
<tr><th>Phase</th><td id="button-phase">{{orUnknown (printf "%s" .Phase)}}</td></tr>
<tr><th>Ready</th><td>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
<tr><th>Clicks</th><td>{{.Gestures.Click}}</td></tr>
<tr><th>Long presses</th><td>{{.Gestures.LongPress}}</td></tr>
<tr><th>Long press releases</th><td>{{.Gestures.LongPressUp}}</td></tr>
<tr><th>Multi-clicks</th><td>{{.Gestures.MultiClick}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Idle timeout</th><td>{{timeout .Config.IdleTimeout}}</td></tr>
<tr><th>Shutdown timeout</th><td>{{timeout .Config.ShutdownTimeout}} ({{.Config.ShutdownMode}})</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
<tr><th>Multi-click</th><td>{{.Config.MultiClickCount}} within {{.Config.MultiClickMs}}ms</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
