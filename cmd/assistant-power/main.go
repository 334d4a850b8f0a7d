// Command assistant-power drives the voice assistant's power ladder from its
// push button: clicks and long presses are recognized, idle time puts the
// device into low power and eventually powers it off.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/assistant-power/internal/board"
	"github.com/sweeney/assistant-power/internal/device"
	"github.com/sweeney/assistant-power/internal/gesture"
	"github.com/sweeney/assistant-power/internal/gpio"
	"github.com/sweeney/assistant-power/internal/mqtt"
	"github.com/sweeney/assistant-power/internal/power"
	"github.com/sweeney/assistant-power/internal/status"
	"github.com/sweeney/assistant-power/internal/web"
)

type options struct {
	power           power.Config
	gesture         gesture.Config
	multiClickCount int
	poll            time.Duration
	tick            time.Duration
	debounce        time.Duration
	broker          string
	heartbeat       time.Duration
	pinButton       int
	pinWake         int
	wakeupPath      string
	httpAddr        string
	volume          int
	playbackTimeout time.Duration
	dryRun          bool
	printState      bool
}

func main() {
	var o options
	var mode string
	flag.IntVar(&o.power.IdleTimeout, "idle-timeout", 180, "Seconds idle before low power (-1 to disable)")
	flag.IntVar(&o.power.ShutdownTimeout, "shutdown-timeout", 300, "Seconds before power-off (-1 to disable)")
	flag.StringVar(&mode, "shutdown-mode", string(power.ShutdownAfterLowPower), `Shutdown counter: "low-power" (time in low power) or "idle" (time since activity)`)
	flag.DurationVar(&o.gesture.LongPress, "long-press", gesture.DefaultLongPress, "Hold duration for a long press")
	flag.DurationVar(&o.gesture.MultiClickWindow, "multi-click-window", gesture.DefaultMultiClickWindow, "Max gap between clicks of a sequence")
	flag.IntVar(&o.multiClickCount, "multi-click-count", board.DefaultMultiClickCount, "Clicks that start configuration")
	flag.DurationVar(&o.poll, "poll", 10*time.Millisecond, "Button polling interval")
	flag.DurationVar(&o.tick, "tick", time.Second, "Power timer tick")
	flag.DurationVar(&o.debounce, "debounce", 20*time.Millisecond, "Kernel debounce for the button line (0 to disable)")
	flag.StringVar(&o.broker, "broker", "tcp://127.0.0.1:1883", "MQTT broker address")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.IntVar(&o.pinButton, "pin-button", gpio.DefaultPinButton, "BCM pin number for the button")
	flag.IntVar(&o.pinWake, "pin-wake", gpio.DefaultPinButton, "BCM pin number for the wake line")
	flag.StringVar(&o.wakeupPath, "wakeup", "", "sysfs power/wakeup attribute to enable when arming (empty to skip)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.IntVar(&o.volume, "volume", board.DefaultVolume, "Output volume restored on wake")
	flag.DurationVar(&o.playbackTimeout, "playback-timeout", board.DefaultPlaybackTimeout, "Max wait for audio to finish before power-off")
	flag.BoolVar(&o.dryRun, "dry-run", false, "Run the shutdown sequence without powering off")
	flag.BoolVar(&o.printState, "print-state", false, "Print current button state and exit")

	flag.Parse()
	o.power.Mode = power.ShutdownMode(mode)

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	// Validate timing before touching hardware
	ctrl, err := power.New(o.power)
	if err != nil {
		return err
	}
	rec, err := gesture.New(o.gesture)
	if err != nil {
		return err
	}

	button, err := gpio.NewRealButton(o.pinButton, o.debounce)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer button.Close()

	if o.printState {
		pressed, err := button.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("button: %s\n", buttonString(pressed))
		return nil
	}

	var wake device.WakeSource = button
	if o.pinWake != o.pinButton {
		wakeLine, err := gpio.NewRealButton(o.pinWake, 0)
		if err != nil {
			return fmt.Errorf("init wake gpio: %w", err)
		}
		defer wakeLine.Close()
		wakeLine.WakeupPath = o.wakeupPath
		wake = wakeLine
	} else {
		button.WakeupPath = o.wakeupPath
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(o.broker)
	defer publisher.Close()
	bus := mqtt.NewBus(publisher.Client())
	publisher.OnConnect(bus.Subscribe)

	brd, err := board.New(ctrl, rec, board.Capabilities{
		Audio:    bus,
		Display:  bus,
		App:      bus,
		Wake:     wake,
		PowerOff: board.SyscallPowerOff{DryRun: o.dryRun},
	}, board.Options{
		Volume:          o.volume,
		PlaybackTimeout: o.playbackTimeout,
		MultiClickCount: o.multiClickCount,
	})
	if err != nil {
		return err
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		IdleTimeout:     ctrl.Config().IdleTimeout,
		ShutdownTimeout: ctrl.Config().ShutdownTimeout,
		ShutdownMode:    string(ctrl.Config().Mode),
		LongPressMs:     o.gesture.LongPress.Milliseconds(),
		MultiClickMs:    o.gesture.MultiClickWindow.Milliseconds(),
		MultiClickCount: o.multiClickCount,
		PollMs:          o.poll.Milliseconds(),
		TickMs:          o.tick.Milliseconds(),
		HeartbeatMs:     o.heartbeat.Milliseconds(),
		Broker:          o.broker,
		HTTPAddr:        o.httpAddr,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: idle=%ds shutdown=%ds mode=%s poll=%v broker=%s heartbeat=%v",
		o.power.IdleTimeout, o.power.ShutdownTimeout, ctrl.Config().Mode, o.poll, o.broker, o.heartbeat)

	pollTicker := time.NewTicker(o.poll)
	defer pollTicker.Stop()
	powerTicker := time.NewTicker(o.tick)
	defer powerTicker.Stop()

	var heartbeatC <-chan time.Time
	if o.heartbeat > 0 {
		hb := time.NewTicker(o.heartbeat)
		defer hb.Stop()
		heartbeatC = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d := &daemon{
		button:     button,
		ctrl:       ctrl,
		rec:        rec,
		board:      brd,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		now:        time.Now,
	}
	return d.runLoop(pollTicker.C, powerTicker.C, heartbeatC, sigCh)
}

// daemon owns everything the run loop touches. All of it is driven from the
// loop goroutine; only the tracker is read concurrently.
type daemon struct {
	button     gpio.Button
	ctrl       *power.Controller
	rec        *gesture.Recognizer
	board      *board.Board
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	now        func() time.Time
}

func (d *daemon) runLoop(poll, tick, heartbeat <-chan time.Time, sig <-chan os.Signal) error {
	d.ctrl.OnTransition(d.publishTransition)
	d.board.Start()
	d.updateStatus()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			d.publishShutdown(signalName(s))
			return nil

		case <-poll:
			t := d.now()
			var events []gesture.Event
			pressed, err := d.button.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				// Keep the hold and window timers running.
				events = d.rec.Tick(t)
			} else {
				events = d.rec.Process(gesture.Input{Pressed: pressed, Time: t})
			}

			for _, event := range events {
				log.Printf("gesture: %s", describe(event))
				if err := d.publisher.PublishGesture(event); err != nil {
					log.Printf("publish error: %v", err)
				}
			}

		case <-tick:
			d.ctrl.Tick()

		case <-heartbeat:
			c := d.ctrl.Counters()
			log.Printf("heartbeat: power=%s idle=%ds uptime=%ds", d.ctrl.State(), c.SecondsSinceActivity, c.Uptime)
			d.updateStatus()
			hbEvent := mqtt.SystemEvent{
				Timestamp:  d.now(),
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(d.tracker.Snapshot(), "HEARTBEAT", ""),
			}
			if err := d.publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}

		d.updateStatus()

		// Only reached in dry-run mode or when the power-off syscall failed.
		if d.board.PoweredOff() {
			d.publishShutdown("power-off")
			return d.board.ShutdownError()
		}
	}
}

func (d *daemon) publishTransition(tr power.Transition) {
	log.Printf("power: %s -> %s (%s)", tr.From, tr.To, tr.Reason)
	event := mqtt.PowerEvent{
		Timestamp:  d.now(),
		Transition: tr,
		Counters:   d.ctrl.Counters(),
	}
	if err := d.publisher.PublishPower(event); err != nil {
		log.Printf("publish error: %v", err)
	}
}

func (d *daemon) publishShutdown(reason string) {
	d.updateStatus()
	event := mqtt.SystemEvent{
		Timestamp:  d.now(),
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", reason),
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// updateStatus refreshes the tracker for HTTP and system event consumers.
func (d *daemon) updateStatus() {
	d.tracker.UpdatePower(d.ctrl.State(), d.ctrl.Enabled(), d.ctrl.Counters())
	d.tracker.UpdateGesture(d.rec.Phase(), d.rec.IsBaselined(), d.rec.EventCountsSnapshot())
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func describe(e gesture.Event) string {
	if e.Type == gesture.EventMultiClick {
		return fmt.Sprintf("%s x%d", e.Type, e.Count)
	}
	return string(e.Type)
}

func buttonString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
