// Package board wires the gesture recognizer and the power controller to
// the device's peripherals.
package board

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/multierr"

	"github.com/sweeney/assistant-power/internal/device"
	"github.com/sweeney/assistant-power/internal/gesture"
	"github.com/sweeney/assistant-power/internal/power"
)

// Defaults for Options.
const (
	DefaultVolume          = 70
	DefaultPlaybackTimeout = 5 * time.Second
	DefaultWakeTimeout     = 10 * time.Second
	DefaultSleepMessage    = "Going to sleep, press the button to wake me"
	DefaultMultiClickCount = 3
)

// Capabilities are the peripherals the board drives. All are required.
type Capabilities struct {
	Audio    device.Audio
	Display  device.Display
	App      device.App
	Wake     device.WakeSource
	PowerOff device.PowerOff
}

func (c Capabilities) validate() error {
	switch {
	case c.Audio == nil:
		return fmt.Errorf("board: audio capability missing")
	case c.Display == nil:
		return fmt.Errorf("board: display capability missing")
	case c.App == nil:
		return fmt.Errorf("board: app capability missing")
	case c.Wake == nil:
		return fmt.Errorf("board: wake source missing")
	case c.PowerOff == nil:
		return fmt.Errorf("board: power-off capability missing")
	}
	return nil
}

// Options tune the board behaviour. Zero values select the defaults.
type Options struct {
	Volume          int           // output volume restored on wake
	PlaybackTimeout time.Duration // max wait for audio before power-off
	WakeTimeout     time.Duration // max wait for the wake line to release
	SleepMessage    string
	MultiClickCount int // clicks that enter configuration / reboot
}

func (o Options) withDefaults() Options {
	if o.Volume <= 0 {
		o.Volume = DefaultVolume
	}
	if o.PlaybackTimeout <= 0 {
		o.PlaybackTimeout = DefaultPlaybackTimeout
	}
	if o.WakeTimeout <= 0 {
		o.WakeTimeout = DefaultWakeTimeout
	}
	if o.SleepMessage == "" {
		o.SleepMessage = DefaultSleepMessage
	}
	if o.MultiClickCount <= 0 {
		o.MultiClickCount = DefaultMultiClickCount
	}
	return o
}

// Board owns the handler wiring between the recognizer, the controller and
// the peripherals.
type Board struct {
	ctrl *power.Controller
	rec  *gesture.Recognizer
	caps Capabilities
	opts Options

	shutdownErr error
	poweredOff  bool
}

// New registers all recognizer and controller handlers. The controller is
// left disabled until Start.
func New(ctrl *power.Controller, rec *gesture.Recognizer, caps Capabilities, opts Options) (*Board, error) {
	if err := caps.validate(); err != nil {
		return nil, err
	}
	b := &Board{
		ctrl: ctrl,
		rec:  rec,
		caps: caps,
		opts: opts.withDefaults(),
	}

	rec.OnClick(b.handleClick)
	rec.OnLongPress(b.handleLongPress)
	rec.OnLongPressUp(b.handleLongPressUp)
	rec.OnMultipleClick(b.handleMultiClick, b.opts.MultiClickCount)

	ctrl.OnEnterSleep(b.enterSleep)
	ctrl.OnExitSleep(b.exitSleep)
	ctrl.OnShutdownRequest(b.shutdown)
	ctrl.SetBusyCheck(b.busy)

	return b, nil
}

// Start enables the idle timers. Call once the peripherals are up.
func (b *Board) Start() {
	b.ctrl.SetEnabled(true)
	log.Printf("board: power timers enabled (idle=%ds shutdown=%ds mode=%s)",
		b.ctrl.Config().IdleTimeout, b.ctrl.Config().ShutdownTimeout, b.ctrl.Config().Mode)
}

// PoweredOff reports whether the shutdown sequence reached power-off.
func (b *Board) PoweredOff() bool {
	return b.poweredOff
}

// ShutdownError returns the teardown failures of the last shutdown, if any.
func (b *Board) ShutdownError() error {
	return b.shutdownErr
}

func (b *Board) busy() bool {
	state, err := b.caps.App.DeviceState()
	if err != nil {
		return false
	}
	return state.Busy()
}

func (b *Board) handleClick() {
	log.Printf("board: button clicked")
	b.ctrl.WakeUp()

	state, err := b.caps.App.DeviceState()
	if err != nil {
		log.Printf("board: read app state: %v", err)
	}
	if state == device.StateStarting {
		// Never got online; provision before the chat toggle.
		logErr("start configuration", b.caps.App.StartConfiguration())
	}
	logErr("toggle chat", b.caps.App.ToggleChat())
}

func (b *Board) handleLongPress() {
	log.Printf("board: long press, release to power off")
	b.ctrl.WakeUp()
}

func (b *Board) handleLongPressUp() {
	log.Printf("board: long press released, powering off")
	b.ctrl.RequestShutdown()
}

func (b *Board) handleMultiClick() {
	log.Printf("board: %d clicks", b.opts.MultiClickCount)
	b.ctrl.WakeUp()

	state, err := b.caps.App.DeviceState()
	if err != nil {
		log.Printf("board: read app state: %v", err)
	}
	if state == device.StateConfiguring {
		logErr("reboot", b.caps.App.Reboot())
		return
	}
	logErr("start configuration", b.caps.App.StartConfiguration())
}

func (b *Board) enterSleep() {
	log.Printf("board: entering low power")
	logErr("disable input", b.caps.Audio.EnableInput(false))
	logErr("disable output", b.caps.Audio.EnableOutput(false))
}

func (b *Board) exitSleep() {
	log.Printf("board: leaving low power")
	logErr("enable output", b.caps.Audio.EnableOutput(true))
	logErr("enable input", b.caps.Audio.EnableInput(true))
	logErr("restore volume", b.caps.Audio.SetOutputVolume(b.opts.Volume))
}

// shutdown tears the peripherals down and powers off. Every step is best
// effort: failures are logged and collected, and the sequence always
// reaches PowerOff.
func (b *Board) shutdown() {
	log.Printf("board: shutdown requested")
	var errs error
	step := func(what string, err error) {
		if err != nil {
			log.Printf("board: %s: %v", what, err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", what, err))
		}
	}

	step("show sleep message", b.caps.Display.SetChatMessage("system", b.opts.SleepMessage))

	ctx, cancel := context.WithTimeout(context.Background(), b.opts.PlaybackTimeout)
	step("wait for playback", b.caps.Audio.WaitForAudioPlayback(ctx))
	cancel()

	step("disable input", b.caps.Audio.EnableInput(false))
	step("disable output", b.caps.Audio.EnableOutput(false))

	ctx, cancel = context.WithTimeout(context.Background(), b.opts.WakeTimeout)
	step("wait for wake line release", b.caps.Wake.WaitInactive(ctx))
	cancel()

	step("arm wake source", b.caps.Wake.Arm())
	step("mark off", b.ctrl.MarkOff())

	b.poweredOff = true
	log.Printf("board: powering off")
	step("power off", b.caps.PowerOff.PowerOff())
	b.shutdownErr = errs
}

func logErr(what string, err error) {
	if err != nil {
		log.Printf("board: %s: %v", what, err)
	}
}
