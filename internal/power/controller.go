package power

// Controller tracks idle time and schedules power transitions.
// Not safe for concurrent use; all calls must come from the tick goroutine.
type Controller struct {
	cfg     Config
	state   State
	enabled bool

	sinceActivity int
	inLowPower    int
	uptime        int

	busy func() bool

	onEnterSleep func()
	onExitSleep  func()
	onShutdown   func()
	onTransition func(Transition)
}

// New creates a controller in StateActive with ticking disabled.
func New(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == "" {
		cfg.Mode = ShutdownAfterLowPower
	}
	return &Controller{
		cfg:   cfg,
		state: StateActive,
	}, nil
}

// OnEnterSleep sets the handler fired on Active -> LowPower.
func (c *Controller) OnEnterSleep(fn func()) { c.onEnterSleep = fn }

// OnExitSleep sets the handler fired on LowPower -> Active.
func (c *Controller) OnExitSleep(fn func()) { c.onExitSleep = fn }

// OnShutdownRequest sets the handler fired on entry to ShutdownPending.
// The handler is expected to power the device off and may block while it
// tears peripherals down.
func (c *Controller) OnShutdownRequest(fn func()) { c.onShutdown = fn }

// OnTransition sets an observer called on every state change, before the
// transition-specific handler.
func (c *Controller) OnTransition(fn func(Transition)) { c.onTransition = fn }

// SetBusyCheck installs a predicate consulted on each Active tick. While it
// reports true the idle counter stays at zero.
func (c *Controller) SetBusyCheck(fn func() bool) { c.busy = fn }

// SetEnabled starts or stops tick processing. The current state is kept.
func (c *Controller) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// Enabled reports whether ticks are processed.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// State returns the current power state.
func (c *Controller) State() State {
	return c.state
}

// Config returns the timing configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Counters returns a copy of the activity counters.
func (c *Controller) Counters() Counters {
	return Counters{
		SecondsSinceActivity: c.sinceActivity,
		SecondsInLowPower:    c.inLowPower,
		Uptime:               c.uptime,
	}
}

// Tick advances the counters by one interval and fires any timeout that
// the new counter values reach.
func (c *Controller) Tick() {
	if !c.enabled {
		return
	}

	switch c.state {
	case StateActive:
		c.uptime++
		if c.busy != nil && c.busy() {
			c.sinceActivity = 0
			return
		}
		c.sinceActivity++
		if c.cfg.IdleTimeout != Disabled && c.sinceActivity >= c.cfg.IdleTimeout {
			c.inLowPower = 0
			c.transition(StateLowPower, "idle-timeout")
			fire(c.onEnterSleep)
		}

	case StateLowPower:
		c.uptime++
		c.sinceActivity++
		c.inLowPower++
		if c.shutdownDue() {
			c.transition(StateShutdownPending, "shutdown-timeout")
			fire(c.onShutdown)
		}
	}
}

func (c *Controller) shutdownDue() bool {
	if c.cfg.ShutdownTimeout == Disabled {
		return false
	}
	if c.cfg.Mode == ShutdownAfterIdle {
		return c.sinceActivity >= c.cfg.ShutdownTimeout
	}
	return c.inLowPower >= c.cfg.ShutdownTimeout
}

// WakeUp records activity. From LowPower it returns to Active and fires the
// exit-sleep handler; in Active it only resets the idle counter.
func (c *Controller) WakeUp() {
	switch c.state {
	case StateActive:
		c.sinceActivity = 0
	case StateLowPower:
		c.sinceActivity = 0
		c.transition(StateActive, "wake")
		fire(c.onExitSleep)
	}
}

// RequestShutdown enters ShutdownPending immediately from Active or
// LowPower and fires the shutdown handler. It ignores the enabled flag.
func (c *Controller) RequestShutdown() {
	if c.state != StateActive && c.state != StateLowPower {
		return
	}
	c.transition(StateShutdownPending, "shutdown-request")
	fire(c.onShutdown)
}

// MarkOff records that power-off is about to happen.
func (c *Controller) MarkOff() error {
	if c.state != StateShutdownPending {
		return ErrNotPending
	}
	c.enabled = false
	c.transition(StateOff, "off")
	return nil
}

// transition switches state and notifies the observer. The observer sees
// the counters as they were when the state changed; the low-power counter
// is cleared afterwards whenever LowPower is left.
func (c *Controller) transition(to State, reason string) {
	from := c.state
	c.state = to
	if c.onTransition != nil {
		c.onTransition(Transition{From: from, To: to, Reason: reason})
	}
	if from == StateLowPower {
		c.inLowPower = 0
	}
}

func fire(fn func()) {
	if fn != nil {
		fn()
	}
}
