package gesture

import "time"

// Recognizer turns button level samples into gesture events.
// Not safe for concurrent use; feed it from a single goroutine.
type Recognizer struct {
	cfg Config

	baselined bool
	pressed   bool
	phase     Phase

	pressStart time.Time
	deadline   time.Time // end of the multi-click window, zero when unset
	clicks     int

	counts EventCounts

	onClick       func()
	onLongPress   func()
	onLongPressUp func()
	onMulti       func()
	multiCount    int
}

// New creates a recognizer with the given thresholds.
// Input is ignored until the button has been seen released once, so a
// button still held from a wake-up does not count as a press.
func New(cfg Config) (*Recognizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Recognizer{
		cfg:   cfg,
		phase: PhaseIdle,
	}, nil
}

// OnClick sets the single-click handler.
func (r *Recognizer) OnClick(fn func()) { r.onClick = fn }

// OnLongPress sets the handler fired once the hold reaches the threshold.
func (r *Recognizer) OnLongPress(fn func()) { r.onLongPress = fn }

// OnLongPressUp sets the handler fired on release of a long press.
func (r *Recognizer) OnLongPressUp(fn func()) { r.onLongPressUp = fn }

// OnMultipleClick sets the handler fired for a sequence of exactly n clicks.
// Only one multi-click handler is kept; n <= 0 clears it.
func (r *Recognizer) OnMultipleClick(fn func(), n int) {
	if n <= 0 {
		fn = nil
		n = 0
	}
	r.onMulti = fn
	r.multiCount = n
}

// Process consumes one level sample and returns the events it produced,
// after invoking their handlers.
func (r *Recognizer) Process(in Input) []Event {
	if !r.baselined {
		if !in.Pressed {
			r.baselined = true
			r.pressed = false
		}
		return nil
	}

	events := r.checkTimers(in.Time)

	if in.Pressed == r.pressed {
		return events
	}
	r.pressed = in.Pressed

	if in.Pressed {
		switch r.phase {
		case PhaseIdle, PhaseWaitingMultiClick:
			r.phase = PhasePressed
			r.pressStart = in.Time
			r.deadline = time.Time{}
		}
		return events
	}

	switch r.phase {
	case PhasePressed:
		r.clicks++
		r.deadline = in.Time.Add(r.cfg.MultiClickWindow)
		r.phase = PhaseWaitingMultiClick
	case PhaseLongPressFired:
		r.clicks = 0
		r.phase = PhaseIdle
		events = r.emit(events, Event{Timestamp: in.Time, Type: EventLongPressUp})
	}
	return events
}

// Tick evaluates the long-press threshold and multi-click deadline
// without a new level sample.
func (r *Recognizer) Tick(now time.Time) []Event {
	if !r.baselined {
		return nil
	}
	return r.checkTimers(now)
}

func (r *Recognizer) checkTimers(now time.Time) []Event {
	var events []Event

	switch r.phase {
	case PhasePressed:
		if now.Sub(r.pressStart) >= r.cfg.LongPress {
			r.phase = PhaseLongPressFired
			events = r.emit(events, Event{Timestamp: now, Type: EventLongPress})
		}

	case PhaseWaitingMultiClick:
		if now.After(r.deadline) {
			events = r.flush(events, now)
		}
	}

	return events
}

// flush ends a click sequence. Counts other than 1 or the registered
// multi-click count are dropped.
func (r *Recognizer) flush(events []Event, now time.Time) []Event {
	count := r.clicks
	r.clicks = 0
	r.deadline = time.Time{}
	r.phase = PhaseIdle

	switch {
	case r.onMulti != nil && count == r.multiCount:
		events = r.emit(events, Event{Timestamp: now, Type: EventMultiClick, Count: count})
	case count == 1:
		events = r.emit(events, Event{Timestamp: now, Type: EventClick, Count: 1})
	}
	return events
}

func (r *Recognizer) emit(events []Event, e Event) []Event {
	var fn func()
	switch e.Type {
	case EventClick:
		r.counts.Click++
		fn = r.onClick
	case EventLongPress:
		r.counts.LongPress++
		fn = r.onLongPress
	case EventLongPressUp:
		r.counts.LongPressUp++
		fn = r.onLongPressUp
	case EventMultiClick:
		r.counts.MultiClick++
		fn = r.onMulti
	}
	if fn != nil {
		fn()
	}
	return append(events, e)
}

// IsBaselined reports whether the button has been seen released since start.
func (r *Recognizer) IsBaselined() bool {
	return r.baselined
}

// Phase returns the current position in the press cycle.
func (r *Recognizer) Phase() Phase {
	return r.phase
}

// Pending returns the number of clicks in the open sequence.
func (r *Recognizer) Pending() int {
	return r.clicks
}

// EventCountsSnapshot returns a copy of the gesture counters.
func (r *Recognizer) EventCountsSnapshot() EventCounts {
	return r.counts
}
