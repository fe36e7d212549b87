// Package confirm implements the double-press completion protocol: two
// presses within a bounded window commit an irreversible completion, and a
// transient confirmed indicator is shown afterward.
package confirm

import (
	"sync"
	"time"
)

// Phase is the per-task confirmation phase.
type Phase int

const (
	Idle Phase = iota
	PendingFirstPress
	RecentlyConfirmed
)

func (p Phase) String() string {
	switch p {
	case PendingFirstPress:
		return "pending_first_press"
	case RecentlyConfirmed:
		return "recently_confirmed"
	default:
		return "idle"
	}
}

// Indicator states derived from the phase.
const (
	IndicatorDefault   = "default"
	IndicatorPending   = "pending"
	IndicatorConfirmed = "confirmed"
)

// Indicator maps the phase to its display indicator. It is a pure
// function of phase and is recomputed on every read.
func (p Phase) Indicator() string {
	switch p {
	case PendingFirstPress:
		return IndicatorPending
	case RecentlyConfirmed:
		return IndicatorConfirmed
	default:
		return IndicatorDefault
	}
}

// Default timing: the maximum gap between first and second press, and how
// long the confirmed indicator stays up.
const (
	DefaultConfirmationTimeout  = 5 * time.Second
	DefaultConfirmedDisplayTime = 3 * time.Second
)

type Config struct {
	ConfirmationTimeout  time.Duration
	ConfirmedDisplayTime time.Duration
}

// DefaultConfig returns the stock 5s/3s timing.
func DefaultConfig() Config {
	return Config{
		ConfirmationTimeout:  DefaultConfirmationTimeout,
		ConfirmedDisplayTime: DefaultConfirmedDisplayTime,
	}
}

// CommitFunc performs the completion update on the second press. It runs
// with the machine locked and must not call back into the machine.
type CommitFunc func() error

// Result is the observable state after a press or read.
type Result struct {
	Phase     Phase
	Indicator string
}

// taskState is one entry in the per-task table, created lazily on first
// press and deleted on any expiry back to Idle.
type taskState struct {
	phase        Phase
	firstPressAt time.Time
	confirmedAt  time.Time
	timer        Timer
	gen          uint64
}

// Machine tracks press sequences per task id. Timer callbacks, sweeps and
// presses may interleave; the mutex plus a per-arm generation counter make
// timer-driven and sweep-driven expiry mutually idempotent: whichever
// fires first performs the transition, the other observes the applied
// state and no-ops.
type Machine struct {
	cfg     Config
	clock   Clock
	sched   Scheduler
	refresh func(taskID string)

	mu     sync.Mutex
	states map[string]*taskState
	gen    uint64
}

// New creates a machine on the system clock. refresh is the fire-and-forget
// display refresh sink, invoked once per transitioned task id; it may be nil.
func New(cfg Config, refresh func(taskID string)) *Machine {
	return NewWithClock(cfg, systemClock{}, systemScheduler{}, refresh)
}

// NewWithClock creates a machine with an injected clock and scheduler.
func NewWithClock(cfg Config, clock Clock, sched Scheduler, refresh func(taskID string)) *Machine {
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = DefaultConfirmationTimeout
	}
	if cfg.ConfirmedDisplayTime <= 0 {
		cfg.ConfirmedDisplayTime = DefaultConfirmedDisplayTime
	}
	return &Machine{
		cfg:     cfg,
		clock:   clock,
		sched:   sched,
		refresh: refresh,
		states:  make(map[string]*taskState),
	}
}

// Config returns the machine's timing configuration.
func (m *Machine) Config() Config {
	return m.cfg
}

// Press handles one button press for a task.
//
// Idle: records the first press and arms the confirmation timeout.
// Pending within the window: cancels the timeout, runs commit, and shows
// the confirmed indicator; the phase advances only after commit succeeds,
// and a failed commit resets to Idle so the press can be retried.
// Pending past the window (timer not yet fired): restarts as a fresh
// first press. RecentlyConfirmed: the press is ignored; the confirmed
// flash absorbs extra taps.
//
// Each call also opportunistically sweeps expired entries of other tasks.
func (m *Machine) Press(taskID string, commit CommitFunc) (Result, error) {
	m.mu.Lock()
	now := m.clock.Now()

	var changed []string
	var commitErr error

	st := m.states[taskID]
	switch {
	case st == nil:
		m.startPendingLocked(taskID, now)
		changed = append(changed, taskID)

	case st.phase == PendingFirstPress:
		if now.Sub(st.firstPressAt) <= m.cfg.ConfirmationTimeout {
			// Second press in time. Cancel first so a late timeout cannot
			// corrupt the state we are about to establish.
			st.timer.Cancel()
			if commit != nil {
				commitErr = commit()
			}
			if commitErr != nil {
				delete(m.states, taskID)
			} else {
				st.phase = RecentlyConfirmed
				st.confirmedAt = now
				m.armLocked(taskID, st, m.cfg.ConfirmedDisplayTime)
			}
			changed = append(changed, taskID)
		} else {
			// Stale first press observed before its timer fired: treat as
			// a new first press.
			st.timer.Cancel()
			st.firstPressAt = now
			m.armLocked(taskID, st, m.cfg.ConfirmationTimeout)
			changed = append(changed, taskID)
		}

	case st.phase == RecentlyConfirmed:
		// Ignored by policy; no transition, no refresh.
	}

	changed = append(changed, m.sweepLocked(now, taskID)...)
	res := m.resultLocked(taskID)
	m.mu.Unlock()

	m.notify(changed)
	return res, commitErr
}

// Sweep force-expires every entry whose window has elapsed, covering
// timers that have not fired yet. It returns the ids whose state changed.
func (m *Machine) Sweep() []string {
	m.mu.Lock()
	changed := m.sweepLocked(m.clock.Now(), "")
	m.mu.Unlock()

	m.notify(changed)
	return changed
}

// State returns the current phase and indicator for a task. The indicator
// is derived from the phase on every call, never cached.
func (m *Machine) State(taskID string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultLocked(taskID)
}

func (m *Machine) resultLocked(taskID string) Result {
	phase := Idle
	if st := m.states[taskID]; st != nil {
		phase = st.phase
	}
	return Result{Phase: phase, Indicator: phase.Indicator()}
}

// startPendingLocked creates a fresh entry in PendingFirstPress.
func (m *Machine) startPendingLocked(taskID string, now time.Time) {
	st := &taskState{phase: PendingFirstPress, firstPressAt: now}
	m.states[taskID] = st
	m.armLocked(taskID, st, m.cfg.ConfirmationTimeout)
}

// armLocked arms the expiry timer for the entry's current phase. The
// bumped generation invalidates any callback armed before this point.
func (m *Machine) armLocked(taskID string, st *taskState, d time.Duration) {
	m.gen++
	gen := m.gen
	st.gen = gen
	st.timer = m.sched.AfterFunc(d, func() { m.expire(taskID, gen) })
}

// expire is the timer callback for both the confirmation timeout and the
// confirmed display time; both end at Idle. A stale generation means the
// entry was superseded or already swept, so the callback no-ops.
func (m *Machine) expire(taskID string, gen uint64) {
	m.mu.Lock()
	st := m.states[taskID]
	if st == nil || st.gen != gen {
		m.mu.Unlock()
		return
	}
	delete(m.states, taskID)
	m.mu.Unlock()

	m.notify([]string{taskID})
}

func (m *Machine) sweepLocked(now time.Time, skip string) []string {
	var changed []string
	for id, st := range m.states {
		if id == skip {
			continue
		}
		var window time.Duration
		var since time.Time
		switch st.phase {
		case PendingFirstPress:
			window, since = m.cfg.ConfirmationTimeout, st.firstPressAt
		case RecentlyConfirmed:
			window, since = m.cfg.ConfirmedDisplayTime, st.confirmedAt
		default:
			continue
		}
		if now.Sub(since) > window {
			st.timer.Cancel()
			delete(m.states, id)
			changed = append(changed, id)
		}
	}
	return changed
}

func (m *Machine) notify(ids []string) {
	if m.refresh == nil {
		return
	}
	for _, id := range ids {
		m.refresh(id)
	}
}
