package confirm

import "time"

// Clock supplies the current time. Injected so tests control time instead
// of sleeping.
type Clock interface {
	Now() time.Time
}

// Timer is an armed expiry callback that can be canceled. Cancel must
// guarantee the callback does not fire afterward; callbacks that already
// started are neutralized by the machine's generation check instead.
type Timer interface {
	Cancel()
}

// Scheduler arms expiry timers. Injected alongside Clock so tests fire
// timers deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type systemTimer struct {
	t *time.Timer
}

func (t systemTimer) Cancel() { t.t.Stop() }

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}
