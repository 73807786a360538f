package engine

import "time"

// Timer is a handle to a scheduled callback. Stop is idempotent.
type Timer interface {
	Stop()
}

// Scheduler runs callbacks later on the same goroutine that drives the
// Engine. Implementations must never run a callback concurrently with an
// Engine method or after its Timer was stopped.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

type fieldGroup uint8

const (
	groupProgress fieldGroup = iota // score and lines
	groupLevel
)

type settleKey struct {
	player int
	group  fieldGroup
}

// pendingSettle holds the values seen before the first delta of a burst so
// the settle callback can judge the whole burst against them.
type pendingSettle struct {
	timer     Timer
	baseScore int
	baseLines int
	baseLevel int
}

// arm schedules a settle for key, replacing any timer already waiting on
// the same key while keeping the burst's base values.
func (e *Engine) arm(key settleKey, run func(key settleKey, base pendingSettle)) {
	pend, ok := e.settles[key]
	if ok {
		pend.timer.Stop()
	} else {
		p := e.state.Players[key.player]
		pend = &pendingSettle{baseScore: p.Score, baseLines: p.Lines, baseLevel: p.Level}
		e.settles[key] = pend
	}

	pend.timer = e.sched.AfterFunc(e.opts.Settle, func() {
		delete(e.settles, key)
		run(key, *pend)
	})
}

// later runs f after d unless the match is torn down first.
func (e *Engine) later(d time.Duration, f func()) {
	var t Timer
	t = e.sched.AfterFunc(d, func() {
		delete(e.oneShots, t)
		f()
	})
	e.oneShots[t] = struct{}{}
}

func (e *Engine) startPeriodic(f func()) {
	if e.periodic != nil {
		return
	}
	e.periodic = e.sched.Every(e.opts.ReminderEvery, f)
}

func (e *Engine) stopPeriodic() {
	if e.periodic == nil {
		return
	}
	e.periodic.Stop()
	e.periodic = nil
}

func (e *Engine) stopAllTimers() {
	e.stopPeriodic()
	for key, pend := range e.settles {
		pend.timer.Stop()
		delete(e.settles, key)
	}
	for t := range e.oneShots {
		t.Stop()
		delete(e.oneShots, t)
	}
}
