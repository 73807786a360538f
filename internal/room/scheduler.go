package room

import (
	"time"

	"github.com/DoyleJ11/nestris-commentator/internal/engine"
)

// scheduler runs engine timers through the room inbox, so callbacks execute
// on the room goroutine like any other message.
type scheduler struct{ r *Room }

func (s scheduler) AfterFunc(d time.Duration, f func()) engine.Timer {
	return s.r.newTimer(d, 0, f)
}

func (s scheduler) Every(d time.Duration, f func()) engine.Timer {
	return s.r.newTimer(d, d, f)
}

// roomTimer fields other than t are only touched on the room goroutine.
// A fire that was already queued when Stop ran is dropped by fire.
type roomTimer struct {
	r       *Room
	t       *time.Timer
	every   time.Duration
	f       func()
	stopped bool
}

func (r *Room) newTimer(d, every time.Duration, f func()) *roomTimer {
	rt := &roomTimer{r: r, every: every, f: f}
	rt.t = time.AfterFunc(d, rt.post)
	return rt
}

func (rt *roomTimer) post() {
	select {
	case rt.r.inbox <- timerFired{t: rt}:
	case <-rt.r.ctx.Done():
	}
}

func (rt *roomTimer) Stop() {
	rt.stopped = true
	rt.t.Stop()
}

func (rt *roomTimer) fire() {
	if rt.stopped {
		return
	}
	if rt.every == 0 {
		rt.stopped = true
		rt.f()
		return
	}
	rt.f()
	if !rt.stopped {
		rt.t.Reset(rt.every)
	}
}
