package engine

import (
	"time"

	"github.com/DoyleJ11/nestris-commentator/pkg/types"
)

// manualClock is a Scheduler whose time only moves when Advance is called.
type manualClock struct {
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Time
	every   time.Duration
	seq     int
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.add(d, 0, f)
}

func (c *manualClock) Every(d time.Duration, f func()) Timer {
	return c.add(d, d, f)
}

func (c *manualClock) add(d, every time.Duration, f func()) *manualTimer {
	c.seq++
	t := &manualTimer{at: c.now.Add(d), every: every, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward, firing due callbacks in order.
func (c *manualClock) Advance(d time.Duration) {
	end := c.now.Add(d)
	for {
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.at.After(end) {
				continue
			}
			if next == nil || t.at.Before(next.at) || t.at.Equal(next.at) && t.seq < next.seq {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
		} else {
			next.stopped = true
		}
		next.f()
	}
	c.now = end
}

func (c *manualClock) live() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type recorder struct {
	triggers []Trigger
}

func (r *recorder) emit(t Trigger) { r.triggers = append(r.triggers, t) }

func (r *recorder) kinds() []TriggerKind {
	out := make([]TriggerKind, 0, len(r.triggers))
	for _, t := range r.triggers {
		out = append(out, t.Kind)
	}
	return out
}

func (r *recorder) count(kind TriggerKind) int {
	n := 0
	for _, t := range r.triggers {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.triggers = nil }

func newTestEngine() (*Engine, *manualClock, *recorder) {
	clock := newManualClock()
	rec := &recorder{}
	e := New(Options{
		Scheduler: clock,
		Now:       clock.Now,
		Rand:      func() float64 { return 0.25 },
		Emit:      rec.emit,
	})
	return e, clock, rec
}

func roomStatus(startLevel, levelCap int) types.RoomStatus {
	return types.RoomStatus{
		Type:   "in_room_status",
		Status: "PLAYER",
		RoomState: &types.RoomState{
			Type:       types.RoomTypeMultiplayer,
			StartLevel: startLevel,
			LevelCap:   levelCap,
			Players: map[string]types.RoomPlayer{
				"0": {UserID: "u-alice", Username: "alice_99", Platform: "OCR", Trophies: 1200, Highscore: 1250000},
				"1": {UserID: "u-bob", Username: "Bob", Platform: "ONLINE", Trophies: 900, Highscore: 800000},
			},
		},
	}
}

// inMatch returns an engine already inside a two-player room.
func inMatch(startLevel int) (*Engine, *manualClock, *recorder) {
	e, clock, rec := newTestEngine()
	e.HandleRoomStatus(roomStatus(startLevel, 0))
	return e, clock, rec
}
