package engine

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/nestris-commentator/internal/packet"
	"github.com/DoyleJ11/nestris-commentator/pkg/types"
)

var ErrInvalidPlayer = errors.New("invalid player index")
var ErrUnknownField = errors.New("unknown field")

// Field is one of the on-screen counters reported as deltas.
type Field string

const (
	FieldScore Field = "score"
	FieldLevel Field = "level"
	FieldLines Field = "lines"
)

type Options struct {
	Scheduler Scheduler
	Now       func() time.Time
	Rand      func() float64
	Emit      func(Trigger)
	Logger    *zap.Logger

	Settle        time.Duration
	Grace         time.Duration
	ReminderEvery time.Duration
	EvalCooldown  time.Duration
}

// Engine owns the state of one match. It is not safe for concurrent use:
// every method and every Scheduler callback must run on one goroutine.
type Engine struct {
	opts   Options
	sched  Scheduler
	log    *zap.Logger
	state  MatchState
	viewer string

	periodic Timer
	settles  map[settleKey]*pendingSettle
	oneShots map[Timer]struct{}
}

func New(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Emit == nil {
		opts.Emit = func(Trigger) {}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.ReminderEvery <= 0 {
		opts.ReminderEvery = DefaultReminder
	}
	if opts.EvalCooldown <= 0 {
		opts.EvalCooldown = DefaultEvalCooldown
	}

	return &Engine{
		opts:     opts,
		sched:    opts.Scheduler,
		log:      opts.Logger,
		state:    NewMatchState(),
		settles:  map[settleKey]*pendingSettle{},
		oneShots: map[Timer]struct{}{},
	}
}

// Snapshot returns a copy of the current match state.
func (e *Engine) Snapshot() MatchState { return e.state }

// LocalPlayer returns the viewer's own seat, if the viewer is playing.
func (e *Engine) LocalPlayer() (int, bool) {
	return e.state.LocalPlayer, e.state.HasLocalPlayer
}

// SetViewer records the local user's id for identity resolution.
func (e *Engine) SetViewer(userID string) { e.viewer = userID }

// SetInRoom tells the engine whether the viewer is on the room page.
func (e *Engine) SetInRoom(in bool) {
	e.state.InRoom = in
	if !in {
		e.stopPeriodic()
	}
}

func (e *Engine) IntroComplete() { e.state.InIntroductions = false }

// Teardown stops every timer and forgets the match.
func (e *Engine) Teardown() {
	e.stopAllTimers()
	e.state = NewMatchState()
}

// HandleRoomStatus applies an in_room_status snapshot. It reports false,
// after tearing the match down, when the snapshot is not a two-player room.
func (e *Engine) HandleRoomStatus(s types.RoomStatus) bool {
	p0, p1, ok := s.Multiplayer()
	if !ok {
		e.Teardown()
		return false
	}

	now := e.opts.Now()
	st := &e.state
	for i, rp := range []types.RoomPlayer{p0, p1} {
		p := &st.Players[i]
		p.Name = CleanName(rp.Username)
		p.UserID = rp.UserID
		p.Platform = rp.Platform
		p.Trophies = rp.Trophies
		p.Highscore = rp.Highscore
		p.Eval = 0
		p.LastEvalCheck = now
		p.LastEvalCheckEval = 0
	}

	st.StartLevel = s.RoomState.StartLevel
	st.LevelCap = s.RoomState.LevelCap
	st.Halfway = HalfwayLines(st.StartLevel)
	st.InRoom = true

	if e.viewer != "" {
		st.Swap = p1.UserID == e.viewer
		if p0.UserID == e.viewer || p1.UserID == e.viewer {
			st.HasLocalPlayer = true
			st.LocalPlayer = 0
			if st.Swap {
				st.LocalPlayer = 1
			}
		}
	}
	return true
}

// HandleRoomStateUpdate treats a player leaving the room as a top-out.
// Updates without a two-player room are ignored.
func (e *Engine) HandleRoomStateUpdate(s types.RoomStatus) {
	p0, p1, ok := s.Multiplayer()
	if !ok {
		return
	}
	if p0.LeftRoom {
		e.topout(0, false)
	}
	if p1.LeftRoom {
		e.topout(1, false)
	}
}

// HandleDelta applies an on-screen counter change. rawIndex is the seat as
// displayed, before the identity swap is applied. Zero values and values
// equal to the stored one are ignored.
func (e *Engine) HandleDelta(rawIndex int, field Field, value int) error {
	if rawIndex != 0 && rawIndex != 1 {
		return ErrInvalidPlayer
	}
	player := rawIndex
	if e.state.Swap {
		player = other(rawIndex)
	}
	p := &e.state.Players[player]

	switch field {
	case FieldScore:
		if value == 0 || value == p.Score {
			return nil
		}
		e.arm(settleKey{player, groupProgress}, e.settleProgress)
		p.Score = value

	case FieldLines:
		if value == 0 || value == p.Lines {
			return nil
		}
		e.arm(settleKey{player, groupProgress}, e.settleProgress)
		p.Lines = value

	case FieldLevel:
		if value == 0 || value == p.Level {
			return nil
		}
		old := p.Level
		if old == 0 {
			// first sighting, nothing to compare against
			p.Level = value
			return nil
		}
		e.arm(settleKey{player, groupLevel}, e.settleLevel)
		p.Level = value

	default:
		return ErrUnknownField
	}
	return nil
}

// HandlePackets applies decoded packets in order.
func (e *Engine) HandlePackets(packets []packet.Packet) {
	for _, pk := range packets {
		e.handlePacket(pk)
	}
}

func (e *Engine) handlePacket(pk packet.Packet) {
	player := pk.Player()
	if player != 0 && player != 1 {
		return
	}
	st := &e.state
	now := e.opts.Now()

	switch pk := pk.(type) {
	case packet.GameStart:
		if st.GameOver {
			st.GameOver = false
			st.Chasedown = false
			st.Introduced = false
		}
		e.cancelSettles(player)
		resetPlayer(&st.Players[player], pk.Level, now)

		if st.Players[0].Started && st.Players[1].Started {
			if !st.Introduced {
				e.introduce()
			}
			e.maybeStartReminders()
		}

	case packet.GameEnd:
		e.topout(player, false)

	case packet.Placement:
		p := &st.Players[player]
		p.LastPlacement = now
		e.maybeStartReminders()

		if pk.NextPiece == packet.PieceI {
			p.Drought = 0
			return
		}
		p.Drought++
		if isDroughtAlert(p.Drought) {
			e.emit(Trigger{
				Kind:    KindDrought,
				Player:  player,
				Name:    p.Name,
				Drought: p.Drought,
				Tier:    EvalTier(p.Eval),
			})
			p.LastEvalCheck = now
			p.LastEvalCheckEval = p.Eval
		}

	case packet.Countdown:
		var capReached bool
		switch pk.Kind {
		case packet.CountdownNotInGame:
		case packet.CountdownLinecapReached:
			capReached = true
		default:
			return
		}
		e.later(time.Duration(pk.Delay)*time.Millisecond, func() {
			e.topout(player, capReached)
		})

	case packet.StackrabbitPlacement:
		score := float64(pk.PlayerEval)
		if score == 0 || math.IsNaN(score) {
			return
		}
		st.Players[player].Eval = score
		e.handleEval(player, score)

	default:
		e.log.Debug("packet ignored", zap.Stringer("tag", pk.Tag()), zap.Int("player", player))
	}
}

// handleEval announces a tier change, at most once per cooldown window.
func (e *Engine) handleEval(player int, score float64) {
	p := &e.state.Players[player]
	now := e.opts.Now()
	if now.Sub(p.LastEvalCheck) < e.opts.EvalCooldown {
		return
	}

	tier := EvalTier(score)
	prev := EvalTier(p.LastEvalCheckEval)
	p.LastEvalCheck = now
	p.LastEvalCheckEval = score

	if tier == prev || !validTier(tier) || !validTier(prev) {
		return
	}
	e.emit(Trigger{
		Kind:     KindEvalChange,
		Player:   player,
		Name:     p.Name,
		Tier:     tier,
		PrevTier: prev,
	})
}

func validTier(t int) bool { return t >= TierWorst && t <= TierBest }

func (e *Engine) introduce() {
	st := &e.state
	st.Introduced = true
	st.InIntroductions = true

	left, right := 0, 1
	if st.Swap {
		left, right = 1, 0
	}
	e.emit(Trigger{
		Kind:         KindIntroduction,
		Player:       left,
		Name:         st.Players[left].Name,
		Opponent:     right,
		OpponentName: st.Players[right].Name,
		Intro: &Introduction{
			Left:  contestant(st.Players[left]),
			Right: contestant(st.Players[right]),
		},
	})
}

func contestant(p PlayerState) Contestant {
	return Contestant{Name: p.Name, Platform: p.Platform, Trophies: p.Trophies, Highscore: p.Highscore}
}

func (e *Engine) maybeStartReminders() {
	st := &e.state
	if !st.InRoom || st.GameOver || st.Chasedown {
		return
	}
	if st.Players[0].LastPlacement.IsZero() || st.Players[1].LastPlacement.IsZero() {
		return
	}
	e.startPeriodic(e.remind)
}

func (e *Engine) remind() {
	st := &e.state
	kind := KindScoreCheck
	if e.opts.Rand() >= 0.5 {
		kind = KindLeadCheck
	}
	e.emit(Trigger{
		Kind:          kind,
		Player:        0,
		Name:          st.Players[0].Name,
		Score:         st.Players[0].Score,
		Opponent:      1,
		OpponentName:  st.Players[1].Name,
		OpponentScore: st.Players[1].Score,
	})
}

func (e *Engine) cancelSettles(player int) {
	for _, g := range []fieldGroup{groupProgress, groupLevel} {
		key := settleKey{player, g}
		if pend, ok := e.settles[key]; ok {
			pend.timer.Stop()
			delete(e.settles, key)
		}
	}
}

// emit forwards a trigger unless the viewer left, the match is over, or
// introductions are still running.
func (e *Engine) emit(t Trigger) {
	st := &e.state
	if !st.InRoom || st.GameOver {
		e.log.Debug("trigger dropped", zap.String("kind", string(t.Kind)))
		return
	}
	if st.InIntroductions && t.Kind != KindIntroduction {
		e.log.Debug("trigger suppressed during introductions", zap.String("kind", string(t.Kind)))
		return
	}
	e.opts.Emit(t)
}

// emitEnd closes the match with a terminal trigger. Only the first one
// per match gets through.
func (e *Engine) emitEnd(t Trigger) {
	e.stopPeriodic()
	st := &e.state
	if !st.InRoom || st.GameOver {
		return
	}
	st.GameOver = true
	st.InIntroductions = false
	t.Terminal = true
	e.opts.Emit(t)
}

func isTransitionLevel(level int) bool {
	return slices.Contains(TransitionLevels, level)
}
