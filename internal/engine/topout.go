package engine

import "go.uber.org/zap"

// topout marks player as finished and resolves the match after the grace
// delay, so a Tetris credited on the final frame can land first. A second
// terminal event for the same player is ignored.
func (e *Engine) topout(player int, capReached bool) {
	st := &e.state
	if st.Players[player].ToppedOut {
		return
	}
	st.InIntroductions = false
	e.stopPeriodic()
	st.Players[player].ToppedOut = true

	e.log.Debug("topout", zap.Int("player", player), zap.Bool("cap", capReached))
	e.later(e.opts.Grace, func() { e.resolveTopout(player, capReached) })
}

func (e *Engine) resolveTopout(player int, capReached bool) {
	st := &e.state
	if st.GameOver {
		return
	}
	o := other(player)
	me, them := st.Players[player], st.Players[o]

	t := Trigger{
		Player:        player,
		Name:          me.Name,
		Score:         me.Score,
		Opponent:      o,
		OpponentName:  them.Name,
		OpponentScore: them.Score,
	}
	if capReached {
		t.LevelCap = st.LevelCap
	}

	switch {
	case me.ToppedOut && them.ToppedOut:
		t.Kind = KindTopoutComparison
		if me.Score == them.Score {
			t.Kind = KindTie
		}
		e.emitEnd(t)

	case me.Score < them.Score:
		t.Kind = KindTopoutWin
		e.emitEnd(t)

	default:
		st.Chasedown = true
		st.ChasedownPlayer = o
		if st.InRoom {
			e.stopPeriodic()
			e.startPeriodic(e.remindChasedown)
		}
		t.Kind = KindChasedown
		t.Target = ChasedownTarget(me.Score)
		e.emit(t)
	}
}

// checkChasedownComplete ends the match once the chasing player has caught
// the topped-out player's score.
func (e *Engine) checkChasedownComplete(player int) {
	st := &e.state
	if !st.Chasedown || st.ChasedownPlayer != player || st.Players[player].ToppedOut {
		return
	}
	o := other(player)
	me, them := st.Players[player], st.Players[o]
	if me.Score < them.Score {
		return
	}
	e.emitEnd(Trigger{
		Kind:          KindChasedownComplete,
		Player:        player,
		Name:          me.Name,
		Score:         me.Score,
		Opponent:      o,
		OpponentName:  them.Name,
		OpponentScore: them.Score,
	})
}

func (e *Engine) remindChasedown() {
	st := &e.state
	c := st.ChasedownPlayer
	o := other(c)
	kind := KindChasedownScoreCheck
	if e.opts.Rand() >= 0.5 {
		kind = KindChasedownLeadCheck
	}
	e.emit(Trigger{
		Kind:          kind,
		Player:        c,
		Name:          st.Players[c].Name,
		Score:         st.Players[c].Score,
		Opponent:      o,
		OpponentName:  st.Players[o].Name,
		OpponentScore: st.Players[o].Score,
		Target:        ChasedownTarget(st.Players[o].Score),
	})
}
