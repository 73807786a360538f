package engine

// settleProgress judges a burst of score and lines changes against the
// values from before the burst. It always reads the live player state.
func (e *Engine) settleProgress(key settleKey, base pendingSettle) {
	player := key.player
	p := &e.state.Players[player]
	lineDelta := p.Lines - base.baseLines
	tetris := lineDelta == TetrisLines

	switch {
	case !p.Maxed && p.Score >= MaxOutScore:
		p.Maxed = true
		e.emit(Trigger{Kind: KindMaxOut, Player: player, Name: p.Name, Score: p.Score, Tetris: tetris})

	case !p.Rollover && p.Score >= RolloverScore:
		p.Rollover = true
		e.emit(Trigger{Kind: KindRollover, Player: player, Name: p.Name, Score: p.Score, Tetris: tetris})

	default:
		if tetris {
			e.emit(Trigger{Kind: KindTetris, Player: player, Name: p.Name, Score: p.Score})
		}

		half := e.state.Halfway
		if half > 0 && base.baseLines < half && p.Lines >= half && lineDelta <= TetrisLines {
			e.emit(Trigger{Kind: KindHalfway, Player: player, Name: p.Name, Score: p.Score, Level: p.Level})
		}
	}

	e.checkChasedownComplete(player)
}

func (e *Engine) settleLevel(key settleKey, base pendingSettle) {
	player := key.player
	p := &e.state.Players[player]
	level := p.Level
	if level == base.baseLevel {
		return
	}

	if isTransitionLevel(level) {
		e.emit(Trigger{Kind: KindTransition, Player: player, Name: p.Name, Score: p.Score, Level: level})
	}
	if isLevelMilestone(level, e.state.LevelCap) {
		e.emit(Trigger{Kind: KindLevelMilestone, Player: player, Name: p.Name, Score: p.Score, Level: level})
	}
}
