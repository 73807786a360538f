package engine

import (
	"regexp"
	"strings"
	"time"
)

type PlayerState struct {
	Score int
	Level int
	Lines int

	Eval              float64
	LastEvalCheck     time.Time
	LastEvalCheckEval float64

	Drought       int
	Maxed         bool
	Rollover      bool
	ToppedOut     bool
	Started       bool
	LastPlacement time.Time

	Name      string
	UserID    string
	Platform  string
	Trophies  int
	Highscore int
}

type MatchState struct {
	Players    [2]PlayerState
	StartLevel int
	Halfway    int
	LevelCap   int // 0 when the room has no cap

	InIntroductions bool
	Introduced      bool
	Swap            bool
	LocalPlayer     int
	HasLocalPlayer  bool

	InRoom          bool
	GameOver        bool
	Chasedown       bool
	ChasedownPlayer int
}

func NewMatchState() MatchState {
	return MatchState{}
}

// resetPlayer clears everything a fresh game invalidates but keeps the
// room-provided identity.
func resetPlayer(p *PlayerState, level int, now time.Time) {
	*p = PlayerState{
		Level:         level,
		LastEvalCheck: now,
		Started:       true,
		LastPlacement: now,

		Name:      p.Name,
		UserID:    p.UserID,
		Platform:  p.Platform,
		Trophies:  p.Trophies,
		Highscore: p.Highscore,
	}
}

var trailingNonLetters = regexp.MustCompile(`[^a-zA-Z]*$`)

// CleanName makes a username speakable: trailing digits and symbols go,
// underscores become spaces. The raw name is kept if nothing is left.
func CleanName(username string) string {
	cleaned := trailingNonLetters.ReplaceAllString(username, "")
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "_", " "))
	if cleaned == "" {
		return username
	}
	return cleaned
}

func other(player int) int { return 1 - player }
