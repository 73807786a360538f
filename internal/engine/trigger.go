package engine

type TriggerKind string

const (
	KindIntroduction        TriggerKind = "introduction"
	KindTetris              TriggerKind = "tetris"
	KindMaxOut              TriggerKind = "maxout"
	KindRollover            TriggerKind = "rollover"
	KindTransition          TriggerKind = "transition"
	KindLevelMilestone      TriggerKind = "levelMilestone"
	KindHalfway             TriggerKind = "halfway"
	KindDrought             TriggerKind = "drought"
	KindEvalChange          TriggerKind = "evalChange"
	KindScoreCheck          TriggerKind = "scoreCheck"
	KindLeadCheck           TriggerKind = "leadCheck"
	KindChasedown           TriggerKind = "chasedown"
	KindChasedownScoreCheck TriggerKind = "chasedownScoreCheck"
	KindChasedownLeadCheck  TriggerKind = "chasedownLeadCheck"

	// terminal kinds close the match
	KindChasedownComplete TriggerKind = "chasedownComplete"
	KindTopoutWin         TriggerKind = "topoutWin"
	KindTopoutComparison  TriggerKind = "topoutComparison"
	KindTie               TriggerKind = "tie"
)

// Trigger is one "something worth saying happened" notification. Only the
// fields relevant to Kind are populated.
//
// Player is the subject of the trigger. For top-out kinds it is the player
// who just topped out and Opponent is the other seat; for chasedown kinds
// Player is the one chasing. Score checks name seat 0 as Player.
type Trigger struct {
	Kind     TriggerKind
	Terminal bool

	Player        int
	Name          string
	Score         int
	Level         int
	Opponent      int
	OpponentName  string
	OpponentScore int

	Tetris   bool
	Drought  int
	Tier     int // evaluation tier after the change, or at drought time
	PrevTier int
	LevelCap int // set when a top-out came from reaching the cap
	Target   int // chasedown score to beat, rounded up to the next thousand

	Intro *Introduction
}

// Introduction describes both seats, left seat first.
type Introduction struct {
	Left, Right Contestant
}

type Contestant struct {
	Name      string
	Platform  string
	Trophies  int
	Highscore int
}
