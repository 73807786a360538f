package engine

import "time"

const (
	MaxOutScore   = 999999
	RolloverScore = 1600000

	TetrisLines = 4

	DroughtFirstAlert = 20
	DroughtAlertEvery = 10
)

const (
	DefaultSettle       = 33 * time.Millisecond
	DefaultGrace        = 50 * time.Millisecond
	DefaultReminder     = 30 * time.Second
	DefaultEvalCooldown = 15 * time.Second
)

// Levels where gravity speeds up.
var TransitionLevels = []int{10, 13, 16, 19, 29}

// Evaluation tiers, best first. A score at or above a bound lands in that
// tier; anything below the last bound is tier 1.
var evalTierBounds = []struct {
	Min  float64
	Tier int
}{
	{Min: -20, Tier: 5},
	{Min: -120, Tier: 4},
	{Min: -250, Tier: 3},
	{Min: -500, Tier: 2},
}

const (
	TierWorst = 1
	TierBest  = 5
)

func EvalTier(score float64) int {
	for _, b := range evalTierBounds {
		if score >= b.Min {
			return b.Tier
		}
	}
	return TierWorst
}

// HalfwayLines is the line count halfway to the first level-up for a
// game started on startLevel.
func HalfwayLines(startLevel int) int {
	return startLevel/16*50 + min(startLevel%16*5+5, 50)
}

func isLevelMilestone(level, capLevel int) bool {
	return level == 24 || capLevel != 0 && level == 34 || level >= 35 && level%5 == 0
}

func isDroughtAlert(count int) bool {
	return count >= DroughtFirstAlert && count%DroughtAlertEvery == 0
}

// ChasedownTarget rounds a topped-out score up to the next thousand.
func ChasedownTarget(score int) int {
	return (score + 1000) / 1000 * 1000
}
