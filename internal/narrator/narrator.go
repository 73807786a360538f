// Package narrator turns engine triggers into spoken commentary lines.
package narrator

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/DoyleJ11/nestris-commentator/internal/engine"
)

//go:embed phrases.toml
var phrasesTOML []byte

type phraseFile struct {
	Tetris  []string `toml:"tetris"`
	NearTie []string `toml:"near_tie"`
	Intro   struct {
		Left    []string `toml:"left"`
		Right   []string `toml:"right"`
		Rating  []string `toml:"rating"`
		Welcome []string `toml:"welcome"`
	} `toml:"intro"`
	Drought    map[string][]string `toml:"drought"`
	Evaluation []struct {
		To    int      `toml:"to"`
		From  int      `toml:"from"`
		Lines []string `toml:"lines"`
	} `toml:"evaluation"`
}

type evalKey struct{ to, from int }

// Narrator picks phrases for triggers. Pools rotate as they are used, so a
// Narrator belongs to a single room and is not safe for concurrent use.
type Narrator struct {
	rand func() float64

	tetris  *Pool
	nearTie *Pool
	left    *Pool
	right   *Pool
	rating  *Pool
	welcome *Pool
	drought map[int]*Pool
	eval    map[evalKey]*Pool
}

// New loads the embedded phrase pools. rand must return values in [0, 1).
func New(rand func() float64) (*Narrator, error) {
	var f phraseFile
	if err := toml.Unmarshal(phrasesTOML, &f); err != nil {
		return nil, fmt.Errorf("narrator: parse phrases: %w", err)
	}

	n := &Narrator{
		rand:    rand,
		tetris:  NewPool(f.Tetris),
		nearTie: NewPool(f.NearTie),
		left:    NewPool(f.Intro.Left),
		right:   NewPool(f.Intro.Right),
		rating:  NewPool(f.Intro.Rating),
		welcome: NewPool(f.Intro.Welcome),
		drought: make(map[int]*Pool, len(f.Drought)),
		eval:    make(map[evalKey]*Pool, len(f.Evaluation)),
	}
	for k, lines := range f.Drought {
		tier, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("narrator: drought tier %q: %w", k, err)
		}
		n.drought[tier] = NewPool(lines)
	}
	for _, e := range f.Evaluation {
		n.eval[evalKey{e.To, e.From}] = NewPool(e.Lines)
	}
	return n, nil
}

// Render returns the line to speak for t, or "" when there is nothing to say.
func (n *Narrator) Render(t engine.Trigger) string {
	switch t.Kind {
	case engine.KindIntroduction:
		return n.introduction(t)

	case engine.KindTetris:
		return n.fill(n.tetris, t.Name) + "!"

	case engine.KindMaxOut:
		if t.Tetris {
			return n.fill(n.tetris, t.Name) + " into the max out!"
		}
		return "Max out for " + t.Name + "!"

	case engine.KindRollover:
		if t.Tetris {
			return n.fill(n.tetris, t.Name) + " into the rollover!"
		}
		return "Rollover for " + t.Name + "!"

	case engine.KindTransition:
		return fmt.Sprintf("%s has transitioned to %d at %s.", t.Name, t.Level, NumberToSpeech(t.Score, false))

	case engine.KindLevelMilestone:
		return fmt.Sprintf("%s enters %d at %s.", t.Name, t.Level, NumberToSpeech(t.Score, false))

	case engine.KindHalfway:
		return fmt.Sprintf("%s is at %s halfway through %d.", t.Name, NumberToSpeech(t.Score, false), t.Level)

	case engine.KindDrought:
		p, ok := n.drought[t.Tier]
		if !ok {
			return ""
		}
		line := replaceOnce(p.Draw(n.rand), "{{name}}", t.Name)
		return replaceOnce(line, "{{drought}}", strconv.Itoa(t.Drought))

	case engine.KindEvalChange:
		p, ok := n.eval[evalKey{t.Tier, t.PrevTier}]
		if !ok {
			return ""
		}
		return n.fill(p, t.Name)

	case engine.KindScoreCheck:
		entire := sameThousands(t.Score, t.OpponentScore)
		lead, leadScore, trail, trailScore := t.Name, t.Score, t.OpponentName, t.OpponentScore
		if t.OpponentScore > t.Score {
			lead, leadScore, trail, trailScore = trail, trailScore, lead, leadScore
		}
		return fmt.Sprintf("%s for %s, %s for %s.",
			NumberToSpeech(leadScore, entire), lead, NumberToSpeech(trailScore, entire), trail)

	case engine.KindLeadCheck:
		return n.leadCheck(t)

	case engine.KindChasedown:
		return fmt.Sprintf("%s %s. %s is in a chase down and needs to get to %s.",
			t.Name, capPhrase(t.LevelCap), t.OpponentName, NumberToSpeech(t.Target, false))

	case engine.KindChasedownScoreCheck:
		return fmt.Sprintf("%s is at %s and still needs to chase down %s.",
			t.Name, NumberToSpeech(t.Score, false), NumberToSpeech(t.Target, false))

	case engine.KindChasedownLeadCheck:
		lead := abs(t.OpponentScore - t.Score)
		if lead < 1000 {
			return "Almost there..."
		}
		return fmt.Sprintf("%s still needs %s to chase down %s.", t.Name, NumberToSpeech(lead, false), NumberToSpeech(t.Target, false))

	case engine.KindChasedownComplete:
		return fmt.Sprintf("And with a score of %s, %s has completed the chase down and takes the win.  Play this out!",
			NumberToSpeech(t.Score, false), t.Name)

	case engine.KindTopoutWin:
		return fmt.Sprintf("%s %s at %s.  And with a score of %s, %s has won the game.  Play this out!",
			t.Name, capPhrase(t.LevelCap), NumberToSpeech(t.Score, false),
			NumberToSpeech(t.OpponentScore, false), t.OpponentName)

	case engine.KindTie:
		return fmt.Sprintf("%s %s.  Both players have exactly %s.  The game ends in a tie!",
			t.Name, capPhrase(t.LevelCap), NumberToSpeech(t.Score, true))

	case engine.KindTopoutComparison:
		entire := sameThousands(t.Score, t.OpponentScore)
		winner, winScore := t.OpponentName, t.OpponentScore
		if t.Score > t.OpponentScore {
			winner, winScore = t.Name, t.Score
		}
		return fmt.Sprintf("%s %s at %s.  With a score of %s, %s wins the game!",
			t.Name, capPhrase(t.LevelCap), NumberToSpeech(t.Score, entire), NumberToSpeech(winScore, entire), winner)
	}
	return ""
}

func (n *Narrator) leadCheck(t engine.Trigger) string {
	lead := t.Score - t.OpponentScore
	leader, trailer := t.Name, t.OpponentName
	if lead < 0 {
		lead = -lead
		leader, trailer = trailer, leader
	}
	if lead < 5000 {
		return n.nearTie.Draw(n.rand)
	}
	return fmt.Sprintf("%s is ahead of %s by %s.", leader, trailer, NumberToSpeech(lead, false))
}

func (n *Narrator) introduction(t engine.Trigger) string {
	if t.Intro == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Let's introduce the players!  ")
	n.contestant(&b, n.left, t.Intro.Left)
	b.WriteString(" ,, ")
	n.contestant(&b, n.right, t.Intro.Right)
	return strings.TrimSpace(b.String())
}

func (n *Narrator) contestant(b *strings.Builder, opener *Pool, c engine.Contestant) {
	b.WriteString(opener.Draw(n.rand))
	if c.Platform != "" {
		fmt.Fprintf(b, " playing on %s", strings.ToLower(c.Platform))
	}
	if c.Trophies > 0 {
		b.WriteString(" ")
		b.WriteString(replaceOnce(n.rating.Draw(n.rand), "{{rating}}", strconv.Itoa(c.Trophies)))
	}
	if c.Highscore > 0 {
		fmt.Fprintf(b, " and a PB of %s,", NumberToSpeech(c.Highscore, false))
	}
	b.WriteString(" ")
	b.WriteString(n.fill(n.welcome, c.Name))
}

func (n *Narrator) fill(p *Pool, name string) string {
	return replaceOnce(p.Draw(n.rand), "{{name}}", name)
}

func capPhrase(levelCap int) string {
	if levelCap > 0 {
		return fmt.Sprintf("has reached %d and is done", levelCap)
	}
	return "has topped out"
}

// sameThousands reports whether two scores read the same when the hundreds
// are dropped, in which case they are spelled out in full.
func sameThousands(a, b int) bool { return a/1000 == b/1000 }

func replaceOnce(s, old, repl string) string { return strings.Replace(s, old, repl, 1) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
