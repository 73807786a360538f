package packet

import "fmt"

// Tag is the 5-bit discriminator at the head of every packet.
type Tag uint8

const (
	TagEnd                  Tag = 0
	TagGameStart            Tag = 2
	TagGameEnd              Tag = 3
	TagPlacement            Tag = 4
	TagFullBoard            Tag = 5
	TagAbbreviatedBoard     Tag = 6
	TagRecovery             Tag = 7
	TagCountdown            Tag = 9
	TagStackrabbitPlacement Tag = 10
	TagFullState            Tag = 11
)

// Packet is one decoded record. The set of implementations is closed.
type Packet interface {
	Tag() Tag
	Player() int
	isPacket()
}

// Header carries the player id shared by every variant.
type Header struct {
	PlayerID int `json:"playerId"`
}

func (h Header) Player() int { return h.PlayerID }

type Piece uint8

const (
	PieceI Piece = iota
	PieceO
	PieceL
	PieceJ
	PieceT
	PieceS
	PieceZ
	PieceUnknown
)

func (p Piece) String() string {
	if p < PieceUnknown {
		return string("IOLJTSZ"[p])
	}
	return "?"
}

func (p Piece) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

type GameStart struct {
	Header
	Level int `json:"level"`
}

type GameEnd struct {
	Header
}

type Placement struct {
	Header
	NextPiece Piece `json:"nextPiece"`
	Pushdown  int   `json:"pushdown"`
}

type FullBoard struct {
	Header
	Delay int `json:"delay"`
}

type AbbreviatedBoard struct {
	Header
	Delay int `json:"delay"`
}

type Recovery struct {
	Header
	StartLevel  int `json:"startLevel"`
	Score       int `json:"score"`
	Level       int `json:"level"`
	Lines       int `json:"lines"`
	NumTetrises int `json:"numTetrises"`
}

// CountdownKind says how to read a Countdown value.
type CountdownKind uint8

const (
	CountdownNumber CountdownKind = iota
	CountdownNotInGame
	CountdownLinecapReached
)

const (
	countdownNotInGame      = 14
	countdownLinecapReached = 15
)

type Countdown struct {
	Header
	Delay int           `json:"delay"`
	Kind  CountdownKind `json:"kind"`
	Value int           `json:"value,omitempty"` // only set for CountdownNumber
}

type StackrabbitPlacement struct {
	Header
	PlayerEval float32 `json:"playerEval"`
	BestEval   float32 `json:"bestEval"`
}

type FullState struct {
	Header
	Delay int `json:"delay"`
	Score int `json:"score"`
	Level int `json:"level"`
	Lines int `json:"lines"`
}

func (GameStart) Tag() Tag            { return TagGameStart }
func (GameEnd) Tag() Tag              { return TagGameEnd }
func (Placement) Tag() Tag            { return TagPlacement }
func (FullBoard) Tag() Tag            { return TagFullBoard }
func (AbbreviatedBoard) Tag() Tag     { return TagAbbreviatedBoard }
func (Recovery) Tag() Tag             { return TagRecovery }
func (Countdown) Tag() Tag            { return TagCountdown }
func (StackrabbitPlacement) Tag() Tag { return TagStackrabbitPlacement }
func (FullState) Tag() Tag            { return TagFullState }

func (GameStart) isPacket()            {}
func (GameEnd) isPacket()              {}
func (Placement) isPacket()            {}
func (FullBoard) isPacket()            {}
func (AbbreviatedBoard) isPacket()     {}
func (Recovery) isPacket()             {}
func (Countdown) isPacket()            {}
func (StackrabbitPlacement) isPacket() {}
func (FullState) isPacket()            {}

func (t Tag) String() string {
	switch t {
	case TagEnd:
		return "end"
	case TagGameStart:
		return "gameStart"
	case TagGameEnd:
		return "gameEnd"
	case TagPlacement:
		return "placement"
	case TagFullBoard:
		return "fullBoard"
	case TagAbbreviatedBoard:
		return "abbreviatedBoard"
	case TagRecovery:
		return "recovery"
	case TagCountdown:
		return "countdown"
	case TagStackrabbitPlacement:
		return "stackrabbitPlacement"
	case TagFullState:
		return "fullState"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}
