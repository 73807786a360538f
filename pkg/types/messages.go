package types

// Commentary is what a room pushes to listeners for every rendered trigger.
//
//	{ "type": "COMMENTARY" | "END_GAME",
//	  "commentary": "Tetris for Alex!",
//	  "isIntroduction": false,
//	  "kind": "tetris", "player": 0 }
type Commentary struct {
	Type           string `json:"type"`
	Commentary     string `json:"commentary"`
	IsIntroduction bool   `json:"isIntroduction,omitempty"`
	Kind           string `json:"kind"`
	Player         int    `json:"player"`
}

const (
	CommentaryNormal  = "COMMENTARY"
	CommentaryEndGame = "END_GAME"
)
