package types

import (
	"bytes"
	"encoding/json"
)

// RoomStatus is the server's in_room_status / room_state_update payload as
// seen by the viewer's browser.
//
//	{ "type": "in_room_status", "status": "PLAYER",
//	  "roomState": { "type": "MULTIPLAYER", "startLevel": 18,
//	    "players": { "0": {...}, "1": {...} } } }
type RoomStatus struct {
	Type      string     `json:"type,omitempty"`
	Status    string     `json:"status,omitempty"`
	RoomState *RoomState `json:"roomState,omitempty"`
}

const (
	RoomTypeMultiplayer = "MULTIPLAYER"
	StatusNone          = "none"
)

type RoomState struct {
	Type       string                `json:"type"`
	StartLevel int                   `json:"startLevel"`
	LevelCap   int                   `json:"levelCap,omitempty"` // 0 when uncapped
	Players    map[string]RoomPlayer `json:"players"`
}

type RoomPlayer struct {
	UserID    string `json:"userid"`
	Username  string `json:"username"`
	LeftRoom  Flag   `json:"leftRoom"`
	Platform  string `json:"platform,omitempty"` // "OCR" | "ONLINE" | bot
	Trophies  int    `json:"trophies,omitempty"`
	Highscore int    `json:"highscore,omitempty"`
}

// Multiplayer returns both seats when s describes a two-player room.
func (s RoomStatus) Multiplayer() (RoomPlayer, RoomPlayer, bool) {
	if s.Status == StatusNone || s.RoomState == nil || s.RoomState.Type != RoomTypeMultiplayer {
		return RoomPlayer{}, RoomPlayer{}, false
	}
	p0, ok0 := s.RoomState.Players["0"]
	p1, ok1 := s.RoomState.Players["1"]
	if !ok0 || !ok1 {
		return RoomPlayer{}, RoomPlayer{}, false
	}
	return p0, p1, true
}

// Flag decodes any JSON scalar by truthiness. The server reports leftRoom
// as a bool on some paths and as a timestamp on others.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")),
		bytes.Equal(b, []byte(`""`)), bytes.Equal(b, []byte("0")):
		*f = false
		return nil
	case bytes.Equal(b, []byte("true")):
		*f = true
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*f = v != 0
	case string:
		*f = v != ""
	default:
		*f = true
	}
	return nil
}
