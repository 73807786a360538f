package types

import (
	"encoding/json"
	"testing"
)

func TestFlag_Truthiness(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`null`, false},
		{`false`, false},
		{`0`, false},
		{`""`, false},
		{`true`, true},
		{`1`, true},
		{`0.0`, false},
		{`"2025-03-14T20:00:00Z"`, true},
		{`{}`, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var f Flag
			if err := json.Unmarshal([]byte(c.in), &f); err != nil {
				t.Fatalf("unmarshal %s: %v", c.in, err)
			}
			if bool(f) != c.want {
				t.Fatalf("Flag(%s) = %v, want %v", c.in, f, c.want)
			}
		})
	}
}

func TestRoomStatus_Multiplayer(t *testing.T) {
	two := map[string]RoomPlayer{"0": {Username: "a"}, "1": {Username: "b"}}
	cases := []struct {
		name string
		in   RoomStatus
		ok   bool
	}{
		{"two players", RoomStatus{RoomState: &RoomState{Type: RoomTypeMultiplayer, Players: two}}, true},
		{"no room", RoomStatus{}, false},
		{"status none", RoomStatus{Status: StatusNone, RoomState: &RoomState{Type: RoomTypeMultiplayer, Players: two}}, false},
		{"solo room", RoomStatus{RoomState: &RoomState{Type: "SOLO", Players: two}}, false},
		{"one seat", RoomStatus{RoomState: &RoomState{Type: RoomTypeMultiplayer, Players: map[string]RoomPlayer{"0": {}}}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p0, p1, ok := c.in.Multiplayer()
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if ok && (p0.Username != "a" || p1.Username != "b") {
				t.Fatalf("seats out of order: %+v %+v", p0, p1)
			}
		})
	}
}

func TestRoomPlayer_LeftRoomDecodes(t *testing.T) {
	var s RoomStatus
	raw := `{"type":"room_state_update","roomState":{"type":"MULTIPLAYER","startLevel":18,"levelCap":39,
		"players":{"0":{"userid":"u1","username":"a","leftRoom":1700000000},"1":{"userid":"u2","username":"b"}}}}`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	p0, p1, ok := s.Multiplayer()
	if !ok || !bool(p0.LeftRoom) || bool(p1.LeftRoom) {
		t.Fatalf("leftRoom decode: %+v %+v", p0, p1)
	}
	if s.RoomState.LevelCap != 39 {
		t.Fatalf("levelCap = %d", s.RoomState.LevelCap)
	}
}
