package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/nestris-commentator/internal/engine"
	"github.com/DoyleJ11/nestris-commentator/internal/packet"
	"github.com/DoyleJ11/nestris-commentator/internal/transcript"
	"github.com/DoyleJ11/nestris-commentator/pkg/types"
)

// helper: receive one line with a timeout so tests never hang
func recvCommentary(t *testing.T, ch <-chan types.Commentary, within time.Duration) types.Commentary {
	t.Helper()
	select {
	case c, ok := <-ch:
		if !ok {
			t.Fatalf("listener outbox closed unexpectedly")
		}
		return c
	case <-time.After(within):
		t.Fatalf("timed out waiting for commentary")
		return types.Commentary{} // unreachable
	}
}

func recvNoCommentary(t *testing.T, ch <-chan types.Commentary, within time.Duration) {
	t.Helper()
	select {
	case c, ok := <-ch:
		if !ok {
			return
		}
		t.Fatalf("expected no commentary within %v, but got: %+v", within, c)
	case <-time.After(within):
		// good: silence
	}
}

func recvView(t *testing.T, r *Room) View {
	t.Helper()
	reply := make(chan View, 1)
	r.Inbox() <- GetState{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

type memorySink struct {
	mu      sync.Mutex
	entries []transcript.Entry
}

func (s *memorySink) Record(_ context.Context, e transcript.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *memorySink) all() []transcript.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transcript.Entry(nil), s.entries...)
}

func newTestRoom(t *testing.T, sink Sink) *Room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r, err := New(ctx, "room-1", Options{
		Sink:          sink,
		Rand:          func() float64 { return 0 },
		Settle:        5 * time.Millisecond,
		Grace:         5 * time.Millisecond,
		ReminderEvery: time.Hour,
	})
	require.NoError(t, err)
	return r
}

func twoPlayerStatus() types.RoomStatus {
	return types.RoomStatus{
		Type: "in_room_status",
		RoomState: &types.RoomState{
			Type:       types.RoomTypeMultiplayer,
			StartLevel: 18,
			Players: map[string]types.RoomPlayer{
				"0": {UserID: "u-alice", Username: "alice"},
				"1": {UserID: "u-bob", Username: "Bob"},
			},
		},
	}
}

func TestRoom_DeltasSettleIntoCommentary(t *testing.T) {
	r := newTestRoom(t, nil)
	out := make(chan types.Commentary, 4)
	r.Inbox() <- Join{ClientID: "l1", Outbox: out}
	r.Inbox() <- RoomStatus{Status: twoPlayerStatus()}

	r.Inbox() <- Delta{Player: 0, Field: engine.FieldLines, Value: 4}
	r.Inbox() <- Delta{Player: 0, Field: engine.FieldScore, Value: 4000}

	c := recvCommentary(t, out, time.Second)
	if c.Type != types.CommentaryNormal || c.Kind != string(engine.KindTetris) {
		t.Fatalf("want tetris commentary, got %+v", c)
	}
	if c.Commentary != "Tetris for alice!" {
		t.Fatalf("unexpected line %q", c.Commentary)
	}
	recvNoCommentary(t, out, 30*time.Millisecond)

	v := recvView(t, r)
	assert.Equal(t, 1, v.Spoken)
	assert.Equal(t, 4000, v.Match.Players[0].Score)
}

func TestRoom_FrameTopoutEndsGame(t *testing.T) {
	sink := &memorySink{}
	r := newTestRoom(t, sink)
	out := make(chan types.Commentary, 4)
	r.Inbox() <- Join{ClientID: "l1", Outbox: out}
	r.Inbox() <- RoomStatus{Status: twoPlayerStatus()}
	r.Inbox() <- Delta{Player: 0, Field: engine.FieldScore, Value: 1000}
	r.Inbox() <- Delta{Player: 1, Field: engine.FieldScore, Value: 2000}

	r.Inbox() <- Frame{Data: packet.Encode(0, packet.GameEnd{})}

	c := recvCommentary(t, out, time.Second)
	if c.Type != types.CommentaryEndGame || c.Kind != string(engine.KindTopoutWin) {
		t.Fatalf("want END_GAME topoutWin, got %+v", c)
	}
	assert.Equal(t, 0, c.Player)

	v := recvView(t, r)
	assert.True(t, v.Match.GameOver)

	entries := sink.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "room-1", entries[0].RoomID)
	assert.True(t, entries[0].Terminal)
	assert.Equal(t, c.Commentary, entries[0].Text)
}

func TestRoom_BadFramesAreDropped(t *testing.T) {
	r := newTestRoom(t, nil)
	out := make(chan types.Commentary, 4)
	r.Inbox() <- Join{ClientID: "l1", Outbox: out}
	r.Inbox() <- RoomStatus{Status: twoPlayerStatus()}

	r.Inbox() <- Frame{Data: []byte{0x07}}
	r.Inbox() <- Frame{Data: nil}
	r.Inbox() <- Frame{Data: []byte{0x00, 0x40}} // tag 8 is unknown

	recvNoCommentary(t, out, 30*time.Millisecond)
	v := recvView(t, r)
	assert.True(t, v.Match.InRoom)
	assert.Equal(t, 1, v.NumClients)
}

func TestRoom_OutboundFrameUsesLocalSeat(t *testing.T) {
	r := newTestRoom(t, nil)
	out := make(chan types.Commentary, 4)
	r.Inbox() <- Join{ClientID: "l1", Outbox: out}

	// without a known viewer, outbound frames are ignored
	r.Inbox() <- RoomStatus{Status: twoPlayerStatus()}
	r.Inbox() <- OutboundFrame{Payload: packet.Encode(0, packet.GameEnd{})[1:]}
	recvNoCommentary(t, out, 30*time.Millisecond)

	r.Inbox() <- Viewer{UserID: "u-bob"}
	r.Inbox() <- RoomStatus{Status: twoPlayerStatus()}
	// seats are shown swapped: raw 0 is Bob, raw 1 is alice
	r.Inbox() <- Delta{Player: 0, Field: engine.FieldScore, Value: 1000}
	r.Inbox() <- Delta{Player: 1, Field: engine.FieldScore, Value: 2000}
	r.Inbox() <- OutboundFrame{Payload: packet.Encode(0, packet.GameEnd{})[1:]}

	c := recvCommentary(t, out, time.Second)
	assert.Equal(t, string(engine.KindTopoutWin), c.Kind)
	assert.Equal(t, 1, c.Player)
	assert.Contains(t, c.Commentary, "Bob has topped out")
}

func TestRoom_SlowListenerIsDropped(t *testing.T) {
	r := newTestRoom(t, nil)
	slow := make(chan types.Commentary) // unbuffered and never read
	fast := make(chan types.Commentary, 4)
	r.Inbox() <- Join{ClientID: "slow", Outbox: slow}
	r.Inbox() <- Join{ClientID: "fast", Outbox: fast}
	r.Inbox() <- RoomStatus{Status: twoPlayerStatus()}
	r.Inbox() <- Delta{Player: 1, Field: engine.FieldLines, Value: 4}

	recvCommentary(t, fast, time.Second)
	if _, ok := <-slow; ok {
		t.Fatalf("slow listener should have been closed")
	}
	assert.Equal(t, 1, recvView(t, r).NumClients)
}

func TestRoom_NavigateAwaySilencesRoom(t *testing.T) {
	r := newTestRoom(t, nil)
	out := make(chan types.Commentary, 4)
	r.Inbox() <- Join{ClientID: "l1", Outbox: out}
	r.Inbox() <- RoomStatus{Status: twoPlayerStatus()}
	r.Inbox() <- Navigate{InRoom: false}
	r.Inbox() <- Delta{Player: 0, Field: engine.FieldLines, Value: 4}

	recvNoCommentary(t, out, 30*time.Millisecond)
}

func TestRoom_IntroductionThenIntroDone(t *testing.T) {
	r := newTestRoom(t, nil)
	out := make(chan types.Commentary, 4)
	r.Inbox() <- Join{ClientID: "l1", Outbox: out}
	r.Inbox() <- RoomStatus{Status: twoPlayerStatus()}
	r.Inbox() <- Frame{Data: packet.Encode(0, packet.GameStart{Level: 18})}
	r.Inbox() <- Frame{Data: packet.Encode(1, packet.GameStart{Level: 18})}

	intro := recvCommentary(t, out, time.Second)
	assert.True(t, intro.IsIntroduction)

	r.Inbox() <- Delta{Player: 0, Field: engine.FieldLines, Value: 4}
	recvNoCommentary(t, out, 30*time.Millisecond)

	r.Inbox() <- IntroDone{}
	r.Inbox() <- Delta{Player: 0, Field: engine.FieldLines, Value: 8}
	c := recvCommentary(t, out, time.Second)
	assert.Equal(t, string(engine.KindTetris), c.Kind)
}

func TestRoom_LeaveAndShutdownCloseOutboxes(t *testing.T) {
	r := newTestRoom(t, nil)
	a := make(chan types.Commentary, 1)
	b := make(chan types.Commentary, 1)
	r.Inbox() <- Join{ClientID: "a", Outbox: a}
	r.Inbox() <- Join{ClientID: "b", Outbox: b}

	r.Inbox() <- Leave{ClientID: "a"}
	if _, ok := <-a; ok {
		t.Fatalf("left listener should be closed")
	}
	assert.Equal(t, 1, recvView(t, r).NumClients)

	r.Inbox() <- Shutdown{}
	if _, ok := <-b; ok {
		t.Fatalf("shutdown should close remaining listeners")
	}
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatalf("room did not stop")
	}
}
