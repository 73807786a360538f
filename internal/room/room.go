package room

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/nestris-commentator/internal/engine"
	"github.com/DoyleJ11/nestris-commentator/internal/narrator"
	"github.com/DoyleJ11/nestris-commentator/internal/packet"
	"github.com/DoyleJ11/nestris-commentator/internal/transcript"
	"github.com/DoyleJ11/nestris-commentator/pkg/types"
)

type Msg interface{ isRoomMsg() }

// Frame is one inbound binary frame from the game server.
type Frame struct{ Data []byte }

func (Frame) isRoomMsg() {}

// OutboundFrame is a frame the viewer's own client sent. It carries no
// player id byte; the local seat is used.
type OutboundFrame struct{ Payload []byte }

func (OutboundFrame) isRoomMsg() {}

type Delta struct {
	Player int
	Field  engine.Field
	Value  int
}

func (Delta) isRoomMsg() {}

type RoomStatus struct{ Status types.RoomStatus }

func (RoomStatus) isRoomMsg() {}

type RoomUpdate struct{ Status types.RoomStatus }

func (RoomUpdate) isRoomMsg() {}

type Viewer struct{ UserID string }

func (Viewer) isRoomMsg() {}

type Navigate struct{ InRoom bool }

func (Navigate) isRoomMsg() {}

type IntroDone struct{}

func (IntroDone) isRoomMsg() {}

type Join struct {
	ClientID string
	Outbox   chan types.Commentary // where this listener receives commentary
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

// timerFired is posted by the room's scheduler; it never comes from outside.
type timerFired struct{ t *roomTimer }

func (timerFired) isRoomMsg() {}

type View struct {
	ID         string
	NumClients int
	Spoken     int
	Match      engine.MatchState
}

// Sink receives every line the room speaks.
type Sink interface {
	Record(ctx context.Context, e transcript.Entry) error
}

type Options struct {
	Logger *zap.Logger
	Sink   Sink
	Rand   func() float64

	Settle        time.Duration
	Grace         time.Duration
	ReminderEvery time.Duration
	EvalCooldown  time.Duration
}

// Room is one viewer session. It owns a single match engine and runs every
// input and every timer callback on its own goroutine.
type Room struct {
	id      string
	inbox   chan Msg
	engine  *engine.Engine
	narr    *narrator.Narrator
	log     *zap.Logger
	sink    Sink
	spoken  int
	clients map[string]chan types.Commentary
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, id string, opts Options) (*Room, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	n, err := narrator.New(opts.Rand)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		id:      id,
		inbox:   make(chan Msg, 256),
		narr:    n,
		log:     opts.Logger.With(zap.String("room", id)),
		sink:    opts.Sink,
		clients: make(map[string]chan types.Commentary),
		ctx:     ctx,
		cancel:  cancel,
	}
	r.engine = engine.New(engine.Options{
		Scheduler:     scheduler{r},
		Rand:          opts.Rand,
		Emit:          r.speak,
		Logger:        r.log,
		Settle:        opts.Settle,
		Grace:         opts.Grace,
		ReminderEvery: opts.ReminderEvery,
		EvalCooldown:  opts.EvalCooldown,
	})

	go r.loop()
	return r, nil
}

func (r *Room) ID() string { return r.id }

// Expose the inbox so the ws layer and tests can send messages.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Frame:
				pkts, err := packet.Decode(msg.Data)
				if err != nil {
					r.log.Debug("frame decode stopped", zap.Error(err), zap.Int("packets", len(pkts)))
				}
				r.engine.HandlePackets(pkts)

			case OutboundFrame:
				local, ok := r.engine.LocalPlayer()
				if !ok {
					break
				}
				pkts, err := packet.DecodeOutbound(byte(local), msg.Payload)
				if err != nil {
					r.log.Debug("outbound decode stopped", zap.Error(err), zap.Int("packets", len(pkts)))
				}
				r.engine.HandlePackets(pkts)

			case Delta:
				if err := r.engine.HandleDelta(msg.Player, msg.Field, msg.Value); err != nil {
					r.log.Debug("delta rejected", zap.Error(err),
						zap.Int("player", msg.Player), zap.String("field", string(msg.Field)))
				}

			case RoomStatus:
				if !r.engine.HandleRoomStatus(msg.Status) {
					r.log.Debug("not a two-player room, match cleared")
				}

			case RoomUpdate:
				r.engine.HandleRoomStateUpdate(msg.Status)

			case Viewer:
				r.engine.SetViewer(msg.UserID)

			case Navigate:
				r.engine.SetInRoom(msg.InRoom)

			case IntroDone:
				r.engine.IntroComplete()

			case timerFired:
				msg.t.fire()

			case Join:
				r.clients[msg.ClientID] = msg.Outbox

			case Leave:
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}

			case GetState:
				msg.Reply <- View{
					ID:         r.id,
					NumClients: len(r.clients),
					Spoken:     r.spoken,
					Match:      r.engine.Snapshot(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	r.engine.Teardown()
	for id, ch := range r.clients {
		close(ch) // no more commentary
		delete(r.clients, id)
	}
	r.cancel()
}

// speak renders a trigger and hands the line to every listener.
func (r *Room) speak(t engine.Trigger) {
	text := r.narr.Render(t)
	if text == "" {
		r.log.Debug("nothing to say", zap.String("kind", string(t.Kind)))
		return
	}
	c := types.Commentary{
		Type:           types.CommentaryNormal,
		Commentary:     text,
		IsIntroduction: t.Kind == engine.KindIntroduction,
		Kind:           string(t.Kind),
		Player:         t.Player,
	}
	if t.Terminal {
		c.Type = types.CommentaryEndGame
	}
	r.spoken++
	r.log.Info("commentary", zap.String("kind", c.Kind), zap.String("text", text))
	r.broadcast(c)
	r.record(t, text)
}

func (r *Room) broadcast(c types.Commentary) {
	for id, ch := range r.clients {
		select {
		case ch <- c:
			//ok
		default:
			// Listener is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) record(t engine.Trigger, text string) {
	if r.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
	defer cancel()
	err := r.sink.Record(ctx, transcript.Entry{
		RoomID:   r.id,
		Kind:     string(t.Kind),
		Player:   t.Player,
		Text:     text,
		Terminal: t.Terminal,
	})
	if err != nil {
		r.log.Warn("transcript write failed", zap.Error(err))
	}
}
