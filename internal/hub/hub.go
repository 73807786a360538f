package hub

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/nestris-commentator/internal/room"
)

type HubMsg interface{ isHubMsg() }

// CreateRoom opens a room under a fresh id.
type CreateRoom struct {
	Reply chan *room.Room
}

type GetRoom struct {
	ID    string
	Reply chan *room.Room
}

type EnsureRoom struct {
	ID    string
	Reply chan *room.Room
}

type RemoveRoom struct {
	ID string
}

type ShutdownHub struct{}

// roomClosed is sent by the watcher goroutine when a room stops on its own.
type roomClosed struct {
	ID string
	R  *room.Room
}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}
func (roomClosed) isHubMsg()  {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	opts   room.Options
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, opts room.Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		opts:   opts,
		log:    opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				id := uuid.NewString()
				for h.rooms[id] != nil {
					id = uuid.NewString()
				}
				msg.Reply <- h.open(id)

			case GetRoom:
				msg.Reply <- h.rooms[msg.ID] // May be nil

			case EnsureRoom:
				if r := h.rooms[msg.ID]; r != nil {
					msg.Reply <- r
					break
				}
				msg.Reply <- h.open(msg.ID)

			case RemoveRoom:
				if r := h.rooms[msg.ID]; r != nil {
					select {
					case r.Inbox() <- room.Shutdown{}:
					case <-r.Done():
					}
					delete(h.rooms, msg.ID)
				}

			case roomClosed:
				if h.rooms[msg.ID] == msg.R {
					delete(h.rooms, msg.ID)
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// open starts a room and registers it. It returns nil when the room could
// not be started.
func (h *Hub) open(id string) *room.Room {
	r, err := room.New(h.ctx, id, h.opts)
	if err != nil {
		h.log.Error("open room", zap.String("room", id), zap.Error(err))
		return nil
	}
	h.rooms[id] = r
	h.log.Info("room opened", zap.String("room", id))

	go func() {
		<-r.Done()
		select {
		case h.inbox <- roomClosed{ID: id, R: r}:
		case <-h.ctx.Done():
		}
	}()
	return r
}

func (h *Hub) shutdown() {
	for id, r := range h.rooms {
		select {
		case r.Inbox() <- room.Shutdown{}:
		default:
			// rooms share the hub context and stop on cancel anyway
		}
		delete(h.rooms, id)
	}
	h.cancel()
}
