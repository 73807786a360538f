package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/nestris-commentator/internal/engine"
	"github.com/DoyleJ11/nestris-commentator/internal/hub"
	"github.com/DoyleJ11/nestris-commentator/internal/room"
	"github.com/DoyleJ11/nestris-commentator/internal/types"
	pub "github.com/DoyleJ11/nestris-commentator/pkg/types"
)

type Options struct {
	Logger *zap.Logger
	// FrameRate caps how many messages per second one connection may push.
	FrameRate int
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 120
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("room")
		if id == "" {
			http.Error(w, "missing room", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{ID: id, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := opts.Logger.With(zap.String("room", id), zap.String("client", clientID))
		out := make(chan pub.Commentary, 16)

		if !send(r.Context(), rm, room.Join{ClientID: clientID, Outbox: out}) {
			return
		}
		defer send(context.Background(), rm, room.Leave{ClientID: clientID})
		log.Debug("listener joined")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for c := range out {
				payload, _ := json.Marshal(c)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		limiter := rate.NewLimiter(rate.Limit(opts.FrameRate), opts.FrameRate)

		// Reader loop
		for {
			typ, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}
			if err := limiter.Wait(r.Context()); err != nil {
				return
			}

			if typ == websocket.MessageBinary {
				if !send(r.Context(), rm, room.Frame{Data: data}) {
					return
				}
				continue
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}
			msg, err := toRoomMsg(cm)
			if err != nil {
				log.Debug("client message rejected", zap.String("type", cm.Type), zap.Error(err))
				writeError(r.Context(), conn, err.Error())
				continue
			}
			if !send(r.Context(), rm, msg) {
				return
			}
		}
	}
}

// send delivers m unless the room or the request goes away first.
func send(ctx context.Context, rm *room.Room, m room.Msg) bool {
	select {
	case rm.Inbox() <- m:
		return true
	case <-rm.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: msg})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func toRoomMsg(m types.ClientMessage) (room.Msg, error) {
	switch m.Type {
	case types.MsgOutboundBlob:
		return room.OutboundFrame{Payload: m.Data}, nil
	case types.MsgScoreChange:
		return room.Delta{Player: m.Player, Field: engine.FieldScore, Value: m.Value}, nil
	case types.MsgLevelChange:
		return room.Delta{Player: m.Player, Field: engine.FieldLevel, Value: m.Value}, nil
	case types.MsgLinesChange:
		return room.Delta{Player: m.Player, Field: engine.FieldLines, Value: m.Value}, nil
	case types.MsgInRoomStatus, types.MsgRoomStateUpdate:
		var st pub.RoomStatus
		if err := json.Unmarshal(m.Raw, &st); err != nil {
			return nil, ErrBadRoomStatus
		}
		if m.Type == types.MsgInRoomStatus {
			return room.RoomStatus{Status: st}, nil
		}
		return room.RoomUpdate{Status: st}, nil
	case types.MsgMe:
		return room.Viewer{UserID: m.UserID}, nil
	case types.MsgIntroComplete:
		return room.IntroDone{}, nil
	case types.MsgNavigate:
		return room.Navigate{InRoom: m.InRoom}, nil
	default:
		return nil, ErrUnknownType
	}
}
