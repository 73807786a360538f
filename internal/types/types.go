package types

import "encoding/json"

// Client message types sent by the capture shim.
const (
	MsgOutboundBlob    = "websocketOutboundBlob"
	MsgScoreChange     = "scoreChange"
	MsgLevelChange     = "levelChange"
	MsgLinesChange     = "linesChange"
	MsgInRoomStatus    = "in_room_status"
	MsgRoomStateUpdate = "room_state_update"
	MsgMe              = "ME"
	MsgIntroComplete   = "introComplete"
	MsgNavigate        = "navigate"
)

// ClientMessage is any JSON message from the capture shim. Inbound game
// frames arrive as binary websocket messages instead.
//
// Room snapshots (in_room_status, room_state_update) keep their raw body
// and are decoded into pkg/types.RoomStatus by the receiver.
type ClientMessage struct {
	Type string `json:"type"`

	Data   []byte `json:"-"`
	Player int    `json:"player,omitempty"`
	Value  int    `json:"value,omitempty"`
	UserID string `json:"userid,omitempty"`
	InRoom bool   `json:"inRoom,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON accepts the outbound frame as a JSON array of byte values,
// the way the browser serializes a Uint8Array.
func (m *ClientMessage) UnmarshalJSON(b []byte) error {
	type plain ClientMessage
	var aux struct {
		plain
		Data []int `json:"data,omitempty"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*m = ClientMessage(aux.plain)
	if aux.Data != nil {
		m.Data = make([]byte, len(aux.Data))
		for i, v := range aux.Data {
			m.Data[i] = byte(v)
		}
	}
	m.Raw = append(json.RawMessage(nil), b...)
	return nil
}

type ServerMessage struct {
	Type  string `json:"type"` // "Error"
	Error string `json:"error,omitempty"`
}
