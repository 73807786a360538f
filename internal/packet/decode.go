package packet

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/nestris-commentator/internal/bitreader"
)

var ErrUnknownPacketType = errors.New("unknown packet type")
var ErrInvalidPlayerID = errors.New("invalid player id")

const (
	playerIDBits = 8
	tagBits      = 5
)

// Decode splits one frame into packets. Decoding stops at a zero tag, at
// the first unknown tag, or when the frame runs out of bits; packets read
// before the stopping point are always returned. The error only explains
// why decoding stopped early and is nil for a cleanly terminated frame.
func Decode(frame []byte) ([]Packet, error) {
	r := bitreader.New(frame)

	id, err := r.ReadUint(playerIDBits)
	if err != nil {
		return nil, fmt.Errorf("player id: %w", err)
	}
	if id > 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayerID, id)
	}
	h := Header{PlayerID: int(id)}

	var packets []Packet
	for {
		tag, err := r.ReadUint(tagBits)
		if err != nil {
			return packets, fmt.Errorf("tag after packet %d: %w", len(packets), err)
		}
		if Tag(tag) == TagEnd {
			return packets, nil
		}

		p, err := decodeBody(r, h, Tag(tag))
		if err != nil {
			return packets, fmt.Errorf("packet %d (%s): %w", len(packets), Tag(tag), err)
		}
		packets = append(packets, p)
	}
}

// DecodeOutbound decodes a payload captured on its way out of the local
// client. Those payloads lack the player id byte, so it is prefixed here.
func DecodeOutbound(playerID byte, payload []byte) ([]Packet, error) {
	frame := make([]byte, 0, len(payload)+1)
	frame = append(frame, playerID)
	frame = append(frame, payload...)
	return Decode(frame)
}

func decodeBody(r *bitreader.Reader, h Header, tag Tag) (Packet, error) {
	d := fieldReader{r: r}

	switch tag {
	case TagGameStart:
		p := GameStart{Header: h}
		p.Level = d.int(8)
		d.skip(6)
		return p, d.err

	case TagGameEnd:
		return GameEnd{Header: h}, nil

	case TagPlacement:
		p := Placement{Header: h}
		p.NextPiece = pieceFromCode(d.int(3))
		d.skip(11)
		p.Pushdown = d.int(4)
		return p, d.err

	case TagFullBoard:
		p := FullBoard{Header: h}
		p.Delay = d.int(12)
		d.skip(400)
		return p, d.err

	case TagAbbreviatedBoard:
		p := AbbreviatedBoard{Header: h}
		p.Delay = d.int(12)
		d.skip(11)
		return p, d.err

	case TagRecovery:
		p := Recovery{Header: h}
		p.StartLevel = d.int(8)
		d.skip(406)
		p.Score = d.int(26)
		p.Level = d.int(8)
		p.Lines = d.int(16)
		d.skip(4)
		p.NumTetrises = d.int(16)
		return p, d.err

	case TagCountdown:
		p := Countdown{Header: h}
		p.Delay = d.int(12)
		switch v := d.int(4); v {
		case countdownNotInGame:
			p.Kind = CountdownNotInGame
		case countdownLinecapReached:
			p.Kind = CountdownLinecapReached
		default:
			p.Kind = CountdownNumber
			p.Value = v
		}
		return p, d.err

	case TagStackrabbitPlacement:
		p := StackrabbitPlacement{Header: h}
		p.PlayerEval = d.float32()
		p.BestEval = d.float32()
		return p, d.err

	case TagFullState:
		p := FullState{Header: h}
		p.Delay = d.int(12)
		d.skip(403)
		p.Score = d.int(26)
		p.Level = d.int(8)
		p.Lines = d.int(16)
		return p, d.err

	default:
		return nil, ErrUnknownPacketType
	}
}

// fieldReader remembers the first read error so packet layouts can be
// written as straight-line field lists.
type fieldReader struct {
	r   *bitreader.Reader
	err error
}

func (d *fieldReader) int(n int) int {
	if d.err != nil {
		return 0
	}
	v, err := d.r.ReadUint(n)
	d.err = err
	return int(v)
}

func (d *fieldReader) skip(n int) {
	if d.err != nil {
		return
	}
	d.err = d.r.Discard(n)
}

func (d *fieldReader) float32() float32 {
	if d.err != nil {
		return 0
	}
	v, err := d.r.ReadFloat32()
	d.err = err
	return v
}

func pieceFromCode(code int) Piece {
	if code >= 0 && code < int(PieceUnknown) {
		return Piece(code)
	}
	return PieceUnknown
}
