package packet

import "math"

// Writer packs values MSB-first into a growing bit stream. It mirrors the
// layout Decode expects and is used to synthesize frames.
type Writer struct {
	buf  []byte
	bits int
}

func (w *Writer) WriteUint(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		if w.bits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>uint(i)&1 == 1 {
			w.buf[len(w.buf)-1] |= 1 << (7 - uint(w.bits%8))
		}
		w.bits++
	}
}

// Pad writes n zero bits.
func (w *Writer) Pad(n int) {
	for n > 0 {
		step := min(n, 64)
		w.WriteUint(0, step)
		n -= step
	}
}

func (w *Writer) WriteFloat32(f float32) {
	bits := math.Float32bits(f)
	for i := 0; i < 4; i++ {
		w.WriteUint(uint64(bits>>(8*i)&0xFF), 8)
	}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int { return w.bits }

func (w *Writer) Bytes() []byte { return w.buf }

// Encode builds a frame for player carrying packets followed by a zero
// tag. The Header inside each packet is ignored.
func Encode(player byte, packets ...Packet) []byte {
	var w Writer
	w.WriteUint(uint64(player), playerIDBits)
	for _, p := range packets {
		EncodePacket(&w, p)
	}
	w.WriteUint(uint64(TagEnd), tagBits)
	return w.Bytes()
}

// EncodePacket appends the tag and body of p to w.
func EncodePacket(w *Writer, p Packet) {
	w.WriteUint(uint64(p.Tag()), tagBits)

	switch p := p.(type) {
	case GameStart:
		w.WriteUint(uint64(p.Level), 8)
		w.Pad(6)
	case GameEnd:
	case Placement:
		w.WriteUint(uint64(p.NextPiece), 3)
		w.Pad(11)
		w.WriteUint(uint64(p.Pushdown), 4)
	case FullBoard:
		w.WriteUint(uint64(p.Delay), 12)
		w.Pad(400)
	case AbbreviatedBoard:
		w.WriteUint(uint64(p.Delay), 12)
		w.Pad(11)
	case Recovery:
		w.WriteUint(uint64(p.StartLevel), 8)
		w.Pad(406)
		w.WriteUint(uint64(p.Score), 26)
		w.WriteUint(uint64(p.Level), 8)
		w.WriteUint(uint64(p.Lines), 16)
		w.Pad(4)
		w.WriteUint(uint64(p.NumTetrises), 16)
	case Countdown:
		w.WriteUint(uint64(p.Delay), 12)
		switch p.Kind {
		case CountdownNotInGame:
			w.WriteUint(countdownNotInGame, 4)
		case CountdownLinecapReached:
			w.WriteUint(countdownLinecapReached, 4)
		default:
			w.WriteUint(uint64(p.Value), 4)
		}
	case StackrabbitPlacement:
		w.WriteFloat32(p.PlayerEval)
		w.WriteFloat32(p.BestEval)
	case FullState:
		w.WriteUint(uint64(p.Delay), 12)
		w.Pad(403)
		w.WriteUint(uint64(p.Score), 26)
		w.WriteUint(uint64(p.Level), 8)
		w.WriteUint(uint64(p.Lines), 16)
	}
}
