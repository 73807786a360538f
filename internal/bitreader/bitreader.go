package bitreader

import (
	"errors"
	"math"
)

var ErrInsufficientData = errors.New("insufficient data")

// Reader consumes a byte slice as a stream of bits, most significant bit
// of each byte first. It never rewinds.
type Reader struct {
	data []byte
	pos  int // bit offset of the next unread bit
}

func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining reports how many bits are still unread.
func (r *Reader) Remaining() int {
	return len(r.data)*8 - r.pos
}

// ReadUint removes the next n bits and decodes them as a big-endian
// unsigned integer. n must be between 0 and 64.
func (r *Reader) ReadUint(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, errors.New("bit count out of range")
	}
	if r.Remaining() < n {
		return 0, ErrInsufficientData
	}

	var v uint64
	for i := 0; i < n; i++ {
		b := r.data[r.pos>>3]
		bit := (b >> (7 - uint(r.pos&7))) & 1
		v = v<<1 | uint64(bit)
		r.pos++
	}
	return v, nil
}

// Discard skips n bits without interpreting them.
func (r *Reader) Discard(n int) error {
	if n < 0 {
		return errors.New("bit count out of range")
	}
	if r.Remaining() < n {
		return ErrInsufficientData
	}
	r.pos += n
	return nil
}

// ReadFloat32 reads four 8-bit values and reinterprets them as a
// little-endian IEEE-754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	if r.Remaining() < 32 {
		return 0, ErrInsufficientData
	}

	var bits uint32
	for i := 0; i < 4; i++ {
		b, err := r.ReadUint(8)
		if err != nil {
			return 0, err
		}
		bits |= uint32(b) << (8 * i)
	}
	return math.Float32frombits(bits), nil
}
