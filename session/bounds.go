package session

import (
	"encoding/binary"
)

// cursor walks a packet payload left to right, rejecting any read that
// would cross the end of the slice it was built from. It never trusts a
// length read earlier in the same payload: callers must route every
// wire-supplied count through checkedMul before using it to size a read.
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b}
}

func (c *cursor) remaining() int {
	return len(c.b) - c.pos
}

func (c *cursor) u8() (byte, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	v := c.b[c.pos]
	c.pos++
	return v, true
}

func (c *cursor) u16() (uint16, bool) {
	if c.remaining() < 2 {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(c.b[c.pos:])
	c.pos += 2
	return v, true
}

func (c *cursor) u32() (uint32, bool) {
	if c.remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(c.b[c.pos:])
	c.pos += 4
	return v, true
}

// bytes reads exactly n bytes and returns a slice aliasing the
// underlying payload. Callers that need to retain the data past the
// lifetime of the frame buffer must copy it themselves.
func (c *cursor) bytes(n int) ([]byte, bool) {
	if n < 0 || c.remaining() < n {
		return nil, false
	}
	v := c.b[c.pos : c.pos+n]
	c.pos += n
	return v, true
}

// cstring reads a NUL-terminated string starting at the cursor and
// advances past the terminator. Returns false if no NUL is found
// before the end of the payload.
func (c *cursor) cstring() (string, bool) {
	for i := c.pos; i < len(c.b); i++ {
		if c.b[i] == 0 {
			s := string(c.b[c.pos:i])
			c.pos = i + 1
			return s, true
		}
	}
	return "", false
}

// rest returns every byte from the current position to the end.
func (c *cursor) rest() []byte {
	return c.b[c.pos:]
}

// checkedMul reports whether a*b overflows a uint64 and, if not,
// returns the product. Every count read from the wire must be routed
// through here before it sizes an allocation or a slice read.
func checkedMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/a != b {
		return 0, false
	}
	return p, true
}

// le32 encodes v as little-endian into dst, which must be at least 4
// bytes long.
func le32(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}

func le16(dst []byte, v uint16) {
	binary.LittleEndian.PutUint16(dst, v)
}
