package modbus

import (
	"encoding/binary"

	"firestige.xyz/modbusdump/internal/core"
)

// reader reads big-endian fields from a Modbus message. Every read checks
// the remaining length first; it never slices past the buffer.
type reader struct {
	buf []byte
	off int
}

func newReader(buf []byte, off int) *reader {
	if off > len(buf) {
		off = len(buf)
	}
	return &reader{buf: buf, off: off}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, core.ErrPacketTooShort
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, core.ErrPacketTooShort
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// counted returns n bytes announced by a length field inside the message.
// A count larger than what remains is a malformed message, not a short one.
func (r *reader) counted(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, core.ErrMalformed
	}
	v := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return v, nil
}

// rest returns every unread byte.
func (r *reader) rest() []byte {
	v := r.buf[r.off:len(r.buf):len(r.buf)]
	r.off = len(r.buf)
	return v
}

// registers reinterprets data as big-endian 16-bit registers. An odd
// trailing byte is ignored.
func registers(data []byte) []uint16 {
	n := len(data) / 2
	regs := make([]uint16, n)
	for i := 0; i < n; i++ {
		regs[i] = binary.BigEndian.Uint16(data[i*2:])
	}
	return regs
}
