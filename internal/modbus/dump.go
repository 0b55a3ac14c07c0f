package modbus

import "strings"

const hexDigits = "0123456789abcdef"

// HexDump renders b as space separated lowercase hex pairs, each followed
// by a space.
func HexDump(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for _, c := range b {
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Bits renders one byte most significant bit first.
func Bits(b byte) string {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		if b&(0x80>>i) != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf[:])
}
