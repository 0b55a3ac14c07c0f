package modbus

import (
	"encoding/binary"

	"firestige.xyz/modbusdump/internal/core"
)

const (
	// HeaderLen is the size of the MBAP header: transaction id, protocol id,
	// length and unit id.
	HeaderLen = 7

	// pduOffset is where function specific fields start, right after the
	// function code.
	pduOffset = HeaderLen + 1
)

// Header is the MBAP header plus the function code that follows it.
type Header struct {
	TransactionID uint16
	ProtocolID    uint16
	Length        uint16 // bytes following the length field
	UnitID        uint8
	Function      FunctionCode
}

// ParseHeader reads the Modbus/TCP header from the start of data.
// Fewer than HeaderLen bytes cannot be Modbus/TCP and yield ErrNotModbus;
// a bare MBAP header without a function code is too short.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderLen {
		return Header{}, core.ErrNotModbus
	}
	if len(data) < pduOffset {
		return Header{}, core.ErrPacketTooShort
	}
	return Header{
		TransactionID: binary.BigEndian.Uint16(data[0:2]),
		ProtocolID:    binary.BigEndian.Uint16(data[2:4]),
		Length:        binary.BigEndian.Uint16(data[4:6]),
		UnitID:        data[6],
		Function:      FunctionCode(data[7]),
	}, nil
}
