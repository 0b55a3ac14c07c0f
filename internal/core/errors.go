// Package core defines sentinel errors.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every decode stage.
var (
	// ErrPacketTooShort reports a slice shorter than a header's fixed portion.
	ErrPacketTooShort = errors.New("modbusdump: packet too short")
	// ErrMalformed reports a length field that disagrees with the buffer.
	ErrMalformed = errors.New("modbusdump: malformed packet")
	// ErrNotModbus reports TCP payload that cannot carry a Modbus/TCP message.
	ErrNotModbus = errors.New("modbusdump: not a modbus/tcp message")
	// ErrUnsupportedProto reports a protocol the decoder does not unwind.
	ErrUnsupportedProto = errors.New("modbusdump: unsupported protocol")

	// ErrConfigInvalid reports a configuration that failed validation.
	ErrConfigInvalid = errors.New("modbusdump: invalid configuration")
)

// DecodeError ties a decode failure to the layer that produced it.
// Layers decoded before the failing one stay valid in the DecodedPacket.
type DecodeError struct {
	Layer LayerType
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed %s packet: %v", e.Layer, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError wraps err for layer.
func NewDecodeError(layer LayerType, err error) *DecodeError {
	return &DecodeError{Layer: layer, Err: err}
}
