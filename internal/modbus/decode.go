// Package modbus decodes Modbus/TCP application messages carried in a
// single TCP segment. Request and reply share function codes but not wire
// layouts, so every decoder is selected by function code and direction.
package modbus

import (
	"fmt"

	"firestige.xyz/modbusdump/internal/core"
)

// eventLogCounters is the number of bytes of status, event and message
// counters that a function 12 byte count includes.
const eventLogCounters = 6

type decodeFunc func(r *reader) (Body, error)

// Decode decodes the Modbus/TCP message at the start of data. It returns
// ErrNotModbus when data is too short for an MBAP header, and an error
// wrapping ErrPacketTooShort or ErrMalformed when a field does not fit.
func Decode(data []byte, dir Direction) (*Message, error) {
	if dir == NotModbus {
		return nil, core.ErrNotModbus
	}
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	msg := &Message{Header: hdr, Direction: dir, Raw: data}

	fn := lookup(hdr.Function, dir)
	body, err := fn(newReader(data, pduOffset))
	if err != nil {
		return msg, fmt.Errorf("%s %s: %w", hdr.Function, dir, err)
	}
	msg.Body = body
	return msg, nil
}

func lookup(fc FunctionCode, dir Direction) decodeFunc {
	req := dir == Request
	switch fc {
	case FunctionReadCoilStatus, FunctionReadInputStatus:
		if req {
			return decodeReadRequest
		}
		return decodeReadBitsReply
	case FunctionReadHoldingRegisters, FunctionReadInputRegisters:
		if req {
			return decodeReadRequest
		}
		return decodeReadRegistersReply
	case FunctionForceSingleCoil, FunctionPresetSingleRegister:
		return decodeSingleWrite
	case FunctionDiagnostics:
		return decodeDiagnostics
	case FunctionFetchEventCounter:
		if req {
			return decodeEmptyRequest
		}
		return decodeEventCounterReply
	case FunctionFetchEventLog:
		if req {
			return decodeEmptyRequest
		}
		return decodeEventLogReply
	case FunctionForceMultipleCoils:
		if req {
			return decodeWriteMultipleCoilsRequest
		}
		return decodeWriteMultipleReply
	case FunctionPresetMultipleRegisters:
		if req {
			return decodeWriteMultipleRegistersRequest
		}
		return decodeWriteMultipleReply
	case FunctionReportSlaveID:
		if req {
			return decodeEmptyRequest
		}
		return decodeReportSlaveIDReply
	}
	if fc.IsError() && !req {
		return func(r *reader) (Body, error) { return decodeException(fc, r) }
	}
	return decodeUnknown
}

func decodeReadRequest(r *reader) (Body, error) {
	ref, err := r.u16()
	if err != nil {
		return nil, err
	}
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	return ReadRequest{Reference: ref, Count: count}, nil
}

func decodeReadBitsReply(r *reader) (Body, error) {
	n, err := r.u8()
	if err != nil {
		return nil, err
	}
	data, err := r.counted(int(n))
	if err != nil {
		return nil, err
	}
	return ReadBitsReply{ByteCount: n, Data: data}, nil
}

func decodeReadRegistersReply(r *reader) (Body, error) {
	n, err := r.u8()
	if err != nil {
		return nil, err
	}
	data, err := r.counted(int(n))
	if err != nil {
		return nil, err
	}
	return ReadRegistersReply{ByteCount: n, Data: data, Registers: registers(data)}, nil
}

func decodeSingleWrite(r *reader) (Body, error) {
	ref, err := r.u16()
	if err != nil {
		return nil, err
	}
	v, err := r.u16()
	if err != nil {
		return nil, err
	}
	return SingleWrite{Reference: ref, Value: v}, nil
}

func decodeDiagnostics(r *reader) (Body, error) {
	sub, err := r.u16()
	if err != nil {
		return nil, err
	}
	data, err := r.u16()
	if err != nil {
		return nil, err
	}
	return Diagnostics{SubCode: sub, Data: data}, nil
}

func decodeEmptyRequest(*reader) (Body, error) {
	return EmptyRequest{}, nil
}

func decodeEventCounterReply(r *reader) (Body, error) {
	status, err := r.u16()
	if err != nil {
		return nil, err
	}
	events, err := r.u16()
	if err != nil {
		return nil, err
	}
	return EventCounterReply{Status: status, EventCount: events}, nil
}

func decodeEventLogReply(r *reader) (Body, error) {
	n, err := r.u8()
	if err != nil {
		return nil, err
	}
	if n < eventLogCounters {
		return nil, core.ErrMalformed
	}
	// the counters are part of the byte count, check the whole span first
	if int(n) > r.remaining() {
		return nil, core.ErrMalformed
	}
	var reply EventLogReply
	reply.ByteCount = n
	if reply.Status, err = r.u16(); err != nil {
		return nil, err
	}
	if reply.EventCount, err = r.u16(); err != nil {
		return nil, err
	}
	if reply.MessageCount, err = r.u16(); err != nil {
		return nil, err
	}
	if reply.Events, err = r.counted(int(n) - eventLogCounters); err != nil {
		return nil, err
	}
	return reply, nil
}

func decodeWriteMultipleCoilsRequest(r *reader) (Body, error) {
	var req WriteMultipleCoilsRequest
	var err error
	if req.Reference, err = r.u16(); err != nil {
		return nil, err
	}
	if req.BitCount, err = r.u16(); err != nil {
		return nil, err
	}
	if req.ByteCount, err = r.u8(); err != nil {
		return nil, err
	}
	if req.Data, err = r.counted(int(req.ByteCount)); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeWriteMultipleRegistersRequest(r *reader) (Body, error) {
	var req WriteMultipleRegistersRequest
	var err error
	if req.Reference, err = r.u16(); err != nil {
		return nil, err
	}
	if req.RegisterCount, err = r.u16(); err != nil {
		return nil, err
	}
	if req.ByteCount, err = r.u8(); err != nil {
		return nil, err
	}
	if req.Data, err = r.counted(int(req.ByteCount)); err != nil {
		return nil, err
	}
	req.Registers = registers(req.Data)
	return req, nil
}

func decodeWriteMultipleReply(r *reader) (Body, error) {
	ref, err := r.u16()
	if err != nil {
		return nil, err
	}
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	return WriteMultipleReply{Reference: ref, Count: count}, nil
}

func decodeReportSlaveIDReply(r *reader) (Body, error) {
	return ReportSlaveIDReply{Data: r.rest()}, nil
}

func decodeException(fc FunctionCode, r *reader) (Body, error) {
	code, err := r.u8()
	if err != nil {
		return nil, err
	}
	return ExceptionReply{Function: fc.Base(), Code: ExceptionCode(code)}, nil
}

func decodeUnknown(r *reader) (Body, error) {
	return Unknown{Data: r.rest()}, nil
}
