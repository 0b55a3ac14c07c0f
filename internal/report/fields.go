package report

import (
	"fmt"
	"strconv"

	"firestige.xyz/modbusdump/internal/modbus"
)

// Field is one named value of a decoded Modbus body, in wire order.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

func field(name string, v any) Field {
	return Field{Name: name, Value: fmt.Sprint(v)}
}

// Title names the message, e.g. "Read Coil Status request".
func Title(msg *modbus.Message) string {
	if ex, ok := msg.Body.(modbus.ExceptionReply); ok {
		return ex.Function.String() + " exception"
	}
	if !msg.Header.Function.Known() {
		return "unknown function"
	}
	return msg.Header.Function.String() + " " + msg.Direction.String()
}

// BodyFields flattens msg.Body into display fields.
func BodyFields(msg *modbus.Message) []Field {
	fc := msg.Header.Function

	switch b := msg.Body.(type) {
	case modbus.ReadRequest:
		count := "Bit Count"
		if fc == modbus.FunctionReadHoldingRegisters || fc == modbus.FunctionReadInputRegisters {
			count = "Register Count"
		}
		return []Field{field("Reference Number", b.Reference), field(count, b.Count)}

	case modbus.ReadBitsReply:
		fields := []Field{field("Byte Count", b.ByteCount)}
		for i, d := range b.Data {
			fields = append(fields, Field{fmt.Sprintf("data%d~%d", i*8, i*8+7), modbus.Bits(d)})
		}
		return fields

	case modbus.ReadRegistersReply:
		fields := []Field{field("Byte Count", b.ByteCount)}
		return append(fields, registerFields("data", 0, b.Registers)...)

	case modbus.SingleWrite:
		return []Field{field("Reference Number", b.Reference), field("Change Data", b.Value)}

	case modbus.Diagnostics:
		return []Field{field("Sub Code", b.SubCode), field("Data", b.Data)}

	case modbus.EmptyRequest:
		return nil

	case modbus.EventCounterReply:
		return []Field{field("Status", b.Status), field("Event Counter", b.EventCount)}

	case modbus.EventLogReply:
		fields := []Field{
			field("Byte Count", b.ByteCount),
			field("Status", b.Status),
			field("Event Counter", b.EventCount),
			field("Message Counter", b.MessageCount),
		}
		for i, e := range b.Events {
			fields = append(fields, field("event"+strconv.Itoa(i), e))
		}
		return fields

	case modbus.WriteMultipleCoilsRequest:
		data := modbus.HexDump(b.Data)
		if v, ok := b.Value(); ok {
			data = strconv.FormatUint(v, 10)
		}
		return []Field{
			field("Reference Number", b.Reference),
			field("Bit Count", b.BitCount),
			field("Byte Count", b.ByteCount),
			{"Data", data},
		}

	case modbus.WriteMultipleRegistersRequest:
		fields := []Field{
			field("Reference Number", b.Reference),
			field("Registers Count", b.RegisterCount),
			field("Byte Count", b.ByteCount),
		}
		return append(fields, registerFields("Change Data", 1, b.Registers)...)

	case modbus.WriteMultipleReply:
		count := "Bit Count"
		if fc == modbus.FunctionPresetMultipleRegisters {
			count = "Registers Count"
		}
		return []Field{field("Reference Number", b.Reference), field(count, b.Count)}

	case modbus.ReportSlaveIDReply:
		return []Field{{"Data", modbus.HexDump(b.Data)}}

	case modbus.ExceptionReply:
		return []Field{{"Exception", fmt.Sprintf("%s (%d)", b.Code, uint8(b.Code))}}

	default:
		// Unknown carries nothing beyond the raw function code and the dump
		return nil
	}
}

func registerFields(prefix string, base int, regs []uint16) []Field {
	fields := make([]Field, len(regs))
	for i, r := range regs {
		fields[i] = field(prefix+strconv.Itoa(i+base), r)
	}
	return fields
}
