package modbus

// DefaultPort is the well-known Modbus/TCP server port.
const DefaultPort uint16 = 502

// Direction tells whether a segment travels towards the Modbus server.
// It is derived from the TCP ports and never transmitted.
type Direction uint8

const (
	NotModbus Direction = iota
	Request
	Reply
)

func (d Direction) String() string {
	switch d {
	case Request:
		return "request"
	case Reply:
		return "reply"
	default:
		return "not modbus"
	}
}

// DirectionOf classifies a TCP segment by the well-known Modbus port.
func DirectionOf(srcPort, dstPort uint16) Direction {
	return DirectionOnPort(srcPort, dstPort, DefaultPort)
}

// DirectionOnPort classifies a TCP segment against a server port.
// The destination is checked first, so a segment with port on both sides
// is a request.
func DirectionOnPort(srcPort, dstPort, port uint16) Direction {
	switch {
	case dstPort == port:
		return Request
	case srcPort == port:
		return Reply
	default:
		return NotModbus
	}
}
