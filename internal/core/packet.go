// Package core defines core data structures with zero external dependencies.
package core

import "time"

// RawPacket is one captured link-layer frame. Data is borrowed from the
// capture source for the duration of a single decode call.
type RawPacket struct {
	Data       []byte
	Timestamp  time.Time
	CaptureLen uint32
	OrigLen    uint32
}

// DecodedPacket is the result of walking a frame down the protocol stack.
// Only the headers named in Layers are meaningful.
type DecodedPacket struct {
	Timestamp time.Time
	Length    int // frame length as seen by the classifier
	Layers    []LayerType

	Ethernet  EthernetHeader
	ARP       ARPHeader
	IP        IPHeader
	Transport TransportHeader
	ICMP      ICMPHeader

	// Payload is the bytes following the innermost decoded header.
	Payload []byte

	// AppType names the application parser that produced App, empty if none.
	// App may be partial when the application layer is malformed; the layer
	// is then missing from Layers.
	AppType string
	App     any
}

// Has reports whether layer was decoded.
func (p *DecodedPacket) Has(layer LayerType) bool {
	for _, l := range p.Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// Last returns the innermost decoded layer.
func (p *DecodedPacket) Last() LayerType {
	if len(p.Layers) == 0 {
		return LayerUnknown
	}
	return p.Layers[len(p.Layers)-1]
}
