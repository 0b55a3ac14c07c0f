package modbus

import "firestige.xyz/modbusdump/internal/core"

// Parser adapts Decode to the decoder's application parser slot. It claims
// TCP segments with a payload where one side uses Port.
type Parser struct {
	Port uint16
}

// NewParser returns a Parser for port, or DefaultPort when port is 0.
func NewParser(port uint16) *Parser {
	if port == 0 {
		port = DefaultPort
	}
	return &Parser{Port: port}
}

func (p *Parser) Name() string { return "modbus" }

func (p *Parser) Layer() core.LayerType { return core.LayerModbus }

func (p *Parser) CanHandle(pkt *core.DecodedPacket) bool {
	if !pkt.Has(core.LayerTCP) || len(pkt.Payload) == 0 {
		return false
	}
	return p.direction(pkt) != NotModbus
}

// Handle decodes the TCP payload of pkt. The returned value is a *Message,
// possibly partially filled when err is not nil.
func (p *Parser) Handle(pkt *core.DecodedPacket) (any, error) {
	msg, err := Decode(pkt.Payload, p.direction(pkt))
	if msg == nil {
		return nil, err
	}
	return msg, err
}

func (p *Parser) direction(pkt *core.DecodedPacket) Direction {
	return DirectionOnPort(pkt.Transport.SrcPort, pkt.Transport.DstPort, p.Port)
}
