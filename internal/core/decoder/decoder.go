// Package decoder implements L2-L4 protocol stack decoding.
package decoder

import (
	"errors"

	"firestige.xyz/modbusdump/internal/core"
)

// Decoder decodes raw packets into structured format.
type Decoder interface {
	Decode(raw core.RawPacket) (core.DecodedPacket, error)
}

// AppParser decodes the payload of a transport segment into an
// application message.
type AppParser interface {
	Name() string
	// Layer is appended to DecodedPacket.Layers after a successful Handle.
	Layer() core.LayerType
	CanHandle(pkt *core.DecodedPacket) bool
	Handle(pkt *core.DecodedPacket) (any, error)
}

// Config holds decoder configuration.
type Config struct {
	// Parsers are tried in order; the first one that can handle a segment wins.
	Parsers []AppParser
}

// StandardDecoder walks a frame from Ethernet down to the application layer.
// It keeps no state between frames.
type StandardDecoder struct {
	parsers []AppParser
}

// NewStandardDecoder creates a new StandardDecoder.
func NewStandardDecoder(cfg Config) *StandardDecoder {
	return &StandardDecoder{parsers: cfg.Parsers}
}

// Decode decodes one Ethernet frame. On failure it returns the layers decoded
// so far together with a *core.DecodeError naming the failing layer.
// Unknown ether types and protocols are not errors; decoding just stops.
func (d *StandardDecoder) Decode(raw core.RawPacket) (core.DecodedPacket, error) {
	pkt := core.DecodedPacket{
		Timestamp: raw.Timestamp,
		Length:    len(raw.Data),
	}

	eth, payload, err := decodeEthernet(raw.Data)
	if err != nil {
		return pkt, core.NewDecodeError(core.LayerEthernet, err)
	}
	pkt.Ethernet = eth
	pkt.Layers = append(pkt.Layers, core.LayerEthernet)
	pkt.Payload = payload

	switch eth.EtherType {
	case core.EtherTypeARP:
		arp, err := decodeARP(payload)
		if err != nil {
			return pkt, core.NewDecodeError(core.LayerARP, err)
		}
		pkt.ARP = arp
		pkt.Layers = append(pkt.Layers, core.LayerARP)
		pkt.Payload = nil
		return pkt, nil
	case core.EtherTypeIPv4, core.EtherTypeIPv6:
		return d.decodeNetwork(pkt)
	default:
		return pkt, nil
	}
}

func (d *StandardDecoder) decodeNetwork(pkt core.DecodedPacket) (core.DecodedPacket, error) {
	layer := core.LayerIPv4
	if pkt.Ethernet.EtherType == core.EtherTypeIPv6 {
		layer = core.LayerIPv6
	}

	ip, payload, err := decodeIP(pkt.Payload)
	if err == nil && layerOfVersion(ip.Version) != layer {
		err = core.ErrUnsupportedProto
	}
	if err != nil {
		return pkt, core.NewDecodeError(layer, err)
	}
	pkt.IP = ip
	pkt.Layers = append(pkt.Layers, layer)
	pkt.Payload = payload

	if ip.Fragment {
		return pkt, nil
	}
	return d.decodeTransport(pkt)
}

func (d *StandardDecoder) decodeTransport(pkt core.DecodedPacket) (core.DecodedPacket, error) {
	var (
		layer   core.LayerType
		payload []byte
		err     error
	)

	switch pkt.IP.Protocol {
	case core.IPProtocolTCP:
		layer = core.LayerTCP
		pkt.Transport, payload, err = decodeTCP(pkt.Payload)
	case core.IPProtocolUDP:
		layer = core.LayerUDP
		pkt.Transport, payload, err = decodeUDP(pkt.Payload)
	case core.IPProtocolICMP:
		layer = core.LayerICMP
		pkt.ICMP, payload, err = decodeICMP(pkt.Payload)
	case core.IPProtocolICMPv6:
		layer = core.LayerICMPv6
		pkt.ICMP, payload, err = decodeICMPv6(pkt.Payload)
	default:
		return pkt, nil
	}
	if err != nil {
		return pkt, core.NewDecodeError(layer, err)
	}
	pkt.Layers = append(pkt.Layers, layer)
	pkt.Payload = payload

	return d.decodeApp(pkt)
}

func (d *StandardDecoder) decodeApp(pkt core.DecodedPacket) (core.DecodedPacket, error) {
	for _, p := range d.parsers {
		if !p.CanHandle(&pkt) {
			continue
		}
		app, err := p.Handle(&pkt)
		if errors.Is(err, core.ErrNotModbus) {
			// not this protocol, the segment stays a plain transport segment
			return pkt, nil
		}
		if err != nil {
			// a partial message keeps the fields decoded before the failure
			if app != nil {
				pkt.AppType = p.Name()
				pkt.App = app
			}
			return pkt, core.NewDecodeError(p.Layer(), err)
		}
		pkt.Layers = append(pkt.Layers, p.Layer())
		pkt.AppType = p.Name()
		pkt.App = app
		return pkt, nil
	}
	return pkt, nil
}

func layerOfVersion(version uint8) core.LayerType {
	switch version {
	case 4:
		return core.LayerIPv4
	case 6:
		return core.LayerIPv6
	default:
		return core.LayerUnknown
	}
}
