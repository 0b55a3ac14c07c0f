package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"firestige.xyz/modbusdump/internal/core"
	"firestige.xyz/modbusdump/internal/modbus"
)

// TextReporter prints one line per layer summary, and a field block with a
// hex dump for Modbus messages.
type TextReporter struct {
	w      *bufio.Writer
	source string
}

// NewTextReporter creates a TextReporter.
func NewTextReporter(w io.Writer, source string) *TextReporter {
	return &TextReporter{w: bufio.NewWriter(w), source: source}
}

func (r *TextReporter) Report(pkt *core.DecodedPacket, decodeErr error) error {
	r.layers(pkt, decodeErr == nil)

	if decodeErr != nil {
		var de *core.DecodeError
		if errors.As(decodeErr, &de) {
			r.linef("Malformed %s Packet", de.Layer)
		} else {
			r.linef("Malformed Packet: %v", decodeErr)
		}
	}
	return r.w.Flush()
}

// layers prints the summary lines. complete is false when decoding stopped
// on an error, in which case the last decoded layer is not summarized as
// unknown.
func (r *TextReporter) layers(pkt *core.DecodedPacket, complete bool) {
	eth := pkt.Ethernet
	if len(eth.VLANs) > 0 {
		r.linef("VLAN: %s", joinUint16(eth.VLANs))
	}

	switch {
	case pkt.Has(core.LayerARP):
		a := pkt.ARP
		r.linef("ARP packet: %s(%s) > %s(%s); operation: %s",
			eth.SrcMAC, a.SenderIP, eth.DstMAC, a.TargetIP, arpOperation(a.Operation))

	case pkt.Has(core.LayerIPv4) || pkt.Has(core.LayerIPv6):
		r.transport(pkt, complete)

	case pkt.Has(core.LayerEthernet) && complete:
		r.linef("Unknown packet: %s > %s; ethertype: 0x%04x length: %d",
			eth.SrcMAC, eth.DstMAC, eth.EtherType, pkt.Length)
	}
}

func (r *TextReporter) transport(pkt *core.DecodedPacket, complete bool) {
	ip, tp := pkt.IP, pkt.Transport

	switch {
	case pkt.Has(core.LayerTCP):
		r.linef("TCP Packet: %s > %s; length: %d",
			hostPort(ip.SrcIP, tp.SrcPort), hostPort(ip.DstIP, tp.DstPort), tp.Length)
		if msg, ok := pkt.App.(*modbus.Message); ok {
			r.modbus(msg)
		}

	case pkt.Has(core.LayerUDP):
		r.linef("UDP Packet: %s > %s; length: %d",
			hostPort(ip.SrcIP, tp.SrcPort), hostPort(ip.DstIP, tp.DstPort), tp.Length)

	case pkt.Has(core.LayerICMP):
		icmp := pkt.ICMP
		switch {
		case icmp.IsEcho() && icmp.Type == core.ICMPEchoRequest:
			r.linef("ICMP echo request %s -> %s (seq=%d, id=%d)", ip.SrcIP, ip.DstIP, icmp.Sequence, icmp.Identifier)
		case icmp.IsEcho():
			r.linef("ICMP echo reply %s -> %s (seq=%d, id=%d)", ip.SrcIP, ip.DstIP, icmp.Sequence, icmp.Identifier)
		default:
			r.linef("ICMP packet %s -> %s (type=%d)", ip.SrcIP, ip.DstIP, icmp.Type)
		}

	case pkt.Has(core.LayerICMPv6):
		r.linef("ICMPv6 packet %s -> %s (type=%d)", ip.SrcIP, ip.DstIP, pkt.ICMP.Type)

	case !complete:
		// the transport header itself is malformed

	case ip.Fragment:
		r.linef("IPv%d fragment: %s > %s; protocol: %d length: %d",
			ip.Version, ip.SrcIP, ip.DstIP, ip.Protocol, len(pkt.Payload))

	default:
		r.linef("Unknown IPv%d packet: %s > %s; protocol: %d length: %d",
			ip.Version, ip.SrcIP, ip.DstIP, ip.Protocol, len(pkt.Payload))
	}
}

func (r *TextReporter) modbus(msg *modbus.Message) {
	h := msg.Header
	fmt.Fprintf(r.w, "Transaction Identifier: %d\n", h.TransactionID)
	fmt.Fprintf(r.w, "Protocol Identifier: %d\n", h.ProtocolID)
	fmt.Fprintf(r.w, "Length: %d\n", h.Length)
	fmt.Fprintf(r.w, "Unit Identifier: %d\n", h.UnitID)
	fmt.Fprintf(r.w, "Function Code: %d %s\n", uint8(h.Function), Title(msg))
	for _, f := range BodyFields(msg) {
		fmt.Fprintf(r.w, "%s: %s\n", f.Name, f.Value)
	}
	fmt.Fprintln(r.w, modbus.HexDump(msg.Raw))
}

func (r *TextReporter) linef(format string, args ...any) {
	fmt.Fprintf(r.w, "[%s]: ", r.source)
	fmt.Fprintf(r.w, format, args...)
	r.w.WriteByte('\n')
}

func hostPort(addr netip.Addr, port uint16) string {
	return netip.AddrPortFrom(addr, port).String()
}

func arpOperation(op uint16) string {
	switch op {
	case 1:
		return "Request"
	case 2:
		return "Reply"
	default:
		return fmt.Sprintf("Unknown(%d)", op)
	}
}

func joinUint16(vs []uint16) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = fmt.Sprint(v)
	}
	return strings.Join(s, ",")
}
