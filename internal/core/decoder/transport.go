package decoder

import (
	"encoding/binary"

	"firestige.xyz/modbusdump/internal/core"
)

const (
	udpHeaderLen    = 8
	tcpHeaderMinLen = 20

	// type, code and checksum
	icmpHeaderLen = 4
	// echo request/reply adds identifier and sequence number
	icmpEchoLen = 8
)

// decodeUDP decodes UDP header.
func decodeUDP(data []byte) (core.TransportHeader, []byte, error) {
	if len(data) < udpHeaderLen {
		return core.TransportHeader{}, nil, core.ErrPacketTooShort
	}

	transport := core.TransportHeader{
		Protocol: core.IPProtocolUDP,
		SrcPort:  binary.BigEndian.Uint16(data[0:2]),
		DstPort:  binary.BigEndian.Uint16(data[2:4]),
		// declared length, includes header and data
		Length: int(binary.BigEndian.Uint16(data[4:6])),
	}

	return transport, data[udpHeaderLen:], nil
}

// decodeTCP decodes TCP header. Length is the whole segment, header included.
func decodeTCP(data []byte) (core.TransportHeader, []byte, error) {
	if len(data) < tcpHeaderMinLen {
		return core.TransportHeader{}, nil, core.ErrPacketTooShort
	}

	transport := core.TransportHeader{
		Protocol: core.IPProtocolTCP,
		SrcPort:  binary.BigEndian.Uint16(data[0:2]),
		DstPort:  binary.BigEndian.Uint16(data[2:4]),
		SeqNum:   binary.BigEndian.Uint32(data[4:8]),
		AckNum:   binary.BigEndian.Uint32(data[8:12]),
		Length:   len(data),
	}

	// Data offset is in 32-bit words
	headerLen := int(data[12]>>4) * 4
	if headerLen < tcpHeaderMinLen || len(data) < headerLen {
		return transport, nil, core.ErrPacketTooShort
	}

	// Flags: URG, ACK, PSH, RST, SYN, FIN
	transport.TCPFlags = data[13] & 0x3F

	return transport, data[headerLen:], nil
}

// decodeICMP decodes an ICMPv4 header. Echo messages also carry an
// identifier and a sequence number.
func decodeICMP(data []byte) (core.ICMPHeader, []byte, error) {
	if len(data) < icmpHeaderLen {
		return core.ICMPHeader{}, nil, core.ErrPacketTooShort
	}

	icmp := core.ICMPHeader{Version: 4, Type: data[0], Code: data[1]}
	if !icmp.IsEcho() {
		return icmp, data[icmpHeaderLen:], nil
	}
	if len(data) < icmpEchoLen {
		return icmp, nil, core.ErrPacketTooShort
	}
	icmp.Identifier = binary.BigEndian.Uint16(data[4:6])
	icmp.Sequence = binary.BigEndian.Uint16(data[6:8])

	return icmp, data[icmpEchoLen:], nil
}

// decodeICMPv6 decodes the type and code of an ICMPv6 message.
func decodeICMPv6(data []byte) (core.ICMPHeader, []byte, error) {
	if len(data) < icmpHeaderLen {
		return core.ICMPHeader{}, nil, core.ErrPacketTooShort
	}
	return core.ICMPHeader{Version: 6, Type: data[0], Code: data[1]}, data[icmpHeaderLen:], nil
}
