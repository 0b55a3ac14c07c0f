package decoder

import (
	"encoding/binary"
	"net/netip"

	"firestige.xyz/modbusdump/internal/core"
)

const (
	ipv4HeaderMinLen = 20
	ipv6HeaderLen    = 40
)

// decodeIP decodes IP header (IPv4 or IPv6).
// Returns IPHeader and remaining payload.
func decodeIP(data []byte) (core.IPHeader, []byte, error) {
	if len(data) < 1 {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	switch data[0] >> 4 {
	case 4:
		return decodeIPv4(data)
	case 6:
		return decodeIPv6(data)
	default:
		return core.IPHeader{}, nil, core.ErrUnsupportedProto
	}
}

// decodeIPv4 decodes IPv4 header. The payload ends at Total Length so that
// Ethernet padding is not taken for transport data.
func decodeIPv4(data []byte) (core.IPHeader, []byte, error) {
	if len(data) < ipv4HeaderMinLen {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	// IHL is in 32-bit words
	headerLen := int(data[0]&0x0F) * 4
	if headerLen < ipv4HeaderMinLen || len(data) < headerLen {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	ip := core.IPHeader{
		Version:   4,
		TotalLen:  binary.BigEndian.Uint16(data[2:4]),
		TTL:       data[8],
		Protocol:  data[9],
		SrcIP:     netip.AddrFrom4([4]byte(data[12:16])),
		DstIP:     netip.AddrFrom4([4]byte(data[16:20])),
		HeaderLen: headerLen,
		Fragment:  isIPFragment(data, 4),
	}

	end := len(data)
	if n := int(ip.TotalLen); n >= headerLen && n < end {
		end = n
	}
	return ip, data[headerLen:end], nil
}

// decodeIPv6 decodes IPv6 header. Extension headers are not unwound; the
// payload starts right after the fixed header.
func decodeIPv6(data []byte) (core.IPHeader, []byte, error) {
	if len(data) < ipv6HeaderLen {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	payloadLen := int(binary.BigEndian.Uint16(data[4:6]))
	ip := core.IPHeader{
		Version:   6,
		TotalLen:  uint16(ipv6HeaderLen + payloadLen),
		Protocol:  data[6],
		TTL:       data[7],
		SrcIP:     netip.AddrFrom16([16]byte(data[8:24])),
		DstIP:     netip.AddrFrom16([16]byte(data[24:40])),
		HeaderLen: ipv6HeaderLen,
	}

	end := len(data)
	if n := ipv6HeaderLen + payloadLen; payloadLen > 0 && n < end {
		end = n
	}
	return ip, data[ipv6HeaderLen:end], nil
}

// isIPFragment reports a non-first IPv4 fragment, whose payload does not
// start with a transport header.
func isIPFragment(ipData []byte, version uint8) bool {
	if version != 4 || len(ipData) < ipv4HeaderMinLen {
		return false
	}
	flagsOffset := binary.BigEndian.Uint16(ipData[6:8])
	return flagsOffset&0x1FFF != 0
}
