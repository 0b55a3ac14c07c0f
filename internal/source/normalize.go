package source

import (
	"encoding/binary"

	"github.com/google/gopacket/layers"
)

const (
	ethernetHeaderLen = 14

	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD
)

// Normalizer turns frames of links without a real Ethernet header into
// Ethernet frames. The synthesized header has zero MAC addresses and an
// ether type taken from the IP version nibble.
//
// The returned slice aliases an internal buffer and is valid until the
// next call. A Normalizer must not be shared between goroutines.
type Normalizer struct {
	offset  int // where the IP header starts, -1 for Ethernet links
	scratch []byte
}

// NewNormalizer returns a Normalizer for frames of linkType. A non negative
// offset overrides the IP header position derived from the link type.
func NewNormalizer(linkType layers.LinkType, offset int) *Normalizer {
	if offset < 0 {
		offset = ipOffset(linkType)
	}
	return &Normalizer{offset: offset}
}

// Passthrough reports whether frames are handed on unchanged.
func (n *Normalizer) Passthrough() bool {
	return n.offset < 0
}

// Normalize returns frame as an Ethernet frame. A frame without an IPv4 or
// IPv6 header at the offset is handed on unchanged for the classifier.
func (n *Normalizer) Normalize(frame []byte) []byte {
	if n.offset < 0 || len(frame) <= n.offset {
		return frame
	}

	ip := frame[n.offset:]
	etherType := etherTypeOf(ip)
	if etherType == 0 {
		return frame
	}

	need := ethernetHeaderLen + len(ip)
	if cap(n.scratch) < need {
		n.scratch = make([]byte, need)
	}
	buf := n.scratch[:need]
	clear(buf[:12])
	binary.BigEndian.PutUint16(buf[12:14], etherType)
	copy(buf[ethernetHeaderLen:], ip)
	return buf
}

// ipOffset is the IP header position for links that carry no Ethernet header.
func ipOffset(linkType layers.LinkType) int {
	switch linkType {
	case layers.LinkTypeNull, layers.LinkTypeLoop:
		return 4 // address family word
	case layers.LinkTypeRaw, layers.LinkTypeIPv4, layers.LinkTypeIPv6:
		return 0
	case layers.LinkTypeLinuxSLL:
		return 16
	default:
		return -1
	}
}

// etherTypeOf sniffs the IP version, 0 when it is neither 4 nor 6.
func etherTypeOf(ip []byte) uint16 {
	if len(ip) == 0 {
		return 0
	}
	switch ip[0] >> 4 {
	case 4:
		return etherTypeIPv4
	case 6:
		return etherTypeIPv6
	default:
		return 0
	}
}
