// Package core defines core types with zero external dependencies.
package core

import (
	"fmt"
	"net/netip"
)

// EtherType values the link-layer classifier dispatches on.
const (
	EtherTypeIPv4 uint16 = 0x0800
	EtherTypeARP  uint16 = 0x0806
	EtherTypeIPv6 uint16 = 0x86DD
	EtherTypeVLAN uint16 = 0x8100
	EtherTypeQinQ uint16 = 0x88A8
)

// IP protocol numbers the transport demultiplexer dispatches on.
const (
	IPProtocolICMP   uint8 = 1
	IPProtocolTCP    uint8 = 6
	IPProtocolUDP    uint8 = 17
	IPProtocolICMPv6 uint8 = 58
)

// ICMP types with extra fields.
const (
	ICMPEchoReply   uint8 = 0
	ICMPEchoRequest uint8 = 8
)

// MAC is a 48-bit hardware address.
type MAC [6]byte

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// EthernetHeader represents L2 Ethernet frame header.
type EthernetHeader struct {
	SrcMAC    MAC
	DstMAC    MAC
	EtherType uint16   // after VLAN tags are unwound
	VLANs     []uint16 // 0~2 VLAN IDs (QinQ scenarios have 2)
}

// ARPHeader represents an Ethernet/IPv4 ARP message.
type ARPHeader struct {
	HardwareType uint16
	ProtocolType uint16
	Operation    uint16 // 1=request, 2=reply
	SenderMAC    MAC
	SenderIP     netip.Addr
	TargetMAC    MAC
	TargetIP     netip.Addr
}

// IPHeader represents L3 IP header (IPv4/IPv6).
type IPHeader struct {
	Version   uint8
	SrcIP     netip.Addr
	DstIP     netip.Addr
	Protocol  uint8 // next-header for IPv6
	TTL       uint8 // hop limit for IPv6
	TotalLen  uint16
	HeaderLen int
	Fragment  bool // non-first IPv4 fragment, payload is not a transport header
}

// TransportHeader represents L4 transport layer header (TCP/UDP).
type TransportHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
	Length   int // UDP declared length, or TCP segment length
	// TCP-specific fields (only populated for TCP)
	TCPFlags uint8
	SeqNum   uint32
	AckNum   uint32
}

// ICMPHeader represents an ICMP or ICMPv6 message header.
type ICMPHeader struct {
	Version    uint8 // 4 for ICMP, 6 for ICMPv6
	Type       uint8
	Code       uint8
	Identifier uint16 // echo request/reply only
	Sequence   uint16 // echo request/reply only
}

// IsEcho reports whether the message carries identifier and sequence fields.
func (h ICMPHeader) IsEcho() bool {
	return h.Version == 4 && (h.Type == ICMPEchoRequest || h.Type == ICMPEchoReply)
}
