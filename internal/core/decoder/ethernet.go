// Package decoder implements protocol decoding.
package decoder

import (
	"encoding/binary"
	"net/netip"

	"firestige.xyz/modbusdump/internal/core"
)

const (
	ethernetHeaderLen = 14
	vlanHeaderLen     = 4

	// Ethernet/IPv4 ARP: 8 fixed bytes plus two MAC and two IPv4 addresses.
	arpHeaderLen = 28
)

// decodeEthernet decodes Ethernet frame header (including VLAN tags).
// Returns EthernetHeader and remaining payload.
func decodeEthernet(data []byte) (core.EthernetHeader, []byte, error) {
	if len(data) < ethernetHeaderLen {
		return core.EthernetHeader{}, nil, core.ErrPacketTooShort
	}

	eth := core.EthernetHeader{}
	copy(eth.DstMAC[:], data[0:6])
	copy(eth.SrcMAC[:], data[6:12])

	etherType := binary.BigEndian.Uint16(data[12:14])
	offset := ethernetHeaderLen

	// Handle VLAN tags (can be nested: QinQ)
	for etherType == core.EtherTypeVLAN || etherType == core.EtherTypeQinQ {
		if len(data) < offset+vlanHeaderLen {
			return eth, nil, core.ErrPacketTooShort
		}

		// VLAN header: 2 bytes TCI + 2 bytes EtherType
		tci := binary.BigEndian.Uint16(data[offset : offset+2])
		eth.VLANs = append(eth.VLANs, tci&0x0FFF)

		etherType = binary.BigEndian.Uint16(data[offset+2 : offset+4])
		offset += vlanHeaderLen
	}

	eth.EtherType = etherType
	return eth, data[offset:], nil
}

// decodeARP decodes an Ethernet/IPv4 ARP message.
func decodeARP(data []byte) (core.ARPHeader, error) {
	if len(data) < arpHeaderLen {
		return core.ARPHeader{}, core.ErrPacketTooShort
	}

	arp := core.ARPHeader{
		HardwareType: binary.BigEndian.Uint16(data[0:2]),
		ProtocolType: binary.BigEndian.Uint16(data[2:4]),
		// data[4], data[5]: hardware and protocol address lengths
		Operation: binary.BigEndian.Uint16(data[6:8]),
		SenderIP:  netip.AddrFrom4([4]byte(data[14:18])),
		TargetIP:  netip.AddrFrom4([4]byte(data[24:28])),
	}
	copy(arp.SenderMAC[:], data[8:14])
	copy(arp.TargetMAC[:], data[18:24])

	return arp, nil
}
