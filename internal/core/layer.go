package core

// LayerType identifies a protocol layer traversed while decoding a frame.
type LayerType uint8

const (
	LayerUnknown LayerType = iota
	LayerEthernet
	LayerARP
	LayerIPv4
	LayerIPv6
	LayerTCP
	LayerUDP
	LayerICMP
	LayerICMPv6
	LayerModbus
)

var layerNames = [...]string{
	LayerUnknown:  "Unknown",
	LayerEthernet: "Ethernet",
	LayerARP:      "ARP",
	LayerIPv4:     "IPv4",
	LayerIPv6:     "IPv6",
	LayerTCP:      "TCP",
	LayerUDP:      "UDP",
	LayerICMP:     "ICMP",
	LayerICMPv6:   "ICMPv6",
	LayerModbus:   "Modbus/TCP",
}

func (l LayerType) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return layerNames[LayerUnknown]
}
