package report

import (
	"errors"
	"time"

	"firestige.xyz/modbusdump/internal/core"
	"firestige.xyz/modbusdump/internal/modbus"
)

// Record is the machine readable form of one decoded frame.
type Record struct {
	Source    string    `json:"source" yaml:"source"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Length    int       `json:"length" yaml:"length"`
	Layers    []string  `json:"layers" yaml:"layers"`
	Malformed string    `json:"malformed,omitempty" yaml:"malformed,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`

	SrcMAC    string   `json:"src_mac,omitempty" yaml:"src_mac,omitempty"`
	DstMAC    string   `json:"dst_mac,omitempty" yaml:"dst_mac,omitempty"`
	EtherType uint16   `json:"ethertype,omitempty" yaml:"ethertype,omitempty"`
	VLANs     []uint16 `json:"vlans,omitempty" yaml:"vlans,omitempty"`

	ARP *ARPRecord `json:"arp,omitempty" yaml:"arp,omitempty"`

	SrcIP    string `json:"src_ip,omitempty" yaml:"src_ip,omitempty"`
	DstIP    string `json:"dst_ip,omitempty" yaml:"dst_ip,omitempty"`
	Protocol uint8  `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Fragment bool   `json:"fragment,omitempty" yaml:"fragment,omitempty"`

	SrcPort  uint16 `json:"src_port,omitempty" yaml:"src_port,omitempty"`
	DstPort  uint16 `json:"dst_port,omitempty" yaml:"dst_port,omitempty"`
	L4Length int    `json:"l4_length,omitempty" yaml:"l4_length,omitempty"`
	ICMPType *uint8 `json:"icmp_type,omitempty" yaml:"icmp_type,omitempty"`
	ICMPID   uint16 `json:"icmp_id,omitempty" yaml:"icmp_id,omitempty"`
	ICMPSeq  uint16 `json:"icmp_seq,omitempty" yaml:"icmp_seq,omitempty"`

	Modbus *ModbusRecord `json:"modbus,omitempty" yaml:"modbus,omitempty"`
}

// ARPRecord holds the ARP addresses of a frame.
type ARPRecord struct {
	Operation string `json:"operation" yaml:"operation"`
	SenderMAC string `json:"sender_mac" yaml:"sender_mac"`
	SenderIP  string `json:"sender_ip" yaml:"sender_ip"`
	TargetMAC string `json:"target_mac" yaml:"target_mac"`
	TargetIP  string `json:"target_ip" yaml:"target_ip"`
}

// ModbusRecord holds a decoded Modbus/TCP message.
type ModbusRecord struct {
	TransactionID uint16  `json:"transaction_id" yaml:"transaction_id"`
	ProtocolID    uint16  `json:"protocol_id" yaml:"protocol_id"`
	Length        uint16  `json:"length" yaml:"length"`
	UnitID        uint8   `json:"unit_id" yaml:"unit_id"`
	Function      uint8   `json:"function" yaml:"function"`
	Title         string  `json:"title" yaml:"title"`
	Direction     string  `json:"direction" yaml:"direction"`
	Fields        []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
	Raw           string  `json:"raw" yaml:"raw"`
}

// NewRecord builds a Record from a decoded frame and its decode error.
func NewRecord(source string, pkt *core.DecodedPacket, decodeErr error) *Record {
	rec := &Record{
		Source:    source,
		Timestamp: pkt.Timestamp,
		Length:    pkt.Length,
		Layers:    make([]string, len(pkt.Layers)),
	}
	for i, l := range pkt.Layers {
		rec.Layers[i] = l.String()
	}

	if decodeErr != nil {
		rec.Error = decodeErr.Error()
		var de *core.DecodeError
		if errors.As(decodeErr, &de) {
			rec.Malformed = de.Layer.String()
		}
	}

	if pkt.Has(core.LayerEthernet) {
		eth := pkt.Ethernet
		rec.SrcMAC = eth.SrcMAC.String()
		rec.DstMAC = eth.DstMAC.String()
		rec.EtherType = eth.EtherType
		rec.VLANs = eth.VLANs
	}

	if pkt.Has(core.LayerARP) {
		a := pkt.ARP
		rec.ARP = &ARPRecord{
			Operation: arpOperation(a.Operation),
			SenderMAC: a.SenderMAC.String(),
			SenderIP:  a.SenderIP.String(),
			TargetMAC: a.TargetMAC.String(),
			TargetIP:  a.TargetIP.String(),
		}
	}

	if pkt.Has(core.LayerIPv4) || pkt.Has(core.LayerIPv6) {
		rec.SrcIP = pkt.IP.SrcIP.String()
		rec.DstIP = pkt.IP.DstIP.String()
		rec.Protocol = pkt.IP.Protocol
		rec.Fragment = pkt.IP.Fragment
	}

	switch {
	case pkt.Has(core.LayerTCP), pkt.Has(core.LayerUDP):
		rec.SrcPort = pkt.Transport.SrcPort
		rec.DstPort = pkt.Transport.DstPort
		rec.L4Length = pkt.Transport.Length
	case pkt.Has(core.LayerICMP), pkt.Has(core.LayerICMPv6):
		t := pkt.ICMP.Type
		rec.ICMPType = &t
		rec.ICMPID = pkt.ICMP.Identifier
		rec.ICMPSeq = pkt.ICMP.Sequence
	}

	if msg, ok := pkt.App.(*modbus.Message); ok {
		rec.Modbus = &ModbusRecord{
			TransactionID: msg.Header.TransactionID,
			ProtocolID:    msg.Header.ProtocolID,
			Length:        msg.Header.Length,
			UnitID:        msg.Header.UnitID,
			Function:      uint8(msg.Header.Function),
			Title:         Title(msg),
			Direction:     msg.Direction.String(),
			Fields:        BodyFields(msg),
			Raw:           modbus.HexDump(msg.Raw),
		}
	}
	return rec
}
