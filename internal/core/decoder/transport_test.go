package decoder

import (
	"errors"
	"testing"

	"firestige.xyz/modbusdump/internal/core"
)

// tcpSegment returns a 20 byte TCP header followed by payload.
func tcpSegment(src, dst uint16, payload ...byte) []byte {
	b := []byte{
		byte(src >> 8), byte(src), byte(dst >> 8), byte(dst),
		0x00, 0x00, 0x00, 0x01, // seq
		0x00, 0x00, 0x00, 0x02, // ack
		0x50, 0x18, // data offset 5, ACK+PSH
		0x20, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	return append(b, payload...)
}

func TestDecodeUDP(t *testing.T) {
	data := []byte{
		0x13, 0x88, // Src Port: 5000
		0x13, 0x89, // Dst Port: 5001
		0x00, 0x0C, // Length: 12
		0x00, 0x00,
		0x01, 0x02, 0x03, 0x04,
	}

	transport, payload, err := decodeUDP(data)
	if err != nil {
		t.Fatalf("decodeUDP failed: %v", err)
	}
	if transport.Protocol != core.IPProtocolUDP {
		t.Errorf("Expected protocol 17, got %d", transport.Protocol)
	}
	if transport.SrcPort != 5000 || transport.DstPort != 5001 {
		t.Errorf("Expected ports 5000 > 5001, got %d > %d", transport.SrcPort, transport.DstPort)
	}
	if transport.Length != 12 {
		t.Errorf("Expected declared length 12, got %d", transport.Length)
	}
	if len(payload) != 4 {
		t.Errorf("Expected payload length 4, got %d", len(payload))
	}
}

func TestDecodeTCP(t *testing.T) {
	transport, payload, err := decodeTCP(tcpSegment(5000, 502, 0x01, 0x02, 0x03, 0x04))
	if err != nil {
		t.Fatalf("decodeTCP failed: %v", err)
	}
	if transport.Protocol != core.IPProtocolTCP {
		t.Errorf("Expected protocol 6, got %d", transport.Protocol)
	}
	if transport.SrcPort != 5000 || transport.DstPort != 502 {
		t.Errorf("Expected ports 5000 > 502, got %d > %d", transport.SrcPort, transport.DstPort)
	}
	if transport.SeqNum != 1 || transport.AckNum != 2 {
		t.Errorf("Expected seq 1 ack 2, got %d %d", transport.SeqNum, transport.AckNum)
	}
	if transport.TCPFlags != 0x18 {
		t.Errorf("Expected flags 0x18, got 0x%02x", transport.TCPFlags)
	}
	if transport.Length != 24 {
		t.Errorf("Expected segment length 24, got %d", transport.Length)
	}
	if len(payload) != 4 {
		t.Errorf("Expected payload length 4, got %d", len(payload))
	}
}

func TestDecodeTCPWithOptions(t *testing.T) {
	data := tcpSegment(502, 40000, 0x01, 0x01, 0x01, 0x01, 0x00, 0x01)
	data[12] = 0x60 // 24 byte header

	_, payload, err := decodeTCP(data)
	if err != nil {
		t.Fatalf("decodeTCP failed: %v", err)
	}
	if len(payload) != 2 {
		t.Errorf("Expected payload length 2, got %d", len(payload))
	}
}

func TestDecodeTransportTooShort(t *testing.T) {
	bad := tcpSegment(1, 2)
	bad[12] = 0xF0 // 60 byte header in a 20 byte slice

	tests := []struct {
		name string
		fn   func() error
	}{
		{"udp", func() error { _, _, err := decodeUDP([]byte{0x13, 0x88, 0x13}); return err }},
		{"tcp", func() error { _, _, err := decodeTCP(tcpSegment(1, 2)[:19]); return err }},
		{"tcp data offset", func() error { _, _, err := decodeTCP(bad); return err }},
		{"icmp", func() error { _, _, err := decodeICMP([]byte{0x08, 0x00}); return err }},
		{"icmp echo", func() error { _, _, err := decodeICMP([]byte{0x08, 0x00, 0x00, 0x00, 0x00, 0x01}); return err }},
		{"icmpv6", func() error { _, _, err := decodeICMPv6([]byte{0x80}); return err }},
	}

	for _, tt := range tests {
		if err := tt.fn(); !errors.Is(err, core.ErrPacketTooShort) {
			t.Errorf("%s: expected ErrPacketTooShort, got %v", tt.name, err)
		}
	}
}

func TestDecodeICMPEcho(t *testing.T) {
	data := []byte{
		0x08, 0x00, 0x00, 0x00, // echo request
		0x12, 0x34, // identifier
		0x00, 0x07, // sequence
		0xDE, 0xAD,
	}

	icmp, payload, err := decodeICMP(data)
	if err != nil {
		t.Fatalf("decodeICMP failed: %v", err)
	}
	if !icmp.IsEcho() {
		t.Error("Expected an echo message")
	}
	if icmp.Identifier != 0x1234 || icmp.Sequence != 7 {
		t.Errorf("Expected id 0x1234 seq 7, got 0x%04x %d", icmp.Identifier, icmp.Sequence)
	}
	if len(payload) != 2 {
		t.Errorf("Expected payload length 2, got %d", len(payload))
	}
}

func TestDecodeICMPOther(t *testing.T) {
	icmp, _, err := decodeICMP([]byte{0x03, 0x03, 0x00, 0x00}) // port unreachable
	if err != nil {
		t.Fatalf("decodeICMP failed: %v", err)
	}
	if icmp.IsEcho() {
		t.Error("Expected a non echo message")
	}
	if icmp.Type != 3 || icmp.Code != 3 {
		t.Errorf("Expected type 3 code 3, got %d %d", icmp.Type, icmp.Code)
	}
}

func TestDecodeICMPv6(t *testing.T) {
	icmp, _, err := decodeICMPv6([]byte{0x80, 0x00, 0x00, 0x00, 0x00, 0x01})
	if err != nil {
		t.Fatalf("decodeICMPv6 failed: %v", err)
	}
	if icmp.Version != 6 || icmp.Type != 128 {
		t.Errorf("Expected ICMPv6 type 128, got v%d type %d", icmp.Version, icmp.Type)
	}
	if icmp.IsEcho() {
		t.Error("ICMPv6 echo carries no identifier in this decoder")
	}
}

func BenchmarkDecodeTCP(b *testing.B) {
	data := tcpSegment(40000, 502, 0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x01, 0x03, 0x00, 0x00, 0x00, 0x02)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, err := decodeTCP(data)
		if err != nil {
			b.Fatal(err)
		}
	}
}
