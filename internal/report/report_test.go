package report

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"firestige.xyz/modbusdump/internal/core"
	"firestige.xyz/modbusdump/internal/modbus"
)

var (
	client = netip.MustParseAddr("10.0.0.1")
	server = netip.MustParseAddr("10.0.0.2")
)

func basePacket(layers ...core.LayerType) *core.DecodedPacket {
	return &core.DecodedPacket{
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Length:    66,
		Layers:    append([]core.LayerType{core.LayerEthernet}, layers...),
		Ethernet: core.EthernetHeader{
			SrcMAC:    core.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF},
			DstMAC:    core.MAC{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			EtherType: core.EtherTypeIPv4,
		},
		IP: core.IPHeader{Version: 4, SrcIP: client, DstIP: server, Protocol: core.IPProtocolTCP},
	}
}

func modbusPacket(t *testing.T, src, dst uint16, payload []byte) (*core.DecodedPacket, error) {
	t.Helper()
	pkt := basePacket(core.LayerIPv4, core.LayerTCP)
	pkt.Transport = core.TransportHeader{SrcPort: src, DstPort: dst, Protocol: core.IPProtocolTCP, Length: 20 + len(payload)}
	pkt.Payload = payload

	msg, err := modbus.Decode(payload, modbus.DirectionOf(src, dst))
	if err != nil {
		if msg != nil {
			pkt.AppType = "modbus"
			pkt.App = msg
		}
		return pkt, core.NewDecodeError(core.LayerModbus, err)
	}
	pkt.Layers = append(pkt.Layers, core.LayerModbus)
	pkt.AppType = "modbus"
	pkt.App = msg
	return pkt, nil
}

func text(t *testing.T, pkt *core.DecodedPacket, err error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(&buf, "eth0").Report(pkt, err))
	return buf.String()
}

func TestTextModbusRequest(t *testing.T) {
	pkt, err := modbusPacket(t, 40000, 502, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x01, 0x01, 0x00, 0x0A, 0x00, 0x0D})
	require.NoError(t, err)

	want := strings.Join([]string{
		"[eth0]: TCP Packet: 10.0.0.1:40000 > 10.0.0.2:502; length: 32",
		"Transaction Identifier: 1",
		"Protocol Identifier: 0",
		"Length: 6",
		"Unit Identifier: 1",
		"Function Code: 1 Read Coil Status request",
		"Reference Number: 10",
		"Bit Count: 13",
		"00 01 00 00 00 06 01 01 00 0a 00 0d ",
		"",
	}, "\n")
	assert.Equal(t, want, text(t, pkt, err))
}

func TestTextModbusReplies(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		lines   []string
	}{
		{
			name:    "read coil status",
			payload: []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x05, 0x01, 0x01, 0x02, 0xCD, 0x6B},
			lines:   []string{"Function Code: 1 Read Coil Status reply", "Byte Count: 2", "data0~7: 11001101", "data8~15: 01101011"},
		},
		{
			name:    "read holding registers",
			payload: []byte{0x00, 0x02, 0x00, 0x00, 0x00, 0x07, 0x01, 0x03, 0x04, 0x00, 0x2B, 0x00, 0x64},
			lines:   []string{"Byte Count: 4", "data0: 43", "data1: 100", "00 02 00 00 00 07 01 03 04 00 2b 00 64 "},
		},
		{
			name:    "exception",
			payload: []byte{0x00, 0x03, 0x00, 0x00, 0x00, 0x03, 0x01, 0x83, 0x02},
			lines:   []string{"Function Code: 131 Read Holding Register exception", "Exception: illegal data address (2)"},
		},
		{
			name:    "unknown function",
			payload: []byte{0x00, 0x04, 0x00, 0x00, 0x00, 0x03, 0x01, 0x2B, 0x0E},
			lines:   []string{"Function Code: 43 unknown function", "00 04 00 00 00 03 01 2b 0e "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt, err := modbusPacket(t, 502, 40000, tt.payload)
			require.NoError(t, err)

			out := text(t, pkt, err)
			for _, line := range tt.lines {
				assert.Contains(t, out, line+"\n")
			}
		})
	}
}

func TestTextWriteMultiple(t *testing.T) {
	coils, err := modbusPacket(t, 40000, 502, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x09, 0x01, 0x0F, 0x00, 0x13, 0x00, 0x0A, 0x02, 0xCD, 0x01})
	require.NoError(t, err)
	out := text(t, coils, nil)
	assert.Contains(t, out, "Bit Count: 10\n")
	assert.Contains(t, out, "Data: 52481\n")

	regs, err := modbusPacket(t, 40000, 502, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x0B, 0x01, 0x10, 0x00, 0x01, 0x00, 0x02, 0x04, 0x00, 0x0A, 0x01, 0x02})
	require.NoError(t, err)
	out = text(t, regs, nil)
	assert.Contains(t, out, "Registers Count: 2\n")
	assert.Contains(t, out, "Change Data1: 10\n")
	assert.Contains(t, out, "Change Data2: 258\n")
}

func TestTextMalformedModbus(t *testing.T) {
	pkt, err := modbusPacket(t, 502, 40000, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x05, 0x01, 0x03, 0x10, 0x00, 0x2B})
	require.Error(t, err)

	out := text(t, pkt, err)
	want := strings.Join([]string{
		"[eth0]: TCP Packet: 10.0.0.2:502 > 10.0.0.1:40000; length: 31",
		"Transaction Identifier: 1",
		"Protocol Identifier: 0",
		"Length: 5",
		"Unit Identifier: 1",
		"Function Code: 3 Read Holding Register reply",
		"00 01 00 00 00 05 01 03 10 00 2b ",
		"[eth0]: Malformed Modbus/TCP Packet",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestJSONReporterPartialModbus(t *testing.T) {
	pkt, err := modbusPacket(t, 502, 40000, []byte{0x00, 0x07, 0x00, 0x00, 0x00, 0x05, 0x02, 0x03, 0x10, 0x00, 0x2B})
	require.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(&buf, "eth0").Report(pkt, err))

	var rec Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Modbus/TCP", rec.Malformed)
	assert.Equal(t, []string{"Ethernet", "IPv4", "TCP"}, rec.Layers)
	require.NotNil(t, rec.Modbus)
	assert.Equal(t, uint16(7), rec.Modbus.TransactionID)
	assert.Equal(t, uint8(2), rec.Modbus.UnitID)
	assert.Empty(t, rec.Modbus.Fields)
}

func TestTextLayers(t *testing.T) {
	udp := basePacket(core.LayerIPv4, core.LayerUDP)
	udp.Transport = core.TransportHeader{SrcPort: 5000, DstPort: 53, Length: 12}

	echo := basePacket(core.LayerIPv4, core.LayerICMP)
	echo.ICMP = core.ICMPHeader{Version: 4, Type: core.ICMPEchoRequest, Identifier: 7, Sequence: 3}

	unreachable := basePacket(core.LayerIPv4, core.LayerICMP)
	unreachable.ICMP = core.ICMPHeader{Version: 4, Type: 3}

	v6 := basePacket(core.LayerIPv6, core.LayerICMPv6)
	v6.IP = core.IPHeader{Version: 6, SrcIP: netip.MustParseAddr("fe80::1"), DstIP: netip.MustParseAddr("ff02::1")}
	v6.ICMP = core.ICMPHeader{Version: 6, Type: 135}

	sctp := basePacket(core.LayerIPv4)
	sctp.IP.Protocol = 132
	sctp.Payload = make([]byte, 12)

	arp := basePacket(core.LayerARP)
	arp.Ethernet.EtherType = core.EtherTypeARP
	arp.ARP = core.ARPHeader{Operation: 2, SenderIP: server, TargetIP: client}

	lldp := basePacket()
	lldp.Ethernet.EtherType = 0x88CC
	lldp.Length = 60

	vlan := basePacket(core.LayerIPv4, core.LayerUDP)
	vlan.Ethernet.VLANs = []uint16{20, 10}
	vlan.Transport = core.TransportHeader{SrcPort: 1, DstPort: 2, Length: 8}

	tests := []struct {
		name string
		pkt  *core.DecodedPacket
		want string
	}{
		{"udp", udp, "[eth0]: UDP Packet: 10.0.0.1:5000 > 10.0.0.2:53; length: 12\n"},
		{"icmp echo", echo, "[eth0]: ICMP echo request 10.0.0.1 -> 10.0.0.2 (seq=3, id=7)\n"},
		{"icmp other", unreachable, "[eth0]: ICMP packet 10.0.0.1 -> 10.0.0.2 (type=3)\n"},
		{"icmpv6", v6, "[eth0]: ICMPv6 packet fe80::1 -> ff02::1 (type=135)\n"},
		{"unknown protocol", sctp, "[eth0]: Unknown IPv4 packet: 10.0.0.1 > 10.0.0.2; protocol: 132 length: 12\n"},
		{"arp", arp, "[eth0]: ARP packet: aa:bb:cc:dd:ee:ff(10.0.0.2) > 00:11:22:33:44:55(10.0.0.1); operation: Reply\n"},
		{"unknown ethertype", lldp, "[eth0]: Unknown packet: aa:bb:cc:dd:ee:ff > 00:11:22:33:44:55; ethertype: 0x88cc length: 60\n"},
		{"vlan", vlan, "[eth0]: VLAN: 20,10\n[eth0]: UDP Packet: 10.0.0.1:1 > 10.0.0.2:2; length: 8\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text(t, tt.pkt, nil))
		})
	}
}

func TestTextMalformedLayers(t *testing.T) {
	tests := []struct {
		name string
		pkt  *core.DecodedPacket
		err  error
		want string
	}{
		{"ethernet", &core.DecodedPacket{}, core.NewDecodeError(core.LayerEthernet, core.ErrPacketTooShort),
			"[eth0]: Malformed Ethernet Packet\n"},
		{"ipv4", basePacket(), core.NewDecodeError(core.LayerIPv4, core.ErrPacketTooShort),
			"[eth0]: Malformed IPv4 Packet\n"},
		{"tcp", basePacket(core.LayerIPv4), core.NewDecodeError(core.LayerTCP, core.ErrPacketTooShort),
			"[eth0]: Malformed TCP Packet\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text(t, tt.pkt, tt.err))
		})
	}
}

func TestJSONReporter(t *testing.T) {
	pkt, err := modbusPacket(t, 502, 40000, []byte{0x00, 0x02, 0x00, 0x00, 0x00, 0x07, 0x01, 0x03, 0x04, 0x00, 0x2B, 0x00, 0x64})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(&buf, "eth0").Report(pkt, nil))

	var rec Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "eth0", rec.Source)
	assert.Equal(t, []string{"Ethernet", "IPv4", "TCP", "Modbus/TCP"}, rec.Layers)
	assert.Equal(t, uint16(502), rec.SrcPort)
	require.NotNil(t, rec.Modbus)
	assert.Equal(t, "reply", rec.Modbus.Direction)
	assert.Equal(t, uint8(3), rec.Modbus.Function)
	assert.Contains(t, rec.Modbus.Fields, Field{Name: "data1", Value: "100"})
	assert.Empty(t, rec.Malformed)
}

func TestJSONReporterMalformed(t *testing.T) {
	var buf bytes.Buffer
	err := core.NewDecodeError(core.LayerIPv6, core.ErrPacketTooShort)
	require.NoError(t, NewJSONReporter(&buf, "eth0").Report(basePacket(), err))

	var rec Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "IPv6", rec.Malformed)
	assert.Contains(t, rec.Error, "packet too short")
	assert.Nil(t, rec.Modbus)
}

func TestYAMLReporter(t *testing.T) {
	pkt, err := modbusPacket(t, 40000, 502, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x01, 0x01, 0x00, 0x0A, 0x00, 0x0D})
	require.NoError(t, err)

	var buf bytes.Buffer
	r := NewYAMLReporter(&buf, "capture.pcap")
	require.NoError(t, r.Report(pkt, nil))
	require.NoError(t, r.Report(pkt, nil))

	dec := yaml.NewDecoder(&buf)
	for i := 0; i < 2; i++ {
		var rec Record
		require.NoError(t, dec.Decode(&rec))
		assert.Equal(t, "capture.pcap", rec.Source)
		require.NotNil(t, rec.Modbus)
		assert.Equal(t, uint16(1), rec.Modbus.TransactionID)
		assert.Equal(t, "Read Coil Status request", rec.Modbus.Title)
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "text", "JSON", "yaml"} {
		r, err := New(format, &bytes.Buffer{}, "eth0")
		assert.NoError(t, err, format)
		assert.NotNil(t, r, format)
	}

	_, err := New("xml", &bytes.Buffer{}, "eth0")
	assert.Error(t, err)
}

func TestNewWriter(t *testing.T) {
	var stdout bytes.Buffer
	w := NewWriter(FileConfig{}, &stdout)
	_, err := w.Write([]byte("frame\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "frame\n", stdout.String())

	path := filepath.Join(t.TempDir(), "frames.log")
	w = NewWriter(FileConfig{Path: path, MaxSize: 1}, &stdout)
	_, err = w.Write([]byte("rotated\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rotated\n", string(data))
}
