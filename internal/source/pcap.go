package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// PcapSource reads frames through libpcap, either from a live device or
// from a capture file.
type PcapSource struct {
	name   string
	handle *pcap.Handle
}

func newPcapSource(cfg Config) (*PcapSource, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pcap.BlockForever
	}
	handle, err := pcap.OpenLive(cfg.Device, int32(cfg.SnapLen), cfg.Promiscuous, timeout)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", cfg.Device, err)
	}
	if cfg.Filter != "" {
		if err := handle.SetBPFFilter(cfg.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("source: set filter %q: %w", cfg.Filter, err)
		}
	}
	return &PcapSource{name: cfg.Device, handle: handle}, nil
}

// OpenFile opens a pcap or pcapng file. filter may be empty.
func OpenFile(path, filter string) (*PcapSource, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	if filter != "" {
		if err := handle.SetBPFFilter(filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("source: set filter %q: %w", filter, err)
		}
	}
	return &PcapSource{name: path, handle: handle}, nil
}

func (s *PcapSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := s.handle.ZeroCopyReadPacketData()
	switch {
	case err == nil:
		return data, ci, nil
	case errors.Is(err, pcap.NextErrorTimeoutExpired):
		return nil, ci, ErrTimeout
	case errors.Is(err, io.EOF):
		return nil, ci, io.EOF
	default:
		return nil, ci, fmt.Errorf("source: read %s: %w", s.name, err)
	}
}

func (s *PcapSource) LinkType() layers.LinkType {
	return s.handle.LinkType()
}

func (s *PcapSource) Stats() (Stats, error) {
	st, err := s.handle.Stats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Received: st.PacketsReceived, Dropped: st.PacketsDropped + st.PacketsIfDropped}, nil
}

func (s *PcapSource) Close() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}
