//go:build linux

package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"
)

// AFPacketSource reads frames from a TPACKET_V3 memory mapped ring.
type AFPacketSource struct {
	device string
	handle *afpacket.TPacket
}

func newAFPacketSource(cfg Config) (*AFPacketSource, error) {
	frameSize, blockSize, numBlocks, err := recomputeSize(cfg.BufferSizeMB, cfg.SnapLen, os.Getpagesize())
	if err != nil {
		return nil, err
	}

	opts := []interface{}{
		afpacket.OptInterface(cfg.Device),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	}
	if cfg.Timeout > 0 {
		opts = append(opts, afpacket.OptPollTimeout(cfg.Timeout))
	}
	tp, err := afpacket.NewTPacket(opts...)
	if err != nil {
		return nil, fmt.Errorf("source: afpacket %s: %w", cfg.Device, err)
	}

	if cfg.Filter != "" {
		if err := setBPF(tp, frameSize, cfg.Filter); err != nil {
			tp.Close()
			return nil, err
		}
	}
	return &AFPacketSource{device: cfg.Device, handle: tp}, nil
}

// setBPF compiles filter with libpcap and attaches it to the socket.
func setBPF(tp *afpacket.TPacket, snapLen int, filter string) error {
	pcapBPF, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snapLen, filter)
	if err != nil {
		return fmt.Errorf("source: compile filter %q: %w", filter, err)
	}
	rawBPF := make([]bpf.RawInstruction, len(pcapBPF))
	for i, inst := range pcapBPF {
		rawBPF[i] = bpf.RawInstruction{
			Op: inst.Code,
			Jt: inst.Jt,
			Jf: inst.Jf,
			K:  inst.K,
		}
	}
	return tp.SetBPF(rawBPF)
}

func (s *AFPacketSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := s.handle.ZeroCopyReadPacketData()
	switch {
	case err == nil:
		return data, ci, nil
	case errors.Is(err, afpacket.ErrTimeout):
		return nil, ci, ErrTimeout
	default:
		return nil, ci, fmt.Errorf("source: read %s: %w", s.device, err)
	}
}

// LinkType is always Ethernet, SocketRaw delivers the full link header.
func (s *AFPacketSource) LinkType() layers.LinkType {
	return layers.LinkTypeEthernet
}

func (s *AFPacketSource) Stats() (Stats, error) {
	_, v3, err := s.handle.SocketStats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Received: int(v3.Packets()), Dropped: int(v3.Drops())}, nil
}

func (s *AFPacketSource) Close() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}
