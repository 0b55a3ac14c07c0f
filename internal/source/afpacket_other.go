//go:build !linux

package source

import (
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// AFPacketSource is only available on Linux.
type AFPacketSource struct{}

func newAFPacketSource(Config) (*AFPacketSource, error) {
	return nil, errors.New("source: afpacket engine requires linux")
}

func (s *AFPacketSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	return nil, gopacket.CaptureInfo{}, errors.New("source: afpacket engine requires linux")
}

func (s *AFPacketSource) LinkType() layers.LinkType { return layers.LinkTypeEthernet }

func (s *AFPacketSource) Close() error { return nil }
