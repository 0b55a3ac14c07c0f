// Package source delivers link-layer frames from a live interface or a
// capture file.
package source

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// Capture engines.
const (
	EnginePcap     = "pcap"
	EngineAFPacket = "afpacket"
)

var (
	// ErrTimeout is returned by ReadPacket when no frame arrived within the
	// configured timeout. Callers should simply read again.
	ErrTimeout = errors.New("source: read timeout")
	// ErrUnknownInterface is returned when the named device does not exist.
	ErrUnknownInterface = errors.New("source: unknown interface")
)

// Source is a blocking, sequential supplier of frames.
type Source interface {
	// ReadPacket returns the next frame. The data is only valid until the
	// next call. An offline source returns io.EOF when exhausted.
	ReadPacket() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
	Close() error
}

// Stats are kernel or library level counters of a live capture.
type Stats struct {
	Received int
	Dropped  int
}

// StatsProvider is implemented by sources that can report drops.
type StatsProvider interface {
	Stats() (Stats, error)
}

// Config describes a live capture.
type Config struct {
	Device       string
	SnapLen      int
	Promiscuous  bool
	Timeout      time.Duration
	Filter       string
	Engine       string
	BufferSizeMB int
}

// OpenLive opens cfg.Device with the configured engine.
func OpenLive(cfg Config) (Source, error) {
	if err := checkInterface(cfg.Device); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Engine) {
	case "", EnginePcap:
		return newPcapSource(cfg)
	case EngineAFPacket:
		return newAFPacketSource(cfg)
	default:
		return nil, fmt.Errorf("source: unknown capture engine %q", cfg.Engine)
	}
}

// Interface describes a capture device.
type Interface struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Addresses   []string `json:"addresses,omitempty" yaml:"addresses,omitempty"`
}

// Interfaces lists the devices libpcap can capture on.
func Interfaces() ([]Interface, error) {
	devs, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("source: list interfaces: %w", err)
	}
	ifaces := make([]Interface, 0, len(devs))
	for _, d := range devs {
		iface := Interface{Name: d.Name, Description: d.Description}
		for _, a := range d.Addresses {
			iface.Addresses = append(iface.Addresses, a.IP.String())
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}

func checkInterface(name string) error {
	ifaces, err := Interfaces()
	if err != nil {
		return err
	}
	for _, iface := range ifaces {
		if iface.Name == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownInterface, name)
}
