package pipeline

import (
	"sync/atomic"
)

// Metrics contains per-run counters. They mirror the Prometheus series but
// are kept locally for the exit summary.
type Metrics struct {
	Frames    atomic.Uint64
	Malformed atomic.Uint64
	Modbus    atomic.Uint64
	Timeouts  atomic.Uint64
	Dropped   atomic.Uint64
}

// Stats is a snapshot of Metrics.
type Stats struct {
	Frames    uint64
	Malformed uint64
	Modbus    uint64
	Timeouts  uint64
	Dropped   uint64
}

func (m *Metrics) snapshot() Stats {
	return Stats{
		Frames:    m.Frames.Load(),
		Malformed: m.Malformed.Load(),
		Modbus:    m.Modbus.Load(),
		Timeouts:  m.Timeouts.Load(),
		Dropped:   m.Dropped.Load(),
	}
}

func (s Stats) fields() map[string]interface{} {
	return map[string]interface{}{
		"frames":    s.Frames,
		"malformed": s.Malformed,
		"modbus":    s.Modbus,
		"dropped":   s.Dropped,
	}
}
