// Package pipeline implements the capture loop: read, normalize, decode,
// report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/uuid"

	"firestige.xyz/modbusdump/internal/core"
	"firestige.xyz/modbusdump/internal/core/decoder"
	"firestige.xyz/modbusdump/internal/log"
	"firestige.xyz/modbusdump/internal/metrics"
	"firestige.xyz/modbusdump/internal/modbus"
	"firestige.xyz/modbusdump/internal/report"
	"firestige.xyz/modbusdump/internal/source"
)

// Pipeline is a single-threaded frame processing chain. Frames are handled
// strictly one at a time in capture order.
type Pipeline struct {
	name       string
	session    string
	source     source.Source
	normalizer *source.Normalizer
	decoder    decoder.Decoder
	reporter   report.Reporter
	count      uint64
	metrics    *Metrics
	logger     log.Logger
}

// Config contains pipeline configuration.
type Config struct {
	// Name labels metrics and log lines, usually the interface or file.
	Name     string
	Source   source.Source
	Decoder  decoder.Decoder
	Reporter report.Reporter
	// LinkOffset overrides where the IP header starts on links without an
	// Ethernet header; negative derives it from the source link type.
	LinkOffset int
	// Count stops the loop after that many frames, 0 is unlimited.
	Count int
}

// New creates a new pipeline.
func New(cfg Config) *Pipeline {
	session := uuid.NewString()
	count := uint64(0)
	if cfg.Count > 0 {
		count = uint64(cfg.Count)
	}
	return &Pipeline{
		name:       cfg.Name,
		session:    session,
		source:     cfg.Source,
		normalizer: source.NewNormalizer(cfg.Source.LinkType(), cfg.LinkOffset),
		decoder:    cfg.Decoder,
		reporter:   cfg.Reporter,
		count:      count,
		metrics:    &Metrics{},
		logger: log.GetLogger().WithFields(map[string]interface{}{
			"session": session,
			"source":  cfg.Name,
		}),
	}
}

// Session identifies this run in log lines.
func (p *Pipeline) Session() string { return p.session }

// Run reads frames until the source is exhausted, the frame count is
// reached or ctx is done. Any other capture error ends the run and is
// returned; it is never retried.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.WithFields(map[string]interface{}{
		"link_type":   p.source.LinkType().String(),
		"passthrough": p.normalizer.Passthrough(),
	}).Info("capture started")

	err := p.loop(ctx)

	p.collectDrops()
	stats := p.Stats()
	l := p.logger.WithFields(stats.fields())
	if err != nil {
		l.WithError(err).Error("capture failed")
		return err
	}
	l.Info("capture finished")
	return nil
}

func (p *Pipeline) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if p.count > 0 && p.metrics.Frames.Load() >= p.count {
			return nil
		}

		data, ci, err := p.source.ReadPacket()
		switch {
		case err == nil:
		case errors.Is(err, source.ErrTimeout):
			p.metrics.Timeouts.Add(1)
			continue
		case errors.Is(err, io.EOF):
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read packet from %s: %w", p.name, err)
		}

		if err := p.processFrame(data, ci); err != nil {
			return err
		}
	}
}

// processFrame decodes and reports one frame. Decode failures are reported
// and counted; only a failing reporter stops the loop.
func (p *Pipeline) processFrame(data []byte, ci gopacket.CaptureInfo) error {
	start := time.Now()
	frame := p.normalizer.Normalize(data)

	p.metrics.Frames.Add(1)
	metrics.FramesTotal.WithLabelValues(p.name).Inc()

	pkt, decodeErr := p.decoder.Decode(core.RawPacket{
		Data:       frame,
		Timestamp:  ci.Timestamp,
		CaptureLen: uint32(ci.CaptureLength),
		OrigLen:    uint32(ci.Length),
	})

	var de *core.DecodeError
	if errors.As(decodeErr, &de) {
		p.metrics.Malformed.Add(1)
		metrics.DecodeErrorsTotal.WithLabelValues(p.name, de.Layer.String()).Inc()
		if p.logger.IsDebugEnabled() {
			p.logger.WithError(decodeErr).Debug("malformed frame")
		}
	} else {
		metrics.LayerFramesTotal.WithLabelValues(p.name, pkt.Last().String()).Inc()
	}

	if msg, ok := pkt.App.(*modbus.Message); ok && pkt.Has(core.LayerModbus) {
		p.metrics.Modbus.Add(1)
		metrics.ModbusMessagesTotal.WithLabelValues(p.name, msg.Header.Function.String(), msg.Direction.String()).Inc()
	}

	if err := p.reporter.Report(&pkt, decodeErr); err != nil {
		return fmt.Errorf("report frame: %w", err)
	}

	metrics.DecodeLatencySeconds.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	return nil
}

func (p *Pipeline) collectDrops() {
	sp, ok := p.source.(source.StatsProvider)
	if !ok {
		return
	}
	st, err := sp.Stats()
	if err != nil {
		p.logger.WithError(err).Debug("capture stats unavailable")
		return
	}
	if st.Dropped > 0 {
		p.metrics.Dropped.Store(uint64(st.Dropped))
		metrics.CaptureDropsTotal.WithLabelValues(p.name).Add(float64(st.Dropped))
	}
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return p.metrics.snapshot()
}
