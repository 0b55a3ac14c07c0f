// Package report renders decoded frames for humans and machines.
package report

import (
	"fmt"
	"io"
	"strings"

	"firestige.xyz/modbusdump/internal/core"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Reporter writes one decoded frame. decodeErr is the error returned by
// the decoder for pkt, if any; the layers decoded before it are reported.
type Reporter interface {
	Report(pkt *core.DecodedPacket, decodeErr error) error
}

// New returns a Reporter for format writing to w. source labels every
// frame, usually the interface or file name.
func New(format string, w io.Writer, source string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewTextReporter(w, source), nil
	case FormatJSON:
		return NewJSONReporter(w, source), nil
	case FormatYAML:
		return NewYAMLReporter(w, source), nil
	default:
		return nil, fmt.Errorf("report: unknown format %q", format)
	}
}
