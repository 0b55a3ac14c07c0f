package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"firestige.xyz/modbusdump/internal/core"
)

// JSONReporter writes one JSON object per line.
type JSONReporter struct {
	enc    *json.Encoder
	source string
}

// NewJSONReporter creates a JSONReporter.
func NewJSONReporter(w io.Writer, source string) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w), source: source}
}

func (r *JSONReporter) Report(pkt *core.DecodedPacket, decodeErr error) error {
	return r.enc.Encode(NewRecord(r.source, pkt, decodeErr))
}

// YAMLReporter writes a YAML document per frame.
type YAMLReporter struct {
	w      io.Writer
	source string
}

// NewYAMLReporter creates a YAMLReporter.
func NewYAMLReporter(w io.Writer, source string) *YAMLReporter {
	return &YAMLReporter{w: w, source: source}
}

func (r *YAMLReporter) Report(pkt *core.DecodedPacket, decodeErr error) error {
	out, err := yaml.Marshal(NewRecord(r.source, pkt, decodeErr))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(r.w, "---\n"); err != nil {
		return err
	}
	_, err = r.w.Write(out)
	return err
}
