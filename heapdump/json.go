// ABOUTME: JSON snapshot format
// ABOUTME: Detected by an object with an "objects" key

package heapdump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prateek/gcheap/graph"
)

// JSON reads and writes dumps as a single JSON document.
type JSON struct {
	// Indent pretty-prints the output when non-empty
	Indent string
}

// Name returns "json".
func (JSON) Name() string {
	return "json"
}

// CanParse accepts a preview whose first top-level key is "objects" or
// "roots". The preview may be truncated, so it is tokenized rather than
// decoded.
func (JSON) CanParse(preview []byte) bool {
	dec := json.NewDecoder(bytes.NewReader(preview))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return false
	}
	tok, err = dec.Token()
	if err != nil {
		return false
	}
	key, ok := tok.(string)
	return ok && (key == "objects" || key == "roots")
}

// Parse decodes a JSON dump and builds its graph.
func (JSON) Parse(r io.Reader) (graph.Graph, error) {
	var dump Dump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if dump.Objects == nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", ErrNoObjects)
	}
	return dump.Graph()
}

// Encode writes d as one JSON document.
func (f JSON) Encode(w io.Writer, d *Dump) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func init() {
	Register(JSON{Indent: "  "})
}
