// ABOUTME: YAML snapshot format built on gopkg.in/yaml.v3
// ABOUTME: Detected by a leading "objects:" or "roots:" mapping key

package heapdump

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prateek/gcheap/graph"
)

// YAML reads and writes dumps as a YAML document. Pointer lists use flow
// style so each object stays compact.
type YAML struct{}

// Name returns "yaml".
func (YAML) Name() string {
	return "yaml"
}

// CanParse skips blank lines, comments and a document marker, then expects
// a top-level objects or roots key.
func (YAML) CanParse(preview []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(preview))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		switch {
		case line == "", line == "---", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "objects:"), strings.HasPrefix(line, "roots:"):
			return true
		default:
			return false
		}
	}
	return false
}

// Parse decodes a YAML dump and builds its graph.
func (YAML) Parse(r io.Reader) (graph.Graph, error) {
	var dump Dump
	if err := yaml.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	if dump.Objects == nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", ErrNoObjects)
	}
	return dump.Graph()
}

// Encode writes d as one YAML document.
func (YAML) Encode(w io.Writer, d *Dump) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

func init() {
	Register(YAML{})
}
