// ABOUTME: Format interface for heap snapshot encodings
// ABOUTME: A format detects, decodes and encodes the shared dump model

package heapdump

import (
	"io"

	"github.com/prateek/gcheap/graph"
)

// Format is one snapshot encoding.
type Format interface {
	// Name is the identifier used on the command line, e.g. "json"
	Name() string

	// CanParse reports whether the preview looks like this format. The
	// preview is a prefix of the input and may be cut mid-document.
	CanParse(preview []byte) bool

	// Parse reads a whole dump and builds a graph
	Parse(r io.Reader) (graph.Graph, error)

	// Encode writes d
	Encode(w io.Writer, d *Dump) error
}
