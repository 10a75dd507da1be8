// ABOUTME: Registry of snapshot formats
// ABOUTME: Selects a format by name for writing or by content sniffing for reading

package heapdump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/prateek/gcheap/graph"
)

var (
	// ErrNoParser is returned when no format recognizes the input
	ErrNoParser = errors.New("no parser found for dump format")

	// ErrUnknownFormat is returned for an unregistered format name
	ErrUnknownFormat = errors.New("unknown dump format")

	// ErrNoObjects is returned for a document without an objects list
	ErrNoObjects = errors.New("dump has no objects list")
)

// previewSize is how much input Open shows to CanParse.
const previewSize = 4096

type formatRegistry struct {
	mu      sync.RWMutex
	formats []Format
}

var registry = &formatRegistry{}

// Register adds a format. Formats are tried in registration order and a
// later registration with the same name replaces the earlier one.
func Register(f Format) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for i, existing := range registry.formats {
		if existing.Name() == f.Name() {
			registry.formats[i] = f
			return
		}
	}
	registry.formats = append(registry.formats, f)
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	for _, f := range registry.formats {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.formats))
	for _, f := range registry.formats {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// Open reads a dump in any registered format and returns its graph.
func Open(r io.Reader) (graph.Graph, error) {
	br := bufio.NewReaderSize(r, previewSize)
	preview, err := br.Peek(previewSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()
	for _, f := range registry.formats {
		if f.CanParse(preview) {
			return f.Parse(br)
		}
	}
	return nil, ErrNoParser
}

// Write encodes g in the named format.
func Write(w io.Writer, name string, g graph.Graph, opts Options) error {
	f, err := Lookup(name)
	if err != nil {
		return err
	}
	return f.Encode(w, NewDump(g, opts))
}
