// ABOUTME: Tests for the YAML snapshot format
// ABOUTME: Validates detection, parsing and the encoded layout

package heapdump

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/gcheap/graph"
)

func TestYAMLCanParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"objects first", "objects:\n  - id: 1\nroots: [1]\n", true},
		{"roots first", "roots: [1]\nobjects: []\n", true},
		{"comment and marker", "# snapshot\n---\nobjects: []\n", true},
		{"JSON", `{"objects": []}`, false},
		{"other key", "data: []\n", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YAML{}.CanParse([]byte(tt.content)))
		})
	}
}

func TestYAMLParse(t *testing.T) {
	content := `objects:
  - id: 2
    type: Dict
    size: 56
    ptrs: [8, 12]
  - id: 8
    type: Slab
    len: 8
    size: 80
    ptrs: []
  - id: 12
    type: Slab
    len: 8
    size: 80
roots: [2]
`
	g, err := YAML{}.Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumObjects())
	assert.Equal(t, []graph.ObjID{8, 12}, g.GetObject(2).Ptrs)
	assert.Equal(t, []graph.ObjID{}, g.GetObject(12).Ptrs)
	assert.Equal(t, []graph.ObjID{2}, g.GetRoots().IDs)
	assert.Equal(t, uint64(216), graph.RetainedSize(g)[2])
}

func TestYAMLParseErrors(t *testing.T) {
	_, err := YAML{}.Parse(strings.NewReader("roots: [1]\n"))
	assert.True(t, errors.Is(err, ErrNoObjects))

	_, err = YAML{}.Parse(strings.NewReader("objects:\n  - type: Str\n"))
	assert.True(t, errors.Is(err, ErrMissingID))

	_, err = YAML{}.Parse(strings.NewReader("objects: [\n"))
	assert.Error(t, err)
}

func TestYAMLEncode(t *testing.T) {
	g := graph.NewMemGraph()
	g.AddObject(&graph.Object{ID: 2, Type: "List", Size: 32, Ptrs: []graph.ObjID{6}})
	g.AddObject(&graph.Object{ID: 6, Type: "Slab", Len: 4, Size: 48})
	g.SetRoots(graph.Roots{IDs: []graph.ObjID{2}})

	var buf bytes.Buffer
	require.NoError(t, YAML{}.Encode(&buf, NewDump(g, Options{})))
	want := `objects:
  - id: 2
    type: List
    size: 32
    ptrs: [6]
  - id: 6
    type: Slab
    len: 4
    size: 48
    ptrs: []
roots:
  - 2
`
	assert.Equal(t, want, buf.String())
}
