// ABOUTME: Tests for the JSON snapshot format
// ABOUTME: Validates parsing, detection, validation errors and encoding

package heapdump

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prateek/gcheap/graph"
)

func TestJSONParse(t *testing.T) {
	jsonData := `{
		"objects": [
			{"id": 2, "type": "List", "size": 32, "ptrs": [6]},
			{"id": 6, "type": "Slab", "len": 4, "size": 48, "ptrs": []}
		],
		"roots": [2]
	}`

	g, err := JSON{}.Parse(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if g.NumObjects() != 2 {
		t.Errorf("Expected 2 objects, got %d", g.NumObjects())
	}

	obj := g.GetObject(2)
	if obj == nil {
		t.Fatal("Object 2 not found")
	}
	if obj.Type != "List" {
		t.Errorf("Expected type List, got %s", obj.Type)
	}
	if obj.Size != 32 {
		t.Errorf("Expected size 32, got %d", obj.Size)
	}
	if len(obj.Ptrs) != 1 || obj.Ptrs[0] != 6 {
		t.Errorf("Expected ptrs [6], got %v", obj.Ptrs)
	}
	if got := g.GetObject(6).Len; got != 4 {
		t.Errorf("Expected len 4, got %d", got)
	}

	roots := g.GetRoots()
	if len(roots.IDs) != 1 || roots.IDs[0] != 2 {
		t.Errorf("Expected roots [2], got %v", roots.IDs)
	}
}

func TestJSONCanParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"objects first", `{"objects": [], "roots": []}`, true},
		{"roots first", `{"roots": [1], "objects": []}`, true},
		{"truncated preview", `{"objects": [{"id": 1, "type": "Str", "si`, true},
		{"non-JSON", `not json at all`, false},
		{"other key", `{"data": []}`, false},
		{"array", `[1, 2, 3]`, false},
		{"YAML", "objects:\n  - id: 1\n", false},
		{"empty", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (JSON{}).CanParse([]byte(tt.content)); got != tt.want {
				t.Errorf("CanParse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"missing ID", `{"objects": [{"type": "Str", "size": 16}], "roots": []}`, ErrMissingID},
		{"duplicate ID", `{"objects": [{"id": 3}, {"id": 3}], "roots": []}`, ErrDuplicateID},
		{"no objects", `{"roots": [1]}`, ErrNoObjects},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JSON{}.Parse(strings.NewReader(tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := (JSON{}).Parse(strings.NewReader(`{"objects": [`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestJSONEncode(t *testing.T) {
	g := graph.NewMemGraph()
	g.AddObject(&graph.Object{ID: 2, Type: "Str", Len: 5, Size: 24})
	g.SetRoots(graph.Roots{IDs: []graph.ObjID{2}})

	var buf bytes.Buffer
	if err := (JSON{}).Encode(&buf, NewDump(g, Options{Retained: true})); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := `{"objects":[{"id":2,"type":"Str","len":5,"size":24,"retained":24,"ptrs":[]}],"roots":[2]}` + "\n"
	if buf.String() != want {
		t.Errorf("Expected %s, got %s", want, buf.String())
	}
}
