// ABOUTME: Encoding-neutral dump model shared by every format
// ABOUTME: Converts between graphs and dumps and validates decoded input

package heapdump

import (
	"errors"
	"fmt"

	"github.com/prateek/gcheap/graph"
)

var (
	// ErrMissingID is returned for an object without an ID
	ErrMissingID = errors.New("object missing ID")

	// ErrDuplicateID is returned when two objects share an ID
	ErrDuplicateID = errors.New("duplicate object ID")
)

// Dump is a serialized snapshot.
type Dump struct {
	Objects []Object      `json:"objects" yaml:"objects"`
	Roots   []graph.ObjID `json:"roots" yaml:"roots"`
}

// Object is one serialized node. Retained is only present when the dump
// was written with retained sizes.
type Object struct {
	ID       graph.ObjID   `json:"id" yaml:"id"`
	Type     string        `json:"type" yaml:"type"`
	Len      int           `json:"len,omitempty" yaml:"len,omitempty"`
	Size     uint64        `json:"size" yaml:"size"`
	Retained uint64        `json:"retained,omitempty" yaml:"retained,omitempty"`
	Ptrs     []graph.ObjID `json:"ptrs" yaml:"ptrs,flow"`
}

// Options controls what NewDump records.
type Options struct {
	// Retained adds each reachable object's retained size
	Retained bool

	// LiveOnly drops objects unreachable from the roots
	LiveOnly bool
}

// NewDump captures g in insertion order.
func NewDump(g graph.Graph, opts Options) *Dump {
	var retained map[graph.ObjID]uint64
	if opts.Retained {
		retained = graph.RetainedSize(g)
	}
	var live map[graph.ObjID]bool
	if opts.LiveOnly {
		live = graph.Reachable(g)
	}

	d := &Dump{
		Objects: make([]Object, 0, g.NumObjects()),
		Roots:   append([]graph.ObjID{}, g.GetRoots().IDs...),
	}
	g.ForEachObject(func(obj *graph.Object) {
		if live != nil && !live[obj.ID] {
			return
		}
		d.Objects = append(d.Objects, Object{
			ID:       obj.ID,
			Type:     obj.Type,
			Len:      obj.Len,
			Size:     obj.Size,
			Retained: retained[obj.ID],
			Ptrs:     append([]graph.ObjID{}, obj.Ptrs...),
		})
	})
	return d
}

// Graph validates d and builds a graph from it. Missing pointer and root
// lists become empty.
func (d *Dump) Graph() (*graph.MemGraph, error) {
	g := graph.NewMemGraph()
	for i, obj := range d.Objects {
		if obj.ID == graph.SuperRoot {
			return nil, fmt.Errorf("object at index %d: %w", i, ErrMissingID)
		}
		if g.GetObject(obj.ID) != nil {
			return nil, fmt.Errorf("object at index %d: %w: %d", i, ErrDuplicateID, obj.ID)
		}
		ptrs := obj.Ptrs
		if ptrs == nil {
			ptrs = []graph.ObjID{}
		}
		g.AddObject(&graph.Object{
			ID:   obj.ID,
			Type: obj.Type,
			Len:  obj.Len,
			Size: obj.Size,
			Ptrs: ptrs,
		})
	}

	roots := graph.Roots{IDs: d.Roots}
	if roots.IDs == nil {
		roots.IDs = []graph.ObjID{}
	}
	g.SetRoots(roots)
	return g, nil
}
