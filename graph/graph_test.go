// ABOUTME: Tests for the graph data structures and interfaces
// ABOUTME: Validates node storage, insertion order and root handling

package graph

import (
	"reflect"
	"testing"

	"github.com/prateek/gcheap/heap"
)

func TestGraphInterface(t *testing.T) {
	g := NewMemGraph()
	g.AddObject(&Object{ID: 10, Type: "List", Size: 32, Ptrs: []ObjID{4}})
	g.AddObject(&Object{ID: 4, Type: "Slab", Size: 48})

	retrieved := g.GetObject(10)
	if retrieved == nil {
		t.Fatal("Expected to retrieve object 10")
	}
	if retrieved.Type != "List" {
		t.Errorf("Expected type List, got %s", retrieved.Type)
	}
	if g.GetObject(99) != nil {
		t.Error("Expected nil for missing object")
	}
	if g.NumObjects() != 2 {
		t.Errorf("Expected 2 objects, got %d", g.NumObjects())
	}

	var order []ObjID
	g.ForEachObject(func(obj *Object) {
		order = append(order, obj.ID)
	})
	if !reflect.DeepEqual(order, []ObjID{10, 4}) {
		t.Errorf("Expected insertion order [10 4], got %v", order)
	}
}

func TestAddObjectReplaces(t *testing.T) {
	g := NewMemGraph()
	g.AddObject(&Object{ID: 1, Size: 8})
	g.AddObject(&Object{ID: 2, Size: 8})
	g.AddObject(&Object{ID: 1, Size: 16})

	if g.NumObjects() != 2 {
		t.Errorf("Expected 2 objects, got %d", g.NumObjects())
	}
	if got := g.GetObject(1).Size; got != 16 {
		t.Errorf("Expected replaced size 16, got %d", got)
	}
	var order []ObjID
	g.ForEachObject(func(obj *Object) {
		order = append(order, obj.ID)
	})
	if !reflect.DeepEqual(order, []ObjID{1, 2}) {
		t.Errorf("Expected order kept as [1 2], got %v", order)
	}
}

func TestRoots(t *testing.T) {
	g := NewMemGraph()
	if len(g.GetRoots().IDs) != 0 {
		t.Errorf("Expected no roots, got %v", g.GetRoots().IDs)
	}
	g.SetRoots(Roots{IDs: []ObjID{3, 5}})
	if !reflect.DeepEqual(g.GetRoots().IDs, []ObjID{3, 5}) {
		t.Errorf("Expected roots [3 5], got %v", g.GetRoots().IDs)
	}
}

func TestIDConversion(t *testing.T) {
	ref := heap.Ref(42)
	if IDOf(ref).Ref() != ref {
		t.Errorf("Expected round trip of %d, got %d", ref, IDOf(ref).Ref())
	}
	if IDOf(heap.Nil) != SuperRoot {
		t.Error("Expected Nil to map to the super-root")
	}
}

func TestReverseEdges(t *testing.T) {
	g := NewMemGraph()
	g.AddObject(&Object{ID: 1, Ptrs: []ObjID{2, 3}})
	g.AddObject(&Object{ID: 2, Ptrs: []ObjID{3}})
	g.AddObject(&Object{ID: 3, Ptrs: []ObjID{1}})

	reverse := BuildReverseEdges(g)
	want := ReverseEdges{
		1: {3},
		2: {1},
		3: {1, 2},
	}
	if !reflect.DeepEqual(reverse, want) {
		t.Errorf("Expected %v, got %v", want, reverse)
	}
}
