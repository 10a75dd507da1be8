// ABOUTME: Node and root types for object graphs built from heap snapshots
// ABOUTME: IDs are heap references; ID 0 is reserved for the super-root

package graph

import "github.com/prateek/gcheap/heap"

// ObjID identifies a node. Snapshots use the block's heap.Ref, so the
// reserved value 0 (heap.Nil) is free to act as the super-root.
type ObjID uint32

// SuperRoot is the synthetic node pointing at every root.
const SuperRoot ObjID = 0

// IDOf converts a heap reference to a node ID.
func IDOf(ref heap.Ref) ObjID {
	return ObjID(ref)
}

// Ref converts a node ID back to the heap reference it came from.
func (id ObjID) Ref() heap.Ref {
	return heap.Ref(id)
}

// Object is one node: a heap block and the blocks its traced fields name.
type Object struct {
	ID   ObjID   // block reference
	Type string  // heap.Kind name
	Len  int     // header length: bytes or elements
	Size uint64  // block size in bytes
	Ptrs []ObjID // traced fields, in field order
}

// Roots lists the nodes held by global and stack roots.
type Roots struct {
	IDs []ObjID
}
