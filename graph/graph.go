// ABOUTME: Graph interface and its in-memory implementation
// ABOUTME: MemGraph keeps insertion order so traversals are deterministic

package graph

import "sync"

// Graph is a read-mostly object graph.
type Graph interface {
	// AddObject adds obj, replacing any node with the same ID
	AddObject(obj *Object)

	// GetObject returns the node with id, or nil
	GetObject(id ObjID) *Object

	// NumObjects returns the number of nodes
	NumObjects() int

	// ForEachObject visits nodes in insertion order
	ForEachObject(fn func(*Object))

	// SetRoots replaces the root set
	SetRoots(roots Roots)

	// GetRoots returns the root set
	GetRoots() Roots
}

// MemGraph is a Graph held in memory. It is safe for concurrent readers.
type MemGraph struct {
	mu      sync.RWMutex
	objects map[ObjID]*Object
	order   []ObjID
	roots   Roots
}

// NewMemGraph returns an empty graph.
func NewMemGraph() *MemGraph {
	return &MemGraph{objects: make(map[ObjID]*Object)}
}

// AddObject adds an object, replacing any with the same ID in place
func (g *MemGraph) AddObject(obj *Object) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.objects[obj.ID]; !ok {
		g.order = append(g.order, obj.ID)
	}
	g.objects[obj.ID] = obj
}

// GetObject retrieves an object by ID, or nil
func (g *MemGraph) GetObject(id ObjID) *Object {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.objects[id]
}

// NumObjects returns the number of objects
func (g *MemGraph) NumObjects() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}

// ForEachObject calls fn for each object in insertion order
func (g *MemGraph) ForEachObject(fn func(*Object)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range g.order {
		fn(g.objects[id])
	}
}

// SetRoots sets the root set
func (g *MemGraph) SetRoots(roots Roots) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roots = roots
}

// GetRoots returns the root set
func (g *MemGraph) GetRoots() Roots {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roots
}
