// ABOUTME: Reverse edges of an object graph
// ABOUTME: Maps each node to the nodes holding a reference to it

package graph

// ReverseEdges maps a node to its referrers. A referrer holding several
// references to the same node appears once per reference.
type ReverseEdges map[ObjID][]ObjID

// BuildReverseEdges inverts every edge of g.
func BuildReverseEdges(g Graph) ReverseEdges {
	reverse := make(ReverseEdges)
	g.ForEachObject(func(obj *Object) {
		for _, to := range obj.Ptrs {
			reverse[to] = append(reverse[to], obj.ID)
		}
	})
	return reverse
}

// withSuperRoot returns the reverse edges plus an edge from the super-root
// to every root.
func withSuperRoot(g Graph) ReverseEdges {
	reverse := BuildReverseEdges(g)
	for _, id := range g.GetRoots().IDs {
		reverse[id] = append(reverse[id], SuperRoot)
	}
	return reverse
}
