// ABOUTME: Retained sizes: the bytes a node keeps alive on its own
// ABOUTME: A node retains itself plus everything it dominates

package graph

// RetainedSize returns the retained size of every reachable node: the
// bytes a collection would free if that node became unreachable.
func RetainedSize(g Graph) map[ObjID]uint64 {
	idom := Dominators(g)
	retained := retainedSizes(g, idom)
	delete(retained, SuperRoot)
	return retained
}

// RetainedSizeSubsets returns retained sizes for the listed nodes only.
// Unreachable and unknown IDs are skipped.
func RetainedSizeSubsets(g Graph, targetIDs []ObjID) map[ObjID]uint64 {
	result := make(map[ObjID]uint64)
	if len(targetIDs) == 0 {
		return result
	}
	all := RetainedSize(g)
	for _, id := range targetIDs {
		if size, ok := all[id]; ok {
			result[id] = size
		}
	}
	return result
}

// retainedSizes sums sizes bottom-up over the dominator tree. Children
// always appear after their dominator in breadth-first order, so walking
// that order backwards visits every child before its parent.
func retainedSizes(g Graph, idom map[ObjID]ObjID) map[ObjID]uint64 {
	tree := DominatorTree(idom)
	order := []ObjID{SuperRoot}
	for i := 0; i < len(order); i++ {
		order = append(order, tree[order[i]]...)
	}

	retained := make(map[ObjID]uint64, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		var size uint64
		if obj := g.GetObject(id); obj != nil {
			size = obj.Size
		}
		for _, child := range tree[id] {
			size += retained[child]
		}
		retained[id] = size
	}
	return retained
}
