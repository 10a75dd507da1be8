// ABOUTME: Breadth-first search for the chains of references keeping a node alive
// ABOUTME: Shortest paths come first; each path is free of repeated nodes

package graph

// Path is a chain of references from a node back to a root. IDs[0] is the
// starting node and the last ID is a root.
type Path struct {
	IDs []ObjID
}

// PathsToRoots returns up to maxPaths shortest paths from the node to any
// root, following edges backwards. A root yields the single path [from].
// An unreachable node yields no paths.
func PathsToRoots(g Graph, from ObjID, maxPaths int) []Path {
	if maxPaths <= 0 {
		return nil
	}
	isRoot := make(map[ObjID]bool)
	for _, id := range g.GetRoots().IDs {
		isRoot[id] = true
	}
	if isRoot[from] {
		return []Path{{IDs: []ObjID{from}}}
	}

	reverse := BuildReverseEdges(g)
	var result []Path
	queue := [][]ObjID{{from}}
	for head := 0; head < len(queue); head++ {
		path := queue[head]
		tip := path[len(path)-1]
		for _, ref := range reverse[tip] {
			if contains(path, ref) {
				continue
			}
			next := make([]ObjID, len(path)+1)
			copy(next, path)
			next[len(path)] = ref
			if !isRoot[ref] {
				queue = append(queue, next)
				continue
			}
			result = append(result, Path{IDs: next})
			if len(result) == maxPaths {
				return result
			}
		}
	}
	return result
}

func contains(ids []ObjID, id ObjID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
