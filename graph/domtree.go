// ABOUTME: Dominator tree construction and queries over an idom map
// ABOUTME: Depths, dominator chains and dominance checks

package graph

import "sort"

// DominatorTree inverts idom into a map from each node to the nodes it
// immediately dominates, sorted by ID. The super-root is always present.
func DominatorTree(idom map[ObjID]ObjID) map[ObjID][]ObjID {
	tree := make(map[ObjID][]ObjID, len(idom)+1)
	tree[SuperRoot] = []ObjID{}
	for node := range idom {
		if _, ok := tree[node]; !ok {
			tree[node] = []ObjID{}
		}
	}
	for node, dom := range idom {
		tree[dom] = append(tree[dom], node)
	}
	for _, children := range tree {
		sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
	}
	return tree
}

// DominatorDepth returns each node's depth in the tree. The super-root has
// depth 0 and the roots depth 1.
func DominatorDepth(tree map[ObjID][]ObjID) map[ObjID]int {
	depth := map[ObjID]int{SuperRoot: 0}
	queue := []ObjID{SuperRoot}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, child := range tree[node] {
			depth[child] = depth[node] + 1
			queue = append(queue, child)
		}
	}
	return depth
}

// DominatorPath returns node followed by its dominators, ending with the
// super-root. A node missing from idom yields [node, SuperRoot].
func DominatorPath(idom map[ObjID]ObjID, node ObjID) []ObjID {
	path := []ObjID{node}
	for current := node; current != SuperRoot; {
		dom, ok := idom[current]
		if !ok {
			dom = SuperRoot
		}
		path = append(path, dom)
		current = dom
	}
	return path
}

// IsDominated reports whether every path from the roots to node passes
// through dominator. Every node dominates itself and the super-root
// dominates every reachable node.
func IsDominated(idom map[ObjID]ObjID, node, dominator ObjID) bool {
	if node == dominator {
		return true
	}
	current := node
	for {
		dom, ok := idom[current]
		if !ok {
			return false
		}
		if dom == dominator {
			return true
		}
		if dom == SuperRoot {
			return false
		}
		current = dom
	}
}
