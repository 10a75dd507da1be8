// ABOUTME: Immediate dominators of an object graph rooted at a synthetic super-root
// ABOUTME: Iterative Cooper-Harvey-Kennedy over reverse postorder, no recursion

package graph

// Dominators computes the immediate dominator of every node reachable from
// the roots. The super-root points at every root, so each root maps to
// SuperRoot. Unreachable nodes are absent from the result.
func Dominators(g Graph) map[ObjID]ObjID {
	order := reversePostorder(g)
	if len(order) <= 1 {
		return map[ObjID]ObjID{}
	}
	num := make(map[ObjID]int, len(order))
	for i, id := range order {
		num[id] = i
	}
	preds := withSuperRoot(g)

	// idom by reverse postorder number; -1 is undefined.
	idom := make([]int, len(order))
	for i := range idom {
		idom[i] = -1
	}
	idom[0] = 0

	intersect := func(a, b int) int {
		for a != b {
			for a > b {
				a = idom[a]
			}
			for b > a {
				b = idom[b]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		for i := 1; i < len(order); i++ {
			next := -1
			for _, p := range preds[order[i]] {
				pn, ok := num[p]
				if !ok || idom[pn] < 0 {
					continue
				}
				if next < 0 {
					next = pn
				} else {
					next = intersect(pn, next)
				}
			}
			if next >= 0 && idom[i] != next {
				idom[i] = next
				changed = true
			}
		}
	}

	result := make(map[ObjID]ObjID, len(order)-1)
	for i := 1; i < len(order); i++ {
		result[order[i]] = order[idom[i]]
	}
	return result
}

// reversePostorder numbers the nodes reachable from the super-root. The
// super-root is always first. Edges to unknown IDs are ignored.
func reversePostorder(g Graph) []ObjID {
	type frame struct {
		id   ObjID
		next int
	}
	succs := func(id ObjID) []ObjID {
		if id == SuperRoot {
			return g.GetRoots().IDs
		}
		if obj := g.GetObject(id); obj != nil {
			return obj.Ptrs
		}
		return nil
	}

	visited := map[ObjID]bool{SuperRoot: true}
	var post []ObjID
	stack := []frame{{id: SuperRoot}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		out := succs(top.id)
		if top.next < len(out) {
			w := out[top.next]
			top.next++
			if !visited[w] && (w == SuperRoot || g.GetObject(w) != nil) {
				visited[w] = true
				stack = append(stack, frame{id: w})
			}
			continue
		}
		post = append(post, top.id)
		stack = stack[:len(stack)-1]
	}

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
