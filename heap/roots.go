// ABOUTME: Shadow stack of root slots standing in for native stack scanning
// ABOUTME: Frames are pushed on scope entry and popped by a deferred call

package heap

// Slot is a location holding a managed reference. The collector calls Load
// at collection time, so reassigning the variable behind a registered Slot
// is seen without re-registering it.
type Slot interface {
	Load() Ref
}

// rootStack is a growable sequence of slots with one start index per frame.
// Both slices grow by append, so recursion depth is bounded only by memory.
type rootStack struct {
	slots  []Slot
	frames []int
}

func (s *rootStack) reset() {
	clear(s.slots)
	s.slots = s.slots[:0]
	s.frames = s.frames[:0]
}

// Frame is the handle for one activation's roots.
type Frame struct {
	h     *Heap
	depth int
}

// PushRoots registers slots as roots for the current activation. Callers
// pair it with a deferred Pop:
//
//	var s mylib.Str
//	defer h.PushRoots(&s).Pop()
func (h *Heap) PushRoots(slots ...Slot) Frame {
	rs := &h.roots
	rs.frames = append(rs.frames, len(rs.slots))
	rs.slots = append(rs.slots, slots...)
	if n := len(rs.slots); n > h.stats.MaxRoots {
		h.stats.MaxRoots = n
	}
	return Frame{h: h, depth: len(rs.frames)}
}

// Pop removes the frame's slots. It must be the innermost active frame.
func (f Frame) Pop() {
	rs := &f.h.roots
	if len(rs.frames) != f.depth {
		Fail(ErrRootOrder, "pop of frame %d with %d active", f.depth, len(rs.frames))
	}
	start := rs.frames[len(rs.frames)-1]
	clear(rs.slots[start:])
	rs.slots = rs.slots[:start]
	rs.frames = rs.frames[:len(rs.frames)-1]
}

// RootDepth returns the number of active frames.
func (h *Heap) RootDepth() int {
	return len(h.roots.frames)
}

// NumRoots returns the number of slots across all active frames.
func (h *Heap) NumRoots() int {
	return len(h.roots.slots)
}

// RootGlobalVar registers a slot that stays a root for the heap's lifetime.
func (h *Heap) RootGlobalVar(slot Slot) {
	h.globals = append(h.globals, slot)
}

// RootRefs returns the current non-nil values of every global and stack
// root, globals first. A Ref rooted twice appears twice.
func (h *Heap) RootRefs() []Ref {
	refs := make([]Ref, 0, len(h.globals)+len(h.roots.slots))
	for _, s := range h.globals {
		if r := s.Load(); r != Nil {
			refs = append(refs, r)
		}
	}
	for _, s := range h.roots.slots {
		if r := s.Load(); r != Nil {
			refs = append(refs, r)
		}
	}
	return refs
}
