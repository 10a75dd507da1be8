// ABOUTME: Read-only traversal of allocated blocks for snapshots and debugging
// ABOUTME: Exposes each block's kind, size and outgoing references

package heap

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

// ObjectInfo describes one allocated block.
type ObjectInfo struct {
	Ref   Ref
	Kind  Kind
	Len   int
	Bytes int   // block size including the header
	Ptrs  []Ref // non-nil traced fields, in field order
}

// Walk calls fn for every allocated block in address order, including
// garbage not yet collected. fn must not allocate.
func (h *Heap) Walk(fn func(ObjectInfo)) {
	for i := arenaBase; i < len(h.words); {
		n := h.blockWordsAt(i)
		if h.words[i]&flagFree == 0 {
			fn(h.info(Ref(i)))
		}
		i += n
	}
}

// Object returns the description of the block at ref.
func (h *Heap) Object(ref Ref) ObjectInfo {
	h.checkRef(ref)
	return h.info(ref)
}

// Children returns the non-nil Refs traced from the block at ref.
func (h *Heap) Children(ref Ref) []Ref {
	return h.Object(ref).Ptrs
}

func (h *Heap) info(ref Ref) ObjectInfo {
	hdr := decodeHeader(h.words[ref], h.words[ref+1])
	info := ObjectInfo{
		Ref:   ref,
		Kind:  hdr.Kind,
		Len:   hdr.Len,
		Bytes: hdr.BlockWords * wordSize,
	}
	base := int(ref) + headerWords
	switch {
	case hdr.Mask == 0:
	case hdr.VarLen:
		for i := 0; i < hdr.Len; i++ {
			if p := Ref(h.words[base+i]); p != Nil {
				info.Ptrs = append(info.Ptrs, p)
			}
		}
	default:
		for m, i := hdr.Mask, 0; m != 0; m, i = m>>1, i+1 {
			if m&1 == 0 {
				continue
			}
			if p := Ref(h.words[base+i]); p != Nil {
				info.Ptrs = append(info.Ptrs, p)
			}
		}
	}
	return info
}

// Reachable returns the set of blocks reachable from the current roots
// without touching mark bits.
func (h *Heap) Reachable() map[Ref]bool {
	seen := make(map[Ref]bool)
	stack := h.RootRefs()
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[ref] {
			continue
		}
		h.checkRef(ref)
		seen[ref] = true
		stack = append(stack, h.info(ref).Ptrs...)
	}
	return seen
}

// Dump writes the statistics and every block to w for debugging.
func (h *Heap) Dump(w io.Writer) {
	var objs []ObjectInfo
	h.Walk(func(o ObjectInfo) {
		objs = append(objs, o)
	})
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	cfg.Fdump(w, h.Stats(), objs)
}
