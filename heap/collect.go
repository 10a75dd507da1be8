// ABOUTME: Stop-the-world mark/sweep collection driven by field masks
// ABOUTME: Marks from global and stack roots, sweeps into a coalesced free list

package heap

import (
	"time"
)

// MaybeCollect runs a collection if more than the threshold has been
// allocated since the last one. It reports whether it collected.
func (h *Heap) MaybeCollect() bool {
	if h.collecting || h.sinceCollect <= h.threshold {
		return false
	}
	h.Collect()
	return true
}

// Collect reclaims every block not reachable from a root.
//
// The steps are: clear marks, mark from globals then every active frame,
// sweep unmarked blocks into the free list, and raise the threshold when the
// surviving live set is close to it.
func (h *Heap) Collect() {
	if h.collecting {
		Fail(ErrReentrantAlloc, "nested collection")
	}
	h.ensureInit()
	h.collecting = true
	defer func() { h.collecting = false }()

	start := time.Now()
	h.clearMarks()
	for _, s := range h.globals {
		h.mark(s.Load())
	}
	for _, s := range h.roots.slots {
		h.mark(s.Load())
	}
	h.drain()
	live, liveObjs, freedObjs := h.sweep()
	pause := time.Since(start)

	prev := h.threshold
	if float64(live) > float64(prev)*h.cfg.GrowThreshold {
		h.threshold = int(float64(live) * h.cfg.GrowFactor)
	}
	h.sinceCollect = 0

	s := &h.stats
	s.NumCollections++
	s.NumFreed += freedObjs
	s.LiveBytes = live
	s.LiveObjects = liveObjs
	s.MaxLiveBytes = max(s.MaxLiveBytes, live)
	s.TotalPause += pause
	h.metrics.collections.Inc(1)
	h.metrics.pause.Update(pause.Microseconds())
	h.publish()

	h.log.Debug("Collected heap", "live", live, "objects", liveObjs, "freed", freedObjs,
		"threshold", h.threshold, "prev", prev, "pause", pause)
}

// clearMarks resets every mark bit. With Verify set it also records where
// blocks start so mark can reject refs into the middle of a block.
func (h *Heap) clearMarks() {
	h.starts = nil
	if h.cfg.Verify {
		h.starts = make([]bool, len(h.words))
	}
	for i := arenaBase; i < len(h.words); {
		h.words[i] &^= flagMark
		if h.starts != nil {
			h.starts[i] = true
		}
		i += h.blockWordsAt(i)
	}
}

// mark sets the mark bit on ref and queues it for scanning if it has
// pointer fields. Nil is ignored.
func (h *Heap) mark(ref Ref) {
	if ref == Nil {
		return
	}
	if !h.looksLikeBlock(ref) || (h.starts != nil && !h.starts[ref]) {
		Fail(ErrDanglingRef, "traced ref %d", ref)
	}
	w0 := h.words[ref]
	if w0&flagMark != 0 {
		return
	}
	h.words[ref] = w0 | flagMark
	if FieldMask(h.words[ref+1]>>maskShift) != 0 {
		h.markStack = append(h.markStack, ref)
	}
}

// drain scans queued objects until the mark stack is empty. An explicit
// stack keeps deep object graphs (long linked lists) off the Go stack.
func (h *Heap) drain() {
	for len(h.markStack) > 0 {
		n := len(h.markStack) - 1
		ref := h.markStack[n]
		h.markStack = h.markStack[:n]

		hdr := decodeHeader(h.words[ref], h.words[ref+1])
		base := int(ref) + headerWords
		if hdr.VarLen {
			for i := 0; i < hdr.Len; i++ {
				h.mark(Ref(h.words[base+i]))
			}
			continue
		}
		if hdr.Mask.NumFields() > hdr.PayloadWords() {
			Fail(ErrBadFieldMask, "%s at %d: mask %#x over %d words", hdr.Kind, ref, hdr.Mask, hdr.PayloadWords())
		}
		for m, i := hdr.Mask, 0; m != 0; m, i = m>>1, i+1 {
			if m&1 != 0 {
				h.mark(Ref(h.words[base+i]))
			}
		}
	}
}

// sweep frees unmarked blocks and rebuilds the free list, merging adjacent
// free blocks. It returns live bytes, live objects and freed objects.
func (h *Heap) sweep() (live, liveObjs, freedObjs int) {
	h.free = h.free[:0]
	for i := arenaBase; i < len(h.words); {
		w0 := h.words[i]
		n := h.blockWordsAt(i)
		switch {
		case w0&flagFree != 0:
			h.appendFree(span{start: Ref(i), words: n})
		case w0&flagMark == 0:
			freedObjs++
			h.words[i] |= flagFree
			if h.cfg.Verify {
				clear(h.words[i+headerWords : i+n])
			}
			h.appendFree(span{start: Ref(i), words: n})
		default:
			live += n * wordSize
			liveObjs++
		}
		i += n
	}
	for _, sp := range h.free {
		h.writeFreeHeader(sp)
	}
	h.starts = nil
	return live, liveObjs, freedObjs
}

// appendFree is addFree without rewriting headers; sweep writes them once
// the merged spans are final.
func (h *Heap) appendFree(sp span) {
	if k := len(h.free); k > 0 {
		last := &h.free[k-1]
		if int(last.start)+last.words == int(sp.start) {
			last.words += sp.words
			return
		}
	}
	h.free = append(h.free, sp)
}

func (h *Heap) blockWordsAt(i int) int {
	n := int(h.words[i] & blockWordsMask)
	if n < headerWords || i+n > len(h.words) {
		Fail(ErrCorruptHeap, "block at %d claims %d words", i, n)
	}
	return n
}
