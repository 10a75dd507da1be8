// ABOUTME: Arena heap with first-fit free-list allocation
// ABOUTME: Allocation is a collection point and grows the arena when full

package heap

import (
	"log/slog"
	"sync"
	"unsafe"
)

// arenaBase is the first block index; word 0 stays unused so Nil never
// names a block.
const arenaBase = headerWords

const minArenaWords = 64

// span is a run of free words starting at a block header.
type span struct {
	start Ref
	words int
}

// Heap is a single-threaded mark/sweep heap over a word arena.
type Heap struct {
	cfg Config
	log *slog.Logger

	words []uint64
	free  []span // address ordered

	threshold    int // bytes allocated between collections
	sinceCollect int
	collecting   bool

	roots     rootStack
	globals   []Slot
	markStack []Ref
	starts    []bool // block starts, only while verifying a collection

	stats   Stats
	metrics *heapMetrics
}

// New creates a heap. Zero fields in cfg take their defaults. The arena is
// created lazily by the first allocation unless Init is called.
func New(cfg Config) *Heap {
	cfg = cfg.withDefaults()
	h := &Heap{
		cfg: cfg,
		log: cfg.Logger,
	}
	h.metrics = newHeapMetrics()
	return h
}

var (
	defaultOnce sync.Once
	defaultHeap *Heap
)

// Default returns the process-wide heap, created on first use.
func Default() *Heap {
	defaultOnce.Do(func() {
		defaultHeap = New(DefaultConfig())
	})
	return defaultHeap
}

// Config returns the heap's effective configuration.
func (h *Heap) Config() Config {
	return h.cfg
}

// Init discards every object and root and starts over with an arena of
// initialBytes. The collection threshold starts at the same size.
func (h *Heap) Init(initialBytes int) {
	if h.collecting {
		Fail(ErrReentrantAlloc, "init during collection")
	}
	h.roots.reset()
	h.globals = nil
	h.stats = Stats{}
	h.metrics = newHeapMetrics()
	h.resetArena(initialBytes)
}

func (h *Heap) resetArena(initialBytes int) {
	if initialBytes <= 0 {
		initialBytes = h.cfg.InitialBytes
	}
	n := max(arenaBase+wordsFor(initialBytes), minArenaWords)
	h.words = make([]uint64, n)
	h.free = h.free[:0]
	h.addFree(span{start: arenaBase, words: n - arenaBase})
	h.threshold = initialBytes
	h.sinceCollect = 0
	h.markStack = h.markStack[:0]
	h.publish()
}

// ensureInit creates the arena on first allocation, keeping any roots that
// were registered before it.
func (h *Heap) ensureInit() {
	if h.words == nil {
		h.resetArena(h.cfg.InitialBytes)
	}
}

// Allocate returns a zeroed block with room for nbytes of payload. For
// fixed-size objects mask names the payload words holding Refs; for
// variable-length objects (varLen) a non-zero mask marks every element as a
// Ref and length is the element or byte count stored in the header.
//
// Allocation may run a collection first, so every live Ref the caller holds
// must be reachable from a root. It never returns Nil: exhaustion panics.
func (h *Heap) Allocate(kind Kind, nbytes int, mask FieldMask, varLen bool, length int) Ref {
	if h.collecting {
		Fail(ErrReentrantAlloc, "allocate %s", kind)
	}
	if nbytes < 0 || length < 0 || length > maxLen {
		Fail(ErrBadLength, "allocate %s: %d bytes, length %d", kind, nbytes, length)
	}
	payload := wordsFor(nbytes)
	switch {
	case !varLen && mask.NumFields() > payload:
		Fail(ErrBadFieldMask, "%s mask %#x over %d words", kind, mask, payload)
	case varLen && mask != 0 && length > payload:
		Fail(ErrBadFieldMask, "%s slab of %d refs in %d words", kind, length, payload)
	}
	h.ensureInit()

	need := headerWords + payload
	collected := h.MaybeCollect()
	ref, ok := h.take(need)
	if !ok && !collected {
		h.Collect()
		ref, ok = h.take(need)
	}
	for !ok {
		h.grow(need)
		ref, ok = h.take(need)
	}

	blockWords := h.blockWords(ref)
	clear(h.words[int(ref)+headerWords : int(ref)+blockWords])
	h.writeHeader(ref, Header{
		BlockWords: blockWords,
		Kind:       kind,
		VarLen:     varLen,
		Len:        length,
		Mask:       mask,
	})

	size := blockWords * wordSize
	h.sinceCollect += size
	h.stats.NumAllocated++
	h.stats.BytesAllocated += size
	h.metrics.allocs.Inc(1)
	h.metrics.allocBytes.Inc(int64(size))
	return ref
}

// take carves need words out of the first free span large enough. A
// remainder too small to hold a header stays with the allocation.
func (h *Heap) take(need int) (Ref, bool) {
	for i, sp := range h.free {
		if sp.words < need {
			continue
		}
		rest := sp.words - need
		if rest < headerWords {
			h.free = append(h.free[:i], h.free[i+1:]...)
			h.writeHeader(sp.start, Header{BlockWords: sp.words})
			return sp.start, true
		}
		tail := span{start: sp.start + Ref(need), words: rest}
		h.free[i] = tail
		h.writeFreeHeader(tail)
		h.writeHeader(sp.start, Header{BlockWords: need})
		return sp.start, true
	}
	return Nil, false
}

// grow doubles the arena, or more if a single request needs it, up to
// MaxHeapBytes. take may still fail after a capped growth; the next call
// then finds no room left and fails.
func (h *Heap) grow(need int) {
	old := len(h.words)
	n := max(old*2, old+need)
	if limit := h.cfg.MaxHeapBytes / wordSize; limit > 0 && n > limit {
		n = limit
	}
	if n <= old || n > maxLen {
		Fail(ErrOutOfMemory, "need %d bytes with arena at %d bytes", need*wordSize, old*wordSize)
	}
	h.words = append(h.words, make([]uint64, n-old)...)
	h.addFree(span{start: Ref(old), words: n - old})

	h.stats.NumGrowths++
	h.metrics.growths.Inc(1)
	h.log.Info("Heap grown", "from", old*wordSize, "to", n*wordSize)
}

// addFree appends a span at the end of the arena, merging it into the last
// free span when they touch.
func (h *Heap) addFree(sp span) {
	if k := len(h.free); k > 0 {
		last := &h.free[k-1]
		if int(last.start)+last.words == int(sp.start) {
			last.words += sp.words
			h.writeFreeHeader(*last)
			return
		}
	}
	h.free = append(h.free, sp)
	h.writeFreeHeader(sp)
}

func (h *Heap) writeFreeHeader(sp span) {
	h.writeHeader(sp.start, Header{BlockWords: sp.words, Free: true})
}

func (h *Heap) writeHeader(ref Ref, hdr Header) {
	w0, w1 := hdr.encode()
	h.words[ref] = w0
	h.words[ref+1] = w1
}

func (h *Heap) blockWords(ref Ref) int {
	return int(h.words[ref] & blockWordsMask)
}

// Header decodes the header of the block at ref.
func (h *Heap) Header(ref Ref) Header {
	h.checkRef(ref)
	return decodeHeader(h.words[ref], h.words[ref+1])
}

// Retag changes a block's kind and length in place. It is used to hand a
// filled buffer out as an immutable string without copying; length must fit
// the payload and the block must hold no pointers.
func (h *Heap) Retag(ref Ref, kind Kind, length int) {
	hdr := h.Header(ref)
	if hdr.Mask != 0 || length < 0 || wordsFor(length) > hdr.PayloadWords() {
		Fail(ErrBadLength, "retag %s as %s with length %d", hdr.Kind, kind, length)
	}
	hdr.Kind = kind
	hdr.Len = length
	h.writeHeader(ref, hdr)
}

// Word returns payload word i of the block at ref.
func (h *Heap) Word(ref Ref, i int) uint64 {
	return h.words[h.wordIndex(ref, i)]
}

// SetWord stores payload word i of the block at ref.
func (h *Heap) SetWord(ref Ref, i int, v uint64) {
	h.words[h.wordIndex(ref, i)] = v
}

// RefAt returns payload word i as a Ref.
func (h *Heap) RefAt(ref Ref, i int) Ref {
	return Ref(h.Word(ref, i))
}

// SetRefAt stores a Ref into payload word i.
func (h *Heap) SetRefAt(ref Ref, i int, v Ref) {
	h.SetWord(ref, i, uint64(v))
}

// Words returns the payload of the block at ref as words. The slice aliases
// the arena and is invalid after the next allocation.
func (h *Heap) Words(ref Ref) []uint64 {
	h.checkRef(ref)
	start := int(ref) + headerWords
	return h.words[start : int(ref)+h.blockWords(ref)]
}

// Payload returns the whole payload of the block at ref as bytes. The slice
// aliases the arena and is invalid after the next allocation.
func (h *Heap) Payload(ref Ref) []byte {
	w := h.Words(ref)
	if len(w) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&w[0])), len(w)*wordSize)
}

// Bytes returns the first Len bytes of the payload; see Payload.
func (h *Heap) Bytes(ref Ref) []byte {
	n := h.Header(ref).Len
	return h.Payload(ref)[:n]
}

func (h *Heap) wordIndex(ref Ref, i int) int {
	h.checkRef(ref)
	if i < 0 || i >= h.blockWords(ref)-headerWords {
		Fail(ErrCorruptHeap, "word %d of block %d with %d payload words", i, ref, h.blockWords(ref)-headerWords)
	}
	return int(ref) + headerWords + i
}

// checkRef panics unless ref looks like an allocated block.
func (h *Heap) checkRef(ref Ref) {
	if !h.looksLikeBlock(ref) {
		Fail(ErrDanglingRef, "ref %d", ref)
	}
}

func (h *Heap) looksLikeBlock(ref Ref) bool {
	i := int(ref)
	if i < arenaBase || i+headerWords > len(h.words) {
		return false
	}
	w0 := h.words[i]
	n := int(w0 & blockWordsMask)
	return w0&flagFree == 0 && n >= headerWords && i+n <= len(h.words)
}
