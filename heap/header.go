// ABOUTME: Object header encoding shared by the allocator and the collector
// ABOUTME: Two words per block: size/kind/flags, then length and field mask

package heap

import (
	"fmt"
	"math/bits"
)

// Ref is a managed pointer: the word index of a block header in the arena.
type Ref uint32

// Nil is the cleared reference. Word 0 of the arena is never a block.
const Nil Ref = 0

// Load implements Slot so a local Ref variable can be registered as a root.
func (r *Ref) Load() Ref {
	return *r
}

// FieldMask has one bit per payload word; a set bit means the word holds a
// traced Ref. For variable-length objects any set bit means every element
// word is a Ref.
type FieldMask uint32

// MaskBit returns the mask bit for payload word i.
func MaskBit(i int) FieldMask {
	return FieldMask(1) << uint(i)
}

// NumFields returns the number of payload words the mask needs.
func (m FieldMask) NumFields() int {
	return bits.Len32(uint32(m))
}

const (
	wordSize    = 8
	headerWords = 2
	maxLen      = 1<<32 - 1

	// word 0
	blockWordsMask = 1<<32 - 1
	kindShift      = 32
	flagMark       = 1 << 40
	flagVarLen     = 1 << 41
	flagFree       = 1 << 42

	// word 1
	maskShift = 32
)

// Kind tags what a block holds. The collector only uses it for diagnostics
// and snapshots; tracing is driven entirely by the field mask.
type Kind uint8

const (
	KindFree Kind = iota
	KindStr
	KindMutableStr
	KindSlab
	KindList
	KindDict
	KindBufWriter
	KindFileWriter
	KindBufLineReader
	KindFileLineReader
	KindObject
)

var kindNames = [...]string{
	KindFree:           "free",
	KindStr:            "Str",
	KindMutableStr:     "MutableStr",
	KindSlab:           "Slab",
	KindList:           "List",
	KindDict:           "Dict",
	KindBufWriter:      "BufWriter",
	KindFileWriter:     "CFileWriter",
	KindBufLineReader:  "BufLineReader",
	KindFileLineReader: "CFileLineReader",
	KindObject:         "Object",
}

// String returns the kind's type name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Header is the decoded form of a block's two header words.
type Header struct {
	BlockWords int       // total words including the header
	Kind       Kind      // what the block holds
	Marked     bool      // reached during the current collection
	VarLen     bool      // Len counts bytes or elements rather than fields
	Free       bool      // block belongs to the free list
	Len        int       // byte length or element count
	Mask       FieldMask // traced payload words
}

// PayloadWords returns the number of words after the header.
func (h Header) PayloadWords() int {
	return h.BlockWords - headerWords
}

// HasPointers reports whether the collector needs to scan the payload.
func (h Header) HasPointers() bool {
	return h.Mask != 0
}

func (h Header) encode() (uint64, uint64) {
	w0 := uint64(h.BlockWords)&blockWordsMask | uint64(h.Kind)<<kindShift
	if h.Marked {
		w0 |= flagMark
	}
	if h.VarLen {
		w0 |= flagVarLen
	}
	if h.Free {
		w0 |= flagFree
	}
	w1 := uint64(uint32(h.Len)) | uint64(h.Mask)<<maskShift
	return w0, w1
}

func decodeHeader(w0, w1 uint64) Header {
	return Header{
		BlockWords: int(w0 & blockWordsMask),
		Kind:       Kind(w0 >> kindShift),
		Marked:     w0&flagMark != 0,
		VarLen:     w0&flagVarLen != 0,
		Free:       w0&flagFree != 0,
		Len:        int(uint32(w1)),
		Mask:       FieldMask(w1 >> maskShift),
	}
}

// wordsFor rounds a byte count up to whole words.
func wordsFor(nbytes int) int {
	return (nbytes + wordSize - 1) / wordSize
}
