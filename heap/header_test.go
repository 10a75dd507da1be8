// ABOUTME: Tests for header encoding, field masks and kinds
// ABOUTME: Encoding is checked as a property over arbitrary headers

package heap

import (
	"testing"

	"pgregory.net/rapid"
)

func TestHeaderEncoding(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hdr := Header{
			BlockWords: rapid.IntRange(headerWords, 1<<31).Draw(t, "blockWords"),
			Kind:       Kind(rapid.IntRange(0, int(KindObject)).Draw(t, "kind")),
			Marked:     rapid.Bool().Draw(t, "marked"),
			VarLen:     rapid.Bool().Draw(t, "varLen"),
			Free:       rapid.Bool().Draw(t, "free"),
			Len:        rapid.IntRange(0, maxLen).Draw(t, "len"),
			Mask:       FieldMask(rapid.Uint32().Draw(t, "mask")),
		}
		w0, w1 := hdr.encode()
		if got := decodeHeader(w0, w1); got != hdr {
			t.Fatalf("decode(encode(%+v)) = %+v", hdr, got)
		}
	})
}

func TestFieldMask(t *testing.T) {
	tests := []struct {
		mask FieldMask
		want int
	}{
		{0, 0},
		{MaskBit(0), 1},
		{MaskBit(1), 2},
		{MaskBit(2) | MaskBit(4), 5},
		{MaskBit(31), 32},
	}
	for _, tt := range tests {
		if got := tt.mask.NumFields(); got != tt.want {
			t.Errorf("NumFields(%#x) = %d, want %d", tt.mask, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindStr.String() != "Str" {
		t.Errorf("Expected Str, got %s", KindStr)
	}
	if KindDict.String() != "Dict" {
		t.Errorf("Expected Dict, got %s", KindDict)
	}
	if got := Kind(200).String(); got != "Kind(200)" {
		t.Errorf("Expected Kind(200), got %s", got)
	}
}

func TestWordsFor(t *testing.T) {
	for nbytes, want := range map[int]int{0: 0, 1: 1, 8: 1, 9: 2, 64: 8} {
		if got := wordsFor(nbytes); got != want {
			t.Errorf("wordsFor(%d) = %d, want %d", nbytes, got, want)
		}
	}
}
