// ABOUTME: String formatting buffer behind the runtime's % operator
// ABOUTME: Quoting goes through a pluggable one-unit-at-a-time encoder

package mylib

import (
	"strconv"

	"github.com/prateek/gcheap/heap"
)

// UnitEncoder encodes the unit starting at in[0] (one byte, or one UTF-8
// sequence for encoders that decode it), appends the encoding to out and
// returns how many input bytes it consumed (at least one) with the extended
// output. The escaping codecs implement this; the runtime only drives it.
type UnitEncoder interface {
	EncodeUnit(in, out []byte) (int, []byte)
}

// UnitEncoderFunc adapts a function to UnitEncoder.
type UnitEncoderFunc func(in, out []byte) (int, []byte)

// EncodeUnit calls f.
func (f UnitEncoderFunc) EncodeUnit(in, out []byte) (int, []byte) {
	return f(in, out)
}

const hexDigits = "0123456789abcdef"

// ByteEscaper is the fallback encoder: printable ASCII passes through, the
// quote and backslash are escaped, \n \r \t use their short forms and every
// other byte becomes \xNN. It never decodes UTF-8.
type ByteEscaper struct {
	Quote byte
}

// EncodeUnit escapes one byte.
func (e ByteEscaper) EncodeUnit(in, out []byte) (int, []byte) {
	c := in[0]
	switch {
	case c == '\\' || c == e.Quote:
		out = append(out, '\\', c)
	case c == '\n':
		out = append(out, '\\', 'n')
	case c == '\r':
		out = append(out, '\\', 'r')
	case c == '\t':
		out = append(out, '\\', 't')
	case c >= 0x20 && c < 0x7f:
		out = append(out, c)
	default:
		out = append(out, '\\', 'x', hexDigits[c>>4], hexDigits[c&0xf])
	}
	return 1, out
}

// Quote appends in to out surrounded by quote, encoding each unit with enc.
func Quote(enc UnitEncoder, quote byte, in, out []byte) []byte {
	out = append(out, quote)
	for len(in) > 0 {
		n, next := enc.EncodeUnit(in, out)
		if n <= 0 || n > len(in) {
			heap.Fail(ErrInvalidOperation, "encoder consumed %d of %d bytes", n, len(in))
		}
		in, out = in[n:], next
	}
	return append(out, quote)
}

// FormatStringer builds strings for format operations. Its buffer lives
// outside the managed heap and is reused after Reset.
type FormatStringer struct {
	h    *heap.Heap
	enc  UnitEncoder
	data []byte
}

// NewFormatStringer returns an empty formatter quoting with enc; nil
// selects ByteEscaper{'\''}.
func NewFormatStringer(h *heap.Heap, enc UnitEncoder) *FormatStringer {
	if enc == nil {
		enc = ByteEscaper{Quote: '\''}
	}
	return &FormatStringer{h: h, enc: enc}
}

// Reset empties the buffer before reuse.
func (f *FormatStringer) Reset() {
	f.data = f.data[:0]
}

// Len returns the number of buffered bytes.
func (f *FormatStringer) Len() int {
	return len(f.data)
}

// WriteConst appends literal text.
func (f *FormatStringer) WriteConst(s string) {
	f.data = append(f.data, s...)
}

// FormatD appends i in decimal.
func (f *FormatStringer) FormatD(i int) {
	f.data = strconv.AppendInt(f.data, int64(i), 10)
}

// FormatO appends i in octal, two's complement when negative.
func (f *FormatStringer) FormatO(i int) {
	f.data = strconv.AppendUint(f.data, uint64(i), 8)
}

// FormatS appends the bytes of s.
func (f *FormatStringer) FormatS(s Str) {
	f.data = append(f.data, s.view()...)
}

// FormatR appends s quoted with single quotes.
func (f *FormatStringer) FormatR(s Str) {
	f.data = Quote(f.enc, '\'', s.view(), f.data)
}

// Getvalue copies the buffer into a new Str and resets the buffer.
func (f *FormatStringer) Getvalue() Str {
	s := StrFromBytes(f.h, f.data)
	f.Reset()
	return s
}
