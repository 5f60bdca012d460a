// Package docx turns a page's paragraphs into an OOXML body fragment: a
// run of <w:p> paragraphs, optionally wrapped in rotated text boxes for
// paragraphs whose CTM carries a rotation.
package docx

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'extract.docx'
func tracer() tracing.Trace {
	return tracing.Select("extract.docx")
}

// Buffer is a dynamic, append-only string builder with one non-monotonic
// operation, TruncateIf, used to drop a trailing hyphen written
// optimistically by the paragraph emitter before it knew whether a line
// ended mid-word.
type Buffer struct {
	sb strings.Builder
}

// NewBuffer returns an empty Buffer, growing its internal storage to at
// least capacityHint bytes up front.
func NewBuffer(capacityHint int) *Buffer {
	b := &Buffer{}
	if capacityHint > 0 {
		b.sb.Grow(capacityHint)
	}
	return b
}

// AppendRune appends a single rune.
func (b *Buffer) AppendRune(r rune) {
	b.sb.WriteRune(r)
}

// AppendString appends s verbatim.
func (b *Buffer) AppendString(s string) {
	b.sb.WriteString(s)
}

// Appendf appends a formatted string, in the style of fmt.Fprintf.
func (b *Buffer) Appendf(format string, args ...interface{}) {
	fmt.Fprintf(&b.sb, format, args...)
}

// TruncateIf drops the buffer's trailing rune iff it equals r. It reports
// whether a rune was dropped.
func (b *Buffer) TruncateIf(r rune) bool {
	s := b.sb.String()
	last, size := lastRune(s)
	if size == 0 || last != r {
		return false
	}
	b.sb.Reset()
	b.sb.WriteString(s[:len(s)-size])
	return true
}

// String returns the buffer's contents.
func (b *Buffer) String() string {
	return b.sb.String()
}

func lastRune(s string) (rune, int) {
	if s == "" {
		return 0, 0
	}
	// The content this buffer carries is either ASCII or an XML numeric
	// entity, never a literal multi-byte UTF-8 sequence -- see
	// appendEscaped -- so a one-byte lookback is sufficient here. TruncateIf
	// is only ever called right after writing the per-line text, never mid
	// entity.
	r := rune(s[len(s)-1])
	return r, 1
}
