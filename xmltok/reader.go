// Package xmltok implements a pull-style reader for the pseudo-XML token
// stream produced by the upstream glyph extractor. The grammar is a small,
// fixed subset of XML -- self-closing and paired tags with only string
// attributes -- plus one irregularity encoding/xml cannot express: the
// <image> tag may be followed by a raw run of hex-digit text (compressed
// pixel data) rather than character data subject to entity escaping. That
// irregularity is why this package is a small hand-rolled scanner instead
// of a wrapper around the standard library's XML decoder.
package xmltok

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TamirEvan/extract/geom"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'extract.xmltok'
func tracer() tracing.Trace {
	return tracing.Select("extract.xmltok")
}

// Tag is one parsed token: either an opening tag ("page", "span", ...), a
// closing tag ("/page", "/span", ...), or a self-closing leaf ("char").
// Text holds any raw character data between this tag's '>' and the start
// of the following '<', used only for <image> compressed payloads.
type Tag struct {
	Name  string
	Attrs map[string]string
	Text  string

	// Offset is the byte offset of the tag's opening '<' in the stream,
	// used only for error messages.
	Offset int64
}

// Closing reports whether the tag is a closing tag ("/page", "/span", ...).
func (t Tag) Closing() bool {
	return strings.HasPrefix(t.Name, "/")
}

// ParseError is returned for malformed input: an unparseable attribute, a
// missing required attribute, or an unexpected tag in context.
type ParseError struct {
	Tag    string
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xmltok: tag %q at offset %d: %s", e.Tag, e.Offset, e.Msg)
}

func newParseError(t Tag, format string, args ...interface{}) *ParseError {
	err := &ParseError{Tag: t.Name, Offset: t.Offset, Msg: fmt.Sprintf(format, args...)}
	tracer().Debugf("%s", err.Error())
	return err
}

// Reader pulls successive Tags from an underlying byte stream.
//
// Reader is not safe for concurrent use, and holds no state beyond the
// underlying *bufio.Reader and the current byte offset -- there is no
// package-level scratch buffer, so multiple Readers may run concurrently
// against independent streams (the documented page-partitioning
// parallelism seam).
type Reader struct {
	r      *bufio.Reader
	offset int64
}

// NewReader returns a Reader pulling tokens from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err == nil {
		r.offset++
	}
	return b, err
}

func (r *Reader) unreadByte() {
	_ = r.r.UnreadByte()
	r.offset--
}

// skipUntil consumes bytes up to and including the first occurrence of
// target.
func (r *Reader) skipUntil(target byte) error {
	for {
		b, err := r.readByte()
		if err != nil {
			return err
		}
		if b == target {
			return nil
		}
	}
}

// Next returns the next Tag in the stream. It returns io.EOF (unwrapped)
// when the stream is exhausted between tags.
func (r *Reader) Next() (Tag, error) {
	if err := r.skipUntil('<'); err != nil {
		return Tag{}, err
	}
	start := r.offset - 1

	name, err := r.readName()
	if err != nil {
		return Tag{}, err
	}
	tag := Tag{Name: name, Attrs: map[string]string{}, Offset: start}

	selfClose, err := r.readAttrs(&tag)
	if err != nil {
		return Tag{}, err
	}
	_ = selfClose // self-closing leaves (e.g. <char/>) carry no extra meaning beyond the attrs already read

	text, err := r.readTextUntilNextTag()
	if err != nil && err != io.EOF {
		return Tag{}, err
	}
	tag.Text = text
	return tag, nil
}

// readName reads the tag name: "page", "/page", "?xml", "char", etc.
func (r *Reader) readName() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.readByte()
		if err != nil {
			return "", err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '>' || b == '/' || b == '?' {
			// A leading '/' or '?' (no name read yet) is part of the name
			// itself ("/page", "?xml"); the same byte appearing later is
			// the tag's own terminator (a bare "/>" or "?>" with no
			// attributes in between) and must be left for readAttrs.
			if (b == '/' || b == '?') && sb.Len() == 0 {
				sb.WriteByte(b)
				continue
			}
			r.unreadByte()
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// readAttrs reads attribute="value" pairs up to '>' or "/>", populating
// tag.Attrs. It reports whether the tag was self-closing.
func (r *Reader) readAttrs(tag *Tag) (bool, error) {
	for {
		if err := r.skipSpaceInTag(); err != nil {
			return false, err
		}
		b, err := r.readByte()
		if err != nil {
			return false, err
		}
		switch b {
		case '>':
			return false, nil
		case '/':
			if err := r.skipUntil('>'); err != nil {
				return false, err
			}
			return true, nil
		case '?':
			// Closes a processing instruction, e.g. "<?xml ... ?>": the '?'
			// is the PI's own terminator, not the start of an attribute.
			next, err := r.readByte()
			if err != nil {
				return false, err
			}
			if next == '>' {
				return true, nil
			}
			r.unreadByte()
			return false, newParseError(*tag, "malformed tag: '?' not followed by '>'")
		default:
			r.unreadByte()
		}
		key, err := r.readAttrName()
		if err != nil {
			return false, err
		}
		if key == "" {
			continue
		}
		if err := r.expect('='); err != nil {
			return false, newParseError(*tag, "malformed attribute %q: %s", key, err)
		}
		val, err := r.readQuotedValue()
		if err != nil {
			return false, newParseError(*tag, "malformed attribute %q: %s", key, err)
		}
		tag.Attrs[key] = val
	}
}

func (r *Reader) skipSpaceInTag() error {
	for {
		b, err := r.readByte()
		if err != nil {
			return err
		}
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			r.unreadByte()
			return nil
		}
	}
}

func (r *Reader) readAttrName() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.readByte()
		if err != nil {
			return "", err
		}
		if b == '=' || b == ' ' || b == '>' || b == '/' {
			r.unreadByte()
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

func (r *Reader) expect(want byte) error {
	b, err := r.readByte()
	if err != nil {
		return err
	}
	if b != want {
		return fmt.Errorf("expected %q, got %q", want, b)
	}
	return nil
}

func (r *Reader) readQuotedValue() (string, error) {
	quote, err := r.readByte()
	if err != nil {
		return "", err
	}
	if quote != '"' && quote != '\'' {
		return "", fmt.Errorf("expected quote, got %q", quote)
	}
	var sb strings.Builder
	for {
		b, err := r.readByte()
		if err != nil {
			return "", err
		}
		if b == quote {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// readTextUntilNextTag reads raw bytes up to (not including) the next '<',
// used for <image> compressed-data payloads. It peeks rather than consumes
// the following '<' so the next call to Next can find it.
func (r *Reader) readTextUntilNextTag() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.readByte()
		if err != nil {
			return sb.String(), err
		}
		if b == '<' {
			r.unreadByte()
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// Find returns the named attribute and whether it was present.
func (t Tag) Find(name string) (string, bool) {
	v, ok := t.Attrs[name]
	return v, ok
}

// Require returns the named attribute, or a *ParseError if absent.
func (t Tag) Require(name string) (string, error) {
	v, ok := t.Attrs[name]
	if !ok {
		return "", newParseError(t, "missing required attribute %q", name)
	}
	return v, nil
}

// Int coerces the named attribute to an int.
func (t Tag) Int(name string) (int, error) {
	s, err := t.Require(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, newParseError(t, "attribute %q is not an integer: %s", name, s)
	}
	return n, nil
}

// Uint coerces the named attribute to a uint.
func (t Tag) Uint(name string) (uint64, error) {
	s, err := t.Require(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, newParseError(t, "attribute %q is not an unsigned integer: %s", name, s)
	}
	return n, nil
}

// Float coerces the named attribute to a float64.
func (t Tag) Float(name string) (float64, error) {
	s, err := t.Require(name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, newParseError(t, "attribute %q is not a number: %s", name, s)
	}
	return f, nil
}

// Matrix coerces the named attribute, a space-separated run of six floats
// "A B C D E F", into a geom.Matrix.
func (t Tag) Matrix(name string) (geom.Matrix, error) {
	s, err := t.Require(name)
	if err != nil {
		return geom.Matrix{}, err
	}
	fields := strings.Fields(s)
	if len(fields) != 6 {
		return geom.Matrix{}, newParseError(t, "attribute %q is not a 6-component matrix: %s", name, s)
	}
	var vals [6]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geom.Matrix{}, newParseError(t, "attribute %q has a malformed component %q", name, f)
		}
		vals[i] = v
	}
	return geom.Matrix{A: vals[0], B: vals[1], C: vals[2], D: vals[3], E: vals[4], F: vals[5]}, nil
}
