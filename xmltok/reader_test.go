package xmltok

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderBasicTags(t *testing.T) {
	r := NewReader(strings.NewReader(`<page width="612" height="792"><span ctm="1 0 0 1 0 0"><char ucs="65" x="10"/></span></page>`))

	tag, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "page", tag.Name)
	assert.Equal(t, "612", tag.Attrs["width"])
	assert.False(t, tag.Closing())

	tag, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "span", tag.Name)
	assert.Equal(t, "1 0 0 1 0 0", tag.Attrs["ctm"])

	tag, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "char", tag.Name)
	n, err := tag.Int("ucs")
	require.NoError(t, err)
	assert.Equal(t, 65, n)

	tag, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "/span", tag.Name)
	assert.True(t, tag.Closing())

	tag, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "/page", tag.Name)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderCapturesTrailingText(t *testing.T) {
	r := NewReader(strings.NewReader(`<image subtype="jpeg" datasize="4">deadbeef</image><next/>`))

	tag, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "image", tag.Name)
	assert.Equal(t, "deadbeef", tag.Text)

	tag, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "/image", tag.Name)

	tag, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "next", tag.Name)
}

func TestReaderSingleAndDoubleQuotes(t *testing.T) {
	r := NewReader(strings.NewReader(`<span font='Times-Bold' size="12.5"/>`))
	tag, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "Times-Bold", tag.Attrs["font"])
	f, err := tag.Float("size")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, f, 1e-9)
}

func TestTagRequireMissingAttribute(t *testing.T) {
	tag := Tag{Name: "char", Attrs: map[string]string{}}
	_, err := tag.Require("ucs")
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, "char", perr.Tag)
}

func TestTagIntMalformed(t *testing.T) {
	tag := Tag{Name: "char", Attrs: map[string]string{"ucs": "not-a-number"}}
	_, err := tag.Int("ucs")
	require.Error(t, err)
}

func TestTagMatrix(t *testing.T) {
	tag := Tag{Name: "span", Attrs: map[string]string{"ctm": "1 0 0 1 2.5 -3"}}
	m, err := tag.Matrix("ctm")
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.A)
	assert.Equal(t, 2.5, m.E)
	assert.Equal(t, -3.0, m.F)
}

func TestTagMatrixWrongArity(t *testing.T) {
	tag := Tag{Name: "span", Attrs: map[string]string{"ctm": "1 0 0"}}
	_, err := tag.Matrix("ctm")
	require.Error(t, err)
}

func TestReaderXMLDeclarationWithAttributes(t *testing.T) {
	r := NewReader(strings.NewReader(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><page width="1" height="1"></page>`))

	tag, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "?xml", tag.Name)
	assert.Equal(t, "1.0", tag.Attrs["version"])
	assert.Equal(t, "UTF-8", tag.Attrs["encoding"])
	assert.Equal(t, "yes", tag.Attrs["standalone"])

	tag, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "page", tag.Name)
}

func TestReaderBareXMLDeclaration(t *testing.T) {
	r := NewReader(strings.NewReader(`<?xml?><page></page>`))
	tag, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "?xml", tag.Name)
	assert.Empty(t, tag.Attrs)
}

func TestReaderSelfClosingSpacing(t *testing.T) {
	r := NewReader(strings.NewReader(`<char ucs="97" x="1.0" y="2.0" adv="0.5" />`))
	tag, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "char", tag.Name)
	assert.Equal(t, "1.0", tag.Attrs["x"])
	assert.Equal(t, "0.5", tag.Attrs["adv"])
}
