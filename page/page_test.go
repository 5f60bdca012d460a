package page

import (
	"strings"
	"testing"

	"github.com/TamirEvan/extract/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSimplePage(t *testing.T) {
	xml := `<page>` +
		`<span ctm="1 0 0 1 0 0" trm="12 0 0 12 0 0" font_name="ABCDEF+Times-Bold" wmode="0">` +
		`<char x="0" y="0" adv="0.5" ucs="72"/>` +
		`<char x="6" y="0" adv="0.5" ucs="105"/>` +
		`</span>` +
		`</page>`

	doc, err := Load(strings.NewReader(xml), false)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	pg := doc.Pages[0]
	require.Len(t, pg.Spans, 1)
	sp := pg.Spans[0]
	assert.Equal(t, "Times-Bold", sp.FontName)
	assert.True(t, sp.Bold)
	assert.False(t, sp.Italic)
	require.Len(t, sp.Chars, 2)
	assert.Equal(t, rune('H'), sp.Chars[0].Ucs)
	assert.Equal(t, rune('i'), sp.Chars[1].Ucs)
}

func TestFontNamePrefixStripped(t *testing.T) {
	xml := `<page><span ctm="1 0 0 1 0 0" trm="1 0 0 1 0 0" font_name="XYZ+Helvetica-Oblique" wmode="0">` +
		`<char x="0" y="0" adv="1" ucs="65"/></span></page>`
	doc, err := Load(strings.NewReader(xml), false)
	require.NoError(t, err)
	sp := doc.Pages[0].Spans[0]
	assert.Equal(t, "Helvetica-Oblique", sp.FontName)
	assert.True(t, sp.Italic)
}

func TestSpanEndCleanDropsSpuriousSpace(t *testing.T) {
	// Two glyphs: a space at x=0 with adv=1, then a glyph overlapping it
	// (pre_x - prev.pre_x)/font_size < cur.adv/10 forces the drop.
	xml := `<page><span ctm="1 0 0 1 0 0" trm="10 0 0 10 0 0" font_name="F" wmode="0">` +
		`<char x="0" y="0" adv="1" ucs="32"/>` +
		`<char x="0.01" y="0" adv="5" ucs="65"/>` +
		`</span></page>`
	doc, err := Load(strings.NewReader(xml), false)
	require.NoError(t, err)
	sp := doc.Pages[0].Spans[0]
	require.Len(t, sp.Chars, 1)
	assert.Equal(t, rune('A'), sp.Chars[0].Ucs)
}

func TestSpanEndCleanSplitsDiscontinuity(t *testing.T) {
	xml := `<page><span ctm="1 0 0 1 0 0" trm="10 0 0 10 0 0" font_name="F" wmode="0">` +
		`<char x="0" y="0" adv="1" ucs="65"/>` +
		`<char x="50" y="0" adv="1" ucs="66"/>` +
		`</span></page>`
	doc, err := Load(strings.NewReader(xml), false)
	require.NoError(t, err)
	require.Len(t, doc.Pages[0].Spans, 2)
	assert.Equal(t, rune('A'), doc.Pages[0].Spans[0].Chars[0].Ucs)
	assert.Equal(t, rune('B'), doc.Pages[0].Spans[1].Chars[0].Ucs)
}

func TestAutosplitOnYOffset(t *testing.T) {
	xml := `<page><span ctm="1 0 0 1 0 0" trm="1 0 0 1 0 0" font_name="F" wmode="0">` +
		`<char x="0" y="0" adv="1" ucs="65"/>` +
		`<char x="0" y="5" adv="1" ucs="66"/>` +
		`</span></page>`
	doc, err := Load(strings.NewReader(xml), true)
	require.NoError(t, err)
	require.Len(t, doc.Pages[0].Spans, 2)
}

func TestSkipImagePixmap(t *testing.T) {
	xml := `<page><image subtype="pixmap" w="2" h="2">` +
		`<line y="0"></line><line y="1"></line>` +
		`</image></page>`
	doc, err := Load(strings.NewReader(xml), false)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Empty(t, doc.Pages[0].Spans)
}

func TestSkipImageCompressed(t *testing.T) {
	xml := `<page><image subtype="jpeg" datasize="2">deadbeef</image></page>`
	doc, err := Load(strings.NewReader(xml), false)
	require.NoError(t, err)
	assert.Empty(t, doc.Pages[0].Spans)
}

func TestSkipImageBadHex(t *testing.T) {
	xml := `<page><image subtype="jpeg" datasize="1">zz</image></page>`
	_, err := Load(strings.NewReader(xml), false)
	require.Error(t, err)
}

func TestFontSize(t *testing.T) {
	sp := &Span{CTM: geom.Matrix{A: 2, D: 2}, TRM: geom.Matrix{A: 3, D: 3}}
	assert.InDelta(t, 6.0, sp.FontSize(), 1e-9)
}
