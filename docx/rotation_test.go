package docx

import (
	"math"
	"strings"
	"testing"

	"github.com/TamirEvan/extract/geom"
	"github.com/TamirEvan/extract/page"
	"github.com/TamirEvan/extract/reflow"
	"github.com/stretchr/testify/assert"
)

func rotatedParagraph(angle float64, text string) *reflow.Paragraph {
	ctm := geom.Matrix{A: math.Cos(angle), B: math.Sin(angle), C: -math.Sin(angle), D: math.Cos(angle), E: 100, F: 200}
	trm := geom.Matrix{A: 12, D: 12}
	glyphs := make([]page.Glyph, len(text))
	for i, r := range text {
		glyphs[i] = page.Glyph{X: float64(i) * 6, Y: 0, Ucs: r, Adv: 0.5}
	}
	span := &page.Span{CTM: ctm, TRM: trm, FontName: "Times", Chars: glyphs}
	line := &reflow.Line{Spans: []*page.Span{span}}
	return &reflow.Paragraph{Lines: []*reflow.Line{line}}
}

func TestEmitParagraphsUnrotatedSkipsTextBox(t *testing.T) {
	p := rotatedParagraph(0, "Hi")
	out := EmitParagraphs([]*reflow.Paragraph{p}, false, true, 0)
	assert.NotContains(t, out, "mc:AlternateContent")
}

func TestEmitParagraphsRotatedUsesTextBox(t *testing.T) {
	p := rotatedParagraph(math.Pi/4, "Hi")
	out := EmitParagraphs([]*reflow.Paragraph{p}, false, true, 0)
	assert.Contains(t, out, "mc:AlternateContent")
	assert.Contains(t, out, "mc:Fallback")
	assert.Contains(t, out, "v:shape")
}

func TestEmitParagraphsRotatedGroupsSharedAngle(t *testing.T) {
	p1 := rotatedParagraph(math.Pi/4, "Hi")
	p2 := rotatedParagraph(math.Pi/4, "There")
	out := EmitParagraphs([]*reflow.Paragraph{p1, p2}, false, true, 0)
	assert.Equal(t, 1, strings.Count(out, "<mc:AlternateContent>"))
}
