package docx

import (
	"math"

	"github.com/TamirEvan/extract/geom"
	"github.com/TamirEvan/extract/reflow"
)

// runState threads the current run's styling and the previous paragraph's
// CTM across a page, so the emitter knows when to start a new <w:r> and
// when to insert inter-paragraph spacing.
type runState struct {
	fontName     string
	fontSize     float64
	bold, italic bool
	haveOpenRun  bool
	ctmPrev      *geom.Matrix
}

const pointToEMU = 12700

// fontSize rounds expansion(TRM)*expansion(CTM) to two decimal places, the
// precision run-splitting and comparisons are keyed on.
func fontSize(ctm, trm geom.Matrix) float64 {
	return math.Round(trm.Expansion()*ctm.Expansion()*100) / 100
}

// EmitParagraphs renders a page's paragraphs into an OOXML body fragment.
// When rotation is true, paragraphs whose first span's CTM carries a
// rotation are grouped into rotated text boxes; otherwise all paragraphs
// are emitted as plain <w:p> runs. When spacing is true, an empty
// paragraph is inserted before each paragraph (the first included), with
// an extra one whenever the CTM changes from the previous paragraph's.
func EmitParagraphs(paragraphs []*reflow.Paragraph, spacing, rotation bool, capacityHint int) string {
	buf := NewBuffer(capacityHint)
	state := &runState{}

	if rotation {
		emitRotationAware(buf, state, paragraphs, spacing)
	} else {
		for _, p := range paragraphs {
			maybeSpace(buf, state, p, spacing)
			emitParagraph(buf, state, p)
		}
	}
	return buf.String()
}

func maybeSpace(buf *Buffer, state *runState, p *reflow.Paragraph, spacing bool) {
	if !spacing {
		return
	}
	ctm := &p.Lines[0].Spans[0].CTM
	if state.ctmPrev != nil && !state.ctmPrev.Equal4(*ctm) {
		emitEmptyParagraph(buf)
	}
	emitEmptyParagraph(buf)
	state.ctmPrev = ctm
}

func emitEmptyParagraph(buf *Buffer) {
	buf.AppendString("<w:p/>\n")
}

// emitParagraph writes one paragraph's lines as a single <w:p>, splitting
// runs on (font, bold, italic, size) change and trimming a trailing hyphen
// off each line.
func emitParagraph(buf *Buffer, state *runState, p *reflow.Paragraph) {
	buf.AppendString("<w:p>\n")

	for _, line := range p.Lines {
		for _, span := range line.Spans {
			size := fontSize(span.CTM, span.TRM)
			if !state.haveOpenRun || span.FontName != state.fontName ||
				span.Bold != state.bold || span.Italic != state.italic ||
				size != state.fontSize {
				if state.haveOpenRun {
					finishRun(buf)
				}
				state.fontName = span.FontName
				state.bold = span.Bold
				state.italic = span.Italic
				state.fontSize = size
				state.haveOpenRun = true
				startRun(buf, state.fontName, state.fontSize, state.bold, state.italic)
			}
			for _, g := range span.Chars {
				appendEscaped(buf, g.Ucs)
			}
		}
		buf.TruncateIf('-')
	}

	if state.haveOpenRun {
		finishRun(buf)
		state.haveOpenRun = false
	}
	buf.AppendString("</w:p>\n")
}

func startRun(buf *Buffer, fontName string, size float64, bold, italic bool) {
	buf.AppendString("<w:r><w:rPr>")
	buf.Appendf(`<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, fontName, fontName)
	if bold {
		buf.AppendString("<w:b/>")
	}
	if italic {
		buf.AppendString("<w:i/>")
	}
	buf.Appendf(`<w:sz w:val="%.0f"/><w:szCs w:val="%.0f"/>`, size*2, size*2)
	buf.AppendString(`</w:rPr><w:t xml:space="preserve">`)
}

func finishRun(buf *Buffer) {
	buf.AppendString("</w:t></w:r>")
}

// appendEscaped writes one glyph, expanding ligatures, escaping XML
// entities, emitting printable ASCII verbatim, and falling back to a
// numeric character reference for everything else.
func appendEscaped(buf *Buffer, c rune) {
	switch c {
	case '<':
		buf.AppendString("&lt;")
	case '>':
		buf.AppendString("&gt;")
	case '&':
		buf.AppendString("&amp;")
	case '"':
		buf.AppendString("&quot;")
	case '\'':
		buf.AppendString("&apos;")
	case 0xFB00:
		buf.AppendString("ff")
	case 0xFB01:
		buf.AppendString("fi")
	case 0xFB02:
		buf.AppendString("fl")
	case 0xFB03:
		buf.AppendString("ffi")
	case 0xFB04:
		buf.AppendString("ffl")
	default:
		if c >= 32 && c <= 127 {
			buf.AppendRune(c)
		} else {
			buf.Appendf("&#x%x;", c)
		}
	}
}
