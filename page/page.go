// Package page turns a stream of tokens (see xmltok) into pages of spans
// of glyphs: the raw positioned-text model the reflow package later groups
// into lines and paragraphs.
package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/TamirEvan/extract/geom"
	"github.com/TamirEvan/extract/xmltok"
	"github.com/benoitkugler/textlayout/fonts"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'extract.page'
func tracer() tracing.Trace {
	return tracing.Select("extract.page")
}

// Glyph is one positioned character, immutable once written.
type Glyph struct {
	PreX, PreY float64 // coordinates before the span's CTM is applied
	X, Y       float64 // coordinates after the span's CTM is applied
	ID         fonts.GID
	Ucs        rune
	Adv        float64
}

// Span is an ordered, non-empty run of glyphs sharing a transform, font and
// style. Chars must remain non-empty through the line and paragraph stages.
type Span struct {
	Chars    []Glyph
	CTM, TRM geom.Matrix
	FontName string
	Bold     bool
	Italic   bool
	WMode    int // 0 horizontal, 1 vertical
}

// FontSize is expansion(TRM) * expansion(CTM), the size used for styling
// comparisons once rounded to two decimals by callers.
func (s *Span) FontSize() float64 {
	return s.TRM.Expansion() * s.CTM.Expansion()
}

// Page is an ordered list of spans belonging to one source page.
type Page struct {
	Spans []*Span
}

// Document is an ordered list of pages.
type Document struct {
	Pages []*Page
}

func (p *Page) appendSpan() *Span {
	s := &Span{}
	p.Spans = append(p.Spans, s)
	return s
}

// Load reads one Document's worth of <page>...</page> blocks from r,
// applying autosplit when the autosplit argument is true (see
// config.Option.Autosplit) and the per-glyph span-end cleanup.
func Load(r io.Reader, autosplit bool) (*Document, error) {
	tr := xmltok.NewReader(r)
	doc := &Document{}

	for {
		tag, err := tr.Next()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, err
		}
		if tag.Name == "?xml" {
			continue
		}
		if tag.Name != "page" {
			return nil, &xmltok.ParseError{Tag: tag.Name, Offset: tag.Offset, Msg: "expected <page>"}
		}
		pg := &Page{}
		if err := loadPage(tr, pg, autosplit); err != nil {
			return nil, err
		}
		tracer().Debugf("loaded page %d with %d spans", len(doc.Pages), len(pg.Spans))
		doc.Pages = append(doc.Pages, pg)
	}
}

func loadPage(tr *xmltok.Reader, pg *Page, autosplit bool) error {
	for {
		tag, err := tr.Next()
		if err != nil {
			return err
		}
		switch {
		case tag.Name == "/page":
			return nil
		case tag.Name == "image":
			if err := skipImage(tr, tag); err != nil {
				return err
			}
		case tag.Name == "span":
			if err := loadSpan(tr, pg, tag, autosplit); err != nil {
				return err
			}
		default:
			return &xmltok.ParseError{Tag: tag.Name, Offset: tag.Offset, Msg: "expected <span> or <image>"}
		}
	}
}

func loadSpan(tr *xmltok.Reader, pg *Page, tag xmltok.Tag, autosplit bool) error {
	ctm, err := tag.Matrix("ctm")
	if err != nil {
		return err
	}
	trm, err := tag.Matrix("trm")
	if err != nil {
		return err
	}
	fontName, err := tag.Require("font_name")
	if err != nil {
		return err
	}
	if i := strings.IndexByte(fontName, '+'); i >= 0 {
		fontName = fontName[i+1:]
	}
	wmode, err := tag.Int("wmode")
	if err != nil {
		return err
	}

	span := pg.appendSpan()
	span.CTM = ctm
	span.TRM = trm
	span.FontName = fontName
	span.Bold = strings.Contains(fontName, "-Bold")
	span.Italic = strings.Contains(fontName, "-Oblique")
	span.WMode = wmode

	var offsetX, offsetY float64

	for {
		ctag, err := tr.Next()
		if err != nil {
			return err
		}
		if ctag.Name == "/span" {
			return nil
		}
		if ctag.Name != "char" {
			return &xmltok.ParseError{Tag: ctag.Name, Offset: ctag.Offset, Msg: "expected <char> or </span>"}
		}

		preX, err := ctag.Float("x")
		if err != nil {
			return err
		}
		preY, err := ctag.Float("y")
		if err != nil {
			return err
		}

		if autosplit && preY-offsetY != 0 {
			e := span.CTM.E + span.CTM.A*(preX-offsetX) + span.CTM.B*(preY-offsetY)
			f := span.CTM.F + span.CTM.C*(preX-offsetX) + span.CTM.D*(preY-offsetY)
			offsetX, offsetY = preX, preY
			if len(span.Chars) > 0 {
				next := pg.appendSpan()
				*next = *span
				next.Chars = nil
				span = next
			}
			span.CTM.E, span.CTM.F = e, f
		}

		g := Glyph{PreX: preX - offsetX, PreY: preY - offsetY}
		g.X = span.CTM.A*g.PreX + span.CTM.B*g.PreY
		g.Y = span.CTM.C*g.PreX + span.CTM.D*g.PreY

		adv, err := ctag.Float("adv")
		if err != nil {
			return err
		}
		g.Adv = adv

		ucs, err := ctag.Uint("ucs")
		if err != nil {
			return err
		}
		g.Ucs = rune(ucs)

		g.X += span.CTM.E
		g.Y += span.CTM.F

		span.Chars = append(span.Chars, g)

		newSpan, err := spanEndClean(pg, span)
		if err != nil {
			return err
		}
		span = newSpan
	}
}

// spanEndClean inspects the two trailing glyphs of the span a glyph was
// just appended to, and either leaves it unchanged, drops a spurious space
// in the last-but-one position, or splits the final glyph into a new span.
// It returns the span subsequent glyphs should be appended to.
func spanEndClean(pg *Page, span *Span) (*Span, error) {
	n := len(span.Chars)
	if n < 2 {
		return span, nil
	}

	fontSize := span.FontSize()
	dir := geom.Point{X: 1}
	if span.WMode != 0 {
		dir = geom.Point{Y: 1}
	}
	dir = span.TRM.TransformVector(dir)

	prev := span.Chars[n-2]
	cur := span.Chars[n-1]

	expectedX := prev.PreX + prev.Adv*dir.X
	expectedY := prev.PreY + prev.Adv*dir.Y
	errX := (cur.PreX - expectedX) / fontSize
	errY := (cur.PreY - expectedY) / fontSize

	if prev.Ucs == ' ' {
		remove := false
		if errX < -prev.Adv/2 && errX > -prev.Adv {
			remove = true
		}
		if (cur.PreX-prev.PreX)/fontSize < cur.Adv/10 {
			remove = true
		}
		if remove {
			span.Chars[n-2] = span.Chars[n-1]
			span.Chars = span.Chars[:n-1]
			return span, nil
		}
	}

	if absf(errX) > 0.01 || absf(errY) > 0.01 {
		tracer().Debugf("splitting span at glyph %q, err=(%f,%f)", cur.Ucs, errX, errY)
		next := pg.appendSpan()
		*next = *span
		next.Chars = []Glyph{cur}
		span.Chars = span.Chars[:n-1]
		return next, nil
	}
	return span, nil
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// skipImage consumes an <image>...</image> block without reifying it into
// glyph data. Pixmap images carry h <line y=i></line> pairs with
// monotonically increasing y; other subtypes carry a hex-encoded payload of
// datasize bytes in the tag's trailing text.
func skipImage(tr *xmltok.Reader, tag xmltok.Tag) error {
	subtype, err := tag.Require("subtype")
	if err != nil {
		return err
	}

	if subtype == "pixmap" {
		h, err := tag.Int("h")
		if err != nil {
			return err
		}
		for y := 0; y < h; y++ {
			lineTag, err := tr.Next()
			if err != nil {
				return err
			}
			if lineTag.Name != "line" {
				return &xmltok.ParseError{Tag: lineTag.Name, Offset: lineTag.Offset, Msg: "expected <line>"}
			}
			yy, err := lineTag.Int("y")
			if err != nil {
				return err
			}
			if yy != y {
				return &xmltok.ParseError{Tag: lineTag.Name, Offset: lineTag.Offset, Msg: fmt.Sprintf("expected <line y=%d>, found y=%d", y, yy)}
			}
			closeTag, err := tr.Next()
			if err != nil {
				return err
			}
			if closeTag.Name != "/line" {
				return &xmltok.ParseError{Tag: closeTag.Name, Offset: closeTag.Offset, Msg: "expected </line>"}
			}
		}
	} else {
		datasize, err := tag.Uint("datasize")
		if err != nil {
			return err
		}
		if err := validateHex(tag, datasize); err != nil {
			return err
		}
	}

	closeTag, err := tr.Next()
	if err != nil {
		return err
	}
	if closeTag.Name != "/image" {
		return &xmltok.ParseError{Tag: closeTag.Name, Offset: closeTag.Offset, Msg: "expected </image>"}
	}
	return nil
}

func validateHex(tag xmltok.Tag, datasize uint64) error {
	isHex := func(c byte) bool {
		return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
	}
	text := tag.Text
	var consumed uint64
	i := 0
	for consumed < datasize {
		if i >= len(text) {
			return &xmltok.ParseError{Tag: tag.Name, Offset: tag.Offset, Msg: "image data shorter than declared datasize"}
		}
		c := text[i]
		if c == ' ' || c == '\n' {
			i++
			continue
		}
		if !isHex(c) || i+1 >= len(text) || !isHex(text[i+1]) {
			return &xmltok.ParseError{Tag: tag.Name, Offset: tag.Offset, Msg: "unrecognised hex character in image data"}
		}
		i += 2
		consumed++
	}
	return nil
}
