// Package reflow groups a page's spans into lines sharing a baseline, and
// lines into paragraphs sharing an angle and vertical proximity.
package reflow

import (
	"math"

	"github.com/TamirEvan/extract/page"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/exp/slices"
)

// tracer traces with key 'extract.reflow'
func tracer() tracing.Trace {
	return tracing.Select("extract.reflow")
}

const angleToleranceDeg = 1.0

// Line is an ordered run of spans understood to lie on the same baseline.
// It holds non-owning references into the page's spans -- the Page
// remains the sole owner of the underlying Span values.
type Line struct {
	Spans []*page.Span
}

func (l *Line) firstSpan() *page.Span { return l.Spans[0] }
func (l *Line) lastSpan() *page.Span  { return l.Spans[len(l.Spans)-1] }

func firstGlyph(s *page.Span) page.Glyph { return s.Chars[0] }
func lastGlyph(s *page.Span) page.Glyph  { return s.Chars[len(s.Chars)-1] }

// spanAngle is the rotation angle of a span's CTM, used (rather than the
// TRM's) for every line/paragraph join decision.
func spanAngle(s *page.Span) float64 { return s.CTM.Angle() }

func linesCompatible(a, b *Line, angleA float64) bool {
	if a == b {
		return false
	}
	sa, sb := a.firstSpan(), b.firstSpan()
	if sa.WMode != sb.WMode {
		return false
	}
	if !sa.CTM.Equal4(sb.CTM) {
		return false
	}
	return spanAngle(sb) == angleA
}

// spanAdvTotal returns the total width of span, using the trailing glyph's
// advance (scaled by the TRM's expansion) so a single-glyph span still
// reports a nonzero width.
func spanAdvTotal(s *page.Span) float64 {
	first, last := firstGlyph(s), lastGlyph(s)
	dx := last.X - first.X
	dy := last.Y - first.Y
	adv := last.Adv * s.TRM.Expansion()
	return math.Hypot(dx, dy) + adv
}

// spansAdv returns the distance between glyph a (belonging to span aSpan)
// and glyph b, net of a's own advance.
func spansAdv(aSpan *page.Span, a, b page.Glyph) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	s := math.Hypot(dx, dy)
	return s - a.Adv*aSpan.TRM.Expansion()
}

// BuildLines greedily joins spans sharing a baseline into lines. For each
// line, the nearest compatible, angle-aligned line is appended to it; a
// synthetic space glyph is inserted at the join when the gap between the
// two lines exceeds a quarter of their average glyph advance and neither
// boundary glyph is already a space.
func BuildLines(spans []*page.Span) []*Line {
	lines := make([]*Line, len(spans))
	for i, s := range spans {
		lines[i] = &Line{Spans: []*page.Span{s}}
	}

	for a := 0; a < len(lines); a++ {
		lineA := lines[a]
		if lineA == nil {
			continue
		}
		spanA := lineA.lastSpan()
		angleA := spanAngle(lineA.firstSpan())

		nearestB := -1
		var nearestAdv float64

		for b := 0; b < len(lines); b++ {
			lineB := lines[b]
			if b == a || lineB == nil {
				continue
			}
			if !linesCompatible(lineA, lineB, angleA) {
				continue
			}

			spanBFirst := lineB.firstSpan()
			aLast := lastGlyph(spanA)
			bFirst := firstGlyph(spanBFirst)
			dx := bFirst.X - aLast.X
			dy := bFirst.Y - aLast.Y
			angleAB := math.Atan2(-dy, dx)

			if math.Abs(angleAB-angleA)*180/math.Pi > angleToleranceDeg {
				continue
			}

			adv := spansAdv(spanA, aLast, bFirst)
			if nearestB == -1 || adv < nearestAdv {
				nearestB = b
				nearestAdv = adv
			}
		}

		if nearestB == -1 {
			continue
		}
		b := nearestB
		lineB := lines[b]
		spanBFirst := lineB.firstSpan()

		aLast := lastGlyph(spanA)
		bFirst := firstGlyph(spanBFirst)
		if aLast.Ucs != ' ' && bFirst.Ucs != ' ' {
			averageAdv := (spanAdvTotal(spanA) + spanAdvTotal(spanBFirst)) /
				float64(len(spanA.Chars)+len(spanBFirst.Chars))
			if nearestAdv > 0.25*averageAdv {
				spanA.Chars = append(spanA.Chars, page.Glyph{Ucs: ' ', Adv: nearestAdv})
			}
		}

		lineA.Spans = append(lineA.Spans, lineB.Spans...)
		lines[b] = nil

		if b > a {
			a--
		}
	}

	out := compactLines(lines)
	tracer().Debugf("turned %d spans into %d lines", len(spans), len(out))
	return out
}

func compactLines(lines []*Line) []*Line {
	return slices.DeleteFunc(lines, func(l *Line) bool { return l == nil })
}
