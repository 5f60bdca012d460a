package reflow

import (
	"math"
	"sort"

	"github.com/TamirEvan/extract/geom"
	"github.com/TamirEvan/extract/page"
	"golang.org/x/exp/slices"
)

// Paragraph is an ordered run of lines sharing an angle and lying close
// enough, perpendicular to that angle, to belong to the same block of text.
type Paragraph struct {
	Lines []*Line
}

func (p *Paragraph) firstLine() *Line { return p.Lines[0] }
func (p *Paragraph) lastLine() *Line  { return p.Lines[len(p.Lines)-1] }

func lineAngle(l *Line) float64 { return spanAngle(l.firstSpan()) }

// lineFontSizeMax returns the largest TRM expansion (font size) among the
// spans making up a line.
func lineFontSizeMax(l *Line) float64 {
	var max float64
	for _, s := range l.Spans {
		if sz := s.TRM.Expansion(); sz > max {
			max = sz
		}
	}
	return max
}

// lineDistance returns the signed perpendicular distance from point (ax,ay)
// to the line through (bx,by) at the given angle: positive means b lies
// ahead of a along that angle's forward-perpendicular direction.
func lineDistance(ax, ay, bx, by, angle float64) float64 {
	dx := bx - ax
	dy := by - ay
	return dx*math.Sin(angle) + dy*math.Cos(angle)
}

// BuildParagraphs greedily joins lines sharing an angle and lying close
// together into paragraphs, then sorts the result into reading order.
func BuildParagraphs(lines []*Line) []*Paragraph {
	paragraphs := make([]*Paragraph, len(lines))
	for i, l := range lines {
		paragraphs[i] = &Paragraph{Lines: []*Line{l}}
	}

	for a := 0; a < len(paragraphs); a++ {
		paraA := paragraphs[a]
		if paraA == nil {
			continue
		}
		lineA := paraA.lastLine()
		angleA := lineAngle(lineA)

		nearestB := -1
		nearestDistance := -1.0

		for b := 0; b < len(paragraphs); b++ {
			paraB := paragraphs[b]
			if b == a || paraB == nil {
				continue
			}
			lineB := paraB.firstLine()
			if !linesCompatible(lineA, lineB, angleA) {
				continue
			}

			aLast := lastGlyph(lineA.lastSpan())
			bFirst := firstGlyph(lineB.firstSpan())
			distance := lineDistance(aLast.X, aLast.Y, bFirst.X, bFirst.Y, angleA)
			if distance > 0 && (nearestDistance == -1 || distance < nearestDistance) {
				nearestDistance = distance
				nearestB = b
			}
		}

		if nearestB == -1 {
			continue
		}
		b := nearestB
		paraB := paragraphs[b]
		lineB := paraB.firstLine()

		if nearestDistance < 1.5*lineFontSizeMax(lineB) {
			joinParagraphLines(lineA, lineB)

			paraA.Lines = append(paraA.Lines, paraB.Lines...)
			paragraphs[b] = nil

			if b > a {
				a--
			}
		}
	}

	result := compactParagraphs(paragraphs)
	sort.SliceStable(result, func(i, j int) bool {
		return paragraphsLess(result[i], result[j])
	})
	tracer().Debugf("turned %d lines into %d paragraphs", len(lines), len(result))
	return result
}

// joinParagraphLines prepares the boundary between two lines about to be
// merged into the same paragraph: a trailing hyphen on lineA is dropped,
// otherwise a synthetic space glyph is appended with an extrapolated
// position following the preceding glyph's advance.
func joinParagraphLines(lineA, lineB *Line) {
	spanA := lineA.lastSpan()
	last := lastGlyph(spanA)
	if last.Ucs == '-' {
		spanA.Chars = spanA.Chars[:len(spanA.Chars)-1]
		return
	}

	spanA.Chars = append(spanA.Chars, page.Glyph{Ucs: ' '})
	n := len(spanA.Chars)
	prev := spanA.Chars[n-2]
	cur := &spanA.Chars[n-1]
	cur.X = prev.X + prev.Adv*spanA.CTM.A
	cur.Y = prev.Y + prev.Adv*spanA.CTM.C
}

func compactParagraphs(paragraphs []*Paragraph) []*Paragraph {
	return slices.DeleteFunc(paragraphs, func(p *Paragraph) bool { return p == nil })
}

// paragraphsLess implements the final reading-order comparator: paragraphs
// are ordered first by the four-component CTM sign order of their first
// line's first span, then -- for paragraphs sharing a CTM -- by the
// perpendicular distance along their mean angle, giving up (treating them
// as equal) once the lines diverge by more than 90 degrees.
func paragraphsLess(a, b *Paragraph) bool {
	aSpan := a.firstLine().firstSpan()
	bSpan := b.firstLine().firstSpan()

	if d := matrixSign4(aSpan.CTM, bSpan.CTM); d != 0 {
		return d < 0
	}

	aAngle := lineAngle(a.firstLine())
	bAngle := lineAngle(b.firstLine())
	if math.Abs(aAngle-bAngle) > math.Pi/2 {
		return false
	}
	angle := (aAngle + bAngle) / 2

	aFirst := firstGlyph(a.firstLine().firstSpan())
	bFirst := firstGlyph(b.firstLine().firstSpan())
	distance := lineDistance(aFirst.X, aFirst.Y, bFirst.X, bFirst.Y, angle)
	return distance > 0
}

// matrixSign4 compares the (A,B,C,D) components of two matrices in order,
// returning the sign of the first nonzero difference.
func matrixSign4(a, b geom.Matrix) int {
	if s := geom.Sign(a.A - b.A); s != 0 {
		return s
	}
	if s := geom.Sign(a.B - b.B); s != 0 {
		return s
	}
	if s := geom.Sign(a.C - b.C); s != 0 {
		return s
	}
	return geom.Sign(a.D - b.D)
}
