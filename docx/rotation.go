package docx

import (
	"math"

	"github.com/TamirEvan/extract/geom"
	"github.com/TamirEvan/extract/reflow"
)

// emitRotationAware groups consecutive paragraphs sharing the same
// rotation angle into a single rotated text box, and emits every other
// paragraph directly.
func emitRotationAware(buf *Buffer, state *runState, paragraphs []*reflow.Paragraph, spacing bool) {
	textBoxID := 0

	for p := 0; p < len(paragraphs); p++ {
		para := paragraphs[p]
		maybeSpace(buf, state, para, spacing)

		ctm := para.Lines[0].Spans[0].CTM
		rotate := math.Atan2(ctm.B, ctm.A)
		if rotate == 0 {
			emitParagraph(buf, state, para)
			continue
		}

		textBoxID++
		p1, extent := rotationGroupExtent(paragraphs, p, rotate)
		emitTextBox(buf, state, paragraphs[p:p1], ctm, rotate, extent, textBoxID)
		p = p1 - 1
	}
}

// rotationGroupExtent finds the run of consecutive paragraphs starting at
// p0 sharing the same rotation angle, and the maximum extent (in
// pre-rotation units, relative to the run's origin) their glyphs occupy.
func rotationGroupExtent(paragraphs []*reflow.Paragraph, p0 int, rotate float64) (int, geom.Point) {
	ctm := paragraphs[p0].Lines[0].Spans[0].CTM
	origin := paragraphs[p0].Lines[0].Spans[0].Chars[0]
	originPt := geom.Point{X: origin.X, Y: origin.Y}
	ctmInverse := ctm.Inverse()

	var extent geom.Point
	p := p0
	for ; p < len(paragraphs); p++ {
		para := paragraphs[p]
		pctm := para.Lines[0].Spans[0].CTM
		if math.Atan2(pctm.B, pctm.A) != rotate {
			break
		}
		for _, line := range para.Lines {
			span := line.Spans[len(line.Spans)-1]
			g := span.Chars[len(span.Chars)-1]
			adv := g.Adv * span.TRM.Expansion()
			x := g.X + adv*math.Cos(rotate)
			y := g.Y + adv*math.Sin(rotate)

			d := geom.Point{X: x, Y: y}.Sub(originPt)
			xx := ctmInverse.A*d.X + ctmInverse.B*d.Y
			yy := -(ctmInverse.C*d.X + ctmInverse.D*d.Y)
			if xx > extent.X {
				extent.X = xx
			}
			if yy > extent.Y {
				extent.Y = yy
			}
		}
	}
	return p, extent
}

// emitTextBox writes one rotated <w:drawing> anchor containing the given
// paragraphs, plus a duplicate legacy VML <mc:Fallback> rendering for
// readers that don't support DrawingML text boxes.
func emitTextBox(buf *Buffer, state *runState, paragraphs []*reflow.Paragraph, ctm geom.Matrix, rotate float64, extent geom.Point, textBoxID int) {
	rot := int(rotate * 180 / math.Pi * 60000)

	x := int(ctm.E * pointToEMU)
	y := int(ctm.F * pointToEMU)
	w := int(extent.X * pointToEMU)
	h := int(extent.Y*pointToEMU) * 2 // over-tall: Word can't predict the rotated text's real extent

	dx := int(float64(w)/2*(1-math.Cos(rotate)) + float64(h)/2*math.Sin(rotate))
	dy := int(float64(h)/2*(math.Cos(rotate)-1) + float64(w)/2*math.Sin(rotate))
	x -= dx
	y += dy

	buf.AppendString("\n<w:p>\n  <w:r>\n    <mc:AlternateContent>\n      <mc:Choice Requires=\"wps\">\n        <w:drawing>\n")
	buf.Appendf("          <wp:anchor distT=\"0\" distB=\"0\" distL=\"0\" distR=\"0\" simplePos=\"0\" relativeHeight=\"0\" behindDoc=\"0\" locked=\"0\" layoutInCell=\"1\" allowOverlap=\"1\">\n")
	buf.AppendString("            <wp:simplePos x=\"0\" y=\"0\"/>\n")
	buf.AppendString("            <wp:positionH relativeFrom=\"page\">\n")
	buf.Appendf("              <wp:posOffset>%d</wp:posOffset>\n", x)
	buf.AppendString("            </wp:positionH>\n")
	buf.AppendString("            <wp:positionV relativeFrom=\"page\">\n")
	buf.Appendf("              <wp:posOffset>%d</wp:posOffset>\n", y)
	buf.AppendString("            </wp:positionV>\n")
	buf.Appendf("            <wp:extent cx=\"%d\" cy=\"%d\"/>\n", w, h)
	buf.AppendString("            <wp:wrapNone/>\n")
	buf.Appendf("            <wp:docPr id=\"%d\" name=\"Text Box %d\"/>\n", textBoxID, textBoxID)
	buf.AppendString("            <wp:cNvGraphicFramePr/>\n")
	buf.AppendString("            <a:graphic xmlns:a=\"http://schemas.openxmlformats.org/drawingml/2006/main\">\n")
	buf.AppendString("              <a:graphicData uri=\"http://schemas.microsoft.com/office/word/2010/wordprocessingShape\">\n")
	buf.AppendString("                <wps:wsp>\n                  <wps:cNvSpPr txBox=\"1\"/>\n                  <wps:spPr>\n")
	buf.Appendf("                    <a:xfrm rot=\"%d\">\n", rot)
	buf.AppendString("                      <a:off x=\"0\" y=\"0\"/>\n")
	buf.Appendf("                      <a:ext cx=\"%d\" cy=\"%d\"/>\n", w, h)
	buf.AppendString("                    </a:xfrm>\n                    <a:prstGeom prst=\"rect\"><a:avLst/></a:prstGeom>\n")
	buf.AppendString("                  </wps:spPr>\n                  <wps:txbx>\n                    <w:txbxContent>")

	for _, p := range paragraphs {
		emitParagraph(buf, state, p)
	}

	buf.AppendString("\n                    </w:txbxContent>\n                  </wps:txbx>\n")
	buf.AppendString("                  <wps:bodyPr rot=\"0\" vert=\"horz\" wrap=\"square\" anchor=\"t\">\n")
	buf.AppendString("                    <a:prstTxWarp prst=\"textNoShape\"><a:avLst/></a:prstTxWarp>\n                    <a:noAutofit/>\n")
	buf.AppendString("                  </wps:bodyPr>\n                </wps:wsp>\n              </a:graphicData>\n            </a:graphic>\n          </wp:anchor>\n        </w:drawing>\n      </mc:Choice>\n")

	// Legacy VML fallback for readers without DrawingML text-box support.
	buf.AppendString("      <mc:Fallback>\n        <w:pict>\n")
	buf.AppendString("          <v:shapetype id=\"_x0000_t202\" coordsize=\"21600,21600\" o:spt=\"202\" path=\"m,l,21600r21600,l21600,xe\">\n")
	buf.AppendString("            <v:stroke joinstyle=\"miter\"/>\n            <v:path gradientshapeok=\"t\" o:connecttype=\"rect\"/>\n          </v:shapetype>\n")
	buf.Appendf("          <v:shape id=\"Text Box %d\" o:spid=\"_x0000_s1026\" type=\"#_x0000_t202\" fillcolor=\"white [3201]\" strokeweight=\".5pt\">\n", textBoxID)
	buf.AppendString("            <v:textbox>\n              <w:txbxContent>")

	for _, p := range paragraphs {
		emitParagraph(buf, state, p)
	}

	buf.AppendString("\n\n              </w:txbxContent>\n            </v:textbox>\n          </v:shape>\n        </w:pict>\n      </mc:Fallback>\n")
	buf.AppendString("    </mc:AlternateContent>\n  </w:r>\n</w:p>")
}
