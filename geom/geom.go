// Package geom implements the small set of 2D affine-geometry primitives
// the layout engine needs: points and the six-component transform matrices
// that PDF content streams express CTMs and TRMs with.
package geom

import (
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'extract.geom'
func tracer() tracing.Trace {
	return tracing.Select("extract.geom")
}

// A Point is a two dimensional point or vector.
type Point struct {
	X, Y float64
}

// Add returns the point p+p2.
func (p Point) Add(p2 Point) Point {
	return Point{X: p.X + p2.X, Y: p.Y + p2.Y}
}

// Sub returns the vector p-p2.
func (p Point) Sub(p2 Point) Point {
	return Point{X: p.X - p2.X, Y: p.Y - p2.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Matrix is a 2D affine transform:
//
//	[x']   [A C] [x]   [E]
//	[y'] = [B D] [y] + [F]
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the neutral transform.
var Identity = Matrix{A: 1, D: 1}

// Transform applies m to p, including the translation.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// TransformVector applies only the linear part of m to p (no translation).
func (m Matrix) TransformVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y,
		Y: m.B*p.X + m.D*p.Y,
	}
}

// Expansion returns the uniform scale factor of m, sqrt(|AD-BC|).
func (m Matrix) Expansion() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

// Angle returns the rotation angle of m's linear part, atan2(-C, A).
//
// Only the linear part is considered; callers combining a CTM and a TRM
// must choose which matrix's angle they mean. The join algorithms in
// package reflow always use a span's CTM, never its TRM, for angle
// comparisons -- see the design notes on why the TRM is treated as
// glyph-local and ignored here.
func (m Matrix) Angle() float64 {
	return math.Atan2(-m.C, m.A)
}

// Equal4 reports whether m and o have the same linear part (A,B,C,D),
// ignoring the translation (E,F). This is the comparison join tests use:
// two spans produced from the same text block share a linear part even
// though their glyphs sit at different translated positions.
func (m Matrix) Equal4(o Matrix) bool {
	return m.A == o.A && m.B == o.B && m.C == o.C && m.D == o.D
}

// Inverse returns the inverse of m's linear part (A,B,C,D); the result's
// translation (E,F) is always zero. If m's linear part is singular, the
// identity matrix is returned instead of failing -- callers (the rotation
// box layout) treat a singular CTM as "could not invert, don't rotate the
// bounding box" rather than as a hard error.
func (m Matrix) Inverse() Matrix {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		tracer().Debugf("singular matrix %+v, falling back to identity", m)
		return Identity
	}
	return Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
	}
}

// Offset returns m composed with a translation by p, matching the
// fluent-builder shape used elsewhere for affine transforms (translate,
// then apply further operations).
func (m Matrix) Offset(p Point) Matrix {
	m.E += p.X
	m.F += p.Y
	return m
}

// Sign returns -1, 0 or 1.
func Sign(x float64) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}
