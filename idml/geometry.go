package idml

import (
	"math"

	"idmlc/idml/xmltree"
)

// Bounds is axis aligned box in item coordinate space. Width and Height are
// always derived from edges.
type Bounds struct {
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Right  float64 `json:"right" yaml:"right"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	ConvertedToPixels bool `json:"convertedToPixels,omitempty" yaml:"convertedToPixels,omitempty"`
	OffsetApplied     bool `json:"offsetApplied,omitempty" yaml:"offsetApplied,omitempty"`
}

// NewBounds makes bounds from edges swapping inverted ones, so width and
// height are never negative.
func NewBounds(top, left, bottom, right float64) Bounds {
	if bottom < top {
		top, bottom = bottom, top
	}
	if right < left {
		left, right = right, left
	}
	b := Bounds{Top: top, Left: left, Bottom: bottom, Right: right}
	b.derive()
	return b
}

// ParseBounds reads "top left bottom right" geometry string.
func ParseBounds(s string) (Bounds, bool) {
	v, ok := xmltree.ParseBounds(s)
	if !ok {
		return Bounds{}, false
	}
	return NewBounds(v[0], v[1], v[2], v[3]), true
}

func (b *Bounds) derive() {
	b.Width = b.Right - b.Left
	b.Height = b.Bottom - b.Top
}

// Valid reports non-empty box.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Center returns box center.
func (b Bounds) Center() (float64, float64) {
	return b.Left + b.Width/2, b.Top + b.Height/2
}

// Translate moves box keeping its size.
func (b *Bounds) Translate(dx, dy float64) {
	b.Left += dx
	b.Right += dx
	b.Top += dy
	b.Bottom += dy
	b.derive()
}

func (b *Bounds) scale(k float64) {
	b.Top *= k
	b.Left *= k
	b.Bottom *= k
	b.Right *= k
	b.derive()
}

// Transform is affine matrix mapping item coordinates to parent
// coordinates: x' = A*x + C*y + TX, y' = B*x + D*y + TY.
type Transform struct {
	A  float64 `json:"a" yaml:"a"`
	B  float64 `json:"b" yaml:"b"`
	C  float64 `json:"c" yaml:"c"`
	D  float64 `json:"d" yaml:"d"`
	TX float64 `json:"tx" yaml:"tx"`
	TY float64 `json:"ty" yaml:"ty"`

	ConvertedToPixels bool `json:"convertedToPixels,omitempty" yaml:"convertedToPixels,omitempty"`
}

// Identity returns identity transform.
func Identity() Transform {
	return Transform{A: 1, D: 1}
}

// ParseTransform reads "a b c d tx ty" matrix string.
func ParseTransform(s string) (Transform, bool) {
	m, ok := xmltree.ParseTransform(s)
	if !ok {
		return Identity(), false
	}
	return Transform{A: m[0], B: m[1], C: m[2], D: m[3], TX: m[4], TY: m[5]}, true
}

// Rotation returns rotation angle in degrees derived from the matrix.
func (t Transform) Rotation() float64 {
	deg := math.Atan2(t.B, t.A) * 180 / math.Pi
	// avoid -0 in output
	if deg == 0 {
		return 0
	}
	return deg
}

// Apply maps point to parent space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.C*y + t.TX, t.B*x + t.D*y + t.TY
}

// Then returns transform applying t first and then outer.
func (t Transform) Then(outer Transform) Transform {
	return Transform{
		A:  outer.A*t.A + outer.C*t.B,
		B:  outer.B*t.A + outer.D*t.B,
		C:  outer.A*t.C + outer.C*t.D,
		D:  outer.B*t.C + outer.D*t.D,
		TX: outer.A*t.TX + outer.C*t.TY + outer.TX,
		TY: outer.B*t.TX + outer.D*t.TY + outer.TY,
	}
}

// ApplyBounds returns axis aligned box enclosing transformed corners of b.
func (t Transform) ApplyBounds(b Bounds) Bounds {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = t.Apply(b.Left, b.Top)
	xs[1], ys[1] = t.Apply(b.Right, b.Top)
	xs[2], ys[2] = t.Apply(b.Left, b.Bottom)
	xs[3], ys[3] = t.Apply(b.Right, b.Bottom)
	minX, maxX, minY, maxY := xs[0], xs[0], ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	return NewBounds(minY, minX, maxY, maxX)
}

// Point is position on a page or spread.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}
