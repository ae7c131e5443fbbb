package idml

import (
	"fmt"
	"math"
)

// DefaultMaxPosition is upper bound of sane pixel position.
const DefaultMaxPosition = 100000

func finiteValues(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finite(b Bounds) bool {
	return finiteValues(b.Top, b.Left, b.Bottom, b.Right, b.Width, b.Height)
}

func finiteTransform(t Transform) bool {
	return finiteValues(t.A, t.B, t.C, t.D, t.TX, t.TY)
}

func pixelIdentity() Transform {
	t := Identity()
	t.ConvertedToPixels = true
	return t
}

// orZero replaces value which overflowed during conversion.
func orZero(v *float64) {
	if !finiteValues(*v) {
		*v = 0
	}
}

// checkItem replaces item geometry which did not survive conversion to
// pixels with default box at spread origin, so model values stay finite.
// It reports whether geometry was replaced.
func checkItem(it *PageItem, c Converter, diag *Diagnostics) bool {
	orZero(&it.StrokeWeight)
	if cr := it.Corners; cr != nil {
		orZero(&cr.TopLeft)
		orZero(&cr.TopRight)
		orZero(&cr.BottomLeft)
		orZero(&cr.BottomRight)
	}
	if tf := it.TextFrame; tf != nil {
		orZero(&tf.ColumnGutter)
		orZero(&tf.Insets.Top)
		orZero(&tf.Insets.Left)
		orZero(&tf.Insets.Bottom)
		orZero(&tf.Insets.Right)
	}
	if pc := it.Placed; pc != nil {
		if pc.Bounds != nil && !finite(*pc.Bounds) {
			pc.Bounds = nil
		}
		if !finiteTransform(pc.Transform) {
			pc.Transform = pixelIdentity()
		}
	}
	if finite(it.Bounds) && finiteTransform(it.Transform) && finiteTransform(it.spreadTransform) && finitePoint(position(it)) {
		return false
	}
	it.Bounds = NewBounds(0, 0, defaultItemSize, defaultItemSize)
	c.Bounds(&it.Bounds)
	it.Transform = pixelIdentity()
	it.spreadTransform = pixelIdentity()
	it.GeometrySource = GeometryDefault
	diag.Warn(StageUnits, it.Spread, it.Self, "geometry out of range after conversion to pixels, defaulted")
	return true
}

// checkPage replaces page geometry which did not survive conversion to
// pixels with Letter size page.
func checkPage(p *Page, c Converter, diag *Diagnostics) {
	orZero(&p.Margins.Top)
	orZero(&p.Margins.Bottom)
	orZero(&p.Margins.Left)
	orZero(&p.Margins.Right)
	orZero(&p.Margins.ColumnGutter)
	if finite(p.Bounds) && finiteTransform(p.Transform) {
		return
	}
	p.Bounds = NewBounds(0, 0, c.PointsToPixels(letterHeight), c.PointsToPixels(letterWidth))
	p.Bounds.ConvertedToPixels = true
	p.Transform = pixelIdentity()
	diag.Warn(StageUnits, p.SpreadParent, p.Self, "page geometry out of range after conversion to pixels, using Letter size")
}

func finitePoint(p Point) bool {
	return finiteValues(p.X, p.Y)
}

// position returns final location of item: its bounds origin moved by
// translation of transform to spread space.
func position(it *PageItem) Point {
	return Point{X: it.Bounds.Left + it.spreadTransform.TX, Y: it.Bounds.Top + it.spreadTransform.TY}
}

// ComputeOffset returns shift which moves all items into non-negative
// coordinates. Layout with no negative coordinates is never shifted. When
// strokePadding is set, maximum stroke weight is added to shifted axes so
// strokes stay visible.
func ComputeOffset(items []*PageItem, strokePadding bool) Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxStroke := 0.0
	for _, it := range items {
		p := position(it)
		if !finite(it.Bounds) || !finitePoint(p) {
			continue
		}
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxStroke = math.Max(maxStroke, it.StrokeWeight)
	}

	pad := 0.0
	if strokePadding {
		pad = maxStroke
	}
	var off Point
	if minX < 0 {
		off.X = -minX + pad
	}
	if minY < 0 {
		off.Y = -minY + pad
	}
	return off
}

// ApplyOffset moves bounds of items and pages by offset once, computes final
// item positions and rotation and checks positions are within [0, maxPos).
func ApplyOffset(items []*PageItem, pages []*Page, off Point, maxPos float64, diag *Diagnostics) {
	if maxPos <= 0 {
		maxPos = DefaultMaxPosition
	}
	for _, it := range items {
		if !it.Bounds.OffsetApplied {
			it.Bounds.Translate(off.X, off.Y)
			it.Bounds.OffsetApplied = true
		}
		it.Position = position(it)
		it.Rotation = it.spreadTransform.Rotation()
		if !finite(it.Bounds) || !finitePoint(it.Position) {
			// moving by offset overflowed, item is left at offset origin
			it.Bounds = NewBounds(off.Y, off.X, off.Y+defaultItemSize, off.X+defaultItemSize)
			it.Bounds.ConvertedToPixels, it.Bounds.OffsetApplied = true, true
			it.spreadTransform = pixelIdentity()
			it.Position, it.Rotation = position(it), 0
			it.GeometrySource = GeometryDefault
			diag.Warn(StageUnits, it.Spread, it.Self, "item position overflows after offset, defaulted")
			continue
		}
		if p := it.Position; p.X < 0 || p.Y < 0 || p.X >= maxPos || p.Y >= maxPos {
			diag.Warn(StageUnits, it.Spread, it.Self, fmt.Sprintf("item position (%.2f, %.2f) is out of range", p.X, p.Y))
		}
	}
	for _, p := range pages {
		if !p.Bounds.OffsetApplied {
			p.Bounds.Translate(off.X, off.Y)
			p.Bounds.OffsetApplied = true
		}
		if !finite(p.Bounds) {
			p.Bounds = NewBounds(off.Y, off.X, off.Y, off.X)
			p.Bounds.ConvertedToPixels, p.Bounds.OffsetApplied = true, true
			diag.Warn(StageUnits, p.SpreadParent, p.Self, "page position overflows after offset, collapsed at offset origin")
		}
	}
}
