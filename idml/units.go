package idml

import (
	"strings"
)

// Unit is measurement unit name as used in ViewPreference.
type Unit string

const (
	UnitPoints        Unit = "Points"
	UnitPicas         Unit = "Picas"
	UnitInches        Unit = "Inches"
	UnitInchesDecimal Unit = "InchesDecimal"
	UnitMillimeters   Unit = "Millimeters"
	UnitCentimeters   Unit = "Centimeters"
	UnitCiceros       Unit = "Ciceros"
	UnitAgates        Unit = "Agates"
	UnitPixels        Unit = "Pixels"
)

// pointsPerUnit; InDesign pixel is a point.
var pointsPerUnit = map[Unit]float64{
	UnitPoints:        1,
	UnitPicas:         12,
	UnitInches:        72,
	UnitInchesDecimal: 72,
	UnitMillimeters:   72 / 25.4,
	UnitCentimeters:   72 / 2.54,
	UnitCiceros:       12 * 0.376065 * 72 / 25.4,
	UnitAgates:        72.0 / 14,
	UnitPixels:        1,
}

// DefaultDPI is target resolution when none is configured.
const DefaultDPI = 96

// ParseUnit maps unit name to known unit. InDesign writes some units with
// different spelling in different places ("Inches decimal", "mm").
func ParseUnit(name string) (Unit, bool) {
	n := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	for u := range pointsPerUnit {
		if strings.ToLower(string(u)) == n {
			return u, true
		}
	}
	switch n {
	case "pt", "point":
		return UnitPoints, true
	case "pc", "pica":
		return UnitPicas, true
	case "in", "inch":
		return UnitInches, true
	case "mm", "millimeter":
		return UnitMillimeters, true
	case "cm", "centimeter":
		return UnitCentimeters, true
	case "px", "pixel":
		return UnitPixels, true
	}
	return UnitPoints, false
}

// Converter converts document measurements to pixels. The same converter
// instance, built once from document unit, is passed to every resolver.
type Converter struct {
	Unit Unit
	DPI  float64
}

// NewConverter makes converter, non positive dpi means DefaultDPI.
func NewConverter(unit Unit, dpi float64) Converter {
	if _, ok := pointsPerUnit[unit]; !ok {
		unit = UnitPoints
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return Converter{Unit: unit, DPI: dpi}
}

// ToPoints converts value in document unit to points.
func (c Converter) ToPoints(v float64) float64 {
	return v * pointsPerUnit[c.Unit]
}

// ToPixels converts value in document unit to pixels.
func (c Converter) ToPixels(v float64) float64 {
	return c.ToPoints(v) / 72 * c.DPI
}

// PointsToPixels converts point value (font sizes are always in points).
func (c Converter) PointsToPixels(v float64) float64 {
	return v / 72 * c.DPI
}

func (c Converter) factor() float64 {
	return pointsPerUnit[c.Unit] / 72 * c.DPI
}

// Bounds converts box to pixels once.
func (c Converter) Bounds(b *Bounds) {
	if b == nil || b.ConvertedToPixels {
		return
	}
	b.scale(c.factor())
	b.ConvertedToPixels = true
}

// Transform converts translation to pixels once, matrix coefficients have
// no unit.
func (c Converter) Transform(t *Transform) {
	if t == nil || t.ConvertedToPixels {
		return
	}
	t.TX = c.ToPixels(t.TX)
	t.TY = c.ToPixels(t.TY)
	t.ConvertedToPixels = true
}

// Style fills pixel font size and line height ratio once. Point values are
// never changed, cascade reads them.
func (c Converter) Style(s *Style) {
	if s == nil || s.ConvertedToPixels {
		return
	}
	if s.PointSize != nil {
		if px := c.PointsToPixels(*s.PointSize); finiteValues(px) {
			s.FontSize = &px
		}
		if s.Leading != nil {
			l := ClassifyLeading(*s.Leading, *s.PointSize)
			s.ResolvedLeading = &l
			lh := LineHeightRatio(l, *s.PointSize)
			s.LineHeight = &lh
		}
	}
	s.ConvertedToPixels = true
}

// Item converts item geometry and measurements once.
func (c Converter) Item(it *PageItem) {
	c.Bounds(&it.Bounds)
	c.Transform(&it.Transform)
	c.Transform(&it.spreadTransform)
	if it.Placed != nil {
		c.Bounds(it.Placed.Bounds)
		c.Transform(&it.Placed.Transform)
	}
	if it.ConvertedToPixels {
		return
	}
	it.StrokeWeight = c.ToPixels(it.StrokeWeight)
	if it.Corners != nil {
		it.Corners.TopLeft = c.ToPixels(it.Corners.TopLeft)
		it.Corners.TopRight = c.ToPixels(it.Corners.TopRight)
		it.Corners.BottomLeft = c.ToPixels(it.Corners.BottomLeft)
		it.Corners.BottomRight = c.ToPixels(it.Corners.BottomRight)
	}
	if tf := it.TextFrame; tf != nil {
		tf.ColumnGutter = c.ToPixels(tf.ColumnGutter)
		tf.Insets.Top = c.ToPixels(tf.Insets.Top)
		tf.Insets.Left = c.ToPixels(tf.Insets.Left)
		tf.Insets.Bottom = c.ToPixels(tf.Insets.Bottom)
		tf.Insets.Right = c.ToPixels(tf.Insets.Right)
	}
	it.ConvertedToPixels = true
}

// Page converts page geometry and margins once.
func (c Converter) Page(p *Page) {
	if p.Bounds.ConvertedToPixels {
		return
	}
	c.Bounds(&p.Bounds)
	c.Transform(&p.Transform)
	p.Margins.Top = c.ToPixels(p.Margins.Top)
	p.Margins.Bottom = c.ToPixels(p.Margins.Bottom)
	p.Margins.Left = c.ToPixels(p.Margins.Left)
	p.Margins.Right = c.ToPixels(p.Margins.Right)
	p.Margins.ColumnGutter = c.ToPixels(p.Margins.ColumnGutter)
}
