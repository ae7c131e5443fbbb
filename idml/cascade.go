package idml

import (
	"idmlc/text"
)

// DefaultFontSizePx is used when no layer of the cascade sets point size.
const DefaultFontSizePx = 16

// Formatting is final formatting of a text run. Sizes are in pixels, point
// values are kept for reference.
type Formatting struct {
	FontFamily   string  `json:"fontFamily" yaml:"fontFamily"`
	AppliedFont  string  `json:"appliedFont,omitempty" yaml:"appliedFont,omitempty"`
	FontStyle    string  `json:"fontStyle" yaml:"fontStyle"`
	PointSize    float64 `json:"pointSize" yaml:"pointSize"`
	FontSize     float64 `json:"fontSize" yaml:"fontSize"`
	Leading      Leading `json:"leading" yaml:"leading"`
	LineHeight   float64 `json:"lineHeight" yaml:"lineHeight"`
	LineHeightPx float64 `json:"lineHeightPx" yaml:"lineHeightPx"`

	Alignment       string  `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	LeftIndent      float64 `json:"leftIndent,omitempty" yaml:"leftIndent,omitempty"`
	RightIndent     float64 `json:"rightIndent,omitempty" yaml:"rightIndent,omitempty"`
	FirstLineIndent float64 `json:"firstLineIndent,omitempty" yaml:"firstLineIndent,omitempty"`
	SpaceBefore     float64 `json:"spaceBefore,omitempty" yaml:"spaceBefore,omitempty"`
	SpaceAfter      float64 `json:"spaceAfter,omitempty" yaml:"spaceAfter,omitempty"`
	Tracking        float64 `json:"tracking,omitempty" yaml:"tracking,omitempty"`
	KerningMethod   string  `json:"kerningMethod,omitempty" yaml:"kerningMethod,omitempty"`
	KerningValue    float64 `json:"kerningValue,omitempty" yaml:"kerningValue,omitempty"`
	FillColor       string  `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	StrokeColor     string  `json:"strokeColor,omitempty" yaml:"strokeColor,omitempty"`
	BaselineShift   float64 `json:"baselineShift,omitempty" yaml:"baselineShift,omitempty"`
	Underline       bool    `json:"underline,omitempty" yaml:"underline,omitempty"`
	StrikeThru      bool    `json:"strikeThru,omitempty" yaml:"strikeThru,omitempty"`
	Capitalization  string  `json:"capitalization,omitempty" yaml:"capitalization,omitempty"`
	Position        string  `json:"position,omitempty" yaml:"position,omitempty"`
}

// TextFormat returns formatting in the shape text metrics need.
func (f Formatting) TextFormat() text.Format {
	return text.Format{
		FontFamily: f.FontFamily,
		FontStyle:  f.FontStyle,
		FontSize:   f.FontSize,
		LineHeight: f.LineHeight,
		Tracking:   f.Tracking,
	}
}

// Cascader resolves run formatting from style tables. It only reads its
// inputs, so one instance serves all stories of a document.
type Cascader struct {
	Paragraph map[string]*Style
	Character map[string]*Style
	Fonts     *FontMap
	Conv      Converter
}

// Resolve merges paragraph style, character style and direct formatting in
// this order. Paragraph style alignment is always taken, character style
// never changes alignment, direct formatting overrides everything it sets.
func (c Cascader) Resolve(paraStyle, charStyle string, direct *Style) Formatting {
	var s Style

	if p := c.Paragraph[normalizeStyleRef(ParagraphStyleKind, paraStyle)]; p != nil {
		s.fillFrom(p)
		if p.Alignment != nil {
			a := *p.Alignment
			s.Alignment = &a
		}
	}
	if ch := c.Character[normalizeStyleRef(CharacterStyleKind, charStyle)]; ch != nil {
		alignment := s.Alignment
		s.overrideFrom(ch)
		s.Alignment = alignment
	}
	if direct != nil {
		s.overrideFrom(direct)
	}
	return c.normalize(&s)
}

func (c Cascader) normalize(s *Style) Formatting {
	var f Formatting

	if s.AppliedFont != nil {
		f.AppliedFont = *s.AppliedFont
		f.FontFamily, _ = c.Fonts.Resolve(*s.AppliedFont)
	}
	if f.FontFamily == "" {
		f.FontFamily = c.Fonts.Fallback()
	}
	f.FontStyle = "Regular"
	if s.FontStyle != nil && *s.FontStyle != "" {
		f.FontStyle = *s.FontStyle
	}

	// sizes too large to be measured are treated as unset
	if px := c.Conv.PointsToPixels(deref(s.PointSize)); px > 0 && finiteValues(px*1.2) {
		f.PointSize = *s.PointSize
		f.FontSize = px
	} else {
		f.FontSize = DefaultFontSizePx
		f.PointSize = f.FontSize * 72 / c.Conv.DPI
	}

	raw := ""
	if s.Leading != nil {
		raw = *s.Leading
	}
	f.Leading = ClassifyLeading(raw, f.PointSize)
	f.LineHeight = LineHeightRatio(f.Leading, f.PointSize)
	f.LineHeightPx = f.FontSize * f.LineHeight
	if !finiteValues(f.LineHeightPx) {
		f.Leading = ClassifyLeading("", f.PointSize)
		f.LineHeight = LineHeightRatio(f.Leading, f.PointSize)
		f.LineHeightPx = f.FontSize * f.LineHeight
	}

	f.Alignment = deref(s.Alignment)
	f.LeftIndent = c.px(s.LeftIndent)
	f.RightIndent = c.px(s.RightIndent)
	f.FirstLineIndent = c.px(s.FirstLineIndent)
	f.SpaceBefore = c.px(s.SpaceBefore)
	f.SpaceAfter = c.px(s.SpaceAfter)
	f.BaselineShift = c.px(s.BaselineShift)
	f.Tracking = deref(s.Tracking)
	f.KerningMethod = deref(s.KerningMethod)
	f.KerningValue = deref(s.KerningValue)
	f.FillColor = deref(s.FillColor)
	f.StrokeColor = deref(s.StrokeColor)
	f.Underline = deref(s.Underline)
	f.StrikeThru = deref(s.StrikeThru)
	f.Capitalization = deref(s.Capitalization)
	f.Position = deref(s.Position)
	return f
}

// px converts text measurement, always expressed in points.
func (c Cascader) px(v *float64) float64 {
	if v == nil {
		return 0
	}
	px := c.Conv.PointsToPixels(*v)
	if !finiteValues(px) {
		return 0
	}
	return px
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
