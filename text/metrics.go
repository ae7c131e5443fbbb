// Package text measures wrapped text against frame geometry and computes
// story statistics.
//
// Glyph advances come from Go font family as a stand-in for unknown document
// fonts and first baseline offsets use fixed fractions of font size, so
// results are an approximation good enough to detect overflow, not exact
// typesetting.
package text

import (
	"math"
	"strings"
)

// FirstBaseline rules as named by InDesign.
const (
	AscentOffset    = "AscentOffset"
	CapHeightOffset = "CapHeightOffset"
	XHeightOffset   = "XHeightOffset"
	FixedHeight     = "FixedHeight"
	LeadingOffset   = "LeadingOffset"
	EmboxHeight     = "EmboxHeight"
)

// overflowEpsilon absorbs floating point noise when text fits exactly.
const overflowEpsilon = 1e-6

// Insets of text frame content area.
type Insets struct {
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Right  float64 `json:"right" yaml:"right"`
}

// Frame is text container, all values in pixels.
type Frame struct {
	Width         float64
	Height        float64
	Insets        Insets
	Columns       int
	ColumnGutter  float64
	FirstBaseline string
}

// Format is resolved formatting relevant for measurement.
type Format struct {
	FontFamily string
	FontStyle  string
	// FontSize in pixels.
	FontSize float64
	// LineHeight is ratio to font size.
	LineHeight float64
	// Tracking in thousandths of em.
	Tracking float64
}

// Result of measurement, all values in pixels.
type Result struct {
	Lines         int     `json:"lines" yaml:"lines"`
	LineHeight    float64 `json:"lineHeight" yaml:"lineHeight"`
	FirstBaseline float64 `json:"firstBaseline" yaml:"firstBaseline"`
	TextHeight    float64 `json:"textHeight" yaml:"textHeight"`
	ContentWidth  float64 `json:"contentWidth" yaml:"contentWidth"`
	ContentHeight float64 `json:"contentHeight" yaml:"contentHeight"`
	Overflow      bool    `json:"overflow" yaml:"overflow"`
	OverflowRatio float64 `json:"overflowRatio,omitempty" yaml:"overflowRatio,omitempty"`
}

// FitResult describes font scale down needed to fit text in frame.
type FitResult struct {
	Scale          float64 `json:"scale" yaml:"scale"`
	FontSize       float64 `json:"fontSize" yaml:"fontSize"`
	StillOverflows bool    `json:"stillOverflows" yaml:"stillOverflows"`
	Result         Result  `json:"result" yaml:"result"`
}

// Measurer returns advance width of s in pixels.
type Measurer interface {
	Advance(s string, fontSize float64, fontStyle string) float64
}

// LineHeightPx returns line height in pixels, auto leading when ratio is not
// set.
func LineHeightPx(f Format) float64 {
	ratio := f.LineHeight
	if ratio <= 0 {
		ratio = 1.2
	}
	return ratio * f.FontSize
}

// FirstBaselineOffset returns distance from top of content area to the first
// baseline.
func FirstBaselineOffset(rule string, fontSize, lineHeight float64) float64 {
	switch rule {
	case CapHeightOffset:
		return 0.7 * fontSize
	case XHeightOffset:
		return 0.5 * fontSize
	case FixedHeight, LeadingOffset:
		return lineHeight
	case EmboxHeight:
		return fontSize
	}
	return 0.8 * fontSize
}

// Measure wraps text greedily into frame content area. Explicit line
// breaks are honored, words longer than a line occupy a line of their own.
func Measure(s string, f Format, fr Frame, m Measurer) Result {
	res := Result{LineHeight: LineHeightPx(f)}

	cols := max(fr.Columns, 1)
	width := fr.Width - fr.Insets.Left - fr.Insets.Right - f.Tracking/1000*f.FontSize
	width = (width - float64(cols-1)*fr.ColumnGutter) / float64(cols)
	res.ContentWidth = math.Max(width, 0)
	res.ContentHeight = math.Max(fr.Height-fr.Insets.Top-fr.Insets.Bottom, 0)

	if strings.TrimSpace(s) != "" {
		res.Lines = len(Wrap(s, f, res.ContentWidth, m))
	}
	if res.Lines == 0 {
		return res
	}

	res.FirstBaseline = FirstBaselineOffset(fr.FirstBaseline, f.FontSize, res.LineHeight)
	perColumn := (res.Lines + cols - 1) / cols
	res.TextHeight = res.FirstBaseline + float64(perColumn-1)*res.LineHeight
	res.Overflow = res.TextHeight > res.ContentHeight+overflowEpsilon
	// zero height frame has no ratio, any text overflows it
	if res.ContentHeight > 0 {
		res.OverflowRatio = res.TextHeight / res.ContentHeight
	}
	return res
}

// Fit computes scale down of font size which would make text fit. Scale is
// clamped so font is never reduced by more than maxReduction (0.25 is 25%).
func Fit(s string, f Format, fr Frame, m Measurer, maxReduction float64) FitResult {
	res := Measure(s, f, fr, m)
	if !res.Overflow {
		return FitResult{Scale: 1, FontSize: f.FontSize, Result: res}
	}

	scale := 1 - maxReduction
	if res.OverflowRatio > 0 {
		scale = math.Max(1/res.OverflowRatio, scale)
	}
	scaled := f
	scaled.FontSize = f.FontSize * scale
	after := Measure(s, scaled, fr, m)
	return FitResult{
		Scale:          scale,
		FontSize:       scaled.FontSize,
		StillOverflows: after.Overflow,
		Result:         after,
	}
}

// Wrap breaks text into lines no wider than width where possible.
func Wrap(s string, f Format, width float64, m Measurer) []string {
	var lines []string
	space := m.Advance(" ", f.FontSize, f.FontStyle)
	for para := range strings.SplitSeq(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			// empty paragraph still takes a line
			lines = append(lines, "")
			continue
		}
		var (
			line    strings.Builder
			lineLen float64
		)
		for _, w := range words {
			wl := m.Advance(w, f.FontSize, f.FontStyle)
			if line.Len() > 0 && lineLen+space+wl > width {
				lines = append(lines, line.String())
				line.Reset()
				lineLen = 0
			}
			if line.Len() > 0 {
				line.WriteByte(' ')
				lineLen += space
			}
			line.WriteString(w)
			lineLen += wl
		}
		lines = append(lines, line.String())
	}
	// trailing hard break does not add a line
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
