package idml

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"idmlc/idml/xmltree"
)

// StyleKind distinguishes paragraph and character styles.
type StyleKind string

const (
	ParagraphStyleKind StyleKind = "ParagraphStyle"
	CharacterStyleKind StyleKind = "CharacterStyle"
)

// maxBasedOnDepth limits BasedOn chains.
const maxBasedOnDepth = 32

// LeadingType classifies leading value.
type LeadingType string

const (
	LeadingAuto       LeadingType = "auto"
	LeadingAbsolute   LeadingType = "absolute"
	LeadingPercentage LeadingType = "percentage"
)

// Leading is line spacing in points.
type Leading struct {
	Type  LeadingType `json:"type" yaml:"type"`
	Value float64     `json:"value" yaml:"value"`
	Raw   string      `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// ClassifyLeading interprets leading string for given font size in points:
// "auto" is 120% of font size, plain number is absolute, "N%" is percentage
// of font size. Anything else, including values which are not finite, is
// treated as auto.
func ClassifyLeading(raw string, fontSize float64) Leading {
	s := strings.TrimSpace(raw)
	auto := Leading{Type: LeadingAuto, Value: fontSize * 1.2, Raw: raw}
	if math.IsInf(auto.Value, 0) {
		auto.Value = 0
	}
	if s == "" || strings.EqualFold(s, "auto") {
		return auto
	}
	l := Leading{Type: LeadingAbsolute, Raw: raw}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := xmltree.ParseFloat(pct)
		if err != nil {
			return auto
		}
		l.Type, l.Value = LeadingPercentage, fontSize*v/100
	} else {
		v, err := xmltree.ParseFloat(s)
		if err != nil {
			return auto
		}
		l.Value = v
	}
	if math.IsInf(l.Value, 0) || math.IsNaN(l.Value) {
		return auto
	}
	return l
}

// LineHeightRatio returns CSS style line height ratio: 1.2 for auto leading,
// percentage as is, absolute leading to font size ratio but not less than
// 0.8.
func LineHeightRatio(l Leading, fontSize float64) float64 {
	if l.Type == LeadingAuto || fontSize <= 0 {
		return 1.2
	}
	r := l.Value / fontSize
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 1.2
	}
	if l.Type == LeadingPercentage {
		return r
	}
	return math.Max(0.8, r)
}

// Style is paragraph or character style or direct formatting of a text
// range. Nil fields are not set at this level.
type Style struct {
	Kind    StyleKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Self    string    `json:"self,omitempty" yaml:"self,omitempty"`
	Name    string    `json:"name,omitempty" yaml:"name,omitempty"`
	BasedOn string    `json:"basedOn,omitempty" yaml:"basedOn,omitempty"`

	AppliedFont *string  `json:"appliedFont,omitempty" yaml:"appliedFont,omitempty"`
	FontStyle   *string  `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty"`
	PointSize   *float64 `json:"pointSize,omitempty" yaml:"pointSize,omitempty"`
	// FontSize is PointSize in pixels, set by pixel conversion.
	FontSize *float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	// Leading keeps raw value, classified one is in ResolvedLeading.
	Leading         *string  `json:"leading,omitempty" yaml:"leading,omitempty"`
	ResolvedLeading *Leading `json:"resolvedLeading,omitempty" yaml:"resolvedLeading,omitempty"`
	LineHeight      *float64 `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`

	Alignment       *string  `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	LeftIndent      *float64 `json:"leftIndent,omitempty" yaml:"leftIndent,omitempty"`
	RightIndent     *float64 `json:"rightIndent,omitempty" yaml:"rightIndent,omitempty"`
	FirstLineIndent *float64 `json:"firstLineIndent,omitempty" yaml:"firstLineIndent,omitempty"`
	SpaceBefore     *float64 `json:"spaceBefore,omitempty" yaml:"spaceBefore,omitempty"`
	SpaceAfter      *float64 `json:"spaceAfter,omitempty" yaml:"spaceAfter,omitempty"`
	Tracking        *float64 `json:"tracking,omitempty" yaml:"tracking,omitempty"`
	KerningMethod   *string  `json:"kerningMethod,omitempty" yaml:"kerningMethod,omitempty"`
	KerningValue    *float64 `json:"kerningValue,omitempty" yaml:"kerningValue,omitempty"`
	FillColor       *string  `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	StrokeColor     *string  `json:"strokeColor,omitempty" yaml:"strokeColor,omitempty"`
	BaselineShift   *float64 `json:"baselineShift,omitempty" yaml:"baselineShift,omitempty"`
	Underline       *bool    `json:"underline,omitempty" yaml:"underline,omitempty"`
	StrikeThru      *bool    `json:"strikeThru,omitempty" yaml:"strikeThru,omitempty"`
	Capitalization  *string  `json:"capitalization,omitempty" yaml:"capitalization,omitempty"`
	Position        *string  `json:"position,omitempty" yaml:"position,omitempty"`

	ConvertedToPixels bool `json:"convertedToPixels,omitempty" yaml:"convertedToPixels,omitempty"`
}

// readStyleFields extracts formatting attributes of style or text range
// element, including values nested in Properties.
func readStyleFields(el *xmltree.Node) Style {
	var s Style

	s.AppliedFont = fontRef(el)
	s.FontStyle = strAttr(el, "FontStyle")
	s.PointSize = floatAttr(el, "PointSize")
	s.Leading = leadingAttr(el)
	s.Alignment = strAttr(el, "Justification")
	s.LeftIndent = floatAttr(el, "LeftIndent")
	s.RightIndent = floatAttr(el, "RightIndent")
	s.FirstLineIndent = floatAttr(el, "FirstLineIndent")
	s.SpaceBefore = floatAttr(el, "SpaceBefore")
	s.SpaceAfter = floatAttr(el, "SpaceAfter")
	s.Tracking = floatAttr(el, "Tracking")
	s.KerningMethod = strAttr(el, "KerningMethod")
	s.KerningValue = floatAttr(el, "KerningValue")
	s.FillColor = strAttr(el, "FillColor")
	s.StrokeColor = strAttr(el, "StrokeColor")
	s.BaselineShift = floatAttr(el, "BaselineShift")
	s.Underline = boolAttr(el, "Underline")
	s.StrikeThru = boolAttr(el, "StrikeThru")
	s.Capitalization = strAttr(el, "Capitalization")
	s.Position = strAttr(el, "Position")
	return s
}

// fontRef looks for font reference in attributes first and then in
// Properties.
func fontRef(el *xmltree.Node) *string {
	for _, name := range []string{"AppliedFont", "FontFamily", "Font"} {
		if v, ok := el.AttrOK(name); ok && strings.TrimSpace(v) != "" {
			return &v
		}
	}
	for _, name := range []string{"AppliedFont", "FontFamily"} {
		if v := strings.TrimSpace(el.Prop(name).Text()); v != "" {
			return &v
		}
	}
	return nil
}

func leadingAttr(el *xmltree.Node) *string {
	if v, ok := el.AttrOK("Leading"); ok && v != "" {
		return &v
	}
	if v := strings.TrimSpace(el.Prop("Leading").Text()); v != "" {
		return &v
	}
	return nil
}

func strAttr(el *xmltree.Node, name string) *string {
	if v, ok := el.AttrOK(name); ok && v != "" {
		return &v
	}
	return nil
}

func floatAttr(el *xmltree.Node, name string) *float64 {
	if v, ok := el.FloatOK(name); ok {
		return &v
	}
	return nil
}

func boolAttr(el *xmltree.Node, name string) *bool {
	if _, ok := el.AttrOK(name); !ok {
		return nil
	}
	v := el.Bool(name, false)
	return &v
}

// normalizeStyleRef makes full style Self from BasedOn or Applied*Style
// reference which may omit kind prefix.
func normalizeStyleRef(kind StyleKind, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, string(kind)+"/") {
		return ref
	}
	return string(kind) + "/" + ref
}

// parseStyles walks style groups of Styles.xml recursively and returns flat
// maps of paragraph and character styles with BasedOn inheritance applied.
func parseStyles(root *xmltree.Node, diag *Diagnostics, log *zap.Logger) (map[string]*Style, map[string]*Style) {
	para := make(map[string]*Style)
	char := make(map[string]*Style)

	var walk func(n *xmltree.Node)
	walk = func(n *xmltree.Node) {
		for _, el := range n.Elements() {
			switch el.Tag() {
			case "RootParagraphStyleGroup", "ParagraphStyleGroup", "RootCharacterStyleGroup", "CharacterStyleGroup":
				walk(el)
			case "ParagraphStyle":
				addStyle(para, ParagraphStyleKind, el, diag)
			case "CharacterStyle":
				addStyle(char, CharacterStyleKind, el, diag)
			case "RootCellStyleGroup", "RootTableStyleGroup", "RootObjectStyleGroup", "TOCStyle",
				"TrapPreset", "RootStrokeStyleGroup", "NumberingList", "NamedGrid":
				// not used for layout resolution
			default:
				log.Debug("Unexpected tag in Styles, ignoring", zap.String("parent", n.Tag()), zap.String("tag", el.Tag()))
			}
		}
	}
	walk(root)

	inheritStyles(para, diag)
	inheritStyles(char, diag)
	return para, char
}

func addStyle(styles map[string]*Style, kind StyleKind, el *xmltree.Node, diag *Diagnostics) {
	s := readStyleFields(el)
	s.Kind = kind
	s.Self = el.Attr("Self")
	s.Name = el.Attr("Name")
	if s.Self == "" {
		diag.Warn(StageResources, "Styles.xml", "", "style without Self ignored")
		return
	}
	if basedOn := el.Prop("BasedOn").Text(); basedOn != "" {
		s.BasedOn = normalizeStyleRef(kind, basedOn)
	} else if v := el.Attr("BasedOn"); v != "" {
		s.BasedOn = normalizeStyleRef(kind, v)
	}
	styles[s.Self] = &s
}

// inheritStyles fills unset fields of every style from its BasedOn chain.
// Chains are followed on the original flat values so the result does not
// depend on map iteration order.
func inheritStyles(styles map[string]*Style, diag *Diagnostics) {
	flat := make(map[string]Style, len(styles))
	for k, s := range styles {
		flat[k] = *s
	}
	for self, s := range styles {
		seen := map[string]bool{self: true}
		parent := flat[self].BasedOn
		for depth := 0; parent != ""; depth++ {
			if seen[parent] || depth >= maxBasedOnDepth {
				diag.Warn(StageResources, "Styles.xml", self, "style BasedOn chain is cyclic or too deep")
				break
			}
			seen[parent] = true
			base, ok := flat[parent]
			if !ok {
				break
			}
			s.fillFrom(&base)
			parent = base.BasedOn
		}
	}
}

// fillFrom copies fields set in other and unset in s.
func (s *Style) fillFrom(o *Style) {
	fill(&s.AppliedFont, o.AppliedFont)
	fill(&s.FontStyle, o.FontStyle)
	fill(&s.PointSize, o.PointSize)
	fill(&s.Leading, o.Leading)
	fill(&s.Alignment, o.Alignment)
	fill(&s.LeftIndent, o.LeftIndent)
	fill(&s.RightIndent, o.RightIndent)
	fill(&s.FirstLineIndent, o.FirstLineIndent)
	fill(&s.SpaceBefore, o.SpaceBefore)
	fill(&s.SpaceAfter, o.SpaceAfter)
	fill(&s.Tracking, o.Tracking)
	fill(&s.KerningMethod, o.KerningMethod)
	fill(&s.KerningValue, o.KerningValue)
	fill(&s.FillColor, o.FillColor)
	fill(&s.StrokeColor, o.StrokeColor)
	fill(&s.BaselineShift, o.BaselineShift)
	fill(&s.Underline, o.Underline)
	fill(&s.StrikeThru, o.StrikeThru)
	fill(&s.Capitalization, o.Capitalization)
	fill(&s.Position, o.Position)
}

// overrideFrom copies fields set in other over s.
func (s *Style) overrideFrom(o *Style) {
	override(&s.AppliedFont, o.AppliedFont)
	override(&s.FontStyle, o.FontStyle)
	override(&s.PointSize, o.PointSize)
	override(&s.Leading, o.Leading)
	override(&s.Alignment, o.Alignment)
	override(&s.LeftIndent, o.LeftIndent)
	override(&s.RightIndent, o.RightIndent)
	override(&s.FirstLineIndent, o.FirstLineIndent)
	override(&s.SpaceBefore, o.SpaceBefore)
	override(&s.SpaceAfter, o.SpaceAfter)
	override(&s.Tracking, o.Tracking)
	override(&s.KerningMethod, o.KerningMethod)
	override(&s.KerningValue, o.KerningValue)
	override(&s.FillColor, o.FillColor)
	override(&s.StrokeColor, o.StrokeColor)
	override(&s.BaselineShift, o.BaselineShift)
	override(&s.Underline, o.Underline)
	override(&s.StrikeThru, o.StrikeThru)
	override(&s.Capitalization, o.Capitalization)
	override(&s.Position, o.Position)
}

func fill[T any](dst **T, src *T) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func override[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
