package idml

import (
	"strings"

	"go.uber.org/zap"

	"idmlc/idml/xmltree"
	"idmlc/text"
)

// Resources are document wide lookup tables.
type Resources struct {
	ParagraphStyles map[string]*Style    `json:"paragraphStyles" yaml:"paragraphStyles"`
	CharacterStyles map[string]*Style    `json:"characterStyles" yaml:"characterStyles"`
	Fonts           *FontMap             `json:"fonts" yaml:"fonts"`
	Colors          map[string]*Color    `json:"colors" yaml:"colors"`
	Gradients       map[string]*Gradient `json:"gradients" yaml:"gradients"`
}

// Preferences from Resources/Preferences.xml.
type Preferences struct {
	Document  DocumentPreferences `json:"document" yaml:"document"`
	Margins   Margins             `json:"margins" yaml:"margins"`
	View      ViewPreferences     `json:"view" yaml:"view"`
	Grid      GridPreferences     `json:"grid" yaml:"grid"`
	TextFrame TextFrame           `json:"textFrame" yaml:"textFrame"`

	hasMargins bool
}

// DocumentPreferences is document setup.
type DocumentPreferences struct {
	PageWidth        float64 `json:"pageWidth" yaml:"pageWidth"`
	PageHeight       float64 `json:"pageHeight" yaml:"pageHeight"`
	FacingPages      bool    `json:"facingPages" yaml:"facingPages"`
	PagesPerDocument int     `json:"pagesPerDocument" yaml:"pagesPerDocument"`
	PageBinding      string  `json:"pageBinding,omitempty" yaml:"pageBinding,omitempty"`
	Bleed            Bleed   `json:"bleed" yaml:"bleed"`
}

// Bleed offsets.
type Bleed struct {
	Top     float64 `json:"top" yaml:"top"`
	Bottom  float64 `json:"bottom" yaml:"bottom"`
	Inside  float64 `json:"inside" yaml:"inside"`
	Outside float64 `json:"outside" yaml:"outside"`
}

// Margins of a page.
type Margins struct {
	Top          float64 `json:"top" yaml:"top"`
	Bottom       float64 `json:"bottom" yaml:"bottom"`
	Left         float64 `json:"left" yaml:"left"`
	Right        float64 `json:"right" yaml:"right"`
	ColumnCount  int     `json:"columnCount" yaml:"columnCount"`
	ColumnGutter float64 `json:"columnGutter" yaml:"columnGutter"`
}

// ViewPreferences carry measurement units.
type ViewPreferences struct {
	HorizontalUnits string `json:"horizontalUnits" yaml:"horizontalUnits"`
	VerticalUnits   string `json:"verticalUnits" yaml:"verticalUnits"`
}

// GridPreferences of baseline and document grids.
type GridPreferences struct {
	BaselineStart    float64 `json:"baselineStart" yaml:"baselineStart"`
	BaselineDivision float64 `json:"baselineDivision" yaml:"baselineDivision"`
	GridlineSpacing  float64 `json:"gridlineSpacing" yaml:"gridlineSpacing"`
}

func defaultPreferences() Preferences {
	return Preferences{
		Document: DocumentPreferences{PagesPerDocument: 1},
		Margins:  Margins{ColumnCount: 1},
		View:     ViewPreferences{HorizontalUnits: string(UnitPoints), VerticalUnits: string(UnitPoints)},
		TextFrame: TextFrame{
			Columns:             1,
			FirstBaselineOffset: text.AscentOffset,
		},
	}
}

// parsePreferences reads Preferences.xml. Missing preferences keep defaults.
func parsePreferences(root *xmltree.Node, log *zap.Logger) Preferences {
	prefs := defaultPreferences()
	for _, el := range root.Elements() {
		switch el.Tag() {
		case "DocumentPreference":
			d := &prefs.Document
			d.PageWidth = el.Float("PageWidth", 0)
			d.PageHeight = el.Float("PageHeight", 0)
			d.FacingPages = el.Bool("FacingPages", false)
			d.PagesPerDocument = el.Int("PagesPerDocument", 1)
			d.PageBinding = el.Attr("PageBinding")
			d.Bleed = Bleed{
				Top:     el.Float("DocumentBleedTopOffset", 0),
				Bottom:  el.Float("DocumentBleedBottomOffset", 0),
				Inside:  el.Float("DocumentBleedInsideOrLeftOffset", 0),
				Outside: el.Float("DocumentBleedOutsideOrRightOffset", 0),
			}
		case "MarginPreference":
			prefs.Margins = parseMargins(el)
			prefs.hasMargins = true
		case "ViewPreference":
			prefs.View.HorizontalUnits = attrOr(el, "HorizontalMeasurementUnits", string(UnitPoints))
			prefs.View.VerticalUnits = attrOr(el, "VerticalMeasurementUnits", string(UnitPoints))
		case "GridPreference":
			prefs.Grid = GridPreferences{
				BaselineStart:    el.Float("BaselineStart", 0),
				BaselineDivision: el.Float("BaselineDivision", 0),
				GridlineSpacing:  el.Float("HorizontalGridlineDivision", 0),
			}
		case "TextFramePreference":
			prefs.TextFrame = parseTextFramePreference(el, prefs.TextFrame)
		default:
			log.Debug("Unused preference", zap.String("tag", el.Tag()))
		}
	}
	return prefs
}

func parseMargins(el *xmltree.Node) Margins {
	return Margins{
		Top:          el.Float("Top", 0),
		Bottom:       el.Float("Bottom", 0),
		Left:         el.Float("Left", 0),
		Right:        el.Float("Right", 0),
		ColumnCount:  max(el.Int("ColumnCount", 1), 1),
		ColumnGutter: el.Float("ColumnGutter", 0),
	}
}

// parseTextFramePreference overlays TextFramePreference element on top of
// base values.
func parseTextFramePreference(el *xmltree.Node, base TextFrame) TextFrame {
	tf := base
	tf.Columns = max(el.Int("TextColumnCount", base.Columns), 1)
	tf.ColumnGutter = el.Float("TextColumnGutter", base.ColumnGutter)
	tf.FirstBaselineOffset = attrOr(el, "FirstBaselineOffset", base.FirstBaselineOffset)
	tf.VerticalJustification = attrOr(el, "VerticalJustification", base.VerticalJustification)
	tf.AutoSizing = attrOr(el, "AutoSizingType", base.AutoSizing)

	if v, ok := el.AttrOK("InsetSpacing"); ok {
		if insets, ok := parseInsets(v); ok {
			tf.Insets = insets
		}
	} else if list := el.Prop("InsetSpacing"); list != nil {
		var vals []string
		for _, item := range list.Children("ListItem") {
			vals = append(vals, strings.TrimSpace(item.Text()))
		}
		if insets, ok := parseInsets(strings.Join(vals, " ")); ok {
			tf.Insets = insets
		}
	}
	tf.Metrics, tf.Fit = nil, nil
	return tf
}

// parseInsets reads "top left bottom right" or single value list.
func parseInsets(s string) (text.Insets, bool) {
	v, err := xmltree.ParseNumberList(s)
	if err != nil {
		return text.Insets{}, false
	}
	switch len(v) {
	case 1:
		return text.Insets{Top: v[0], Left: v[0], Bottom: v[0], Right: v[0]}, true
	case 4:
		return text.Insets{Top: v[0], Left: v[1], Bottom: v[2], Right: v[3]}, true
	}
	return text.Insets{}, false
}

func attrOr(el *xmltree.Node, name, def string) string {
	if v, ok := el.AttrOK(name); ok && v != "" {
		return v
	}
	return def
}

// Gradient swatch.
type Gradient struct {
	Self  string         `json:"self" yaml:"self"`
	Name  string         `json:"name" yaml:"name"`
	Type  string         `json:"type" yaml:"type"`
	Stops []GradientStop `json:"stops" yaml:"stops"`
}

// GradientStop of gradient.
type GradientStop struct {
	Color    string  `json:"color" yaml:"color"`
	Location float64 `json:"location" yaml:"location"`
	Midpoint float64 `json:"midpoint" yaml:"midpoint"`
}

// parseGraphic reads colors and gradients from Graphic.xml.
func parseGraphic(root *xmltree.Node, diag *Diagnostics, log *zap.Logger) (map[string]*Color, map[string]*Gradient) {
	colors := make(map[string]*Color)
	gradients := make(map[string]*Gradient)
	for _, el := range root.Elements() {
		switch el.Tag() {
		case "Color":
			c, ok := resolveColor(el)
			if !ok {
				log.Debug("Color has no usable data, not stored", zap.String("self", el.Attr("Self")))
				continue
			}
			colors[c.Self] = c
		case "Gradient":
			self := el.Attr("Self")
			if self == "" {
				diag.Warn(StageResources, "Graphic.xml", "", "gradient without Self ignored")
				continue
			}
			g := &Gradient{Self: self, Name: el.Attr("Name"), Type: attrOr(el, "Type", "Linear")}
			for _, stop := range el.Children("GradientStop") {
				g.Stops = append(g.Stops, GradientStop{
					Color:    stop.Attr("StopColor"),
					Location: stop.Float("Location", 0),
					Midpoint: stop.Float("Midpoint", 50),
				})
			}
			gradients[self] = g
		case "Swatch":
			if el.Attr("Self") == "Swatch/None" {
				colors["Swatch/None"] = &Color{Self: "Swatch/None", Name: "None", Model: "None"}
			}
		case "Ink", "Tint", "MixedInk", "MixedInkGroup", "PastedSmoothShade", "StrokeStyle",
			"DashedStrokeStyle", "DottedStrokeStyle", "StripedStrokeStyle":
		default:
			log.Debug("Unexpected tag in Graphic, ignoring", zap.String("tag", el.Tag()))
		}
	}
	return colors, gradients
}
