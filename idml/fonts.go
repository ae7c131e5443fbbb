package idml

import (
	"strings"

	"go.uber.org/zap"

	"idmlc/idml/xmltree"
)

// DefaultFontFamily is used when document defines no fonts at all.
const DefaultFontFamily = "Arial"

// Font is single face of a font family.
type Font struct {
	Self           string `json:"self" yaml:"self"`
	Name           string `json:"name" yaml:"name"`
	Family         string `json:"family" yaml:"family"`
	PostScriptName string `json:"postScriptName,omitempty" yaml:"postScriptName,omitempty"`
	Style          string `json:"style,omitempty" yaml:"style,omitempty"`
	Status         string `json:"status,omitempty" yaml:"status,omitempty"`
}

// FontFamily groups fonts.
type FontFamily struct {
	Self  string `json:"self" yaml:"self"`
	Name  string `json:"name" yaml:"name"`
	Fonts []Font `json:"fonts" yaml:"fonts"`
}

// FontMap resolves any font reference used in document to family display
// name. Every font is registered under four keys: its Self, PostScript name,
// display name and family name.
type FontMap struct {
	Families []FontFamily      `json:"families" yaml:"families"`
	Lookup   map[string]string `json:"lookup" yaml:"lookup"`
	// Default is used when nothing else matches.
	Default string `json:"default" yaml:"default"`
}

// NewFontMap makes empty font map with fallback family name.
func NewFontMap(def string) *FontMap {
	if def == "" {
		def = DefaultFontFamily
	}
	return &FontMap{Lookup: make(map[string]string), Default: def}
}

// Add registers family and all its fonts.
func (fm *FontMap) Add(fam FontFamily) {
	fm.Families = append(fm.Families, fam)
	if fam.Self != "" {
		fm.Lookup[fam.Self] = fam.Name
	}
	fm.Lookup[fam.Name] = fam.Name
	for _, f := range fam.Fonts {
		for _, key := range []string{f.Self, f.PostScriptName, f.Name, f.Family} {
			if key != "" {
				fm.Lookup[key] = fam.Name
			}
		}
	}
}

// Fallback returns first defined family or default.
func (fm *FontMap) Fallback() string {
	if fm == nil {
		return DefaultFontFamily
	}
	if len(fm.Families) > 0 && fm.Families[0].Name != "" {
		return fm.Families[0].Name
	}
	return fm.Default
}

// Resolve maps font reference to family name: exact key first, then case
// insensitive substring match against family and font names, then fallback.
// Second return value is false when fallback was used.
func (fm *FontMap) Resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if fm == nil || ref == "" {
		return fm.Fallback(), false
	}
	// InDesign may append style after tab: "Minion Pro\tBold"
	if i := strings.IndexByte(ref, '\t'); i > 0 {
		ref = ref[:i]
	}
	if name, ok := fm.Lookup[ref]; ok {
		return name, true
	}
	lref := strings.ToLower(ref)
	for _, fam := range fm.Families {
		if containsFold(fam.Name, lref) {
			return fam.Name, true
		}
	}
	for _, fam := range fm.Families {
		for _, f := range fam.Fonts {
			if containsFold(f.Name, lref) || containsFold(f.PostScriptName, lref) {
				return fam.Name, true
			}
		}
	}
	return fm.Fallback(), false
}

func containsFold(name, lref string) bool {
	if name == "" {
		return false
	}
	lname := strings.ToLower(name)
	return strings.Contains(lname, lref) || strings.Contains(lref, lname)
}

// parseFonts reads Fonts.xml.
func parseFonts(root *xmltree.Node, def string, log *zap.Logger) *FontMap {
	fm := NewFontMap(def)
	for _, el := range root.Elements() {
		if el.Tag() != "FontFamily" {
			if el.Tag() != "CompositeFont" {
				log.Debug("Unexpected tag in Fonts, ignoring", zap.String("tag", el.Tag()))
			}
			continue
		}
		fam := FontFamily{Self: el.Attr("Self"), Name: el.Attr("Name")}
		for _, f := range el.Children("Font") {
			font := Font{
				Self:           f.Attr("Self"),
				Name:           f.Attr("Name"),
				Family:         attrOr(f, "FontFamily", fam.Name),
				PostScriptName: f.Attr("PostScriptName"),
				Style:          f.Attr("FontStyleName"),
				Status:         f.Attr("Status"),
			}
			fam.Fonts = append(fam.Fonts, font)
		}
		if fam.Name == "" && len(fam.Fonts) > 0 {
			fam.Name = fam.Fonts[0].Family
		}
		if fam.Name == "" {
			log.Debug("Font family without name ignored", zap.String("self", fam.Self))
			continue
		}
		fm.Add(fam)
	}
	return fm
}
