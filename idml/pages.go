package idml

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"idmlc/idml/xmltree"
)

// Page detection sources.
const (
	DetectedDocument    = "document"
	DetectedSpread      = "spread"
	DetectedPreferences = "document-preferences"
	DetectedMaster      = "master-spread"
	DetectedSpreadPage  = "spread-page"
	DetectedDefault     = "default-letter"
)

// Letter page in points, last resort page size.
const (
	letterWidth  = 612
	letterHeight = 792
)

// parsePage reads Page element. Page without Self is returned as nil.
func parsePage(el *xmltree.Node, spread *Spread) *Page {
	self := el.Attr("Self")
	if self == "" {
		return nil
	}
	p := &Page{
		Self:            self,
		Name:            el.Attr("Name"),
		AppliedMaster:   el.Attr("AppliedMaster"),
		BackgroundColor: colorRef(el, "PageColor"),
		Items:           []*PageItem{},
	}
	if b, ok := ParseBounds(el.Attr("GeometricBounds")); ok {
		p.Bounds = b
	}
	p.Transform, p.hasTransform = ParseTransform(el.Attr("ItemTransform"))
	if mp := el.Child("MarginPreference"); mp != nil {
		p.Margins = parseMargins(mp)
		p.ownMargins = true
	}
	if spread != nil {
		p.SpreadParent = spread.Self
		p.IsMaster = spread.IsMaster
	}
	return p
}

// colorRef reads color reference from attribute or Properties, ignoring
// values meaning "no own color".
func colorRef(el *xmltree.Node, prop string) string {
	v := el.Attr("BackgroundColor")
	if v == "" {
		v = strings.TrimSpace(el.Prop(prop).Text())
	}
	switch v {
	case "", "UseMasterColor", "Nothing", "Swatch/None":
		return ""
	}
	return v
}

// derivePages builds document page list. Tiers are tried in order and
// next one only when previous produced no pages: pages declared under
// Document, pages of spreads, single synthesized page. Spread pages are
// always matched against document pages so those get their spread parent.
func derivePages(docEl *xmltree.Node, spreads, masters []*Spread, prefs Preferences, diag *Diagnostics) []*Page {
	var pages []*Page
	byID := make(map[string]*Page)
	for _, el := range docEl.Children("Page") {
		p := parsePage(el, nil)
		if p == nil {
			diag.Warn(StageStructure, "designmap.xml", "", "document page without Self skipped")
			continue
		}
		if _, dup := byID[p.Self]; dup {
			continue
		}
		p.DetectionSource = DetectedDocument
		byID[p.Self] = p
		pages = append(pages, p)
	}
	fromDocument := len(pages) > 0

	for _, s := range spreads {
		kept := s.pages[:0]
		for _, sp := range s.pages {
			p, ok := byID[sp.Self]
			switch {
			case ok && fromDocument:
				// document page wins, spread provides context
				p.SpreadParent = s.Self
				if p.BackgroundColor == "" {
					p.BackgroundColor = sp.BackgroundColor
				}
				if !p.ownMargins && sp.ownMargins {
					p.Margins, p.ownMargins = sp.Margins, true
				}
				if !p.hasTransform {
					p.Transform, p.hasTransform = sp.Transform, sp.hasTransform
				}
				kept = append(kept, p)
			case ok:
				diag.Info(StageStructure, s.Source, sp.Self, "duplicate page ignored")
			case fromDocument:
				diag.Info(StageStructure, s.Source, sp.Self, "spread page is not listed in document, ignored")
			default:
				sp.DetectionSource = DetectedSpread
				byID[sp.Self] = sp
				pages = append(pages, sp)
				kept = append(kept, sp)
			}
		}
		s.pages = kept
		s.PageIDs = s.PageIDs[:0]
		for _, p := range kept {
			s.PageIDs = append(s.PageIDs, p.Self)
		}
	}
	if len(pages) > 0 {
		if fromDocument {
			diag.PageDetection = DetectedDocument
		} else {
			diag.PageDetection = DetectedSpread
		}
		return pages
	}

	p := synthesizePage(spreads, masters, prefs)
	diag.PageDetection = p.DetectionSource
	diag.Warn(StageStructure, "designmap.xml", p.Self, "no pages found, synthesized default page from "+p.DetectionSource)
	if len(spreads) > 0 {
		p.SpreadParent = spreads[0].Self
		spreads[0].pages = append(spreads[0].pages, p)
		spreads[0].PageIDs = append(spreads[0].PageIDs, p.Self)
	}
	return []*Page{p}
}

// synthesizePage makes default page sized from best available source:
// document preferences, first master page, first spread page or Letter.
func synthesizePage(spreads, masters []*Spread, prefs Preferences) *Page {
	p := &Page{
		Self:          "default-page",
		Name:          "1",
		Transform:     Identity(),
		IsDefaultPage: true,
		Items:         []*PageItem{},
	}
	if w, h := prefs.Document.PageWidth, prefs.Document.PageHeight; w > 0 && h > 0 {
		p.Bounds = NewBounds(0, 0, h, w)
		p.DetectionSource = DetectedPreferences
		return p
	}
	if b, ok := firstPageBounds(masters); ok {
		p.Bounds = b
		p.DetectionSource = DetectedMaster
		return p
	}
	if b, ok := firstPageBounds(spreads); ok {
		p.Bounds = b
		p.DetectionSource = DetectedSpreadPage
		return p
	}
	p.Bounds = NewBounds(0, 0, letterHeight, letterWidth)
	p.DetectionSource = DetectedDefault
	return p
}

// firstPageBounds returns bounds of first page with valid geometry. Pages
// which were not resolvable (no Self) still count as geometry source.
func firstPageBounds(spreads []*Spread) (Bounds, bool) {
	for _, s := range spreads {
		for _, b := range s.pageBounds {
			if b.Valid() {
				return NewBounds(b.Top, b.Left, b.Bottom, b.Right), true
			}
		}
	}
	return Bounds{}, false
}

// resolveMargins applies margin fallback: page's own margin preference,
// then first master page's own preference, then document preferences, then
// zero.
func resolveMargins(pages []*Page, masters []*Spread, prefs Preferences) {
	def := Margins{ColumnCount: 1}
	if m := firstMasterMargins(masters); m != nil {
		def = *m
	} else if prefs.hasMargins {
		def = prefs.Margins
	}
	for _, p := range pages {
		if !p.ownMargins {
			p.Margins = def
		}
	}
}

func firstMasterMargins(masters []*Spread) *Margins {
	for _, m := range masters {
		for _, p := range m.pages {
			if p.ownMargins {
				return &p.Margins
			}
		}
	}
	return nil
}

// resolveBackgrounds falls back to spread background for pages without own
// color.
func resolveBackgrounds(spreads []*Spread) {
	for _, s := range spreads {
		for _, p := range s.pages {
			if p.BackgroundColor == "" {
				p.BackgroundColor = s.BackgroundColor
			}
		}
	}
}

// validatePages records issues for pages without id, geometry or
// transform. Nothing here is fatal.
func validatePages(pages []*Page, diag *Diagnostics, log *zap.Logger) {
	for i, p := range pages {
		source := p.SpreadParent
		if p.Self == "" {
			diag.Warn(StageStructure, source, "", "page has no Self")
		}
		if !p.Bounds.Valid() {
			diag.Warn(StageStructure, source, p.Self, "page has empty or missing bounds")
		}
		if !p.hasTransform && !p.IsDefaultPage {
			diag.Info(StageStructure, source, p.Self, "page has no transform, identity assumed")
		}
		if p.Name == "" {
			p.Name = strconv.Itoa(i + 1)
		}
	}
	if err := diag.Err(StageStructure); err != nil {
		log.Warn("Document structure has problems", zap.Error(err))
	}
}
