package idml

import (
	"strings"

	"go.uber.org/zap"

	"idmlc/idml/xmltree"
)

// spreadContext is shared by all spreads of a document.
type spreadContext struct {
	textFrames TextFrame
	images     map[string]string
	diag       *Diagnostics
	log        *zap.Logger
}

// parseSpread reads Spreads/*.xml or MasterSpreads/*.xml fragment with its
// pages and page items. Items are not bound to pages yet.
func parseSpread(root *xmltree.Node, source string, isMaster bool, sc spreadContext) *Spread {
	tag := "Spread"
	if isMaster {
		tag = "MasterSpread"
	}
	el := unwrap(root, tag)
	if el.Tag() != tag {
		sc.diag.Error(StageStructure, source, "", "fragment has no "+tag+" element")
		return nil
	}

	s := &Spread{
		Self:              el.Attr("Self"),
		Source:            source,
		IsMaster:          isMaster,
		BindingLocation:   el.Int("BindingLocation", 0),
		FlattenerOverride: el.Attr("FlattenerOverride"),
		BackgroundColor:   colorRef(el, "SpreadColor"),
		PageCount:         el.Int("PageCount", 0),
		PageIDs:           []string{},
	}
	if s.Self == "" {
		s.Self = strings.TrimSuffix(source[strings.LastIndexByte(source, '/')+1:], ".xml")
		sc.diag.Warn(StageStructure, source, s.Self, "spread has no Self, file name used")
	}
	s.Transform, _ = ParseTransform(el.Attr("ItemTransform"))
	if isMaster {
		s.Name = el.Attr("Name")
		s.NamePrefix = el.Attr("NamePrefix")
		s.BaseName = el.Attr("BaseName")
		s.BasedOn = el.Attr("BasedOn")
		if s.BasedOn == "" {
			s.BasedOn = strings.TrimSpace(el.Prop("BasedOn").Text())
		}
		if s.BasedOn == "n" {
			s.BasedOn = ""
		}
	}

	pagesByID := make(map[string]*Page)
	for _, pel := range el.Children("Page") {
		if b, ok := ParseBounds(pel.Attr("GeometricBounds")); ok {
			s.pageBounds = append(s.pageBounds, b)
		}
		p := parsePage(pel, s)
		if p == nil {
			sc.diag.Warn(StageStructure, source, "", "page without Self skipped")
			continue
		}
		if _, dup := pagesByID[p.Self]; dup {
			sc.diag.Warn(StageStructure, source, p.Self, "duplicate page skipped")
			continue
		}
		pagesByID[p.Self] = p
		s.pages = append(s.pages, p)
		s.PageIDs = append(s.PageIDs, p.Self)
	}
	if s.PageCount == 0 {
		s.PageCount = len(s.pages)
	}

	er := &elementResolver{
		source:     source,
		spread:     s,
		textFrames: sc.textFrames,
		images:     sc.images,
		diag:       sc.diag,
		log:        sc.log,
	}
	s.Items = er.collect(el, pagesByID)
	sc.log.Debug("Spread parsed",
		zap.String("source", source),
		zap.String("self", s.Self),
		zap.Int("pages", len(s.pages)),
		zap.Int("items", len(s.Items)))
	return s
}
