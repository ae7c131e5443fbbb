package idml

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"idmlc/idml/xmltree"
)

// defaultItemSize is used when item geometry cannot be determined.
const defaultItemSize = 100

// elementResolver collects page items of a single spread.
type elementResolver struct {
	source     string
	spread     *Spread
	textFrames TextFrame
	images     map[string]string
	diag       *Diagnostics
	log        *zap.Logger
}

func isItemTag(tag string) (ItemKind, bool) {
	k := ItemKind(tag)
	return k, slices.Contains(itemKinds, k)
}

// collect parses items of the spread element in document order. Items
// nested one level inside Page elements are collected too and are bound to
// that page.
func (er *elementResolver) collect(spreadEl *xmltree.Node, pages map[string]*Page) []*PageItem {
	var items []*PageItem
	for _, el := range spreadEl.Elements() {
		if el.Tag() == "Page" {
			page := pages[el.Attr("Self")]
			for _, c := range el.Elements() {
				if kind, ok := isItemTag(c.Tag()); ok {
					items = er.parseItem(items, c, kind, nil, page, Identity())
				}
			}
			continue
		}
		if kind, ok := isItemTag(el.Tag()); ok {
			items = er.parseItem(items, el, kind, nil, nil, Identity())
		}
	}
	return items
}

// parseItem appends item and, for groups, all of its descendants to items.
// Problems are recorded in diagnostics, nothing here is fatal.
func (er *elementResolver) parseItem(items []*PageItem, el *xmltree.Node, kind ItemKind, group *PageItem, page *Page, outer Transform) []*PageItem {
	self := el.Attr("Self")
	if self == "" {
		er.diag.Warn(StageElements, er.source, "", "page item "+string(kind)+" without Self skipped")
		er.diag.Counters.SkippedItems++
		return items
	}

	it := &PageItem{
		Kind:         kind,
		Self:         self,
		Name:         el.Attr("Name"),
		Visible:      el.Bool("Visible", true),
		Locked:       el.Bool("Locked", false),
		Layer:        el.Attr("ItemLayer"),
		FillColor:    el.Attr("FillColor"),
		StrokeColor:  el.Attr("StrokeColor"),
		StrokeWeight: el.Float("StrokeWeight", 0),
		ObjectStyle:  el.Attr("AppliedObjectStyle"),
		ParentStory:  el.Attr("ParentStory"),
		Spread:       er.spread.Self,
	}

	var hasTransform bool
	it.Transform, hasTransform = ParseTransform(el.Attr("ItemTransform"))
	it.Bounds, it.GeometrySource = resolveGeometry(el, hasTransform)
	if it.GeometrySource == GeometryTransform || it.GeometrySource == GeometryDefault {
		er.diag.Counters.DefaultedGeometry++
		er.diag.Info(StageElements, er.source, self, "geometry defaulted ("+it.GeometrySource+")")
	}
	it.spreadTransform = it.Transform.Then(outer)

	if group != nil {
		it.ParentGroup = group.Self
		group.Children = append(group.Children, self)
	}
	if page != nil {
		it.Page = page.Self
	}

	er.classifyContent(el, it)

	switch kind {
	case KindTextFrame:
		tf := er.textFrames
		if pref := el.Child("TextFramePreference"); pref != nil {
			tf = parseTextFramePreference(pref, tf)
		}
		it.TextFrame = &tf
		er.diag.Counters.TextFrames++
		if it.ParentStory == "" {
			er.diag.Info(StageElements, er.source, self, "text frame has no parent story")
		}
	case KindRectangle:
		it.Corners = parseCorners(el)
	case KindTable:
		it.Table = parseTableShape(el)
	}

	er.diag.Counters.Items++
	items = append(items, it)

	if kind == KindGroup {
		for _, c := range el.Elements() {
			if ck, ok := isItemTag(c.Tag()); ok {
				items = er.parseItem(items, c, ck, it, page, it.spreadTransform)
			}
		}
	}
	return items
}

// resolveGeometry tries GeometricBounds, then bounding box of path anchors,
// then default box which item transform places at its translation, then
// default box at origin.
func resolveGeometry(el *xmltree.Node, hasTransform bool) (Bounds, string) {
	if b, ok := ParseBounds(el.Attr("GeometricBounds")); ok {
		return b, GeometryBounds
	}
	if b, ok := pathBounds(el); ok {
		return b, GeometryPath
	}
	b := NewBounds(0, 0, defaultItemSize, defaultItemSize)
	if hasTransform {
		return b, GeometryTransform
	}
	return b, GeometryDefault
}

// pathBounds returns bounding box of all path point anchors.
func pathBounds(el *xmltree.Node) (Bounds, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false
	for _, gpt := range el.Find("Properties", "PathGeometry").Children("GeometryPathType") {
		for _, pt := range gpt.Child("PathPointArray").Children("PathPointType") {
			x, y, ok := xmltree.ParsePoint(pt.Attr("Anchor"))
			if !ok {
				continue
			}
			found = true
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	if !found {
		return Bounds{}, false
	}
	return NewBounds(minY, minX, maxY, maxX), true
}

// classifyContent combines name heuristic and presence of placed content.
func (er *elementResolver) classifyContent(el *xmltree.Node, it *PageItem) {
	if !isFrameKind(it.Kind) {
		return
	}
	cf := &it.ContentFrame
	cf.IsPlaceholder = IsPlaceholderName(it.Name)

	if n := findPlacedContent(el); n != nil {
		it.Placed = parsePlaced(n, er.images)
		cf.HasPlacedContent = true
		cf.ContentType = it.Placed.Type
		cf.IsEmbedded = it.Placed.Embedded
		if it.Placed.Embedded {
			er.diag.Counters.EmbeddedImages++
		} else {
			er.diag.Counters.LinkedImages++
		}
	} else if cf.IsPlaceholder {
		cf.ContentType = "placeholder"
	}

	cf.IsContentFrame = cf.HasPlacedContent || cf.IsPlaceholder
	if cf.IsContentFrame {
		er.diag.Counters.ContentFrames++
	}
	if cf.IsPlaceholder {
		er.diag.Counters.Placeholders++
	}
}

// parseCorners returns nil for rectangles with square corners.
func parseCorners(el *xmltree.Node) *CornerRadii {
	corners := [4]string{"TopLeft", "TopRight", "BottomLeft", "BottomRight"}
	var radii [4]float64
	option := ""
	for i, c := range corners {
		opt := attrOr(el, c+"CornerOption", el.Attr("CornerOption"))
		if opt == "" || opt == "None" {
			continue
		}
		if option == "" {
			option = opt
		}
		radii[i] = el.Float(c+"CornerRadius", el.Float("CornerRadius", 0))
	}
	if option == "" {
		return nil
	}
	return &CornerRadii{TopLeft: radii[0], TopRight: radii[1], BottomLeft: radii[2], BottomRight: radii[3], Option: option}
}

func parseTableShape(el *xmltree.Node) *TableShape {
	rows := el.Int("BodyRowCount", 0) + el.Int("HeaderRowCount", 0) + el.Int("FooterRowCount", 0)
	if rows == 0 {
		rows = len(el.Children("Row"))
	}
	cols := el.Int("ColumnCount", 0)
	if cols == 0 {
		cols = len(el.Children("Column"))
	}
	return &TableShape{Rows: rows, Columns: cols}
}

// assignPages binds every item without page to the spread page whose
// spread space rectangle contains item center, or to the nearest one.
func assignPages(items []*PageItem, pages []*Page) []*PageItem {
	var unassigned []*PageItem
	rects := make([]Bounds, len(pages))
	for i, p := range pages {
		rects[i] = p.Transform.ApplyBounds(p.Bounds)
	}
	byID := make(map[string]*Page, len(pages))
	for _, p := range pages {
		byID[p.Self] = p
	}

	for _, it := range items {
		if p, ok := byID[it.Page]; ok {
			p.Items = append(p.Items, it)
			continue
		}
		if len(pages) == 0 {
			unassigned = append(unassigned, it)
			continue
		}
		x, y := it.spreadTransform.Apply(it.Bounds.Center())
		best, bestDist := 0, math.Inf(1)
		for i, r := range rects {
			d := distanceToRect(x, y, r)
			if d < bestDist {
				best, bestDist = i, d
			}
			if d == 0 {
				break
			}
		}
		it.Page = pages[best].Self
		pages[best].Items = append(pages[best].Items, it)
	}
	return unassigned
}

func distanceToRect(x, y float64, r Bounds) float64 {
	dx := math.Max(math.Max(r.Left-x, 0), x-r.Right)
	dy := math.Max(math.Max(r.Top-y, 0), y-r.Bottom)
	return math.Hypot(dx, dy)
}
