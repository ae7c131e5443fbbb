package idml

import (
	"path"
	"strings"

	"idmlc/idml/xmltree"
)

// parsePlaced resolves placed content element. Link's LinkResourceURI, when
// present, takes priority over content's own href.
func parsePlaced(n *xmltree.Node, images map[string]string) *PlacedContent {
	pc := &PlacedContent{Type: n.Tag(), Self: n.Attr("Self"), Transform: Identity()}
	if t, ok := ParseTransform(n.Attr("ItemTransform")); ok {
		pc.Transform = t
	}

	if gb := n.Prop("GraphicBounds"); gb != nil {
		b := NewBounds(gb.Float("Top", 0), gb.Float("Left", 0), gb.Float("Bottom", 0), gb.Float("Right", 0))
		pc.Bounds = &b
	}
	if v, err := xmltree.ParseNumberList(n.Attr("ActualPpi")); err == nil && len(v) > 0 {
		pc.ActualPPI = v
	}
	if v, err := xmltree.ParseNumberList(n.Attr("EffectivePpi")); err == nil && len(v) > 0 {
		pc.EffectivePPI = v
	}

	link := n.Child("Link")
	if n.Tag() == "Link" {
		link = n
	}
	uri := n.Attr("href")
	if link != nil {
		pc.StoredState = link.Attr("StoredState")
		if v := link.Attr("LinkResourceURI"); v != "" {
			uri = v
		}
	}
	pc.URI = uri
	pc.Href = ResolveHref(uri)
	pc.Embedded = IsEmbeddedHref(uri) || strings.EqualFold(pc.StoredState, "Embedded")
	// image data stored inline
	if n.Prop("Contents") != nil {
		pc.Embedded = true
	}

	if pc.Href != "" {
		pc.PackagePath = images[strings.ToLower(pc.Href)]
	}
	return pc
}

// imageIndex maps lower case base names of package images to their paths.
func imageIndex(paths []string) map[string]string {
	idx := make(map[string]string, len(paths))
	for _, p := range paths {
		key := strings.ToLower(path.Base(p))
		if _, ok := idx[key]; !ok {
			idx[key] = p
		}
	}
	return idx
}
