package idml

import (
	"net/url"
	"regexp"
	"strings"

	"idmlc/idml/xmltree"
)

// Heuristics below are approximate by nature, each of them is a pure
// function with golden tests.

var placeholderNames = []string{"[your image here]", "[image]"}

// IsPlaceholderName reports frame names designers use for empty image
// slots.
func IsPlaceholderName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return false
	}
	for _, p := range placeholderNames {
		if strings.Contains(n, p) {
			return true
		}
	}
	return strings.Contains(n, "placeholder")
}

var reURIScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// IsEmbeddedHref classifies placed content reference: bare file name without
// scheme and path is embedded, anything else points to external link.
func IsEmbeddedHref(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || reURIScheme.MatchString(href) {
		return false
	}
	return !strings.ContainsAny(href, `/\`)
}

// ResolveHref returns file name from link URI: "file:" scheme and directory
// are stripped and URL escapes decoded.
func ResolveHref(uri string) string {
	s := strings.TrimSpace(uri)
	if s == "" {
		return ""
	}
	if rest, ok := cutPrefixFold(s, "file:"); ok {
		s = strings.TrimLeft(rest, "/")
	}
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	if dec, err := url.PathUnescape(s); err == nil {
		s = dec
	}
	return s
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

// placedTags are elements which make a frame a content frame.
var placedTags = []string{"Image", "PlacedImage", "EPS", "PDF", "ImportedPage", "Link"}

// findPlacedContent looks for placed content directly under element and
// under its Properties wrapper.
func findPlacedContent(el *xmltree.Node) *xmltree.Node {
	for _, parent := range []*xmltree.Node{el, el.Child("Properties")} {
		for _, c := range parent.Elements() {
			for _, tag := range placedTags {
				if c.Tag() == tag {
					return c
				}
			}
		}
	}
	return nil
}

// isFrameKind reports item kinds which may hold placed content.
func isFrameKind(k ItemKind) bool {
	switch k {
	case KindRectangle, KindOval, KindPolygon, KindGraphicLine, KindButton, KindContentFrame, KindPlacedItem,
		KindImage, KindEPS, KindPDF:
		return true
	}
	return false
}
