package xmltree

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// AttrPrefix marks attribute keys in map form.
	AttrPrefix = "@_"
	// TextKey holds character data in map form.
	TextKey = "#text"
)

// ToMap converts element to attribute-tagged map: attributes become
// "@_Name" keys, text becomes "#text", a child element which occurs once is
// stored as a map and repeated children become ordered []any. Consumers
// should pass child values through AsSequence. Resolvers of this module walk
// Node with typed accessors, map form is kept for external consumers.
func (n *Node) ToMap() map[string]any {
	if n == nil {
		return nil
	}
	m := make(map[string]any, len(n.el.Attr)+1)
	for _, a := range n.el.Attr {
		m[AttrPrefix+a.Key] = a.Value
	}
	if text := strings.TrimSpace(n.Text()); text != "" {
		m[TextKey] = n.Text()
	}
	for _, c := range n.Elements() {
		v := c.ToMap()
		switch prev := m[c.Tag()].(type) {
		case nil:
			m[c.Tag()] = v
		case []any:
			m[c.Tag()] = append(prev, v)
		default:
			m[c.Tag()] = []any{prev, v}
		}
	}
	return m
}

// AsSequence coerces scalar or sequence value to sequence. Nil becomes empty
// sequence. Only map form produced by ToMap needs it.
func AsSequence(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []map[string]any:
		res := make([]any, 0, len(t))
		for _, m := range t {
			res = append(res, m)
		}
		return res
	}
	return []any{v}
}

var entityReplacer = strings.NewReplacer(
	"&#x000A;", "\n", "&#x000a;", "\n", "&#xA;", "\n", "&#xa;", "\n", "&#10;", "\n",
	"&#x000D;", "\r", "&#x000d;", "\r", "&#xD;", "\r", "&#xd;", "\r", "&#13;", "\r",
	"&#x0009;", "\t", "&#x9;", "\t", "&#9;", "\t",
	"&#x00A0;", "\u00a0", "&#x00a0;", "\u00a0", "&#xA0;", "\u00a0", "&#xa0;", "\u00a0", "&#160;", "\u00a0",
	"&#x2028;", "\u2028", "&#8232;", "\u2028",
	"&#x2029;", "\u2029", "&#8233;", "\u2029",
	"&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'",
)

// DecodeEntities replaces line break, tab, no-break space and standard XML
// entities in text which did not go through Parse (text returned by Node is
// already decoded). Replacement is done in a single pass so produced
// characters are never decoded again.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}

var breakReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u2028", "\n", "\u2029", "\n")

// NormalizeLineBreaks maps CRLF, CR and Unicode line and paragraph
// separators to LF.
func NormalizeLineBreaks(s string) string {
	return breakReplacer.Replace(s)
}

// ParseNumberList parses whitespace separated list of numbers.
func ParseNumberList(s string) ([]float64, error) {
	fields := strings.Fields(s)
	res := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := ParseFloat(f)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", f, err)
		}
		res = append(res, v)
	}
	return res, nil
}

// ParseFloat parses number rejecting NaN and infinities, model values are
// always finite.
func ParseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

// ParseBounds parses "top left bottom right" geometry string.
func ParseBounds(s string) ([4]float64, bool) {
	var b [4]float64
	v, err := ParseNumberList(s)
	if err != nil || len(v) != 4 {
		return b, false
	}
	copy(b[:], v)
	return b, true
}

// ParseTransform parses "a b c d tx ty" affine matrix string.
func ParseTransform(s string) ([6]float64, bool) {
	var m [6]float64
	v, err := ParseNumberList(s)
	if err != nil || len(v) != 6 {
		return m, false
	}
	copy(m[:], v)
	return m, true
}

// ParsePoint parses "x y" pair.
func ParsePoint(s string) (float64, float64, bool) {
	v, err := ParseNumberList(s)
	if err != nil || len(v) != 2 {
		return 0, 0, false
	}
	return v[0], v[1], true
}
