package text

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// missingGlyphEm is advance used for runes the font does not have.
const missingGlyphEm = 0.5

type faceKind int

const (
	faceRegular faceKind = iota
	faceBold
	faceItalic
	faceBoldItalic
)

// GoFonts measures text with glyph metrics of Go font family. It is safe
// for concurrent use.
type GoFonts struct {
	mu    sync.Mutex
	buf   sfnt.Buffer
	faces [4]*sfnt.Font
}

// NewGoFonts parses embedded Go fonts.
func NewGoFonts() (*GoFonts, error) {
	m := &GoFonts{}
	for i, data := range [][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF} {
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse embedded font %d: %w", i, err)
		}
		m.faces[i] = f
	}
	return m, nil
}

// faceFor picks face by InDesign font style name ("Bold Italic", "Semibold",
// "Oblique" and such).
func faceFor(style string) faceKind {
	s := strings.ToLower(style)
	bold := strings.Contains(s, "bold") || strings.Contains(s, "black") || strings.Contains(s, "heavy")
	italic := strings.Contains(s, "italic") || strings.Contains(s, "oblique")
	switch {
	case bold && italic:
		return faceBoldItalic
	case bold:
		return faceBold
	case italic:
		return faceItalic
	}
	return faceRegular
}

// Advance implements Measurer.
func (m *GoFonts) Advance(s string, fontSize float64, fontStyle string) float64 {
	if fontSize <= 0 || s == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.faces[faceFor(fontStyle)]
	ppem := fixed.Int26_6(fontSize * 64)

	var (
		total fixed.Int26_6
		prev  sfnt.GlyphIndex
	)
	for i, r := range []rune(s) {
		idx, err := f.GlyphIndex(&m.buf, r)
		if err != nil || idx == 0 {
			total += fixed.Int26_6(missingGlyphEm * fontSize * 64)
			prev = 0
			continue
		}
		if i > 0 && prev != 0 {
			if k, err := f.Kern(&m.buf, prev, idx, ppem, font.HintingNone); err == nil {
				total += k
			}
		}
		adv, err := f.GlyphAdvance(&m.buf, idx, ppem, font.HintingNone)
		if err != nil {
			adv = fixed.Int26_6(missingGlyphEm * fontSize * 64)
		}
		total += adv
		prev = idx
	}
	return float64(total) / 64
}
