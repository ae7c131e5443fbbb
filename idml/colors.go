package idml

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"idmlc/idml/xmltree"
)

// Color sources, in order they are tried.
const (
	ColorDirectRGB  = "direct-rgb"
	ColorDirectCMYK = "direct-cmyk"
	ColorValueRGB   = "color-value-rgb"
	ColorValueCMYK  = "color-value-cmyk"
)

// Color swatch with resolved RGB value.
type Color struct {
	Self     string    `json:"self" yaml:"self"`
	Name     string    `json:"name" yaml:"name"`
	Model    string    `json:"model,omitempty" yaml:"model,omitempty"`
	Space    string    `json:"space,omitempty" yaml:"space,omitempty"`
	Values   []float64 `json:"values,omitempty" yaml:"values,omitempty"`
	RGB      [3]int    `json:"rgb" yaml:"rgb"`
	Hex      string    `json:"hex,omitempty" yaml:"hex,omitempty"`
	Source   string    `json:"source,omitempty" yaml:"source,omitempty"`
	IsCustom bool      `json:"isCustom" yaml:"isCustom"`
}

// standardColors are swatches every InDesign document has.
var standardColors = map[string]bool{
	"Black": true, "White": true, "Paper": true, "Registration": true, "None": true,
	"Cyan": true, "Magenta": true, "Yellow": true, "Red": true, "Green": true, "Blue": true,
}

var (
	reCMYKName   = regexp.MustCompile(`^C=[\d.]+ M=[\d.]+ Y=[\d.]+ K=[\d.]+$`)
	reRGBName    = regexp.MustCompile(`^R=[\d.]+ G=[\d.]+ B=[\d.]+$`)
	reHiddenID   = regexp.MustCompile(`^(Color/)?u[0-9a-fA-F]+$`)
	genericNames = map[string]bool{"": true, "Color": true, "Untitled": true, "New Color Swatch": true}
)

// IsCustomColor classifies swatch as user defined. Standard swatches,
// swatches named after their own channel values and hidden colors without a
// real name are not custom, InDesign emits unreliable RGB ColorValue for
// those.
func IsCustomColor(self, name string) bool {
	id := strings.TrimPrefix(self, "Color/")
	if standardColors[id] || standardColors[name] {
		return false
	}
	if reCMYKName.MatchString(id) || reRGBName.MatchString(id) || reCMYKName.MatchString(name) || reRGBName.MatchString(name) {
		return false
	}
	if strings.HasPrefix(name, "$ID/") || genericNames[name] {
		return false
	}
	return !reHiddenID.MatchString(name)
}

// resolveColor determines channel values of Color element. It tries direct
// RGB attributes, then direct CMYK attributes and then ColorValue, which is
// honored for RGB space only when color is custom. Colors without usable
// data are reported as not ok and must not be stored.
func resolveColor(el *xmltree.Node) (*Color, bool) {
	c := &Color{
		Self:  el.Attr("Self"),
		Name:  el.Attr("Name"),
		Model: el.Attr("Model"),
		Space: el.Attr("Space"),
	}
	if c.Self == "" {
		return nil, false
	}
	c.IsCustom = IsCustomColor(c.Self, c.Name)

	if rgb, ok := directChannels(el, "Red", "Green", "Blue"); ok {
		c.setRGB(rgb[0], rgb[1], rgb[2], rgb, ColorDirectRGB)
		return c, true
	}
	if cmyk, ok := directChannels(el, "Cyan", "Magenta", "Yellow", "Black"); ok {
		r, g, b := cmykToRGB(cmyk[0], cmyk[1], cmyk[2], cmyk[3])
		c.setRGB(r, g, b, cmyk, ColorDirectCMYK)
		return c, true
	}

	values, err := xmltree.ParseNumberList(el.Attr("ColorValue"))
	if err != nil {
		return nil, false
	}
	switch {
	case strings.EqualFold(c.Space, "CMYK") && len(values) == 4:
		r, g, b := cmykToRGB(values[0], values[1], values[2], values[3])
		c.setRGB(r, g, b, values, ColorValueCMYK)
		return c, true
	case strings.EqualFold(c.Space, "RGB") && len(values) == 3 && c.IsCustom:
		c.setRGB(values[0], values[1], values[2], values, ColorValueRGB)
		return c, true
	}
	return nil, false
}

// directChannels returns values of channel attributes when at least one of
// them is present and non zero.
func directChannels(el *xmltree.Node, names ...string) ([]float64, bool) {
	vals := make([]float64, len(names))
	nonzero := false
	for i, name := range names {
		v, ok := el.FloatOK(name)
		if !ok {
			continue
		}
		vals[i] = v
		nonzero = nonzero || v != 0
	}
	return vals, nonzero
}

func (c *Color) setRGB(r, g, b float64, values []float64, source string) {
	c.RGB = [3]int{clampChannel(r), clampChannel(g), clampChannel(b)}
	c.Hex = fmt.Sprintf("#%02x%02x%02x", c.RGB[0], c.RGB[1], c.RGB[2])
	c.Values = values
	c.Source = source
}

// cmykToRGB converts percentages to 0..255 channels.
func cmykToRGB(c, m, y, k float64) (float64, float64, float64) {
	kf := 1 - k/100
	return 255 * (1 - c/100) * kf, 255 * (1 - m/100) * kf, 255 * (1 - y/100) * kf
}

func clampChannel(v float64) int {
	return int(math.Round(math.Min(math.Max(v, 0), 255)))
}
