package images

import (
	"bytes"
	"io"
	"math"

	"github.com/srwiley/oksvg"
)

// maxSVGDim caps the size reported for SVG with absurd viewBox values.
const maxSVGDim = 8192

// IsSVG checks if leading bytes look like SVG document. SVG is text so type
// sniffing does not detect it.
func IsSVG(head []byte) bool {
	head = bytes.TrimLeft(head, "\xef\xbb\xbf \t\r\n")
	if !bytes.HasPrefix(head, []byte("<")) {
		return false
	}
	return bytes.Contains(head, []byte("<svg"))
}

// SVGSize returns intrinsic size from SVG viewBox, zero when viewBox has no
// size.
func SVGSize(r io.Reader) (int, int, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return 0, 0, err
	}
	w := min(int(math.Ceil(icon.ViewBox.W)), maxSVGDim)
	h := min(int(math.Ceil(icon.ViewBox.H)), maxSVGDim)
	return max(w, 0), max(h, 0), nil
}
