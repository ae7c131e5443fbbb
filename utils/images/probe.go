// Package images probes image files referenced by or packaged with a
// document without keeping their data in memory.
package images

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// sniffLen is the number of leading bytes filetype needs to match all
// supported types.
const sniffLen = 262

// Info describes probed image.
type Info struct {
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Width    int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int    `json:"height,omitempty" yaml:"height,omitempty"`
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true, ".svg": true, ".psd": true,
	".ai": true, ".eps": true, ".pdf": true,
}

// HasImageExt checks if file name has one of the extensions placed graphics
// usually have.
func HasImageExt(name string) bool {
	return imageExts[strings.ToLower(path.Ext(name))]
}

// Probe detects type and dimensions of the image read from r. Only the
// header is consumed unless orientation is requested, in which case raster
// images are fully decoded so EXIF orientation can be applied to reported
// dimensions. Formats which cannot be decoded (PSD, EPS, PDF...) still get
// their type, with zero dimensions and no error.
func Probe(r io.Reader, name string, orientation bool) (Info, error) {
	br := bufio.NewReaderSize(r, 4096)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return Info{}, fmt.Errorf("unable to read image header: %w", err)
	}

	var info Info
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		info.MimeType = kind.MIME.Value
	}

	if info.MimeType == "" && IsSVG(head) {
		info.MimeType = "image/svg+xml"
		if info.Width, info.Height, err = SVGSize(br); err != nil {
			return info, fmt.Errorf("unable to read svg: %w", err)
		}
		return info, nil
	}
	if info.MimeType == "" {
		info.MimeType = mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	}
	if !strings.HasPrefix(info.MimeType, "image/") {
		return info, nil
	}

	if orientation {
		img, err := imaging.Decode(br, imaging.AutoOrientation(true))
		if err != nil {
			return info, nil
		}
		info.Width, info.Height = img.Bounds().Dx(), img.Bounds().Dy()
		return info, nil
	}

	cfg, _, err := image.DecodeConfig(br)
	if err != nil {
		// not decodable by registered decoders (psd and such)
		return info, nil
	}
	info.Width, info.Height = cfg.Width, cfg.Height
	return info, nil
}
