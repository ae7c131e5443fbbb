package convert

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"idmlc/archive"
)

// headerSize is enough for filetype to recognize zip container.
const headerSize = 262

// isPackageFile reports whether file at path is IDML package: zip container
// with ".idml" extension or zip container carrying IDML mimetype member.
func isPackageFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || kind.Extension != "zip" {
		return false, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".idml") {
		return true, nil
	}

	fi, err := f.Stat()
	if err != nil {
		return false, err
	}
	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		// damaged zip with other extension is not ours
		return false, nil
	}
	return hasMimeType(zr), nil
}

// hasMimeType checks "mimetype" member, which IDML writer always stores
// first.
func hasMimeType(zr *zip.Reader) bool {
	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return false
		}
		defer r.Close()
		data, err := io.ReadAll(io.LimitReader(r, 256))
		if err != nil {
			return false
		}
		return strings.TrimSpace(string(data)) == archive.MimeType
	}
	return false
}
