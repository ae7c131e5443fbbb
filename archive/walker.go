// Package archive builds Walk abstraction on top of "archive/zip" and
// extracts IDML packages.
package archive

import (
	"archive/zip"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(file *zip.File) error

// SkipFunc is called for entries Walk refuses to visit.
type SkipFunc func(name, reason string)

// Walk calls walkFn for every regular file in the archive whose name starts
// with prefix. Directory entries are never visited. Entries with path
// traversal components ("..") or absolute paths are reported to skipFn (when
// not nil) and skipped to prevent Zip Slip attacks.
func Walk(r *zip.Reader, prefix string, walkFn WalkFunc, skipFn SkipFunc) error {
	for _, f := range r.File {
		name := f.FileHeader.Name
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if !isSafePath(name) {
			if skipFn != nil {
				skipFn(name, "unsafe path (absolute or contains path traversal)")
			}
			continue
		}
		if err := walkFn(f); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) || (len(name) > 1 && name[1] == ':') {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
