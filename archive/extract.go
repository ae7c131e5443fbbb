package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"idmlc/utils/images"
)

// MimeType is the content of "mimetype" member of a well formed package.
const MimeType = "application/vnd.adobe.indesign-idml-package"

// maxTextMember limits the size of a single XML member read into memory.
const maxTextMember = 256 << 20

// Kind classifies package members by path.
type Kind int

const (
	KindOther Kind = iota
	KindDesignMap
	KindResource
	KindSpread
	KindMasterSpread
	KindStory
	KindXML
	KindMeta
	KindMimeType
	KindImage
)

var kindNames = [...]string{"other", "designmap", "resource", "spread", "master-spread", "story", "xml", "meta", "mimetype", "image"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Classify returns member class for the path inside package.
func Classify(name string) Kind {
	switch {
	case name == "designmap.xml":
		return KindDesignMap
	case name == "mimetype":
		return KindMimeType
	case strings.HasPrefix(name, "Links/"):
		return KindImage
	case strings.HasPrefix(name, "META-INF/"):
		return KindMeta
	case images.HasImageExt(name):
		return KindImage
	case !strings.EqualFold(path.Ext(name), ".xml"):
		return KindOther
	case strings.HasPrefix(name, "Resources/"):
		return KindResource
	case strings.HasPrefix(name, "MasterSpreads/"):
		return KindMasterSpread
	case strings.HasPrefix(name, "Spreads/"):
		return KindSpread
	case strings.HasPrefix(name, "Stories/"):
		return KindStory
	case strings.HasPrefix(name, "XML/"):
		return KindXML
	}
	return KindOther
}

// Options controls extraction.
type Options struct {
	// Probe enables image type and dimension detection.
	Probe bool
	// ProbeOrientation fully decodes raster images to apply EXIF orientation.
	ProbeOrientation bool
	// CodePage is used to decode entry names not marked as UTF-8.
	CodePage encoding.Encoding
	// Workers limits concurrent member reads, defaults to number of CPUs.
	Workers int
}

// ImageEntry is a binary member of the package.
type ImageEntry struct {
	Path string `json:"path" yaml:"path"`
	Size int64  `json:"size" yaml:"size"`
	// Embedded is set for images packaged outside of "Links/", which holds
	// copies of linked assets.
	Embedded    bool `json:"embedded" yaml:"embedded"`
	images.Info `yaml:",inline"`
}

// SkippedEntry records member which was not extracted.
type SkippedEntry struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Package is extracted content of IDML container.
type Package struct {
	Name     string
	MimeType string
	Files    map[string]string
	Images   []ImageEntry
	Skipped  []SkippedEntry
}

// Members returns names of text members of the requested class in natural
// sort order.
func (p *Package) Members(kind Kind) []string {
	var names []string
	for name := range p.Files {
		if Classify(name) == kind {
			names = append(names, name)
		}
	}
	slices.SortFunc(names, compareNatural)
	return names
}

// Open reads IDML package from file.
func Open(ctx context.Context, fname string, opts Options, log *zap.Logger) (_ *Package, rerr error) {
	zr, err := zip.OpenReader(fname)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("unable to open package '%s': %w", fname, err)
	}
	defer func() {
		if err := zr.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("unable to close package '%s': %w", fname, err)
		}
	}()
	return extract(ctx, &zr.Reader, path.Base(fname), opts, log)
}

// Read reads IDML package from r, name is used for reporting only.
func Read(ctx context.Context, r io.ReaderAt, size int64, name string, opts Options, log *zap.Logger) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	// insecure names are reported and skipped by Walk
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("unable to open package '%s': %w", name, err)
	}
	return extract(ctx, zr, name, opts, log)
}

func extract(ctx context.Context, zr *zip.Reader, name string, opts Options, log *zap.Logger) (*Package, error) {
	pkg := &Package{Name: name, Files: make(map[string]string)}

	var mu sync.Mutex
	skip := func(member, reason string) {
		log.Warn("Skipping package member", zap.String("package", name), zap.String("member", member), zap.String("reason", reason))
		mu.Lock()
		pkg.Skipped = append(pkg.Skipped, SkippedEntry{Path: member, Reason: reason})
		mu.Unlock()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	err := Walk(zr, "", func(f *zip.File) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		member := entryName(f, opts.CodePage, log)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			switch kind := Classify(member); kind {
			case KindImage:
				entry, err := readImage(f, member, opts, log)
				if err != nil {
					skip(member, err.Error())
					return nil
				}
				mu.Lock()
				pkg.Images = append(pkg.Images, entry)
				mu.Unlock()
			case KindOther, KindMeta:
				log.Debug("Ignoring package member", zap.String("member", member), zap.Stringer("kind", kind))
			default:
				text, err := readText(f)
				if err != nil {
					skip(member, err.Error())
					return nil
				}
				mu.Lock()
				pkg.Files[member] = text
				mu.Unlock()
			}
			return nil
		})
		return nil
	}, skip)

	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("extraction of '%s' interrupted: %w", name, err)
		}
		return nil, fmt.Errorf("unable to extract '%s': %w", name, err)
	}

	if mt, ok := pkg.Files["mimetype"]; ok {
		pkg.MimeType = strings.TrimSpace(mt)
		delete(pkg.Files, "mimetype")
		if pkg.MimeType != MimeType {
			log.Warn("Unexpected package mimetype", zap.String("package", name), zap.String("mimetype", pkg.MimeType))
		}
	} else {
		log.Warn("Package has no mimetype member", zap.String("package", name))
	}

	slices.SortFunc(pkg.Images, func(a, b ImageEntry) int { return compareNatural(a.Path, b.Path) })
	slices.SortFunc(pkg.Skipped, func(a, b SkippedEntry) int { return compareNatural(a.Path, b.Path) })

	log.Debug("Package extracted", zap.String("package", name),
		zap.Int("files", len(pkg.Files)), zap.Int("images", len(pkg.Images)), zap.Int("skipped", len(pkg.Skipped)))
	return pkg, nil
}

func entryName(f *zip.File, cp encoding.Encoding, log *zap.Logger) string {
	name := f.FileHeader.Name
	if cp == nil || !f.FileHeader.NonUTF8 {
		return name
	}
	// forcing zip file name encoding
	n, err := cp.NewDecoder().String(name)
	if err != nil {
		label, _ := ianaindex.IANA.Name(cp)
		log.Warn("Unable to convert member name from specified encoding",
			zap.String("charset", label), zap.String("path", name), zap.Error(err))
		return name
	}
	return n
}

func readText(f *zip.File) (string, error) {
	if f.UncompressedSize64 > maxTextMember {
		return "", fmt.Errorf("member is too large (%d bytes)", f.UncompressedSize64)
	}
	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("unable to open member: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, maxTextMember))
	if err != nil {
		return "", fmt.Errorf("unable to read member: %w", err)
	}
	return string(data), nil
}

func readImage(f *zip.File, member string, opts Options, log *zap.Logger) (ImageEntry, error) {
	entry := ImageEntry{
		Path:     member,
		Size:     int64(f.UncompressedSize64),
		Embedded: !strings.HasPrefix(member, "Links/"),
	}
	if !opts.Probe {
		return entry, nil
	}

	r, err := f.Open()
	if err != nil {
		return entry, fmt.Errorf("unable to open member: %w", err)
	}
	defer r.Close()

	info, err := images.Probe(r, member, opts.ProbeOrientation)
	if err != nil {
		// keep what we know, image is still part of the package
		log.Warn("Unable to probe image", zap.String("member", member), zap.Error(err))
	}
	entry.Info = info
	return entry, nil
}

func compareNatural(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	}
	return 1
}
