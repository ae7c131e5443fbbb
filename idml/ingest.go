package idml

import (
	"context"
	"fmt"
	"path"
	"runtime/debug"
	"slices"
	"strings"

	"go.uber.org/zap"

	"idmlc/archive"
	"idmlc/idml/xmltree"
	"idmlc/text"
)

// Options controls ingestion.
type Options struct {
	// DPI is target resolution of pixel output.
	DPI float64
	// DefaultUnit is used when document does not declare known unit.
	DefaultUnit Unit
	// StrokePadding adds maximum stroke weight to coordinate offset.
	StrokePadding bool
	// MaxPosition is upper bound of valid pixel position.
	MaxPosition float64
	// DefaultFont is fallback family when document defines no fonts.
	DefaultFont string
	// FontScaling enables scale down to fit for overflowing frames.
	FontScaling bool
	// MaxReduction limits font scale down, 0.25 means at most 25%.
	MaxReduction float64
	// Measurer measures text advances, text frames are not measured when
	// nil.
	Measurer text.Measurer
	// Splitter counts words and sentences, may be nil.
	Splitter *text.Splitter
}

// ingester carries state of a single ingestion, it is not reused.
type ingester struct {
	pkg  *archive.Package
	opts Options
	doc  *Document
	dm   designMap
	diag *Diagnostics
	log  *zap.Logger
}

// Ingest resolves extracted package into document model. Recoverable
// problems never fail ingestion, they are reported in document diagnostics.
// Error is returned only when ingestion was interrupted.
func Ingest(ctx context.Context, pkg *archive.Package, opts Options, log *zap.Logger) (doc *Document, err error) {
	if pkg == nil {
		return nil, fmt.Errorf("no package to ingest")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ingest")

	defer func() {
		if r := recover(); r != nil {
			log.Error("Ingestion panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			doc, err = nil, fmt.Errorf("unable to ingest %s: %v", pkg.Name, r)
		}
	}()

	in := &ingester{pkg: pkg, opts: opts, log: log}
	in.diag = NewDiagnostics(log)
	in.doc = &Document{
		Name:        strings.TrimSuffix(path.Base(pkg.Name), path.Ext(pkg.Name)),
		Stories:     make(map[string]*Story),
		Images:      pkg.Images,
		Diagnostics: in.diag,
	}
	if in.doc.Images == nil {
		in.doc.Images = []archive.ImageEntry{}
	}

	stages := []struct {
		name string
		fn   func()
	}{
		{"archive", in.archiveIssues},
		{"resources", in.resources},
		{"structure", in.structure},
		{"stories", in.stories},
		{"units", in.units},
		{"offset", in.offset},
		{"metrics", in.metrics},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ingestion interrupted before %s: %w", st.name, err)
		}
		st.fn()
	}

	log.Debug("Document ingested",
		zap.String("id", in.doc.ID),
		zap.Int("pages", len(in.doc.Pages)),
		zap.Int("items", in.diag.Counters.Items),
		zap.Int("stories", len(in.doc.Stories)),
		zap.Int("warnings", in.diag.Count(SeverityWarning)),
		zap.Int("errors", in.diag.Count(SeverityError)))
	return in.doc, nil
}

// parse returns parsed member or nil, recording parse failure.
func (in *ingester) parse(name string) *xmltree.Node {
	data, ok := in.pkg.Files[name]
	if !ok {
		return nil
	}
	root, err := xmltree.Parse(data)
	if err != nil {
		in.diag.Error(StageParse, name, "", fmt.Sprintf("unable to parse fragment, skipped: %v", err))
		return nil
	}
	return root
}

func (in *ingester) archiveIssues() {
	for _, s := range in.pkg.Skipped {
		in.diag.Warn(StageArchive, s.Path, "", s.Reason)
	}
	in.diag.Counters.SkippedMembers = len(in.pkg.Skipped)
	if in.pkg.MimeType != "" && in.pkg.MimeType != archive.MimeType {
		in.diag.Warn(StageArchive, "mimetype", "", "unexpected package mime type "+in.pkg.MimeType)
	}
}

// resources must complete before anything reads resolver tables.
func (in *ingester) resources() {
	res := &in.doc.Resources
	res.ParagraphStyles = map[string]*Style{}
	res.CharacterStyles = map[string]*Style{}
	res.Colors = map[string]*Color{}
	res.Gradients = map[string]*Gradient{}
	in.doc.Preferences = defaultPreferences()

	log := in.log.Named("resources")
	for _, name := range in.pkg.Members(archive.KindResource) {
		root := in.parse(name)
		if root == nil {
			continue
		}
		switch strings.ToLower(path.Base(name)) {
		case "preferences.xml":
			in.doc.Preferences = parsePreferences(root, log)
		case "styles.xml":
			res.ParagraphStyles, res.CharacterStyles = parseStyles(root, in.diag, log)
		case "fonts.xml":
			res.Fonts = parseFonts(root, in.opts.DefaultFont, log)
		case "graphic.xml":
			res.Colors, res.Gradients = parseGraphic(root, in.diag, log)
		default:
			log.Debug("Resource ignored", zap.String("name", name))
		}
	}
	if res.Fonts == nil {
		res.Fonts = NewFontMap(in.opts.DefaultFont)
	}

	unit, ok := ParseUnit(in.doc.Preferences.View.HorizontalUnits)
	if !ok {
		unit = in.opts.DefaultUnit
		if _, known := pointsPerUnit[unit]; !known {
			unit = UnitPoints
		}
		in.diag.Warn(StageResources, "Resources/Preferences.xml", "",
			fmt.Sprintf("unknown measurement unit %q, using %s", in.doc.Preferences.View.HorizontalUnits, unit))
	}
	conv := NewConverter(unit, in.opts.DPI)
	in.doc.Unit, in.doc.DPI = conv.Unit, conv.DPI
}

func (in *ingester) converter() Converter {
	return NewConverter(in.doc.Unit, in.doc.DPI)
}

func (in *ingester) structure() {
	log := in.log.Named("structure")
	doc := in.doc

	root := in.parse(DesignMap)
	if root == nil {
		in.diag.Warn(StageStructure, DesignMap, "", "package has no usable designmap")
	}
	root = unwrap(root, "Document")
	in.dm = parseDesignMap(root, doc, log)
	doc.ID = documentID(doc.ID, log)

	names := make([]string, 0, len(in.pkg.Images))
	for _, img := range in.pkg.Images {
		names = append(names, img.Path)
	}
	sc := spreadContext{
		textFrames: doc.Preferences.TextFrame,
		images:     imageIndex(names),
		diag:       in.diag,
		log:        in.log.Named("elements"),
	}

	doc.MasterSpreads = []*Spread{}
	for _, name := range orderMembers(in.pkg, archive.KindMasterSpread, in.dm.masterSpreads, in.diag) {
		if r := in.parse(name); r != nil {
			if s := parseSpread(r, name, true, sc); s != nil {
				doc.MasterSpreads = append(doc.MasterSpreads, s)
			}
		}
	}
	doc.Spreads = []*Spread{}
	for _, name := range orderMembers(in.pkg, archive.KindSpread, in.dm.spreads, in.diag) {
		if r := in.parse(name); r != nil {
			if s := parseSpread(r, name, false, sc); s != nil {
				doc.Spreads = append(doc.Spreads, s)
			}
		}
	}

	doc.Pages = derivePages(root, doc.Spreads, doc.MasterSpreads, doc.Preferences, in.diag)
	doc.MasterPages = []*Page{}
	for _, m := range doc.MasterSpreads {
		doc.MasterPages = append(doc.MasterPages, m.pages...)
	}

	resolveMargins(doc.Pages, doc.MasterSpreads, doc.Preferences)
	resolveMargins(doc.MasterPages, doc.MasterSpreads, doc.Preferences)
	resolveBackgrounds(doc.Spreads)
	resolveBackgrounds(doc.MasterSpreads)
	validatePages(doc.Pages, in.diag, log)

	for _, s := range slices.Concat(doc.MasterSpreads, doc.Spreads) {
		unassigned := assignPages(s.Items, s.pages)
		for _, it := range unassigned {
			in.diag.Info(StageElements, s.Source, it.Self, "item is not on any page")
		}
		doc.Unassigned = append(doc.Unassigned, unassigned...)
	}
}

func (in *ingester) stories() {
	log := in.log.Named("stories")
	res := in.doc.Resources
	cascade := Cascader{
		Paragraph: res.ParagraphStyles,
		Character: res.CharacterStyles,
		Fonts:     res.Fonts,
		Conv:      in.converter(),
	}
	for _, name := range orderMembers(in.pkg, archive.KindStory, in.dm.stories, in.diag) {
		root := in.parse(name)
		if root == nil {
			continue
		}
		st := parseStory(root, name, cascade, in.opts.Splitter, log)
		if _, dup := in.doc.Stories[st.Self]; dup {
			in.diag.Warn(StageStories, name, st.Self, "duplicate story ignored")
			continue
		}
		in.doc.Stories[st.Self] = st
	}
	for _, it := range in.allItems() {
		if it.ParentStory != "" {
			if _, ok := in.doc.Stories[it.ParentStory]; !ok {
				in.diag.Warn(StageStories, it.Spread, it.Self, "parent story "+it.ParentStory+" not found")
			}
		}
	}
}

// units converts everything to pixels exactly once.
func (in *ingester) units() {
	conv := in.converter()
	for _, it := range in.allItems() {
		conv.Item(it)
		counted := it.GeometrySource == GeometryTransform || it.GeometrySource == GeometryDefault
		if checkItem(it, conv, in.diag) && !counted {
			in.diag.Counters.DefaultedGeometry++
		}
	}
	for _, p := range in.allPages() {
		conv.Page(p)
		checkPage(p, conv, in.diag)
	}
	for _, s := range in.doc.Resources.ParagraphStyles {
		conv.Style(s)
	}
	for _, s := range in.doc.Resources.CharacterStyles {
		conv.Style(s)
	}
}

func (in *ingester) offset() {
	items := in.allItems()
	off := ComputeOffset(items, in.opts.StrokePadding)
	in.doc.Offset = off
	in.diag.CoordinateShift = off
	if off != (Point{}) {
		in.log.Debug("Applying coordinate offset", zap.Float64("x", off.X), zap.Float64("y", off.Y))
	}
	ApplyOffset(items, in.allPages(), off, in.opts.MaxPosition, in.diag)
}

func (in *ingester) metrics() {
	if in.opts.Measurer == nil {
		return
	}
	for _, it := range in.allItems() {
		tf := it.TextFrame
		if tf == nil {
			continue
		}
		st, ok := in.doc.Stories[it.ParentStory]
		if !ok || st.Summary == nil {
			continue
		}
		format := st.Summary.TextFormat()
		frame := text.Frame{
			Width:         it.Bounds.Width,
			Height:        it.Bounds.Height,
			Insets:        tf.Insets,
			Columns:       tf.Columns,
			ColumnGutter:  tf.ColumnGutter,
			FirstBaseline: tf.FirstBaselineOffset,
		}
		res := text.Measure(st.Text, format, frame, in.opts.Measurer)
		tf.Metrics = &res
		if !res.Overflow {
			continue
		}
		in.diag.Counters.OverflowingFrames++
		in.diag.Info(StageMetrics, it.Spread, it.Self, fmt.Sprintf("text overflows frame by %.0f%%", (res.OverflowRatio-1)*100))
		if in.opts.FontScaling {
			fit := text.Fit(st.Text, format, frame, in.opts.Measurer, in.opts.MaxReduction)
			tf.Fit = &fit
		}
	}
}

// allItems returns items of master spreads and spreads in document order.
func (in *ingester) allItems() []*PageItem {
	var items []*PageItem
	for _, s := range in.doc.MasterSpreads {
		items = append(items, s.Items...)
	}
	for _, s := range in.doc.Spreads {
		items = append(items, s.Items...)
	}
	return items
}

// allPages returns document and master pages. Synthesized page may not
// belong to any spread.
func (in *ingester) allPages() []*Page {
	pages := make([]*Page, 0, len(in.doc.Pages)+len(in.doc.MasterPages))
	pages = append(pages, in.doc.Pages...)
	return append(pages, in.doc.MasterPages...)
}
