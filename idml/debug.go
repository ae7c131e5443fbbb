package idml

import (
	"maps"
	"slices"
	"sort"
	"strconv"

	"github.com/maruel/natural"

	"idmlc/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the resolved document. It exists solely
// for manual inspection during debugging and is stored in debug reports.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.MaxText = 200

	tw.Line(0, "Document id=%q name=%q dom=%q unit=%s dpi=%g", d.ID, d.Name, d.DOMVersion, d.Unit, d.DPI)
	tw.Line(1, "Offset x=%.2f y=%.2f", d.Offset.X, d.Offset.Y)
	for i, l := range d.Layers {
		tw.Line(1, "Layer[%d] self=%q name=%q visible=%t locked=%t", i, l.Self, l.Name, l.Visible, l.Locked)
	}
	for _, s := range d.MasterSpreads {
		tw.spread(1, s)
	}
	for _, s := range d.Spreads {
		tw.spread(1, s)
	}
	if len(d.MasterPages) > 0 {
		tw.Section(1, "MasterPages", len(d.MasterPages))
		for _, p := range d.MasterPages {
			tw.page(2, p)
		}
	}
	tw.Section(1, "Pages", len(d.Pages))
	for _, p := range d.Pages {
		tw.page(2, p)
	}
	for _, it := range d.Unassigned {
		tw.item(1, it)
	}
	tw.resources(1, &d.Resources)
	tw.stories(1, d.Stories)
	for _, img := range d.Images {
		tw.Line(1, "Image path=%q size=%d embedded=%t mime=%q %dx%d", img.Path, img.Size, img.Embedded, img.MimeType, img.Width, img.Height)
	}
	tw.diagnostics(1, d.Diagnostics)
	return tw.String()
}

func (tw treeWriter) spread(depth int, s *Spread) {
	kind := "Spread"
	if s.IsMaster {
		kind = "MasterSpread"
	}
	tw.Line(depth, "%s self=%q source=%q pages=%v items=%d", kind, s.Self, s.Source, s.PageIDs, len(s.Items))
	if s.IsMaster {
		tw.Line(depth+1, "name=%q prefix=%q base=%q basedOn=%q", s.Name, s.NamePrefix, s.BaseName, s.BasedOn)
	}
}

func (tw treeWriter) page(depth int, p *Page) {
	tw.Line(depth, "Page self=%q name=%q master=%q spread=%q", p.Self, p.Name, p.AppliedMaster, p.SpreadParent)
	tw.bounds(depth+1, "Bounds", p.Bounds)
	if p.IsDefaultPage {
		tw.Line(depth+1, "synthesized from %s", p.DetectionSource)
	}
	if p.BackgroundColor != "" {
		tw.Line(depth+1, "background=%q", p.BackgroundColor)
	}
	m := p.Margins
	tw.Line(depth+1, "Margins top=%.2f left=%.2f bottom=%.2f right=%.2f columns=%d", m.Top, m.Left, m.Bottom, m.Right, m.ColumnCount)
	for _, it := range p.Items {
		tw.item(depth+1, it)
	}
}

func (tw treeWriter) bounds(depth int, label string, b Bounds) {
	tw.Line(depth, "%s top=%.2f left=%.2f bottom=%.2f right=%.2f (%.2fx%.2f)", label, b.Top, b.Left, b.Bottom, b.Right, b.Width, b.Height)
}

func (tw treeWriter) item(depth int, it *PageItem) {
	tw.Line(depth, "%s self=%q name=%q geometry=%s", it.Kind, it.Self, it.Name, it.GeometrySource)
	tw.bounds(depth+1, "Bounds", it.Bounds)
	tw.Line(depth+1, "Position x=%.2f y=%.2f rotation=%.2f", it.Position.X, it.Position.Y, it.Rotation)
	if it.ParentGroup != "" {
		tw.Line(depth+1, "group=%q", it.ParentGroup)
	}
	if cf := it.ContentFrame; cf.IsContentFrame {
		tw.Line(depth+1, "ContentFrame type=%q placed=%t embedded=%t placeholder=%t", cf.ContentType, cf.HasPlacedContent, cf.IsEmbedded, cf.IsPlaceholder)
	}
	if pc := it.Placed; pc != nil {
		tw.Line(depth+1, "Placed %s href=%q package=%q", pc.Type, pc.Href, pc.PackagePath)
	}
	if tf := it.TextFrame; tf != nil {
		tw.Line(depth+1, "TextFrame story=%q columns=%d baseline=%s", it.ParentStory, tf.Columns, tf.FirstBaselineOffset)
		if r := tf.Metrics; r != nil {
			tw.Line(depth+2, "lines=%d height=%.2f/%.2f overflow=%t", r.Lines, r.TextHeight, r.ContentHeight, r.Overflow)
		}
		if f := tf.Fit; f != nil {
			tw.Line(depth+2, "fit scale=%.3f size=%.2f overflows=%t", f.Scale, f.FontSize, f.StillOverflows)
		}
	}
}

func (tw treeWriter) resources(depth int, r *Resources) {
	for _, set := range []struct {
		label  string
		styles map[string]*Style
	}{
		{"ParagraphStyles", r.ParagraphStyles},
		{"CharacterStyles", r.CharacterStyles},
	} {
		tw.Section(depth, set.label, len(set.styles))
		for _, k := range sortedKeys(set.styles) {
			s := set.styles[k]
			tw.Line(depth+1, "%q name=%q basedOn=%q font=%q size=%s", k, s.Name, s.BasedOn, deref(s.AppliedFont), floatOrDash(s.PointSize))
		}
	}
	if r.Fonts != nil {
		tw.Line(depth, "FontFamilies: %d fallback=%q", len(r.Fonts.Families), r.Fonts.Fallback())
		for _, f := range r.Fonts.Families {
			tw.Line(depth+1, "%q fonts=%d", f.Name, len(f.Fonts))
		}
	}
	tw.Section(depth, "Colors", len(r.Colors))
	for _, k := range sortedKeys(r.Colors) {
		c := r.Colors[k]
		tw.Line(depth+1, "%q %s rgb=%v source=%s custom=%t", k, c.Hex, c.RGB, c.Source, c.IsCustom)
	}
	tw.Section(depth, "Gradients", len(r.Gradients))
	for _, k := range sortedKeys(r.Gradients) {
		tw.Line(depth+1, "%q stops=%d", k, len(r.Gradients[k].Stops))
	}
}

func (tw treeWriter) stories(depth int, stories map[string]*Story) {
	tw.Section(depth, "Stories", len(stories))
	for _, k := range sortedKeys(stories) {
		st := stories[k]
		tw.Line(depth+1, "Story self=%q chars=%d words=%d runs=%d", st.Self, st.Stats.Characters, st.Stats.Words, len(st.Runs))
		for i, r := range st.Runs {
			tw.Line(depth+2, "Run[%d] p=%d font=%q %s %.2fpx", i, r.Paragraph, r.Format.FontFamily, r.Format.FontStyle, r.Format.FontSize)
			tw.TextBlock(depth+3, "Text", r.Text)
		}
	}
}

func (tw treeWriter) diagnostics(depth int, d *Diagnostics) {
	if d == nil {
		return
	}
	c := d.Counters
	tw.Line(depth, "Diagnostics pages=%q items=%d skipped=%d defaulted=%d frames=%d linked=%d embedded=%d overflowing=%d",
		d.PageDetection, c.Items, c.SkippedItems, c.DefaultedGeometry, c.ContentFrames, c.LinkedImages, c.EmbeddedImages, c.OverflowingFrames)
	for _, i := range d.Issues {
		tw.Line(depth+1, "%s %s", i.Severity, i.Error())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	sort.Sort(natural.StringSlice(keys))
	return keys
}

func floatOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
