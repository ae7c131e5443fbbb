package idml

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

const elementsSpreadXML = `<idPkg:Spread xmlns:idPkg="http://ns.adobe.com/AdobeInDesign/idml/1.0/packaging">
<Spread Self="sp1" PageCount="2" BindingLocation="1" ItemTransform="1 0 0 1 0 0">
	<Page Self="p1" Name="1" GeometricBounds="0 0 792 612" ItemTransform="1 0 0 1 -612 -396" AppliedMaster="m1"/>
	<Page Self="p2" Name="2" GeometricBounds="0 0 792 612" ItemTransform="1 0 0 1 0 -396">
		<Rectangle Self="onpage" GeometricBounds="0 0 10 10" ItemTransform="1 0 0 1 -600 0"/>
	</Page>
	<Rectangle Self="rect" Name="[YOUR IMAGE HERE]" GeometricBounds="-100 100 0 300" ItemTransform="1 0 0 1 0 0"
		StrokeWeight="2" FillColor="Color/Black" TopLeftCornerOption="RoundedCorner" TopLeftCornerRadius="12" ItemLayer="l1"/>
	<Oval Self="oval" ItemTransform="1 0 0 1 -500 -100">
		<Properties>
			<PathGeometry>
				<GeometryPathType PathOpen="false">
					<PathPointArray>
						<PathPointType Anchor="-10 -20" LeftDirection="-10 -20" RightDirection="-10 -20"/>
						<PathPointType Anchor="30 -20"/>
						<PathPointType Anchor="30 40"/>
						<PathPointType Anchor="bogus"/>
					</PathPointArray>
				</GeometryPathType>
			</PathGeometry>
		</Properties>
	</Oval>
	<Polygon Self="poly" ItemTransform="1 0 0 1 50 60"/>
	<GraphicLine Self="line"/>
	<Rectangle Name="no self"/>
	<TextFrame Self="tf" ParentStory="u1" GeometricBounds="0 0 100 200" ItemTransform="1 0 0 1 100 0">
		<TextFramePreference TextColumnCount="2" InsetSpacing="4"/>
	</TextFrame>
	<Group Self="grp" ItemTransform="1 0 0 1 -300 0">
		<Rectangle Self="child" GeometricBounds="0 0 50 50" ItemTransform="1 0 0 1 10 10">
			<Image Self="img" href="photo.png"/>
		</Rectangle>
		<Group Self="inner" ItemTransform="1 0 0 1 0 100">
			<Rectangle Self="grandchild" GeometricBounds="0 0 5 5"/>
		</Group>
	</Group>
	<Table Self="tbl" BodyRowCount="3" HeaderRowCount="1" ColumnCount="4"/>
</Spread>
</idPkg:Spread>`

func parseTestSpread(t *testing.T) (*Spread, *Diagnostics) {
	t.Helper()
	diag := testDiag(t)
	sc := spreadContext{
		textFrames: defaultPreferences().TextFrame,
		images:     imageIndex([]string{"Links/photo.png"}),
		diag:       diag,
		log:        zaptest.NewLogger(t),
	}
	s := parseSpread(mustParse(t, elementsSpreadXML), "Spreads/Spread_sp1.xml", false, sc)
	if s == nil {
		t.Fatal("parseSpread() = nil")
	}
	return s, diag
}

func itemsByID(items []*PageItem) map[string]*PageItem {
	m := make(map[string]*PageItem, len(items))
	for _, it := range items {
		m[it.Self] = it
	}
	return m
}

func TestParseSpread(t *testing.T) {
	s, diag := parseTestSpread(t)

	if s.Self != "sp1" || s.PageCount != 2 || s.BindingLocation != 1 || len(s.pages) != 2 {
		t.Errorf("spread = %+v", s)
	}
	if got := []string{"p1", "p2"}; s.PageIDs[0] != got[0] || s.PageIDs[1] != got[1] {
		t.Errorf("page ids = %v", s.PageIDs)
	}

	want := []string{"onpage", "rect", "oval", "poly", "line", "tf", "grp", "child", "inner", "grandchild", "tbl"}
	if len(s.Items) != len(want) {
		t.Fatalf("items = %d, want %d", len(s.Items), len(want))
	}
	for i, it := range s.Items {
		if it.Self != want[i] {
			t.Errorf("item[%d] = %q, want %q", i, it.Self, want[i])
		}
	}
	if diag.Counters.SkippedItems != 1 || diag.Counters.Items != len(want) {
		t.Errorf("counters = %+v", diag.Counters)
	}
}

func TestParseSpread_Geometry(t *testing.T) {
	s, diag := parseTestSpread(t)
	items := itemsByID(s.Items)

	tests := []struct {
		self   string
		source string
		bounds Bounds
	}{
		{"rect", GeometryBounds, NewBounds(-100, 100, 0, 300)},
		{"oval", GeometryPath, NewBounds(-20, -10, 40, 30)},
		{"poly", GeometryTransform, NewBounds(0, 0, 100, 100)},
		{"line", GeometryDefault, NewBounds(0, 0, 100, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.self, func(t *testing.T) {
			it := items[tt.self]
			if it.GeometrySource != tt.source || it.Bounds != tt.bounds {
				t.Errorf("%s geometry = %s %+v, want %s %+v", tt.self, it.GeometrySource, it.Bounds, tt.source, tt.bounds)
			}
		})
	}
	if items["poly"].Transform.TX != 50 {
		t.Errorf("transform default box must keep translation: %+v", items["poly"].Transform)
	}
	if diag.Counters.DefaultedGeometry != 5 {
		t.Errorf("defaulted geometry = %d", diag.Counters.DefaultedGeometry)
	}
}

func TestParseSpread_Payloads(t *testing.T) {
	s, diag := parseTestSpread(t)
	items := itemsByID(s.Items)

	rect := items["rect"]
	if !rect.ContentFrame.IsContentFrame || !rect.ContentFrame.IsPlaceholder || rect.ContentFrame.HasPlacedContent {
		t.Errorf("placeholder frame = %+v", rect.ContentFrame)
	}
	if rect.Corners == nil || rect.Corners.TopLeft != 12 || rect.Corners.TopRight != 0 || rect.Corners.Option != "RoundedCorner" {
		t.Errorf("corners = %+v", rect.Corners)
	}
	if rect.Layer != "l1" || rect.FillColor != "Color/Black" || rect.StrokeWeight != 2 {
		t.Errorf("rect = %+v", rect)
	}

	child := items["child"]
	if !child.ContentFrame.HasPlacedContent || !child.ContentFrame.IsEmbedded || child.Placed.PackagePath != "Links/photo.png" {
		t.Errorf("content frame = %+v placed = %+v", child.ContentFrame, child.Placed)
	}
	if child.ParentGroup != "grp" || items["grandchild"].ParentGroup != "inner" {
		t.Error("group membership not recorded")
	}
	if grp := items["grp"]; len(grp.Children) != 2 || grp.Children[0] != "child" || grp.Children[1] != "inner" {
		t.Errorf("group children = %v", grp.Children)
	}
	if tx := items["grandchild"].spreadTransform.TX; tx != -300 {
		t.Errorf("nested spread transform tx = %v", tx)
	}
	if ty := items["grandchild"].spreadTransform.TY; ty != 100 {
		t.Errorf("nested spread transform ty = %v", ty)
	}

	tf := items["tf"].TextFrame
	if tf == nil || tf.Columns != 2 || tf.Insets.Left != 4 || tf.FirstBaselineOffset != "AscentOffset" {
		t.Errorf("text frame = %+v", tf)
	}
	if tbl := items["tbl"].Table; tbl == nil || tbl.Rows != 4 || tbl.Columns != 4 {
		t.Errorf("table = %+v", tbl)
	}

	c := diag.Counters
	if c.ContentFrames != 2 || c.Placeholders != 1 || c.EmbeddedImages != 1 || c.LinkedImages != 0 || c.TextFrames != 1 {
		t.Errorf("counters = %+v", c)
	}
}

func TestAssignPages(t *testing.T) {
	s, _ := parseTestSpread(t)
	unassigned := assignPages(s.Items, s.pages)
	if len(unassigned) != 0 {
		t.Errorf("unassigned = %d", len(unassigned))
	}
	items := itemsByID(s.Items)

	tests := []struct {
		self string
		page string
	}{
		{"onpage", "p2"},
		{"rect", "p2"},
		{"oval", "p1"},
		{"child", "p1"},
		{"tf", "p2"},
	}
	for _, tt := range tests {
		if got := items[tt.self].Page; got != tt.page {
			t.Errorf("%s page = %q, want %q", tt.self, got, tt.page)
		}
	}

	total := 0
	for _, p := range s.pages {
		total += len(p.Items)
	}
	if total != len(s.Items) {
		t.Errorf("items on pages = %d, want %d", total, len(s.Items))
	}

	if rest := assignPages([]*PageItem{item("x", 0, 0, 1, 1, 0, 0, 0)}, nil); len(rest) != 1 {
		t.Errorf("items without pages must be returned, got %d", len(rest))
	}
}
