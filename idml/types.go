package idml

import (
	"idmlc/archive"
	"idmlc/text"
)

// Document is fully resolved IDML document.
type Document struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	DOMVersion  string  `json:"domVersion,omitempty" yaml:"domVersion,omitempty"`
	ActiveLayer string  `json:"activeLayer,omitempty" yaml:"activeLayer,omitempty"`
	Unit        Unit    `json:"unit" yaml:"unit"`
	DPI         float64 `json:"dpi" yaml:"dpi"`

	Layers        []Layer     `json:"layers" yaml:"layers"`
	Pages         []*Page     `json:"pages" yaml:"pages"`
	Spreads       []*Spread   `json:"spreads" yaml:"spreads"`
	MasterSpreads []*Spread   `json:"masterSpreads" yaml:"masterSpreads"`
	MasterPages   []*Page     `json:"masterPages" yaml:"masterPages"`
	Unassigned    []*PageItem `json:"unassignedItems,omitempty" yaml:"unassignedItems,omitempty"`

	Preferences Preferences          `json:"preferences" yaml:"preferences"`
	Resources   Resources            `json:"resources" yaml:"resources"`
	Stories     map[string]*Story    `json:"stories" yaml:"stories"`
	Images      []archive.ImageEntry `json:"images" yaml:"images"`

	Offset      Point        `json:"offset" yaml:"offset"`
	Diagnostics *Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// Layer is document layer.
type Layer struct {
	Self    string `json:"self" yaml:"self"`
	Name    string `json:"name" yaml:"name"`
	Visible bool   `json:"visible" yaml:"visible"`
	Locked  bool   `json:"locked" yaml:"locked"`
}

// Spread is spread or master spread.
type Spread struct {
	Self     string `json:"self" yaml:"self"`
	Source   string `json:"source" yaml:"source"`
	IsMaster bool   `json:"isMaster,omitempty" yaml:"isMaster,omitempty"`

	// master spreads only
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	NamePrefix string `json:"namePrefix,omitempty" yaml:"namePrefix,omitempty"`
	BaseName   string `json:"baseName,omitempty" yaml:"baseName,omitempty"`
	BasedOn    string `json:"basedOn,omitempty" yaml:"basedOn,omitempty"`

	BindingLocation   int       `json:"bindingLocation" yaml:"bindingLocation"`
	FlattenerOverride string    `json:"flattenerOverride,omitempty" yaml:"flattenerOverride,omitempty"`
	BackgroundColor   string    `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	PageCount         int       `json:"pageCount" yaml:"pageCount"`
	Transform         Transform `json:"transform" yaml:"transform"`
	PageIDs           []string  `json:"pages" yaml:"pages"`

	// Items is flat list of all items in spread order, items are emitted
	// with pages they belong to.
	Items []*PageItem `json:"-" yaml:"-"`
	pages []*Page
	// geometry of all Page elements including ones without Self
	pageBounds []Bounds
}

// Page of a spread, possibly synthesized.
type Page struct {
	Self            string    `json:"self" yaml:"self"`
	Name            string    `json:"name" yaml:"name"`
	AppliedMaster   string    `json:"appliedMaster,omitempty" yaml:"appliedMaster,omitempty"`
	Bounds          Bounds    `json:"bounds" yaml:"bounds"`
	Transform       Transform `json:"transform" yaml:"transform"`
	BackgroundColor string    `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	Margins         Margins   `json:"margins" yaml:"margins"`
	SpreadParent    string    `json:"spreadParent,omitempty" yaml:"spreadParent,omitempty"`
	IsMaster        bool      `json:"isMaster,omitempty" yaml:"isMaster,omitempty"`

	IsDefaultPage   bool   `json:"isDefaultPage,omitempty" yaml:"isDefaultPage,omitempty"`
	DetectionSource string `json:"detectionSource,omitempty" yaml:"detectionSource,omitempty"`

	Items []*PageItem `json:"items" yaml:"items"`

	ownMargins   bool
	hasTransform bool
}

// ItemKind is page item variant.
type ItemKind string

const (
	KindRectangle    ItemKind = "Rectangle"
	KindOval         ItemKind = "Oval"
	KindPolygon      ItemKind = "Polygon"
	KindGraphicLine  ItemKind = "GraphicLine"
	KindTextFrame    ItemKind = "TextFrame"
	KindGroup        ItemKind = "Group"
	KindButton       ItemKind = "Button"
	KindTable        ItemKind = "Table"
	KindImage        ItemKind = "Image"
	KindEPS          ItemKind = "EPS"
	KindPDF          ItemKind = "PDF"
	KindPlacedItem   ItemKind = "PlacedItem"
	KindContentFrame ItemKind = "ContentFrame"
)

// itemKinds lists tags recognized as page items.
var itemKinds = []ItemKind{
	KindRectangle, KindOval, KindPolygon, KindGraphicLine, KindTextFrame, KindGroup, KindButton,
	KindTable, KindImage, KindEPS, KindPDF, KindPlacedItem, KindContentFrame,
}

// Geometry sources in order of preference.
const (
	GeometryBounds    = "geometric-bounds"
	GeometryPath      = "path-points"
	GeometryTransform = "transform-default"
	GeometryDefault   = "default"
)

// PageItem is any placeable object.
type PageItem struct {
	Kind    ItemKind `json:"kind" yaml:"kind"`
	Self    string   `json:"self" yaml:"self"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Visible bool     `json:"visible" yaml:"visible"`
	Locked  bool     `json:"locked,omitempty" yaml:"locked,omitempty"`

	Bounds         Bounds    `json:"bounds" yaml:"bounds"`
	Transform      Transform `json:"transform" yaml:"transform"`
	GeometrySource string    `json:"geometrySource" yaml:"geometrySource"`

	Layer        string  `json:"layer,omitempty" yaml:"layer,omitempty"`
	FillColor    string  `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	StrokeColor  string  `json:"strokeColor,omitempty" yaml:"strokeColor,omitempty"`
	StrokeWeight float64 `json:"strokeWeight" yaml:"strokeWeight"`
	ObjectStyle  string  `json:"objectStyle,omitempty" yaml:"objectStyle,omitempty"`
	ParentStory  string  `json:"parentStory,omitempty" yaml:"parentStory,omitempty"`

	Spread      string   `json:"spread" yaml:"spread"`
	Page        string   `json:"page,omitempty" yaml:"page,omitempty"`
	ParentGroup string   `json:"parentGroup,omitempty" yaml:"parentGroup,omitempty"`
	Children    []string `json:"children,omitempty" yaml:"children,omitempty"`

	ContentFrame ContentFrame   `json:"contentFrame" yaml:"contentFrame"`
	Placed       *PlacedContent `json:"placed,omitempty" yaml:"placed,omitempty"`
	TextFrame    *TextFrame     `json:"textFrame,omitempty" yaml:"textFrame,omitempty"`
	Corners      *CornerRadii   `json:"corners,omitempty" yaml:"corners,omitempty"`
	Table        *TableShape    `json:"table,omitempty" yaml:"table,omitempty"`

	Position Point   `json:"position" yaml:"position"`
	Rotation float64 `json:"rotation" yaml:"rotation"`

	ConvertedToPixels bool `json:"convertedToPixels,omitempty" yaml:"convertedToPixels,omitempty"`

	// transform to spread coordinates, includes parent groups
	spreadTransform Transform
}

// ContentFrame describes whether item is a container for placed content.
type ContentFrame struct {
	IsContentFrame   bool   `json:"isContentFrame" yaml:"isContentFrame"`
	HasPlacedContent bool   `json:"hasPlacedContent" yaml:"hasPlacedContent"`
	ContentType      string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	IsEmbedded       bool   `json:"isEmbedded,omitempty" yaml:"isEmbedded,omitempty"`
	IsPlaceholder    bool   `json:"isPlaceholder,omitempty" yaml:"isPlaceholder,omitempty"`
}

// PlacedContent is image or graphic placed into frame.
type PlacedContent struct {
	Type         string    `json:"type" yaml:"type"`
	Self         string    `json:"self,omitempty" yaml:"self,omitempty"`
	Href         string    `json:"href,omitempty" yaml:"href,omitempty"`
	URI          string    `json:"uri,omitempty" yaml:"uri,omitempty"`
	Embedded     bool      `json:"embedded" yaml:"embedded"`
	PackagePath  string    `json:"packagePath,omitempty" yaml:"packagePath,omitempty"`
	StoredState  string    `json:"storedState,omitempty" yaml:"storedState,omitempty"`
	Bounds       *Bounds   `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Transform    Transform `json:"transform" yaml:"transform"`
	ActualPPI    []float64 `json:"actualPpi,omitempty" yaml:"actualPpi,omitempty"`
	EffectivePPI []float64 `json:"effectivePpi,omitempty" yaml:"effectivePpi,omitempty"`
}

// TextFrame holds text frame preferences and measurement of its story.
type TextFrame struct {
	Columns               int         `json:"columns" yaml:"columns"`
	ColumnGutter          float64     `json:"columnGutter" yaml:"columnGutter"`
	Insets                text.Insets `json:"insets" yaml:"insets"`
	FirstBaselineOffset   string      `json:"firstBaselineOffset" yaml:"firstBaselineOffset"`
	VerticalJustification string      `json:"verticalJustification,omitempty" yaml:"verticalJustification,omitempty"`
	AutoSizing            string      `json:"autoSizing,omitempty" yaml:"autoSizing,omitempty"`

	Metrics *text.Result    `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Fit     *text.FitResult `json:"fit,omitempty" yaml:"fit,omitempty"`
}

// CornerRadii of rectangle.
type CornerRadii struct {
	TopLeft     float64 `json:"topLeft" yaml:"topLeft"`
	TopRight    float64 `json:"topRight" yaml:"topRight"`
	BottomLeft  float64 `json:"bottomLeft" yaml:"bottomLeft"`
	BottomRight float64 `json:"bottomRight" yaml:"bottomRight"`
	Option      string  `json:"option" yaml:"option"`
}

// TableShape is table dimensions.
type TableShape struct {
	Rows    int `json:"rows" yaml:"rows"`
	Columns int `json:"columns" yaml:"columns"`
}

// Story is flowing text.
type Story struct {
	Self    string      `json:"self" yaml:"self"`
	Source  string      `json:"source" yaml:"source"`
	Text    string      `json:"text" yaml:"text"`
	Stats   text.Stats  `json:"stats" yaml:"stats"`
	Runs    []Run       `json:"runs" yaml:"runs"`
	Summary *Formatting `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Run is piece of story text with uniform formatting.
type Run struct {
	Text           string     `json:"text" yaml:"text"`
	Paragraph      int        `json:"paragraph" yaml:"paragraph"`
	ParagraphStyle string     `json:"paragraphStyle,omitempty" yaml:"paragraphStyle,omitempty"`
	CharacterStyle string     `json:"characterStyle,omitempty" yaml:"characterStyle,omitempty"`
	Format         Formatting `json:"format" yaml:"format"`
}
