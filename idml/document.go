package idml

import (
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"idmlc/archive"
	"idmlc/idml/xmltree"
)

// DesignMap is the package manifest.
const DesignMap = "designmap.xml"

// designMap is parsed designmap.xml.
type designMap struct {
	root          *xmltree.Node
	spreads       []string
	masterSpreads []string
	stories       []string
}

// parseDesignMap fills document metadata and layers and returns fragment
// references in manifest order. When manifest is missing empty one is used.
func parseDesignMap(root *xmltree.Node, doc *Document, log *zap.Logger) designMap {
	dm := designMap{root: root}
	if root == nil {
		return dm
	}

	doc.ID = root.Attr("Self")
	doc.DOMVersion = root.Attr("DOMVersion")
	doc.ActiveLayer = root.Attr("ActiveLayer")
	if name := root.Attr("Name"); name != "" {
		doc.Name = name
	}

	for _, el := range root.Elements() {
		switch el.Tag() {
		case "Layer":
			doc.Layers = append(doc.Layers, Layer{
				Self:    el.Attr("Self"),
				Name:    el.Attr("Name"),
				Visible: el.Bool("Visible", true),
				Locked:  el.Bool("Locked", false),
			})
		case "Spread":
			if src := el.Attr("src"); src != "" {
				dm.spreads = append(dm.spreads, src)
			}
		case "MasterSpread":
			if src := el.Attr("src"); src != "" {
				dm.masterSpreads = append(dm.masterSpreads, src)
			}
		case "Story":
			if src := el.Attr("src"); src != "" {
				dm.stories = append(dm.stories, src)
			}
		default:
			log.Debug("Designmap element ignored", zap.String("tag", el.FullTag()))
		}
	}
	return dm
}

// documentID returns manifest Self or freshly generated id.
func documentID(self string, log *zap.Logger) string {
	if self != "" {
		return self
	}
	id, err := uuid.NewV7()
	if err != nil {
		log.Warn("Unable to generate UUIDv7, using random one", zap.Error(err))
		return uuid.NewString()
	}
	return id.String()
}

// orderMembers returns members referenced by manifest first, in manifest
// order, followed by unreferenced members of the same kind in natural order.
// Referenced members missing from package are reported.
func orderMembers(pkg *archive.Package, kind archive.Kind, refs []string, diag *Diagnostics) []string {
	present := pkg.Members(kind)
	ordered := make([]string, 0, len(present))
	seen := make(map[string]bool, len(present))
	for _, ref := range refs {
		if _, ok := pkg.Files[ref]; !ok {
			diag.Warn(StageStructure, DesignMap, "", "referenced fragment "+ref+" is missing")
			continue
		}
		if !seen[ref] {
			seen[ref] = true
			ordered = append(ordered, ref)
		}
	}
	for _, name := range present {
		if !seen[name] {
			if len(refs) > 0 {
				diag.Info(StageStructure, name, "", "fragment is not referenced by designmap")
			}
			ordered = append(ordered, name)
		}
	}
	return slices.Clip(ordered)
}
