package idml

import (
	"path"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"idmlc/idml/xmltree"
	"idmlc/text"
)

// storyBuilder accumulates text and runs of a single story.
type storyBuilder struct {
	cascade Cascader
	log     *zap.Logger

	text      strings.Builder
	runs      []Run
	paragraph int
}

// storyContext is formatting context of text being walked.
type storyContext struct {
	paraStyle  string
	charStyle  string
	paraDirect Style
	charDirect Style
}

// parseStory reads Stories/*.xml fragment. Fragment may hold idPkg:Story
// wrapper or Story element itself.
func parseStory(root *xmltree.Node, source string, cascade Cascader, splitter *text.Splitter, log *zap.Logger) *Story {
	el := unwrap(root, "Story")

	st := &Story{Self: el.Attr("Self"), Source: source}
	if st.Self == "" {
		// Stories/Story_u1d8.xml
		st.Self = strings.TrimPrefix(strings.TrimSuffix(path.Base(source), path.Ext(source)), "Story_")
	}

	sb := &storyBuilder{cascade: cascade, log: log}
	sb.walk(el, storyContext{})

	st.Text = sb.text.String()
	st.Runs = sb.runs
	if st.Runs == nil {
		st.Runs = []Run{}
	}
	st.Stats = splitter.Count(st.Text)
	st.Summary = summarize(st.Runs)
	return st
}

// unwrap returns child element with tag when root is package wrapper.
func unwrap(root *xmltree.Node, tag string) *xmltree.Node {
	if c := root.Child(tag); c != nil {
		return c
	}
	return root
}

func (sb *storyBuilder) walk(n *xmltree.Node, ctx storyContext) {
	for _, el := range n.Elements() {
		switch el.Tag() {
		case "ParagraphStyleRange":
			pctx := ctx
			pctx.paraStyle = el.Attr("AppliedParagraphStyle")
			pctx.paraDirect = readStyleFields(el)
			pctx.charStyle, pctx.charDirect = "", Style{}
			sb.walk(el, pctx)
		case "CharacterStyleRange":
			cctx := ctx
			cctx.charStyle = el.Attr("AppliedCharacterStyle")
			cctx.charDirect = readStyleFields(el)
			sb.walk(el, cctx)
		case "Content":
			sb.add(cleanText(el.Text()), ctx)
		case "Br":
			sb.text.WriteByte('\n')
			sb.paragraph++
		case "Tab":
			sb.add("\t", ctx)
		case "TextVariableInstance":
			sb.add(cleanText(el.Attr("ResultText")), ctx)
		case "Table", "Note", "Footnote", "Properties", "StoryPreference", "InCopyExportOption":
			// not part of story flow
		default:
			// XMLElement, HyperlinkTextSource, Change and similar wrappers
			sb.walk(el, ctx)
		}
	}
}

// add appends text splitting it into runs at paragraph boundaries.
func (sb *storyBuilder) add(s string, ctx storyContext) {
	if s == "" {
		return
	}
	direct := ctx.paraDirect
	direct.overrideFrom(&ctx.charDirect)
	format := sb.cascade.Resolve(ctx.paraStyle, ctx.charStyle, &direct)

	for i, part := range strings.Split(s, "\n") {
		if i > 0 {
			sb.text.WriteByte('\n')
			sb.paragraph++
		}
		if part == "" {
			continue
		}
		sb.text.WriteString(part)
		sb.runs = append(sb.runs, Run{
			Text:           part,
			Paragraph:      sb.paragraph,
			ParagraphStyle: ctx.paraStyle,
			CharacterStyle: ctx.charStyle,
			Format:         format,
		})
	}
}

// cleanText normalizes line breaks and composes characters of parsed
// character data. Entities are already resolved by the parser and are not
// decoded again, so escaped markup typed by author stays as is.
func cleanText(s string) string {
	return norm.NFC.String(xmltree.NormalizeLineBreaks(s))
}

// summarize returns formatting of the run covering most characters, the
// first one wins a tie.
func summarize(runs []Run) *Formatting {
	var best *Run
	bestLen := 0
	for i := range runs {
		if n := utf8.RuneCountInString(runs[i].Text); n > bestLen {
			best, bestLen = &runs[i], n
		}
	}
	if best == nil {
		return nil
	}
	f := best.Format
	return &f
}
