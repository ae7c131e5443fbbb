package idml

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

const storyXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<idPkg:Story xmlns:idPkg="http://ns.adobe.com/AdobeInDesign/idml/1.0/packaging" DOMVersion="18.0">
	<Story Self="u1d8" AppliedTOCStyle="n">
		<StoryPreference OpticalMarginAlignment="false"/>
		<ParagraphStyleRange AppliedParagraphStyle="ParagraphStyle/Body" Justification="RightAlign">
			<CharacterStyleRange AppliedCharacterStyle="CharacterStyle/$ID/[No character style]">
				<Content>Hello world.</Content>
				<Br/>
			</CharacterStyleRange>
		</ParagraphStyleRange>
		<ParagraphStyleRange AppliedParagraphStyle="ParagraphStyle/Body">
			<CharacterStyleRange AppliedCharacterStyle="CharacterStyle/Strong" PointSize="9">
				<Properties><Leading type="unit">20</Leading></Properties>
				<Content>Bold&#10;line</Content>
			</CharacterStyleRange>
			<XMLElement Self="x1">
				<CharacterStyleRange AppliedCharacterStyle="CharacterStyle/Big">
					<Content>Caf` + "e\u0301" + `</Content>
					<Table Self="t1"><Cell><Content>skipped</Content></Cell></Table>
				</CharacterStyleRange>
			</XMLElement>
		</ParagraphStyleRange>
	</Story>
</idPkg:Story>`

func TestParseStory(t *testing.T) {
	log := zaptest.NewLogger(t)
	st := parseStory(mustParse(t, storyXML), "Stories/Story_u1d8.xml", testCascader(), nil, log)

	if st.Self != "u1d8" {
		t.Errorf("Self = %q", st.Self)
	}
	want := "Hello world.\nBold\nlineCaf\u00e9"
	if st.Text != want {
		t.Errorf("Text = %q, want %q", st.Text, want)
	}
	if len(st.Runs) != 4 {
		t.Fatalf("runs = %+v", st.Runs)
	}

	first := st.Runs[0]
	if first.Paragraph != 0 || first.Format.Alignment != "RightAlign" || first.ParagraphStyle != "ParagraphStyle/Body" {
		t.Errorf("first run = %+v", first)
	}

	bold := st.Runs[1]
	if bold.Text != "Bold" || bold.Paragraph != 1 || bold.Format.FontStyle != "Bold" || bold.Format.PointSize != 9 {
		t.Errorf("bold run = %+v", bold)
	}
	if bold.Format.Leading.Value != 20 || bold.Format.Alignment != "CenterAlign" {
		t.Errorf("bold run leading = %+v alignment = %q", bold.Format.Leading, bold.Format.Alignment)
	}
	if st.Runs[2].Text != "line" || st.Runs[2].Paragraph != 2 {
		t.Errorf("split run = %+v", st.Runs[2])
	}
	if last := st.Runs[3]; last.Format.FontFamily != "Myriad Pro" || last.Paragraph != 2 {
		t.Errorf("last run = %+v", last)
	}

	if st.Summary == nil || st.Summary.Alignment != "RightAlign" {
		t.Errorf("summary = %+v", st.Summary)
	}
	if st.Stats.Paragraphs != 3 || st.Stats.Words != 4 {
		t.Errorf("stats = %+v", st.Stats)
	}
}

func TestParseStory_Bare(t *testing.T) {
	st := parseStory(mustParse(t, `<Story><ParagraphStyleRange><CharacterStyleRange><Content>Hi</Content><Tab/><Content>there</Content></CharacterStyleRange></ParagraphStyleRange></Story>`),
		"Stories/Story_u42.xml", testCascader(), nil, zaptest.NewLogger(t))
	if st.Self != "u42" {
		t.Errorf("Self from file name = %q", st.Self)
	}
	if st.Text != "Hi\tthere" || len(st.Runs) != 3 {
		t.Errorf("text = %q runs = %d", st.Text, len(st.Runs))
	}
	if st.Summary == nil || st.Summary.FontSize != DefaultFontSizePx {
		t.Errorf("summary = %+v", st.Summary)
	}
}

func TestParseStory_EscapedMarkup(t *testing.T) {
	st := parseStory(mustParse(t, `<Story Self="m"><ParagraphStyleRange><CharacterStyleRange><Content>a &amp;lt;b&amp;gt; c &amp;amp;#10;</Content></CharacterStyleRange></ParagraphStyleRange></Story>`),
		"Stories/Story_m.xml", testCascader(), nil, zaptest.NewLogger(t))
	if want := "a &lt;b&gt; c &amp;#10;"; st.Text != want {
		t.Errorf("Text = %q, want %q", st.Text, want)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a &lt;b&gt; c", "a &lt;b&gt; c"},
		{"x\r\ny\u2029z", "x\ny\nz"},
		{"Cafe\u0301", "Caf\u00e9"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		once := cleanText(tt.in)
		if once != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, once, tt.want)
		}
		if twice := cleanText(once); twice != once {
			t.Errorf("cleanText not idempotent for %q: %q vs %q", tt.in, once, twice)
		}
	}
}

func TestParseStory_Empty(t *testing.T) {
	st := parseStory(mustParse(t, `<Story Self="e"/>`), "Stories/Story_e.xml", testCascader(), nil, zaptest.NewLogger(t))
	if st.Text != "" || st.Runs == nil || len(st.Runs) != 0 || st.Summary != nil {
		t.Errorf("empty story = %+v", st)
	}
}

func TestSummarize(t *testing.T) {
	runs := []Run{
		{Text: "abc", Format: Formatting{FontStyle: "A"}},
		{Text: "xyz", Format: Formatting{FontStyle: "B"}},
		{Text: "ab", Format: Formatting{FontStyle: "C"}},
	}
	if got := summarize(runs); got == nil || got.FontStyle != "A" {
		t.Errorf("summarize() = %+v, want first of tied runs", got)
	}
	if got := summarize(nil); got != nil {
		t.Errorf("summarize(nil) = %+v", got)
	}
}
