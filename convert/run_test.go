package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	yaml "gopkg.in/yaml.v3"

	"idmlc/common"
	"idmlc/config"
	"idmlc/idml"
	"idmlc/state"
)

const (
	sampleDesignMap = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Document xmlns:idPkg="http://ns.adobe.com/AdobeInDesign/idml/1.0/packaging" DOMVersion="18.0" Self="doc-1">
	<idPkg:Spread src="Spreads/Spread_s1.xml"/>
	<idPkg:Story src="Stories/Story_u1.xml"/>
</Document>`
	sampleSpread = `<idPkg:Spread xmlns:idPkg="http://ns.adobe.com/AdobeInDesign/idml/1.0/packaging">
	<Spread Self="s1">
		<Page Self="p1" Name="1" GeometricBounds="0 0 792 612" ItemTransform="1 0 0 1 0 0"/>
		<TextFrame Self="t1" ParentStory="u1" GeometricBounds="36 36 136 336"/>
		<Rectangle Self="r1" Name="[YOUR IMAGE HERE]" GeometricBounds="200 36 400 336"/>
	</Spread>
</idPkg:Spread>`
	sampleStory = `<idPkg:Story xmlns:idPkg="http://ns.adobe.com/AdobeInDesign/idml/1.0/packaging">
	<Story Self="u1"><ParagraphStyleRange><CharacterStyleRange><Content>Spring sale</Content></CharacterStyleRange></ParagraphStyleRange></Story>
</idPkg:Story>`
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func writeSamplePackage(t *testing.T, path string) {
	t.Helper()
	data := zipBytes(t, map[string]string{
		"designmap.xml":         sampleDesignMap,
		"Spreads/Spread_s1.xml": sampleSpread,
		"Stories/Story_u1.xml":  sampleStory,
	}, true)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write package: %v", err)
	}
}

func TestProcess_SingleFile(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := filepath.Join(t.TempDir(), "in", "sale.idml")
	dst := t.TempDir()
	writeSamplePackage(t, src)

	if err := process(ctx, src, dst, common.OutputFmtJson, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "sale.json"))
	if err != nil {
		t.Fatalf("model not written: %v", err)
	}
	var doc idml.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("model is not valid JSON: %v", err)
	}
	if doc.ID != "doc-1" || len(doc.Pages) != 1 || len(doc.Pages[0].Items) != 2 {
		t.Errorf("document = %+v", doc)
	}
	if st := doc.Stories["u1"]; st == nil || st.Text != "Spring sale" {
		t.Errorf("stories = %+v", doc.Stories)
	}
	if doc.Diagnostics == nil || doc.Diagnostics.Counters.Placeholders != 1 || doc.Diagnostics.Counters.TextFrames != 1 {
		t.Errorf("diagnostics = %+v", doc.Diagnostics)
	}

	t.Run("existing output", func(t *testing.T) {
		if err := process(ctx, src, dst, common.OutputFmtJson, env.Log); err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("process() error = %v", err)
		}
		env.Overwrite = true
		defer func() { env.Overwrite = false }()
		if err := process(ctx, src, dst, common.OutputFmtJson, env.Log); err != nil {
			t.Errorf("process() with overwrite error = %v", err)
		}
	})
}

func TestProcess_Directory(t *testing.T) {
	ctx, env := setupTestEnv(t)
	root := t.TempDir()
	dst := t.TempDir()
	writeSamplePackage(t, filepath.Join(root, "a.idml"))
	writeSamplePackage(t, filepath.Join(root, "nested", "b.idml"))
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("skip me"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "broken.idml"), []byte("PK\x03\x04 broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := process(ctx, root, dst, common.OutputFmtYaml, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	for _, name := range []string{"a.yaml", filepath.Join("nested", "b.yaml")} {
		data, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil || m["id"] != "doc-1" {
			t.Errorf("%s is not expected YAML model: %v %v", name, err, m["id"])
		}
	}
}

func TestProcess_Errors(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()

	if err := process(ctx, filepath.Join(dir, "missing.idml"), dir, common.OutputFmtJson, env.Log); err == nil {
		t.Error("expected error for missing source")
	}

	txt := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(txt, []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := process(ctx, txt, dir, common.OutputFmtJson, env.Log); err == nil || !strings.Contains(err.Error(), "not recognized") {
		t.Errorf("process() error = %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	src := filepath.Join(dir, "c.idml")
	writeSamplePackage(t, src)
	if err := process(canceled, src, t.TempDir(), common.OutputFmtJson, env.Log); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestEncodeModel(t *testing.T) {
	doc := testDocument()
	doc.Stories = map[string]*idml.Story{}

	t.Run("compact json", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := encodeModel(buf, doc, common.OutputFmtJson, 0); err != nil {
			t.Fatal(err)
		}
		if strings.Count(strings.TrimSpace(buf.String()), "\n") != 0 {
			t.Errorf("compact output has line breaks: %s", buf)
		}
	})

	t.Run("indented json", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := encodeModel(buf, doc, common.OutputFmtJson, 4); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n    \"id\": \"d-123\"") {
			t.Errorf("unexpected output: %s", buf)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := encodeModel(buf, doc, common.OutputFmtYaml, 0); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "id: d-123") || !strings.Contains(buf.String(), "name: Brochure") {
			t.Errorf("unexpected output: %s", buf)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if err := encodeModel(new(bytes.Buffer), doc, common.OutputFmt(42), 0); err == nil {
			t.Error("expected error")
		}
	})
}

func TestIngestOptions(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Document.DefaultUnit = "Millimeters"
	env.Cfg.Document.Text.MaxReduction = 0.4

	opts := ingestOptions(env, env.Log)
	if opts.DefaultUnit != idml.UnitMillimeters || opts.DPI != 96 || opts.MaxReduction != 0.4 || opts.DefaultFont != "Arial" {
		t.Errorf("options = %+v", opts)
	}
	if !opts.StrokePadding || opts.MaxPosition != 100000 || !opts.FontScaling {
		t.Errorf("options = %+v", opts)
	}
	if opts.Measurer == nil {
		t.Error("measurer not set")
	}
}
