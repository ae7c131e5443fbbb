package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"
)

func pngData(t *testing.T, w, h int) string {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.String()
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"designmap.xml", KindDesignMap},
		{"mimetype", KindMimeType},
		{"Resources/Styles.xml", KindResource},
		{"Spreads/Spread_u1.xml", KindSpread},
		{"MasterSpreads/MasterSpread_u2.xml", KindMasterSpread},
		{"Stories/Story_u3.xml", KindStory},
		{"XML/BackingStory.xml", KindXML},
		{"META-INF/container.xml", KindMeta},
		{"Links/photo.jpg", KindImage},
		{"Links/no-extension", KindImage},
		{"preview.png", KindImage},
		{"readme.txt", KindOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.name); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRead(t *testing.T) {
	r := buildZip(t, []zipMember{
		{name: "mimetype", content: MimeType},
		{name: "designmap.xml", content: "<Document/>"},
		{name: "Resources/Styles.xml", content: "<idPkg:Styles/>"},
		{name: "Spreads/"},
		{name: "Spreads/Spread_u10.xml", content: "<Spread/>"},
		{name: "Spreads/Spread_u2.xml", content: "<Spread/>"},
		{name: "Stories/Story_u1.xml", content: "<Story/>", corrupt: true},
		{name: "Links/photo.png", content: pngData(t, 12, 7)},
		{name: "../escape.xml", content: "<x/>"},
		{name: "META-INF/container.xml", content: "<container/>"},
	})

	pkg, err := Read(context.Background(), r, r.Size(), "test.idml", Options{Probe: true, Workers: 2}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if pkg.MimeType != MimeType {
		t.Errorf("MimeType = %q", pkg.MimeType)
	}
	if _, ok := pkg.Files["mimetype"]; ok {
		t.Errorf("mimetype must not stay in Files")
	}
	for _, name := range []string{"designmap.xml", "Resources/Styles.xml", "Spreads/Spread_u2.xml", "Spreads/Spread_u10.xml"} {
		if _, ok := pkg.Files[name]; !ok {
			t.Errorf("missing member %s", name)
		}
	}
	if _, ok := pkg.Files["META-INF/container.xml"]; ok {
		t.Errorf("META-INF member must be ignored")
	}
	if _, ok := pkg.Files["Stories/Story_u1.xml"]; ok {
		t.Errorf("corrupt member must be skipped")
	}

	if got := pkg.Members(KindSpread); !slices.Equal(got, []string{"Spreads/Spread_u2.xml", "Spreads/Spread_u10.xml"}) {
		t.Errorf("Members(KindSpread) = %v", got)
	}

	if len(pkg.Images) != 1 {
		t.Fatalf("Images = %v, want one entry", pkg.Images)
	}
	img := pkg.Images[0]
	if img.Path != "Links/photo.png" || img.Embedded || img.MimeType != "image/png" || img.Width != 12 || img.Height != 7 {
		t.Errorf("image entry = %+v", img)
	}

	var skipped []string
	for _, s := range pkg.Skipped {
		skipped = append(skipped, s.Path)
	}
	if !slices.Contains(skipped, "Stories/Story_u1.xml") || !slices.Contains(skipped, "../escape.xml") {
		t.Errorf("Skipped = %v", pkg.Skipped)
	}
}

func TestRead_NoProbe(t *testing.T) {
	r := buildZip(t, []zipMember{
		{name: "designmap.xml", content: "<Document/>"},
		{name: "Resources/thumb.jpg", content: "not really a jpeg"},
	})
	pkg, err := Read(context.Background(), r, r.Size(), "test.idml", Options{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if pkg.MimeType != "" {
		t.Errorf("MimeType = %q, want empty", pkg.MimeType)
	}
	if len(pkg.Images) != 1 || !pkg.Images[0].Embedded || pkg.Images[0].MimeType != "" {
		t.Errorf("Images = %+v", pkg.Images)
	}
}

func TestRead_CodePage(t *testing.T) {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	fw, err := w.CreateHeader(&zip.FileHeader{Name: "Stories/\xc0.xml", NonUTF8: true, Method: zip.Deflate})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fw.Write([]byte("<Story/>")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	r := bytes.NewReader(buf.Bytes())

	pkg, err := Read(context.Background(), r, r.Size(), "cp.idml", Options{CodePage: charmap.Windows1251}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if _, ok := pkg.Files["Stories/\u0410.xml"]; !ok {
		t.Errorf("decoded member name not found, got %v", pkg.Files)
	}
}

func TestRead_Canceled(t *testing.T) {
	r := buildZip(t, []zipMember{{name: "designmap.xml", content: "<Document/>"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Read(ctx, r, r.Size(), "test.idml", Options{}, zaptest.NewLogger(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}

func TestRead_NotZip(t *testing.T) {
	r := bytes.NewReader([]byte("definitely not a zip"))
	if _, err := Read(context.Background(), r, r.Size(), "bad.idml", Options{}, zaptest.NewLogger(t)); err == nil {
		t.Errorf("expected error for non-zip input")
	}
}

func TestOpen(t *testing.T) {
	r := buildZip(t, []zipMember{{name: "mimetype", content: MimeType}, {name: "designmap.xml", content: "<Document/>"}})
	data := make([]byte, r.Size())
	if _, err := r.ReadAt(data, 0); err != nil {
		t.Fatalf("read: %v", err)
	}
	fname := filepath.Join(t.TempDir(), "doc.idml")
	if err := os.WriteFile(fname, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	pkg, err := Open(context.Background(), fname, Options{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if pkg.Name != "doc.idml" || len(pkg.Files) != 1 {
		t.Errorf("package = %+v", pkg)
	}

	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.idml"), Options{}, zaptest.NewLogger(t)); err == nil {
		t.Errorf("expected error for missing file")
	}
}
