package convert

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"idmlc/archive"
)

func zipBytes(t *testing.T, members map[string]string, withMimeType bool) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	if withMimeType {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
		if err != nil {
			t.Fatalf("zip: %v", err)
		}
		if _, err := w.Write([]byte(archive.MimeType)); err != nil {
			t.Fatalf("zip: %v", err)
		}
	}
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip: %v", err)
	}
	return buf.Bytes()
}

func TestIsPackageFile(t *testing.T) {
	tmpDir := t.TempDir()
	plain := zipBytes(t, map[string]string{"readme.txt": "hi"}, false)
	idml := zipBytes(t, map[string]string{"designmap.xml": "<Document/>"}, true)

	tests := []struct {
		name    string
		file    string
		data    []byte
		want    bool
		wantErr bool
	}{
		{"idml extension", "doc.idml", plain, true, false},
		{"idml extension upper case", "DOC.IDML", plain, true, false},
		{"zip with mimetype", "doc.zip", idml, true, false},
		{"zip without mimetype", "other.zip", plain, false, false},
		{"not a zip", "fake.idml", []byte("not a real zip file"), false, false},
		{"empty", "empty.idml", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			got, err := isPackageFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("isPackageFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isPackageFile() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := isPackageFile(filepath.Join(tmpDir, "nope.idml")); err == nil {
			t.Error("isPackageFile() expected error for missing file")
		}
	})
}
