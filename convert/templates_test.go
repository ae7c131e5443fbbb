package convert

import (
	"strings"
	"testing"

	"idmlc/common"
	"idmlc/config"
)

func TestExpandTemplate(t *testing.T) {
	doc := testDocument()

	tests := []struct {
		name     string
		template string
		want     string
		wantErr  bool
	}{
		{"plain text", "model", "model", false},
		{"name", "{{ .Name }}", "Brochure", false},
		{"source file drops extension", "{{ .SourceFile }}", "spring", false},
		{"document id", "{{ .DocumentID }}", "d-123", false},
		{"format", "{{ .Format }}", "yaml", false},
		{"context", "{{ .Context }}", string(config.OutputNameTemplateFieldName), false},
		{"pages", "{{ range .Pages }}{{ .Name }}:{{ .Width }}x{{ .Height }};{{ end }}", "1:816x1056;2:816x1056;", false},
		{"page count", "{{ len .Pages }}", "2", false},
		{"sprig", `{{ .Name | lower | replace "o" "0" }}`, "br0chure", false},
		{"sprig default", `{{ .Missing | default "x" }}`, "", true},
		{"parse error", "{{ .Name ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(doc, "dir/spring.idml", config.OutputNameTemplateFieldName, tt.template, common.OutputFmtYaml)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandTemplate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandTemplate_ErrorNamesField(t *testing.T) {
	_, err := expandTemplate(testDocument(), "a.idml", config.OutputNameTemplateFieldName, "{{", common.OutputFmtJson)
	if err == nil || !strings.Contains(err.Error(), string(config.OutputNameTemplateFieldName)) {
		t.Errorf("expandTemplate() error = %v", err)
	}
}

func TestBuildPages(t *testing.T) {
	if got := buildPages(nil); got == nil || len(got) != 0 {
		t.Errorf("buildPages(nil) = %#v", got)
	}
}
