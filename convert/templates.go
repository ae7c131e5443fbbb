package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"idmlc/common"
	"idmlc/config"
	"idmlc/idml"
)

// PageDefinition describes single document page for templates.
type PageDefinition struct {
	Name   string
	Width  float64
	Height float64
}

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Name       string
	SourceFile string
	DocumentID string
	Pages      []PageDefinition
	Format     string
}

func buildPages(pages []*idml.Page) []PageDefinition {
	result := make([]PageDefinition, 0, len(pages))
	for _, p := range pages {
		result = append(result, PageDefinition{
			Name:   p.Name,
			Width:  p.Bounds.Width,
			Height: p.Bounds.Height,
		})
	}
	return result
}

func expandTemplate(doc *idml.Document, src string, name config.TemplateFieldName, field string, format common.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Name:       doc.Name,
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		DocumentID: doc.ID,
		Pages:      buildPages(doc.Pages),
		Format:     format.String(),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
