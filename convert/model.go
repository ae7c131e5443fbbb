package convert

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"idmlc/common"
	"idmlc/idml"
)

// encodeModel writes document in requested format. indent of 0 produces
// compact JSON; YAML is always indented, 2 spaces when indent is 0.
func encodeModel(w io.Writer, doc *idml.Document, format common.OutputFmt, indent int) error {
	switch format {
	case common.OutputFmtJson:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if indent > 0 {
			enc.SetIndent("", strings.Repeat(" ", indent))
		}
		return enc.Encode(doc)
	case common.OutputFmtYaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(max(indent, 2))
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %s", format)
	}
}

func writeModel(doc *idml.Document, name string, format common.OutputFmt, indent int) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return encodeModel(f, doc, format, indent)
}
