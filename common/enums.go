// Package common keeps enumerations shared between configuration, command
// line handling and the ingestion engine so neither has to import the other.
package common

import (
	"fmt"
	"strings"
)

// OutputFmt is requested model output type.
type OutputFmt int

const (
	OutputFmtJson OutputFmt = iota
	OutputFmtYaml
)

var outputFmtNames = []string{"json", "yaml"}

func (o OutputFmt) String() string {
	if int(o) >= 0 && int(o) < len(outputFmtNames) {
		return outputFmtNames[o]
	}
	return fmt.Sprintf("OutputFmt(%d)", int(o))
}

// OutputFmtNames returns list of possible string values of OutputFmt.
func OutputFmtNames() []string {
	return append([]string(nil), outputFmtNames...)
}

// ParseOutputFmt attempts to convert a string to an OutputFmt.
func ParseOutputFmt(name string) (OutputFmt, error) {
	for i, n := range outputFmtNames {
		if strings.EqualFold(n, name) {
			return OutputFmt(i), nil
		}
	}
	return OutputFmt(0), fmt.Errorf("%s is not a valid OutputFmt, try [%s]", name, strings.Join(outputFmtNames, ", "))
}

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtJson:
		return ".json"
	case OutputFmtYaml:
		return ".yaml"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// MarshalText implements the text marshaller method.
func (o OutputFmt) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements the text unmarshaller method.
func (o *OutputFmt) UnmarshalText(text []byte) error {
	v, err := ParseOutputFmt(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
