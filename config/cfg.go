package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	CoordinatesConfig struct {
		StrokePadding bool    `yaml:"stroke_padding"`
		MaxPosition   float64 `yaml:"max_position" validate:"gt=0"`
	}

	TextConfig struct {
		DefaultFont  string  `yaml:"default_font" validate:"required"`
		FontScaling  bool    `yaml:"font_scaling"`
		MaxReduction float64 `yaml:"max_reduction" validate:"gte=0,lt=1"`
	}

	ImagesConfig struct {
		Probe            bool `yaml:"probe"`
		ProbeOrientation bool `yaml:"probe_orientation"`
	}

	OutputConfig struct {
		NameTemplate          string `yaml:"name_template"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
		Indent                int    `yaml:"indent" validate:"gte=0,lte=8"`
	}

	DocumentConfig struct {
		DPI         float64           `yaml:"dpi" validate:"gt=0"`
		DefaultUnit string            `yaml:"default_unit" validate:"required"`
		Coordinates CoordinatesConfig `yaml:"coordinates"`
		Text        TextConfig        `yaml:"text"`
		Images      ImagesConfig      `yaml:"images"`
		Output      OutputConfig      `yaml:"output"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, output name is expanded per
	// document, not when configuration is loaded
	OutputNameTemplateFieldName TemplateFieldName = "name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands embedded configuration template to get defaults,
// then overlays values from the file at the given path (if any) and validates
// the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
