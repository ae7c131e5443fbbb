package idml

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Severity of an issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Stage of the pipeline issue was found at.
type Stage string

const (
	StageArchive   Stage = "archive"
	StageParse     Stage = "parse"
	StageResources Stage = "resources"
	StageStructure Stage = "structure"
	StageElements  Stage = "elements"
	StageStories   Stage = "stories"
	StageUnits     Stage = "units"
	StageMetrics   Stage = "metrics"
)

// Issue is non fatal problem found during ingestion.
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Stage    Stage    `json:"stage" yaml:"stage"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
	Self     string   `json:"self,omitempty" yaml:"self,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func (i Issue) Error() string {
	if i.Self != "" {
		return fmt.Sprintf("%s: %s [%s]: %s", i.Stage, i.Source, i.Self, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Stage, i.Source, i.Message)
}

// Counters summarize what was found and what was defaulted.
type Counters struct {
	Items             int `json:"items" yaml:"items"`
	SkippedItems      int `json:"skippedItems" yaml:"skippedItems"`
	DefaultedGeometry int `json:"defaultedGeometry" yaml:"defaultedGeometry"`
	ContentFrames     int `json:"contentFrames" yaml:"contentFrames"`
	Placeholders      int `json:"placeholders" yaml:"placeholders"`
	LinkedImages      int `json:"linkedImages" yaml:"linkedImages"`
	EmbeddedImages    int `json:"embeddedImages" yaml:"embeddedImages"`
	TextFrames        int `json:"textFrames" yaml:"textFrames"`
	OverflowingFrames int `json:"overflowingFrames" yaml:"overflowingFrames"`
	SkippedMembers    int `json:"skippedMembers" yaml:"skippedMembers"`
}

// Diagnostics accumulates issues of single ingestion. Issues are also
// logged when logger is set.
type Diagnostics struct {
	Issues          []Issue  `json:"issues" yaml:"issues"`
	Counters        Counters `json:"counters" yaml:"counters"`
	PageDetection   string   `json:"pageDetection" yaml:"pageDetection"`
	CoordinateShift Point    `json:"coordinateOffset" yaml:"coordinateOffset"`

	log *zap.Logger
}

// NewDiagnostics makes diagnostics logging issues to log (may be nil).
func NewDiagnostics(log *zap.Logger) *Diagnostics {
	if log == nil {
		log = zap.NewNop()
	}
	return &Diagnostics{Issues: []Issue{}, log: log}
}

func (d *Diagnostics) add(sev Severity, stage Stage, source, self, msg string) {
	d.Issues = append(d.Issues, Issue{Severity: sev, Stage: stage, Source: source, Self: self, Message: msg})
	fields := []zap.Field{zap.String("stage", string(stage)), zap.String("source", source)}
	if self != "" {
		fields = append(fields, zap.String("self", self))
	}
	switch sev {
	case SeverityError:
		d.log.Error(msg, fields...)
	case SeverityWarning:
		d.log.Warn(msg, fields...)
	default:
		d.log.Debug(msg, fields...)
	}
}

// Info records informational issue.
func (d *Diagnostics) Info(stage Stage, source, self, msg string) {
	d.add(SeverityInfo, stage, source, self, msg)
}

// Warn records warning.
func (d *Diagnostics) Warn(stage Stage, source, self, msg string) {
	d.add(SeverityWarning, stage, source, self, msg)
}

// Error records recoverable error, usually a fragment which had to be
// skipped.
func (d *Diagnostics) Error(stage Stage, source, self, msg string) {
	d.add(SeverityError, stage, source, self, msg)
}

// Count returns number of issues with given severity.
func (d *Diagnostics) Count(sev Severity) int {
	n := 0
	for _, i := range d.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// Err combines issues of given stage into single error, nil when there are
// none.
func (d *Diagnostics) Err(stage Stage) error {
	var err error
	for _, i := range d.Issues {
		if i.Stage == stage && i.Severity != SeverityInfo {
			err = multierr.Append(err, i)
		}
	}
	return err
}
