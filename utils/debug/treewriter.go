// Package debug has helpers producing human readable dumps of parsed
// structures for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const indent = "  "

// TreeWriter accumulates indented lines. MaxText limits length (in runes) of
// values written with TextBlock, 0 means no limit.
type TreeWriter struct {
	w       *strings.Builder
	MaxText int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) pad(depth int) {
	tw.w.WriteString(strings.Repeat(indent, max(depth, 0)))
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Section writes "label: n" header, children are expected at depth+1.
func (tw *TreeWriter) Section(depth int, label string, n int) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(strconv.Itoa(n))
	tw.w.WriteByte('\n')
}

func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(clip(value, tw.MaxText)))
	tw.w.WriteByte('\n')
}

func clip(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
