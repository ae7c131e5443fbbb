package idml

import (
	"math"
	"testing"

	"go.uber.org/zap/zaptest"

	"idmlc/idml/xmltree"
)

func mustParse(t *testing.T, data string) *xmltree.Node {
	t.Helper()
	root, err := xmltree.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

func testDiag(t *testing.T) *Diagnostics {
	t.Helper()
	return NewDiagnostics(zaptest.NewLogger(t))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptr[T any](v T) *T {
	return &v
}
