package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]column{col("Name"), numCol("Size")},
		[][]string{{"Game (USA).iso", "1337"}, {"Other"}},
	)
	if !strings.Contains(out, "Game (USA).iso") || !strings.Contains(out, "1337") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Other") {
		t.Errorf("short row dropped: %q", out)
	}
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Errorf("output = %q", out)
	}
}
