package outline

import (
	"strings"
	"testing"

	"github.com/tsawler/docchunk/model"
)

func TestSingleCellTableDegradesToPlainText(t *testing.T) {
	tbl := &model.Table{Rows: [][]string{{"  just text  "}}}
	if !isSingleCellTable(tbl) {
		t.Fatal("expected a single-cell table")
	}
	got := tableToMarkdown(tbl)
	if got != "just text" {
		t.Errorf("got %q, want %q", got, "just text")
	}
}

func TestMultiCellTableRendersMarkdown(t *testing.T) {
	tbl := &model.Table{
		Rows: [][]string{
			{"Name", "Age"},
			{"Alice", "30"},
			{"Bob", "25"},
		},
	}
	got := tableToMarkdown(tbl)
	if !strings.Contains(got, "|Name|Age|") {
		t.Errorf("missing header row in %q", got)
	}
	if !strings.Contains(got, "|---|---|") {
		t.Errorf("missing separator row in %q", got)
	}
	if !strings.Contains(got, "|Alice|30|") {
		t.Errorf("missing data row in %q", got)
	}
}

func TestFullyMergedColumnSuppressed(t *testing.T) {
	// A GridSpan-expanded column repeats its left neighbor's value within
	// every row; such a column should be dropped entirely from the
	// markdown rather than rendered as a duplicate.
	tbl := &model.Table{
		Rows: [][]string{
			{"row1", "row1"},
			{"row2", "row2"},
		},
	}
	got := tableToMarkdown(tbl)
	if strings.Count(got, "row1") != 1 {
		t.Errorf("expected the merged column to be suppressed, got %q", got)
	}
}
