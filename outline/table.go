package outline

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/docchunk/model"
)

// isSingleCellTable reports whether a table degrades to plain text: a
// single row, single column.
func isSingleCellTable(t *model.Table) bool {
	return len(t.Rows) == 1 && len(t.Rows[0]) == 1
}

// tableToMarkdown renders a multi-cell table to a markdown pipe-table:
// first row as header, a "---" separator row, remaining rows verbatim.
// Columns that are fully merged — every row's cell equal to its left
// neighbor, the signature a horizontally-spanned column leaves once
// spanned cells are expanded to repeat their text — are suppressed
// entirely, matching the source's column-collapsing rule.
func tableToMarkdown(t *model.Table) string {
	if isSingleCellTable(t) {
		return norm.NFC.String(strings.TrimSpace(t.Rows[0][0]))
	}

	numRows := len(t.Rows)
	numCols := 0
	for _, row := range t.Rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	mergedCount := make([]int, numCols)
	for _, row := range t.Rows {
		for idx := 1; idx < len(row); idx++ {
			if row[idx] == row[idx-1] {
				mergedCount[idx]++
			}
		}
	}
	merged := make(map[int]bool)
	for idx, c := range mergedCount {
		if c == numRows {
			merged[idx] = true
		}
	}

	var lines []string
	firstRow := true
	outCols := 0
	for _, row := range t.Rows {
		var rowTexts []string
		for idx, cell := range row {
			if merged[idx] {
				continue
			}
			text := strings.ReplaceAll(strings.TrimSpace(cell), "|", `\|`)
			if text == "" {
				text = "---"
			}
			rowTexts = append(rowTexts, text)
		}
		for len(rowTexts) < outCols {
			rowTexts = append(rowTexts, " ")
		}
		if len(rowTexts) > 0 {
			lines = append(lines, "|"+strings.Join(rowTexts, "|")+"|")
		}
		if firstRow {
			seps := make([]string, len(rowTexts))
			for i := range seps {
				seps[i] = "---"
			}
			lines = append(lines, "|"+strings.Join(seps, "|")+"|")
			firstRow = false
			outCols = len(rowTexts)
		}
	}
	return "\n" + norm.NFC.String(strings.Join(lines, "\n"))
}
