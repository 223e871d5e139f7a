// Package outline implements the font-size probe (spec §4.3) and the
// outline-building state machine (spec §4.4): it walks a document's
// element stream and grows a tree of model.Context nodes representing
// headings, list groups, and tables.
package outline

import (
	"sort"
	"strings"

	"github.com/tsawler/docchunk/model"
)

// fontProbe is the result of scanning every paragraph once at document
// open: whether the document declares real heading styles, and if not,
// the synthetic font-size -> heading-level assignment.
type fontProbe struct {
	structured bool
	levels     map[float64]int // font size -> synthetic heading level
	bodySize   float64
	title      string
}

// runProbe tallies run font sizes across every paragraph. If any
// paragraph's style name begins with "heading", the document is
// "structured" and no font levels are assigned — §4.3's heading-style
// short-circuit. Otherwise the most frequent size becomes the body size;
// strictly larger sizes are sorted descending and assigned heading
// levels 1, 2, 3…; the body size itself gets one level deeper (not a
// heading); smaller sizes are never headings.
func runProbe(paragraphs []*model.Paragraph) fontProbe {
	counts := map[float64]int{}
	var sizesSeen []float64 // first-insertion order, so tie-breaks are deterministic
	structured := false
	title := ""
	for _, p := range paragraphs {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if p.StyleName == "title" && title == "" {
			title = text
		}
		if strings.HasPrefix(p.StyleName, "heading") {
			structured = true
		}
		for _, r := range p.Runs {
			if r.FontSize > 0 {
				if _, seen := counts[r.FontSize]; !seen {
					sizesSeen = append(sizesSeen, r.FontSize)
				}
				counts[r.FontSize]++
			}
		}
	}
	probe := fontProbe{structured: structured, title: title}
	if structured || len(counts) == 0 {
		return probe
	}

	// Iterate in first-seen order rather than map order: ties (equal
	// counts for two distinct sizes) otherwise resolve nondeterministically
	// across runs of the same document.
	bodySize, bestCount := 0.0, -1
	for _, size := range sizesSeen {
		if c := counts[size]; c > bestCount {
			bodySize, bestCount = size, c
		}
	}
	probe.bodySize = bodySize

	var larger []float64
	for size := range counts {
		if size > bodySize {
			larger = append(larger, size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(larger)))

	probe.levels = make(map[float64]int, len(larger)+1)
	for i, size := range larger {
		probe.levels[size] = i + 1
	}
	probe.levels[bodySize] = len(larger) + 1
	return probe
}

// headingLevel reports whether a paragraph, in an unstructured document,
// counts as a synthetic heading and at what level, by looking at the
// size of its first sized run.
func (fp fontProbe) headingLevel(p *model.Paragraph) (level int, isHeading bool) {
	if fp.levels == nil {
		return 0, false
	}
	size := 0.0
	for _, r := range p.Runs {
		if r.FontSize > 0 {
			size = r.FontSize
			break
		}
	}
	lvl, ok := fp.levels[size]
	if !ok {
		return 0, false
	}
	return lvl, lvl < len(fp.levels)
}
