package outline

import (
	"testing"

	"github.com/tsawler/docchunk/model"
)

func paragraph(style, text string, fontSize float64) *model.Paragraph {
	return &model.Paragraph{
		StyleName: style,
		Text:      text,
		Runs:      []model.Run{{Text: text, FontSize: fontSize}},
	}
}

func TestRunProbeStructuredDocumentAssignsNoLevels(t *testing.T) {
	paras := []*model.Paragraph{
		paragraph("heading 1", "Intro", 24),
		paragraph("normal", "body text", 11),
	}
	probe := runProbe(paras)
	if !probe.structured {
		t.Fatal("expected a structured document")
	}
	if probe.levels != nil {
		t.Fatalf("structured documents should assign no synthetic levels, got %v", probe.levels)
	}
}

func TestRunProbeUnstructuredAssignsLevelsByFontSize(t *testing.T) {
	paras := []*model.Paragraph{
		paragraph("normal", "Big Title", 20),
		paragraph("normal", "body one", 11),
		paragraph("normal", "body two", 11),
		paragraph("normal", "Sub Title", 14),
		paragraph("normal", "body three", 11),
	}
	probe := runProbe(paras)
	if probe.structured {
		t.Fatal("expected an unstructured document")
	}
	if probe.bodySize != 11 {
		t.Fatalf("got body size %v, want 11 (most frequent)", probe.bodySize)
	}
	if probe.levels[20] != 1 {
		t.Errorf("largest size should be level 1, got %d", probe.levels[20])
	}
	if probe.levels[14] != 2 {
		t.Errorf("second-largest size should be level 2, got %d", probe.levels[14])
	}
	if probe.levels[11] != 3 {
		t.Errorf("body size should be level len(larger)+1=3, got %d", probe.levels[11])
	}

	lvl, isHeading := probe.headingLevel(paras[0])
	if !isHeading || lvl != 1 {
		t.Errorf("got level=%d isHeading=%v, want level=1 isHeading=true", lvl, isHeading)
	}
	lvl, isHeading = probe.headingLevel(paras[1])
	if isHeading || lvl != 3 {
		t.Errorf("body paragraph got level=%d isHeading=%v, want level=3 isHeading=false", lvl, isHeading)
	}
}

func TestRunProbeBreaksBodySizeTiesByFirstAppearance(t *testing.T) {
	paras := []*model.Paragraph{
		paragraph("normal", "first seen", 12),
		paragraph("normal", "second seen", 14),
	}
	// 12 and 14 are tied at one occurrence each; 12 appears first in
	// document order, so it must deterministically win the body-size
	// tie-break regardless of Go's unordered map iteration.
	for i := 0; i < 20; i++ {
		probe := runProbe(paras)
		if probe.bodySize != 12 {
			t.Fatalf("run %d: got body size %v, want 12 (first-seen size on a tie)", i, probe.bodySize)
		}
	}
}

func TestRunProbeCapturesTitleStyledParagraph(t *testing.T) {
	paras := []*model.Paragraph{
		paragraph("title", "My Document", 0),
		paragraph("heading 1", "Chapter 1", 24),
	}
	probe := runProbe(paras)
	if probe.title != "My Document" {
		t.Errorf("got title %q, want %q", probe.title, "My Document")
	}
}
