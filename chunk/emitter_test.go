package chunk

import (
	"strconv"
	"strings"
	"testing"

	"github.com/tsawler/docchunk/model"
)

func idSeq() func() string {
	n := 0
	return func() string {
		n++
		return "id" + strconv.Itoa(n)
	}
}

// A context with IsHeading=false (or Level==model.RootLevel) carries its
// own body straight into a chunk; a genuine heading (IsHeading=true at a
// real level) instead becomes a title source for the chunks that follow
// it, and never emits its own body directly.

func TestBuildEmitsDirectBody(t *testing.T) {
	root := model.NewContext("c1", model.RootLevel)
	root.BodyText = "This is the body text of a top-level block."
	root.PageNumber = 1

	e := New(200, idSeq())
	records := e.Build([]*model.Context{root}, "Doc Title")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Text != root.BodyText {
		t.Errorf("got text %q", records[0].Text)
	}
	if !records[0].End {
		t.Error("expected End=true")
	}
}

func TestBuildDropsShortChunks(t *testing.T) {
	root := model.NewContext("c1", model.RootLevel)
	root.BodyText = "hi"
	root.PageNumber = 1

	e := New(200, idSeq())
	records := e.Build([]*model.Context{root}, "Doc Title")
	if len(records) != 0 {
		t.Fatalf("expected short chunks (<5 runes) to be dropped, got %d", len(records))
	}
}

func TestHeadingWithoutFollowingContentEmitsNothing(t *testing.T) {
	heading := model.NewContext("h1", 1)
	heading.IsHeading = true
	heading.Title = "Chapter 1"
	heading.BodyText = "This text only becomes a title, never its own chunk."
	heading.PageNumber = 1

	e := New(200, idSeq())
	records := e.Build([]*model.Context{heading}, "Doc Title")
	if len(records) != 0 {
		t.Fatalf("a standalone heading with no following content should emit no chunks, got %d", len(records))
	}
}

func TestBuildSplitsOnWordBudget(t *testing.T) {
	heading := model.NewContext("h1", 1)
	heading.IsHeading = true
	heading.Title = "Chapter"
	heading.PageNumber = 1
	item1 := model.NewContext("i1", 2)
	item1.IsList = true
	item1.BodyText = strings.Repeat("word ", 10)
	item2 := model.NewContext("i2", 2)
	item2.IsList = true
	item2.BodyText = strings.Repeat("more ", 10)
	heading.Nested = []*model.Context{item1, item2}

	e := New(5, idSeq()) // tiny budget forces a split
	records := e.Build([]*model.Context{heading}, "Doc Title")
	if len(records) < 2 {
		t.Fatalf("expected the oversized body to split into multiple chunks, got %d", len(records))
	}
}

func TestBeautifyTitleDedupesAndIsIdempotent(t *testing.T) {
	title := "A" + titleSeparator + "B" + titleSeparator + "A"
	once := beautifyTitle(title)
	twice := beautifyTitle(once)
	if once != twice {
		t.Errorf("beautifyTitle should be idempotent: once=%q twice=%q", once, twice)
	}
	if strings.Count(once, "A") != 1 {
		t.Errorf("expected deduped title, got %q", once)
	}
}

func TestBuildAssignsSequentialIndices(t *testing.T) {
	c1 := model.NewContext("c1", model.RootLevel)
	c1.BodyText = "first chunk text here"
	c2 := model.NewContext("c2", model.RootLevel)
	c2.BodyText = "second chunk text here"

	e := New(200, idSeq())
	records := e.Build([]*model.Context{c1, c2}, "Doc")
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for i, r := range records {
		if r.Index != i+1 {
			t.Errorf("record %d has index %d, want 1-based index %d", i, r.Index, i+1)
		}
	}
}
