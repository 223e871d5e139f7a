package docx

import (
	"testing"

	"github.com/tsawler/docchunk/model"
)

// TestRomanRoundTrip exercises the testable property from spec §8: for
// every count in 1..3999, format then parse must return the original
// count.
func TestRomanRoundTrip(t *testing.T) {
	for n := 1; n <= 3999; n++ {
		got := FromRoman(toRoman(n))
		if got != n {
			t.Fatalf("roman round trip failed for %d: rendered %q, parsed back %d", n, toRoman(n), got)
		}
	}
}

func TestRenderDecimalNested(t *testing.T) {
	nb := &numberingXML{
		AbstractNums: []abstractNumXML{
			{
				AbstractNumID: "0",
				Levels: []lvlXML{
					{ILvl: "0", NumFmt: numFmtXML{Val: "decimal"}, LvlText: lvlTextXML{Val: "%1."}},
					{ILvl: "1", NumFmt: numFmtXML{Val: "decimal"}, LvlText: lvlTextXML{Val: "%1.%2."}},
				},
			},
		},
		Nums: []numXML{{NumID: "1", AbstractNumID: abstractRefXML{Val: "0"}}},
	}
	idx := NewNumberingIndex(nb)
	counter := make(model.ListCounter)

	info := idx.Render(counter, "1", 0)
	if info.RenderedMarker != "1." {
		t.Errorf("level 0 first item: got %q, want %q", info.RenderedMarker, "1.")
	}
	info = idx.Render(counter, "1", 1)
	if info.RenderedMarker != "1.1." {
		t.Errorf("level 1 first nested item: got %q, want %q", info.RenderedMarker, "1.1.")
	}
	info = idx.Render(counter, "1", 1)
	if info.RenderedMarker != "1.2." {
		t.Errorf("level 1 second nested item: got %q, want %q", info.RenderedMarker, "1.2.")
	}
	info = idx.Render(counter, "1", 0)
	if info.RenderedMarker != "2." {
		t.Errorf("level 0 second item: got %q, want %q", info.RenderedMarker, "2.")
	}
}

func TestRenderAloneFormat(t *testing.T) {
	nb := &numberingXML{
		AbstractNums: []abstractNumXML{
			{
				AbstractNumID: "0",
				Levels: []lvlXML{
					{ILvl: "0", NumFmt: numFmtXML{Val: "lowerRoman"}, LvlText: lvlTextXML{Val: "%1)"}},
				},
			},
		},
		Nums: []numXML{{NumID: "5", AbstractNumID: abstractRefXML{Val: "0"}}},
	}
	idx := NewNumberingIndex(nb)
	counter := make(model.ListCounter)

	info := idx.Render(counter, "5", 0)
	if info.RenderedMarker != "i)" {
		t.Errorf("got %q, want %q", info.RenderedMarker, "i)")
	}
	if !info.NumericKind.Important() {
		t.Errorf("lowerRoman should be important")
	}
	info = idx.Render(counter, "5", 0)
	if info.RenderedMarker != "ii)" {
		t.Errorf("got %q, want %q", info.RenderedMarker, "ii)")
	}
}

func TestRenderBulletAndLetters(t *testing.T) {
	nb := &numberingXML{
		AbstractNums: []abstractNumXML{
			{
				AbstractNumID: "0",
				Levels: []lvlXML{
					{ILvl: "0", NumFmt: numFmtXML{Val: "bullet"}, LvlText: lvlTextXML{Val: ""}},
					{ILvl: "1", NumFmt: numFmtXML{Val: "lowerLetter"}, LvlText: lvlTextXML{Val: "%2)"}},
				},
			},
		},
		Nums: []numXML{{NumID: "9", AbstractNumID: abstractRefXML{Val: "0"}}},
	}
	idx := NewNumberingIndex(nb)
	counter := make(model.ListCounter)

	info := idx.Render(counter, "9", 0)
	if info.RenderedMarker != "•" {
		t.Errorf("bullet: got %q, want %q", info.RenderedMarker, "•")
	}
	if info.NumericKind.Important() {
		t.Errorf("bullet should not be important")
	}

	counter = make(model.ListCounter)
	_ = idx.Render(counter, "9", 0)
	info = idx.Render(counter, "9", 1)
	if info.RenderedMarker != "a)" {
		t.Errorf("letter: got %q, want %q", info.RenderedMarker, "a)")
	}
}

func TestRenderMissingNumberingDegradesToBullet(t *testing.T) {
	idx := NewNumberingIndex(nil)
	counter := make(model.ListCounter)
	info := idx.Render(counter, "unknown", 0)
	if info.RenderedMarker != "•" {
		t.Errorf("got %q, want bullet fallback", info.RenderedMarker)
	}
	if info.NumericKind != model.KindBullet {
		t.Errorf("got kind %q, want bullet", info.NumericKind)
	}
}

func TestLetterGlyphWraparound(t *testing.T) {
	cases := []struct {
		count int
		want  string
	}{
		{1, "a"}, {26, "z"}, {27, "aa"}, {28, "ab"}, {52, "az"}, {53, "ba"},
	}
	for _, c := range cases {
		got := letterGlyph(c.count, 'a')
		if got != c.want {
			t.Errorf("letterGlyph(%d): got %q, want %q", c.count, got, c.want)
		}
	}
}
