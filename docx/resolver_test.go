package docx

import "testing"

func TestResolveNilStylesReturnsDefault(t *testing.T) {
	sr := NewStyleResolver(nil)
	got := sr.Resolve("Heading1")
	if got.Name != "Heading1" {
		t.Errorf("got name %q, want the style id as fallback for a resolver with no styles part", got.Name)
	}
	if got.FontSize != 11 {
		t.Errorf("got font size %v, want the Word default 11", got.FontSize)
	}
}

func TestResolveFallsBackToStyleIDWhenNameMissing(t *testing.T) {
	styles := &stylesXML{Styles: []styleDefXML{
		{StyleID: "Heading1", Name: styleNameXML{Val: ""}},
	}}
	sr := NewStyleResolver(styles)
	got := sr.Resolve("Heading1")
	if got.Name != "Heading1" {
		t.Errorf("got name %q, want the style id as fallback", got.Name)
	}
}

func TestResolveWalksBasedOnChainWithoutCycling(t *testing.T) {
	styles := &stylesXML{Styles: []styleDefXML{
		{StyleID: "Heading1", Name: styleNameXML{Val: "heading 1"}, BasedOn: basedOnXML{Val: "Normal"}},
		{StyleID: "Normal", Name: styleNameXML{Val: "Normal"}, BasedOn: basedOnXML{Val: "Heading1"}}, // cyclic on purpose
	}}
	sr := NewStyleResolver(styles)
	got := sr.Resolve("Heading1")
	if got.Name != "heading 1" {
		t.Errorf("got name %q, want %q", got.Name, "heading 1")
	}
	if got.FontSize != 11 {
		t.Errorf("got font size %v, want the Word default 11 (no <w:sz> overrides defined)", got.FontSize)
	}
}

func TestResolveCachesResult(t *testing.T) {
	styles := &stylesXML{Styles: []styleDefXML{
		{StyleID: "Heading1", Name: styleNameXML{Val: "heading 1"}},
	}}
	sr := NewStyleResolver(styles)
	first := sr.Resolve("Heading1")
	second := sr.Resolve("Heading1")
	if first != second {
		t.Error("expected the second Resolve call to return the cached pointer")
	}
}
