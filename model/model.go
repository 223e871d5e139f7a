// Package model defines the shared data types that flow between the
// container reader, the outline builder, and the chunk emitter: the
// element stream produced by stage one, the numbering index produced by
// stage two, and the outline tree grown by stage four.
package model

// ElementKind discriminates the tagged union produced by the container
// reader. Dispatch on Kind is centralized here rather than expressed as
// per-kind methods on an interface, so placement logic in the outline
// builder has one switch to read instead of several scattered ones.
type ElementKind int

const (
	ElementParagraph ElementKind = iota
	ElementTable
)

// Run is a single formatted text run within a paragraph.
type Run struct {
	Text     string
	FontSize float64 // points; 0 if unresolved
}

// Paragraph is the paragraph variant of Element.
type Paragraph struct {
	StyleName  string // lower-cased
	Runs       []Run
	Text       string // concatenated run text, NFC-normalized
	NumXML     string // raw <w:numPr> fragment, empty if not a list item
	ListID     string // numId, parsed out of NumXML for convenience
	ListLevel  int    // ilvl, parsed out of NumXML for convenience
	PageBreak  bool   // hard page break signaled within this paragraph
	OutlineLvl int    // 0-based outline level from pPr, -1 if absent
}

// Table is the table variant of Element. Rows holds trimmed cell text;
// a merged cell is represented by repeating the same cell-text value at
// every position it spans, so downstream logic can detect and collapse
// fully-merged columns by simple equality.
type Table struct {
	Rows [][]string
}

// Element is one entry of the body stream produced by the container
// reader, in document order.
type Element struct {
	Kind      ElementKind
	Paragraph *Paragraph
	Table     *Table
}

// NumericKind enumerates the numbering formats a list level may use.
type NumericKind string

const (
	KindBullet      NumericKind = "bullet"
	KindDecimal     NumericKind = "decimal"
	KindLowerLetter NumericKind = "lowerLetter"
	KindUpperLetter NumericKind = "upperLetter"
	KindLowerRoman  NumericKind = "lowerRoman"
	KindUpperRoman  NumericKind = "upperRoman"
	KindNone        NumericKind = "none"
)

// Important reports whether items of this kind form the visible outline
// skeleton (decimal and Roman numerals), as opposed to being siblings
// riding along with whichever important item precedes them.
func (k NumericKind) Important() bool {
	switch k {
	case KindDecimal, KindLowerRoman, KindUpperRoman:
		return true
	default:
		return false
	}
}

// LevelDef is one level's worth of numbering definition: the literal
// format template (e.g. "%1.%2.") and the numeric kind used to render
// its placeholder, plus the 1-based start value for the counter.
type LevelDef struct {
	Format  string
	Kind    NumericKind
	Start   int
}

// NumberingDefinition maps list-id -> level -> level definition. Level
// indices are 0-based, matching the w:ilvl attribute.
type NumberingDefinition map[string]map[int]LevelDef

// ListCounter is process-wide, mutable state owned exclusively by the
// running outline-builder call: list-id -> level -> current count.
// Counts only ever increase.
type ListCounter map[string]map[int]int

// Next increments and returns the counter for (listID, level), seeding
// it from start on first use.
func (c ListCounter) Next(listID string, level int, start int) int {
	byLevel, ok := c[listID]
	if !ok {
		byLevel = make(map[int]int)
		c[listID] = byLevel
	}
	if _, seen := byLevel[level]; !seen {
		byLevel[level] = start - 1
	}
	byLevel[level]++
	return byLevel[level]
}

// ListItemInfo is the resolved rendering of a single list item.
type ListItemInfo struct {
	ListID         string
	Level          int
	RenderedMarker string
	NumericKind    NumericKind
	RawCount       int
}

// Context is a node of the outline tree: a heading or list group with
// body text and ordered children. Parent is a transient construction aid
// cleared before the tree is handed to the chunk emitter; it must never
// be relied on after that point.
type Context struct {
	ID            string
	Level         int // 1..N for real headings; 999 for root/ungraded lists
	IsHeading     bool
	IsList        bool
	IsTable       bool
	Title         string // breadcrumb components joined by "#|#"
	BodyText      string
	PageNumber    int
	Nested        []*Context
	Parent        *Context
	KeepFull      bool

	ListItemID    string
	ListItemValue string // rendered marker, e.g. "1.3.", "iv)", "a"
	NumericKind   NumericKind
}

// RootLevel is the level assigned to the implicit root context and to
// list paragraphs that cannot be graded to a real heading level.
const RootLevel = 999

// NewContext allocates a Context with Nested pre-sized to zero length.
func NewContext(id string, level int) *Context {
	return &Context{ID: id, Level: level, Nested: make([]*Context, 0)}
}
