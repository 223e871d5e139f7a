package outline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/docchunk/docx"
	"github.com/tsawler/docchunk/model"
)

// titleSeparator is the reserved breadcrumb-component separator; it must
// not appear in source headings (no sanitisation performed, per §6).
const titleSeparator = "#|#"

// Result is the outline builder's output: the closed headings list in
// document order plus the document title: the caller-supplied title if
// non-empty, otherwise the first "title"-styled paragraph.
type Result struct {
	Headings []*model.Context
	Title    string
}

// Builder is the stage-4 state machine: an open spine (here collapsed to
// just its tip, "current", since only the tip is ever mutated — ancestors
// are reached through the transient Parent back-reference) plus a
// pending context holding text that may still be folded into the
// current body, the process-wide list counter, and a page cursor.
type Builder struct {
	numIndex  *docx.NumberingIndex
	probe     fontProbe
	chunkSize int
	title     string

	counter     model.ListCounter
	listIDToCtx map[string]string
	pageNumber  int

	current  *model.Context
	pending  *model.Context
	headings []*model.Context

	nextID func() string
}

// New builds an outline Builder. idGen supplies opaque context ids
// (google/uuid in production, a deterministic sequence in tests).
func New(numIndex *docx.NumberingIndex, chunkSize int, documentTitle string, idGen func() string) *Builder {
	return &Builder{
		numIndex:    numIndex,
		chunkSize:   chunkSize,
		title:       documentTitle,
		counter:     make(model.ListCounter),
		listIDToCtx: make(map[string]string),
		pageNumber:  1,
		nextID:      idGen,
	}
}

// Run walks elements in document order and returns the closed headings
// list ready for the chunk emitter.
func (b *Builder) Run(elements []model.Element) Result {
	var paragraphs []*model.Paragraph
	for _, e := range elements {
		if e.Kind == model.ElementParagraph && e.Paragraph != nil {
			paragraphs = append(paragraphs, e.Paragraph)
		}
	}
	b.probe = runProbe(paragraphs)
	if b.title == "" {
		b.title = b.probe.title
	}

	for _, e := range elements {
		if e.Kind == model.ElementParagraph && e.Paragraph != nil {
			b.updatePageNumber(e.Paragraph)
		}
		b.splitElementContent(e)
	}

	if b.current != nil && !b.inHeadings(b.current) {
		b.headings = append(b.headings, b.current)
	}
	if b.pending != nil {
		newCtx := b.appendBodyOrBreak("", false, false)
		if newCtx {
			b.headings = append(b.headings, b.current)
		}
	}

	final := make([]*model.Context, 0, len(b.headings))
	for _, h := range b.headings {
		h.BodyText = strings.TrimSpace(h.BodyText)
		h.Parent = nil
		if h.BodyText == "" && len(h.Nested) == 0 {
			continue
		}
		final = append(final, h)
	}
	b.headings = final

	return Result{Headings: b.headings, Title: b.title}
}

func (b *Builder) inHeadings(ctx *model.Context) bool {
	for _, h := range b.headings {
		if h == ctx {
			return true
		}
	}
	return false
}

func (b *Builder) updatePageNumber(p *model.Paragraph) {
	if p.PageBreak {
		b.pageNumber++
	}
}

// splitElementContent dispatches on element kind (§4.4).
func (b *Builder) splitElementContent(e model.Element) {
	if e.Kind == model.ElementTable && e.Table != nil {
		md := tableToMarkdown(e.Table)
		b.appendBodyOrBreak(md, false, true)
		if !isSingleCellTable(e.Table) && b.current != nil {
			b.current.KeepFull = true
		}
		return
	}

	p := e.Paragraph
	if p == nil {
		return
	}
	if b.isSkipElement(p) {
		return
	}

	text := strings.TrimSpace(p.Text)
	isHeading := strings.HasPrefix(p.StyleName, "heading")
	isCustomList := strings.HasPrefix(p.StyleName, "list")
	isDefaultList := p.ListID != ""
	isNormalParagraph := !(isHeading || isCustomList || isDefaultList)

	if !isNormalParagraph {
		ctx := b.bindHeadingOrListToContext(p)
		if p.ListID != "" {
			if _, seen := b.listIDToCtx[p.ListID]; !seen {
				b.listIDToCtx[p.ListID] = ctx.ID
			}
		}
		return
	}

	previousIsNestedHeading := b.current != nil && len(b.current.Nested) > 0
	lastCtx := b.lastContext()
	lastCtxIsImportant := lastCtx != nil && lastCtx.IsList && lastCtx.NumericKind.Important()
	if previousIsNestedHeading {
		if lastCtxIsImportant {
			lastCtx.BodyText = strings.TrimSpace(lastCtx.BodyText + "\n" + text)
			return
		}
		b.toNextContext(b.current.Level, b.current.Title, b.current.IsHeading)
	}
	b.appendBodyOrBreak(text, true, false)
}

// isSkipElement captures an explicit "title"-styled paragraph and, in
// unstructured documents, routes every paragraph through the font-size
// probe instead of style-prefix classification (§4.3).
func (b *Builder) isSkipElement(p *model.Paragraph) bool {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return true
	}
	if p.StyleName == "title" {
		if b.title == "" {
			b.title = text
		}
		return true
	}
	if !b.probe.structured {
		b.chunkByFontSizeLevel(p)
		return true
	}
	return false
}

func (b *Builder) chunkByFontSizeLevel(p *model.Paragraph) {
	text := strings.TrimSpace(p.Text)
	level, isHeading := b.probe.headingLevel(p)
	if isHeading {
		b.toNextContext(level, text, true)
		return
	}
	b.appendBodyOrBreak(text, true, false)
}

var listStyleLevelPattern = regexp.MustCompile(`^list (\d+)$`)

// paragraphListLevel resolves the effective level for a list-styled or
// numbered paragraph per §4.4's "List item" rule.
func (b *Builder) paragraphListLevel(p *model.Paragraph, hasListItem bool) int {
	style := p.StyleName
	if strings.HasPrefix(style, "list") {
		if m := listStyleLevelPattern.FindStringSubmatch(style); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
		if style == "list paragraph" {
			if hasListItem {
				return p.ListLevel
			}
			return model.RootLevel
		}
		if b.current != nil {
			return b.current.Level + 1
		}
		return 0
	}
	if hasListItem {
		return p.ListLevel
	}
	return model.RootLevel
}

// bindHeadingOrListToContext handles heading and list-item paragraphs:
// the placement-rules core of §4.4.
func (b *Builder) bindHeadingOrListToContext(p *model.Paragraph) *model.Context {
	text := strings.TrimSpace(p.Text)
	style := p.StyleName

	var info model.ListItemInfo
	hasListItem := p.ListID != ""
	if hasListItem {
		info = b.numIndex.Render(b.counter, p.ListID, p.ListLevel)
	}

	if strings.HasPrefix(style, "heading") {
		lvl := headingStyleLevel(style)
		b.toNextContext(lvl, text, true)
		b.current.BodyText = text
		return b.current
	}

	paraLevel := b.paragraphListLevel(p, hasListItem)
	isImportant := hasListItem && info.NumericKind.Important()

	if hasListItem && info.RenderedMarker != "" {
		text = info.RenderedMarker + " " + text
	}

	nextItem := model.NewContext(b.nextID(), paraLevel)
	nextItem.IsList = true
	nextItem.BodyText = text
	if b.current != nil {
		nextItem.Title = b.current.Title
	}
	if hasListItem {
		nextItem.ListItemID = p.ListID
		nextItem.ListItemValue = info.RenderedMarker
		nextItem.NumericKind = info.NumericKind
	}
	nextItem.PageNumber = b.pageNumber

	if b.current == nil {
		root := model.NewContext(b.nextID(), model.RootLevel)
		root.IsHeading = true
		root.PageNumber = b.pageNumber
		root.Nested = append(root.Nested, nextItem)
		b.current = root
		return nextItem
	}

	if len(b.current.Nested) == 0 {
		prevTitle := b.current.Title
		prevBody := ""
		if b.pending != nil {
			prevTitle = b.pending.Title
			prevBody = b.pending.BodyText
			b.pending = nil
		}
		b.toNextContext(paraLevel, prevTitle, false)
		b.current.BodyText = prevBody
		b.current.Nested = append(b.current.Nested, nextItem)
		return nextItem
	}

	lastCtx := b.lastContext()
	isLowerLevel := paraLevel > b.current.Nested[0].Level
	listContainer := b.current.Nested[len(b.current.Nested)-1]

	if !isLowerLevel && (lastCtx == nil || p.ListID != lastCtx.ListItemID) {
		if _, seen := b.counter[p.ListID]; !seen {
			isLowerLevel = true
			listContainer = lastCtx
		} else if isImportant {
			if anchorID, ok := b.listIDToCtx[p.ListID]; ok {
				if found := b.findContextContainingList(anchorID); found != nil {
					listContainer = found
				}
			}
		}
	}

	// Decided open question: a numeric-kind change at the same level
	// starts a fresh nesting rather than continuing the prior counter.
	if lastCtx != nil && lastCtx.IsList && lastCtx.NumericKind != "" &&
		hasListItem && lastCtx.NumericKind != info.NumericKind {
		listContainer = lastCtx
	}

	if isLowerLevel {
		sentences := splitIntoSentences(listContainer.BodyText)
		lastSentence := ""
		if len(sentences) > 0 {
			lastSentence = strings.TrimSpace(sentences[len(sentences)-1])
		}
		listItem := model.NewContext(b.nextID(), paraLevel)
		listItem.IsList = true
		listItem.Title = joinNonEmpty([]string{listContainer.Title, lastSentence}, titleSeparator)
		if hasListItem {
			listItem.ListItemID = p.ListID
			listItem.ListItemValue = info.RenderedMarker
			listItem.NumericKind = info.NumericKind
		}
		listItem.BodyText = text
		listItem.PageNumber = b.pageNumber
		listContainer.Nested = append(listContainer.Nested, listItem)
		return listItem
	}

	switch {
	case len(listContainer.Nested) > 0:
		listContainer.Nested = append(listContainer.Nested, nextItem)
	case !isImportant:
		listContainer.Nested = []*model.Context{nextItem}
	default:
		b.current.Nested = append(b.current.Nested, nextItem)
	}
	return nextItem
}

func headingStyleLevel(style string) int {
	rest := strings.TrimPrefix(style, "heading")
	rest = strings.TrimSpace(rest)
	n, err := strconv.Atoi(digitsOnly(rest))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// lastContext returns the current context's deepest last nested child,
// or the current context itself if it has no nested children.
func (b *Builder) lastContext() *model.Context {
	if b.current == nil {
		return nil
	}
	ctx := b.current
	for len(ctx.Nested) > 0 {
		ctx = ctx.Nested[len(ctx.Nested)-1]
	}
	return ctx
}

// findContextContainingList searches the closed headings list plus the
// open current context for the node with the given id and returns the
// top-level context whose subtree holds it (the node itself only when
// it is top-level).
func (b *Builder) findContextContainingList(id string) *model.Context {
	candidates := append(append([]*model.Context{}, b.headings...), b.current)
	for _, root := range candidates {
		if found := findByID(root, id); found != nil {
			return found
		}
	}
	return nil
}

func findByID(ctx *model.Context, id string) *model.Context {
	if ctx == nil {
		return nil
	}
	if ctx.ID == id {
		return ctx
	}
	for _, child := range ctx.Nested {
		if found := findByID(child, id); found != nil {
			return ctx
		}
	}
	return nil
}

// toNextContext closes the current context (if any), flushing pending
// text into it, and opens a new one. A deeper level becomes a child of
// the current context, titled with the current title extended by text.
// Otherwise only the current context's immediate parent is consulted:
// if it is still linked, the new title is the parent's title extended by
// text; if not, the new title is the document title alone. The spine
// above the immediate parent is not walked. Titles are deduplicated.
func (b *Builder) toNextContext(nextLevel int, text string, isHeading bool) *model.Context {
	if b.pending != nil {
		if b.current != nil {
			b.current.BodyText = strings.TrimSpace(b.current.BodyText + "\n" + b.pending.BodyText)
		}
		b.pending = nil
	}

	if b.current == nil {
		next := model.NewContext(b.nextID(), nextLevel)
		next.IsHeading = isHeading
		next.IsList = !isHeading
		next.Title = b.title
		b.current = next
		return b.current
	}

	if !b.inHeadings(b.current) {
		b.headings = append(b.headings, b.current)
	}

	next := model.NewContext(b.nextID(), nextLevel)
	next.IsHeading = isHeading
	next.IsList = !isHeading

	switch {
	case nextLevel > b.current.Level:
		next.Parent = b.current
		if isHeading {
			next.Level = nextLevel
		} else {
			next.Level = nextLevel - 1
		}
		next.Title = joinNonEmpty([]string{b.current.Title, text}, titleSeparator)
	case b.current.Parent != nil:
		next.Title = joinNonEmpty([]string{b.current.Parent.Title, text}, titleSeparator)
	default:
		next.Title = b.title
	}

	if b.current.Parent != nil {
		b.current.Parent = nil
	}
	b.current = next
	return b.current
}

// appendBodyOrBreak appends text to the current context's body, sealing
// it into the headings list and opening a fresh continuation context
// whenever the running word count would exceed the soft budget. Returns
// true if a new continuation context was opened.
func (b *Builder) appendBodyOrBreak(text string, isDefault bool, isTable bool) bool {
	nextText := b.queuedText(text, isDefault)
	newContext := false

	if b.current == nil {
		root := model.NewContext(b.nextID(), model.RootLevel)
		root.IsHeading = true
		root.PageNumber = b.pageNumber
		b.current = root
	}
	if b.current.IsHeading && b.current.Level != model.RootLevel {
		if !b.inHeadings(b.current) {
			b.headings = append(b.headings, b.current)
		}
		fresh := model.NewContext(b.nextID(), model.RootLevel)
		fresh.PageNumber = b.pageNumber
		b.current = fresh
	}

	if wordCount(b.current.BodyText)+wordCount(nextText) > b.chunkSize {
		if !b.inHeadings(b.current) {
			b.headings = append(b.headings, b.current)
		}
		continued := model.NewContext(b.nextID(), b.current.Level)
		continued.IsHeading = b.current.IsHeading
		continued.IsList = b.current.IsList
		continued.Title = b.current.Title
		continued.PageNumber = b.pageNumber
		b.current = continued
		newContext = true
	}

	b.current.BodyText = strings.TrimSpace(b.current.BodyText + "\n" + nextText)
	return newContext
}

// queuedText rotates the pending-text slot: the previously queued body
// is returned for appending now, while text becomes the new pending
// body for next time. This one-element-of-lookahead queue is what lets
// a trailing plain paragraph after a heading with no body yet decide,
// one element later, whether the heading turned out to have body text.
func (b *Builder) queuedText(text string, isDefault bool) string {
	lvl := model.RootLevel
	isHeading := false
	if b.current != nil {
		lvl = b.current.Level
		isHeading = b.current.IsHeading
	}
	if isDefault {
		lvl = model.RootLevel
		isHeading = false
	}
	out := ""
	if b.pending != nil {
		out = b.pending.BodyText
	}
	pending := model.NewContext(b.nextID(), lvl)
	pending.IsHeading = isHeading
	pending.BodyText = text
	if b.current != nil {
		pending.Title = b.current.Title
	} else {
		pending.Title = b.title
	}
	b.pending = pending
	return out
}

var sentenceDelimiters = regexp.MustCompile(`[.?!]`)

func splitIntoSentences(text string) []string {
	return sentenceDelimiters.Split(text, -1)
}

// joinNonEmpty dedupes items (splitting each on sep first, matching the
// source's "distinct title" composition), preserving first occurrence.
func joinNonEmpty(items []string, sep string) string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if item == "" {
			continue
		}
		for _, part := range strings.Split(item, sep) {
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return strings.Join(out, sep)
}

// wordCount counts whitespace-delimited tokens, matching Python's
// str.split() semantics (any run of whitespace is a separator, leading/
// trailing whitespace produces no empty tokens).
func wordCount(s string) int {
	return len(strings.Fields(s))
}
