// Package chunk implements the chunk emitter (spec §4.5): it flattens
// the outline tree produced by the outline builder into a flat,
// sequentially-indexed list of output chunks, each bounded by a soft
// word budget and carrying a breadcrumb title.
package chunk

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/docchunk/model"
)

// titleSeparator joins breadcrumb title components. Must match the
// outline builder's separator since titles cross the package boundary
// already joined.
const titleSeparator = "#|#"

// Record is one emitted chunk, ready for serialization (§6). Field
// names follow the external JSON interface exactly, since downstream
// consumers (the embedder reads title+" - "+text) key off these names.
type Record struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Index int    `json:"index"`
	Page  int    `json:"page"`
	End   bool   `json:"end"`
}

// piece is the emitter's internal merge currency: a span of text with
// an optional title and source metadata. Pieces produced by merging
// carry only text/title; page defaults to zero and becomes 1 when
// records are built. isTable and keepFull are carried but do not affect
// the emitted record.
type piece struct {
	title    string
	text     string
	isTable  bool
	page     int
	keepFull bool
}

// Emitter turns an outline into chunk records.
type Emitter struct {
	chunkSize int
	nextID    func() string
}

// New builds an Emitter. chunkSize is the soft per-chunk word budget;
// nextID supplies opaque ids used to namespace nested-list headers
// during merge (google/uuid in production, a deterministic sequence in
// tests).
func New(chunkSize int, nextID func() string) *Emitter {
	return &Emitter{chunkSize: chunkSize, nextID: nextID}
}

// Build flattens headings (the outline builder's closed spine, in
// document order) into output records.
func (e *Emitter) Build(headings []*model.Context, docTitle string) []Record {
	var chunks []piece
	var standaloneHeading *model.Context
	levelHeadTitles := map[int]string{}

	prepareHeading := func(h *model.Context) {
		levelHeadTitles[h.Level] = h.BodyText
		for i := 1; i <= 3; i++ {
			if i > h.Level {
				delete(levelHeadTitles, i)
			}
		}
	}
	buildTitle := func() string {
		var titles []string
		for i := 0; i < standaloneHeading.Level; i++ {
			if t, ok := levelHeadTitles[i+1]; ok {
				titles = append(titles, t)
			}
		}
		return strings.Join(titles, titleSeparator)
	}
	appendChunks := func(next []piece) {
		for _, c := range next {
			if standaloneHeading != nil {
				c.title = buildTitle()
			}
			chunks = append(chunks, c)
		}
	}

	for _, heading := range headings {
		title := heading.Title
		if title == "" {
			title = docTitle
		}
		heading.Title = title

		id := e.nextID()
		content := strings.TrimSpace(heading.BodyText)
		next := piece{
			title:    title,
			text:     content,
			isTable:  heading.IsTable,
			page:     heading.PageNumber,
			keepFull: heading.KeepFull,
		}

		if len(heading.Nested) == 0 {
			if heading.IsHeading && heading.Level != model.RootLevel {
				prepareHeading(heading)
				standaloneHeading = heading
				continue
			}
			if content != "" {
				appendChunks([]piece{next})
			}
			continue
		}

		merged := e.mergePieces(id, heading, true)
		if len(merged) == 0 {
			continue
		}
		if len(heading.Nested) == 1 {
			appendChunks(mergeContentByMaxLength(&next, merged, e.chunkSize))
			continue
		}
		if content != "" {
			appendChunks([]piece{next})
		}
		appendChunks(merged)
	}

	var titled []piece
	for _, c := range chunks {
		if strings.TrimSpace(c.text) == "" {
			continue
		}
		if c.title != "" {
			c.title = beautifyTitle(c.title)
		} else {
			c.title = docTitle
		}
		titled = append(titled, c)
	}

	var records []Record
	for _, c := range titled {
		if utf8.RuneCountInString(c.text) < 5 {
			continue
		}
		page := c.page
		if page == 0 {
			page = 1
		}
		records = append(records, Record{
			Title: c.title,
			Text:  c.text,
			Index: len(records) + 1, // 1-based position in the output sequence (§6)
			Page:  page,
			// should_keep_full_text's effect on the "end" flag is
			// computed then immediately overwritten unconditionally in
			// the source; every emitted record ends its chunk.
			End: true,
		})
	}
	return records
}

// mergePieces recursively folds a heading's nested list items into a
// flat run of pieces, propagating breadcrumb titles down through
// sub-lists as it unwinds.
func (e *Emitter) mergePieces(id string, heading *model.Context, isRoot bool) []piece {
	if len(heading.Nested) == 0 {
		return nil
	}

	idx := 1
	var out []piece
	nextHeader := func() string {
		h := id + titleSeparator + strconv.Itoa(idx)
		idx++
		return h
	}

	previousIsNested := false
	for i, item := range heading.Nested {
		content := strings.TrimSpace(item.BodyText)
		if content != "" {
			switch {
			case previousIsNested:
				out = append(out, piece{text: content})
			case len(item.Nested) == 0:
				out = toNextPiece(out, content, e.chunkSize)
			}
		}

		if len(item.Nested) > 0 {
			item.Title = heading.Title
			nextMerged := e.mergePieces(nextHeader(), item, true)

			switch {
			case len(heading.Nested) == 1:
				out = toNextPiece(out, content, e.chunkSize)
				var lastItem *piece
				if len(out) > 0 {
					lastItem = &out[len(out)-1]
				}
				out = mergeContentByMaxLength(lastItem, nextMerged, e.chunkSize)
			case i == 0 || previousIsNested:
				if content != "" {
					out = append(out, piece{text: content})
				}
				var lastItem *piece
				if len(out) > 0 {
					lastItem = &out[len(out)-1]
				}
				merged := mergeContentByMaxLength(lastItem, nextMerged, e.chunkSize)
				if len(merged) > 1 {
					for j := range merged {
						merged[j].title = lastSentence(merged[j].text)
					}
				}
				if lastItem != nil {
					out = append(out, merged[1:]...)
				} else {
					out = append(out, merged...)
				}
			default:
				out = append(out, mergeContentByMaxLength(&piece{text: content}, nextMerged, e.chunkSize)...)
			}
			previousIsNested = true
			continue
		}
		previousIsNested = false
	}

	if isRoot {
		for j := range out {
			if out[j].title == "" {
				out[j].title = heading.Title
			} else {
				out[j].title = heading.Title + "\n" + out[j].title
			}
		}
	}
	return out
}

// mergeContentByMaxLength seeds a merge run with existence (or an empty
// piece if nil) and folds each of nextMerged into it via toNextPiece.
func mergeContentByMaxLength(existence *piece, nextMerged []piece, chunkSize int) []piece {
	var seed piece
	if existence != nil {
		seed = *existence
	}
	out := []piece{seed}
	for _, item := range nextMerged {
		out = toNextPiece(out, strings.TrimSpace(item.text), chunkSize)
	}
	return out
}

// toNextPiece appends text to the last piece's body, or starts a new
// piece when doing so would exceed the soft word budget.
func toNextPiece(out []piece, nextText string, chunkSize int) []piece {
	if len(out) == 0 {
		out = append(out, piece{})
	}
	nextText = strings.TrimSpace(nextText)
	last := &out[len(out)-1]
	if wordCount(last.text)+wordCount(nextText) > chunkSize {
		out = append(out, piece{text: nextText})
		return out
	}
	if strings.TrimSpace(last.text) == "" {
		last.text = nextText
	} else {
		last.text = strings.TrimSpace(last.text) + "\n" + nextText
	}
	return out
}

// lastSentence returns the final sentence of text, or "" if text holds
// none.
func lastSentence(text string) string {
	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	return strings.TrimSpace(sentences[len(sentences)-1])
}

var sentenceDelimiters = []byte{'.', '?', '!'}

func splitIntoSentences(text string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		for _, d := range sentenceDelimiters {
			if r == rune(d) {
				s := strings.TrimSpace(cur.String())
				if s != "" {
					out = append(out, s)
				}
				cur.Reset()
				break
			}
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

// beautifyTitle deduplicates a "#|#"-joined breadcrumb title: each
// component is itself split on newlines, and duplicate lines (by first
// occurrence) are dropped. Applying this twice to its own output is a
// no-op, since a single-line, already-deduplicated title splits into
// one part and is returned unchanged.
func beautifyTitle(title string) string {
	parts := strings.Split(title, titleSeparator)
	if len(parts) <= 1 {
		return title
	}
	seen := map[string]bool{}
	var lines []string
	for _, part := range parts {
		for _, line := range strings.Split(part, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// wordCount counts whitespace-delimited tokens, matching Python's
// str.split() semantics.
func wordCount(s string) int {
	return len(strings.Fields(s))
}
