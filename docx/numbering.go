package docx

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/docchunk/model"
)

// NumberingIndex is the parsed numbering-style index (spec §4.2): a
// num-id -> abstract-id map layered under an abstract-id -> level
// lookup, exposing format_of/start_of and the rendered-marker derivation
// that must reproduce the source's rendering bit-for-bit.
type NumberingIndex struct {
	numToAbstract map[string]string
	levels        model.NumberingDefinition // abstract-id -> level -> def
}

// NewNumberingIndex builds an index from a parsed numbering.xml. A nil
// input (part missing, or malformed and recovered as NumberingParseError)
// yields an empty index: every lookup then falls back to "bullet, •".
func NewNumberingIndex(nb *numberingXML) *NumberingIndex {
	idx := &NumberingIndex{
		numToAbstract: make(map[string]string),
		levels:        make(model.NumberingDefinition),
	}
	if nb == nil {
		return idx
	}
	for _, n := range nb.Nums {
		idx.numToAbstract[n.NumID] = n.AbstractNumID.Val
	}
	for _, an := range nb.AbstractNums {
		byLevel := make(map[int]model.LevelDef)
		for _, lvl := range an.Levels {
			level, err := strconv.Atoi(lvl.ILvl)
			if err != nil {
				continue
			}
			start := 1
			if lvl.Start.Val != "" {
				if v, err := strconv.Atoi(lvl.Start.Val); err == nil {
					start = v
				}
			}
			byLevel[level] = model.LevelDef{
				Format: lvl.LvlText.Val,
				Kind:   model.NumericKind(lvl.NumFmt.Val),
				Start:  start,
			}
		}
		idx.levels[an.AbstractNumID] = byLevel
	}
	return idx
}

// formatOf resolves (format_template, numeric_kind) for a list-id/level,
// defaulting to a literal bullet when the numbering part never defined
// this level (malformed or absent numbering, or a level beyond what was
// declared).
func (idx *NumberingIndex) formatOf(listID string, level int) (string, model.NumericKind) {
	abs, ok := idx.numToAbstract[listID]
	if !ok {
		return "", model.KindBullet
	}
	byLevel, ok := idx.levels[abs]
	if !ok {
		return "", model.KindBullet
	}
	def, ok := byLevel[level]
	if !ok {
		return "", model.KindBullet
	}
	return def.Format, def.Kind
}

// startOf resolves the 1-based start value for a list-id/level,
// defaulting to 1 when absent or non-numeric.
func (idx *NumberingIndex) startOf(listID string, level int) int {
	abs, ok := idx.numToAbstract[listID]
	if !ok {
		return 1
	}
	def, ok := idx.levels[abs][level]
	if !ok || def.Start <= 0 {
		return 1
	}
	return def.Start
}

// placeholderPattern matches the %N placeholders in a level-text
// template (e.g. "%1.%2.").
var placeholderPattern = regexp.MustCompile(`%(\d)`)

// bulletSubstitutions maps the two reserved Private-Use-Area codepoints
// the source substitutes when rendering a bullet glyph.
var bulletSubstitutions = map[rune]string{
	'': "•", // solid round bullet
	'': "-",
}

// Render resolves a list item observed at (listID, level): it advances
// the shared counter for that level only (shallower levels contribute
// their current count, or their start value if never seen) and derives the rendered marker per the §4.2
// algorithm, which must be reproduced bit-for-bit since chunk bodies
// embed these markers literally.
func (idx *NumberingIndex) Render(counter model.ListCounter, listID string, level int) model.ListItemInfo {
	format, kind := idx.formatOf(listID, level)

	level0Format, _ := idx.formatOf(listID, 0)
	prefix := literalPrefix(level0Format)
	suffix := literalSuffix(format)

	glyphs := make([]string, 0, level+1)
	var lastGlyph string
	var rawCount int
	for i := 0; i <= level; i++ {
		lvlFormat, lvlKind := idx.formatOf(listID, i)
		start := idx.startOf(listID, i)
		var count int
		if i == level {
			count = counter.Next(listID, i, start)
			rawCount = count
		} else if c, seen := counter[listID][i]; seen {
			count = c
		} else {
			count = start
		}
		glyph := renderGlyph(lvlKind, count, lvlFormat)
		glyphs = append(glyphs, glyph)
		lastGlyph = glyph
	}

	var marker string
	switch {
	case kind == model.KindBullet:
		marker = lastGlyph
	case isAlone(format):
		marker = prefix + lastGlyph + suffix
	default:
		marker = prefix + strings.Join(glyphs, ".") + suffix
	}

	return model.ListItemInfo{
		ListID:         listID,
		Level:          level,
		RenderedMarker: marker,
		NumericKind:    kind,
		RawCount:       rawCount,
	}
}

// literalPrefix returns the characters of a level-text template before
// its first placeholder, or "" if the template has no placeholder (e.g.
// a bullet glyph).
func literalPrefix(format string) string {
	loc := placeholderPattern.FindStringIndex(format)
	if loc == nil {
		return ""
	}
	return format[:loc[0]]
}

// literalSuffix returns the characters of a level-text template after
// its last placeholder.
func literalSuffix(format string) string {
	matches := placeholderPattern.FindAllStringIndex(format, -1)
	if len(matches) == 0 {
		return ""
	}
	last := matches[len(matches)-1]
	return format[last[1]:]
}

// isAlone reports whether a level-text template contains exactly one
// placeholder, the "alone" format case of §4.2 rule 4.
func isAlone(format string) bool {
	return len(placeholderPattern.FindAllStringIndex(format, -1)) == 1
}

// renderGlyph renders a single counter value to its glyph by numeric
// kind. Bullet kind renders the literal format string (with reserved
// codepoints substituted), never the counter.
func renderGlyph(kind model.NumericKind, count int, format string) string {
	switch kind {
	case model.KindDecimal:
		return strconv.Itoa(count)
	case model.KindLowerRoman:
		return strings.ToLower(toRoman(count))
	case model.KindUpperRoman:
		return toRoman(count)
	case model.KindLowerLetter:
		return letterGlyph(count, 'a')
	case model.KindUpperLetter:
		return letterGlyph(count, 'A')
	case model.KindBullet:
		return substituteBulletGlyph(format)
	default:
		return substituteBulletGlyph(format)
	}
}

// letterGlyph renders 1-based count to a letter starting at base,
// wrapping a-z/A-Z after 26 the way Word's lowerLetter/upperLetter
// formats do (27 -> "aa").
func letterGlyph(count int, base byte) string {
	if count <= 0 {
		count = 1
	}
	var out []byte
	for count > 0 {
		count--
		out = append([]byte{base + byte(count%26)}, out...)
		count /= 26
	}
	return string(out)
}

func substituteBulletGlyph(format string) string {
	if sub, ok := bulletSubstitutions[firstRune(format)]; ok && len([]rune(format)) == 1 {
		return sub
	}
	var sb strings.Builder
	for _, r := range format {
		if sub, ok := bulletSubstitutions[r]; ok {
			sb.WriteString(sub)
		} else {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "•"
	}
	return sb.String()
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// toRoman renders 1..3999 to upper-case Roman numerals via the standard
// subtract-largest-value algorithm.
func toRoman(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	for _, rv := range romanTable {
		for n >= rv.value {
			sb.WriteString(rv.symbol)
			n -= rv.value
		}
	}
	return sb.String()
}

// FromRoman parses an upper- or lower-case Roman numeral back to its
// integer value. Used by the Roman-rendering round-trip test property.
func FromRoman(s string) int {
	s = strings.ToUpper(s)
	vals := map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}
	total := 0
	prev := 0
	for i := len(s) - 1; i >= 0; i-- {
		v, ok := vals[s[i]]
		if !ok {
			continue
		}
		if v < prev {
			total -= v
		} else {
			total += v
		}
		prev = v
	}
	return total
}
