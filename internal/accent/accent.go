// Package accent folds Vietnamese diacritics to their base Latin
// letters. It is opt-in: the chunking pipeline stores text NFC
// normalized, never folded, since folding is lossy and not part of the
// default output contract.
package accent

import "regexp"

type foldRule struct {
	pattern *regexp.Regexp
	repl    string
}

var rules = []foldRule{
	{regexp.MustCompile(`[àáạảãâầấậẩẫăằắặẳẵ]`), "a"},
	{regexp.MustCompile(`[ÀÁẠẢÃĂẰẮẶẲẴÂẦẤẬẨẪ]`), "A"},
	{regexp.MustCompile(`[èéẹẻẽêềếệểễ]`), "e"},
	{regexp.MustCompile(`[ÈÉẸẺẼÊỀẾỆỂỄ]`), "E"},
	{regexp.MustCompile(`[òóọỏõôồốộổỗơờớợởỡ]`), "o"},
	{regexp.MustCompile(`[ÒÓỌỎÕÔỒỐỘỔỖƠỜỚỢỞỠ]`), "O"},
	{regexp.MustCompile(`[ìíịỉĩ]`), "i"},
	{regexp.MustCompile(`[ÌÍỊỈĨ]`), "I"},
	{regexp.MustCompile(`[ùúụủũưừứựửữ]`), "u"},
	{regexp.MustCompile(`[ƯỪỨỰỬỮÙÚỤỦŨ]`), "U"},
	{regexp.MustCompile(`[ỳýỵỷỹ]`), "y"},
	{regexp.MustCompile(`[ỲÝỴỶỸ]`), "Y"},
	{regexp.MustCompile(`[Đ]`), "D"},
	{regexp.MustCompile(`[đ]`), "d"},
}

// Fold replaces every Vietnamese diacritic in s with its base letter.
func Fold(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.repl)
	}
	return s
}
