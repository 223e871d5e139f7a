package docx

// resolvedStyle is the subset of a style definition the chunker cares
// about: its display name (for "heading N" / "list N" prefix matching)
// and the font size it resolves to, for the font-size probe.
type resolvedStyle struct {
	Name     string
	FontSize float64
}

// StyleResolver resolves a paragraph style ID to its name and font size,
// walking the basedOn inheritance chain. Style-level font sizes are not
// read (see runFontSize), so the resolved size is always the default.
type StyleResolver struct {
	styles      map[string]*styleDefXML
	resolved    map[string]*resolvedStyle
	defaultSize float64
}

// NewStyleResolver builds a resolver from a parsed styles.xml. A nil
// styles part (missing/unreadable) yields a resolver that always returns
// the Word default, matching the "missing part is not an error" rule.
func NewStyleResolver(styles *stylesXML) *StyleResolver {
	sr := &StyleResolver{
		styles:      make(map[string]*styleDefXML),
		resolved:    make(map[string]*resolvedStyle),
		defaultSize: 11,
	}
	if styles == nil {
		return sr
	}
	for i := range styles.Styles {
		s := &styles.Styles[i]
		sr.styles[s.StyleID] = s
	}
	return sr
}

// Resolve returns the resolved name/size for a style ID, defaulting to
// the style ID itself as the name when no definition is found (built-in
// styles like "Heading1" are frequently referenced without an explicit
// <w:style> entry).
func (sr *StyleResolver) Resolve(styleID string) *resolvedStyle {
	if styleID == "" {
		return &resolvedStyle{FontSize: sr.defaultSize}
	}
	if r, ok := sr.resolved[styleID]; ok {
		return r
	}

	resolved := &resolvedStyle{Name: styleID, FontSize: sr.defaultSize}
	def, ok := sr.styles[styleID]
	if !ok {
		sr.resolved[styleID] = resolved
		return resolved
	}
	resolved.Name = def.Name.Val
	if resolved.Name == "" {
		resolved.Name = styleID
	}

	chain := sr.inheritanceChain(styleID)
	for _, sid := range chain {
		if d, ok := sr.styles[sid]; ok {
			if sz := runFontSize(d); sz > 0 {
				resolved.FontSize = sz
			}
		}
	}

	sr.resolved[styleID] = resolved
	return resolved
}

func (sr *StyleResolver) inheritanceChain(styleID string) []string {
	var chain []string
	visited := map[string]bool{}
	cur := styleID
	for cur != "" && !visited[cur] {
		visited[cur] = true
		chain = append([]string{cur}, chain...)
		def, ok := sr.styles[cur]
		if !ok {
			break
		}
		cur = def.BasedOn.Val
	}
	return chain
}

// runFontSize is a placeholder hook that always returns 0 (no override):
// styleDefXML does not decode <w:style><w:rPr><w:sz>, so only the
// per-run override in reader.go changes a paragraph's font size.
func runFontSize(def *styleDefXML) float64 {
	_ = def
	return 0
}
