// Package docx implements the container reader (spec stage 1) and the
// numbering-style index (spec stage 2) for word-processing zip packages.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/docchunk/internal/errs"
	"github.com/tsawler/docchunk/model"
)

// Reader opens a packaged word-processing document and exposes its body
// elements in document order, plus the index built from its numbering
// part.
type Reader struct {
	zr *zip.ReadCloser

	document  *documentXML
	styles    *stylesXML
	numbering *numberingXML

	styleResolver *StyleResolver
	numIndex      *NumberingIndex

	elements     []model.Element
	documentTitle string
}

// Open reads the zip package at path and parses its document, styles,
// and numbering parts. Missing styles/numbering parts degrade locally
// (empty resolver / empty index); only an unreadable container or a
// missing document part is a ContainerError.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &errs.ContainerError{Path: path, Err: err}
	}

	r := &Reader{zr: zr}

	docBytes, err := r.getFile("word/document.xml")
	if err != nil {
		zr.Close()
		return nil, &errs.ContainerError{Path: path, Err: fmt.Errorf("missing word/document.xml: %w", err)}
	}

	var doc documentXML
	if err := xml.Unmarshal(docBytes, &doc); err != nil {
		zr.Close()
		return nil, &errs.ContainerError{Path: path, Err: fmt.Errorf("malformed word/document.xml: %w", err)}
	}
	r.document = &doc

	if doc.Body != nil {
		if err := parseBodyOrder(docBytes, doc.Body); err != nil {
			// order-preservation is best-effort; fall back to the
			// unordered paragraph/table slices from the struct decode.
			doc.Body.Elements = fallbackOrder(doc.Body)
		}
	}

	if stylesBytes, err := r.getFile("word/styles.xml"); err == nil {
		var st stylesXML
		if xml.Unmarshal(stylesBytes, &st) == nil {
			r.styles = &st
		}
	}
	r.styleResolver = NewStyleResolver(r.styles)

	if numBytes, err := r.getFile("word/numbering.xml"); err == nil {
		var nb numberingXML
		if err := xml.Unmarshal(numBytes, &nb); err != nil {
			// Recover locally with an empty index; every lookup then
			// falls back to a literal bullet.
			slog.Default().Warn("numbering part malformed, degrading to empty index",
				"path", path, "error", &errs.NumberingParseError{Err: err})
			r.numIndex = NewNumberingIndex(nil)
		} else {
			r.numbering = &nb
			r.numIndex = NewNumberingIndex(&nb)
		}
	} else {
		r.numIndex = NewNumberingIndex(nil)
	}

	if coreBytes, err := r.getFile("docProps/core.xml"); err == nil {
		var cp corePropertiesXML
		if xml.Unmarshal(coreBytes, &cp) == nil {
			r.documentTitle = cp.Title
		}
	}

	r.buildElements()
	return r, nil
}

// Close releases the underlying zip handle.
func (r *Reader) Close() error {
	return r.zr.Close()
}

// getFile returns the decompressed contents of a named part, or an error
// if absent.
func (r *Reader) getFile(name string) ([]byte, error) {
	for _, f := range r.zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%s: not present in package", name)
}

// Iterate returns the parsed body elements in document order.
func (r *Reader) Iterate() []model.Element {
	return r.elements
}

// NumberingIndex returns the parsed numbering-style index (stage 2).
func (r *Reader) NumberingIndex() *NumberingIndex {
	return r.numIndex
}

// DocumentTitle returns docProps/core.xml's <title>, if present. Passed
// to outline.New as the document title, it takes precedence over any
// "title"-styled paragraph, which is only captured when the title is
// empty.
func (r *Reader) DocumentTitle() string {
	return r.documentTitle
}

// fallbackOrder reconstructs a plausible document order when the raw
// token walk fails: paragraphs then tables is wrong in general, but it
// keeps the pipeline alive rather than losing the document outright.
func fallbackOrder(body *bodyXML) []bodyElement {
	out := make([]bodyElement, 0, len(body.Paragraphs)+len(body.Tables))
	for i := range body.Paragraphs {
		out = append(out, bodyElement{Type: "paragraph", Paragraph: &body.Paragraphs[i]})
	}
	for i := range body.Tables {
		out = append(out, bodyElement{Type: "table", Table: &body.Tables[i]})
	}
	return out
}

// parseBodyOrder walks the raw document.xml token stream to recover the
// true interleaving of <w:p> and <w:tbl> under <w:body>, which
// xml.Unmarshal's per-field slices otherwise discard.
func parseBodyOrder(raw []byte, body *bodyXML) error {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	depth := 0
	inBody := false
	pi, ti := 0, 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "body" {
				inBody = true
				continue
			}
			if !inBody {
				continue
			}
			depth++
			if depth != 1 {
				continue
			}
			switch name {
			case "p":
				var p paragraphXML
				if err := dec.DecodeElement(&p, &t); err != nil {
					return err
				}
				if pi < len(body.Paragraphs) {
					body.Elements = append(body.Elements, bodyElement{Type: "paragraph", Paragraph: &body.Paragraphs[pi]})
					pi++
				} else {
					body.Elements = append(body.Elements, bodyElement{Type: "paragraph", Paragraph: &p})
				}
				depth--
			case "tbl":
				var tb tableXML
				if err := dec.DecodeElement(&tb, &t); err != nil {
					return err
				}
				if ti < len(body.Tables) {
					body.Elements = append(body.Elements, bodyElement{Type: "table", Table: &body.Tables[ti]})
					ti++
				} else {
					body.Elements = append(body.Elements, bodyElement{Type: "table", Table: &tb})
				}
				depth--
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				inBody = false
			} else if inBody && depth > 0 {
				depth--
			}
		}
	}
	return nil
}

// buildElements converts the parsed XML tree into model.Elements,
// resolving style names, run font sizes, page-break markers, and
// numbering fragments.
func (r *Reader) buildElements() {
	if r.document == nil || r.document.Body == nil {
		return
	}
	for i, be := range r.document.Body.Elements {
		elem, err := r.classifyElement(be)
		if err != nil {
			slog.Default().Warn("skipping unclassifiable element",
				"error", &errs.ElementError{Index: i, Err: err})
			continue
		}
		if elem != nil {
			r.elements = append(r.elements, *elem)
		}
	}
}

// classifyElement converts one body element, guarding against a panic in
// either parse path so one malformed element never loses the rest of the
// document — the single per-element recovery boundary named in §4.4/§7.
func (r *Reader) classifyElement(be bodyElement) (elem *model.Element, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic classifying element: %v", p)
		}
	}()
	switch be.Type {
	case "paragraph":
		if be.Paragraph != nil {
			return &model.Element{
				Kind:      model.ElementParagraph,
				Paragraph: r.parseParagraph(*be.Paragraph),
			}, nil
		}
	case "table":
		if be.Table != nil {
			return &model.Element{
				Kind:  model.ElementTable,
				Table: parseTable(*be.Table),
			}, nil
		}
	}
	return nil, nil
}

func (r *Reader) parseParagraph(p paragraphXML) *model.Paragraph {
	styleID := p.Properties.Style.Val
	resolved := r.styleResolver.Resolve(styleID)

	var sb strings.Builder
	var runs []model.Run
	pageBreak := false
	for _, run := range p.Runs {
		text := extractRunText(run)
		sb.WriteString(text)
		size := resolved.FontSize
		if run.Props.FontSize.Val != "" {
			if v, err := strconv.ParseFloat(run.Props.FontSize.Val, 64); err == nil {
				size = v / 2
			}
		}
		runs = append(runs, model.Run{Text: text, FontSize: size})
		if run.LastRenderedPageBreak != nil {
			pageBreak = true
		}
		for _, br := range run.Breaks {
			if br.Type == "page" {
				pageBreak = true
			}
		}
	}

	numXML := ""
	listID := ""
	listLevel := 0
	if p.Properties.NumPr.NumID.Val != "" && p.Properties.NumPr.NumID.Val != "0" {
		numXML = fmt.Sprintf(`<w:numPr><w:ilvl w:val="%s"/><w:numId w:val="%s"/></w:numPr>`,
			p.Properties.NumPr.ILvl.Val, p.Properties.NumPr.NumID.Val)
		listID = p.Properties.NumPr.NumID.Val
		if v, err := strconv.Atoi(p.Properties.NumPr.ILvl.Val); err == nil {
			listLevel = v
		}
	}

	outlineLvl := -1
	if p.Properties.OutlineLvl.Val != "" {
		if v, err := strconv.Atoi(p.Properties.OutlineLvl.Val); err == nil {
			outlineLvl = v
		}
	}

	styleName := strings.ToLower(resolved.Name)
	if styleName == "" {
		styleName = strings.ToLower(styleID)
	}

	return &model.Paragraph{
		StyleName:  styleName,
		Runs:       runs,
		Text:       norm.NFC.String(sb.String()),
		NumXML:     numXML,
		ListID:     listID,
		ListLevel:  listLevel,
		PageBreak:  pageBreak,
		OutlineLvl: outlineLvl,
	}
}

// extractRunText concatenates a run's <w:t> children. Whitespace beyond
// what docx stores literally is not synthesized (no xml:space handling
// beyond what encoding/xml gives us via chardata).
func extractRunText(run runXML) string {
	var sb strings.Builder
	for _, t := range run.Text {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

func parseTable(t tableXML) *model.Table {
	rows := make([][]string, 0, len(t.Rows))
	// cellAnchor tracks, per column index, the last non-continuation
	// cell text seen — a vMerge continuation repeats it so downstream
	// merged-column collapsing can compare by equality.
	cellAnchor := map[int]string{}
	for _, row := range t.Rows {
		var cells []string
		col := 0
		for _, c := range row.Cells {
			span := 1
			if c.Properties.GridSpan.Val != "" {
				if v, err := strconv.Atoi(c.Properties.GridSpan.Val); err == nil && v > 0 {
					span = v
				}
			}
			text := strings.TrimSpace(cellText(c))
			isContinuation := c.Properties.VMerge.XMLName.Local != "" && c.Properties.VMerge.Val != "restart"
			if isContinuation {
				if anchored, ok := cellAnchor[col]; ok {
					text = anchored
				}
			} else {
				cellAnchor[col] = text
			}
			for i := 0; i < span; i++ {
				cells = append(cells, text)
				col++
			}
		}
		rows = append(rows, cells)
	}
	return &model.Table{Rows: padRows(rows)}
}

func cellText(c tableCellXML) string {
	var parts []string
	for _, p := range c.Paragraphs {
		var sb strings.Builder
		for _, run := range p.Runs {
			sb.WriteString(extractRunText(run))
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, " ")
}

// padRows pads short rows with single-space cells so an inconsistently
// shaped table (a TableShapeError condition) never fails the document.
func padRows(rows [][]string) [][]string {
	max, min := 0, -1
	for _, r := range rows {
		if len(r) > max {
			max = len(r)
		}
		if min < 0 || len(r) < min {
			min = len(r)
		}
	}
	if max != min {
		slog.Default().Warn("inconsistent table row widths, padding short rows",
			"error", &errs.TableShapeError{Err: fmt.Errorf("row widths range %d..%d", min, max)})
	}
	for i := range rows {
		for len(rows[i]) < max {
			rows[i] = append(rows[i], " ")
		}
	}
	return rows
}
