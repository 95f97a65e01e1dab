// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"archive/zip"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/pdiddy/doc2latex/pkg/types"
)

const (
	docxDocumentPart = "word/document.xml"
	docxStylesPart   = "word/styles.xml"
	docxCorePart     = "docProps/core.xml"
)

// Element names in OOXML are matched by local name so the walker does not
// depend on the prefix a producer chose for the WordprocessingML namespace.
var (
	exprBody       = xpath.MustCompile(`//*[local-name()='body']`)
	exprParaStyle  = xpath.MustCompile(`./*[local-name()='pPr']/*[local-name()='pStyle']`)
	exprNumbering  = xpath.MustCompile(`./*[local-name()='pPr']/*[local-name()='numPr']`)
	exprParagraphs = xpath.MustCompile(`.//*[local-name()='p']`)
	exprTexts      = xpath.MustCompile(`.//*[local-name()='t']`)
	exprStyles     = xpath.MustCompile(`//*[local-name()='style']`)
	exprStyleName  = xpath.MustCompile(`./*[local-name()='name']`)
	exprCoreTitle  = xpath.MustCompile(`//*[local-name()='title']`)
	exprCoreAuthor = xpath.MustCompile(`//*[local-name()='creator']`)
)

// DocxParser reads WordprocessingML documents. It maps paragraph styles to
// headings and lists, carries bold and italic run formatting, and flattens
// tables to rows of cell text.
type DocxParser struct{}

// NewDocxParser returns a DOCX parser.
func NewDocxParser() *DocxParser {
	return &DocxParser{}
}

// Parse implements Parser.
func (p *DocxParser) Parse(path string) (types.Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return types.Document{}, parseErr(types.FormatDOCX, path, err)
	}
	defer zr.Close()

	doc, err := parseDocxPackage(&zr.Reader)
	if err != nil {
		return types.Document{}, parseErr(types.FormatDOCX, path, err)
	}
	return doc, nil
}

func parseDocxPackage(zr *zip.Reader) (types.Document, error) {
	root, err := readPart(zr, docxDocumentPart)
	if err != nil {
		return types.Document{}, err
	}
	if root == nil {
		return types.Document{}, fmt.Errorf("%s not found", docxDocumentPart)
	}

	styles := map[string]string{}
	if sr, err := readPart(zr, docxStylesPart); err != nil {
		return types.Document{}, err
	} else if sr != nil {
		styles = styleNames(sr)
	}

	var meta types.Metadata
	if cr, err := readPart(zr, docxCorePart); err != nil {
		return types.Document{}, err
	} else if cr != nil {
		meta = coreMetadata(cr)
	}

	nodes, err := walkBody(root, styles)
	if err != nil {
		return types.Document{}, err
	}
	return types.Document{Meta: meta, Blocks: docxBlocks(nodes)}, nil
}

// readPart parses one XML part of the package. A missing part yields a nil
// node and no error.
func readPart(zr *zip.Reader, name string) (*xmlquery.Node, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()
		node, err := xmlquery.Parse(rc)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		return node, nil
	}
	return nil, nil
}

// styleNames maps style IDs (the value stored on paragraphs) to display
// names from styles.xml.
func styleNames(root *xmlquery.Node) map[string]string {
	names := make(map[string]string)
	for _, s := range xmlquery.QuerySelectorAll(root, exprStyles) {
		id := attrValue(s, "styleId")
		if id == "" {
			continue
		}
		if n := xmlquery.QuerySelector(s, exprStyleName); n != nil {
			names[id] = attrValue(n, "val")
		}
	}
	return names
}

func coreMetadata(root *xmlquery.Node) types.Metadata {
	var meta types.Metadata
	if n := xmlquery.QuerySelector(root, exprCoreTitle); n != nil {
		meta.Title = strings.TrimSpace(n.InnerText())
	}
	if n := xmlquery.QuerySelector(root, exprCoreAuthor); n != nil {
		meta.Author = strings.TrimSpace(n.InnerText())
	}
	return meta
}

// --- structured-document walker ---

// docxNode is one top-level content node of the document body.
type docxNode interface {
	docxNode()
}

type docxParagraph struct {
	style    string // display name, or the style ID when styles.xml lacks it
	numbered bool   // carries numbering properties (w:numPr)
	runs     []types.Run
}

type docxTable struct {
	rows [][]string
}

func (docxParagraph) docxNode() {}
func (docxTable) docxNode()     {}

// walkBody yields the body's direct paragraph and table children in document
// order. Other elements (section properties, bookmarks) are ignored.
func walkBody(root *xmlquery.Node, styles map[string]string) ([]docxNode, error) {
	body := xmlquery.QuerySelector(root, exprBody)
	if body == nil {
		return nil, errors.New("document has no body element")
	}
	var nodes []docxNode
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "p":
			nodes = append(nodes, readParagraph(c, styles))
		case "tbl":
			nodes = append(nodes, readTable(c))
		}
	}
	return nodes, nil
}

func readParagraph(p *xmlquery.Node, styles map[string]string) docxParagraph {
	para := docxParagraph{
		numbered: xmlquery.QuerySelector(p, exprNumbering) != nil,
	}
	if s := xmlquery.QuerySelector(p, exprParaStyle); s != nil {
		id := attrValue(s, "val")
		para.style = id
		if name, ok := styles[id]; ok && name != "" {
			para.style = name
		}
	}
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "r":
			para.runs = append(para.runs, readRun(c))
		case "hyperlink", "ins", "smartTag":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == xmlquery.ElementNode && r.Data == "r" {
					para.runs = append(para.runs, readRun(r))
				}
			}
		}
	}
	para.runs = mergeRuns(para.runs)
	return para
}

func readRun(r *xmlquery.Node) types.Run {
	var (
		run  types.Run
		text strings.Builder
	)
	for c := r.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "rPr":
			if toggleOn(childElement(c, "b")) {
				run.Style |= types.StyleBold
			}
			if toggleOn(childElement(c, "i")) {
				run.Style |= types.StyleItalic
			}
		case "t":
			text.WriteString(c.InnerText())
		case "tab":
			text.WriteByte('\t')
		case "br", "cr":
			text.WriteByte('\n')
		}
	}
	run.Text = text.String()
	return run
}

func readTable(tbl *xmlquery.Node) docxTable {
	var t docxTable
	for tr := tbl.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != xmlquery.ElementNode || tr.Data != "tr" {
			continue
		}
		var row []string
		for tc := tr.FirstChild; tc != nil; tc = tc.NextSibling {
			if tc.Type == xmlquery.ElementNode && tc.Data == "tc" {
				row = append(row, cellText(tc))
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// cellText flattens a cell's paragraphs to newline-separated text.
func cellText(tc *xmlquery.Node) string {
	var paras []string
	for _, p := range xmlquery.QuerySelectorAll(tc, exprParagraphs) {
		var b strings.Builder
		for _, t := range xmlquery.QuerySelectorAll(p, exprTexts) {
			b.WriteString(t.InnerText())
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			paras = append(paras, s)
		}
	}
	return strings.TrimSpace(strings.Join(paras, "\n"))
}

func childElement(n *xmlquery.Node, local string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			return c
		}
	}
	return nil
}

// toggleOn reports whether a run property like <w:b/> is present and not
// switched off with w:val="0" or "false".
func toggleOn(n *xmlquery.Node) bool {
	if n == nil {
		return false
	}
	switch strings.ToLower(attrValue(n, "val")) {
	case "0", "false", "off":
		return false
	}
	return true
}

func attrValue(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// --- classification ---

type paraKind int

const (
	plainPara paraKind = iota
	headingPara
	listPara
)

// classifyStyle maps a paragraph style name to a block kind by
// case-insensitive substring match, in precedence order: heading 1, heading
// 2, heading 3, then "list" or "bullet". Names are also compared with spaces
// removed so style IDs such as "Heading2" classify like "heading 2".
func classifyStyle(name string) (paraKind, int) {
	lower := strings.ToLower(name)
	compact := strings.ReplaceAll(lower, " ", "")
	for level := 1; level <= 3; level++ {
		if strings.Contains(lower, fmt.Sprintf("heading %d", level)) ||
			strings.Contains(compact, fmt.Sprintf("heading%d", level)) {
			return headingPara, level
		}
	}
	if strings.Contains(lower, "list") || strings.Contains(lower, "bullet") {
		return listPara, 0
	}
	return plainPara, 0
}

// docxBlocks folds walker nodes into blocks. Consecutive list paragraphs
// become one List; any other block ends the list. Paragraphs whose text is
// blank produce nothing.
func docxBlocks(nodes []docxNode) []types.Block {
	var (
		blocks []types.Block
		items  [][]types.Run
	)
	closeList := func() {
		if len(items) > 0 {
			blocks = append(blocks, types.List{Items: items})
			items = nil
		}
	}
	for _, n := range nodes {
		switch n := n.(type) {
		case docxParagraph:
			if strings.TrimSpace(runsText(n.runs)) == "" {
				continue
			}
			kind, level := classifyStyle(n.style)
			if kind == plainPara && n.numbered {
				kind = listPara
			}
			if kind == listPara {
				items = append(items, n.runs)
				continue
			}
			closeList()
			if kind == headingPara {
				blocks = append(blocks, types.Heading{Level: level, Runs: n.runs})
			} else {
				blocks = append(blocks, types.Paragraph{Runs: n.runs})
			}
		case docxTable:
			closeList()
			blocks = append(blocks, types.Table{Rows: n.rows})
		}
	}
	closeList()
	return blocks
}

func runsText(runs []types.Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
