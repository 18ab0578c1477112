package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/rinkstats/internal/parser"
)

var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true,
}

var blockElements = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "li": true, "dt": true, "dd": true, "caption": true, "label": true,
}

const structuralSelector = "table, p, h1, h2, h3, h4, h5, h6, li, div, section, article, pre, br"

// TextFromHTML flattens a standings page into report text: headings and
// paragraphs become lines, table rows become tab-separated lines, and every
// table is followed by a blank line.
func TextFromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var w lineWriter
	w.walk(doc.Selection)
	return w.String(), nil
}

type lineWriter struct {
	lines []string
}

func (w *lineWriter) line(s string) {
	if s = parser.Normalize(s); s != "" {
		w.lines = append(w.lines, s)
	}
}

func (w *lineWriter) blank() {
	if n := len(w.lines); n > 0 && w.lines[n-1] != "" {
		w.lines = append(w.lines, "")
	}
}

func (w *lineWriter) walk(s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			w.line(c.Text())
		case skippedElements[name]:
		case blockElements[name]:
			w.line(c.Text())
		case name == "br":
		case name == "pre":
			for _, l := range strings.Split(c.Text(), "\n") {
				w.line(l)
			}
		case name == "table":
			w.table(c)
		case c.Find(structuralSelector).Length() == 0:
			// Inline-only containers read as one line.
			w.line(c.Text())
		default:
			w.walk(c)
		}
	})
}

func (w *lineWriter) table(t *goquery.Selection) {
	if caption := t.ChildrenFiltered("caption"); caption.Length() > 0 {
		w.line(caption.Text())
	}
	t.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, parser.Normalize(cell.Text()))
		})
		if row := strings.Join(cells, "\t"); strings.TrimSpace(row) != "" {
			w.lines = append(w.lines, row)
		}
	})
	w.blank()
}

func (w *lineWriter) String() string {
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}
