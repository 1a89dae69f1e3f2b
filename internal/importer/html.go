package importer

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JonMunkholm/ventes/internal/core"
)

// readHTMLTable returns the rows of the first <table> in the document.
// The first <tr> is the header and may use th or td cells; later rows keep
// their td cells only. Every <tr> counts toward line numbers, including
// the ones dropped for having no td.
func readHTMLTable(data []byte) ([]Row, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &core.FormatError{Reason: "document HTML illisible", Err: err}
	}

	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, &core.FormatError{Reason: "aucun tableau trouvé dans le fichier"}
	}

	var rows []Row
	for i, tr := range tableRows(table) {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == atom.Td || (i == 0 && c.DataAtom == atom.Th) {
				cells = append(cells, strings.TrimSpace(textContent(c)))
			}
		}
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, Row{Line: i + 1, Cells: cells})
	}
	return rows, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// tableRows collects the <tr> elements of table in document order,
// through thead/tbody/tfoot but not into nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Table:
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
