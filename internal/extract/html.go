package extract

import (
	"context"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/standardbeagle/duckindex/internal/errors"
)

// HtmlReader is a supplemental reader (not named in the minimal
// content-extraction table but present in the original desktop
// backend): it tokenizes .html/.htm files and emits one Item per
// block-level element's trimmed text.
type HtmlReader struct{}

func (r *HtmlReader) Supports() []string { return []string{"html", "htm"} }

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Td: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Blockquote: true, atom.Pre: true,
}

func (r *HtmlReader) Read(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIoError("open", path, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, errors.NewExtractorError("html", path, err)
	}

	var items []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if ctx.Err() != nil {
			return
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			if text := strings.TrimSpace(blockText(n)); text != "" {
				items = append(items, text)
			}
			return // don't descend into nested block text twice
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return items, nil
}

func blockText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
