package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// PdftotextTimeout bounds a single pdftotext invocation.
var PdftotextTimeout = 2 * time.Minute

// OpenPdftotext runs poppler's pdftotext in bbox-layout mode and reads
// the word boxes it reports. The result has no tables and no outline.
func OpenPdftotext(path string) (*MemDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), PdftotextTimeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "pdftotext", "-bbox-layout", path, "-")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseBBoxLayout(bytes.NewReader(out))
}

// parseBBoxLayout converts pdftotext -bbox-layout XHTML into pages of
// lines. Each word becomes a span sized by its box height.
func parseBBoxLayout(r io.Reader) (*MemDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bbox layout: %w", err)
	}

	doc := &MemDocument{}
	var cur *doctree.Page
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "page":
				cur = &doctree.Page{
					Number: len(doc.Pages) + 1,
					Width:  attrFloat(n, "width"),
					Height: attrFloat(n, "height"),
				}
				doc.Pages = append(doc.Pages, cur)
			case "line":
				if cur != nil {
					if l, ok := bboxLine(n, cur.Number); ok {
						cur.Lines = append(cur.Lines, l)
					}
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return doc, nil
}

func bboxLine(n *html.Node, pageNo int) (doctree.Line, bool) {
	l := doctree.Line{Page: pageNo, BBox: attrRect(n)}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "word" {
			continue
		}
		text := doctree.CleanLine(textContent(c))
		if text == "" {
			continue
		}
		box := attrRect(c)
		l.Spans = append(l.Spans, doctree.Span{Text: text, FontSize: box.Height(), BBox: box})
	}
	if len(l.Spans) == 0 {
		return doctree.Line{}, false
	}
	return l, true
}

func attrRect(n *html.Node) doctree.Rect {
	return doctree.Rect{
		X0: attrFloat(n, "xmin"),
		Y0: attrFloat(n, "ymin"),
		X1: attrFloat(n, "xmax"),
		Y1: attrFloat(n, "ymax"),
	}
}

func attrFloat(n *html.Node, key string) float64 {
	for _, a := range n.Attr {
		if a.Key == key {
			f, err := strconv.ParseFloat(strings.TrimSpace(a.Val), 64)
			if err != nil {
				return 0
			}
			return f
		}
	}
	return 0
}

func textContent(n *html.Node) string {
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
