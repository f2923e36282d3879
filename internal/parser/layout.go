package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// MemDocument is a Document held entirely in memory. It backs the JSON
// layout format and is convenient for building synthetic pages.
type MemDocument struct {
	Pages []*doctree.Page   `json:"pages"`
	TOC   []doctree.TOCItem `json:"outline,omitempty"`
}

// ReadLayout decodes a JSON layout dump:
//
//	{"pages": [{"number": 1, "width": 612, "height": 792,
//	            "lines": [{"bbox": {...}, "spans": [{"text": "...", "size": 12}]}],
//	            "tables": [{"bbox": {...}, "rows": [["a", "b"]]}]}],
//	 "outline": [{"level": 1, "title": "...", "page": 1}]}
func ReadLayout(r io.Reader) (*MemDocument, error) {
	var doc MemDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	for i, p := range doc.Pages {
		if p == nil {
			doc.Pages[i] = &doctree.Page{Number: i + 1}
			continue
		}
		if p.Number == 0 {
			p.Number = i + 1
		}
		for j := range p.Lines {
			p.Lines[j].Page = p.Number
		}
	}
	return &doc, nil
}

func (d *MemDocument) NumPages() int { return len(d.Pages) }

func (d *MemDocument) Page(n int) (*doctree.Page, error) {
	if n < 1 || n > len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range (1-%d)", n, len(d.Pages))
	}
	return d.Pages[n-1], nil
}

func (d *MemDocument) Outline() ([]doctree.TOCItem, error) { return d.TOC, nil }

func (d *MemDocument) Close() error { return nil }
