package parser

import (
	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	maxOutlineDepth = 16
	maxOutlineItems = 10000
	maxNameTreeHops = 64
)

// Outline returns the embedded bookmarks in document order. Entries whose
// destination cannot be resolved inherit the page of the entry before
// them.
func (d *PDFDocument) Outline() (items []doctree.TOCItem, err error) {
	defer recoverPDF(&err, "read outline")

	root := d.reader.Trailer().Key("Root")
	outlines := root.Key("Outlines")
	if outlines.Kind() != pdflib.Dict {
		return nil, nil
	}

	d.mu.Lock()
	if d.index == nil {
		d.index = make(map[string]int, d.NumPages())
		for i := 1; i <= d.NumPages(); i++ {
			if v := d.reader.Page(i).V; !v.IsNull() {
				d.index[v.String()] = i
			}
		}
	}
	d.mu.Unlock()

	r := &destResolver{root: root, pages: d.index, numPages: d.NumPages()}
	lastPage := 1
	var walk func(node pdflib.Value, level int)
	walk = func(node pdflib.Value, level int) {
		if level > maxOutlineDepth {
			return
		}
		for child := node.Key("First"); child.Kind() == pdflib.Dict; child = child.Key("Next") {
			if len(items) >= maxOutlineItems {
				return
			}
			title := doctree.CleanLine(child.Key("Title").Text())
			page := r.page(child)
			if page == 0 {
				page = lastPage
			}
			lastPage = page
			if title != "" {
				items = append(items, doctree.TOCItem{Level: level, Title: title, Page: page})
			}
			walk(child, level+1)
		}
	}
	walk(outlines, 1)
	return items, nil
}

type destResolver struct {
	root     pdflib.Value
	pages    map[string]int
	numPages int
}

// page returns the 1-based target page of an outline item, or 0.
func (r *destResolver) page(item pdflib.Value) int {
	dest := item.Key("Dest")
	if dest.IsNull() {
		if action := item.Key("A"); action.Key("S").Name() == "GoTo" {
			dest = action.Key("D")
		}
	}
	return r.dest(dest, 0)
}

func (r *destResolver) dest(v pdflib.Value, depth int) int {
	if depth > 4 {
		return 0
	}
	switch v.Kind() {
	case pdflib.Array:
		return r.target(v.Index(0))
	case pdflib.Dict:
		return r.dest(v.Key("D"), depth+1)
	case pdflib.Name:
		return r.dest(r.named(v.Name()), depth+1)
	case pdflib.String:
		return r.dest(r.named(v.RawString()), depth+1)
	}
	return 0
}

func (r *destResolver) target(v pdflib.Value) int {
	switch v.Kind() {
	case pdflib.Dict:
		return r.pages[v.String()]
	case pdflib.Integer:
		// Remote-style destinations carry a 0-based page index.
		if n := int(v.Int64()) + 1; n >= 1 && n <= r.numPages {
			return n
		}
	}
	return 0
}

// named looks a destination up in the legacy /Dests dictionary and then
// in the /Names /Dests name tree.
func (r *destResolver) named(key string) pdflib.Value {
	if v := r.root.Key("Dests").Key(key); !v.IsNull() {
		return v
	}
	return lookupNameTree(r.root.Key("Names").Key("Dests"), key, 0)
}

func lookupNameTree(node pdflib.Value, key string, hops int) pdflib.Value {
	if node.Kind() != pdflib.Dict || hops > maxNameTreeHops {
		return pdflib.Value{}
	}
	if names := node.Key("Names"); names.Kind() == pdflib.Array {
		for i := 0; i+1 < names.Len(); i += 2 {
			if names.Index(i).RawString() == key {
				return names.Index(i + 1)
			}
		}
	}
	kids := node.Key("Kids")
	for i := range kids.Len() {
		kid := kids.Index(i)
		if limits := kid.Key("Limits"); limits.Len() == 2 {
			lo, hi := limits.Index(0).RawString(), limits.Index(1).RawString()
			if key < lo || key > hi {
				continue
			}
		}
		if v := lookupNameTree(kid, key, hops+1); !v.IsNull() {
			return v
		}
	}
	return pdflib.Value{}
}
