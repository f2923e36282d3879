package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"

	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// PDFDocument reads glyph positions and ruling rectangles through
// ledongthuc/pdf and rebuilds lines and tables from them. Pages are
// decoded lazily and cached.
type PDFDocument struct {
	closer io.Closer
	reader *pdflib.Reader

	mu    sync.Mutex
	pages map[int]*doctree.Page
	index map[string]int // page object fingerprint -> 1-based page number
}

// OpenPDF opens a PDF file on disk.
func OpenPDF(path string) (doc *PDFDocument, err error) {
	defer recoverPDF(&err, "open pdf")
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &PDFDocument{closer: f, reader: r, pages: make(map[int]*doctree.Page)}, nil
}

// ReadPDF opens a PDF held in memory.
func ReadPDF(data []byte) (doc *PDFDocument, err error) {
	defer recoverPDF(&err, "read pdf")
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return &PDFDocument{reader: r, pages: make(map[int]*doctree.Page)}, nil
}

// recoverPDF converts the library's panics on malformed input into errors.
func recoverPDF(err *error, op string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: malformed document: %v", op, r)
	}
}

func (d *PDFDocument) NumPages() int { return d.reader.NumPage() }

// Page decodes page n. Coordinates are flipped so y grows downward from
// the top of the media box.
func (d *PDFDocument) Page(n int) (page *doctree.Page, err error) {
	if n < 1 || n > d.NumPages() {
		return nil, fmt.Errorf("page %d out of range (1-%d)", n, d.NumPages())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pages[n]; ok {
		return p, nil
	}
	defer recoverPDF(&err, fmt.Sprintf("page %d", n))

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", n)
	}
	llx, lly, urx, ury := mediaBox(p)
	width, height := urx-llx, ury-lly

	content := p.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		text := norm.NFKC.String(t.S)
		if text == "" {
			continue
		}
		glyphs = append(glyphs, glyph{
			text: text,
			font: t.Font,
			size: math.Abs(t.FontSize),
			x:    t.X - llx,
			w:    t.W,
			base: ury - t.Y,
		})
	}

	rects := make([]doctree.Rect, 0, len(content.Rect))
	for _, r := range content.Rect {
		x0, x1 := min(r.Min.X, r.Max.X), max(r.Min.X, r.Max.X)
		y0, y1 := min(r.Min.Y, r.Max.Y), max(r.Min.Y, r.Max.Y)
		rects = append(rects, doctree.Rect{X0: x0 - llx, Y0: ury - y1, X1: x1 - llx, Y1: ury - y0})
	}

	page = &doctree.Page{
		Number: n,
		Width:  width,
		Height: height,
		Lines:  buildLines(glyphs, n),
		Tables: detectTables(rects, glyphs, width, height),
	}
	d.pages[n] = page
	return page, nil
}

func mediaBox(p pdflib.Page) (llx, lly, urx, ury float64) {
	return boxCoords(inheritedKey(p.V, "MediaBox"))
}

// pdfValue is the subset of pdflib.Value used to resolve page boxes.
type pdfValue[V any] interface {
	IsNull() bool
	Key(key string) V
	Len() int
	Index(i int) V
	Float64() float64
}

// maxPageTreeDepth bounds the Parent walk on malformed page trees.
const maxPageTreeDepth = 64

// inheritedKey looks key up on v and then on its /Parent chain, the way
// inheritable page attributes such as /MediaBox are resolved.
func inheritedKey[V pdfValue[V]](v V, key string) V {
	for i := 0; i < maxPageTreeDepth && !v.IsNull(); i++ {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
		v = v.Key("Parent")
	}
	var zero V
	return zero
}

// boxCoords reads a [llx lly urx ury] rectangle, defaulting to US Letter.
func boxCoords[V pdfValue[V]](box V) (llx, lly, urx, ury float64) {
	if box.IsNull() || box.Len() < 4 {
		return 0, 0, 612, 792 // US Letter
	}
	llx, lly = box.Index(0).Float64(), box.Index(1).Float64()
	urx, ury = box.Index(2).Float64(), box.Index(3).Float64()
	if urx < llx {
		llx, urx = urx, llx
	}
	if ury < lly {
		lly, ury = ury, lly
	}
	return llx, lly, urx, ury
}

// Close releases the underlying file, if any.
func (d *PDFDocument) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}
