package doctree

import "strings"

// Rect is an axis-aligned box in page coordinates. The origin is the
// top-left corner of the page and y grows downward.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Intersects reports whether two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return !(r.X1 <= o.X0 || r.X0 >= o.X1 || r.Y1 <= o.Y0 || r.Y0 >= o.Y1)
}

// Union returns the smallest rectangle containing both.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

// Span is a run of text set in a single font size.
type Span struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"size"`
	BBox     Rect    `json:"bbox"`
}

// Line is one visual text line on a page.
type Line struct {
	Page  int    `json:"page"`
	BBox  Rect   `json:"bbox"`
	Spans []Span `json:"spans"`
}

// Text joins the non-empty spans with single spaces and collapses
// runs of whitespace.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Spans))
	for _, s := range l.Spans {
		if t := CleanLine(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// FontSize is the largest size among spans that carry text.
func (l Line) FontSize() float64 {
	var size float64
	for _, s := range l.Spans {
		if strings.TrimSpace(s.Text) != "" {
			size = max(size, s.FontSize)
		}
	}
	return size
}

// CleanLine collapses whitespace runs to one space and trims the ends.
func CleanLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TableRegion is a table detected by the document collaborator.
type TableRegion struct {
	BBox Rect       `json:"bbox"`
	Rows [][]string `json:"rows"`
}

// Page is the positioned content of a single page.
type Page struct {
	Number int           `json:"number"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Lines  []Line        `json:"lines"`
	Tables []TableRegion `json:"tables,omitempty"`
}
