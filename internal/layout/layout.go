// Package layout turns the lines and tables of a page window into
// paragraphs and Markdown tables in reading order.
package layout

import (
	"math"
	"sort"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// headingPad keeps the heading line itself out of the window that starts at it.
const headingPad = 0.5

type tableBlock struct {
	box doctree.Rect
	md  string
}

// Segment returns the blocks of page p that fall inside [yMin, yMax).
// A nil bound is the page edge; an explicit bound is always honoured,
// so a window ending at or above the top of the page is empty.
func Segment(p *doctree.Page, yMin, yMax *float64) []doctree.Block {
	if p == nil {
		return nil
	}
	top := 0.0
	if yMin != nil {
		top = max(0, *yMin+headingPad)
	}
	var bottom float64
	switch {
	case yMax != nil:
		bottom = *yMax
	case p.Height > 0:
		bottom = p.Height
	default:
		// Layout dumps without a page height.
		bottom = math.Inf(1)
	}
	if bottom <= top {
		return nil
	}

	tables := windowTables(p.Tables, top, bottom)

	var lines []doctree.Line
	for _, l := range p.Lines {
		b := l.BBox
		if b.Y1 <= top || b.Y0 >= bottom {
			continue
		}
		if overlapsAny(b, tables) {
			continue
		}
		if l.Text() == "" {
			continue
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 && len(tables) == 0 {
		return nil
	}
	sortLines(lines)

	var blocks []doctree.Block
	li := 0
	for _, t := range tables {
		start := li
		for li < len(lines) && lines[li].BBox.Y0 < t.box.Y0 {
			li++
		}
		blocks = append(blocks, Paragraphs(lines[start:li])...)
		blocks = append(blocks, doctree.Block{Kind: doctree.BlockTable, Text: t.md, Y0: t.box.Y0})
		for li < len(lines) && lines[li].BBox.Y0 < t.box.Y1 {
			li++
		}
	}
	if li < len(lines) {
		blocks = append(blocks, Paragraphs(lines[li:])...)
	}

	out := blocks[:0]
	for _, b := range blocks {
		if doctree.CleanLine(b.Text) != "" {
			out = append(out, b)
		}
	}
	return out
}

func windowTables(regions []doctree.TableRegion, top, bottom float64) []tableBlock {
	type key struct {
		y0, y1 float64
		md     string
	}
	seen := make(map[key]bool)
	var found []tableBlock
	for _, r := range regions {
		b := r.BBox
		if b.Empty() || b.Y1 <= top || b.Y0 >= bottom {
			continue
		}
		md := MarkdownTable(r.Rows)
		if md == "" {
			continue
		}
		k := key{round1(b.Y0), round1(b.Y1), md}
		if seen[k] {
			continue
		}
		seen[k] = true
		b.Y0 = max(b.Y0, top)
		b.Y1 = min(b.Y1, bottom)
		found = append(found, tableBlock{box: b, md: md})
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].box.Y0 != found[j].box.Y0 {
			return found[i].box.Y0 < found[j].box.Y0
		}
		return found[i].box.X0 < found[j].box.X0
	})
	return found
}

func overlapsAny(b doctree.Rect, tables []tableBlock) bool {
	for _, t := range tables {
		if b.Intersects(t.box) {
			return true
		}
	}
	return false
}

func sortLines(lines []doctree.Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].BBox.Y0 != lines[j].BBox.Y0 {
			return lines[i].BBox.Y0 < lines[j].BBox.Y0
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
