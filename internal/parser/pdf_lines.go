package parser

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// glyph is one drawn character in top-down page coordinates.
type glyph struct {
	text string
	font string
	size float64
	x    float64
	w    float64
	base float64 // baseline, measured from the top of the page
}

const (
	// Baseline tolerance as a fraction of font size. Superscripts sit
	// roughly a third of an em above the baseline and must stay on
	// their line.
	rowTolerance = 0.45
	// A horizontal gap wider than this many ems starts a new line
	// (column gutters, table cells without rules).
	columnGap = 3.0
	ascent    = 0.8
	descent   = 0.2
)

func (g glyph) width() float64 {
	if g.w > 0 {
		return g.w
	}
	// Fonts without a widths table report zero; assume half an em.
	return 0.5 * g.size * float64(utf8.RuneCountInString(g.text))
}

func (g glyph) right() float64 { return g.x + g.width() }

// buildLines groups glyphs into rows by baseline, splits rows at wide
// gaps, and folds runs of equal font and size into spans.
func buildLines(glyphs []glyph, pageNo int) []doctree.Line {
	var lines []doctree.Line
	for _, row := range groupRows(glyphs) {
		for _, seg := range splitRow(row) {
			if l, ok := makeLine(seg, pageNo); ok {
				lines = append(lines, l)
			}
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].BBox.Y0 != lines[j].BBox.Y0 {
			return lines[i].BBox.Y0 < lines[j].BBox.Y0
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})
	return lines
}

func groupRows(glyphs []glyph) [][]glyph {
	sorted := make([]glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.text != "" {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].base != sorted[j].base {
			return sorted[i].base < sorted[j].base
		}
		return sorted[i].x < sorted[j].x
	})

	type bucket struct {
		base, size float64
		glyphs     []glyph
	}
	var buckets []*bucket
	for _, g := range sorted {
		if n := len(buckets); n > 0 {
			b := buckets[n-1]
			if math.Abs(g.base-b.base) <= rowTolerance*max(b.size, g.size) {
				b.glyphs = append(b.glyphs, g)
				// The row's reference baseline follows its largest text.
				if g.size > b.size {
					b.base, b.size = g.base, g.size
				}
				continue
			}
		}
		buckets = append(buckets, &bucket{base: g.base, size: g.size, glyphs: []glyph{g}})
	}

	rows := make([][]glyph, len(buckets))
	for i, b := range buckets {
		sort.SliceStable(b.glyphs, func(x, y int) bool { return b.glyphs[x].x < b.glyphs[y].x })
		rows[i] = b.glyphs
	}
	return rows
}

func splitRow(row []glyph) [][]glyph {
	var segs [][]glyph
	start := 0
	for i := 1; i < len(row); i++ {
		em := max(row[i].size, row[i-1].size, 1)
		if row[i].x-row[i-1].right() > columnGap*em {
			segs = append(segs, row[start:i])
			start = i
		}
	}
	if start < len(row) {
		segs = append(segs, row[start:])
	}
	return segs
}

// needsSpace reports whether a word break sits between two glyphs that
// carry no explicit space character.
func needsSpace(prev, next glyph) bool {
	if strings.HasSuffix(prev.text, " ") || strings.HasPrefix(next.text, " ") {
		return false
	}
	em := max(prev.size, next.size, 1)
	threshold := 0.15 * em
	if prev.w <= 0 {
		threshold = 0.45 * em
	}
	return next.x-prev.right() > threshold
}

func makeLine(seg []glyph, pageNo int) (doctree.Line, bool) {
	if len(seg) == 0 {
		return doctree.Line{}, false
	}
	var spans []doctree.Span
	var sb strings.Builder
	cur := seg[0]
	spanStart := seg[0]
	box := glyphBox(seg[0])
	lineBox := box

	flush := func(end glyph) {
		spans = append(spans, doctree.Span{
			Text:     sb.String(),
			FontSize: spanStart.size,
			BBox:     doctree.Rect{X0: spanStart.x, Y0: box.Y0, X1: end.right(), Y1: box.Y1},
		})
		sb.Reset()
	}

	sb.WriteString(seg[0].text)
	for _, g := range seg[1:] {
		if g.font != spanStart.font || math.Abs(g.size-spanStart.size) > 0.01 {
			flush(cur)
			spanStart = g
			box = glyphBox(g)
		} else if needsSpace(cur, g) {
			sb.WriteString(" ")
		}
		sb.WriteString(g.text)
		gb := glyphBox(g)
		box = box.Union(gb)
		lineBox = lineBox.Union(gb)
		cur = g
	}
	flush(cur)

	l := doctree.Line{Page: pageNo, BBox: lineBox, Spans: spans}
	if l.Text() == "" {
		return doctree.Line{}, false
	}
	return l, true
}

func glyphBox(g glyph) doctree.Rect {
	return doctree.Rect{
		X0: g.x,
		Y0: g.base - ascent*g.size,
		X1: g.right(),
		Y1: g.base + descent*g.size,
	}
}
