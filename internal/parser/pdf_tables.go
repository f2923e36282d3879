package parser

import (
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	ruleThickness = 2.0  // rects thinner than this are ruling lines
	edgeSnap      = 2.0  // edges closer than this are the same grid line
	clusterPad    = 1.5  // rects this close belong to the same table
	minCellSize   = 3.0  // grid intervals narrower than this are slivers
	maxTableRects = 4000 // pages drawn with more rects than this are skipped
)

// detectTables finds ruled grids among the page's rectangles and fills
// their cells with the glyphs whose centre falls inside.
func detectTables(rects []doctree.Rect, glyphs []glyph, pageW, pageH float64) []doctree.TableRegion {
	var candidates []doctree.Rect
	for _, r := range rects {
		if r.Width() >= 0.95*pageW && r.Height() >= 0.95*pageH {
			continue // page background
		}
		if r.Width() <= 0 && r.Height() <= 0 {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) < 3 || len(candidates) > maxTableRects {
		return nil
	}

	var tables []doctree.TableRegion
	for _, cluster := range clusterRects(candidates) {
		if len(cluster) < 3 {
			continue
		}
		if t, ok := gridTable(cluster, glyphs); ok {
			tables = append(tables, t)
		}
	}
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].BBox.Y0 < tables[j].BBox.Y0 })
	return tables
}

func clusterRects(rects []doctree.Rect) [][]doctree.Rect {
	parent := make([]int, len(rects))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	pad := func(r doctree.Rect) doctree.Rect {
		return doctree.Rect{X0: r.X0 - clusterPad, Y0: r.Y0 - clusterPad, X1: r.X1 + clusterPad, Y1: r.Y1 + clusterPad}
	}
	for i := range rects {
		pi := pad(rects[i])
		for j := i + 1; j < len(rects); j++ {
			if pi.Intersects(pad(rects[j])) {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]doctree.Rect)
	var order []int
	for i, r := range rects {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], r)
	}
	out := make([][]doctree.Rect, 0, len(order))
	for _, root := range order {
		out = append(out, groups[root])
	}
	return out
}

func gridTable(cluster []doctree.Rect, glyphs []glyph) (doctree.TableRegion, bool) {
	var xs, ys []float64
	for _, r := range cluster {
		switch {
		case r.Height() <= ruleThickness:
			ys = append(ys, (r.Y0+r.Y1)/2)
			xs = append(xs, r.X0, r.X1)
		case r.Width() <= ruleThickness:
			xs = append(xs, (r.X0+r.X1)/2)
			ys = append(ys, r.Y0, r.Y1)
		default:
			xs = append(xs, r.X0, r.X1)
			ys = append(ys, r.Y0, r.Y1)
		}
	}
	xs = snapEdges(xs)
	ys = snapEdges(ys)
	if len(xs) < 3 || len(ys) < 3 {
		return doctree.TableRegion{}, false
	}
	// The region spans the grid lines, not the stroke width around them.
	bbox := doctree.Rect{X0: xs[0], Y0: ys[0], X1: xs[len(xs)-1], Y1: ys[len(ys)-1]}

	nRows, nCols := len(ys)-1, len(xs)-1
	cells := make([][][]glyph, nRows)
	for i := range cells {
		cells[i] = make([][]glyph, nCols)
	}
	for _, g := range glyphs {
		gb := glyphBox(g)
		cx, cy := (gb.X0+gb.X1)/2, (gb.Y0+gb.Y1)/2
		if cx < bbox.X0 || cx > bbox.X1 || cy < bbox.Y0 || cy > bbox.Y1 {
			continue
		}
		r := interval(ys, cy)
		c := interval(xs, cx)
		if r < 0 || c < 0 {
			continue
		}
		cells[r][c] = append(cells[r][c], g)
	}

	var rows [][]string
	for r := range nRows {
		if ys[r+1]-ys[r] < minCellSize {
			continue
		}
		var row []string
		for c := range nCols {
			if xs[c+1]-xs[c] < minCellSize {
				continue
			}
			row = append(row, cellText(cells[r][c]))
		}
		rows = append(rows, row)
	}
	rows = dropEmptyColumns(rows)
	if len(rows) < 2 || len(rows[0]) < 2 {
		return doctree.TableRegion{}, false
	}
	return doctree.TableRegion{BBox: bbox, Rows: rows}, true
}

func snapEdges(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	sort.Float64s(vals)
	out := []float64{vals[0]}
	for _, v := range vals[1:] {
		if v-out[len(out)-1] > edgeSnap {
			out = append(out, v)
		}
	}
	return out
}

// interval returns i such that edges[i] <= v < edges[i+1], or -1.
func interval(edges []float64, v float64) int {
	i := sort.SearchFloat64s(edges, v)
	if i < len(edges) && edges[i] == v {
		i++
	}
	i--
	if i < 0 || i >= len(edges)-1 {
		return -1
	}
	return i
}

func cellText(gs []glyph) string {
	if len(gs) == 0 {
		return ""
	}
	var parts []string
	for _, l := range buildLines(gs, 0) {
		parts = append(parts, l.Text())
	}
	return strings.Join(parts, " ")
}

func dropEmptyColumns(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	keep := make([]bool, width)
	for _, r := range rows {
		for c, cell := range r {
			if strings.TrimSpace(cell) != "" {
				keep[c] = true
			}
		}
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		var row []string
		for c := range width {
			if !keep[c] {
				continue
			}
			if c < len(r) {
				row = append(row, r[c])
			} else {
				row = append(row, "")
			}
		}
		out = append(out, row)
	}
	return out
}
