// Package outline decides which lines of a document are headings.
//
// An embedded outline is preferred. Without one, headings are guessed from
// font sizes, and when that finds nothing the whole document becomes one
// synthetic section.
package outline

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/patterns"
)

// FallbackTitle names the synthetic entry used when no heading is found.
const FallbackTitle = "Document"

// TOCSource supplies an embedded outline. parser.Document satisfies it.
type TOCSource interface {
	Outline() ([]doctree.TOCItem, error)
}

// Build returns a non-empty list of heading candidates in reading order.
func Build(src TOCSource, pages []*doctree.Page, log *slog.Logger) []doctree.HeadingCandidate {
	if log == nil {
		log = slog.Default()
	}

	toc, err := src.Outline()
	if err != nil {
		log.Warn("embedded outline unreadable", "error", err)
	}
	if cands := FromTOC(toc); len(cands) > 0 {
		log.Info("using embedded outline", "entries", len(cands))
		return cands
	}

	log.Info("no embedded outline, detecting headings from font sizes")
	if cands := Heuristic(pages); len(cands) > 0 {
		log.Info("heuristic outline built", "entries", len(cands))
		return cands
	}

	log.Warn("no headings detected, using a single section")
	return []doctree.HeadingCandidate{{
		Level:  1,
		Title:  FallbackTitle,
		Page:   1,
		Source: doctree.SourceFallback,
	}}
}

// FromTOC maps embedded outline items to candidates. Items without a
// title are skipped; levels and pages are clamped to at least 1.
func FromTOC(items []doctree.TOCItem) []doctree.HeadingCandidate {
	var out []doctree.HeadingCandidate
	for _, it := range items {
		title := doctree.CleanLine(it.Title)
		if title == "" {
			continue
		}
		out = append(out, doctree.HeadingCandidate{
			Level:  max(1, it.Level),
			Title:  title,
			Page:   max(1, it.Page),
			Source: doctree.SourceEmbedded,
		})
	}
	return out
}

type lineInfo struct {
	page int
	text string
	size float64
	y0   float64
}

// Heuristic detects headings from the relative font size of every line.
func Heuristic(pages []*doctree.Page) []doctree.HeadingCandidate {
	var lines []lineInfo
	var sizes []float64
	for _, p := range pages {
		if p == nil {
			continue
		}
		for _, l := range p.Lines {
			text := l.Text()
			if text == "" {
				continue
			}
			size := l.FontSize()
			lines = append(lines, lineInfo{page: p.Number, text: text, size: size, y0: l.BBox.Y0})
			if size > 0 {
				sizes = append(sizes, size)
			}
		}
	}
	if len(sizes) == 0 {
		return nil
	}

	cutoff := max(Percentile(sizes, 0.75), Percentile(sizes, 0.5)+1.0)

	var cands []lineInfo
	seen := make(map[string]bool)
	for _, l := range lines {
		if !isHeadingText(l.text) || l.size < cutoff {
			continue
		}
		key := strings.ToLower(l.text)
		if seen[key] {
			continue
		}
		seen[key] = true
		cands = append(cands, l)
	}
	if len(cands) == 0 {
		return nil
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].page != cands[j].page {
			return cands[i].page < cands[j].page
		}
		return cands[i].y0 < cands[j].y0
	})
	cands = mergeWrapped(cands)

	levels := sizeLevels(cands)
	out := make([]doctree.HeadingCandidate, 0, len(cands))
	for _, c := range cands {
		level, ok := levels[roundSize(c.size)]
		if !ok {
			level = 2
		}
		y := c.y0
		out = append(out, doctree.HeadingCandidate{
			Level:    level,
			Title:    c.text,
			Page:     c.page,
			Y0:       &y,
			FontSize: c.size,
			Source:   doctree.SourceHeuristic,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if ya, yb := yKey(a.Y0), yKey(b.Y0); ya != yb {
			return ya < yb
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
	return out
}

func isHeadingText(text string) bool {
	if n := utf8.RuneCountInString(text); n < 4 || n > 120 {
		return false
	}
	if patterns.ManualBullet.MatchString(text) {
		return false
	}
	if strings.HasSuffix(text, ".") && len(strings.Fields(text)) > 8 {
		return false
	}
	return true
}

var (
	tailContinuations = map[string]bool{
		"for": true, "and": true, "or": true, "to": true, "in": true, "on": true,
		"of": true, "with": true, "program": true, "course": true, "grade": true,
	}
	headContinuations = map[string]bool{
		"and": true, "or": true, "for": true, "to": true, "in": true, "of": true, "the": true,
	}
)

// mergeWrapped joins heading lines that a narrow column wrapped in two.
// The merged heading keeps the position and size of its first line.
func mergeWrapped(cands []lineInfo) []lineInfo {
	var out []lineInfo
	for i := 0; i < len(cands); i++ {
		cur := cands[i]
		for i+1 < len(cands) && looksWrapped(cur, cands[i+1]) {
			cur.text = cur.text + " " + cands[i+1].text
			i++
		}
		out = append(out, cur)
	}
	return out
}

func looksWrapped(cur, next lineInfo) bool {
	if cur.page != next.page ||
		math.Abs(cur.size-next.size) > 0.2 ||
		math.Abs(next.y0-cur.y0) > 90 ||
		patterns.SentenceEnd.MatchString(cur.text) {
		return false
	}

	curWords := strings.Fields(cur.text)
	nextWords := strings.Fields(next.text)
	var curTail, nextHead string
	if len(curWords) > 0 {
		curTail = strings.ToLower(curWords[len(curWords)-1])
	}
	if len(nextWords) > 0 {
		nextHead = nextWords[0]
	}
	nextLower := nextHead != "" && unicode.IsLower([]rune(nextHead)[0])
	nextCont := headContinuations[strings.ToLower(nextHead)]

	shortFragments := len(curWords) <= 6 && len(nextWords) <= 6 &&
		(nextLower || tailContinuations[curTail] || strings.HasSuffix(cur.text, "-") || nextCont)

	wrappedTitle := len(curWords) >= 6 && len(nextWords) <= 8 &&
		(strings.Contains(next.text, ",") || utf8.RuneCountInString(cur.text) >= 35 || nextCont)

	return shortFragments || wrappedTitle
}

// sizeLevels ranks distinct rounded sizes, largest first, capped at level 3.
func sizeLevels(cands []lineInfo) map[float64]int {
	set := make(map[float64]bool)
	for _, c := range cands {
		set[roundSize(c.size)] = true
	}
	uniq := make([]float64, 0, len(set))
	for s := range set {
		uniq = append(uniq, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(uniq)))
	levels := make(map[float64]int, len(uniq))
	for i, s := range uniq {
		levels[s] = min(3, i+1)
	}
	return levels
}

func roundSize(s float64) float64 { return math.Round(s*10) / 10 }

func yKey(y *float64) float64 {
	if y == nil {
		return 1e9
	}
	return *y
}

// Percentile returns the element at floor((n-1)*pct) of the sorted values.
func Percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(float64(len(sorted)-1) * pct))
	idx = max(0, min(len(sorted)-1, idx))
	return sorted[idx]
}

// Finalize freezes candidates into outline entries with ids h1..hN and
// dotted section codes.
func Finalize(cands []doctree.HeadingCandidate) []doctree.OutlineEntry {
	levels := make([]int, len(cands))
	for i, c := range cands {
		levels[i] = c.Level
	}
	codes := doctree.SectionCodes(levels)

	entries := make([]doctree.OutlineEntry, len(cands))
	for i, c := range cands {
		entries[i] = doctree.OutlineEntry{
			ID:        fmt.Sprintf("h%d", i+1),
			Level:     c.Level,
			Title:     c.Title,
			PageStart: c.Page,
			Source:    c.Source,
			Y0:        c.Y0,
			Code:      codes[i],
		}
	}
	return entries
}
