// Package section binds outline entries to the page ranges they own and
// collects the raw body text of each range.
package section

import (
	"log/slog"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/layout"
)

// PageSource returns a decoded page, or an error for unreadable pages.
type PageSource func(n int) (*doctree.Page, error)

// Assemble computes each entry's page range and per-page windows. A
// section runs from its heading to the next heading's page; the final
// section runs to the last page.
func Assemble(entries []doctree.OutlineEntry, pageCount int) []*doctree.Section {
	pageCount = max(1, pageCount)
	sections := make([]*doctree.Section, len(entries))
	for i := range entries {
		cur := &entries[i]
		start := clampPage(cur.PageStart, pageCount)
		var next *doctree.OutlineEntry
		end := pageCount
		if i+1 < len(entries) {
			next = &entries[i+1]
			end = clampPage(next.PageStart, pageCount)
		}
		end = max(start, end)

		s := &doctree.Section{Entry: cur, StartPage: start, EndPage: end}
		if next != nil {
			s.NextTitle = next.Title
		}
		for p := start; p <= end; p++ {
			w := doctree.PageWindow{Page: p}
			if p == start && cur.Y0 != nil {
				w.YMin = cur.Y0
			}
			if next != nil && next.Y0 != nil && p == next.PageStart {
				w.YMax = next.Y0
			}
			s.Windows = append(s.Windows, w)
		}
		sections[i] = s
	}
	return sections
}

// clampPage keeps a heading's page inside the document.
func clampPage(n, pageCount int) int {
	return max(1, min(pageCount, n))
}

// Collect segments every window of s and joins the blocks. Pages that
// fail to decode are logged and skipped. An empty result becomes the
// placeholder.
func Collect(s *doctree.Section, pages PageSource, log *slog.Logger) string {
	var parts []string
	for _, w := range s.Windows {
		p, err := pages(w.Page)
		if err != nil {
			if log != nil {
				log.Warn("page unreadable, skipping", "page", w.Page, "error", err)
			}
			continue
		}
		blocks := layout.Segment(p, w.YMin, w.YMax)
		if len(blocks) == 0 {
			continue
		}
		texts := make([]string, len(blocks))
		for i, b := range blocks {
			texts[i] = b.Text
		}
		parts = append(parts, strings.Join(texts, "\n\n"))
	}
	body := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if body == "" {
		return doctree.Placeholder
	}
	return body
}
