package output

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/patterns"
)

const maxSlug = 64

// Slugify converts a title to a path-safe slug.
func Slugify(s string) string {
	s = strings.Trim(patterns.NonAlnumRun.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if s == "" {
		s = "section"
	}
	if len(s) > maxSlug {
		s = strings.TrimRight(s[:maxSlug], "-")
	}
	return s
}

// FileName names the section document for a chunk. Part 0 is an
// unsplit section.
func FileName(code, title string, part int) string {
	name := code + "-" + Slugify(title)
	if part > 0 {
		name += fmt.Sprintf("-part-%d", part)
	}
	return name + ".md"
}

// RenderSection produces one section document: heading, optional
// metadata lines and the body.
func RenderSection(c doctree.Chunk, includeMetadata bool) string {
	s := c.Section
	var sb strings.Builder
	sb.WriteString(strings.Repeat("#", max(1, min(6, s.Entry.Level))))
	sb.WriteString(" ")
	sb.WriteString(c.Title)
	sb.WriteString("\n\n")
	if includeMetadata {
		fmt.Fprintf(&sb, "- Level: %d\n", s.Entry.Level)
		fmt.Fprintf(&sb, "- Pages: %d-%d\n", s.StartPage, s.EndPage)
		fmt.Fprintf(&sb, "- Source: %s\n\n", s.Entry.Source)
	}
	sb.WriteString(c.Text)
	sb.WriteString("\n")
	return sb.String()
}

// RenderOutline produces outline.md: one indented line per entry.
func RenderOutline(entries []doctree.OutlineEntry) string {
	lines := []string{"# Outline", ""}
	for _, e := range entries {
		title := e.Title
		if e.SectionFile != "" {
			title = fmt.Sprintf("[%s](%s)", title, e.SectionFile)
		}
		lines = append(lines, fmt.Sprintf("%s- L%d p%d %s (lines: %d, chars: %d)",
			strings.Repeat("  ", max(0, e.Level-1)), e.Level, e.PageStart, title, e.LineCount, e.CharCount))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
