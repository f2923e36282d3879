package layout

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/patterns"
)

// RubricHeader is the synthetic header given to headerless five-column
// achievement charts.
var RubricHeader = []string{"Categories", "Level 1", "Level 2", "Level 3", "Level 4"}

// MarkdownTable renders extracted rows as a GitHub Markdown table. It
// returns "" when the rows do not form a table of at least two columns
// and two non-empty rows, or when no body row survives.
func MarkdownTable(rows [][]string) string {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols < 2 {
		return ""
	}

	var norm [][]string
	for _, r := range rows {
		row := make([]string, cols)
		nonEmpty := false
		for i := range cols {
			if i < len(r) {
				row[i] = doctree.CleanLine(strings.ReplaceAll(r[i], "\n", " "))
			}
			if row[i] != "" {
				nonEmpty = true
			}
		}
		if nonEmpty {
			norm = append(norm, row)
		}
	}
	if len(norm) < 2 {
		return ""
	}

	var header []string
	var body [][]string
	switch {
	case isRubricHeader(norm[0]):
		header, body = norm[0], norm[1:]
	case cols == len(RubricHeader):
		header, body = RubricHeader, norm
	default:
		header, body = norm[0], norm[1:]
	}

	kept := body[:0:0]
	for _, r := range body {
		if isRubricHeader(r) || isSeparatorRow(r) {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow(&sb, header)
	sb.WriteString("\n|")
	sb.WriteString(strings.Repeat("---|", cols))
	for _, r := range kept {
		sb.WriteString("\n")
		writeRow(&sb, r)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("| ")
	for i, c := range cells {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(EscapeCell(c))
	}
	sb.WriteString(" |")
}

// EscapeCell escapes the Markdown column separator.
func EscapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func isRubricHeader(row []string) bool {
	if len(row) < 5 {
		return false
	}
	first := strings.ToLower(row[0])
	rest := strings.ToLower(strings.Join(row[1:5], " "))
	return strings.Contains(first, "categories") &&
		strings.Contains(rest, "level 1") && strings.Contains(rest, "level 4")
}

func isSeparatorRow(row []string) bool {
	found := false
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !patterns.SeparatorCell.MatchString(c) {
			return false
		}
		found = true
	}
	return found
}
