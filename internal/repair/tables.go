package repair

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/patterns"
)

const (
	rubricHeaderRow = "| Categories | Level 1 | Level 2 | Level 3 | Level 4 |"
	rubricSepRow    = "|---|---|---|---|---|"
)

// DropRubricNoise removes "Categories / Level 1 ... Level 4" labels that
// were extracted as loose lines next to the rubric tables they head.
// Text without a table is returned unchanged.
func DropRubricNoise(text string) string {
	if !strings.Contains(text, "|") {
		return text
	}
	out := patterns.RubricHeaderText.ReplaceAllString(text, "\n\n$1")
	out = patterns.BlankLineRun.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// DropDuplicateTableHeaders removes a rubric header and separator pair
// that sits between two table rows, which happens when one table
// continues across a page break.
func DropDuplicateTableHeaders(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		next := ""
		if i+1 < len(lines) {
			next = strings.TrimSpace(lines[i+1])
		}
		if line == rubricHeaderRow && next == rubricSepRow &&
			strings.HasPrefix(lastNonEmpty(out), "|") &&
			strings.HasPrefix(firstNonEmpty(lines[i+2:]), "|") {
			i++
			continue
		}
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n")
}

func lastNonEmpty(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return ""
}

func firstNonEmpty(lines []string) string {
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			return s
		}
	}
	return ""
}
