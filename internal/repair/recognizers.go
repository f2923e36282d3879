package repair

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docoutline/internal/patterns"
)

// DotLeaderTOC turns runs of "Title ...... 12" lines into a two-column
// Section | Page table. Blank lines may separate rows once a run has
// started.
type DotLeaderTOC struct {
	MinRows int
}

func (DotLeaderTOC) Name() string { return "dot-leader-toc" }

func (d DotLeaderTOC) Rewrite(text string) string {
	minRows := max(1, d.MinRows)
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		type row struct{ title, page string }
		var rows []row
		j := i
		for j < len(lines) {
			if strings.TrimSpace(lines[j]) == "" {
				if len(rows) > 0 {
					j++
					continue
				}
				break
			}
			m := patterns.DotLeaderRow.FindStringSubmatch(lines[j])
			if m == nil {
				break
			}
			page := m[2]
			if page == "" {
				page = m[3]
			}
			rows = append(rows, row{strings.TrimSpace(m[1]), page})
			j++
		}

		if len(rows) >= minRows {
			out = append(out, "| Section | Page |", "|---|---:|")
			for _, r := range rows {
				out = append(out, fmt.Sprintf("| %s | %s |", escapeCell(r.title), r.page))
			}
			out = append(out, "")
			i = j
			continue
		}
		out = append(out, lines[i])
		i++
	}
	return strings.Join(out, "\n")
}

// CourseTable rebuilds a course listing (grade, name, type, code,
// prerequisite) that page extraction flattened into loose text. Rows are
// anchored on course codes such as "ICS3U".
type CourseTable struct {
	MinRows int
}

func (CourseTable) Name() string { return "course-table" }

// CourseRow is one parsed course listing.
type CourseRow struct {
	Grade        string
	Name         string
	Type         string
	Code         string
	Prerequisite string
}

func (c CourseTable) Rewrite(text string) string {
	if !strings.Contains(text, "Course Name") || !strings.Contains(text, "Course Type") || !strings.Contains(text, "Course Code") {
		return text
	}
	loc := patterns.CourseTableHeader.FindStringIndex(text)
	if loc == nil {
		return text
	}

	blockEnd := len(text)
	if n := strings.Index(text[loc[1]:], "\n\nNote:"); n >= 0 {
		blockEnd = loc[1] + n
	}
	flat := strings.TrimSpace(patterns.Whitespace.ReplaceAllString(text[loc[0]:blockEnd], " "))
	if idx := strings.Index(strings.ToLower(flat), "prerequisite"); idx >= 0 {
		flat = strings.TrimSpace(flat[idx+len("prerequisite"):])
	}

	rows := ParseCourseRows(flat)
	if len(rows) < max(1, c.MinRows) {
		return text
	}

	var sb strings.Builder
	sb.WriteString("| Grade | Course | Type | Code | Prerequisite |\n")
	sb.WriteString("|---:|---|---|---|---|")
	for _, r := range rows {
		fmt.Fprintf(&sb, "\n| %s | %s | %s | %s | %s |",
			r.Grade, escapeCell(r.Name), r.Type, r.Code, escapeCell(r.Prerequisite))
	}
	return text[:loc[0]] + sb.String() + text[blockEnd:]
}

// ParseCourseRows scans flattened text for course codes. For each code,
// the grade and type are the last ones before it, and the prerequisite
// is read from the text after it. At least three codes are required.
func ParseCourseRows(flat string) []CourseRow {
	codes := patterns.CourseCode.FindAllStringIndex(flat, -1)
	if len(codes) < 3 {
		return nil
	}

	var rows []CourseRow
	prevCut := 0
	for i, loc := range codes {
		nextStart := len(flat)
		if i+1 < len(codes) {
			nextStart = codes[i+1][0]
		}
		left := strings.TrimSpace(flat[prevCut:loc[0]])
		right := strings.TrimSpace(flat[loc[1]:nextStart])
		prevCut = loc[1]

		grades := patterns.CourseGrade.FindAllStringSubmatchIndex(left, -1)
		types := patterns.CourseType.FindAllStringSubmatchIndex(left, -1)
		if len(grades) == 0 || len(types) == 0 {
			continue
		}
		g := grades[len(grades)-1]
		t := types[len(types)-1]
		grade := left[g[2]:g[3]]
		courseType := left[t[2]:t[3]]

		nameBefore := ""
		if from := g[0] + len(grade); from <= t[0] {
			nameBefore = strings.TrimSpace(left[from:t[0]])
		}
		nameBefore = strings.TrimSpace(patterns.CourseColumnNames.ReplaceAllString(nameBefore, ""))

		prereq := ""
		nameAfter := right
		if m := patterns.CoursePrereq.FindStringSubmatchIndex(right); m != nil {
			prereq = right[m[2]:m[3]]
			nameAfter = strings.TrimSpace(right[m[1]:])
		} else if strings.Contains(right, "None") {
			prereq = "None"
		}
		nameAfter = strings.TrimSpace(patterns.CourseNextRowTail.ReplaceAllString(nameAfter, ""))

		name := nameBefore
		if name == "" {
			name = nameAfter
		}
		name = strings.Trim(patterns.Whitespace.ReplaceAllString(name, " "), " ,;")
		name = strings.TrimSpace(patterns.CourseGradeType.ReplaceAllString(name, ""))
		if name == "" {
			name = "(unknown)"
		}
		if prereq == "" {
			prereq = "(unspecified)"
		}

		rows = append(rows, CourseRow{
			Grade:        grade,
			Name:         name,
			Type:         courseType,
			Code:         flat[loc[0]:loc[1]],
			Prerequisite: prereq,
		})
	}
	return rows
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
