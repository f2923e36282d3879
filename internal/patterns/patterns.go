// Package patterns holds the compiled expressions shared by the outline,
// layout and repair stages. They are built once at init and never mutated.
package patterns

import "regexp"

var (
	// Headings and paragraphs.
	ManualBullet  = regexp.MustCompile(`^[•\-*]`)
	SentenceEnd   = regexp.MustCompile(`[\\.:;!?]$`)
	TerminalPunct = regexp.MustCompile(`[.!?]$`)
	OpenSentence  = regexp.MustCompile(`[.!?]\s*$`)
	ListItemStart = regexp.MustCompile(`^([•\-*]|\d+\.)\s+`)
	SeparatorCell = regexp.MustCompile(`^-{2,}$`)
	NonAlnumRun   = regexp.MustCompile(`[^a-z0-9]+`)
	BlankLineRun  = regexp.MustCompile(`\n{3,}`)

	// Extraction noise.
	ExtractBanner    = regexp.MustCompile(`(?im)^\W*extract\s+\d+\s*`)
	BulletNormalize  = regexp.MustCompile(`(?im)^[-*•]\s*`)
	RubricHeaderText = regexp.MustCompile(`(?im)(?:^|\n\n)Categories\s*\n\s*Level\s*1\s*\n\s*Level\s*2\s*\n\s*Level\s*3\s*\n\s*Level\s*4[ \t]*(\n\n|\n\||$)`)

	// Footnote markup.
	SupTagAnywhere   = regexp.MustCompile(`<sup>(\d{1,3})</sup>`)
	SupTagSpaced     = regexp.MustCompile(`\s*<sup>(\d{1,3})</sup>`)
	SupAtEnd         = regexp.MustCompile(`</sup>\s*$`)
	SupDefinition    = regexp.MustCompile(`^\s*<sup>(\d{1,3})</sup>\s+`)
	SupDefinitionAny = regexp.MustCompile(`(?m)^\s*<sup>(\d{1,3})</sup>\s+`)
	SupLineLowerNext = regexp.MustCompile(`(?m)(<sup>\d{1,3}</sup>[^\n]*)\n([a-z])`)

	// Bare footnote numbers. Lookarounds are unavailable, so the
	// surrounding context is captured and written back.
	InlineMarker    = regexp.MustCompile(`(\w)\s(\d{1,3})(\s+[a-z])`)
	LineStartMarker = regexp.MustCompile(`(?m)^(\d{1,3})\s+`)
	PunctGlueMarker = regexp.MustCompile(`([;:,.)])(\d{1,3})(\s)`)

	// Dot-leader table of contents rows.
	DotLeaderRow = regexp.MustCompile(`^\s*(.+?)\s*\.{3,}\s*(?:<sup>(\d{1,3})</sup>|(\d{1,4}))\s*$`)

	// Course table anchors.
	CourseTableHeader = regexp.MustCompile(`(?i)Grade\s*\n+\s*Course Name\s*\n+\s*Course Type\s*\n+\s*Course Code[^\n]*`)
	CourseColumnNames = regexp.MustCompile(`^(Course\s+Name\s+Course\s+Type\s+Course\s+Code\s+Prerequisite)\s*`)
	CourseCode        = regexp.MustCompile(`\b[A-Z]{3}\d[A-Z]\b`)
	CourseType        = regexp.MustCompile(`\b(Open|University|College)\b`)
	CourseGrade       = regexp.MustCompile(`\b(10|11|12)\b`)
	CoursePrereq      = regexp.MustCompile(`^(None|Grade\s+11\s+Introduction\s+to\s+Computer\s+(?:Science|Programming),\s*(?:University|College))\b`)
	CourseNextRowTail = regexp.MustCompile(`\s+\b(10|11|12)\b\s+[A-Za-z][A-Za-z\s\-]+(?:Open|University|College)\s*$`)
	CourseGradeType   = regexp.MustCompile(`\s+\b(10|11|12)\b\s+(Open|University|College)\s*$`)
	Whitespace        = regexp.MustCompile(`\s+`)
)

// MarkerTag returns the superscript markup for footnote number n.
func MarkerTag(n string) string {
	return "<sup>" + n + "</sup>"
}
