package doctree

// Provenance records which path of the outline builder produced a heading.
type Provenance string

const (
	SourceEmbedded  Provenance = "embedded-outline"
	SourceHeuristic Provenance = "heuristic"
	SourceFallback  Provenance = "fallback"
)

// TOCItem is one entry of a document's embedded outline.
type TOCItem struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// HeadingCandidate is a line, or merged group of lines, judged to be a heading.
// Y0 is nil when the vertical position is unknown (embedded outlines).
type HeadingCandidate struct {
	Level    int
	Title    string
	Page     int
	Y0       *float64
	FontSize float64
	Source   Provenance
}

// OutlineEntry is a finalized heading with its output metrics.
type OutlineEntry struct {
	ID          string     `json:"id"`
	Level       int        `json:"level"`
	Title       string     `json:"title"`
	PageStart   int        `json:"page_start"`
	Source      Provenance `json:"source"`
	LineCount   int        `json:"line_count"`
	CharCount   int        `json:"char_count"`
	SectionFile string     `json:"section_file"`

	Y0   *float64 `json:"-"`
	Code string   `json:"-"`
}
