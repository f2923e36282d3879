package doctree

// Placeholder replaces the body of a section with no recoverable text.
const Placeholder = "(No extractable text in this range.)"

// PageWindow is the vertical slice of one page owned by a section.
// A nil bound means the page edge.
type PageWindow struct {
	Page int
	YMin *float64
	YMax *float64
}

// Section binds an outline entry to its page range and body text.
type Section struct {
	Entry     *OutlineEntry
	StartPage int
	EndPage   int
	Windows   []PageWindow
	Body      string

	// NextTitle is the title of the following heading, used to drop
	// heading echoes at the end of the body.
	NextTitle string
}

// BlockKind distinguishes paragraphs from tables.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
)

// Block is a paragraph or rendered table in reading order.
type Block struct {
	Kind BlockKind
	Text string
	Y0   float64
}

// Segment is one entry of the segment index. A section split into
// chunks produces one segment per chunk.
type Segment struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Level     int    `json:"level"`
	PageStart int    `json:"page_start"`
	PageEnd   int    `json:"page_end"`
	File      string `json:"file"`
	CharCount int    `json:"char_count"`
}

// Chunk is one budget-sized piece of a section body. Part is 0 when the
// body was not split, else 1-based.
type Chunk struct {
	Text    string
	Index   int
	Part    int
	Title   string
	Section *Section
}

// SectionDoc is a rendered section document ready to be written.
type SectionDoc struct {
	File     string
	Markdown string
}

// Result is the complete output of one extraction run.
type Result struct {
	Source    string
	Stem      string
	PageCount int
	Outline   []OutlineEntry
	Segments  []Segment
	Documents []SectionDoc
	Tree      *DocTree
}

// Provenance returns the source of the first outline entry.
func (r *Result) Provenance() Provenance {
	if len(r.Outline) == 0 {
		return SourceFallback
	}
	return r.Outline[0].Source
}
