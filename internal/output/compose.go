package output

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// SectionsDir is the directory, relative to the output root, that holds
// section documents.
const SectionsDir = "sections"

// Compose fills each outline entry's metrics and section file, then
// renders one document and one segment per chunk. Chunks must be in
// emission order.
func Compose(chunks []doctree.Chunk, includeMetadata bool) ([]doctree.Segment, []doctree.SectionDoc) {
	segments := make([]doctree.Segment, 0, len(chunks))
	docs := make([]doctree.SectionDoc, 0, len(chunks))

	var last *doctree.Section
	for _, c := range chunks {
		s := c.Section
		e := s.Entry
		file := SectionsDir + "/" + FileName(e.Code, e.Title, c.Part)
		if s != last {
			e.LineCount = LineCount(s.Body)
			e.CharCount = utf8.RuneCountInString(s.Body)
			e.SectionFile = file
			last = s
		}

		docs = append(docs, doctree.SectionDoc{File: file, Markdown: RenderSection(c, includeMetadata)})
		segments = append(segments, doctree.Segment{
			ID:        fmt.Sprintf("s%d", len(segments)+1),
			Title:     c.Title,
			Level:     e.Level,
			PageStart: s.StartPage,
			PageEnd:   s.EndPage,
			File:      file,
			CharCount: utf8.RuneCountInString(c.Text),
		})
	}
	return segments, docs
}

// LineCount counts the non-blank lines of a body.
func LineCount(body string) int {
	n := 0
	for _, l := range strings.Split(body, "\n") {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}
