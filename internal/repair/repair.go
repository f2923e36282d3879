// Package repair cleans up the raw text of a single section. The passes
// run in a fixed order because each one expects the form left by the
// one before it:
//
//  1. strip extraction banners and heading echoes
//  2. turn bare footnote numbers into <sup> markers
//  3. split definition lines from lowercase continuations
//  4. attach missing markers to the text a definition follows
//  5. move definitions to the end of the section
//  6. stitch lowercase continuations back onto their paragraph
//  7. run structured-block recognizers (dot-leader TOC, course table)
//  8. drop rubric header noise and duplicated table headers
//
// No pass fails. Each one leaves the text unchanged when its pattern is
// absent.
package repair

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/patterns"
)

// Recognizer rewrites one kind of flattened structured block into
// Markdown. Rewrite must return text unchanged when the block is absent
// and must not match its own output.
type Recognizer interface {
	Name() string
	Rewrite(text string) string
}

// DefaultRecognizers returns the recognizers used when none are configured.
func DefaultRecognizers() []Recognizer {
	return []Recognizer{
		DotLeaderTOC{MinRows: 4},
		CourseTable{MinRows: 3},
	}
}

// Pipeline runs the repair passes over section bodies.
type Pipeline struct {
	Recognizers []Recognizer
}

// New returns a pipeline using the given recognizers, or the defaults
// when none are passed.
func New(recognizers ...Recognizer) *Pipeline {
	if len(recognizers) == 0 {
		recognizers = DefaultRecognizers()
	}
	return &Pipeline{Recognizers: recognizers}
}

// Run cleans a section body whose heading is title. nextTitle is the
// following heading, or "" for the last section.
func (p *Pipeline) Run(body, title, nextTitle string) string {
	return p.Normalize(Cleanup(body, title, nextTitle))
}

// Normalize applies every pass after the initial cleanup. Running it on
// its own output changes nothing.
func (p *Pipeline) Normalize(text string) string {
	text = NormalizeMarkers(text)
	text = SplitDefinitionBreaks(text)
	text = AttachMissingMarkers(text)
	text = MoveDefinitionsToEnd(text)
	text = StitchContinuations(text)
	for _, r := range p.Recognizers {
		text = r.Rewrite(text)
	}
	text = DropRubricNoise(text)
	text = DropDuplicateTableHeaders(text)
	if strings.TrimSpace(text) == "" {
		return doctree.Placeholder
	}
	return text
}

// Cleanup strips extraction banners, a first paragraph that repeats the
// heading, a last paragraph that repeats the next heading, and a short
// title-cased tail bleeding in from the next page.
func Cleanup(body, title, nextTitle string) string {
	out := strings.TrimSpace(body)
	out = patterns.ExtractBanner.ReplaceAllString(out, "")

	var paras []string
	for _, p := range strings.Split(out, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	if len(paras) == 0 {
		return doctree.Placeholder
	}

	if headingKey(paras[0]) == headingKey(title) {
		paras = paras[1:]
	}
	if len(paras) > 0 && nextTitle != "" && headingKey(paras[len(paras)-1]) == headingKey(nextTitle) {
		paras = paras[:len(paras)-1]
	}
	if len(paras) > 1 && looksLikeHeading(paras[len(paras)-1]) {
		paras = paras[:len(paras)-1]
	}

	out = strings.TrimSpace(strings.Join(paras, "\n\n"))
	if out == "" {
		return doctree.Placeholder
	}
	return patterns.BlankLineRun.ReplaceAllString(out, "\n\n")
}

func headingKey(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ":")))
}

func looksLikeHeading(p string) bool {
	words := strings.Fields(p)
	if len(words) > 6 || patterns.TerminalPunct.MatchString(p) {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// paragraphs splits on blank lines and drops blank entries. Entries keep
// their surrounding whitespace.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinParagraphs(paras []string) string {
	return strings.Join(paras, "\n\n")
}

// replaceStable repeats a replacement until the text stops changing.
// Patterns that capture their trailing context cannot match back to back
// in one pass.
func replaceStable(text string, apply func(string) string) string {
	for range 8 {
		next := apply(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}
