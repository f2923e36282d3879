package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/patterns"
)

const (
	paragraphGap = 4.0  // vertical gap that ends a paragraph
	bulletGap    = 10.0 // largest gap a bullet continuation may span
	indentJump   = 8.0  // indent increase that starts a new paragraph
	indentSlack  = 1.0
)

// Paragraphs clusters lines into paragraph blocks. Lines are sorted by
// position first; the caller's slice is not modified.
func Paragraphs(lines []doctree.Line) []doctree.Block {
	if len(lines) == 0 {
		return nil
	}
	sorted := append([]doctree.Line(nil), lines...)
	sortLines(sorted)

	baseline := sorted[0].BBox.X0
	for _, l := range sorted {
		baseline = min(baseline, l.BBox.X0)
	}

	var blocks []doctree.Block
	var current []string
	var currentY float64
	currentBullet := false

	flush := func() {
		if len(current) == 0 {
			return
		}
		blocks = append(blocks, doctree.Block{
			Kind: doctree.BlockParagraph,
			Text: strings.TrimSpace(joinLines(current)),
			Y0:   currentY,
		})
		current = nil
	}

	for i, l := range sorted {
		text := l.Text()
		bullet := patterns.ListItemStart.MatchString(text)
		if i == 0 {
			current = []string{text}
			currentY = l.BBox.Y0
			currentBullet = bullet
			continue
		}
		prev := sorted[i-1]
		gap := l.BBox.Y0 - prev.BBox.Y1
		indent := l.BBox.X0 - baseline
		prevIndent := prev.BBox.X0 - baseline

		continuation := currentBullet && !bullet &&
			indent >= prevIndent-indentSlack && gap <= bulletGap
		startsNew := (gap > paragraphGap && !continuation) || bullet ||
			(indent-prevIndent > indentJump && !continuation)

		if startsNew {
			flush()
			current = []string{text}
			currentY = l.BBox.Y0
			currentBullet = bullet
		} else {
			current = append(current, text)
		}
	}
	flush()
	return blocks
}

// joinLines joins with single spaces and fuses words hyphenated across
// a line break.
func joinLines(lines []string) string {
	merged := lines[0]
	for _, next := range lines[1:] {
		if dehyphenate(merged, next) {
			merged = merged[:len(merged)-1] + next
			continue
		}
		merged += " " + next
	}
	return merged
}

func dehyphenate(merged, next string) bool {
	if !strings.HasSuffix(merged, "-") {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(merged[:len(merged)-1])
	first, _ := utf8.DecodeRuneInString(next)
	return unicode.IsLetter(before) && unicode.IsLetter(first)
}
