package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// MinChars is the smallest budget accepted; lower values are raised to it.
const MinChars = 1000

// Config controls chunking behavior.
type Config struct {
	MaxChars int // Character budget per emitted section document.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxChars: 8000}
}

// Budget returns the effective character budget.
func (c Config) Budget() int {
	if c.MaxChars <= 0 {
		return DefaultConfig().MaxChars
	}
	return max(MinChars, c.MaxChars)
}

// ChunkSections splits every section body that exceeds the budget.
// Chunk indexes run across all sections in emission order.
func ChunkSections(sections []*doctree.Section, cfg Config) []doctree.Chunk {
	var chunks []doctree.Chunk
	index := 0
	for _, s := range sections {
		for _, c := range ChunkSection(s, cfg) {
			c.Index = index
			chunks = append(chunks, c)
			index++
		}
	}
	return chunks
}

// ChunkSection returns the body as a single chunk when it fits the
// budget, else as "(Part N)" chunks split on paragraph, table row and
// sentence boundaries.
func ChunkSection(s *doctree.Section, cfg Config) []doctree.Chunk {
	budget := cfg.Budget()
	title := s.Entry.Title
	if runeLen(s.Body) <= budget {
		return []doctree.Chunk{{Text: s.Body, Title: title, Section: s}}
	}

	parts := splitText(s.Body, budget)
	if len(parts) == 1 {
		return []doctree.Chunk{{Text: parts[0], Title: title, Section: s}}
	}
	chunks := make([]doctree.Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = doctree.Chunk{
			Text:    p,
			Part:    i + 1,
			Title:   fmt.Sprintf("%s (Part %d)", title, i+1),
			Section: s,
		}
	}
	return chunks
}

// splitText packs paragraphs into pieces of at most budget characters.
func splitText(text string, budget int) []string {
	var result []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			result = append(result, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, para := range splitByParagraphs(text) {
		paraLen := runeLen(para)

		// If a single paragraph exceeds the budget, split it further.
		if paraLen > budget {
			flush()
			if isTable(para) {
				result = append(result, splitTable(para, budget)...)
			} else {
				result = append(result, splitBySentences(para, budget)...)
			}
			continue
		}

		if currentLen > 0 && currentLen+2+paraLen > budget {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(para)
		currentLen += paraLen
	}
	flush()

	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func isTable(para string) bool {
	for _, l := range strings.Split(para, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(l), "|") {
			return false
		}
	}
	return true
}

// splitTable breaks a markdown table by rows, repeating the header and
// separator row at the top of each piece.
func splitTable(table string, budget int) []string {
	lines := strings.Split(table, "\n")
	if len(lines) < 3 {
		return splitBySentences(table, budget)
	}
	header := lines[0] + "\n" + lines[1]
	headerLen := runeLen(header)

	var result []string
	var current strings.Builder
	currentLen := 0
	for _, row := range lines[2:] {
		rowLen := runeLen(row)
		if currentLen > 0 && currentLen+1+rowLen > budget {
			result = append(result, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen == 0 {
			current.WriteString(header)
			currentLen = headerLen
		}
		current.WriteString("\n")
		current.WriteString(row)
		currentLen += 1 + rowLen
	}
	if currentLen > 0 {
		result = append(result, current.String())
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based pieces.
func splitBySentences(text string, budget int) []string {
	var result []string
	var current strings.Builder
	currentLen := 0

	for _, sent := range splitSentences(text) {
		sentLen := runeLen(sent)
		if sentLen > budget {
			if currentLen > 0 {
				result = append(result, current.String())
				current.Reset()
				currentLen = 0
			}
			result = append(result, splitWords(sent, budget)...)
			continue
		}

		if currentLen > 0 && currentLen+1+sentLen > budget {
			result = append(result, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(sent)
		currentLen += sentLen
	}

	if currentLen > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// splitWords is the last resort for a sentence longer than the budget.
// A single word longer than the budget is cut at rune boundaries.
func splitWords(text string, budget int) []string {
	var result []string
	var current strings.Builder
	currentLen := 0

	for _, w := range strings.Fields(text) {
		for runeLen(w) > budget {
			if currentLen > 0 {
				result = append(result, current.String())
				current.Reset()
				currentLen = 0
			}
			r := []rune(w)
			result = append(result, string(r[:budget]))
			w = string(r[budget:])
		}
		wLen := runeLen(w)
		if currentLen > 0 && currentLen+1+wLen > budget {
			result = append(result, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(w)
		currentLen += wLen
	}
	if currentLen > 0 {
		result = append(result, current.String())
	}
	return result
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
