package repair

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/patterns"
)

// StitchContinuations merges a paragraph that starts in lowercase into
// the nearest earlier paragraph ending with a footnote marker, or else
// into the paragraph right before it when that one does not end a
// sentence.
func StitchContinuations(text string) string {
	if len(paragraphs(text)) < 2 {
		return text
	}
	return replaceStable(text, stitchOnce)
}

func stitchOnce(text string) string {
	paras := paragraphs(text)
	if len(paras) < 2 {
		return text
	}
	for i := 1; i < len(paras); {
		p := strings.TrimLeft(paras[i], " \t\n\r")
		if !startsLower(p) {
			i++
			continue
		}
		target := -1
		for j := i - 1; j >= 0; j-- {
			if patterns.SupAtEnd.MatchString(strings.TrimRight(paras[j], " \t\n\r")) {
				target = j
				break
			}
		}
		if target < 0 && !patterns.OpenSentence.MatchString(strings.TrimRight(paras[i-1], " \t\n\r")) {
			target = i - 1
		}
		if target < 0 {
			i++
			continue
		}
		paras[target] = strings.TrimRight(paras[target], " \t\n\r") + " " + p
		paras = append(paras[:i], paras[i+1:]...)
	}
	return joinParagraphs(paras)
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsLower(r)
}
