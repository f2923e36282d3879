package repair

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/patterns"
)

// NormalizeMarkers rewrites bullets as "- " and turns bare one to three
// digit footnote numbers into <sup> markers:
//
//	"Parents 1 play"     -> "Parents <sup>1</sup> play"
//	"1 The word"         -> "<sup>1</sup> The word"   (line start)
//	"strategies;6 and"   -> "strategies;<sup>6</sup> and"
func NormalizeMarkers(text string) string {
	out := patterns.ExtractBanner.ReplaceAllString(text, "")
	out = patterns.BulletNormalize.ReplaceAllString(out, "- ")
	out = replaceStable(out, func(s string) string {
		return patterns.InlineMarker.ReplaceAllString(s, "$1 <sup>$2</sup>$3")
	})
	out = patterns.LineStartMarker.ReplaceAllString(out, "<sup>$1</sup> ")
	out = replaceStable(out, func(s string) string {
		return patterns.PunctGlueMarker.ReplaceAllString(s, "$1<sup>$2</sup>$3")
	})
	return patterns.BlankLineRun.ReplaceAllString(out, "\n\n")
}

// SplitDefinitionBreaks puts a blank line between a definition line and
// a lowercase continuation line below it.
func SplitDefinitionBreaks(text string) string {
	return replaceStable(text, func(s string) string {
		return patterns.SupLineLowerNext.ReplaceAllString(s, "$1\n\n$2")
	})
}

// AttachMissingMarkers gives a definition paragraph a visible reference
// at the end of the paragraph before it when its number is not referenced
// anywhere earlier in the section. Runs of consecutive definitions are
// left alone.
func AttachMissingMarkers(text string) string {
	paras := paragraphs(text)
	if len(paras) < 2 {
		return text
	}
	defs := make([]bool, len(paras))
	for i, p := range paras {
		defs[i] = patterns.SupDefinition.MatchString(p)
	}

	for i := 1; i < len(paras); i++ {
		m := patterns.SupDefinition.FindStringSubmatch(paras[i])
		if m == nil || defs[i-1] {
			continue
		}
		marker := patterns.MarkerTag(m[1])
		if referencedBefore(paras[:i], marker) {
			continue
		}
		paras[i-1] = strings.TrimRight(paras[i-1], " \t\n\r") + " " + marker
	}
	return joinParagraphs(paras)
}

func referencedBefore(paras []string, marker string) bool {
	for _, p := range paras {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}

// MoveDefinitionsToEnd moves definition paragraphs after the body,
// keeping the relative order of both groups.
func MoveDefinitionsToEnd(text string) string {
	paras := paragraphs(text)
	if len(paras) == 0 {
		return text
	}
	var body, defs []string
	for _, p := range paras {
		if patterns.SupDefinition.MatchString(p) {
			defs = append(defs, p)
		} else {
			body = append(body, p)
		}
	}
	return joinParagraphs(append(body, defs...))
}
