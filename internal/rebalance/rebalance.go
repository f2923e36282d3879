// Package rebalance repairs footnotes that a section boundary separated
// from their references. It runs left to right over the repaired bodies
// and mutates neighbouring sections, so it is strictly sequential.
package rebalance

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/patterns"
)

// earlyReference is how far into the previous body a reference may sit
// and still claim a definition the current section also references.
const earlyReference = 500

// Run relocates definitions and then strips orphaned markers.
func Run(sections []*doctree.Section) {
	RelocateDefinitions(sections)
	RemoveOrphanMarkers(sections)
}

// RelocateDefinitions moves a definition back into the previous section
// when that section references the marker without defining it, and the
// current section either does not reference it or the previous
// reference comes early in its text.
func RelocateDefinitions(sections []*doctree.Section) {
	for i := 1; i < len(sections); i++ {
		prev, cur := sections[i-1], sections[i]
		curParas := split(cur.Body)
		if len(curParas) == 0 {
			continue
		}

		type def struct{ num, text string }
		var defs []def
		var nondefs []string
		for _, p := range curParas {
			if m := patterns.SupDefinition.FindStringSubmatch(p); m != nil {
				defs = append(defs, def{m[1], p})
			} else {
				nondefs = append(nondefs, p)
			}
		}
		if len(defs) == 0 {
			continue
		}

		nondefText := strings.Join(nondefs, "\n\n")
		prevParas := split(prev.Body)
		moved := false
		for _, d := range defs {
			marker := patterns.MarkerTag(d.num)
			pos := strings.Index(prev.Body, marker)
			if pos < 0 || defines(prev.Body, d.num) {
				continue
			}
			if strings.Contains(nondefText, marker) && pos >= earlyReference {
				continue
			}
			prevParas = append(prevParas, d.text)
			curParas = remove(curParas, d.text)
			moved = true
		}

		if moved {
			prev.Body = strings.TrimSpace(strings.Join(prevParas, "\n\n"))
			cur.Body = strings.TrimSpace(strings.Join(curParas, "\n\n"))
			if cur.Body == "" {
				cur.Body = doctree.Placeholder
			}
		}
	}
}

// RemoveOrphanMarkers strips markers that a section references but does
// not define when an earlier section already defines them.
func RemoveOrphanMarkers(sections []*doctree.Section) {
	defined := make(map[string]bool)
	for i, s := range sections {
		local := make(map[string]bool)
		for _, m := range patterns.SupDefinitionAny.FindAllStringSubmatch(s.Body, -1) {
			local[m[1]] = true
		}

		if i > 0 {
			body := patterns.SupTagSpaced.ReplaceAllStringFunc(s.Body, func(m string) string {
				n := patterns.SupTagAnywhere.FindStringSubmatch(m)[1]
				if local[n] || !defined[n] {
					return m
				}
				return ""
			})
			body = strings.TrimSpace(patterns.BlankLineRun.ReplaceAllString(body, "\n\n"))
			if body == "" {
				body = doctree.Placeholder
			}
			s.Body = body
		}

		for n := range local {
			defined[n] = true
		}
	}
}

// defines reports whether body has a definition paragraph for footnote n.
func defines(body, n string) bool {
	for _, m := range patterns.SupDefinitionAny.FindAllStringSubmatch(body, -1) {
		if m[1] == n {
			return true
		}
	}
	return false
}

func split(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// remove drops every paragraph equal to target.
func remove(paras []string, target string) []string {
	out := paras[:0]
	for _, p := range paras {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}
