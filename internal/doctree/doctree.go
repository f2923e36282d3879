package doctree

import (
	"strconv"
	"strings"
)

// DocTree is the root of the numbered section tree.
type DocTree struct {
	Title    string     `json:"title"`    // Document title (input file stem)
	Children []*DocNode `json:"children"` // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Code      string     `json:"code"`
	Title     string     `json:"title"`
	Level     int        `json:"level"`
	PageStart int        `json:"page_start"`
	PageEnd   int        `json:"page_end"`
	File      string     `json:"file,omitempty"`
	Children  []*DocNode `json:"children,omitempty"`
}

// SectionCodes derives dotted section numbers from heading levels.
// Entering a level resets every deeper counter before incrementing, and
// each code stops at its own level.
func SectionCodes(levels []int) []string {
	maxLevel := 1
	for _, l := range levels {
		maxLevel = max(maxLevel, l)
	}
	depth := max(3, min(6, maxLevel))
	counters := make([]int, depth)

	codes := make([]string, len(levels))
	for i, l := range levels {
		level := max(1, min(depth, l))
		for j := level; j < depth; j++ {
			counters[j] = 0
		}
		counters[level-1]++

		parts := make([]string, level)
		for j := range level {
			parts[j] = strconv.Itoa(counters[j])
		}
		codes[i] = strings.Join(parts, ".")
	}
	return codes
}

// BuildTree nests sections under their nearest shallower heading.
func BuildTree(title string, sections []*Section) *DocTree {
	type stackEntry struct {
		node  *DocNode
		level int
	}
	root := &DocNode{Title: title}
	stack := []stackEntry{{node: root, level: 0}}

	for _, s := range sections {
		e := s.Entry
		node := &DocNode{
			Code:      e.Code,
			Title:     e.Title,
			Level:     e.Level,
			PageStart: s.StartPage,
			PageEnd:   s.EndPage,
			File:      e.SectionFile,
		}
		// Pop stack until we find a parent with lower level.
		for len(stack) > 1 && stack[len(stack)-1].level >= e.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: e.Level})
	}

	return &DocTree{Title: title, Children: root.Children}
}

// Walk visits every node depth-first in document order.
func (t *DocTree) Walk(fn func(n *DocNode, depth int)) {
	var walk func(nodes []*DocNode, depth int)
	walk = func(nodes []*DocNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t.Children, 0)
}
