package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Summary is what extract prints once the outputs are written.
type Summary struct {
	Input     string       `json:"input" yaml:"input"`
	OutputDir string       `json:"output_dir" yaml:"output_dir"`
	Source    string       `json:"source" yaml:"source"`
	Pages     int          `json:"pages" yaml:"pages"`
	Headings  int          `json:"headings" yaml:"headings"`
	Segments  int          `json:"segments" yaml:"segments"`
	Sections  []SectionRow `json:"sections" yaml:"sections"`
}

type SectionRow struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Level int    `json:"level" yaml:"level"`
	Pages string `json:"pages" yaml:"pages"`
	File  string `json:"file" yaml:"file"`
	Chars int    `json:"chars" yaml:"chars"`
}

func newSummary(input, dir string, res *doctree.Result) Summary {
	s := Summary{
		Input:     input,
		OutputDir: dir,
		Source:    string(res.Provenance()),
		Pages:     res.PageCount,
		Headings:  len(res.Outline),
		Segments:  len(res.Segments),
		Sections:  make([]SectionRow, 0, len(res.Segments)),
	}
	for _, seg := range res.Segments {
		pages := fmt.Sprintf("%d", seg.PageStart)
		if seg.PageEnd != seg.PageStart {
			pages = fmt.Sprintf("%d-%d", seg.PageStart, seg.PageEnd)
		}
		s.Sections = append(s.Sections, SectionRow{
			ID:    seg.ID,
			Title: seg.Title,
			Level: seg.Level,
			Pages: pages,
			File:  seg.File,
			Chars: seg.CharCount,
		})
	}
	return s
}

func writeSummary(w io.Writer, format string, s Summary) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(s)
	case "table":
		return writeTable(w, s)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// writeTable aligns columns by display width so CJK and accented titles
// line up in a terminal.
func writeTable(w io.Writer, s Summary) error {
	header := []string{"ID", "LEVEL", "PAGES", "CHARS", "TITLE", "FILE"}
	rows := [][]string{header}
	for _, r := range s.Sections {
		rows = append(rows, []string{
			r.ID,
			fmt.Sprintf("%d", r.Level),
			r.Pages,
			fmt.Sprintf("%d", r.Chars),
			strings.Repeat("  ", max(r.Level-1, 0)) + r.Title,
			r.File,
		})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	if _, err := fmt.Fprintf(w, "%s (%s, %d pages) -> %s\n\n", s.Input, s.Source, s.Pages, s.OutputDir); err != nil {
		return err
	}
	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
