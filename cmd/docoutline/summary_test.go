package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func sampleResult() *doctree.Result {
	return &doctree.Result{
		PageCount: 3,
		Outline: []doctree.OutlineEntry{
			{ID: "h1", Level: 1, Title: "Overview", Source: doctree.SourceEmbedded},
			{ID: "h2", Level: 2, Title: "学校の目標", Source: doctree.SourceEmbedded},
		},
		Segments: []doctree.Segment{
			{ID: "s1", Title: "Overview", Level: 1, PageStart: 1, PageEnd: 2, File: "sections/1-overview.md", CharCount: 120},
			{ID: "s2", Title: "学校の目標", Level: 2, PageStart: 3, PageEnd: 3, File: "sections/1.1-section.md", CharCount: 40},
		},
	}
}

func TestNewSummary(t *testing.T) {
	s := newSummary("guide.pdf", "/out/guide", sampleResult())
	if s.Source != "embedded-outline" || s.Headings != 2 || s.Segments != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Sections[0].Pages != "1-2" || s.Sections[1].Pages != "3" {
		t.Errorf("pages = %q, %q", s.Sections[0].Pages, s.Sections[1].Pages)
	}
}

func TestWriteSummary_Formats(t *testing.T) {
	s := newSummary("guide.pdf", "/out/guide", sampleResult())

	var buf bytes.Buffer
	if err := writeSummary(&buf, "json", s); err != nil {
		t.Fatal(err)
	}
	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json: %v", err)
	}
	if decoded.Sections[1].File != "sections/1.1-section.md" {
		t.Errorf("decoded = %+v", decoded.Sections)
	}

	buf.Reset()
	if err := writeSummary(&buf, "yaml", s); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "output_dir: /out/guide") {
		t.Errorf("yaml:\n%s", buf.String())
	}

	if err := writeSummary(&buf, "xml", s); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteTable_AlignsWideTitles(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, newSummary("guide.pdf", "/out/guide", sampleResult())); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d:\n%s", len(lines), buf.String())
	}
	// Header and rows start the FILE column at the same display offset.
	headerCol := strings.Index(lines[2], "FILE")
	for _, row := range lines[3:] {
		idx := strings.Index(row, "sections/")
		prefix := row[:idx]
		if w := displayWidth(prefix); w != headerCol {
			t.Errorf("row %q: file column at %d, want %d", row, w, headerCol)
		}
	}
}
