package output

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func sampleResult() *doctree.Result {
	entries := []doctree.OutlineEntry{
		{ID: "h1", Level: 1, Title: "Introduction", PageStart: 1, Source: doctree.SourceHeuristic, Code: "1"},
		{ID: "h2", Level: 2, Title: "Goals & Scope", PageStart: 2, Source: doctree.SourceHeuristic, Code: "1.1"},
	}
	sections := []*doctree.Section{
		{Entry: &entries[0], StartPage: 1, EndPage: 2, Body: "First line.\n\nSecond line."},
		{Entry: &entries[1], StartPage: 2, EndPage: 3, Body: "Part one.\n\nPart two."},
	}
	chunks := []doctree.Chunk{
		{Text: sections[0].Body, Title: "Introduction", Section: sections[0]},
		{Text: "Part one.", Part: 1, Title: "Goals & Scope (Part 1)", Section: sections[1]},
		{Text: "Part two.", Part: 2, Title: "Goals & Scope (Part 2)", Section: sections[1]},
	}
	segments, docs := Compose(chunks, true)
	return &doctree.Result{Stem: "doc", Outline: entries, Segments: segments, Documents: docs}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Goals & Scope", "goals-scope"},
		{"  Leading/Trailing!! ", "leading-trailing"},
		{"!!!", "section"},
		{"Ünïcode Títle", "n-code-t-tle"},
		{strings.Repeat("a", 80), strings.Repeat("a", 64)},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompose_MetricsAndSegments(t *testing.T) {
	res := sampleResult()

	e := res.Outline[0]
	if e.LineCount != 2 || e.CharCount != len("First line.\n\nSecond line.") {
		t.Errorf("metrics = %d lines, %d chars", e.LineCount, e.CharCount)
	}
	if e.SectionFile != "sections/1-introduction.md" {
		t.Errorf("section file = %q", e.SectionFile)
	}
	if got := res.Outline[1].SectionFile; got != "sections/1.1-goals-scope-part-1.md" {
		t.Errorf("split section file = %q", got)
	}

	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(res.Segments))
	}
	for i, want := range []string{"s1", "s2", "s3"} {
		if res.Segments[i].ID != want {
			t.Errorf("segment %d id = %q", i, res.Segments[i].ID)
		}
	}
	if s := res.Segments[2]; s.Title != "Goals & Scope (Part 2)" || s.CharCount != len("Part two.") || s.PageEnd != 3 {
		t.Errorf("segment = %+v", s)
	}
}

func TestRenderSection(t *testing.T) {
	entry := &doctree.OutlineEntry{Level: 2, Title: "Goals", Source: doctree.SourceEmbedded}
	s := &doctree.Section{Entry: entry, StartPage: 3, EndPage: 4, Body: "Body."}
	c := doctree.Chunk{Text: "Body.", Title: "Goals", Section: s}

	want := "## Goals\n\n- Level: 2\n- Pages: 3-4\n- Source: embedded-outline\n\nBody.\n"
	if got := RenderSection(c, true); got != want {
		t.Errorf("got %q", got)
	}
	if got := RenderSection(c, false); got != "## Goals\n\nBody.\n" {
		t.Errorf("without metadata: %q", got)
	}

	entry.Level = 9
	if got := RenderSection(c, false); !strings.HasPrefix(got, "###### Goals") {
		t.Errorf("level should clamp to 6: %q", got)
	}
}

func TestRenderOutline(t *testing.T) {
	res := sampleResult()
	want := "# Outline\n\n" +
		"- L1 p1 [Introduction](sections/1-introduction.md) (lines: 2, chars: 25)\n" +
		"  - L2 p2 [Goals & Scope](sections/1.1-goals-scope-part-1.md) (lines: 2, chars: 20)\n"
	if got := RenderOutline(res.Outline); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestValidateIndex(t *testing.T) {
	res := sampleResult()
	if _, _, err := EncodeIndexes(res); err != nil {
		t.Fatalf("valid result rejected: %v", err)
	}

	bad := []byte(`[{"id":"x1","level":0,"title":"","page_start":1,"source":"other","line_count":0,"char_count":0,"section_file":"a.txt"}]`)
	err := ValidateIndex(OutlineJSON, bad)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.File != OutlineJSON {
		t.Errorf("file = %q", schemaErr.File)
	}
}

type upperRenderer struct{}

func (upperRenderer) Render(md string) (string, error) { return "<p>" + strings.ToUpper(md) + "</p>", nil }

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "doc")
	sections := filepath.Join(dir, SectionsDir)
	if err := os.MkdirAll(sections, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(sections, "9-old.md")
	keep := filepath.Join(sections, "notes.txt")
	for _, p := range []string{stale, keep} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res := sampleResult()
	if err := Write(context.Background(), dir, res, Options{Preview: upperRenderer{}}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale section document should be removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("non-section files should be kept")
	}

	md, err := os.ReadFile(filepath.Join(sections, "1-introduction.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(md), "# Introduction\n\n- Level: 1\n") {
		t.Errorf("section document = %q", md)
	}
	if _, err := os.Stat(filepath.Join(sections, "1.1-goals-scope-part-2.html")); err != nil {
		t.Errorf("preview missing: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, SegmentsJSON))
	if err != nil {
		t.Fatal(err)
	}
	var segs []doctree.Segment
	if err := json.Unmarshal(raw, &segs); err != nil {
		t.Fatal(err)
	}
	if len(segs) != 3 {
		t.Errorf("segments.json has %d entries", len(segs))
	}
	if _, err := os.Stat(filepath.Join(dir, OutlineMD)); err != nil {
		t.Errorf("outline.md missing: %v", err)
	}
}

func TestLockedFileError(t *testing.T) {
	inner := errors.New("permission denied")
	err := error(&LockedFileError{Path: "sections/1-a.md", Err: inner})
	if !errors.Is(err, inner) {
		t.Error("LockedFileError should unwrap")
	}
	if !strings.Contains(err.Error(), "sections/1-a.md") {
		t.Errorf("message should name the path: %s", err)
	}
}
