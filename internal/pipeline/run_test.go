package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

func line(y float64, text string, size float64) doctree.Line {
	return doctree.Line{
		BBox:  doctree.Rect{X0: 72, Y0: y, X1: 400, Y1: y + size},
		Spans: []doctree.Span{{Text: text, FontSize: size}},
	}
}

func page(n int, lines ...doctree.Line) *doctree.Page {
	for i := range lines {
		lines[i].Page = n
	}
	return &doctree.Page{Number: n, Width: 612, Height: 792, Lines: lines}
}

func sampleDoc() *parser.MemDocument {
	return &parser.MemDocument{
		Pages: []*doctree.Page{
			page(1,
				line(72, "Introduction", 18),
				line(120, "Parents 1 play a vital role in learning.", 11),
				line(160, "1 Parents includes guardians.", 9),
			),
			page(2,
				line(72, "Methods", 18),
				line(120, "Study text here.", 11),
			),
		},
		TOC: []doctree.TOCItem{
			{Level: 1, Title: "Introduction", Page: 1},
			{Level: 2, Title: "Methods", Page: 2},
		},
	}
}

func TestRun_EmbeddedOutline(t *testing.T) {
	job := &Job{ID: "run-1"}
	stats := NewStageStats(time.Hour)
	res, err := Run(context.Background(), sampleDoc(), "/tmp/report.pdf",
		Options{MaxSectionChars: 8000, IncludeMetadata: true, RepairWorkers: 2}, job, stats, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Stem != "report" || res.PageCount != 2 {
		t.Errorf("stem=%q pages=%d", res.Stem, res.PageCount)
	}
	if res.Provenance() != doctree.SourceEmbedded {
		t.Errorf("provenance = %q", res.Provenance())
	}
	if len(res.Outline) != 2 || len(res.Segments) != 2 || len(res.Documents) != 2 {
		t.Fatalf("outline=%d segments=%d docs=%d", len(res.Outline), len(res.Segments), len(res.Documents))
	}

	intro := res.Documents[0]
	if intro.File != "sections/1-introduction.md" {
		t.Errorf("file = %q", intro.File)
	}
	if !strings.Contains(intro.Markdown, "Parents <sup>1</sup> play") {
		t.Errorf("footnote marker not normalized:\n%s", intro.Markdown)
	}
	if !strings.Contains(intro.Markdown, "- Pages: 1-2") {
		t.Errorf("metadata missing:\n%s", intro.Markdown)
	}
	if res.Documents[1].File != "sections/1.1-methods.md" {
		t.Errorf("file = %q", res.Documents[1].File)
	}
	if !strings.Contains(res.Documents[1].Markdown, "Study text here.") {
		t.Errorf("methods body:\n%s", res.Documents[1].Markdown)
	}

	if len(res.Tree.Children) != 1 || len(res.Tree.Children[0].Children) != 1 {
		t.Errorf("tree should nest Methods under Introduction: %+v", res.Tree.Children)
	}

	snap := job.Snapshot()
	if snap.Progress.SectionsTotal != 2 || snap.Progress.SectionsDone != 2 {
		t.Errorf("progress = %+v", snap.Progress)
	}
	if _, ok := stats.Snapshot()["repair"]; !ok {
		t.Error("expected repair stage timing")
	}
}

func TestRun_EmptyDocumentFallsBack(t *testing.T) {
	doc := &parser.MemDocument{Pages: []*doctree.Page{page(1)}}
	res, err := Run(context.Background(), doc, "blank.json", Options{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Provenance() != doctree.SourceFallback || len(res.Outline) != 1 {
		t.Fatalf("outline = %+v", res.Outline)
	}
	if !strings.Contains(res.Documents[0].Markdown, doctree.Placeholder) {
		t.Errorf("expected placeholder body:\n%s", res.Documents[0].Markdown)
	}
}

func TestRun_HeadingAtPageTopDoesNotOverlap(t *testing.T) {
	doc := &parser.MemDocument{
		Pages: []*doctree.Page{
			page(1,
				line(72, "First Heading", 18),
				line(120, "alpha body text one.", 11),
				line(140, "alpha body text two.", 11),
				line(160, "alpha body text three.", 11),
			),
			page(2,
				line(0, "Second Heading", 18),
				line(40, "beta body text one.", 11),
				line(60, "beta body text two.", 11),
				line(80, "beta body text three.", 11),
			),
		},
	}
	res, err := Run(context.Background(), doc, "top.json", Options{MaxSectionChars: 8000}, nil, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Provenance() != doctree.SourceHeuristic || len(res.Documents) != 2 {
		t.Fatalf("source=%q docs=%d", res.Provenance(), len(res.Documents))
	}
	first, second := res.Documents[0].Markdown, res.Documents[1].Markdown
	if strings.Contains(first, "beta") || strings.Contains(first, "Second Heading") {
		t.Errorf("first section leaked the next page:\n%s", first)
	}
	if !strings.Contains(first, "alpha body text three.") {
		t.Errorf("first section body:\n%s", first)
	}
	if !strings.Contains(second, "beta body text one.") {
		t.Errorf("second section body:\n%s", second)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, sampleDoc(), "report.pdf", Options{}, nil, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtract_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "handbook.json")
	raw, err := json.Marshal(sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(input, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	outRoot := filepath.Join(dir, "out")
	res, outDir, err := Extract(context.Background(), input, ExtractOptions{
		Options: Options{MaxSectionChars: 8000, IncludeMetadata: false, RepairWorkers: 1},
		OutRoot: outRoot,
	}, nil, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if outDir != filepath.Join(outRoot, "handbook") {
		t.Errorf("out dir = %q", outDir)
	}
	for _, name := range []string{"outline.json", "segments.json", "outline.md", "sections/1-introduction.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	md, err := os.ReadFile(filepath.Join(outDir, "sections", "1.1-methods.md"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(md), "- Level:") {
		t.Error("metadata lines should be omitted")
	}
	if len(res.Segments) != 2 {
		t.Errorf("segments = %d", len(res.Segments))
	}
}

func TestStem(t *testing.T) {
	if got := Stem("/a/b/My Report.v2.pdf"); got != "My Report.v2" {
		t.Errorf("Stem = %q", got)
	}
}
