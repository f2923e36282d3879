package outline

import (
	"errors"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

type tocStub struct {
	items []doctree.TOCItem
	err   error
}

func (s tocStub) Outline() ([]doctree.TOCItem, error) { return s.items, s.err }

func line(y, size float64, text string) doctree.Line {
	return doctree.Line{
		BBox:  doctree.Rect{X0: 72, Y0: y, X1: 400, Y1: y + size},
		Spans: []doctree.Span{{Text: text, FontSize: size}},
	}
}

func TestHeuristic_SingleHeadingRoundTrip(t *testing.T) {
	pages := []*doctree.Page{{
		Number: 1,
		Lines: []doctree.Line{
			line(72, 18, "Heading One"),
			line(100, 10, "body text body text."),
		},
	}}
	got := Heuristic(pages)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(got), got)
	}
	if got[0].Title != "Heading One" || got[0].Level != 1 || got[0].Source != doctree.SourceHeuristic {
		t.Errorf("unexpected candidate %+v", got[0])
	}
	if got[0].Y0 == nil || *got[0].Y0 != 72 {
		t.Errorf("expected y0 72, got %v", got[0].Y0)
	}
}

func TestHeuristic_FiltersAndDedup(t *testing.T) {
	pages := []*doctree.Page{
		{Number: 1, Lines: []doctree.Line{
			line(50, 16, "Overview"),
			line(80, 16, "• Bullet item"),
			line(110, 16, "This is a long sentence that clearly reads like body text."),
			line(140, 10, "body"),
			line(160, 10, "more body text"),
			line(180, 10, "even more"),
		}},
		{Number: 2, Lines: []doctree.Line{
			line(50, 16, "OVERVIEW"),
			line(90, 14, "Details"),
		}},
	}
	for i := range 7 {
		pages[1].Lines = append(pages[1].Lines, line(120+float64(i)*15, 10, "text"))
	}
	got := Heuristic(pages)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", got)
	}
	if got[0].Title != "Overview" || got[0].Page != 1 || got[0].Level != 1 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Title != "Details" || got[1].Page != 2 || got[1].Level != 2 {
		t.Errorf("second = %+v", got[1])
	}
}

func TestHeuristic_MergesWrappedHeading(t *testing.T) {
	pages := []*doctree.Page{{
		Number: 1,
		Lines: []doctree.Line{
			line(60, 16, "Supporting Students in"),
			line(80, 16, "the Classroom"),
			line(120, 10, "Body copy line one."),
			line(135, 10, "Body copy line two."),
			line(150, 10, "Body copy line three."),
		},
	}}
	got := Heuristic(pages)
	if len(got) != 1 {
		t.Fatalf("expected 1 merged candidate, got %+v", got)
	}
	if got[0].Title != "Supporting Students in the Classroom" {
		t.Errorf("title = %q", got[0].Title)
	}
}

func TestLooksWrapped_StopsAtSentenceEnd(t *testing.T) {
	a := lineInfo{page: 1, text: "Goals:", size: 14, y0: 10}
	b := lineInfo{page: 1, text: "and outcomes", size: 14, y0: 30}
	if looksWrapped(a, b) {
		t.Error("heading ending in ':' must not absorb the next line")
	}
	c := lineInfo{page: 2, text: "Goals and", size: 14, y0: 30}
	if looksWrapped(lineInfo{page: 1, text: "Goals and", size: 14}, c) {
		t.Error("lines on different pages must not merge")
	}
}

func TestBuild_PrefersEmbeddedOutline(t *testing.T) {
	src := tocStub{items: []doctree.TOCItem{
		{Level: 0, Title: "  Intro  ", Page: 0},
		{Level: 2, Title: "", Page: 3},
		{Level: 2, Title: "Scope", Page: 2},
	}}
	got := Build(src, nil, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", got)
	}
	if got[0].Title != "Intro" || got[0].Level != 1 || got[0].Page != 1 || got[0].Y0 != nil {
		t.Errorf("first = %+v", got[0])
	}
	if got[0].Source != doctree.SourceEmbedded {
		t.Errorf("source = %q", got[0].Source)
	}
}

func TestBuild_FallsBackToSyntheticEntry(t *testing.T) {
	got := Build(tocStub{err: errors.New("broken")}, []*doctree.Page{{Number: 1}}, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Title != FallbackTitle || got[0].Page != 1 || got[0].Source != doctree.SourceFallback {
		t.Errorf("unexpected fallback %+v", got[0])
	}
}

func TestPercentile(t *testing.T) {
	vals := []float64{12, 10, 10, 18, 10}
	if got := Percentile(vals, 0.75); got != 12 {
		t.Errorf("p75 = %v, want 12", got)
	}
	if got := Percentile(vals, 0.5); got != 10 {
		t.Errorf("p50 = %v, want 10", got)
	}
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("empty = %v", got)
	}
}

func TestFinalize_IDsAndCodes(t *testing.T) {
	var cands []doctree.HeadingCandidate
	for _, l := range []int{1, 2, 2, 1, 2} {
		cands = append(cands, doctree.HeadingCandidate{Level: l, Title: "x", Page: 1})
	}
	entries := Finalize(cands)
	want := []string{"1", "1.1", "1.2", "2", "2.1"}
	for i, e := range entries {
		if e.Code != want[i] {
			t.Errorf("entry %d code = %q, want %q", i, e.Code, want[i])
		}
	}
	if entries[4].ID != "h5" {
		t.Errorf("id = %q", entries[4].ID)
	}
}
