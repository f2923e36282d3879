package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func TestBuildLines_SuperscriptStaysOnLine(t *testing.T) {
	glyphs := []glyph{
		{text: "Parents", font: "F1", size: 11, x: 72, w: 35, base: 100},
		{text: "1", font: "F1", size: 7, x: 107.5, w: 3.5, base: 96},
		{text: "play", font: "F1", size: 11, x: 113, w: 20, base: 100},
		{text: "Sidebar", font: "F1", size: 11, x: 300, w: 40, base: 100},
	}
	lines := buildLines(glyphs, 3)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (column split), got %d", len(lines))
	}
	if got := lines[0].Text(); got != "Parents 1 play" {
		t.Errorf("line 0 text = %q", got)
	}
	if got := lines[0].FontSize(); got != 11 {
		t.Errorf("line 0 size = %v, want 11", got)
	}
	if lines[0].Page != 3 {
		t.Errorf("line page = %d, want 3", lines[0].Page)
	}
	if got := lines[1].Text(); got != "Sidebar" {
		t.Errorf("line 1 text = %q", got)
	}
}

func TestBuildLines_InsertsWordSpaces(t *testing.T) {
	glyphs := []glyph{
		{text: "a", font: "F1", size: 10, x: 10, w: 5, base: 50},
		{text: "b", font: "F1", size: 10, x: 15, w: 5, base: 50},
		{text: "c", font: "F1", size: 10, x: 25, w: 5, base: 50},
	}
	lines := buildLines(glyphs, 1)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if got := lines[0].Text(); got != "ab c" {
		t.Errorf("text = %q, want %q", got, "ab c")
	}
}

func TestDetectTables_RuledGrid(t *testing.T) {
	var rects []doctree.Rect
	rects = append(rects, doctree.Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}) // background
	for _, y := range []float64{100, 120, 140} {
		rects = append(rects, doctree.Rect{X0: 50, Y0: y, X1: 250, Y1: y + 0.5})
	}
	for _, x := range []float64{50, 150, 250} {
		rects = append(rects, doctree.Rect{X0: x, Y0: 100, X1: x + 0.5, Y1: 140})
	}
	glyphs := []glyph{
		{text: "Name", font: "F1", size: 10, x: 55, w: 20, base: 115},
		{text: "Age", font: "F1", size: 10, x: 160, w: 15, base: 115},
		{text: "Ann", font: "F1", size: 10, x: 55, w: 15, base: 135},
		{text: "42", font: "F1", size: 10, x: 160, w: 10, base: 135},
	}

	tables := detectTables(rects, glyphs, 612, 792)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	want := [][]string{{"Name", "Age"}, {"Ann", "42"}}
	got := tables[0].Rows
	if len(got) != len(want) {
		t.Fatalf("rows = %v", got)
	}
	for i := range want {
		if strings.Join(got[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
	wantBox := doctree.Rect{X0: 50, Y0: 100, X1: 250, Y1: 140}
	if tables[0].BBox != wantBox {
		t.Errorf("bbox = %+v", tables[0].BBox)
	}
}

func TestDetectTables_TooFewRects(t *testing.T) {
	rects := []doctree.Rect{{X0: 10, Y0: 10, X1: 100, Y1: 10.5}}
	if got := detectTables(rects, nil, 612, 792); got != nil {
		t.Errorf("expected no tables, got %v", got)
	}
}

func TestReadLayout_NumbersPagesAndLines(t *testing.T) {
	src := `{"pages": [
		{"width": 612, "height": 792, "lines": [
			{"bbox": {"x0": 72, "y0": 70, "x1": 300, "y1": 84}, "spans": [{"text": "Introduction", "size": 18}]}
		]},
		{"width": 612, "height": 792, "lines": []}
	], "outline": [{"level": 1, "title": "Introduction", "page": 1}]}`

	doc, err := ReadLayout(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	if doc.NumPages() != 2 {
		t.Fatalf("pages = %d, want 2", doc.NumPages())
	}
	p, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page(1): %v", err)
	}
	if p.Number != 1 || p.Lines[0].Page != 1 {
		t.Errorf("page/line numbering not filled: %+v", p)
	}
	if _, err := doc.Page(3); err == nil {
		t.Error("expected out-of-range error")
	}
	toc, _ := doc.Outline()
	if len(toc) != 1 || toc[0].Title != "Introduction" {
		t.Errorf("outline = %+v", toc)
	}
}

func TestParseBBoxLayout(t *testing.T) {
	src := `<!DOCTYPE html><html><head><title></title></head><body>
<doc>
  <page width="612.000000" height="792.000000">
    <flow><block xMin="72" yMin="70" xMax="300" yMax="90">
      <line xMin="72.0" yMin="70.0" xMax="200.0" yMax="88.0">
        <word xMin="72.0" yMin="70.0" xMax="150.0" yMax="88.0">Getting</word>
        <word xMin="155.0" yMin="70.0" xMax="200.0" yMax="88.0">Started</word>
      </line>
    </block></flow>
  </page>
  <page width="612.000000" height="792.000000"></page>
</doc></body></html>`

	doc, err := parseBBoxLayout(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parseBBoxLayout: %v", err)
	}
	if doc.NumPages() != 2 {
		t.Fatalf("pages = %d, want 2", doc.NumPages())
	}
	p, _ := doc.Page(1)
	if p.Width != 612 || len(p.Lines) != 1 {
		t.Fatalf("page 1 = %+v", p)
	}
	l := p.Lines[0]
	if l.Text() != "Getting Started" {
		t.Errorf("text = %q", l.Text())
	}
	if l.FontSize() != 18 {
		t.Errorf("size = %v, want 18", l.FontSize())
	}
	if l.BBox.X1 != 200 {
		t.Errorf("bbox = %+v", l.BBox)
	}
}

func TestOpen_UnsupportedExtension(t *testing.T) {
	_, err := Open("notes.docx", Options{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if IsSupportedExtension("a.txt") || !IsSupportedExtension("A.PDF") {
		t.Error("IsSupportedExtension mismatch")
	}
}

func TestFromBytes_Layout(t *testing.T) {
	doc, err := FromBytes("dump.json", []byte(`{"pages": [{"lines": []}]}`), Options{})
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer doc.Close()
	if doc.NumPages() != 1 {
		t.Errorf("pages = %d", doc.NumPages())
	}
}

// fakeValue mimics the dictionary/array/number shape of a PDF object.
type fakeValue struct {
	dict map[string]*fakeValue
	arr  []*fakeValue
	num  float64
}

func (v *fakeValue) IsNull() bool { return v == nil }

func (v *fakeValue) Key(key string) *fakeValue {
	if v == nil {
		return nil
	}
	return v.dict[key]
}

func (v *fakeValue) Len() int {
	if v == nil {
		return 0
	}
	return len(v.arr)
}

func (v *fakeValue) Index(i int) *fakeValue {
	if v == nil || i < 0 || i >= len(v.arr) {
		return nil
	}
	return v.arr[i]
}

func (v *fakeValue) Float64() float64 {
	if v == nil {
		return 0
	}
	return v.num
}

func rectValue(vals ...float64) *fakeValue {
	b := &fakeValue{}
	for _, n := range vals {
		b.arr = append(b.arr, &fakeValue{num: n})
	}
	return b
}

func TestMediaBox_InheritedFromPageTree(t *testing.T) {
	root := &fakeValue{dict: map[string]*fakeValue{"MediaBox": rectValue(0, 0, 595, 842)}}
	pages := &fakeValue{dict: map[string]*fakeValue{"Parent": root}}
	page := &fakeValue{dict: map[string]*fakeValue{"Parent": pages}}

	llx, lly, urx, ury := boxCoords(inheritedKey(page, "MediaBox"))
	if llx != 0 || lly != 0 || urx != 595 || ury != 842 {
		t.Errorf("box = %v %v %v %v, want A4 from the root", llx, lly, urx, ury)
	}

	page.dict["MediaBox"] = rectValue(612, 792, 10, 20)
	llx, lly, urx, ury = boxCoords(inheritedKey(page, "MediaBox"))
	if llx != 10 || lly != 20 || urx != 612 || ury != 792 {
		t.Errorf("own box = %v %v %v %v, want normalized corners", llx, lly, urx, ury)
	}
}

func TestMediaBox_DefaultsToLetter(t *testing.T) {
	page := &fakeValue{dict: map[string]*fakeValue{}}
	if _, _, urx, ury := boxCoords(inheritedKey(page, "MediaBox")); urx != 612 || ury != 792 {
		t.Errorf("default box = %v x %v", urx, ury)
	}
	page.dict["MediaBox"] = rectValue(0, 0, 100)
	if _, _, urx, ury := boxCoords(inheritedKey(page, "MediaBox")); urx != 612 || ury != 792 {
		t.Errorf("short box = %v x %v", urx, ury)
	}

	// A Parent cycle must terminate.
	loop := &fakeValue{dict: map[string]*fakeValue{}}
	loop.dict["Parent"] = loop
	if got := inheritedKey(loop, "MediaBox"); got != nil {
		t.Errorf("cycle returned %v", got)
	}
}
