package pdf

import (
	"strings"
	"testing"
)

func countBoxes(html string) int {
	return strings.Count(html, "box-sizing: border-box")
}

func countRows(html string) int {
	return strings.Count(html, "flex-direction: row")
}

func TestRenderGrid_EmptyValueKeepsShape(t *testing.T) {
	html := RenderGrid("", 20, 0, 0)

	if rows := countRows(html); rows != 1 {
		t.Fatalf("empty value rendered %d rows, want 1", rows)
	}
	if boxes := countBoxes(html); boxes != 20 {
		t.Fatalf("empty value rendered %d boxes, want 20", boxes)
	}
}

func TestRenderGrid_PadsLastRow(t *testing.T) {
	// 25 characters over 20 boxes per line: two rows, 40 boxes
	value := strings.Repeat("A", 25)
	html := RenderGrid(value, 20, 0, 0)

	if rows := countRows(html); rows != 2 {
		t.Fatalf("rendered %d rows, want 2", rows)
	}
	if boxes := countBoxes(html); boxes != 40 {
		t.Fatalf("rendered %d boxes, want 40", boxes)
	}
	if got := strings.Count(html, ">A</div>"); got != 25 {
		t.Fatalf("rendered %d filled cells, want 25", got)
	}
}

func TestRenderGrid_NeverTruncates(t *testing.T) {
	value := strings.Repeat("B", 61)
	html := RenderGrid(value, 20, 0, 0)

	if got := strings.Count(html, ">B</div>"); got != 61 {
		t.Fatalf("rendered %d filled cells, want 61", got)
	}
	if rows := countRows(html); rows != 4 {
		t.Fatalf("rendered %d rows, want 4", rows)
	}
}

func TestRenderGrid_RuneSafe(t *testing.T) {
	// multi-byte characters occupy one cell each
	html := RenderGrid("अशा", 20, 0, 0)

	if rows := countRows(html); rows != 1 {
		t.Fatalf("rendered %d rows, want 1", rows)
	}
	for _, ch := range []string{">अ</div>", ">श", ">ा</div>"} {
		if !strings.Contains(html, ch) {
			t.Errorf("output missing cell %q", ch)
		}
	}
}

func TestRenderGrid_EscapesHTML(t *testing.T) {
	html := RenderGrid(`<&>"'`, 10, 0, 0)

	for _, esc := range []string{"&lt;", "&amp;", "&gt;", "&#34;", "&#39;"} {
		if !strings.Contains(html, esc) {
			t.Errorf("output missing escape %q", esc)
		}
	}
	if strings.Contains(html, ">< ") || strings.Contains(html, "><</div>") {
		t.Error("raw markup characters leaked into cells")
	}
}

func TestRenderGrid_CustomBoxSize(t *testing.T) {
	html := RenderGrid("X", 5, 14, 18)
	if !strings.Contains(html, "width: 14px") || !strings.Contains(html, "height: 18px") {
		t.Error("custom box size was not applied")
	}
}

func TestRenderGridLines_FixedLineCount(t *testing.T) {
	// 30 characters over 28 boxes per line, 3 lines: second line holds
	// the spill, third stays empty but still renders
	value := strings.Repeat("C", 30)
	html := RenderGridLines(value, 28, 3, 0, 0)

	if rows := countRows(html); rows != 3 {
		t.Fatalf("rendered %d rows, want 3", rows)
	}
	if boxes := countBoxes(html); boxes != 84 {
		t.Fatalf("rendered %d boxes, want 84", boxes)
	}
	if got := strings.Count(html, ">C</div>"); got != 30 {
		t.Fatalf("rendered %d filled cells, want 30", got)
	}
}

func TestRenderGridLines_InvalidArgs(t *testing.T) {
	if RenderGridLines("x", 0, 2, 0, 0) != "" {
		t.Error("zero boxes per line should render nothing")
	}
	if RenderGridLines("x", 10, 0, 0, 0) != "" {
		t.Error("zero line count should render nothing")
	}
	if RenderGrid("x", 0, 0, 0) != "" {
		t.Error("zero boxes per line should render nothing")
	}
}
