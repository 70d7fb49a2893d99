package svg_test

import (
	"strings"
	"testing"

	"github.com/cinedesk/cinedesk/internal/svg"
)

func TestBarsRendersOneRectPerLabel(t *testing.T) {
	out, err := svg.Bars("Movies by year", map[string]int{"1999": 2, "2024": 5})
	if err != nil {
		t.Fatalf("bars: %v", err)
	}
	markup := string(out)
	if got := strings.Count(markup, "<rect"); got != 2 {
		t.Fatalf("expected 2 rects, got %d", got)
	}
	if !strings.Contains(markup, "Movies by year") {
		t.Fatal("title missing from markup")
	}
	if !strings.Contains(markup, "1999") || !strings.Contains(markup, "2024") {
		t.Fatal("labels missing from markup")
	}
}

func TestBarsEscapesLabels(t *testing.T) {
	out, err := svg.Bars("t", map[string]int{"<script>": 1})
	if err != nil {
		t.Fatalf("bars: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Fatal("labels must be escaped")
	}
}

func TestBarsEmptyInput(t *testing.T) {
	if _, err := svg.Bars("t", nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestPieRendersSlices(t *testing.T) {
	out, err := svg.Pie("Movies by category", map[string]int{"DRAMA": 3, "COMEDY": 1})
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	markup := string(out)
	if got := strings.Count(markup, "<path"); got != 2 {
		t.Fatalf("expected 2 slices, got %d", got)
	}
}

func TestPieSingleCategoryFullCircle(t *testing.T) {
	out, err := svg.Pie("t", map[string]int{"DRAMA": 4})
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	if !strings.Contains(string(out), "<circle") {
		t.Fatal("a single category should render a full circle")
	}
}

func TestPieAllZeroValues(t *testing.T) {
	if _, err := svg.Pie("t", map[string]int{"DRAMA": 0}); err == nil {
		t.Fatal("expected error when every value is zero")
	}
}
