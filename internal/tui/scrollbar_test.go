package tui

import (
	"strings"
	"testing"
)

func thumbRows(bar string) []int {
	var rows []int
	for i, line := range strings.Split(bar, "\n") {
		if strings.Contains(line, scrollbarThumb) {
			rows = append(rows, i)
		}
	}
	return rows
}

func TestRenderScrollbar_AtTop(t *testing.T) {
	bar := renderScrollbar(10, 100, 0)

	lines := strings.Split(bar, "\n")
	if len(lines) != 10 {
		t.Fatalf("Expected 10 lines, got %d", len(lines))
	}

	rows := thumbRows(bar)
	if len(rows) == 0 || rows[0] != 0 {
		t.Errorf("Expected thumb at the top, got rows %v", rows)
	}
}

func TestRenderScrollbar_AtBottom(t *testing.T) {
	bar := renderScrollbar(10, 100, 90)

	rows := thumbRows(bar)
	if len(rows) == 0 || rows[len(rows)-1] != 9 {
		t.Errorf("Expected thumb at the bottom, got rows %v", rows)
	}
}

func TestRenderScrollbar_Middle(t *testing.T) {
	bar := renderScrollbar(10, 100, 45)

	rows := thumbRows(bar)
	if len(rows) == 0 || rows[0] < 2 || rows[0] > 7 {
		t.Errorf("Expected thumb in the middle, got rows %v", rows)
	}
}

func TestRenderScrollbar_NoScroll(t *testing.T) {
	bar := renderScrollbar(10, 5, 0)

	if rows := thumbRows(bar); len(rows) != 0 {
		t.Errorf("Expected track only when content fits, got thumb rows %v", rows)
	}
	for i, line := range strings.Split(bar, "\n") {
		if !strings.Contains(line, scrollbarTrack) {
			t.Errorf("Line %d missing track: %q", i, line)
		}
	}
}

func TestRenderScrollbar_ThumbSize(t *testing.T) {
	tests := []struct {
		name       string
		height     int
		totalLines int
		want       int
	}{
		{"half visible", 10, 20, 5},
		{"tiny share", 10, 10000, 1},
		{"just over", 10, 11, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := thumbRows(renderScrollbar(tt.height, tt.totalLines, 0))
			if len(rows) != tt.want {
				t.Errorf("thumb size = %d, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestRenderScrollbar_ZeroHeight(t *testing.T) {
	if bar := renderScrollbar(0, 100, 0); bar != "" {
		t.Errorf("Expected empty scrollbar, got %q", bar)
	}
}
