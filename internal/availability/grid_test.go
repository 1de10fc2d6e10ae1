package availability

import (
	"testing"
	"time"
)

func TestGridNormalDay(t *testing.T) {
	loc := edmonton(t)
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)

	grid := Grid(start, 1, 30, loc)
	if len(grid) != 48 {
		t.Fatalf("expected 48 candidates, got %d", len(grid))
	}
	if MinuteOfDay(grid[0], loc) != 0 {
		t.Errorf("first candidate at minute %d, want 0", MinuteOfDay(grid[0], loc))
	}
	if MinuteOfDay(grid[47], loc) != 23*60+30 {
		t.Errorf("last candidate at minute %d, want %d", MinuteOfDay(grid[47], loc), 23*60+30)
	}
}

func TestGridSpringForwardDay(t *testing.T) {
	loc := edmonton(t)
	// 2025-03-09: 02:00 jumps to 03:00; the day has 23 hours.
	start := time.Date(2025, 3, 9, 0, 0, 0, 0, loc)

	grid := Grid(start, 1, 30, loc)
	if len(grid) != 46 {
		t.Fatalf("expected 46 candidates on spring-forward day, got %d", len(grid))
	}
	for _, c := range grid {
		if got := DayKey(c, loc); got != "2025-03-09" {
			t.Fatalf("candidate %v bucketed to %s", c, got)
		}
	}
}

func TestGridFallBackDay(t *testing.T) {
	loc := edmonton(t)
	// 2025-11-02: 02:00 falls back to 01:00; the day has 25 hours.
	start := time.Date(2025, 11, 2, 0, 0, 0, 0, loc)

	grid := Grid(start, 1, 30, loc)
	if len(grid) != 50 {
		t.Fatalf("expected 50 candidates on fall-back day, got %d", len(grid))
	}
	for _, c := range grid {
		if got := DayKey(c, loc); got != "2025-11-02" {
			t.Fatalf("candidate %v bucketed to %s", c, got)
		}
	}
}

func TestGridMultipleDays(t *testing.T) {
	loc := edmonton(t)
	start := time.Date(2025, 6, 2, 14, 30, 0, 0, loc) // mid-day anchor still starts at local midnight

	grid := Grid(start, 3, 30, loc)
	if len(grid) != 3*48 {
		t.Fatalf("expected %d candidates, got %d", 3*48, len(grid))
	}
	if got := DayKey(grid[0], loc); got != "2025-06-02" {
		t.Errorf("first day key = %s, want 2025-06-02", got)
	}
	if got := DayKey(grid[len(grid)-1], loc); got != "2025-06-04" {
		t.Errorf("last day key = %s, want 2025-06-04", got)
	}
}
