package domain

import "testing"

func TestLevelBoundaries(t *testing.T) {
	cases := []struct {
		count int
		level int
	}{
		{0, 1},
		{5, 1},
		{6, 2},
		{12, 2},
		{13, 3},
		{20, 3},
		{21, 4},
		{30, 4},
		{31, 5},
		{45, 5},
		{46, 6},
		{60, 6},
		{61, 7},
		{80, 7},
		{81, 8},
		{100, 8},
		{101, 9},
		{125, 9},
		{126, 10},
		{1000, 10},
	}
	for _, tc := range cases {
		if got := LevelForCount(tc.count); got != tc.level {
			t.Errorf("LevelForCount(%d) = %d, want %d", tc.count, got, tc.level)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := LevelForCount(0)
	for n := 1; n <= 300; n++ {
		level := LevelForCount(n)
		if level < prev {
			t.Fatalf("level decreased at count %d: %d < %d", n, level, prev)
		}
		if level < 1 || level > MaxLevel {
			t.Fatalf("level out of range at count %d: %d", n, level)
		}
		prev = level
	}
}

func TestLevelClampsNegative(t *testing.T) {
	if got := LevelForCount(-3); got != 1 {
		t.Fatalf("expected negative count to clamp to level 1, got %d", got)
	}
}
