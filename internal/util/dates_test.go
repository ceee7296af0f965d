package util

import (
	"testing"
	"time"
)

func TestCalculateActualDate(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
		want  string
	}{
		{2026, time.January, 15, "2026-01-15"},
		{2026, time.February, 31, "2026-02-28"},
		{2028, time.February, 30, "2028-02-29"}, // leap year
		{2026, time.April, 31, "2026-04-30"},
	}

	for _, tt := range tests {
		got := CalculateActualDate(tt.year, tt.month, tt.day).Format("2006-01-02")
		if got != tt.want {
			t.Errorf("CalculateActualDate(%d, %s, %d) = %s, want %s", tt.year, tt.month, tt.day, got, tt.want)
		}
	}
}

func TestAddMonthsClamped(t *testing.T) {
	jan31 := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		n     int
		want  string
	}{
		{"one month clamps to february", jan31, 1, "2026-02-28"},
		{"two months keeps the 31st", jan31, 2, "2026-03-31"},
		{"crosses year boundary", time.Date(2026, time.November, 15, 0, 0, 0, 0, time.UTC), 3, "2027-02-15"},
		{"twelve months", jan31, 12, "2027-01-31"},
		{"zero months", jan31, 0, "2026-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonthsClamped(tt.start, tt.n).Format("2006-01-02")
			if got != tt.want {
				t.Errorf("AddMonthsClamped(%s, %d) = %s, want %s", tt.start.Format("2006-01-02"), tt.n, got, tt.want)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"later today rounds up", now.Add(2 * time.Hour), 1},
		{"exactly now", now, 0},
		{"three days", now.Add(72 * time.Hour), 3},
		{"part of a day past three", now.Add(73 * time.Hour), 4},
		{"yesterday", now.Add(-24 * time.Hour), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(tt.due, now); got != tt.want {
				t.Errorf("DaysUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-05-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2026 || d.Month() != time.May || d.Day() != 1 {
		t.Errorf("unexpected date %s", d)
	}

	d, err = ParseDate("2026-05-01T10:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Hour() != 10 {
		t.Errorf("expected hour 10, got %d", d.Hour())
	}

	if _, err := ParseDate("05/01/2026"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}
