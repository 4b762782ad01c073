package time

import (
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	in := time.Date(2025, 3, 1, 23, 30, 0, 0, berlin)
	got := DateOf(in)
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if got != want {
		t.Fatalf("DateOf = %v, want %v", got, want)
	}
	if !DateOf(time.Time{}).IsZero() {
		t.Fatalf("zero in should stay zero")
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)
	if got := Today(now, nil); got != time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("Today(UTC) = %v", got)
	}
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}
	if got := Today(now, tokyo); got != time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("Today(Tokyo) = %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
	cases := []struct {
		b    time.Time
		want int
	}{
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), 7},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), -1},
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 59},
	}
	for _, c := range cases {
		if got := DaysBetween(a, c.b); got != c.want {
			t.Fatalf("DaysBetween(%v,%v) = %d, want %d", a, c.b, got, c.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-10-14")
	if err != nil || got != time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("ParseDate = %v, %v", got, err)
	}
	if _, err := ParseDate("14/10/2025"); err == nil {
		t.Fatalf("expected error on bad layout")
	}
}
