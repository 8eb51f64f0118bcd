package repository

import (
	"testing"
	"time"
)

func TestDateKey(t *testing.T) {
	// 23:30 PHT is 15:30 UTC, still the same calendar day.
	ts := time.Date(2026, 3, 7, 23, 30, 0, 0, time.FixedZone("PHT", 8*3600))
	if got := DateKey(ts); got != "2026-03-07" {
		t.Errorf("DateKey = %q, want 2026-03-07", got)
	}

	late := time.Date(2026, 3, 7, 2, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	// 02:00 PHT is 18:00 UTC the previous day.
	if got := DateKey(late); got != "2026-03-06" {
		t.Errorf("DateKey = %q, want 2026-03-06", got)
	}

	// Same calendar day collapses to one key regardless of clock time.
	a := time.Date(2026, 3, 7, 8, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 7, 20, 45, 0, 0, time.UTC)
	if DateKey(a) != DateKey(b) {
		t.Errorf("same-day keys differ: %q vs %q", DateKey(a), DateKey(b))
	}
}

func TestMissingBackfillDates(t *testing.T) {
	today := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	missing := MissingBackfillDates(nil, today, 3)
	if len(missing) != 3 {
		t.Fatalf("expected 3 missing days, got %d", len(missing))
	}
	want := []string{"2026-08-29", "2026-08-30", "2026-08-31"}
	for i, d := range missing {
		if DateKey(d) != want[i] {
			t.Errorf("missing[%d] = %s, want %s", i, DateKey(d), want[i])
		}
	}
}

func TestMissingBackfillDatesSkipsExisting(t *testing.T) {
	today := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	existing := map[string]bool{
		"2026-08-30": true,
	}

	missing := MissingBackfillDates(existing, today, 3)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing days, got %d", len(missing))
	}
	for _, d := range missing {
		if existing[DateKey(d)] {
			t.Errorf("existing day %s reported as missing", DateKey(d))
		}
	}
	// Today itself is never backfilled.
	for _, d := range missing {
		if DateKey(d) == DateKey(today) {
			t.Error("today should not be a backfill target")
		}
	}
}

func TestMissingBackfillDatesAllExisting(t *testing.T) {
	today := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	existing := map[string]bool{
		"2026-08-30": true,
		"2026-08-31": true,
	}
	if missing := MissingBackfillDates(existing, today, 2); len(missing) != 0 {
		t.Errorf("expected nothing to backfill, got %d days", len(missing))
	}
}

func TestSyntheticPrice(t *testing.T) {
	const current = 100.0
	for i := 0; i < 200; i++ {
		p := SyntheticPrice(current)
		if p < 95 || p > 105 {
			t.Fatalf("synthetic price %v outside ±5%% of %v", p, current)
		}
	}
}
