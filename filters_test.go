package keepbook

import (
	"testing"
	"time"
)

// pointAt builds a change point at the given instant with a single price
// trigger naming the instant, so tests can tell points apart.
func pointAt(at time.Time) ChangePoint {
	return ChangePoint{Time: at, Triggers: []ChangeTrigger{PriceTrigger{AssetID: at.Format(time.RFC3339Nano)}}}
}

func TestFilterByDateRange(t *testing.T) {
	points := []ChangePoint{
		pointAt(time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)),
		pointAt(time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)),
		pointAt(time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC)),
		pointAt(time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)),
	}

	testCases := []struct {
		name       string
		start, end string
		wantDates  []string
	}{
		{
			name:      "both bounds inclusive",
			start:     "2025-01-15",
			end:       "2025-02-01",
			wantDates: []string{"2025-01-15", "2025-02-01"},
		},
		{
			name:      "open start",
			end:       "2025-01-31",
			wantDates: []string{"2025-01-01", "2025-01-15"},
		},
		{
			name:      "open end",
			start:     "2025-02-01",
			wantDates: []string{"2025-02-01", "2025-03-01"},
		},
		{
			name:      "fully open",
			wantDates: []string{"2025-01-01", "2025-01-15", "2025-02-01", "2025-03-01"},
		},
		{
			name:      "empty range",
			start:     "2026-01-01",
			end:       "2026-12-31",
			wantDates: []string{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterByDateRange(points, tc.start, tc.end)
			if len(got) != len(tc.wantDates) {
				t.Fatalf("got %d points, want %d", len(got), len(tc.wantDates))
			}
			for i, p := range got {
				if p.Date().String() != tc.wantDates[i] {
					t.Errorf("point %d on %s, want %s", i, p.Date(), tc.wantDates[i])
				}
			}

			// Filtering again by the same range is the identity.
			again := FilterByDateRange(got, tc.start, tc.end)
			if len(again) != len(got) {
				t.Errorf("filter is not idempotent: %d then %d points", len(got), len(again))
			}
		})
	}
}

func TestFilterByGranularityIdentity(t *testing.T) {
	points := []ChangePoint{
		pointAt(time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)),
		pointAt(time.Date(2025, time.January, 1, 11, 0, 0, 0, time.UTC)),
	}
	for _, g := range []Granularity{Full, Custom(0), Custom(-60000)} {
		got := FilterByGranularity(points, g, KeepFirst)
		if len(got) != len(points) {
			t.Errorf("%v: got %d points, want pass-through %d", g, len(got), len(points))
		}
	}
}

func TestFilterByGranularityStrategies(t *testing.T) {
	day1a := pointAt(time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC))
	day1b := pointAt(time.Date(2025, time.January, 1, 17, 0, 0, 0, time.UTC))
	day2 := pointAt(time.Date(2025, time.January, 2, 12, 0, 0, 0, time.UTC))
	points := []ChangePoint{day1a, day1b, day2}

	first := FilterByGranularity(points, Daily, KeepFirst)
	if len(first) != 2 || !first[0].Time.Equal(day1a.Time) || !first[1].Time.Equal(day2.Time) {
		t.Errorf("KeepFirst: got %v", first)
	}

	last := FilterByGranularity(points, Daily, KeepLast)
	if len(last) != 2 || !last[0].Time.Equal(day1b.Time) || !last[1].Time.Equal(day2.Time) {
		t.Errorf("KeepLast: got %v", last)
	}
}

func TestFilterByGranularityBuckets(t *testing.T) {
	// Two instants in the same month but different weeks, plus one in
	// another year.
	points := []ChangePoint{
		pointAt(time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)),
		pointAt(time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)),
		pointAt(time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC)),
	}

	testCases := []struct {
		granularity Granularity
		wantLen     int
	}{
		{Hourly, 3},
		{Daily, 3},
		{Weekly, 3},
		{Monthly, 2},
		{Yearly, 2},
		{Custom(30 * 24 * 60 * 60 * 1000), 3},
		{Custom(365 * 24 * 60 * 60 * 1000), 2},
	}
	for _, tc := range testCases {
		got := FilterByGranularity(points, tc.granularity, KeepLast)
		if len(got) > len(points) {
			t.Errorf("%v: output grew from %d to %d", tc.granularity, len(points), len(got))
		}
		if len(got) != tc.wantLen {
			t.Errorf("%v: got %d points, want %d", tc.granularity, len(got), tc.wantLen)
		}

		// Every bucket key maps to exactly one retained point.
		seen := make(map[int64]int)
		for _, p := range got {
			seen[tc.granularity.bucketKey(p.Time)]++
		}
		for key, n := range seen {
			if n != 1 {
				t.Errorf("%v: bucket %d retained %d points", tc.granularity, key, n)
			}
		}
	}
}

func TestFilterByGranularityPreservesInsertionOrder(t *testing.T) {
	// KeepLast overwrites in place: the slot keeps the position where the
	// bucket was first seen, not a value-sorted position.
	day1a := pointAt(time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC))
	day2 := pointAt(time.Date(2025, time.January, 2, 8, 0, 0, 0, time.UTC))
	day1b := pointAt(time.Date(2025, time.January, 2, 0, 0, 0, 1000, time.UTC)) // still bucket of day2

	got := FilterByGranularity([]ChangePoint{day1a, day2, day1b}, Daily, KeepLast)
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if !got[0].Time.Equal(day1a.Time) {
		t.Errorf("slot 0 = %v, want first bucket's slot", got[0].Time)
	}
	if !got[1].Time.Equal(day1b.Time) {
		t.Errorf("slot 1 = %v, want the overwritten representative", got[1].Time)
	}
}

func TestFloorDiv(t *testing.T) {
	testCases := []struct {
		a, b, want int64
	}{
		{10, 3, 3},
		{-1, 3, -1},
		{-3, 3, -1},
		{-4, 3, -2},
		{0, 3, 0},
	}
	for _, tc := range testCases {
		if got := floorDiv(tc.a, tc.b); got != tc.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
