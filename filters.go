package keepbook

// FilterByDateRange keeps the points whose UTC calendar date falls within
// [start, end], both bounds inclusive and optional ("" means unbounded).
// Bounds are ISO-8601 date strings; those compare correctly lexically, so
// no parsing is needed. Filtering an already-filtered sequence by the same
// range returns the same sequence.
func FilterByDateRange(points []ChangePoint, start, end string) []ChangePoint {
	kept := make([]ChangePoint, 0, len(points))
	for _, p := range points {
		day := p.Date().String()
		if start != "" && day < start {
			continue
		}
		if end != "" && day > end {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// FilterByGranularity reduces a time-sorted change-point sequence to the
// target cadence, retaining one point per bucket according to the coalesce
// strategy: KeepFirst keeps the earliest point of each bucket, KeepLast
// overwrites with every later point scanned. The input must already be
// sorted by instant; this step does not re-sort. Output order is the
// bucket-insertion order of the input. Full granularity and non-positive
// custom intervals are pass-through identities.
func FilterByGranularity(points []ChangePoint, g Granularity, strategy CoalesceStrategy) []ChangePoint {
	if g.isIdentity() {
		return points
	}

	kept := make([]ChangePoint, 0, len(points))
	slot := make(map[int64]int) // bucket key -> index in kept
	for _, p := range points {
		key := g.bucketKey(p.Time)
		i, seen := slot[key]
		if !seen {
			slot[key] = len(kept)
			kept = append(kept, p)
			continue
		}
		if strategy == KeepLast {
			kept[i] = p
		}
	}
	return kept
}
