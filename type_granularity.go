package keepbook

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the target sampling cadence applied to a change-point
// series. The zero value is Full (no resampling).
type Granularity struct {
	unit granularityUnit
	ms   int64 // bucket length in milliseconds, Custom only
}

type granularityUnit int

const (
	unitFull granularityUnit = iota
	unitHourly
	unitDaily
	unitWeekly
	unitMonthly
	unitYearly
	unitCustom
)

const (
	hourMs = int64(time.Hour / time.Millisecond)
	dayMs  = 24 * hourMs
	weekMs = 7 * dayMs
)

var (
	Full    = Granularity{unit: unitFull}
	Hourly  = Granularity{unit: unitHourly}
	Daily   = Granularity{unit: unitDaily}
	Weekly  = Granularity{unit: unitWeekly}
	Monthly = Granularity{unit: unitMonthly}
	Yearly  = Granularity{unit: unitYearly}
)

// Custom returns a granularity bucketing points into intervals of the
// given length in milliseconds. A non-positive interval behaves like Full.
func Custom(intervalMs int64) Granularity {
	return Granularity{unit: unitCustom, ms: intervalMs}
}

func (g Granularity) String() string {
	switch g.unit {
	case unitFull:
		return "full"
	case unitHourly:
		return "hourly"
	case unitDaily:
		return "daily"
	case unitWeekly:
		return "weekly"
	case unitMonthly:
		return "monthly"
	case unitYearly:
		return "yearly"
	case unitCustom:
		return fmt.Sprintf("custom(%dms)", g.ms)
	default:
		panic(fmt.Sprintf("unknown granularity %d", g.unit))
	}
}

// ParseGranularity parses a granularity name as used on the command line.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "full", "all":
		return Full, nil
	case "hourly", "hour":
		return Hourly, nil
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "yearly", "year":
		return Yearly, nil
	default:
		return Full, fmt.Errorf("unknown granularity %q", s)
	}
}

// isIdentity reports whether filtering by g is a pass-through.
func (g Granularity) isIdentity() bool {
	return g.unit == unitFull || (g.unit == unitCustom && g.ms <= 0)
}

// bucketKey derives the bucket identity of an instant under g.
// Keys are only comparable within a single granularity.
func (g Granularity) bucketKey(t time.Time) int64 {
	switch g.unit {
	case unitHourly:
		return floorDiv(t.UnixMilli(), hourMs)
	case unitDaily:
		return floorDiv(t.UnixMilli(), dayMs)
	case unitWeekly:
		return floorDiv(t.UnixMilli(), weekMs)
	case unitMonthly:
		u := t.UTC()
		return int64(u.Year())*100 + int64(u.Month())
	case unitYearly:
		return int64(t.UTC().Year())
	case unitCustom:
		return floorDiv(t.UnixMilli(), g.ms)
	default:
		panic("no bucket key for " + g.String())
	}
}

// floorDiv is integer division rounding toward negative infinity, so that
// pre-epoch instants still bucket consistently.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CoalesceStrategy is the rule for picking the representative point
// within a granularity bucket.
type CoalesceStrategy int

const (
	// KeepFirst retains the earliest point seen in each bucket.
	KeepFirst CoalesceStrategy = iota
	// KeepLast retains the most recent point seen in each bucket.
	KeepLast
)

func (s CoalesceStrategy) String() string {
	switch s {
	case KeepFirst:
		return "first"
	case KeepLast:
		return "last"
	default:
		panic(fmt.Sprintf("unknown coalesce strategy %d", s))
	}
}

// ParseCoalesceStrategy parses a coalesce strategy name.
func ParseCoalesceStrategy(s string) (CoalesceStrategy, error) {
	switch strings.ToLower(s) {
	case "first":
		return KeepFirst, nil
	case "last":
		return KeepLast, nil
	default:
		return KeepFirst, fmt.Errorf("unknown coalesce strategy %q", s)
	}
}
