// Package timerange maps the dashboard's range selector onto query
// boundaries and chart bucket granularities.
//
// All stored timestamps are UTC text in SQLite's default layout, so
// boundaries are passed to queries as formatted strings and timezone
// adjustment is done with strftime offset modifiers rather than
// timezone-aware date functions.
package timerange

import (
	"fmt"
	"time"
)

// Range is one of the fixed dashboard time ranges.
type Range string

const (
	Range24h Range = "24h"
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range3m  Range = "3m"
	Range6m  Range = "6m"
	Range1y  Range = "1y"
	RangeAll Range = "all"
)

// SQLiteTimeLayout matches CURRENT_TIMESTAMP's text form.
const SQLiteTimeLayout = "2006-01-02 15:04:05"

// Bucket formats for the chart GROUP BY. Coarser ranges bucket coarser,
// otherwise the chart degrades into a point cloud.
const (
	bucketHourly  = "%Y-%m-%d %H:00"
	bucketDaily   = "%Y-%m-%d"
	bucketMonthly = "%Y-%m"
)

// Parse returns the Range for s, defaulting to 24h for anything
// unrecognized.
func Parse(s string) Range {
	switch Range(s) {
	case Range24h, Range7d, Range30d, Range3m, Range6m, Range1y, RangeAll:
		return Range(s)
	default:
		return Range24h
	}
}

// Since returns the lower-bound instant for the range relative to now.
// The all range reaches back to the epoch.
func (r Range) Since(now time.Time) time.Time {
	now = now.UTC()
	switch r {
	case Range7d:
		return now.AddDate(0, 0, -7)
	case Range30d:
		return now.AddDate(0, 0, -30)
	case Range3m:
		return now.AddDate(0, -3, 0)
	case Range6m:
		return now.AddDate(0, -6, 0)
	case Range1y:
		return now.AddDate(-1, 0, 0)
	case RangeAll:
		return time.Unix(0, 0).UTC()
	default:
		return now.Add(-24 * time.Hour)
	}
}

// BucketFormat returns the strftime format used to group the chart
// series: hourly for 24h, daily for 7d through 6m, monthly beyond.
func (r Range) BucketFormat() string {
	switch r {
	case Range7d, Range30d, Range3m, Range6m:
		return bucketDaily
	case Range1y, RangeAll:
		return bucketMonthly
	default:
		return bucketHourly
	}
}

// OffsetModifier returns the SQLite datetime modifier for a whole-hour
// timezone offset, e.g. "+8 hours" or "-5 hours".
func OffsetModifier(tzOffset int) string {
	if tzOffset >= 0 {
		return fmt.Sprintf("+%d hours", tzOffset)
	}
	return fmt.Sprintf("%d hours", tzOffset)
}

// StartOfLocalDay returns the UTC instant of local midnight for a caller
// at the given whole-hour offset: shift now into local time, floor to
// midnight, shift back. No bounds are enforced on tzOffset; out-of-range
// offsets yield a shifted but well-defined boundary.
func StartOfLocalDay(now time.Time, tzOffset int) time.Time {
	local := now.UTC().Add(time.Duration(tzOffset) * time.Hour)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(-time.Duration(tzOffset) * time.Hour)
}

// FormatSQLite renders t as a UTC timestamp string comparable against
// the store's defaulted timestamps.
func FormatSQLite(t time.Time) string {
	return t.UTC().Format(SQLiteTimeLayout)
}
