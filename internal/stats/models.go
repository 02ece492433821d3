// Package stats is the aggregation engine: it turns the flat visits log
// into time-windowed, timezone-aware dashboard statistics.
package stats

import (
	"time"

	"pagepulse/internal/timerange"
)

// Params selects what GetDashboardStats aggregates.
type Params struct {
	Range    timerange.Range
	Domain   string // optional equality filter applied to every sub-query
	TzOffset int    // caller-local offset in whole hours, signed

	// Now overrides the clock; zero means time.Now. Exposed for tests.
	Now time.Time
}

func (p Params) now() time.Time {
	if p.Now.IsZero() {
		return time.Now().UTC()
	}
	return p.Now.UTC()
}

// KeyCount is one ranked entry of a top-N list.
type KeyCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// ChartPoint is one non-empty time bucket of the chart series.
type ChartPoint struct {
	Bucket string `json:"time" gorm:"column:bucket"`
	PV     int64  `json:"pv" gorm:"column:pv"`
	UV     int64  `json:"uv" gorm:"column:uv"`
}

// Summary holds the headline counters. Missing results resolve to zero,
// never null.
type Summary struct {
	PV         int64 `json:"pv"`
	UV         int64 `json:"uv"`
	BounceRate int   `json:"bounceRate"`
	TodayPV    int64 `json:"todayPv"`
	TodayUV    int64 `json:"todayUv"`
}

// DashboardStats is the composed, derived result of one aggregation run.
// It is never persisted.
type DashboardStats struct {
	Summary      Summary      `json:"summary"`
	TopPages     []KeyCount   `json:"topPages"`
	TopReferrers []KeyCount   `json:"topReferrers"`
	TopCountries []KeyCount   `json:"topCountries"`
	TopOS        []KeyCount   `json:"topOS"`
	TopBrowsers  []KeyCount   `json:"topBrowsers"`
	ChartData    []ChartPoint `json:"chartData"`
	Domains      []string     `json:"domains"`
}

// Counts is the reduced read shape of the public counter.
type Counts struct {
	PV      int64 `json:"pv"`
	UV      int64 `json:"uv"`
	TodayPV int64 `json:"todayPv"`
	TodayUV int64 `json:"todayUv"`
}

// PublicCounts pairs page- and site-level counters for one URL.
type PublicCounts struct {
	Page Counts `json:"page"`
	Site Counts `json:"site"`
}
