package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"pagepulse/internal/pkg/async"
	"pagepulse/internal/timerange"
)

// GetDashboardStats computes the full dashboard aggregate for one
// (range, domain filter, tz offset) tuple. The sub-queries have no
// ordering dependency and run concurrently; the result is assembled
// once all of them resolve.
func GetDashboardStats(db *gorm.DB, logger *slog.Logger, params Params) (*DashboardStats, error) {
	now := params.now()
	since := timerange.FormatSQLite(params.Range.Since(now))
	todayStart := timerange.FormatSQLite(timerange.StartOfLocalDay(now, params.TzOffset))
	offsetModifier := timerange.OffsetModifier(params.TzOffset)

	logger.Debug("Aggregating dashboard stats",
		slog.String("range", string(params.Range)),
		slog.String("domain", params.Domain),
		slog.Int("tz_offset", params.TzOffset),
		slog.String("since", since))

	tasks := []async.Task{
		{
			Name: "summary",
			Execute: func() (interface{}, error) {
				return fetchCounts(db, newScopedQuery(
					"SELECT COUNT(*) AS pv, COUNT(DISTINCT session_id) AS uv FROM visits WHERE timestamp > ?",
					params.Domain, since))
			},
		},
		{
			Name: "today",
			Execute: func() (interface{}, error) {
				return fetchCounts(db, newScopedQuery(
					"SELECT COUNT(*) AS pv, COUNT(DISTINCT session_id) AS uv FROM visits WHERE timestamp >= ?",
					params.Domain, todayStart))
			},
		},
		{
			Name: "topPages",
			Execute: func() (interface{}, error) {
				return fetchTopList(db, "url", newScopedQuery(
					"SELECT url AS key, COUNT(*) AS count FROM visits WHERE timestamp > ?",
					params.Domain, since))
			},
		},
		{
			Name: "topReferrers",
			Execute: func() (interface{}, error) {
				return fetchTopList(db, "referrer", newScopedQuery(
					"SELECT referrer AS key, COUNT(*) AS count FROM visits WHERE timestamp > ?",
					params.Domain, since))
			},
		},
		{
			Name: "topCountries",
			Execute: func() (interface{}, error) {
				return fetchTopList(db, "country", newScopedQuery(
					"SELECT country AS key, COUNT(*) AS count FROM visits WHERE timestamp > ?",
					params.Domain, since))
			},
		},
		{
			Name: "chart",
			Execute: func() (interface{}, error) {
				return fetchChart(db, params.Range.BucketFormat(), offsetModifier, since, params.Domain)
			},
		},
		{
			Name: "bounce",
			Execute: func() (interface{}, error) {
				return fetchSingleEventSessions(db, since, params.Domain)
			},
		},
		{
			Name: "devices",
			Execute: func() (interface{}, error) {
				return fetchDeviceSample(db, since, params.Domain)
			},
		},
		{
			Name: "domains",
			Execute: func() (interface{}, error) {
				return GetDomains(db, now, domainLookbackDays)
			},
		},
	}

	pool := async.NewPool(len(tasks))
	results := pool.Execute(context.Background(), tasks)

	for name, result := range results {
		if result.Err != nil {
			return nil, fmt.Errorf("error fetching %s: %w", name, result.Err)
		}
	}

	summary := results["summary"].Data.(countRow)
	today := results["today"].Data.(countRow)
	singleSessions := results["bounce"].Data.(int64)
	topOS, topBrowsers := classifyDevices(results["devices"].Data.([]deviceRow))

	return &DashboardStats{
		Summary: Summary{
			PV:         summary.PV,
			UV:         summary.UV,
			BounceRate: bounceRate(singleSessions, summary.UV),
			TodayPV:    today.PV,
			TodayUV:    today.UV,
		},
		TopPages:     results["topPages"].Data.([]KeyCount),
		TopReferrers: results["topReferrers"].Data.([]KeyCount),
		TopCountries: results["topCountries"].Data.([]KeyCount),
		TopOS:        topOS,
		TopBrowsers:  topBrowsers,
		ChartData:    results["chart"].Data.([]ChartPoint),
		Domains:      results["domains"].Data.([]string),
	}, nil
}

// bounceRate is the share of in-range sessions with exactly one event,
// rounded to whole percent. The denominator is floored at 1 so an empty
// range yields 0, not a division error.
func bounceRate(singleSessions, sessions int64) int {
	if sessions < 1 {
		sessions = 1
	}
	return int(math.Round(float64(singleSessions) / float64(sessions) * 100))
}
