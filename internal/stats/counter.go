package stats

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pagepulse/internal/pkg/async"
	"pagepulse/internal/timerange"
)

// CounterParams selects what GetPublicCounts reads.
type CounterParams struct {
	Domain   string
	URL      string
	TzOffset int

	// Now overrides the clock; zero means time.Now. Exposed for tests.
	Now time.Time
}

// GetPublicCounts returns page- and site-level view counters for public
// embedding. Four independent counts run concurrently; no top-N lists,
// no classification — a narrow, cheap read path.
func GetPublicCounts(db *gorm.DB, params CounterParams) (*PublicCounts, error) {
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	todayStart := timerange.FormatSQLite(timerange.StartOfLocalDay(now, params.TzOffset))

	tasks := []async.Task{
		{
			Name: "page",
			Execute: func() (interface{}, error) {
				return fetchCounts(db, scopedQuery{
					query: "SELECT COUNT(*) AS pv, COUNT(DISTINCT session_id) AS uv FROM visits WHERE domain = ? AND url = ?",
					args:  []interface{}{params.Domain, params.URL},
				})
			},
		},
		{
			Name: "site",
			Execute: func() (interface{}, error) {
				return fetchCounts(db, scopedQuery{
					query: "SELECT COUNT(*) AS pv, COUNT(DISTINCT session_id) AS uv FROM visits WHERE domain = ?",
					args:  []interface{}{params.Domain},
				})
			},
		},
		{
			Name: "pageToday",
			Execute: func() (interface{}, error) {
				return fetchCounts(db, scopedQuery{
					query: "SELECT COUNT(*) AS pv, COUNT(DISTINCT session_id) AS uv FROM visits WHERE domain = ? AND url = ? AND timestamp >= ?",
					args:  []interface{}{params.Domain, params.URL, todayStart},
				})
			},
		},
		{
			Name: "siteToday",
			Execute: func() (interface{}, error) {
				return fetchCounts(db, scopedQuery{
					query: "SELECT COUNT(*) AS pv, COUNT(DISTINCT session_id) AS uv FROM visits WHERE domain = ? AND timestamp >= ?",
					args:  []interface{}{params.Domain, todayStart},
				})
			},
		},
	}

	pool := async.NewPool(len(tasks))
	results := pool.Execute(context.Background(), tasks)

	for name, result := range results {
		if result.Err != nil {
			return nil, fmt.Errorf("error fetching %s counts: %w", name, result.Err)
		}
	}

	page := results["page"].Data.(countRow)
	site := results["site"].Data.(countRow)
	pageToday := results["pageToday"].Data.(countRow)
	siteToday := results["siteToday"].Data.(countRow)

	return &PublicCounts{
		Page: Counts{PV: page.PV, UV: page.UV, TodayPV: pageToday.PV, TodayUV: pageToday.UV},
		Site: Counts{PV: site.PV, UV: site.UV, TodayPV: siteToday.PV, TodayUV: siteToday.UV},
	}, nil
}
