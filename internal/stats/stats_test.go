package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/stats"
	"pagepulse/internal/testsupport"
	"pagepulse/internal/timerange"
	"pagepulse/internal/visits"
)

const chromeOnWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func visit(domain, url, session string) *visits.Visit {
	return &visits.Visit{
		URL:       url,
		Referrer:  "https://ref.example.com/",
		UserAgent: chromeOnWindows,
		IP:        "203.0.113.10",
		Country:   "DE",
		Domain:    domain,
		SessionID: session,
	}
}

func TestGetDashboardStats(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	at := now.Add(-2 * time.Hour)

	// Session A browses /x three times, session B bounces on /y.
	for i := 0; i < 3; i++ {
		testsupport.RecordVisitAt(t, db, visit("example.com", "https://example.com/x", "session-a"), at)
	}
	testsupport.RecordVisitAt(t, db, visit("example.com", "https://example.com/y", "session-b"), at)

	result, err := stats.GetDashboardStats(db, logger, stats.Params{
		Range: timerange.Range24h,
		Now:   now,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4), result.Summary.PV)
	assert.Equal(t, int64(2), result.Summary.UV)
	assert.Equal(t, 50, result.Summary.BounceRate)
	assert.Equal(t, int64(4), result.Summary.TodayPV)
	assert.Equal(t, int64(2), result.Summary.TodayUV)

	require.Len(t, result.TopPages, 2)
	assert.Equal(t, stats.KeyCount{Key: "https://example.com/x", Count: 3}, result.TopPages[0])
	assert.Equal(t, stats.KeyCount{Key: "https://example.com/y", Count: 1}, result.TopPages[1])

	require.Len(t, result.TopCountries, 1)
	assert.Equal(t, stats.KeyCount{Key: "DE", Count: 4}, result.TopCountries[0])

	require.Len(t, result.TopOS, 1)
	assert.Equal(t, stats.KeyCount{Key: "Windows", Count: 4}, result.TopOS[0])
	require.Len(t, result.TopBrowsers, 1)
	assert.Equal(t, stats.KeyCount{Key: "Chrome", Count: 4}, result.TopBrowsers[0])

	require.Len(t, result.ChartData, 1)
	assert.Equal(t, "2024-05-10 10:00", result.ChartData[0].Bucket)
	assert.Equal(t, int64(4), result.ChartData[0].PV)
	assert.Equal(t, int64(2), result.ChartData[0].UV)

	assert.Equal(t, []string{"example.com"}, result.Domains)
}

func TestGetDashboardStatsDomainFilter(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	at := now.Add(-time.Hour)

	testsupport.RecordVisitAt(t, db, visit("one.example.com", "https://one.example.com/", "s-1"), at)
	testsupport.RecordVisitAt(t, db, visit("two.example.com", "https://two.example.com/", "s-2"), at)
	testsupport.RecordVisitAt(t, db, visit("two.example.com", "https://two.example.com/about", "s-2"), at)

	result, err := stats.GetDashboardStats(db, logger, stats.Params{
		Range:  timerange.Range24h,
		Domain: "two.example.com",
		Now:    now,
	})
	require.NoError(t, err)

	// Every statistic respects the filter, not just the summary.
	assert.Equal(t, int64(2), result.Summary.PV)
	assert.Equal(t, int64(1), result.Summary.UV)
	assert.Equal(t, 0, result.Summary.BounceRate)
	require.Len(t, result.TopPages, 2)
	assert.Equal(t, "https://two.example.com/", result.TopPages[0].Key)
	require.Len(t, result.ChartData, 1)
	assert.Equal(t, int64(2), result.ChartData[0].PV)

	// The domain selector stays global.
	assert.Equal(t, []string{"one.example.com", "two.example.com"}, result.Domains)
}

func TestGetDashboardStatsEmptyStore(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	result, err := stats.GetDashboardStats(db, logger, stats.Params{Range: timerange.Range7d})
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Summary.PV)
	assert.Equal(t, int64(0), result.Summary.UV)
	assert.Equal(t, 0, result.Summary.BounceRate)
	assert.Empty(t, result.TopPages)
	assert.Empty(t, result.TopReferrers)
	assert.Empty(t, result.TopCountries)
	assert.Empty(t, result.TopOS)
	assert.Empty(t, result.TopBrowsers)
	assert.Empty(t, result.ChartData)
	assert.Empty(t, result.Domains)
}

func TestGetDashboardStatsTodayBoundary(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	// 01:00 UTC on Jan 1 is already Jan 1 morning in UTC+8; local
	// midnight is Dec 31 16:00 UTC.
	now := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)

	testsupport.RecordVisitAt(t, db, visit("example.com", "https://example.com/", "s-before"),
		time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC))
	testsupport.RecordVisitAt(t, db, visit("example.com", "https://example.com/", "s-after"),
		time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC))

	result, err := stats.GetDashboardStats(db, logger, stats.Params{
		Range:    timerange.Range24h,
		TzOffset: 8,
		Now:      now,
	})
	require.NoError(t, err)

	// Both fall inside the 24h window, only one after local midnight.
	assert.Equal(t, int64(2), result.Summary.PV)
	assert.Equal(t, int64(1), result.Summary.TodayPV)
	assert.Equal(t, int64(1), result.Summary.TodayUV)
}

func TestGetDomainsLookback(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	testsupport.RecordVisitAt(t, db, visit("fresh.example.com", "https://fresh.example.com/", "s-1"),
		now.AddDate(0, 0, -30))
	testsupport.RecordVisitAt(t, db, visit("stale.example.com", "https://stale.example.com/", "s-2"),
		now.AddDate(0, 0, -400))
	testsupport.RecordVisitAt(t, db, visit("another.example.com", "https://another.example.com/", "s-3"),
		now.AddDate(0, 0, -1))

	domains, err := stats.GetDomains(db, now, 365)
	require.NoError(t, err)
	assert.Equal(t, []string{"another.example.com", "fresh.example.com"}, domains)
}
