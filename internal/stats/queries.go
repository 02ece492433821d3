package stats

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"pagepulse/internal/timerange"
)

// topListLimit caps every ranked list; deviceSampleLimit bounds the raw
// user-agent rows fed into classification.
const (
	topListLimit       = 10
	deviceSampleLimit  = 100
	domainLookbackDays = 365
)

// scopedQuery is a base statement plus its positional parameters. The
// optional domain predicate is appended here, in one place, so every
// statistic respects the same filter consistently.
type scopedQuery struct {
	query string
	args  []interface{}
}

func newScopedQuery(base string, domain string, args ...interface{}) scopedQuery {
	if domain != "" {
		base += " AND domain = ?"
		args = append(args, domain)
	}
	return scopedQuery{query: base, args: args}
}

type countRow struct {
	PV int64 `gorm:"column:pv"`
	UV int64 `gorm:"column:uv"`
}

type deviceRow struct {
	UserAgent string `gorm:"column:user_agent"`
	Count     int64  `gorm:"column:count"`
}

// fetchCounts runs a pv/uv counting query; an empty result set scans as
// zeros, which is exactly the defined-empty behavior.
func fetchCounts(db *gorm.DB, sq scopedQuery) (countRow, error) {
	var row countRow
	if err := db.Raw(sq.query, sq.args...).Scan(&row).Error; err != nil {
		return countRow{}, fmt.Errorf("error fetching visit counts: %w", err)
	}
	return row, nil
}

// fetchTopList runs a grouped top-N query over one column. Ties are
// broken by first insertion (MIN(id)) so rankings are deterministic.
func fetchTopList(db *gorm.DB, column string, sq scopedQuery) ([]KeyCount, error) {
	query := fmt.Sprintf(
		"%s GROUP BY %s ORDER BY count DESC, MIN(id) ASC LIMIT %d",
		sq.query, column, topListLimit,
	)

	results := []KeyCount{}
	if err := db.Raw(query, sq.args...).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching top %s: %w", column, err)
	}
	return results, nil
}

// fetchChart groups visits into strftime buckets, ascending, including
// only buckets that received at least one event.
func fetchChart(db *gorm.DB, bucketFormat, offsetModifier, since, domain string) ([]ChartPoint, error) {
	sq := newScopedQuery(
		`SELECT strftime(?, timestamp, ?) AS bucket, COUNT(*) AS pv, COUNT(DISTINCT session_id) AS uv
		 FROM visits WHERE timestamp > ?`,
		domain,
		bucketFormat, offsetModifier, since,
	)

	results := []ChartPoint{}
	err := db.Raw(sq.query+" GROUP BY bucket ORDER BY bucket", sq.args...).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching chart series: %w", err)
	}
	return results, nil
}

// fetchSingleEventSessions counts sessions with exactly one event in
// range, the numerator of the bounce rate.
func fetchSingleEventSessions(db *gorm.DB, since, domain string) (int64, error) {
	sq := newScopedQuery(
		"SELECT session_id FROM visits WHERE timestamp > ?",
		domain,
		since,
	)
	query := fmt.Sprintf(
		"SELECT COUNT(*) AS n FROM (%s GROUP BY session_id HAVING COUNT(*) = 1)",
		sq.query,
	)

	var row struct {
		N int64 `gorm:"column:n"`
	}
	if err := db.Raw(query, sq.args...).Scan(&row).Error; err != nil {
		return 0, fmt.Errorf("error fetching single-event sessions: %w", err)
	}
	return row.N, nil
}

// fetchDeviceSample returns raw (user_agent, count) pairs for
// classification.
func fetchDeviceSample(db *gorm.DB, since, domain string) ([]deviceRow, error) {
	sq := newScopedQuery(
		"SELECT user_agent, COUNT(*) AS count FROM visits WHERE timestamp > ?",
		domain,
		since,
	)
	query := fmt.Sprintf(
		"%s GROUP BY user_agent ORDER BY count DESC LIMIT %d",
		sq.query, deviceSampleLimit,
	)

	results := []deviceRow{}
	if err := db.Raw(query, sq.args...).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching user agent sample: %w", err)
	}
	return results, nil
}

// GetDomains lists the distinct domains seen in the last days days,
// alphabetically sorted. It feeds the dashboard's filter selector and
// deliberately ignores the requested range.
func GetDomains(db *gorm.DB, now time.Time, days int) ([]string, error) {
	since := timerange.FormatSQLite(now.UTC().AddDate(0, 0, -days))

	var rows []struct {
		Domain string `gorm:"column:domain"`
	}
	err := db.Raw(
		"SELECT DISTINCT domain FROM visits WHERE timestamp > ? ORDER BY domain",
		since,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching domains: %w", err)
	}

	domains := make([]string, len(rows))
	for i, r := range rows {
		domains[i] = r.Domain
	}
	return domains, nil
}
