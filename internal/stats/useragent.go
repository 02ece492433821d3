package stats

import (
	"sort"
	"strings"
)

// User-agent classification works on ordered first-match-wins substring
// chains; order matters because the markers overlap (Chromium-family
// browsers all advertise "Safari", Edge and Opera both advertise
// "Chrome"). Matching is case-insensitive, like the original tracker
// ecosystem expects.

// ClassifyOS maps a raw user-agent string onto a coarse OS family.
func ClassifyOS(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "win"):
		return "Windows"
	case strings.Contains(s, "mac"):
		if strings.Contains(s, "iphone") || strings.Contains(s, "ipad") || strings.Contains(s, "ipod") {
			return "iOS"
		}
		return "macOS"
	case strings.Contains(s, "android"):
		return "Android"
	case strings.Contains(s, "linux"):
		return "Linux"
	default:
		return "Other"
	}
}

// ClassifyBrowser maps a raw user-agent string onto a browser family.
// Edge must be tested before Chrome and Safari after Chrome.
func ClassifyBrowser(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "edg"):
		return "Edge"
	case strings.Contains(s, "chrome") && !strings.Contains(s, "opr"):
		return "Chrome"
	case strings.Contains(s, "firefox"):
		return "Firefox"
	case strings.Contains(s, "safari") && !strings.Contains(s, "chrome"):
		return "Safari"
	case strings.Contains(s, "opr"):
		return "Opera"
	default:
		return "Other"
	}
}

// classifyDevices folds raw (user_agent, count) rows into per-OS and
// per-browser totals, each ranked descending and truncated.
func classifyDevices(rows []deviceRow) (topOS, topBrowsers []KeyCount) {
	osTotals := make(map[string]int64)
	browserTotals := make(map[string]int64)

	for _, row := range rows {
		osTotals[ClassifyOS(row.UserAgent)] += row.Count
		browserTotals[ClassifyBrowser(row.UserAgent)] += row.Count
	}

	return rankTotals(osTotals, topListLimit), rankTotals(browserTotals, topListLimit)
}

// rankTotals sorts category totals descending by count, ties broken
// lexically by key for reproducible output.
func rankTotals(totals map[string]int64, limit int) []KeyCount {
	ranked := make([]KeyCount, 0, len(totals))
	for key, count := range totals {
		ranked = append(ranked, KeyCount{Key: key, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
