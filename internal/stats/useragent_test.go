package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOS(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "Windows"},
		{"mac desktop", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", "macOS"},
		{"iphone reports mac", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "iOS"},
		{"ipad reports mac", "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)", "iOS"},
		{"android reports linux", "Mozilla/5.0 (Linux; Android 14; Pixel 8)", "Android"},
		{"bare linux", "Mozilla/5.0 (X11; Linux x86_64)", "Linux"},
		{"empty", "", "Other"},
		{"case insensitive", "mozilla/5.0 (WINDOWS nt 10.0)", "Windows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyOS(tt.ua))
		})
	}
}

func TestClassifyBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"edge advertises chrome and safari", "Mozilla/5.0 AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0", "Edge"},
		{"chrome advertises safari", "Mozilla/5.0 AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "Chrome"},
		{"firefox", "Mozilla/5.0 (Windows NT 10.0; rv:120.0) Gecko/20100101 Firefox/120.0", "Firefox"},
		{"plain safari", "Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", "Safari"},
		{"opera advertises chrome and safari", "Mozilla/5.0 AppleWebKit/537.36 Chrome/120.0 Safari/537.36 OPR/106.0", "Opera"},
		{"unknown", "curl/8.4.0", "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBrowser(tt.ua))
		})
	}
}

func TestRankTotals(t *testing.T) {
	totals := map[string]int64{
		"Chrome":  5,
		"Firefox": 5,
		"Safari":  9,
		"Edge":    1,
	}

	ranked := rankTotals(totals, 3)

	assert.Equal(t, []KeyCount{
		{Key: "Safari", Count: 9},
		{Key: "Chrome", Count: 5},
		{Key: "Firefox", Count: 5},
	}, ranked)
}
