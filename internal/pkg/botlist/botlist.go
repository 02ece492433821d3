// Package botlist detects automated clients from the User-Agent header
// using an embedded pattern database.
package botlist

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bots.yml
var botsFile []byte

type database struct {
	Patterns []string `yaml:"patterns"`
}

var (
	patterns []string
	once     sync.Once
)

func load() {
	var db database
	if err := yaml.Unmarshal(botsFile, &db); err != nil {
		// The file is embedded at build time; a parse failure here is a
		// packaging bug, not a runtime condition.
		panic("botlist: invalid embedded bots.yml: " + err.Error())
	}
	patterns = make([]string, len(db.Patterns))
	for i, p := range db.Patterns {
		patterns[i] = strings.ToLower(p)
	}
}

// IsBot reports whether the user agent matches a known bot, crawler or
// scripted-client marker.
func IsBot(userAgent string) bool {
	once.Do(load)

	ua := strings.ToLower(userAgent)
	for _, p := range patterns {
		if strings.Contains(ua, p) {
			return true
		}
	}
	return false
}
