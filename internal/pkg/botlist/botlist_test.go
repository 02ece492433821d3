package botlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBot(t *testing.T) {
	assert.True(t, IsBot("Googlebot/2.1 (+http://www.google.com/bot.html)"))
	assert.True(t, IsBot("Mozilla/5.0 (compatible; bingbot/2.0)"))
	assert.True(t, IsBot("curl/8.4.0"))
	assert.True(t, IsBot("python-requests/2.31.0"))
	assert.True(t, IsBot("Mozilla/5.0 HeadlessChrome/120.0"))
	assert.True(t, IsBot("facebookexternalhit/1.1"))

	assert.False(t, IsBot("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0 Safari/537.36"))
	assert.False(t, IsBot("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1"))
	assert.False(t, IsBot(""))
}
