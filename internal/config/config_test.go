package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFallbacks(t *testing.T) {
	t.Setenv("FEED_LIMIT_BELL", "not-a-number")
	t.Setenv("LAYOUT_SESSION_TTL", "-5m")
	t.Setenv("MENTION_FILTER_SURFACES", " dashboard , bell ,")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, 20, cfg.FeedLimitBell)
	assert.Equal(t, 30*time.Minute, cfg.LayoutSessionTTL)
	assert.Equal(t, []string{"dashboard", "bell"}, cfg.MentionFilterSurfaces)
	assert.True(t, cfg.EnforcesMentionFilter("bell"))
	assert.False(t, cfg.EnforcesMentionFilter("tasks"))
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("KV_DRIVER", "redis")
	t.Setenv("FEED_LIMIT_PAGE", "50")
	t.Setenv("STRIPE_PRICE_PREMIUM", "price_123")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "redis", cfg.KVDriver)
	assert.Equal(t, 50, cfg.FeedLimitPage)
	assert.Equal(t, "price_123", cfg.StripePrices["premium"])
}
