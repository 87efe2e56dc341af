package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 25, cfg.Media.MaxUploadMB)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/gif", "image/webp"}, cfg.Media.AllowedMIMEs)
	assert.Equal(t, 500*time.Millisecond, cfg.Listing.SearchDebounce)
	assert.Equal(t, 10, cfg.Listing.DefaultLimit)
	assert.Equal(t, 30*time.Minute, cfg.Drafts.TTL)
	assert.Equal(t, MediaBackendLocal, cfg.Media.Backend)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("UPSTREAM_BASE_URL", "https://alumni.example.com/api/")
	v.Set("LISTING_SEARCH_DEBOUNCE", "250ms")
	v.Set("MEDIA_MAX_UPLOAD_MB", 0)
	v.Set("SESSION_CACHE_TTL", "not-a-duration")

	cfg := fromViper(v)

	assert.Equal(t, "https://alumni.example.com/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Listing.SearchDebounce)
	assert.Equal(t, 25, cfg.Media.MaxUploadMB)
	assert.Equal(t, 5*time.Minute, cfg.Session.CacheTTL)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
