package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// unsetEnv clears keys for the duration of the test and restores them afterwards
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if original, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, original) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

var allKeys = []string{
	"BOT_TOKEN", "BOT_OWNER_ID", "DATA_DIR",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"NEWS_API_TOKEN", "NEWS_BASE_URL", "NEWS_LANGUAGE", "NEWS_CATEGORIES",
	"NEWS_PAGE_SIZE", "NEWS_LOOKBACK", "NEWS_CACHE_TTL",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_DIAL_TIMEOUT", "REDIS_TIMEOUT",
	"METRICS_ADDR", "WATCHLIST_RESYNC_INTERVAL",
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("DB_PASSWORD", "test_db_password")
	t.Setenv("NEWS_API_TOKEN", "test_news_token")
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestConfig_Paths(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/finboard"}

	assert.Equal(t, "/var/lib/finboard/credentials.json", cfg.CredentialsPath())
	assert.Equal(t, "/var/lib/finboard/session.json", cfg.SessionPath())
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]string
		missing string
	}{
		{
			name:    "missing BOT_TOKEN",
			set:     map[string]string{"DB_PASSWORD": "p", "NEWS_API_TOKEN": "n"},
			missing: "BOT_TOKEN",
		},
		{
			name:    "missing DB_PASSWORD",
			set:     map[string]string{"BOT_TOKEN": "t", "NEWS_API_TOKEN": "n"},
			missing: "DB_PASSWORD",
		},
		{
			name:    "missing NEWS_API_TOKEN",
			set:     map[string]string{"BOT_TOKEN": "t", "DB_PASSWORD": "p"},
			missing: "NEWS_API_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, allKeys...)
			for k, v := range tt.set {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.missing+" is required")
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	unsetEnv(t, allKeys...)
	setRequired(t)

	cfg, err := Load()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, int64(0), cfg.BotOwnerID)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "finboard", cfg.Database.Name)
	assert.Equal(t, "finboard", cfg.Database.User)
	assert.Equal(t, "https://api.thenewsapi.com/v1/news/all", cfg.News.BaseURL)
	assert.Equal(t, "en", cfg.News.Language)
	assert.Equal(t, []string{"business", "general"}, cfg.News.Categories)
	assert.Equal(t, 3, cfg.News.PageSize)
	assert.Equal(t, 7*24*time.Hour, cfg.News.Lookback)
	assert.Equal(t, 10*time.Minute, cfg.News.CacheTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Hour, cfg.WatchlistResyncInterval)
}

func TestLoad_Overrides(t *testing.T) {
	unsetEnv(t, allKeys...)
	setRequired(t)
	t.Setenv("BOT_OWNER_ID", "4242")
	t.Setenv("NEWS_CATEGORIES", "tech")
	t.Setenv("NEWS_PAGE_SIZE", "10")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, int64(4242), cfg.BotOwnerID)
	assert.Equal(t, []string{"tech"}, cfg.News.Categories)
	assert.Equal(t, 10, cfg.News.PageSize)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_InvalidPageSize(t *testing.T) {
	unsetEnv(t, allKeys...)
	setRequired(t)
	t.Setenv("NEWS_PAGE_SIZE", "0")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "NEWS_PAGE_SIZE")
}
