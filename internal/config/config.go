package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	credentialsFile = "credentials.json"
	sessionFile     = "session.json"
)

// Config holds all application configuration
type Config struct {
	BotToken string `env:"BOT_TOKEN" validate:"required"`
	// BotOwnerID restricts the bot to a single Telegram user; 0 leaves it open.
	BotOwnerID int64  `env:"BOT_OWNER_ID" env-default:"0" validate:"min=0"`
	DataDir    string `env:"DATA_DIR" env-default:"data" validate:"required"`

	Database DatabaseConfig
	News     NewsConfig
	Redis    RedisConfig

	MetricsAddr             string        `env:"METRICS_ADDR"`
	WatchlistResyncInterval time.Duration `env:"WATCHLIST_RESYNC_INTERVAL" env-default:"1h"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	Name     string `env:"DB_NAME" env-default:"finboard"`
	User     string `env:"DB_USER" env-default:"finboard"`
	Password string `env:"DB_PASSWORD" validate:"required"`
}

// NewsConfig holds article API settings
type NewsConfig struct {
	Token      string        `env:"NEWS_API_TOKEN" validate:"required"`
	BaseURL    string        `env:"NEWS_BASE_URL" env-default:"https://api.thenewsapi.com/v1/news/all" validate:"url"`
	Language   string        `env:"NEWS_LANGUAGE" env-default:"en"`
	Categories []string      `env:"NEWS_CATEGORIES" env-default:"business,general"`
	PageSize   int           `env:"NEWS_PAGE_SIZE" env-default:"3" validate:"min=1,max=100"`
	Lookback   time.Duration `env:"NEWS_LOOKBACK" env-default:"168h"`
	CacheTTL   time.Duration `env:"NEWS_CACHE_TTL" env-default:"10m"`
}

// RedisConfig holds the article cache connection. An empty Addr disables caching.
type RedisConfig struct {
	Addr        string        `env:"REDIS_ADDR"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" env-default:"0" validate:"min=0"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `env:"REDIS_TIMEOUT" env-default:"3s"`
}

// Enabled reports whether a Redis address was configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	v := validator.New()
	// report fields by their environment variable name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("env")
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s is invalid (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// CredentialsPath is the credentials document inside DataDir
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.DataDir, credentialsFile)
}

// SessionPath is the session document inside DataDir
func (c *Config) SessionPath() string {
	return filepath.Join(c.DataDir, sessionFile)
}
