package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env             string        `env:"APP_ENV" envDefault:"development"`
	Port            string        `env:"PORT" envDefault:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL" envDefault:"couples.db"`
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"your-secret-key-change-in-production"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"720h"`
	GoogleClientIDs []string      `env:"GOOGLE_CLIENT_IDS" envSeparator:","`
	RedisURL        string        `env:"REDIS_URL"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath       string `env:"LOG_PATH"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"7"`
	LogCompress   bool   `env:"LOG_COMPRESS"`

	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	CORSOrigins        []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional outside local development

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	for i, id := range cfg.GoogleClientIDs {
		cfg.GoogleClientIDs[i] = strings.TrimSpace(id)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UsesPostgres reports whether DatabaseURL points at PostgreSQL rather than
// a SQLite file.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres")
}
