// internal/config/config.go
//
// Process configuration.
// Responsibilities:
//   - Load a .env file when present (development convenience).
//   - Parse environment variables into a typed Config with defaults.
//
// Notes:
//   - A missing .env is not an error; real environment variables win over it.
//   - DAILY_DIFFICULTY is validated here so a typo fails at startup.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/wordsearch/internal/game"
)

// Config is every setting the server reads from the environment.
type Config struct {
	Port     string `env:"PORT"      envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/wordsearch.db"`

	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"wordsearch_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN"    envDefault:"http://localhost:5173"`
	NodeEnv        string `env:"NODE_ENV"         envDefault:"development"`

	DailySalt       string `env:"DAILY_SALT"       envDefault:"local_dev_salt"`
	DailyDifficulty string `env:"DAILY_DIFFICULTY" envDefault:"intermediate"`

	// CatalogFile overrides the embedded word catalog when set.
	CatalogFile string `env:"WORDS_CATALOG_FILE"`

	TickInterval time.Duration `env:"PUZZLE_TICK" envDefault:"1s"`

	// Puzzles untouched for IdleTTL are closed; the janitor checks every SweepInterval.
	IdleTTL       time.Duration `env:"PUZZLE_IDLE_TTL"       envDefault:"30m"`
	SweepInterval time.Duration `env:"PUZZLE_SWEEP_INTERVAL" envDefault:"1m"`
}

// Production reports whether cookies must be Secure/SameSite=None.
func (c Config) Production() bool { return c.NodeEnv == "production" }

// Addr is the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }

// Load reads .env (if any) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := game.ParseDifficulty(cfg.DailyDifficulty); err != nil {
		return Config{}, fmt.Errorf("DAILY_DIFFICULTY: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return Config{}, fmt.Errorf("PUZZLE_TICK must be positive, got %s", cfg.TickInterval)
	}
	if cfg.IdleTTL <= 0 {
		return Config{}, fmt.Errorf("PUZZLE_IDLE_TTL must be positive, got %s", cfg.IdleTTL)
	}
	if cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("PUZZLE_SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	if cfg.JWTExpiresDays <= 0 {
		cfg.JWTExpiresDays = 14
	}
	return cfg, nil
}
