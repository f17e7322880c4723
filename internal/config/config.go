package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Port                 string        `mapstructure:"PORT"`
	Env                  string        `mapstructure:"ENV"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	BackendURL           string        `mapstructure:"BACKEND_URL"`
	HTTPTimeout          time.Duration `mapstructure:"HTTP_TIMEOUT"`
	RequestTimeout       time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SessionStore         string        `mapstructure:"SESSION_STORE"`
	SessionDir           string        `mapstructure:"SESSION_DIR"`
	SessionSecret        string        `mapstructure:"SESSION_SECRET"`
	SessionIdleTimeout   time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	SessionCheckInterval time.Duration `mapstructure:"SESSION_CHECK_INTERVAL"`
	CookieSecure         bool          `mapstructure:"COOKIE_SECURE"`
	RedisURL             string        `mapstructure:"REDIS_URL"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32         `mapstructure:"DB_MIN_CONNS"`
	PageSize             int           `mapstructure:"PAGE_SIZE"`
	CORSOrigins          []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS         float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst       int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit            string        `mapstructure:"BODY_LIMIT"`
	UploadLimit          string        `mapstructure:"UPLOAD_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "BACKEND_URL", "HTTP_TIMEOUT", "REQUEST_TIMEOUT",
	"SESSION_STORE", "SESSION_DIR", "SESSION_SECRET", "SESSION_IDLE_TIMEOUT",
	"SESSION_CHECK_INTERVAL", "COOKIE_SECURE", "REDIS_URL", "DATABASE_URL",
	"DB_MAX_CONNS", "DB_MIN_CONNS", "PAGE_SIZE", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "UPLOAD_LIMIT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BACKEND_URL", "http://localhost:8080")
	v.SetDefault("HTTP_TIMEOUT", 15*time.Second)
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("SESSION_STORE", StoreMemory)
	v.SetDefault("SESSION_IDLE_TIMEOUT", 15*time.Minute)
	v.SetDefault("SESSION_CHECK_INTERVAL", 30*time.Second)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 0.2)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("UPLOAD_LIMIT", "10M")

	for _, k := range keys {
		v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if cfg.SessionDir == "" {
		cfg.SessionDir = defaultSessionDir()
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".myhealth"
	}
	return filepath.Join(home, ".myhealth")
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the settings the gateway needs before it starts. The CLI
// only needs BACKEND_URL and SESSION_DIR and calls ValidateClient instead.
func (c *Config) Validate() error {
	if err := c.ValidateClient(); err != nil {
		return err
	}

	switch c.SessionStore {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE is %q", StoreRedis)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SESSION_STORE is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("SESSION_STORE must be one of memory, file, redis, postgres; got %q", c.SessionStore)
	}

	if !c.IsDev() {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required outside development (ENV=%q)", c.Env)
		}
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 bytes, got %d", len(c.SessionSecret))
		}
	}

	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.SessionCheckInterval <= 0 || c.SessionCheckInterval > c.SessionIdleTimeout {
		return fmt.Errorf("SESSION_CHECK_INTERVAL must be positive and not longer than SESSION_IDLE_TIMEOUT")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100, got %d", c.PageSize)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// ValidateClient checks what every command needs to reach the backend.
func (c *Config) ValidateClient() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute http(s) URL, got %q", c.BackendURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// Warnings lists settings that are allowed but unsafe; the caller logs them.
func (c *Config) Warnings() []string {
	var w []string
	if c.IsDev() && c.SessionSecret == "" {
		w = append(w, "SESSION_SECRET is empty; using a random per-process secret, sessions will not survive a restart")
	}
	if c.IsProduction() && !c.CookieSecure {
		w = append(w, "COOKIE_SECURE is false in production; session cookies will be sent over plain HTTP")
	}
	if c.SessionStore == StoreMemory && c.IsProduction() {
		w = append(w, "SESSION_STORE=memory in production; sessions are lost on restart and not shared between replicas")
	}
	return w
}
