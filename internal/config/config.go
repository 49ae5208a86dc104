package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	Upstream struct {
		URL         string
		Timeout     time.Duration
		PerPage     int
		FilterParam string
	}
	Cache struct {
		Backend  string // "memory" or "redis"
		TTL      time.Duration
		RedisURL string
	}
	Session struct {
		Store    string // "memory" or "db"
		Lifetime time.Duration
	}
	DB struct {
		Driver string
		DSN    string
	}
	InsecureCookies bool
	LogLevel        slog.Level
	LogFormat       string // "text" or "json"
}

// Load reads config from environment (TAGBOARD_ prefix) and optional tagboard.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TAGBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("tagboard")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("upstream.url", "http://localhost:3333")
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("upstream.per_page", 10)
	v.SetDefault("upstream.filter_param", "title")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.lifetime", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.Upstream.URL = v.GetString("upstream.url")
	cfg.Upstream.PerPage = v.GetInt("upstream.per_page")
	cfg.Upstream.FilterParam = v.GetString("upstream.filter_param")
	cfg.Cache.Backend = strings.ToLower(v.GetString("cache.backend"))
	cfg.Cache.RedisURL = v.GetString("cache.redis_url")
	cfg.Session.Store = strings.ToLower(v.GetString("session.store"))
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")
	cfg.LogFormat = strings.ToLower(v.GetString("log.format"))

	var err error
	if cfg.Upstream.Timeout, err = time.ParseDuration(v.GetString("upstream.timeout")); err != nil {
		return nil, fmt.Errorf("invalid TAGBOARD_UPSTREAM_TIMEOUT: %w", err)
	}
	if cfg.Cache.TTL, err = time.ParseDuration(v.GetString("cache.ttl")); err != nil {
		return nil, fmt.Errorf("invalid TAGBOARD_CACHE_TTL: %w", err)
	}
	if cfg.Session.Lifetime, err = time.ParseDuration(v.GetString("session.lifetime")); err != nil {
		return nil, fmt.Errorf("invalid TAGBOARD_SESSION_LIFETIME: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("invalid TAGBOARD_LOG_LEVEL: %w", err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("unsupported log format %q: must be text or json", cfg.LogFormat)
	}

	if cfg.Upstream.URL == "" {
		return nil, fmt.Errorf("TAGBOARD_UPSTREAM_URL is required")
	}
	if cfg.Upstream.PerPage < 1 {
		return nil, fmt.Errorf("TAGBOARD_UPSTREAM_PER_PAGE must be positive")
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Cache.RedisURL == "" {
			return nil, fmt.Errorf("TAGBOARD_CACHE_REDIS_URL is required when the cache backend is redis")
		}
	default:
		return nil, fmt.Errorf("unsupported cache backend %q: must be memory or redis", cfg.Cache.Backend)
	}

	switch cfg.Session.Store {
	case "memory":
	case "db":
		if cfg.DB.Driver == "" {
			return nil, fmt.Errorf("TAGBOARD_DB_DRIVER is required (sqlite3, mysql, postgres)")
		}
		if cfg.DB.DSN == "" {
			return nil, fmt.Errorf("TAGBOARD_DB_DSN is required")
		}
	default:
		return nil, fmt.Errorf("unsupported session store %q: must be memory or db", cfg.Session.Store)
	}

	return cfg, nil
}
