package relay

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/minus-twelve/relay/types"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCookieName    = "sessionId"
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Second
)

func DefaultConfig() types.Config {
	cfg := types.Config{
		StoreType: "memory",
		Session: types.SessionConfig{
			TTL:           DefaultSessionTTL,
			CookieName:    DefaultCookieName,
			SweepInterval: DefaultSweepInterval,
		},
		Server: types.ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: types.DatabaseConfig{
			Path: ":memory:",
		},
		Security: types.SecurityConfig{
			RateLimit: types.Rate{Period: time.Minute},
		},
		Log: types.LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
	cfg.Redis.Prefix = "sess:"
	return cfg
}

// LoadConfig reads a YAML file over DefaultConfig. An empty path returns the
// defaults.
func LoadConfig(path string) (types.Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func ValidateConfig(cfg types.Config) error {
	var errs []error
	if cfg.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if cfg.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("session.sweep_interval must be positive"))
	}
	if cfg.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name must not be empty"))
	}
	switch cfg.StoreType {
	case "", "memory":
	case "redis":
		if cfg.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store_type %q", cfg.StoreType))
	}
	if cfg.Security.RateLimit.Limit > 0 && cfg.Security.RateLimit.Period <= 0 {
		errs = append(errs, errors.New("security.rate_limit.period must be positive"))
	}
	return errors.Join(errs...)
}
