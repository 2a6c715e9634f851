package relay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.TTL != DefaultSessionTTL {
		t.Errorf("TTL = %v, want %v", cfg.Session.TTL, DefaultSessionTTL)
	}
	if cfg.Session.CookieName != DefaultCookieName {
		t.Errorf("CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.StoreType != "memory" || cfg.Database.Path != ":memory:" {
		t.Errorf("StoreType = %q, Database.Path = %q", cfg.StoreType, cfg.Database.Path)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeConfig(t, `
session:
  ttl: 45m
  cookie_name: sid
server:
  addr: 127.0.0.1:9000
  trusted_proxies: [10.0.0.0/8]
security:
  rate_limit:
    period: 30s
    limit: 100
log:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Session.TTL != 45*time.Minute {
		t.Errorf("TTL = %v, want 45m", cfg.Session.TTL)
	}
	if cfg.Session.CookieName != "sid" {
		t.Errorf("CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.Session.SweepInterval != DefaultSweepInterval {
		t.Errorf("SweepInterval = %v, want default kept", cfg.Session.SweepInterval)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || len(cfg.Server.TrustedProxies) != 1 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Security.RateLimit.Limit != 100 || cfg.Security.RateLimit.Period != 30*time.Second {
		t.Errorf("RateLimit = %+v", cfg.Security.RateLimit)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, `
store_type: redis
session:
  ttl: -1s
  cookie_name: ""
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"session.ttl", "cookie_name", "redis.addr"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "session: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
	if _, err := LoadConfig(writeConfig(t, "store_type: etcd\n")); err == nil {
		t.Error("expected error for an unknown store type")
	}
}

func TestCreateStore(t *testing.T) {
	cfg := DefaultConfig()
	store, err := CreateStore(cfg)
	if err != nil {
		t.Fatalf("CreateStore(memory) error = %v", err)
	}
	if n, _ := store.Len(context.Background()); n != 0 {
		t.Errorf("new store Len() = %d", n)
	}

	cfg.StoreType = "etcd"
	if _, err := CreateStore(cfg); err == nil {
		t.Error("expected error for an unknown store type")
	}
}
