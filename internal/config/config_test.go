package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/session"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", c.Server.Addr)
	}
	if c.Store.Backend != session.BackendFile {
		t.Errorf("Store.Backend = %q, want file", c.Store.Backend)
	}
	if want := filepath.Join(home, ".config", "sketchmap", "sessions"); c.Store.Dir != want {
		t.Errorf("Store.Dir = %q, want %q", c.Store.Dir, want)
	}
	if c.Store.TTL != 7*24*time.Hour {
		t.Errorf("Store.TTL = %v", c.Store.TTL)
	}
	if c.Geo.Engine != "wgs84" || c.UI.Lang != "en" {
		t.Errorf("Geo/UI = %+v/%+v", c.Geo, c.UI)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	body := `
[server]
addr = "127.0.0.1:9000"
shutdown_timeout = "2s"

[store]
backend = "redis"
ttl = "1h"

[store.redis]
addr = "cache:6379"
db = 2

[ui]
lang = "ar"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SKETCHMAP_SERVER_ADDR", ":7000")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Server.Addr != ":7000" {
		t.Errorf("env override: Server.Addr = %q, want :7000", c.Server.Addr)
	}
	if c.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 2s", c.Server.ShutdownTimeout)
	}
	if c.Store.Backend != "redis" || c.Store.TTL != time.Hour {
		t.Errorf("Store = %+v", c.Store)
	}
	if c.Store.Redis.Addr != "cache:6379" || c.Store.Redis.DB != 2 {
		t.Errorf("Redis = %+v", c.Store.Redis)
	}
	if c.Store.Redis.Prefix != session.DefaultRedisPrefix {
		t.Errorf("Redis.Prefix = %q, want default", c.Store.Redis.Prefix)
	}
	if c.UI.Lang != "ar" {
		t.Errorf("UI.Lang = %q, want ar", c.UI.Lang)
	}

	sc := c.SessionConfig()
	if sc.Backend != "redis" || sc.Redis.Addr != "cache:6379" || sc.TTL != time.Hour {
		t.Errorf("SessionConfig() = %+v", sc)
	}
}

func TestLoadSearchesWorkingDir(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(FileName, []byte("[geo]\nengine = \"spherical\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Geo.Engine != "spherical" {
		t.Errorf("Geo.Engine = %q, want spherical", c.Geo.Engine)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load(missing) should fail when a path is given")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"memory backend", func(c *Config) { c.Store.Backend = "memory" }, true},
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, false},
		{"unknown engine", func(c *Config) { c.Geo.Engine = "flat" }, false},
		{"unknown lang", func(c *Config) { c.UI.Lang = "fr" }, false},
		{"negative ttl", func(c *Config) { c.Store.TTL = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() code = %q, want INVALID_INPUT", errors.GetCode(err))
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", FileName)

	c := Default()
	c.Store.Backend = session.BackendMongo
	c.Store.TTL = 90 * time.Minute
	c.Store.Mongo.Database = "maps"
	if err := Save(path, c, false); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `ttl = "1h30m0s"`) {
		t.Errorf("durations should be written as strings:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Store.Backend != "mongo" || got.Store.TTL != 90*time.Minute || got.Store.Mongo.Database != "maps" {
		t.Errorf("round trip Store = %+v", got.Store)
	}

	if err := Save(path, c, false); err == nil {
		t.Error("Save() over an existing file should fail without force")
	}
	if err := Save(path, c, true); err != nil {
		t.Errorf("Save(force) error: %v", err)
	}
}
