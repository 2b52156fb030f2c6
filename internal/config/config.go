// Package config loads sketchmap settings from a TOML file and the
// environment.
//
// Lookup order, later wins: built-in defaults, the config file, then
// SKETCHMAP_* environment variables (SKETCHMAP_STORE_BACKEND overrides
// store.backend). Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// FileName is the config file looked up in the working directory and in
// the user config directory.
const FileName = "sketchmap.toml"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "SKETCHMAP"

// Config holds application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" toml:"server"`
	Store  StoreConfig  `mapstructure:"store" toml:"store"`
	Geo    GeoConfig    `mapstructure:"geo" toml:"geo"`
	UI     UIConfig     `mapstructure:"ui" toml:"ui"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" toml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" toml:"shutdown_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" toml:"cleanup_interval"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Backend string        `mapstructure:"backend" toml:"backend"`
	Dir     string        `mapstructure:"dir" toml:"dir"`
	TTL     time.Duration `mapstructure:"ttl" toml:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis" toml:"redis"`
	Mongo   MongoConfig   `mapstructure:"mongo" toml:"mongo"`
}

// RedisConfig mirrors [session.RedisConfig].
type RedisConfig struct {
	Addr     string `mapstructure:"addr" toml:"addr"`
	Password string `mapstructure:"password" toml:"password"`
	DB       int    `mapstructure:"db" toml:"db"`
	Prefix   string `mapstructure:"prefix" toml:"prefix"`
}

// MongoConfig mirrors [session.MongoConfig].
type MongoConfig struct {
	URI        string `mapstructure:"uri" toml:"uri"`
	Database   string `mapstructure:"database" toml:"database"`
	Collection string `mapstructure:"collection" toml:"collection"`
}

// GeoConfig selects the measurement engine.
type GeoConfig struct {
	Engine string `mapstructure:"engine" toml:"engine"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Lang string `mapstructure:"lang" toml:"lang"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			CleanupInterval: 10 * time.Minute,
		},
		Store: StoreConfig{
			Backend: session.BackendFile,
			Dir:     defaultSessionDir(),
			TTL:     7 * 24 * time.Hour,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: session.DefaultRedisPrefix},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: "sketchmap", Collection: "sessions"},
		},
		Geo: GeoConfig{Engine: geo.EngineWGS84},
		UI:  UIConfig{Lang: errors.LangEnglish},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.cleanup_interval", d.Server.CleanupInterval)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("store.ttl", d.Store.TTL)
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.password", d.Store.Redis.Password)
	v.SetDefault("store.redis.db", d.Store.Redis.DB)
	v.SetDefault("store.redis.prefix", d.Store.Redis.Prefix)
	v.SetDefault("store.mongo.uri", d.Store.Mongo.URI)
	v.SetDefault("store.mongo.database", d.Store.Mongo.Database)
	v.SetDefault("store.mongo.collection", d.Store.Mongo.Collection)
	v.SetDefault("geo.engine", d.Geo.Engine)
	v.SetDefault("ui.lang", d.UI.Lang)
}

// Load reads configuration. An explicit path must exist; without one the
// working directory and [Dir] are searched and a missing file is not an
// error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigType("toml")
		v.SetConfigFile(path)
	} else {
		// No config type here: viper would then also accept an
		// extensionless "sketchmap" file, which is usually the binary.
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
		if dir := Dir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that the rest of the program would otherwise
// reject late.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case session.BackendMemory, session.BackendFile, session.BackendRedis, session.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	if _, err := geo.NewEngine(c.Geo.Engine); err != nil {
		return err
	}
	if err := errors.ValidateLanguage(c.UI.Lang); err != nil {
		return err
	}
	if c.Store.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "store.ttl must not be negative")
	}
	return nil
}

// SessionConfig converts the store settings for [session.Open].
func (c Config) SessionConfig() session.Config {
	return session.Config{
		Backend: c.Store.Backend,
		Dir:     c.Store.Dir,
		TTL:     c.Store.TTL,
		Redis: session.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
		},
		Mongo: session.MongoConfig{
			URI:        c.Store.Mongo.URI,
			Database:   c.Store.Mongo.Database,
			Collection: c.Store.Mongo.Collection,
		},
	}
}

// Dir returns the user config directory for sketchmap, or "" if the home
// directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sketchmap")
}

func defaultSessionDir() string {
	dir, err := session.DefaultDir()
	if err != nil {
		return ""
	}
	return dir
}

// fileConfig is the on-disk form of Config with durations spelled as
// strings ("5s", "168h0m0s").
type fileConfig struct {
	Server struct {
		Addr            string `toml:"addr"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
		CleanupInterval string `toml:"cleanup_interval"`
	} `toml:"server"`
	Store struct {
		Backend string      `toml:"backend"`
		Dir     string      `toml:"dir"`
		TTL     string      `toml:"ttl"`
		Redis   RedisConfig `toml:"redis"`
		Mongo   MongoConfig `toml:"mongo"`
	} `toml:"store"`
	Geo GeoConfig `toml:"geo"`
	UI  UIConfig  `toml:"ui"`
}

func fileForm(c Config) fileConfig {
	var f fileConfig
	f.Server.Addr = c.Server.Addr
	f.Server.ShutdownTimeout = c.Server.ShutdownTimeout.String()
	f.Server.CleanupInterval = c.Server.CleanupInterval.String()
	f.Store.Backend = c.Store.Backend
	f.Store.Dir = c.Store.Dir
	f.Store.TTL = c.Store.TTL.String()
	f.Store.Redis = c.Store.Redis
	f.Store.Mongo = c.Store.Mongo
	f.Geo = c.Geo
	f.UI = c.UI
	return f
}

// Encode renders c as TOML. Durations are written as strings so the file
// reads back through [Load].
func Encode(c Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fileForm(c)); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes c to path, creating the directory. It refuses to overwrite
// an existing file unless force is set.
func Save(path string, c Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := Encode(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
