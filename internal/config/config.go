// Package config holds undocalc's typed configuration and loads it from
// defaults, a TOML file and the environment.
//
// Precedence, lowest to highest: built-in defaults, the TOML file, UNDOCALC_
// environment variables, then any overrides the caller applies (CLI flags).
package config

import (
	"fmt"

	"github.com/dshills/undocalc/internal/config/loader"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "UNDOCALC_"

// Config is the complete application configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	History HistoryConfig `toml:"history"`
	Journal JournalConfig `toml:"journal"`
	Server  ServerConfig  `toml:"server"`
	Script  ScriptConfig  `toml:"script"`
	UI      UIConfig      `toml:"ui"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is console or json.
	Format string `toml:"format"`
}

// HistoryConfig configures the command log.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"`
	// RedoBoundary is "reference" or "exact".
	RedoBoundary string `toml:"redo_boundary"`
}

// JournalConfig configures the command journal.
// An empty RedisAddr selects the in-memory journal.
type JournalConfig struct {
	RedisAddr string `toml:"redis_addr"`
	Key       string `toml:"key"`
}

// ServerConfig configures the HTTP control surface.
// An empty Listen address disables the server.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// ScriptConfig selects a Lua script to run instead of the built-in demo.
type ScriptConfig struct {
	Path string `toml:"path"`
}

// UIConfig configures console interaction.
type UIConfig struct {
	WaitForKey bool `toml:"wait_for_key"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		History: HistoryConfig{
			MaxEntries:   1000,
			RedoBoundary: "reference",
		},
		Journal: JournalConfig{
			Key: "undocalc:journal",
		},
		UI: UIConfig{
			WaitForKey: true,
		},
	}
}

// defaultMap mirrors Default as a raw map, the base layer for merging.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"logging": map[string]any{
			"level":  d.Logging.Level,
			"format": d.Logging.Format,
		},
		"history": map[string]any{
			"max_entries":   int64(d.History.MaxEntries),
			"redo_boundary": d.History.RedoBoundary,
		},
		"journal": map[string]any{
			"redis_addr": d.Journal.RedisAddr,
			"key":        d.Journal.Key,
		},
		"server": map[string]any{
			"listen": d.Server.Listen,
		},
		"script": map[string]any{
			"path": d.Script.Path,
		},
		"ui": map[string]any{
			"wait_for_key": d.UI.WaitForKey,
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	path string
	fs   loader.FileSystem
	env  loader.Loader
}

// WithFile loads the TOML file at path. A missing file is not an error.
func WithFile(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithFileSystem reads the config file from fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnvLoader replaces the environment source.
func WithEnvLoader(l loader.Loader) Option {
	return func(o *options) {
		o.env = l
	}
}

// WithoutEnv disables environment overrides.
func WithoutEnv() Option {
	return func(o *options) {
		o.env = nil
	}
}

// Load builds a Config from defaults, the file and the environment, then
// validates it.
func Load(opts ...Option) (*Config, error) {
	o := options{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(EnvPrefix).WithSchema(Config{}),
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged := defaultMap()

	file, err := loader.NewTOMLLoaderWithFS(o.fs, o.path).Load()
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, file)

	if o.env != nil {
		env, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, env)
	}

	cfg := &Config{}
	if err := loader.Decode(merged, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and returns all failures together.
func (c *Config) Validate() error {
	var errs ValidationErrors

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, &ValidationError{Path: "logging.level", Value: c.Logging.Level, Message: "must be debug, info, warn or error"})
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, &ValidationError{Path: "logging.format", Value: c.Logging.Format, Message: "must be console or json"})
	}

	if c.History.MaxEntries < 1 {
		errs = append(errs, &ValidationError{Path: "history.max_entries", Value: c.History.MaxEntries, Message: "must be at least 1"})
	}

	switch c.History.RedoBoundary {
	case "reference", "exact":
	default:
		errs = append(errs, &ValidationError{Path: "history.redo_boundary", Value: c.History.RedoBoundary, Message: "must be reference or exact"})
	}

	if c.Journal.RedisAddr != "" && c.Journal.Key == "" {
		errs = append(errs, &ValidationError{Path: "journal.key", Value: c.Journal.Key, Message: "required when journal.redis_addr is set"})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
