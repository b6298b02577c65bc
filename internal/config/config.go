// Package config loads CLI settings from a YAML file, a .env file and
// GRAPHMAP_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	graphmap "github.com/reoring/graphmap"
	drvgojson "github.com/reoring/graphmap/source/gojson"
	drvjson "github.com/reoring/graphmap/source/json"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRAPHMAP_"

// Config holds the CLI settings. The yaml keys match the file layout; the
// environment uses the upper-cased key behind EnvPrefix.
type Config struct {
	LogLevel       string `yaml:"log_level"`
	Lang           string `yaml:"lang"`
	Driver         string `yaml:"driver"`
	MaxDepth       int    `yaml:"max_depth"`
	MaxBytes       int64  `yaml:"max_bytes"`
	OnDuplicateKey string `yaml:"on_duplicate_key"`
	StrictNumbers  bool   `yaml:"strict_numbers"`
	LogUnknownKeys bool   `yaml:"log_unknown_keys"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		LogLevel:       "info",
		Lang:           "en",
		Driver:         "builtin",
		OnDuplicateKey: "ignore",
	}
}

// Load reads path (optional), then dotenv (optional, ".env" when empty),
// then the environment. Missing files are not an error.
func Load(path, dotenv string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config: %s: %w", dotenv, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("LANG"); ok {
		c.Lang = v
	}
	if v, ok := get("DRIVER"); ok {
		c.Driver = v
	}
	if v, ok := get("ON_DUPLICATE_KEY"); ok {
		c.OnDuplicateKey = v
	}
	if v, ok := get("MAX_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sMAX_DEPTH: %w", EnvPrefix, err)
		}
		c.MaxDepth = n
	}
	if v, ok := get("MAX_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sMAX_BYTES: %w", EnvPrefix, err)
		}
		c.MaxBytes = n
	}
	if v, ok := get("STRICT_NUMBERS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sSTRICT_NUMBERS: %w", EnvPrefix, err)
		}
		c.StrictNumbers = b
	}
	if v, ok := get("LOG_UNKNOWN_KEYS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sLOG_UNKNOWN_KEYS: %w", EnvPrefix, err)
		}
		c.LogUnknownKeys = b
	}
	return nil
}

// Validate reports settings with unknown values.
func (c Config) Validate() error {
	var errs []error
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.JSONDriver(); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseSeverity(c.OnDuplicateKey); err != nil {
		errs = append(errs, err)
	}
	if c.Lang != "en" && c.Lang != "ja" {
		errs = append(errs, fmt.Errorf("config: unsupported lang %q", c.Lang))
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level, info when unknown.
func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return l, nil
}

func parseSeverity(s string) (graphmap.Severity, error) {
	switch strings.ToLower(s) {
	case "", "ignore":
		return graphmap.SeverityIgnore, nil
	case "warn":
		return graphmap.SeverityWarn, nil
	case "error":
		return graphmap.SeverityError, nil
	}
	return graphmap.SeverityIgnore, fmt.Errorf("config: on_duplicate_key %q: want ignore, warn or error", s)
}

// JSONDriver resolves the driver name.
func (c Config) JSONDriver() (graphmap.JSONDriver, error) {
	switch strings.ToLower(c.Driver) {
	case "", "builtin":
		return graphmap.BuiltinDriver(), nil
	case "gojson", "go-json":
		return drvgojson.Driver(), nil
	case "json", "encoding/json":
		return drvjson.Driver(), nil
	}
	return nil, fmt.Errorf("config: unknown driver %q", c.Driver)
}

// ParseOpt converts the parse settings.
func (c Config) ParseOpt() graphmap.ParseOpt {
	d, _ := c.JSONDriver()
	sev, _ := parseSeverity(c.OnDuplicateKey)
	return graphmap.ParseOpt{
		MaxDepth:       c.MaxDepth,
		MaxBytes:       c.MaxBytes,
		OnDuplicateKey: sev,
		Driver:         d,
	}
}

// MapperOptions builds graphmap.Options around logger.
func (c Config) MapperOptions(logger *slog.Logger) graphmap.Options {
	return graphmap.Options{
		Logger:         logger,
		Parse:          c.ParseOpt(),
		StrictNumbers:  c.StrictNumbers,
		LogUnknownKeys: c.LogUnknownKeys,
	}
}
