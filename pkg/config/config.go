// Package config loads the notices configuration from defaults, a YAML file,
// NOTICES_* environment variables and command-line flags, in increasing
// priority.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hazyhaar/notice-registry/pkg/datenorm"
	"github.com/hazyhaar/notice-registry/pkg/notice"
	"github.com/hazyhaar/notice-registry/pkg/pipeline"
)

// EnvPrefix prefixes every environment override (NOTICES_ADDR, ...).
const EnvPrefix = "NOTICES"

// Config holds every tunable.
type Config struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	DB             string        `mapstructure:"db" yaml:"db"`
	Vocabulary     string        `mapstructure:"vocabulary" yaml:"vocabulary"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	RatePerSecond  float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	RateBurst      int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	NormalizeDates bool          `mapstructure:"normalize_dates" yaml:"normalize_dates"`
	PartialDates   string        `mapstructure:"partial_dates" yaml:"partial_dates"`
	DateCacheTTL   time.Duration `mapstructure:"date_cache_ttl" yaml:"date_cache_ttl"`
}

var defaults = map[string]any{
	"addr":            ":8421",
	"db":              "notices.db",
	"vocabulary":      "",
	"log_level":       "info",
	"rate_per_second": 20.0,
	"rate_burst":      40,
	"normalize_dates": true,
	"partial_dates":   "keep",
	"date_cache_ttl":  10 * time.Minute,
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:           defaults["addr"].(string),
		DB:             defaults["db"].(string),
		LogLevel:       defaults["log_level"].(string),
		RatePerSecond:  defaults["rate_per_second"].(float64),
		RateBurst:      defaults["rate_burst"].(int),
		NormalizeDates: defaults["normalize_dates"].(bool),
		PartialDates:   defaults["partial_dates"].(string),
		DateCacheTTL:   defaults["date_cache_ttl"].(time.Duration),
	}
}

// Load reads path (or ./notices.yaml when path is empty and the file
// exists), then environment variables, then the changed flags of fs.
// Flag names map to keys with dashes turned into underscores.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("notices")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := defaults[key]; known && bindErr == nil {
				bindErr = v.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.partialPolicy(); err != nil {
		return err
	}
	if c.RatePerSecond < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate limits must be >= 0")
	}
	return nil
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (c Config) partialPolicy() (datenorm.PartialPolicy, error) {
	switch strings.ToLower(c.PartialDates) {
	case "", "keep":
		return datenorm.PartialKeep, nil
	case "first_day", "first-day":
		return datenorm.PartialFirstDay, nil
	}
	return datenorm.PartialKeep, fmt.Errorf("unknown partial_dates %q (want keep or first_day)", c.PartialDates)
}

// Normalizer builds the date normalizer.
func (c Config) Normalizer() *datenorm.Normalizer {
	partial, _ := c.partialPolicy()
	return datenorm.New(datenorm.WithPartialDates(partial), datenorm.WithCache(c.DateCacheTTL))
}

// Extractor builds the field extractor from the vocabulary file, or the
// built-in vocabulary when none is set.
func (c Config) Extractor() (*notice.Extractor, error) {
	if c.Vocabulary == "" {
		return notice.Default(), nil
	}
	v, err := notice.LoadVocabulary(c.Vocabulary)
	if err != nil {
		return nil, err
	}
	return notice.NewExtractor(v)
}

// Pipeline wires extractor, normalizer and logger.
func (c Config) Pipeline(logger *slog.Logger) (*pipeline.Pipeline, error) {
	ex, err := c.Extractor()
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Extractor:      ex,
		Normalizer:     c.Normalizer(),
		NormalizeDates: c.NormalizeDates,
		Logger:         logger,
	}, nil
}
