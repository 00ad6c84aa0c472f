// Package config handles configuration loading for donutreport.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DONUTREPORT_SOURCE_URL.
const EnvPrefix = "DONUTREPORT"

// Config represents the complete application configuration.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"  yaml:"source"`
	Columns ColumnsConfig `mapstructure:"columns" yaml:"columns"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// origins records where source.url and source.file came from.
	origins map[string]ValueOrigin
}

// SourceConfig selects where the distribution table is read from.
type SourceConfig struct {
	URL     string        `mapstructure:"url"     yaml:"url"`     // published sheet URL (csv or pubhtml)
	File    string        `mapstructure:"file"    yaml:"file"`    // local CSV; wins over url
	Format  string        `mapstructure:"format"  yaml:"format"`  // "auto", "csv", "html"
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries int           `mapstructure:"retries" yaml:"retries"`
}

// ColumnsConfig lists the candidate header names for each logical field.
type ColumnsConfig struct {
	Date       []string `mapstructure:"date"        yaml:"date"`
	Dozens     []string `mapstructure:"dozens"      yaml:"dozens"`
	TotalPrice []string `mapstructure:"total_price" yaml:"total_price"`
}

// MetricsConfig controls derived metrics.
type MetricsConfig struct {
	ZeroDozens string `mapstructure:"zero_dozens" yaml:"zero_dozens"` // "propagate" or "drop"
}

// OutputConfig controls chart output.
type OutputConfig struct {
	Dir         string `mapstructure:"dir"         yaml:"dir"`
	Format      string `mapstructure:"format"      yaml:"format"` // "png" or "svg"
	Width       int    `mapstructure:"width"       yaml:"width"`
	Height      int    `mapstructure:"height"      yaml:"height"`
	DPI         int    `mapstructure:"dpi"         yaml:"dpi"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
	HTMLReport  bool   `mapstructure:"html_report" yaml:"html_report"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.donutreport/config.yaml (home directory)
//  3. /etc/donutreport/config.yaml (system)
//
// Environment variables override config file values.
// Format: DONUTREPORT_<SECTION>_<KEY>, e.g., DONUTREPORT_SOURCE_URL
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".donutreport"))
	v.AddConfigPath("/etc/donutreport")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.origins = map[string]ValueOrigin{
		keySourceURL:  originOf(v, keySourceURL),
		keySourceFile: originOf(v, keySourceFile),
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Source defaults
	v.SetDefault(keySourceURL, "")
	v.SetDefault(keySourceFile, "")
	v.SetDefault("source.format", "auto")
	v.SetDefault("source.timeout", "30s")
	v.SetDefault("source.retries", 2)

	// Column candidates, tried exact first, then as substrings
	v.SetDefault("columns.date", []string{"date distributed", "date"})
	v.SetDefault("columns.dozens", []string{"dozens of donut", "dozens of donuts", "dozens", "dozen"})
	v.SetDefault("columns.total_price", []string{"total price", "prices", "price", "total"})

	v.SetDefault("metrics.zero_dozens", "propagate")

	// Output defaults
	v.SetDefault("output.dir", "figs")
	v.SetDefault("output.format", "png")
	v.SetDefault("output.width", 800)
	v.SetDefault("output.height", 480)
	v.SetDefault("output.dpi", 160)
	v.SetDefault("output.concurrency", 4)
	v.SetDefault("output.html_report", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Overrides carries command-line values; empty fields leave the config alone.
type Overrides struct {
	URL        string
	File       string
	OutDir     string
	Format     string
	HTMLReport *bool
	LogLevel   string
}

// Apply copies the non-empty overrides into cfg.
func (cfg *Config) Apply(o Overrides) {
	if o.URL != "" {
		cfg.Source.URL = o.URL
		cfg.setOrigin(keySourceURL, OriginFlag)
	}
	if o.File != "" {
		cfg.Source.File = o.File
		cfg.setOrigin(keySourceFile, OriginFlag)
	}
	if o.OutDir != "" {
		cfg.Output.Dir = o.OutDir
	}
	if o.Format != "" {
		cfg.Output.Format = o.Format
	}
	if o.HTMLReport != nil {
		cfg.Output.HTMLReport = *o.HTMLReport
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
}

// ErrNoSource is returned by Validate when neither a URL nor a file is set.
var ErrNoSource = errors.New("no data source configured: set source.url or source.file (or --url / --file)")

// Validate checks the settings the pipeline depends on. All problems are
// reported together.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Source.URL == "" && cfg.Source.File == "" {
		errs = append(errs, ErrNoSource)
	}
	errs = append(errs,
		oneOf("source.format", cfg.Source.Format, "auto", "csv", "html"),
		oneOf("metrics.zero_dozens", cfg.Metrics.ZeroDozens, "propagate", "drop"),
		oneOf("output.format", cfg.Output.Format, "png", "svg"),
		oneOf("logging.level", cfg.Logging.Level, "debug", "info", "warn", "warning", "error"),
		oneOf("logging.format", cfg.Logging.Format, "text", "json"),
	)
	if cfg.Source.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("source.timeout must be positive, got %s", cfg.Source.Timeout))
	}
	if cfg.Source.Retries < 0 {
		errs = append(errs, fmt.Errorf("source.retries must not be negative, got %d", cfg.Source.Retries))
	}
	if cfg.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir must be set"))
	}
	for _, f := range []struct {
		key string
		n   int
	}{
		{"output.width", cfg.Output.Width},
		{"output.height", cfg.Output.Height},
		{"output.dpi", cfg.Output.DPI},
		{"output.concurrency", cfg.Output.Concurrency},
	} {
		if f.n <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", f.key, f.n))
		}
	}
	return errors.Join(errs...)
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported value %q (want %s)", key, value, strings.Join(allowed, ", "))
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
