package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/seenimoa/donutreport/pkg/utils"
)

const (
	keySourceURL  = "source.url"
	keySourceFile = "source.file"
)

// ValueOrigin represents where a setting came from.
type ValueOrigin string

const (
	OriginFlag    ValueOrigin = "flag"
	OriginEnv     ValueOrigin = "env"
	OriginFile    ValueOrigin = "config"
	OriginDefault ValueOrigin = "default"
)

// SourceStatus describes the effective data source for display.
type SourceStatus struct {
	Kind   string      `json:"kind"` // "file", "url" or "none"
	Value  string      `json:"value,omitempty"`
	Origin ValueOrigin `json:"origin"`
	Format string      `json:"format"`
}

// DescribeSource reports the source the pipeline will read. A file wins over
// a URL. Sheet URLs are masked.
func DescribeSource(cfg *Config) SourceStatus {
	status := SourceStatus{Kind: "none", Origin: OriginDefault, Format: cfg.Source.Format}
	switch {
	case cfg.Source.File != "":
		status.Kind = "file"
		status.Value = cfg.Source.File
		status.Origin = cfg.origin(keySourceFile)
	case cfg.Source.URL != "":
		status.Kind = "url"
		status.Value = utils.MaskSheetURL(cfg.Source.URL)
		status.Origin = cfg.origin(keySourceURL)
	}
	return status
}

// Setting is one effective key/value pair, for status output.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Settings flattens the effective configuration. The source URL is masked.
func (cfg *Config) Settings() []Setting {
	return []Setting{
		{"source.url", utils.MaskSheetURL(cfg.Source.URL)},
		{"source.file", cfg.Source.File},
		{"source.format", cfg.Source.Format},
		{"source.timeout", cfg.Source.Timeout.String()},
		{"source.retries", fmt.Sprint(cfg.Source.Retries)},
		{"columns.date", strings.Join(cfg.Columns.Date, ", ")},
		{"columns.dozens", strings.Join(cfg.Columns.Dozens, ", ")},
		{"columns.total_price", strings.Join(cfg.Columns.TotalPrice, ", ")},
		{"metrics.zero_dozens", cfg.Metrics.ZeroDozens},
		{"output.dir", cfg.Output.Dir},
		{"output.format", cfg.Output.Format},
		{"output.size", fmt.Sprintf("%dx%d @ %d dpi", cfg.Output.Width, cfg.Output.Height, cfg.Output.DPI)},
		{"output.concurrency", fmt.Sprint(cfg.Output.Concurrency)},
		{"output.html_report", fmt.Sprint(cfg.Output.HTMLReport)},
		{"logging.level", cfg.Logging.Level},
		{"logging.format", cfg.Logging.Format},
	}
}

func (cfg *Config) origin(key string) ValueOrigin {
	if o, ok := cfg.origins[key]; ok {
		return o
	}
	return OriginDefault
}

func (cfg *Config) setOrigin(key string, o ValueOrigin) {
	if cfg.origins == nil {
		cfg.origins = make(map[string]ValueOrigin)
	}
	cfg.origins[key] = o
}

// originOf checks whether key was set by the environment or the config file.
func originOf(v *viper.Viper, key string) ValueOrigin {
	if os.Getenv(envName(key)) != "" {
		return OriginEnv
	}
	if v.InConfig(key) {
		return OriginFile
	}
	return OriginDefault
}

// envName maps "source.url" to DONUTREPORT_SOURCE_URL.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
