package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultConfigPath              = "sensorfusion.yaml"
	DefaultInputPath               = "src/input.csv"
	DefaultOutputPath              = "sensor_fusion_report.txt"
	DefaultQSupportValue           = 0
	DefaultPrincipalComponentRatio = 100
	DefaultLogLevel                = "info"
	DefaultLogFormat               = "json"
)

// Environment variables that override file values.
const (
	EnvInput     = "SENSORFUSION_INPUT"
	EnvOutput    = "SENSORFUSION_OUTPUT"
	EnvMetrics   = "SENSORFUSION_METRICS"
	EnvLogLevel  = "SENSORFUSION_LOG_LEVEL"
	EnvLogFormat = "SENSORFUSION_LOG_FORMAT"
)

// Config is the full run configuration.
type Config struct {
	// InputPath is the CSV file of time,name,value rows.
	InputPath string `yaml:"input_path"`

	// OutputPath is the text report, opened in append mode.
	OutputPath string `yaml:"output_path"`

	// MetricsPath, when set, receives a Prometheus text-format snapshot of
	// the last cycle after the run.
	MetricsPath string `yaml:"metrics_path"`

	Limits Limits `yaml:"limits"`

	// StuckThreshold is the staleness cutoff in minutes. Nil disables
	// stuck detection.
	StuckThreshold *int `yaml:"stuck_threshold"`

	Fusion FusionConfig `yaml:"fusion"`
	Log    LogConfig    `yaml:"log"`
}

// Limits holds the optional valid range.
type Limits struct {
	High *float64 `yaml:"high"`
	Low  *float64 `yaml:"low"`
}

// FusionConfig holds the fusion parameters as entered by the operator.
type FusionConfig struct {
	// QSupportValue is the fault-tolerance percentage (0–100).
	QSupportValue int `yaml:"q_support_value"`

	// PrincipalComponentRatio is the cumulative contribution percentage
	// (0–100) used to pick the number of principal components.
	PrincipalComponentRatio int `yaml:"principal_component_ratio"`
}

// FaultTolerance returns QSupportValue as a ratio.
func (f FusionConfig) FaultTolerance() float64 { return float64(f.QSupportValue) / 100 }

// ContributionThreshold returns PrincipalComponentRatio as a ratio.
func (f FusionConfig) ContributionThreshold() float64 {
	return float64(f.PrincipalComponentRatio) / 100
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel maps Level to a slog.Level; unknown values map to Info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns a Config populated with defaults and environment
// overrides. Used when no config file exists.
func Default() *Config {
	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

// Load parses the YAML config file at path over the defaults and applies
// environment overrides. The result is not validated: callers layer CLI
// flags on top and then call Validate once.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overwriting variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", path, err)
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		InputPath:  DefaultInputPath,
		OutputPath: DefaultOutputPath,
		Fusion: FusionConfig{
			QSupportValue:           DefaultQSupportValue,
			PrincipalComponentRatio: DefaultPrincipalComponentRatio,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.InputPath, EnvInput)
	set(&cfg.OutputPath, EnvOutput)
	set(&cfg.MetricsPath, EnvMetrics)
	set(&cfg.Log.Level, EnvLogLevel)
	set(&cfg.Log.Format, EnvLogFormat)
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("config: input_path is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("config: output_path is required")
	}
	if q := c.Fusion.QSupportValue; q < 0 || q > 100 {
		return fmt.Errorf("config: fusion.q_support_value must be between 0 - 100, got %d", q)
	}
	if p := c.Fusion.PrincipalComponentRatio; p < 0 || p > 100 {
		return fmt.Errorf("config: fusion.principal_component_ratio must be between 0 - 100, got %d", p)
	}
	if c.Limits.High != nil && c.Limits.Low != nil && *c.Limits.High < *c.Limits.Low {
		return fmt.Errorf("config: limits.high (%g) is below limits.low (%g)", *c.Limits.High, *c.Limits.Low)
	}
	if c.StuckThreshold != nil && *c.StuckThreshold < 0 {
		return fmt.Errorf("config: stuck_threshold must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}
