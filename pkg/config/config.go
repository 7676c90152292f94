// Package config provides configuration loading and validation for the
// statname CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidMaxNames      = errors.New("corpus max_names must be positive")
	ErrInvalidMaxNameLength = errors.New("corpus max_name_length must be positive")
	ErrInvalidTopTokens     = errors.New("report top_tokens must be positive")
	ErrInvalidFormat        = errors.New("report format must be one of: table, json, yaml")
	ErrInvalidSampleRatio   = errors.New("observability sample_ratio must be in [0, 1]")
)

// Default configuration values.
const (
	defaultMaxNames      = 1_000_000
	defaultMaxNameLength = 4096
	defaultTopTokens     = 25
	defaultFormat        = "table"
	defaultChartTitle    = "Token frequency"
)

// Report output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config holds all configuration for the statname CLI.
type Config struct {
	Corpus        CorpusConfig        `mapstructure:"corpus"`
	Report        ReportConfig        `mapstructure:"report"`
	Chart         ChartConfig         `mapstructure:"chart"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// CorpusConfig bounds how much input the CLI will ingest.
type CorpusConfig struct {
	MaxNames      int `mapstructure:"max_names"`
	MaxNameLength int `mapstructure:"max_name_length"`
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	Format    string `mapstructure:"format"`
	TopTokens int    `mapstructure:"top_tokens"`
	NoColor   bool   `mapstructure:"no_color"`
}

// ChartConfig controls HTML chart output.
type ChartConfig struct {
	Title    string `mapstructure:"title"`
	Subtitle string `mapstructure:"subtitle"`
}

// ObservabilityConfig holds telemetry settings for long-running commands.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	LogLevel     string  `mapstructure:"log_level"`
	LogJSON      bool    `mapstructure:"log_json"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches the working directory and /etc/statname.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("statname")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("/etc/statname")
	}

	viperCfg.SetEnvPrefix("STATNAME")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	schemaErr := validateSchema(viperCfg.AllSettings())
	if schemaErr != nil {
		return nil, schemaErr
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("corpus.max_names", defaultMaxNames)
	viperCfg.SetDefault("corpus.max_name_length", defaultMaxNameLength)

	viperCfg.SetDefault("report.format", defaultFormat)
	viperCfg.SetDefault("report.top_tokens", defaultTopTokens)
	viperCfg.SetDefault("report.no_color", false)

	viperCfg.SetDefault("chart.title", defaultChartTitle)
	viperCfg.SetDefault("chart.subtitle", "")

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.log_level", "info")
	viperCfg.SetDefault("observability.log_json", false)
	viperCfg.SetDefault("observability.metrics_addr", "")
}

// validateConfig checks semantic constraints the schema cannot express.
func validateConfig(config *Config) error {
	if config.Corpus.MaxNames <= 0 {
		return ErrInvalidMaxNames
	}

	if config.Corpus.MaxNameLength <= 0 {
		return ErrInvalidMaxNameLength
	}

	if config.Report.TopTokens <= 0 {
		return ErrInvalidTopTokens
	}

	switch config.Report.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, config.Report.Format)
	}

	if config.Observability.SampleRatio < 0 || config.Observability.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}
