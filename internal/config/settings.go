package config

import (
	"fmt"
	"strings"

	"shortrate-sim/internal/logger"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RATESIM_LOGGING_LEVEL=debug.
const EnvPrefix = "RATESIM"

// Settings are runtime knobs for the binaries, separate from the scenario.
type Settings struct {
	Logging    LoggingSettings    `mapstructure:"logging"`
	Simulation SimulationSettings `mapstructure:"simulation"`
	Output     OutputSettings     `mapstructure:"output"`
	Metrics    MetricsSettings    `mapstructure:"metrics"`
}

type LoggingSettings struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type SimulationSettings struct {
	// Workers bounds path-level parallelism; 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers"`
}

type OutputSettings struct {
	Dir string `mapstructure:"dir"`
	// Places is the decimal rounding of reported rates and prices.
	Places int `mapstructure:"places"`
	// PathColumns is how many individual paths the paths CSV carries.
	PathColumns int `mapstructure:"path_columns"`
}

type MetricsSettings struct {
	// Textfile, when set, receives the Prometheus metrics on exit.
	Textfile  string `mapstructure:"textfile"`
	Namespace string `mapstructure:"namespace"`
}

// LoadSettings reads settings from path (optional) and the environment.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)

	v.SetDefault("simulation.workers", 0)

	v.SetDefault("output.dir", "./out")
	v.SetDefault("output.places", 8)
	v.SetDefault("output.path_columns", 10)

	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.namespace", "ratesim")
}

func (s *Settings) Validate() error {
	if _, err := logger.ParseLevel(s.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(s.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", s.Logging.Format)
	}
	if s.Simulation.Workers < 0 {
		return fmt.Errorf("simulation.workers must be >= 0")
	}
	if s.Output.Places < 1 || s.Output.Places > 16 {
		return fmt.Errorf("output.places must be between 1 and 16")
	}
	if s.Output.PathColumns < 0 {
		return fmt.Errorf("output.path_columns must be >= 0")
	}
	return nil
}

// LoggerConfig maps the logging section onto the logger package.
func (s LoggingSettings) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      s.Level,
		Format:     s.Format,
		File:       s.File,
		MaxSizeMB:  s.MaxSizeMB,
		MaxBackups: s.MaxBackups,
	}
}
