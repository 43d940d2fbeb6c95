package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Input formats understood by the source layer.
const (
	FormatSections = "sections"
	FormatSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	InputFormat string  `yaml:"input_format"` // sections | sqlite
	InputPath   string  `yaml:"input_path"`   // "-" or empty means stdin (sections only)
	OutputPath  string  `yaml:"output_path"`  // "-" or empty means stdout
	Radius      float64 `yaml:"radius_degrees"`
	Workers     int     `yaml:"workers"`  // 0 means one per CPU
	Schedule    string  `yaml:"schedule"` // cron spec; empty means one-shot
	MetricsPath string  `yaml:"metrics_path"`
	LogLevel    string  `yaml:"log_level"`
}

// Defaults returns a Config with all default values set.
func Defaults() Config {
	return Config{
		InputFormat: FormatSections,
		InputPath:   "-",
		OutputPath:  "-",
		Radius:      1.0,
		Workers:     0,
		LogLevel:    "info",
	}
}

// Load builds the effective configuration: defaults, then an optional YAML
// file, then STAYSEARCH_* environment variables. A .env file in the working
// directory is picked up first if present. An empty path skips the file
// (the file must exist when a path is given).
func Load(path string) (Config, error) {
	// Missing .env is fine; it only seeds the environment.
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("STAYSEARCH_INPUT_FORMAT"); v != "" {
		c.InputFormat = v
	}
	if v := os.Getenv("STAYSEARCH_INPUT"); v != "" {
		c.InputPath = v
	}
	if v := os.Getenv("STAYSEARCH_OUTPUT"); v != "" {
		c.OutputPath = v
	}
	if v := os.Getenv("STAYSEARCH_RADIUS"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid STAYSEARCH_RADIUS %q: %w", v, err)
		}
		c.Radius = r
	}
	if v := os.Getenv("STAYSEARCH_WORKERS"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid STAYSEARCH_WORKERS %q: %w", v, err)
		}
		c.Workers = w
	}
	if v := os.Getenv("STAYSEARCH_SCHEDULE"); v != "" {
		c.Schedule = v
	}
	if v := os.Getenv("STAYSEARCH_METRICS_PATH"); v != "" {
		c.MetricsPath = v
	}
	if v := os.Getenv("STAYSEARCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks that field values are usable together.
func (c *Config) Validate() error {
	switch c.InputFormat {
	case FormatSections, FormatSQLite:
	default:
		return fmt.Errorf("invalid input_format %q: must be %s or %s", c.InputFormat, FormatSections, FormatSQLite)
	}

	if c.InputFormat == FormatSQLite && c.InputIsStdin() {
		return fmt.Errorf("sqlite input requires input_path")
	}

	if c.Radius <= 0 {
		return fmt.Errorf("radius_degrees must be positive, got %g", c.Radius)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}

	if c.Schedule != "" && c.InputIsStdin() {
		return fmt.Errorf("scheduled runs need a file-backed input, not stdin")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	return nil
}

// InputIsStdin reports whether input comes from stdin.
func (c *Config) InputIsStdin() bool {
	return c.InputPath == "" || c.InputPath == "-"
}

// OutputIsStdout reports whether results go to stdout.
func (c *Config) OutputIsStdout() bool {
	return c.OutputPath == "" || c.OutputPath == "-"
}
