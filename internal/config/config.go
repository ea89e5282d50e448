// Package config provides configuration loading for figure-extractor.
// Supports YAML files, .env files, environment variables and CLI overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/figure-extractor/internal/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FIGURE_EXTRACTOR_"

// Config holds all configuration for figure-extractor.
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	Export    ExportConfig    `yaml:"export"`
	Detection DetectionConfig `yaml:"detection"`
	Document  DocumentConfig  `yaml:"document"`
	Log       LogConfig       `yaml:"log"`
}

// RenderConfig holds on-screen rendering settings.
type RenderConfig struct {
	DisplayDPI float64 `yaml:"display_dpi"`
}

// ExportConfig holds figure export settings.
type ExportConfig struct {
	DPI          float64 `yaml:"dpi"`
	ManifestName string  `yaml:"manifest_name"`
	Grayscale    bool    `yaml:"grayscale"`
	Scale        float64 `yaml:"scale"`
}

// DetectionConfig holds region suggestion settings.
type DetectionConfig struct {
	Threshold   int  `yaml:"threshold"` // 0-255; darker pixels are ink
	CellSize    int  `yaml:"cell_size"`
	MinArea     int  `yaml:"min_area"`
	ExcludeText bool `yaml:"exclude_text"`
}

// DocumentConfig holds source document settings.
type DocumentConfig struct {
	Validate bool `yaml:"validate"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load reads configuration from an optional YAML file and applies .env and
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			DisplayDPI: 150,
		},
		Export: ExportConfig{
			DPI:          150,
			ManifestName: "figures_metadata.json",
			Scale:        1,
		},
		Detection: DetectionConfig{
			Threshold: 200,
			CellSize:  8,
			MinArea:   5000,
		},
		Document: DocumentConfig{
			Validate: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Render.DisplayDPI < 18 || c.Render.DisplayDPI > 1200 {
		return fmt.Errorf("display_dpi must be between 18 and 1200, got %g", c.Render.DisplayDPI)
	}

	if c.Export.DPI < 18 || c.Export.DPI > 1200 {
		return fmt.Errorf("export dpi must be between 18 and 1200, got %g", c.Export.DPI)
	}

	if c.Export.Scale <= 0 || c.Export.Scale > 8 {
		return fmt.Errorf("export scale must be in (0, 8], got %g", c.Export.Scale)
	}

	name := c.Export.ManifestName
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid manifest_name: %q", name)
	}

	if c.Detection.Threshold < 0 || c.Detection.Threshold > 255 {
		return fmt.Errorf("detection threshold must be between 0 and 255, got %d", c.Detection.Threshold)
	}

	if c.Detection.CellSize < 1 {
		return fmt.Errorf("detection cell_size must be positive, got %d", c.Detection.CellSize)
	}

	if c.Detection.MinArea < 0 {
		return fmt.Errorf("detection min_area must not be negative, got %d", c.Detection.MinArea)
	}

	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// applyEnvOverrides applies FIGURE_EXTRACTOR_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	floats := map[string]*float64{
		"DISPLAY_DPI":  &cfg.Render.DisplayDPI,
		"EXPORT_DPI":   &cfg.Export.DPI,
		"EXPORT_SCALE": &cfg.Export.Scale,
	}
	for key, dst := range floats {
		if v := getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"DETECT_THRESHOLD": &cfg.Detection.Threshold,
		"DETECT_CELL_SIZE": &cfg.Detection.CellSize,
		"DETECT_MIN_AREA":  &cfg.Detection.MinArea,
	}
	for key, dst := range ints {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"EXPORT_GRAYSCALE":    &cfg.Export.Grayscale,
		"VALIDATE_DOCUMENT":   &cfg.Document.Validate,
		"DETECT_EXCLUDE_TEXT": &cfg.Detection.ExcludeText,
	}
	for key, dst := range bools {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	if v := getenv("MANIFEST_NAME"); v != "" {
		cfg.Export.ManifestName = v
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}
