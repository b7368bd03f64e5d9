// Package config loads the calculator configuration: the per-fuel
// efficiency constants and display options.
//
// Values are resolved in order: built-in defaults, optional YAML file,
// then AUTONOMY_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/fuel-autonomy-calculator/internal/autonomy"
)

// DefaultCurrencySymbol is shown in front of cost-per-km values.
const DefaultCurrencySymbol = "R$"

// Environment variables that override file values.
const (
	EnvEthanolKmPerLiter  = "AUTONOMY_ETHANOL_KM_PER_LITER"
	EnvGasolineKmPerLiter = "AUTONOMY_GASOLINE_KM_PER_LITER"
	EnvCurrencySymbol     = "AUTONOMY_CURRENCY_SYMBOL"
)

var (
	// ErrInvalidConfig is returned when a loaded configuration fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrEmptyConfig is returned by LoadStrict for an empty or whitespace-only file.
	ErrEmptyConfig = errors.New("config file is empty")
)

// Config maps 1:1 to the YAML config file.
type Config struct {
	// EthanolKmPerLiter is the fixed ethanol efficiency (default 8.0).
	EthanolKmPerLiter float64 `yaml:"ethanol_km_per_liter"`

	// GasolineKmPerLiter is the fixed gasoline efficiency (default 10.0).
	GasolineKmPerLiter float64 `yaml:"gasoline_km_per_liter"`

	// CurrencySymbol prefixes cost values in text output.
	CurrencySymbol string `yaml:"currency_symbol"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		EthanolKmPerLiter:  autonomy.DefaultEthanolKmPerLiter,
		GasolineKmPerLiter: autonomy.DefaultGasolineKmPerLiter,
		CurrencySymbol:     DefaultCurrencySymbol,
	}
}

// Load reads the YAML file at path on top of the defaults and validates it.
// An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	return parse(path, data, cfg)
}

// LoadStrict is Load for reloads: an empty or whitespace-only file returns
// ErrEmptyConfig instead of the defaults. A file truncated in place by a
// writer reads as empty until the new content lands.
func LoadStrict(path string) (*Config, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("reading config %s: %w", path, ErrEmptyConfig)
	}
	return parse(path, data, Default())
}

func readConfigFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return data, nil
}

func parse(path string, data []byte, cfg *Config) (*Config, error) {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from AUTONOMY_* environment variables.
// Unparsable or non-positive values are logged and ignored.
func (c *Config) ApplyEnv(logger zerolog.Logger) {
	c.EthanolKmPerLiter = envEfficiency(logger, EnvEthanolKmPerLiter, c.EthanolKmPerLiter)
	c.GasolineKmPerLiter = envEfficiency(logger, EnvGasolineKmPerLiter, c.GasolineKmPerLiter)

	if sym := strings.TrimSpace(os.Getenv(EnvCurrencySymbol)); sym != "" {
		c.CurrencySymbol = sym
	}

	logger.Debug().
		Float64("ethanol_km_per_liter", c.EthanolKmPerLiter).
		Float64("gasoline_km_per_liter", c.GasolineKmPerLiter).
		Str("currency_symbol", c.CurrencySymbol).
		Msg("configuration applied")
}

// Validate rejects non-positive efficiency constants.
func (c *Config) Validate() error {
	if err := c.Efficiency().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Efficiency returns the efficiency constants as the calculator expects them.
func (c *Config) Efficiency() autonomy.Efficiency {
	return autonomy.Efficiency{
		EthanolKmPerLiter:  c.EthanolKmPerLiter,
		GasolineKmPerLiter: c.GasolineKmPerLiter,
	}
}

func envEfficiency(logger zerolog.Logger, name string, current float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return current
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !(v > 0) {
		logger.Warn().
			Str("env_var", name).
			Str("value", raw).
			Float64("using", current).
			Msg("invalid efficiency override, keeping previous value")
		return current
	}
	return v
}
