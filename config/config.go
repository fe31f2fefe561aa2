package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds solver and curve construction parameters.
type Config struct {
	// ConvergenceTolerance bounds the largest node change between bootstrap passes.
	// Each pillar is solved to a hundredth of it.
	ConvergenceTolerance float64 `yaml:"convergence_tolerance"`

	// MaxBootstrapIterations is the maximum solver iterations per pillar.
	MaxBootstrapIterations int `yaml:"max_bootstrap_iterations"`

	// MaxBootstrapPasses bounds the full re-solve passes a non-local interpolation needs.
	MaxBootstrapPasses int `yaml:"max_bootstrap_passes"`

	// MinForwardRate and MaxForwardRate bound the continuously compounded forward
	// between consecutive pillars; they set the solver bracket.
	MinForwardRate float64 `yaml:"min_forward_rate"`
	MaxForwardRate float64 `yaml:"max_forward_rate"`

	// Interpolation is LOG_CUBIC or LOG_LINEAR.
	Interpolation string `yaml:"interpolation"`

	// AllowExtrapolation lets built curves answer queries past the last pillar.
	AllowExtrapolation bool `yaml:"allow_extrapolation"`

	// CurveDayCount is the time axis of the curve, ACT/365F by market convention.
	CurveDayCount string `yaml:"curve_day_count"`

	// MinorUnitPlaces is the number of decimals amounts are rounded to when reported in
	// currency minor units.
	MinorUnitPlaces int32 `yaml:"minor_unit_places"`

	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	ConvergenceTolerance:   1e-12,
	MaxBootstrapIterations: 100,
	MaxBootstrapPasses:     50,
	MinForwardRate:         -0.05,
	MaxForwardRate:         2.0,
	Interpolation:          "LOG_CUBIC",
	AllowExtrapolation:     false,
	CurveDayCount:          "ACT/365F",
	MinorUnitPlaces:        2,
	LogLevel:               "info",
}

var (
	mu  sync.RWMutex
	cfg = DefaultConfig
)

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	mu.Lock()
	cfg = c
	mu.Unlock()
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Validate checks that the solver settings can produce a bracket.
func (c Config) Validate() error {
	if c.ConvergenceTolerance <= 0 {
		return fmt.Errorf("config: convergence_tolerance must be positive, got %g", c.ConvergenceTolerance)
	}
	if c.MaxBootstrapIterations <= 0 || c.MaxBootstrapPasses <= 0 {
		return fmt.Errorf("config: iteration bounds must be positive")
	}
	if c.MinForwardRate >= c.MaxForwardRate {
		return fmt.Errorf("config: min_forward_rate %g must be below max_forward_rate %g", c.MinForwardRate, c.MaxForwardRate)
	}
	switch strings.ToUpper(c.Interpolation) {
	case "LOG_CUBIC", "LOG_LINEAR":
	default:
		return fmt.Errorf("config: unknown interpolation %q", c.Interpolation)
	}
	return nil
}

// Load reads a YAML file over DefaultConfig. A missing file yields the defaults.
func Load(path string) (Config, error) {
	c := DefaultConfig
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// FromEnv applies TERMSTRUCT_* environment overrides to base. Files in envFiles are
// loaded first with godotenv; missing files are ignored.
func FromEnv(base Config, envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return Config{}, fmt.Errorf("load env file %s: %w", f, err)
			}
		}
	}

	c := base
	c.ConvergenceTolerance = getEnvAsFloat("TERMSTRUCT_TOLERANCE", c.ConvergenceTolerance)
	c.MaxBootstrapIterations = getEnvAsInt("TERMSTRUCT_MAX_ITERATIONS", c.MaxBootstrapIterations)
	c.MaxBootstrapPasses = getEnvAsInt("TERMSTRUCT_MAX_PASSES", c.MaxBootstrapPasses)
	c.MinForwardRate = getEnvAsFloat("TERMSTRUCT_MIN_FORWARD", c.MinForwardRate)
	c.MaxForwardRate = getEnvAsFloat("TERMSTRUCT_MAX_FORWARD", c.MaxForwardRate)
	c.Interpolation = getEnv("TERMSTRUCT_INTERPOLATION", c.Interpolation)
	c.AllowExtrapolation = getEnvAsBool("TERMSTRUCT_EXTRAPOLATE", c.AllowExtrapolation)
	c.CurveDayCount = getEnv("TERMSTRUCT_CURVE_DAY_COUNT", c.CurveDayCount)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
