// Package config loads application configuration: compiled-in defaults,
// overlaid by an optional YAML file, overlaid by PHARMAFLOW_* environment
// variables. The merged result is validated before use.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"pharmaflow/internal/dataset"
	"pharmaflow/internal/planner"
)

type Config struct {
	Server    ServerConfig            `yaml:"server"`
	Planner   PlannerConfig           `yaml:"planner"`
	Solver    SolverConfig            `yaml:"solver"`
	Generator dataset.GeneratorConfig `yaml:"generator"`
	Logging   LoggingConfig           `yaml:"logging"`
}

type ServerConfig struct {
	Port                int `yaml:"port"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	BodyLimitMB         int `yaml:"body_limit_mb"`
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

func (c ServerConfig) BodyLimitBytes() int {
	return c.BodyLimitMB * 1024 * 1024
}

type PlannerConfig struct {
	UltraColdSurcharge float64       `yaml:"ultra_cold_surcharge"`
	ShortageAllowance  float64       `yaml:"shortage_allowance"`
	Epsilon            float64       `yaml:"epsilon"`
	Weights            WeightsConfig `yaml:"objective_weights"`
}

type WeightsConfig struct {
	Transport float64 `yaml:"transport"`
	Holding   float64 `yaml:"holding"`
	Shortage  float64 `yaml:"shortage"`
	Waste     float64 `yaml:"waste"`
}

// ToPlanner converts the file-facing shape into the planner's config struct.
func (c PlannerConfig) ToPlanner() planner.Config {
	return planner.Config{
		UltraColdSurcharge: c.UltraColdSurcharge,
		ShortageAllowance:  c.ShortageAllowance,
		Epsilon:            c.Epsilon,
		Weights: planner.Weights{
			Transport: c.Weights.Transport,
			Holding:   c.Weights.Holding,
			Shortage:  c.Weights.Shortage,
			Waste:     c.Weights.Waste,
		},
	}
}

type SolverConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Tolerance      float64 `yaml:"tolerance"`
}

func (c SolverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                8080,
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
			BodyLimitMB:         4,
		},
		Planner: PlannerConfig{
			UltraColdSurcharge: 3.0,
			ShortageAllowance:  0.05,
			Epsilon:            1e-6,
			Weights:            WeightsConfig{Transport: 1, Holding: 1, Shortage: 1, Waste: 1},
		},
		Solver: SolverConfig{
			TimeoutSeconds: 30,
			Tolerance:      1e-7,
		},
		Generator: dataset.DefaultGeneratorConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the effective configuration. path may be empty, meaning no
// file overlay; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PHARMAFLOW_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PHARMAFLOW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PHARMAFLOW_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("PHARMAFLOW_SOLVER_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Solver.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("PHARMAFLOW_ULTRA_COLD_SURCHARGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Planner.UltraColdSurcharge = f
		}
	}
	if v := os.Getenv("PHARMAFLOW_SHORTAGE_ALLOWANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Planner.ShortageAllowance = f
		}
	}
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds <= 0 || c.Server.WriteTimeoutSeconds <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("server body_limit_mb must be positive")
	}
	if err := c.Planner.ToPlanner().Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if c.Solver.TimeoutSeconds <= 0 {
		return fmt.Errorf("solver timeout_seconds must be positive")
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("solver tolerance must be positive")
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be json or console, got %q", c.Logging.Format)
	}
	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging level %q: %w", c.Logging.Level, err)
	}
	return nil
}
