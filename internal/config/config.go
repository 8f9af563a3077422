package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Events      EventsConfig      `yaml:"events"`
	Engine      EngineConfig      `yaml:"engine"`
	Sensitivity SensitivityConfig `yaml:"sensitivity"`
	Jobs        JobsConfig        `yaml:"jobs"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
	// RateLimit is requests per minute per client. Zero disables limiting.
	RateLimit int `yaml:"rate_limit"`
}

// DatabaseConfig selects the run archive. postgres:// and postgresql://
// URLs use PostgreSQL, sqlite://<path> uses a local SQLite file, and an
// empty URL disables persistence.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Driver returns "postgres", "sqlite" or "" for the configured URL.
func (d DatabaseConfig) Driver() string {
	switch {
	case d.URL == "":
		return ""
	case strings.HasPrefix(d.URL, "postgres://"), strings.HasPrefix(d.URL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(d.URL, "sqlite://"):
		return "sqlite"
	}
	return "unknown"
}

// SQLitePath strips the sqlite:// prefix.
func (d DatabaseConfig) SQLitePath() string {
	return strings.TrimPrefix(d.URL, "sqlite://")
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type EngineConfig struct {
	ConsistencyThreshold   float64 `yaml:"consistency_threshold"`
	WeightTolerance        float64 `yaml:"weight_tolerance"`
	TieTolerance           float64 `yaml:"tie_tolerance"`
	RatingMin              float64 `yaml:"rating_min"`
	RatingMax              float64 `yaml:"rating_max"`
	Synthesis              string  `yaml:"synthesis"`
	ConsistencyDefuzzifier string  `yaml:"consistency_defuzzifier"`
}

type SensitivityConfig struct {
	Range                   float64 `yaml:"range"`
	Steps                   int     `yaml:"steps"`
	Workers                 int     `yaml:"workers"`
	MonteCarloIterations    int     `yaml:"monte_carlo_iterations"`
	MonteCarloConcentration float64 `yaml:"monte_carlo_concentration"`
}

type JobsConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
	TimeoutMs int `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.Jobs.TimeoutMs) * time.Millisecond
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
			RateLimit:   120,
		},
		Engine: EngineConfig{
			ConsistencyThreshold:   0.1,
			WeightTolerance:        1e-6,
			TieTolerance:           1e-9,
			RatingMin:              0,
			RatingMax:              10,
			Synthesis:              "geometric",
			ConsistencyDefuzzifier: "centroid",
		},
		Sensitivity: SensitivityConfig{
			Range:                   0.2,
			Steps:                   51,
			Workers:                 0,
			MonteCarloIterations:    1000,
			MonteCarloConcentration: 0.05,
		},
		Jobs: JobsConfig{
			Workers:   2,
			QueueSize: 32,
			TimeoutMs: 300000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engines cannot run with.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		add("server.metrics_port %d out of range", c.Server.MetricsPort)
	}
	if c.Database.Driver() == "unknown" {
		add("database.url must start with postgres://, postgresql:// or sqlite://")
	}
	if c.Database.Driver() == "sqlite" && c.Database.SQLitePath() == "" {
		add("database.url sqlite:// needs a file path")
	}

	e := c.Engine
	if e.ConsistencyThreshold <= 0 {
		add("engine.consistency_threshold must be positive")
	}
	if e.WeightTolerance <= 0 || e.WeightTolerance >= 0.1 {
		add("engine.weight_tolerance must be in (0, 0.1)")
	}
	if e.TieTolerance < 0 {
		add("engine.tie_tolerance must not be negative")
	}
	if e.RatingMax < e.RatingMin {
		add("engine.rating_max below rating_min")
	}
	switch e.Synthesis {
	case "geometric", "extent":
	default:
		add("engine.synthesis %q must be geometric or extent", e.Synthesis)
	}
	switch e.ConsistencyDefuzzifier {
	case "centroid", "modal":
	default:
		add("engine.consistency_defuzzifier %q must be centroid or modal", e.ConsistencyDefuzzifier)
	}

	s := c.Sensitivity
	if s.Range <= 0 || s.Range > 10 {
		add("sensitivity.range must be in (0, 10]")
	}
	if s.Steps < 3 || s.Steps%2 == 0 {
		add("sensitivity.steps must be odd and at least 3")
	}
	if s.Workers < 0 {
		add("sensitivity.workers must not be negative")
	}
	if s.MonteCarloIterations <= 0 {
		add("sensitivity.monte_carlo_iterations must be positive")
	}
	if s.MonteCarloConcentration <= 0 {
		add("sensitivity.monte_carlo_concentration must be positive")
	}

	if c.Jobs.Workers <= 0 {
		add("jobs.workers must be positive")
	}
	if c.Jobs.QueueSize <= 0 {
		add("jobs.queue_size must be positive")
	}
	if c.Jobs.TimeoutMs <= 0 {
		add("jobs.timeout_ms must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FUZZYRANK_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("FUZZYRANK_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("FUZZYRANK_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("FUZZYRANK_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("FUZZYRANK_NATS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("FUZZYRANK_CONSISTENCY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.ConsistencyThreshold = f
		}
	}
	if v := os.Getenv("FUZZYRANK_SYNTHESIS"); v != "" {
		cfg.Engine.Synthesis = v
	}
	if v := os.Getenv("FUZZYRANK_SENSITIVITY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sensitivity.Workers = n
		}
	}
	if v := os.Getenv("FUZZYRANK_JOB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Jobs.Workers = n
		}
	}
	if v := os.Getenv("FUZZYRANK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FUZZYRANK_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
