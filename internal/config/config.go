package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the recordex server configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Engine    EngineConfig    `yaml:"engine"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Events    EventsConfig    `yaml:"events"`
	Storage   StorageConfig   `yaml:"storage"`
	Seed      SeedConfig      `yaml:"seed"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RateLimitConfig holds per-client token bucket settings. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// EngineConfig holds search engine tunables.
type EngineConfig struct {
	HistoryCap         int `yaml:"history_cap"`
	DefaultPageSize    int `yaml:"default_page_size"`
	MaxPageSize        int `yaml:"max_page_size"`
	FuzzyDistance      int `yaml:"fuzzy_distance"`
	MaxFuzzyDistance   int `yaml:"max_fuzzy_distance"`
	MinFuzzyTermLength int `yaml:"min_fuzzy_term_length"`
	SuggestionLimit    int `yaml:"suggestion_limit"`
	LatencyWindow      int `yaml:"latency_window"`
	TopQueries         int `yaml:"top_queries"`
	ZeroResultQueries  int `yaml:"zero_result_queries"`
	MaxBatchSize       int `yaml:"max_batch_size"`
	ReindexWorkers     int `yaml:"reindex_workers"`
}

// AnalysisConfig points at optional lexicon and schema catalog overrides.
// Empty paths use the embedded defaults.
type AnalysisConfig struct {
	LexiconPath   string `yaml:"lexicon_path"`
	SchemaPath    string `yaml:"schema_path"`
	DefaultLocale string `yaml:"default_locale"`
}

// EventsConfig selects the external event sink.
type EventsConfig struct {
	Driver           string   `yaml:"driver"` // none (default), redis
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Channel          string   `yaml:"channel"`
	Buffer           int      `yaml:"buffer"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	SavedSearches SavedSearchStorageConfig `yaml:"saved_searches"`
}

// SavedSearchStorageConfig selects the saved search store.
type SavedSearchStorageConfig struct {
	Driver string `yaml:"driver"` // memory (default), badger
	Path   string `yaml:"path"`
}

// SeedConfig points at an optional fixture indexed at startup.
type SeedConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) + 1
	}

	e := &c.Engine
	setDefault(&e.HistoryCap, 100)
	setDefault(&e.DefaultPageSize, 20)
	setDefault(&e.MaxPageSize, 100)
	setDefault(&e.FuzzyDistance, 2)
	setDefault(&e.MaxFuzzyDistance, 3)
	setDefault(&e.MinFuzzyTermLength, 4)
	setDefault(&e.SuggestionLimit, 5)
	setDefault(&e.LatencyWindow, 1000)
	setDefault(&e.TopQueries, 10)
	setDefault(&e.ZeroResultQueries, 20)
	setDefault(&e.MaxBatchSize, 1000)
	setDefault(&e.ReindexWorkers, 4)

	if c.Events.Driver == "" {
		c.Events.Driver = "none"
	}
	if c.Events.Channel == "" {
		c.Events.Channel = "recordex.events"
	}
	setDefault(&c.Events.Buffer, 256)
	setDefault(&c.Events.ReadinessTimeout, 10)
	if c.Storage.SavedSearches.Driver == "" {
		c.Storage.SavedSearches.Driver = "memory"
	}
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must be >= 0, got %v", c.RateLimit.RPS)
	}
	if c.Engine.DefaultPageSize > c.Engine.MaxPageSize {
		return fmt.Errorf("engine.default_page_size (%d) exceeds engine.max_page_size (%d)",
			c.Engine.DefaultPageSize, c.Engine.MaxPageSize)
	}
	if c.Engine.FuzzyDistance > c.Engine.MaxFuzzyDistance {
		return fmt.Errorf("engine.fuzzy_distance (%d) exceeds engine.max_fuzzy_distance (%d)",
			c.Engine.FuzzyDistance, c.Engine.MaxFuzzyDistance)
	}
	switch c.Events.Driver {
	case "none":
	case "redis":
		if len(c.Events.Addrs) == 0 {
			return fmt.Errorf("events.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("events.driver must be \"none\" or \"redis\", got %q", c.Events.Driver)
	}
	switch c.Storage.SavedSearches.Driver {
	case "memory":
	case "badger":
		if c.Storage.SavedSearches.Path == "" {
			return fmt.Errorf("storage.saved_searches.path is required for the badger driver")
		}
	default:
		return fmt.Errorf("storage.saved_searches.driver must be \"memory\" or \"badger\", got %q",
			c.Storage.SavedSearches.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
