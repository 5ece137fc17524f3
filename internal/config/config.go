package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the indexflow gateway configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Index   IndexConfig   `yaml:"index"`
	Cache   CacheConfig   `yaml:"cache"`
	Tasks   TasksConfig   `yaml:"tasks"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
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

// IndexConfig holds the upstream index service settings.
// Hosts is used for both pools unless ReadHosts/WriteHosts are set.
type IndexConfig struct {
	Hosts            []string          `yaml:"hosts"`
	ReadHosts        []string          `yaml:"read_hosts"`
	WriteHosts       []string          `yaml:"write_hosts"`
	Headers          map[string]string `yaml:"headers"`
	SearchTimeoutSec int               `yaml:"search_timeout_sec"`
	WriteTimeoutSec  int               `yaml:"write_timeout_sec"`
}

// CacheConfig holds search response cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// TasksConfig holds the task polling schedule.
type TasksConfig struct {
	BaseDelayMS int `yaml:"base_delay_ms"`
	MaxDelayMS  int `yaml:"max_delay_ms"`
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
		c.HTTP.WriteTimeoutSec = 120 // delete-by-query waits for tasks
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.Index.ReadHosts) == 0 {
		c.Index.ReadHosts = c.Index.Hosts
	}
	if len(c.Index.WriteHosts) == 0 {
		c.Index.WriteHosts = c.Index.Hosts
	}
	if c.Index.SearchTimeoutSec <= 0 {
		c.Index.SearchTimeoutSec = 5
	}
	if c.Index.WriteTimeoutSec <= 0 {
		c.Index.WriteTimeoutSec = 30
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 120
	}
	if c.Tasks.BaseDelayMS <= 0 {
		c.Tasks.BaseDelayMS = 100
	}
	if c.Tasks.MaxDelayMS <= 0 {
		c.Tasks.MaxDelayMS = 5000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Index.ReadHosts) == 0 && len(c.Index.WriteHosts) == 0 {
		return fmt.Errorf("index.hosts is required")
	}
	for _, h := range append(slices.Clone(c.Index.ReadHosts), c.Index.WriteHosts...) {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("index hosts must not be empty")
		}
	}
	if c.Tasks.BaseDelayMS > c.Tasks.MaxDelayMS {
		return fmt.Errorf("tasks.base_delay_ms (%d) must not exceed tasks.max_delay_ms (%d)",
			c.Tasks.BaseDelayMS, c.Tasks.MaxDelayMS)
	}
	return nil
}

// CacheTTL returns the cache time-to-live.
func (c CacheConfig) CacheTTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// BaseDelay returns the first polling delay.
func (c TasksConfig) BaseDelay() time.Duration { return time.Duration(c.BaseDelayMS) * time.Millisecond }

// MaxDelay returns the polling delay cap.
func (c TasksConfig) MaxDelay() time.Duration { return time.Duration(c.MaxDelayMS) * time.Millisecond }

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
