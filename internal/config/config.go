package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ValidationMode selects how incomplete fact directories are handled.
type ValidationMode string

const (
	// ValidateCrate skips a whole crate when any of its functions is incomplete.
	ValidateCrate ValidationMode = "crate"
	// ValidateFunction skips only the incomplete functions.
	ValidateFunction ValidationMode = "function"
)

const (
	dirName  = ".nllfacts"
	fileName = "config.yaml"
)

// Config holds all configuration for nllfacts
type Config struct {
	// WorkDir holds one directory per crate; used when no crates are given.
	WorkDir string `yaml:"work_dir" env:"NLLFACTS_WORK_DIR"`

	// Workers is the number of crates processed at once.
	Workers int `yaml:"workers" env:"NLLFACTS_WORKERS"`

	// Isolate runs every crate in its own child process.
	Isolate bool `yaml:"isolate" env:"NLLFACTS_ISOLATE"`

	// Address space limits applied to crate worker processes, e.g. "8GiB".
	MemorySoft string `yaml:"memory_soft" env:"NLLFACTS_MEMORY_SOFT"`
	MemoryHard string `yaml:"memory_hard" env:"NLLFACTS_MEMORY_HARD"`

	Validation ValidationMode `yaml:"validation" env:"NLLFACTS_VALIDATION"`

	// CacheDir stores computed rows per crate fingerprint. Empty disables caching.
	CacheDir string `yaml:"cache_dir" env:"NLLFACTS_CACHE_DIR"`

	// Exclude lists crate name glob patterns that are never aggregated.
	Exclude []string `yaml:"exclude" env:"NLLFACTS_EXCLUDE"`

	// Logging
	LogLevel string `yaml:"log_level" env:"NLLFACTS_LOG_LEVEL"`
	JSONLog  bool   `yaml:"json_log" env:"NLLFACTS_JSON_LOG"`
	Verbose  bool   `yaml:"verbose" env:"NLLFACTS_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkDir:    "work",
		Workers:    1,
		Isolate:    false,
		MemorySoft: "8GiB",
		MemoryHard: "10GiB",
		Validation: ValidateCrate,
		CacheDir:   "",
		LogLevel:   "info",
	}
}

// GlobalConfigPath returns the global config file path (~/.nllfacts/config.yaml)
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(dirName, fileName)
	}
	return filepath.Join(home, dirName, fileName)
}

// ProjectConfigPath returns the project-level config file path (./.nllfacts/config.yaml)
func ProjectConfigPath() string {
	return filepath.Join(dirName, fileName)
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables (including a ./.env file)
// 2. Project-level config (./.nllfacts/config.yaml)
// 3. Global config (~/.nllfacts/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
		if err := mergeFile(cfg, path, false); err != nil {
			return nil, err
		}
	}

	return finish(cfg)
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := mergeFile(cfg, path, true); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	// Variables already set in the environment win over .env entries.
	_ = godotenv.Load()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NLLFACTS_WORK_DIR"); v != "" {
		cfg.WorkDir = v
	}
	if v := os.Getenv("NLLFACTS_WORKERS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("NLLFACTS_ISOLATE"); v != "" {
		cfg.Isolate = parseBool(v)
	}
	if v := os.Getenv("NLLFACTS_MEMORY_SOFT"); v != "" {
		cfg.MemorySoft = v
	}
	if v := os.Getenv("NLLFACTS_MEMORY_HARD"); v != "" {
		cfg.MemoryHard = v
	}
	if v := os.Getenv("NLLFACTS_VALIDATION"); v != "" {
		cfg.Validation = ValidationMode(v)
	}
	if v := os.Getenv("NLLFACTS_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("NLLFACTS_EXCLUDE"); v != "" {
		cfg.Exclude = splitList(v)
	}
	if v := os.Getenv("NLLFACTS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("NLLFACTS_JSON_LOG"); v != "" {
		cfg.JSONLog = parseBool(v)
	}
	if v := os.Getenv("NLLFACTS_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	switch c.Validation {
	case ValidateCrate, ValidateFunction:
	default:
		return fmt.Errorf("invalid validation: %s (must be 'crate' or 'function')", c.Validation)
	}

	soft, hard, err := c.MemoryLimits()
	if err != nil {
		return err
	}
	if hard != 0 && soft > hard {
		return fmt.Errorf("memory_soft (%s) exceeds memory_hard (%s)", c.MemorySoft, c.MemoryHard)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	return nil
}

// MemoryLimits parses MemorySoft and MemoryHard into bytes. An empty value
// means no limit and parses as 0.
func (c *Config) MemoryLimits() (soft, hard uint64, err error) {
	if soft, err = parseSize("memory_soft", c.MemorySoft); err != nil {
		return 0, 0, err
	}
	if hard, err = parseSize("memory_hard", c.MemoryHard); err != nil {
		return 0, 0, err
	}
	return soft, hard, nil
}

func parseSize(field, v string) (uint64, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	return n, nil
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
