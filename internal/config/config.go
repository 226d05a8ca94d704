// Package config loads kcal-sync settings from a YAML file, an optional .env
// file and KCAL_SYNC_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	BaseURL           string        `yaml:"base_url,omitempty"`
	Token             string        `yaml:"token,omitempty"`
	User              string        `yaml:"user,omitempty"`
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty"`
	Burst             int           `yaml:"burst,omitempty"`
	TimeoutSeconds    int           `yaml:"timeout_seconds,omitempty"`
	LogLevel          string        `yaml:"log_level,omitempty"`
	KeepStaleOnError  bool          `yaml:"keep_stale_on_error,omitempty"`
	FoodSources       []string      `yaml:"food_sources,omitempty"`
	USDAAPIKey        string        `yaml:"usda_api_key,omitempty"`
	OpenFoodFactsURL  string        `yaml:"openfoodfacts_url,omitempty"`
	MatchThreshold    float64       `yaml:"match_threshold,omitempty"`
	Catalog           CatalogConfig `yaml:"catalog,omitempty"`
}

// CatalogConfig names the "popular" categories loaded into the catalog cache.
type CatalogConfig struct {
	Alcohol  []string `yaml:"alcohol,omitempty"`
	Caffeine []string `yaml:"caffeine,omitempty"`
}

var (
	defaultAlcoholCategories  = []string{"beer", "wine", "spirits", "cocktail", "cider"}
	defaultCaffeineCategories = []string{"coffee", "tea", "energy_drink", "soda"}
	defaultFoodSources        = []string{"backend"}
)

// Load reads the config file. A missing file yields an empty config.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	// the file may hold the API token
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

type envOverlay struct {
	BaseURL          string  `env:"KCAL_SYNC_BASE_URL"`
	Token            string  `env:"KCAL_SYNC_TOKEN"`
	User             string  `env:"KCAL_SYNC_USER"`
	RPS              float64 `env:"KCAL_SYNC_RPS"`
	Burst            int     `env:"KCAL_SYNC_BURST"`
	TimeoutSeconds   int     `env:"KCAL_SYNC_TIMEOUT_SECONDS"`
	LogLevel         string  `env:"KCAL_SYNC_LOG_LEVEL"`
	KeepStaleOnError string  `env:"KCAL_SYNC_KEEP_STALE_ON_ERROR"`
	FoodSources      string  `env:"KCAL_SYNC_FOOD_SOURCES"`
	USDAAPIKey       string  `env:"USDA_API_KEY"`
	OpenFoodFactsURL string  `env:"KCAL_SYNC_OFF_URL"`
}

// ApplyEnv loads envFile when it exists (without overriding variables that
// are already set) and then overlays every KCAL_SYNC_* variable onto cfg.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	var env envOverlay
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("decoding environment: %w", err)
	}

	if env.BaseURL != "" {
		cfg.BaseURL = env.BaseURL
	}
	if env.Token != "" {
		cfg.Token = env.Token
	}
	if env.User != "" {
		cfg.User = env.User
	}
	if env.RPS > 0 {
		cfg.RequestsPerSecond = env.RPS
	}
	if env.Burst > 0 {
		cfg.Burst = env.Burst
	}
	if env.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = env.TimeoutSeconds
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.KeepStaleOnError != "" {
		v, err := strconv.ParseBool(env.KeepStaleOnError)
		if err != nil {
			return fmt.Errorf("invalid KCAL_SYNC_KEEP_STALE_ON_ERROR %q", env.KeepStaleOnError)
		}
		cfg.KeepStaleOnError = v
	}
	if env.FoodSources != "" {
		cfg.FoodSources = SplitList(env.FoodSources)
	}
	if env.USDAAPIKey != "" {
		cfg.USDAAPIKey = env.USDAAPIKey
	}
	if env.OpenFoodFactsURL != "" {
		cfg.OpenFoodFactsURL = env.OpenFoodFactsURL
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetTimeout returns the HTTP timeout with a default of 12 seconds
func (c *Config) GetTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 12 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetBurst defaults to 1 when throttling is enabled.
func (c *Config) GetBurst() int {
	if c.Burst <= 0 {
		return 1
	}
	return c.Burst
}

func (c *Config) GetLogLevel() string {
	if strings.TrimSpace(c.LogLevel) == "" {
		return "info"
	}
	return c.LogLevel
}

func (c *Config) GetFoodSources() []string {
	if len(c.FoodSources) == 0 {
		return append([]string(nil), defaultFoodSources...)
	}
	return c.FoodSources
}

func (c *Config) GetAlcoholCategories() []string {
	if len(c.Catalog.Alcohol) == 0 {
		return append([]string(nil), defaultAlcoholCategories...)
	}
	return c.Catalog.Alcohol
}

func (c *Config) GetCaffeineCategories() []string {
	if len(c.Catalog.Caffeine) == 0 {
		return append([]string(nil), defaultCaffeineCategories...)
	}
	return c.Catalog.Caffeine
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("user is not configured (set --user, KCAL_SYNC_USER or user in the config file)")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0")
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be between 0 and 1")
	}
	return nil
}
