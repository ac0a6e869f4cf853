package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flairscope/flairscope/internal/faults"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Reddit   Reddit   `yaml:"reddit"`
	Scrape   Scrape   `yaml:"scrape"`
	Analysis Analysis `yaml:"analysis"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
}

type Reddit struct {
	ClientIDEnv     string `yaml:"client_id_env"`
	ClientSecretEnv string `yaml:"client_secret_env"`
	UserAgent       string `yaml:"user_agent"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type Scrape struct {
	BatchSize  int `yaml:"batch_size"`
	MaxWorkers int `yaml:"max_workers"`
}

type Analysis struct {
	ViralPercentile float64 `yaml:"viral_percentile"`
	MinPosts        int     `yaml:"min_posts"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

// ConfigDir returns the XDG config directory for flairscope.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "flairscope")
}

// DataDir returns the XDG data directory for flairscope.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "flairscope")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/flairscope/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	// No file anywhere: the embedded defaults are enough to run.
	return "", nil
}

// Load reads and parses a config YAML file. An empty path loads the
// embedded defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Reddit: Reddit{
			ClientIDEnv:     "REDDIT_CLIENT_ID",
			ClientSecretEnv: "REDDIT_CLIENT_SECRET",
			UserAgent:       "flairscope/1.0 (flair analytics)",
			TimeoutSeconds:  30,
		},
		Scrape: Scrape{
			BatchSize:  100,
			MaxWorkers: 4,
		},
		Analysis: Analysis{
			ViralPercentile: 90,
			MinPosts:        5,
		},
		Server: Server{Port: 8000},
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the tuning parameters.
func (c *Config) Validate() error {
	if c.Scrape.BatchSize < 1 {
		return faults.Configuration("scrape.batch_size must be at least 1, got %d", c.Scrape.BatchSize)
	}
	if c.Scrape.MaxWorkers < 1 {
		return faults.Configuration("scrape.max_workers must be at least 1, got %d", c.Scrape.MaxWorkers)
	}
	if c.Analysis.ViralPercentile < 0 || c.Analysis.ViralPercentile > 100 {
		return faults.Configuration("analysis.viral_percentile must be within 0-100, got %g", c.Analysis.ViralPercentile)
	}
	if c.Analysis.MinPosts < 1 {
		return faults.Configuration("analysis.min_posts must be at least 1, got %d", c.Analysis.MinPosts)
	}
	if c.Reddit.UserAgent == "" {
		return faults.Configuration("reddit.user_agent must not be empty")
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
