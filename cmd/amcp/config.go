package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/casparctl/amcp/amcpprotocol"
)

const (
	// configDirName holds the user-level config under the home directory.
	configDirName = ".amcp"

	// projectConfigName is looked up in the working directory.
	projectConfigName = ".amcp.yaml"

	// historyFileName is the default readline history file.
	historyFileName = ".amcp_history"
)

// Config holds everything the console needs to reach a server.
type Config struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RetryInterval  time.Duration `yaml:"retry_interval"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	HistoryFile    string        `yaml:"history_file"`
}

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() *Config {
	return &Config{
		Host:           "localhost",
		Port:           amcpprotocol.DefaultPort,
		RetryInterval:  amcpprotocol.RetryInterval,
		DialTimeout:    amcpprotocol.DialTimeout,
		CommandTimeout: amcpprotocol.CommandTimeout,
		LogLevel:       "error",
		HistoryFile:    filepath.Join(homeDir(), historyFileName),
	}
}

// LoadConfig builds the effective configuration. An explicit path replaces
// the user and project files and must exist. Environment variables, with a
// .env file in the working directory, override the files.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	} else {
		for _, candidate := range configSearchPaths() {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := loadFromFile(candidate, cfg); err != nil {
				return nil, fmt.Errorf("loading config %s: %w", candidate, err)
			}
		}
	}

	// A missing .env is not an error.
	_ = godotenv.Load()

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configSearchPaths lists the implicit config files, lowest precedence first.
func configSearchPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, configDirName, "config.yaml"))
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, projectConfigName))
	}
	return paths
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Fields present in the file overwrite what is already set.
	return yaml.Unmarshal(data, cfg)
}

// applyEnv overrides cfg with AMCP_* variables found by lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("AMCP_HOST"); ok && v != "" {
		cfg.Host = v
	}
	if v, ok := lookup("AMCP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AMCP_PORT: %w", err)
		}
		cfg.Port = port
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"AMCP_RETRY_INTERVAL", &cfg.RetryInterval},
		{"AMCP_DIAL_TIMEOUT", &cfg.DialTimeout},
		{"AMCP_COMMAND_TIMEOUT", &cfg.CommandTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	if v, ok := lookup("AMCP_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("AMCP_LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AMCP_LOG_JSON: %w", err)
		}
		cfg.LogJSON = b
	}
	if v, ok := lookup("AMCP_HISTORY_FILE"); ok && v != "" {
		cfg.HistoryFile = v
	}
	return nil
}

// Validate rejects settings the device cannot work with.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("retry interval must be positive")
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive")
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("command timeout must be positive")
	}
	return nil
}

// homeDir returns the user's home directory, or "." if it cannot be found.
func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
