package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv, highest priority first
const (
	EnvAPIHost       = "POLICY_CHAT_API_HOST"
	EnvLegacyAPIHost = "REACT_APP_API_HOST"
	EnvLogFile       = "POLICY_CHAT_LOG_FILE"
)

var (
	ErrMissingHost = errors.New("agent API host is not configured")
	ErrInvalidHost = errors.New("agent API host must be an absolute http(s) URL")
)

// Config holds all application configuration
type Config struct {
	// Backend settings
	APIHost         string        `yaml:"api_host"`
	AgentTimeout    time.Duration `yaml:"agent_timeout"`
	FeedbackTimeout time.Duration `yaml:"feedback_timeout"`
	UserAgent       string        `yaml:"user_agent"`

	// Logging settings
	LogFile string `yaml:"log_file"`
	Verbose bool   `yaml:"verbose"`

	// Display settings
	Plain          bool `yaml:"plain"`
	ShowReferences bool `yaml:"show_references"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		AgentTimeout:    60 * time.Second,
		FeedbackTimeout: 10 * time.Second,
		UserAgent:       "policy-chat/1.0",

		LogFile: expandHome("~/.policy-chat/client.log"),
		Verbose: false,

		Plain:          false,
		ShowReferences: true,
	}
}

// DefaultPath is where LoadFile looks when no --config flag is given
func DefaultPath() string {
	return expandHome("~/.policy-chat/config.yaml")
}

// LoadFile merges a YAML config file into c. A missing file is not an error
// unless required is set.
func (c *Config) LoadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.LogFile = expandHome(c.LogFile)
	return nil
}

// ApplyEnv overrides values from the environment
func (c *Config) ApplyEnv() {
	if host := GetEnv(EnvAPIHost); host != "" {
		c.APIHost = host
	} else if host := GetEnv(EnvLegacyAPIHost); host != "" {
		c.APIHost = host
	}
	if logFile := GetEnv(EnvLogFile); logFile != "" {
		c.LogFile = expandHome(logFile)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	c.APIHost = strings.TrimRight(strings.TrimSpace(c.APIHost), "/")
	if c.APIHost == "" {
		return fmt.Errorf("%w: set --api-host or %s", ErrMissingHost, EnvAPIHost)
	}
	u, err := url.Parse(c.APIHost)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidHost, c.APIHost)
	}
	if c.AgentTimeout <= 0 {
		return fmt.Errorf("agent timeout must be positive")
	}
	if c.FeedbackTimeout <= 0 {
		return fmt.Errorf("feedback timeout must be positive")
	}
	return nil
}

// expandHome expands the ~ in file paths to the user's home directory
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir := getHomeDir()
		return homeDir + path[1:]
	}
	return path
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	if home := GetEnv("HOME"); home != "" {
		return home
	}
	// Fallback for Windows
	if home := GetEnv("USERPROFILE"); home != "" {
		return home
	}
	return "."
}

// GetEnv is a wrapper around os.Getenv for easier testing
var GetEnv = os.Getenv
