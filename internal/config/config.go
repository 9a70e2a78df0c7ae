// ABOUTME: Configuration loading and parsing for the copilot dashboard
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left empty.
const (
	DefaultHTTPAddr       = "localhost:8080"
	DefaultBackendTimeout = 60 * time.Second
	DefaultChatIdleTTL    = 30 * time.Minute
	DefaultSessionTTL     = 7 * 24 * time.Hour
)

// Config represents the complete copilot configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Backend   BackendConfig   `yaml:"backend" toml:"backend"`
	Chat      ChatConfig      `yaml:"chat" toml:"chat"`
	Session   SessionConfig   `yaml:"session" toml:"session"`
	Tokens    TokensConfig    `yaml:"tokens" toml:"tokens"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Agents    []AgentPreset   `yaml:"agents" toml:"agents"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`   // serve :443 with tailnet certs
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // expose publicly via funnel
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// BackendConfig points at the remote chat backend
type BackendConfig struct {
	// BaseURL is the origin all chat endpoints are resolved against
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// ChatConfig holds chat panel lifecycle settings
type ChatConfig struct {
	IdleTTL time.Duration `yaml:"-" toml:"-"`

	IdleTTLRaw string `yaml:"idle_ttl" toml:"idle_ttl"`
}

// SessionConfig holds browser session cookie settings
type SessionConfig struct {
	// Secret signs session cookies. A random secret is generated at startup
	// when empty, which invalidates sessions on restart.
	Secret string        `yaml:"secret" toml:"secret"`
	TTL    time.Duration `yaml:"-" toml:"-"`

	TTLRaw string `yaml:"ttl" toml:"ttl"`
}

// TokensConfig holds source token storage settings
type TokensConfig struct {
	// EncryptionKey enables sealing tokens at rest when set
	EncryptionKey string `yaml:"encryption_key" toml:"encryption_key"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// AgentPreset seeds one entry of the agent configuration screen
type AgentPreset struct {
	ID          string   `yaml:"id" toml:"id"`
	Name        string   `yaml:"name" toml:"name"`
	Description string   `yaml:"description" toml:"description"`
	Tone        string   `yaml:"tone" toml:"tone"`
	Prompt      string   `yaml:"prompt" toml:"prompt"`
	Sources     []string `yaml:"sources" toml:"sources"` // enabled source names
	Status      string   `yaml:"status" toml:"status"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(path, data)
}

// Parse decodes raw configuration content. The name is only used to pick the format.
func Parse(name string, data []byte) (*Config, error) {
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		if _, err := toml.Decode(expandedData, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyEnvOverrides(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides lets deployments swap the backend or database without editing the file
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COPILOT_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("COPILOT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" && !c.Tailscale.Enabled {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Backend.TimeoutRaw == "" {
		c.Backend.Timeout = DefaultBackendTimeout
	}
	if c.Chat.IdleTTL == 0 {
		c.Chat.IdleTTL = DefaultChatIdleTTL
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = DefaultSessionTTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("backend.base_url must include a host")
	}

	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	seen := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("agents[%d].name is required", i)
		}
		if a.ID != "" {
			if seen[a.ID] {
				return fmt.Errorf("agents[%d].id %q is duplicated", i, a.ID)
			}
			seen[a.ID] = true
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Backend.TimeoutRaw != "" {
		cfg.Backend.Timeout, err = time.ParseDuration(cfg.Backend.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing backend.timeout %q: %w", cfg.Backend.TimeoutRaw, err)
		}
	}

	if cfg.Chat.IdleTTLRaw != "" {
		cfg.Chat.IdleTTL, err = time.ParseDuration(cfg.Chat.IdleTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing chat.idle_ttl %q: %w", cfg.Chat.IdleTTLRaw, err)
		}
	}

	if cfg.Session.TTLRaw != "" {
		cfg.Session.TTL, err = time.ParseDuration(cfg.Session.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session.ttl %q: %w", cfg.Session.TTLRaw, err)
		}
	}

	return nil
}

// DefaultPath returns the path to the config file.
// Priority: COPILOT_CONFIG env var > XDG_CONFIG_HOME/copilot/config.yaml > ~/.config/copilot/config.yaml
func DefaultPath() string {
	if envPath := os.Getenv("COPILOT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "copilot", "config.yaml")
}

// DefaultDataPath returns the data directory.
// Priority: XDG_DATA_HOME/copilot > ~/.local/share/copilot
func DefaultDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "copilot")
}
