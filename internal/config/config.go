package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultRequestTimeout bounds a single gateway request.
const DefaultRequestTimeout = 15 * time.Second

// Profile is one support server the agent can sign in to.
type Profile struct {
	BaseURL  string `json:"base_url"`
	APIToken string `json:"api_token"`
	AgentID  string `json:"agent_id,omitempty"`
	// TemporaryPassword is set by an administrator for first sign-in. While
	// it is present the shell forces a password change.
	TemporaryPassword string `json:"temporary_password,omitempty"`
	// Permissions granted to the agent. Empty grants everything.
	Permissions []string `json:"permissions,omitempty"`
}

// Env holds overrides read from the environment. They win over the active
// profile and are never written back to disk.
type Env struct {
	BaseURL        string        `env:"AGENTDESK_BASE_URL"`
	APIToken       string        `env:"AGENTDESK_API_TOKEN"`
	LogLevel       string        `env:"AGENTDESK_LOG_LEVEL"       envDefault:"info"`
	Embedded       bool          `env:"AGENTDESK_EMBEDDED"`
	RequestTimeout time.Duration `env:"AGENTDESK_REQUEST_TIMEOUT" envDefault:"15s"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	Env            Env                `json:"-"`
	path           string
	currentProfile *Profile
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the config file at configPath, creating a default one
// when it does not exist, and applies environment overrides.
func LoadConfigFrom(configPath string) (*Config, error) {
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.path = configPath

	if err := env.Parse(&config.Env); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if config.Env.RequestTimeout <= 0 {
		config.Env.RequestTimeout = DefaultRequestTimeout
	}

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// IsValid reports whether there is a server to talk to.
func (c *Config) IsValid() bool {
	return c.GetBaseURL() != "" && c.GetAPIToken() != ""
}

func (c *Config) GetBaseURL() string {
	if c.Env.BaseURL != "" {
		return strings.TrimRight(c.Env.BaseURL, "/")
	}
	if c.currentProfile == nil {
		return ""
	}
	return strings.TrimRight(c.currentProfile.BaseURL, "/")
}

func (c *Config) GetAPIToken() string {
	if c.Env.APIToken != "" {
		return c.Env.APIToken
	}
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.APIToken
}

func (c *Config) GetAgentID() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.AgentID
}

func (c *Config) GetTemporaryPassword() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.TemporaryPassword
}

// ClearTemporaryPassword forgets the temporary password of the active
// profile once it has been changed.
func (c *Config) ClearTemporaryPassword() error {
	profile, ok := c.Profiles[c.ActiveProfile]
	if !ok || profile.TemporaryPassword == "" {
		return nil
	}
	profile.TemporaryPassword = ""
	c.Profiles[c.ActiveProfile] = profile
	c.currentProfile = &profile
	return c.Save()
}

// Can reports whether the active profile grants permission.
func (c *Config) Can(permission string) bool {
	if c.currentProfile == nil || len(c.currentProfile.Permissions) == 0 {
		return true
	}
	return slices.Contains(c.currentProfile.Permissions, permission)
}

func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Env.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) Embedded() bool {
	return c.Env.Embedded
}

func (c *Config) RequestTimeout() time.Duration {
	return c.Env.RequestTimeout
}

// Dir is the directory holding the config file, the preference database
// and the log.
func (c *Config) Dir() string {
	return filepath.Dir(c.path)
}

// LogPath is where the shell writes its log; the terminal belongs to the UI.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir(), "agentdesk.log")
}

// ProfileNames returns the profile names in order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Use makes name the active profile.
func (c *Config) Use(name string) error {
	profile, exists := c.Profiles[name]
	if !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	c.currentProfile = &profile
	return nil
}

// DeleteProfile removes name, moving the active profile elsewhere. Deleting
// the last profile leaves an empty default one.
func (c *Config) DeleteProfile(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	delete(c.Profiles, name)
	if len(c.Profiles) == 0 {
		c.Profiles["default"] = Profile{}
	}
	if c.ActiveProfile == name {
		c.ActiveProfile = c.ProfileNames()[0]
	}
	return c.setCurrentProfile()
}

func getConfigPath() (string, error) {
	var configDir string

	// Use AGENTDESK_HOME if set, otherwise use user's home directory
	if home := os.Getenv("AGENTDESK_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".agentdesk", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"default": {},
		},
		ActiveProfile: "default",
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	if c.path == "" {
		configPath, err := getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		c.path = configPath
	}
	return saveConfig(c, c.path)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile by name
		c.ActiveProfile = c.ProfileNames()[0]
		profile = c.Profiles[c.ActiveProfile]
	}

	c.currentProfile = &profile
	return nil
}
