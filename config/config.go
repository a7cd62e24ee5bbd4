package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// SystemConfig is the machine-level config at ~/.config/iask/settings.toml.
type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

// ProviderConfig selects and points at an LLM backend.
type ProviderConfig struct {
	Type    string `toml:"type"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// EngineConfig tunes the streaming orchestrator.
type EngineConfig struct {
	PublishIntervalMS int  `toml:"publish_interval_ms"`
	MaxChainDepth     int  `toml:"max_chain_depth"`
	SpeechEnabled     bool `toml:"speech_enabled"`
}

// SecurityConfig selects the credential storage method.
type SecurityConfig struct {
	Method     string `toml:"method"` // "plaintext" or "ssh_key"
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

// UserConfig is the per-user config at <data_directory>/config.toml.
type UserConfig struct {
	Provider            ProviderConfig `toml:"provider"`
	Engine              EngineConfig   `toml:"engine"`
	Security            SecurityConfig `toml:"security"`
	DefaultSystemPrompt string         `toml:"default_system_prompt,omitempty"`
}

// Config is the merged runtime configuration.
type Config struct {
	DataDirectory       string
	ProviderType        string
	ProviderBaseURL     string
	Model               string
	DefaultSystemPrompt string
	PublishIntervalMS   int
	MaxChainDepth       int
	SpeechEnabled       bool
	SecurityMethod      string
	SSHKeyPath          string
}

var Debug = false
var DebugLog *log.Logger

// DataDir returns the expanded data directory path.
func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("IASK_DATA_DIR"); dir != "" {
		c.DataDirectory = dir
	}
	if p := os.Getenv("IASK_PROVIDER"); p != "" {
		c.ProviderType = p
	}
	if u := os.Getenv("IASK_BASE_URL"); u != "" {
		c.ProviderBaseURL = u
	}
	if m := os.Getenv("IASK_MODEL"); m != "" {
		c.Model = m
	}
	if d := os.Getenv("IASK_MAX_CHAIN_DEPTH"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			c.MaxChainDepth = n
		}
	}
}

// CheckDebug reports whether debug logging was requested via IASK_DEBUG.
func CheckDebug() bool {
	debug := os.Getenv("IASK_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens <dataDir>/debug.log when debugging is enabled.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log may echo conversation content
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (IASK_DEBUG=%s) ===", os.Getenv("IASK_DEBUG"))
}

// Load reads system and user config, creating defaults on first run, then
// applies environment overrides.
func Load() (*Config, error) {
	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}

	cfg := &Config{DataDirectory: systemCfg.DataDirectory}
	dataDir := cfg.DataDir()
	if err := EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.ProviderType = userCfg.Provider.Type
	cfg.ProviderBaseURL = userCfg.Provider.BaseURL
	cfg.Model = userCfg.Provider.Model
	cfg.DefaultSystemPrompt = userCfg.DefaultSystemPrompt
	cfg.PublishIntervalMS = userCfg.Engine.PublishIntervalMS
	cfg.MaxChainDepth = userCfg.Engine.MaxChainDepth
	cfg.SpeechEnabled = userCfg.Engine.SpeechEnabled
	cfg.SecurityMethod = userCfg.Security.Method
	cfg.SSHKeyPath = userCfg.Security.SSHKeyPath

	cfg.applyEnvOverrides()
	return cfg, nil
}
