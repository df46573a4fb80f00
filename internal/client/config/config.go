package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/prefsync/prefsync/internal/enginesdk"
	"github.com/prefsync/prefsync/internal/utils"
)

var (
	home, _            = os.UserHomeDir()
	DefaultStateDir    = filepath.Join(home, ".prefsync")
	DefaultConfigPath  = filepath.Join(home, ".prefsync", "config.json")
	DefaultLogFilePath = filepath.Join(home, ".prefsync", "logs", "prefsyncd.log")
	DefaultEngineURL   = enginesdk.DefaultBaseURL
	DefaultDaemonAddr  = "localhost:7937"
	DefaultDaemonURL   = "http://localhost:7937"
)

// Config is the daemon's persisted configuration. Tokens rotate at runtime,
// Save is called again whenever the SDK refreshes them.
type Config struct {
	StateDir     string `json:"state_dir"`
	EngineURL    string `json:"engine_url"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// Control plane settings for frontends and CLI subcommands.
	DaemonAddr  string `json:"daemon_addr"`
	DaemonURL   string `json:"daemon_url"`
	DaemonToken string `json:"daemon_token,omitempty"`

	Path string `json:"-"`
}

func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("config: state dir is required")
	}
	if c.EngineURL == "" {
		return fmt.Errorf("config: engine url is required")
	}
	if c.DaemonAddr == "" {
		c.DaemonAddr = DefaultDaemonAddr
	}
	if c.DaemonURL == "" {
		c.DaemonURL = fmt.Sprintf("http://%s", c.DaemonAddr)
	}
	return nil
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// tokens live in this file
	return utils.AtomicWriteFile(path, data, 0o600)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.Path = path
	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir
	}
	if cfg.EngineURL == "" {
		cfg.EngineURL = DefaultEngineURL
	}

	return &cfg, nil
}
