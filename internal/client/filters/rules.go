package filters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the resource rules file inside the state directory.
	FileName = "filters.yaml"
)

// Action decides whether a resource takes part in sync.
type Action string

const (
	ActionAllow Action = "allow"
	ActionBlock Action = "block"
)

type Defaults struct {
	Action Action `yaml:"action" json:"action"`
}

// Rule binds one resource to an action. Later rules win over earlier ones.
type Rule struct {
	Resource Resource `yaml:"resource" json:"resource"`
	Action   Action   `yaml:"action" json:"action"`
}

type Config struct {
	Version  int      `yaml:"version" json:"version"`
	Defaults Defaults `yaml:"defaults" json:"defaults"`
	Rules    []Rule   `yaml:"rules" json:"rules"`
}

// DefaultConfig allows everything: all resources sync unless ruled out.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Defaults: Defaults{
			Action: ActionAllow,
		},
		Rules: []Rule{},
	}
}

func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*a = ActionAllow
		return nil
	}
	action, err := parseAction(value.Value)
	if err != nil {
		return err
	}
	*a = action
	return nil
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	action, err := parseAction(raw)
	if err != nil {
		return err
	}
	*a = action
	return nil
}

func parseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ActionAllow):
		return ActionAllow, nil
	case string(ActionBlock), "deny":
		return ActionBlock, nil
	case "":
		return ActionAllow, nil
	default:
		return "", fmt.Errorf("invalid action %q", raw)
	}
}

// Load reads a rules file. A missing file yields the default config.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Defaults.Action == "" {
		cfg.Defaults.Action = ActionAllow
	}
	return &cfg, nil
}

// Save writes the rules file atomically.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Defaults.Action == "" {
		cfg.Defaults.Action = ActionAllow
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// ActionFor returns the effective action for a resource.
func (c *Config) ActionFor(resource Resource) Action {
	if c == nil {
		return ActionAllow
	}

	action := c.Defaults.Action
	for _, rule := range c.Rules {
		if rule.Resource != resource {
			continue
		}
		if rule.Action != "" {
			action = rule.Action
		}
	}
	return action
}
