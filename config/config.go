// Package config loads apprised settings. Precedence, lowest to
// highest: built-in defaults, an optional YAML file, then APPRISED_
// environment variables. Nested keys use a double underscore in the
// environment, e.g. APPRISED_SERVER__API_KEY sets server.api_key.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pmaederyork/apprised/agent"
)

type Config struct {
	Server ServerConfig `koanf:"server"`
	Chat   ChatConfig   `koanf:"chat"`
	UI     UIConfig     `koanf:"ui"`
}

type ServerConfig struct {
	URL    string `koanf:"url"`
	APIKey string `koanf:"api_key"`
}

type ChatConfig struct {
	SystemPrompt string `koanf:"system_prompt"`
	HistoryLimit int    `koanf:"history_limit"`
}

type UIConfig struct {
	Theme    string `koanf:"theme"`
	Markdown bool   `koanf:"markdown"`
}

// DefaultPath returns the default config file location
// (~/.apprised/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".apprised", "config.yaml"), nil
}

// Load reads configuration from path. An empty path means the default
// location, where a missing file is fine; an explicitly given path must
// exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Environment variables override file config.
	if err := k.Load(env.Provider("APPRISED_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "APPRISED_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.url") {
		k.Set("server.url", agent.DefaultBaseURL)
	}
	if !k.Exists("chat.history_limit") {
		k.Set("chat.history_limit", agent.DefaultHistoryLimit)
	}
	if !k.Exists("ui.theme") {
		k.Set("ui.theme", "dark")
	}
	if !k.Exists("ui.markdown") {
		k.Set("ui.markdown", true)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.APIKey) == "" {
		return errors.New("server.api_key is not set: export APPRISED_SERVER__API_KEY or add it to config.yaml")
	}
	if strings.TrimSpace(c.Server.URL) == "" {
		return errors.New("server.url is empty")
	}
	if c.Chat.HistoryLimit < 0 {
		return fmt.Errorf("chat.history_limit must not be negative, got %d", c.Chat.HistoryLimit)
	}
	return nil
}
