package client

import (
	"fmt"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/bluff/internal/bot"
)

// ClientConfig represents the complete client configuration
type ClientConfig struct {
	Server ServerConnection
	Player PlayerSettings
	UI     UISettings
}

// ServerConnection contains server connection settings
type ServerConnection struct {
	URL            string `hcl:"url,optional" env:"BLUFF_SERVER_URL"`
	ConnectTimeout int    `hcl:"connect_timeout,optional" env:"BLUFF_CONNECT_TIMEOUT"`
}

// PlayerSettings contains player-specific settings
type PlayerSettings struct {
	Name string `hcl:"name,optional" env:"BLUFF_PLAYER_NAME"`
	// Bot names a strategy that plays automatically on our turn.
	Bot string `hcl:"bot,optional" env:"BLUFF_BOT"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional" env:"BLUFF_LOG_LEVEL"`
	LogFile  string `hcl:"log_file,optional" env:"BLUFF_LOG_FILE"`
	NoColor  bool   `hcl:"no_color,optional" env:"NO_COLOR"`
}

type clientFile struct {
	Server *ServerConnection `hcl:"server,block"`
	Player *PlayerSettings   `hcl:"player,block"`
	UI     *UISettings       `hcl:"ui,block"`
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() *ClientConfig {
	cfg := &ClientConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadClientConfig loads client configuration from an HCL file. A missing
// file yields the defaults.
func LoadClientConfig(filename string) (*ClientConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultClientConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw clientFile
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := &ClientConfig{}
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Player != nil {
		cfg.Player = *raw.Player
	}
	if raw.UI != nil {
		cfg.UI = *raw.UI
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from the environment
func (c *ClientConfig) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.applyDefaults()
	return nil
}

func (c *ClientConfig) applyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = "http://localhost:3000"
	}
	if c.Server.ConnectTimeout == 0 {
		c.Server.ConnectTimeout = 10
	}
	if c.UI.LogLevel == "" {
		c.UI.LogLevel = "warn"
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = "bluff-client.log"
	}
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	if _, err := WebSocketURL(c.Server.URL); err != nil {
		return err
	}
	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.Player.Bot != "" && !slices.Contains(bot.Names(), c.Player.Bot) {
		return fmt.Errorf("unknown bot %q", c.Player.Bot)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.UI.LogLevel) {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}
	return nil
}
