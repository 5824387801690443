package server

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/bluff/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings
	Game   GameSettings
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional" env:"BLUFF_ADDRESS"`
	Port           int      `hcl:"port,optional" env:"PORT"`
	LogLevel       string   `hcl:"log_level,optional" env:"BLUFF_LOG_LEVEL"`
	StaticDir      string   `hcl:"static_dir,optional" env:"BLUFF_STATIC_DIR"`
	AllowedOrigins []string `hcl:"allowed_origins,optional" env:"BLUFF_ALLOWED_ORIGINS" envSeparator:","`
}

// GameSettings configures the rules and lifecycle of hosted games
type GameSettings struct {
	MaxPlayers     int    `hcl:"max_players,optional" env:"BLUFF_MAX_PLAYERS"`
	WinMode        string `hcl:"win_mode,optional" env:"BLUFF_WIN_MODE"`
	AllowAceClaims bool   `hcl:"allow_ace_claims,optional" env:"BLUFF_ALLOW_ACE_CLAIMS"`
	RedealAttempts *int   `hcl:"redeal_attempts,optional" env:"BLUFF_REDEAL_ATTEMPTS"`
	FinishedTTL    string `hcl:"finished_ttl,optional" env:"BLUFF_FINISHED_TTL"`
	ReapInterval   string `hcl:"reap_interval,optional" env:"BLUFF_REAP_INTERVAL"`
	Seed           int64  `hcl:"seed,optional" env:"BLUFF_SEED"`
}

// serverFile mirrors the HCL layout; both blocks are optional.
type serverFile struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw serverFile
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := &ServerConfig{}
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Game != nil {
		cfg.Game = *raw.Game
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from BLUFF_* environment variables
func (c *ServerConfig) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.applyDefaults()
	return nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = 8
	}
	if c.Game.WinMode == "" {
		c.Game.WinMode = game.WinProvisional.String()
	}
	if c.Game.RedealAttempts == nil {
		attempts := game.DefaultRules().RedealAttempts
		c.Game.RedealAttempts = &attempts
	}
	if c.Game.FinishedTTL == "" {
		c.Game.FinishedTTL = "30m"
	}
	if c.Game.ReapInterval == "" {
		c.Game.ReapInterval = "1m"
	}
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Validate checks the configuration for errors
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if !slices.Contains(logLevels, c.Server.LogLevel) {
		return fmt.Errorf("invalid log level %q (want one of %v)", c.Server.LogLevel, logLevels)
	}
	if c.Game.MaxPlayers < game.MinPlayers || c.Game.MaxPlayers > 12 {
		return fmt.Errorf("max_players must be between %d and 12, got %d", game.MinPlayers, c.Game.MaxPlayers)
	}
	if _, err := game.ParseWinMode(c.Game.WinMode); err != nil {
		return err
	}
	if c.Game.RedealAttempts != nil && *c.Game.RedealAttempts < 0 {
		return fmt.Errorf("redeal_attempts must not be negative")
	}
	if _, err := c.Game.FinishedTTLDuration(); err != nil {
		return err
	}
	interval, err := c.Game.ReapIntervalDuration()
	if err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("reap_interval must be positive")
	}
	if c.Server.StaticDir != "" {
		info, err := os.Stat(c.Server.StaticDir)
		if err != nil {
			return fmt.Errorf("static_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("static_dir %s is not a directory", c.Server.StaticDir)
		}
	}
	return nil
}

// FinishedTTLDuration parses finished_ttl; "0" disables reaping
func (g GameSettings) FinishedTTLDuration() (time.Duration, error) {
	d, err := time.ParseDuration(g.FinishedTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid finished_ttl %q: %w", g.FinishedTTL, err)
	}
	return d, nil
}

// ReapIntervalDuration parses reap_interval
func (g GameSettings) ReapIntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(g.ReapInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid reap_interval %q: %w", g.ReapInterval, err)
	}
	return d, nil
}

// Rules builds the engine rules described by the settings
func (g GameSettings) Rules() (game.Rules, error) {
	rules := game.DefaultRules()
	mode, err := game.ParseWinMode(g.WinMode)
	if err != nil {
		return rules, err
	}
	rules.WinMode = mode
	rules.AllowDangerousClaims = g.AllowAceClaims
	if g.RedealAttempts != nil {
		rules.RedealAttempts = *g.RedealAttempts
	}
	return rules, nil
}
