package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/indianpoker/internal/deck"
	"github.com/lox/indianpoker/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	TurnTimeout int    `hcl:"turn_timeout,optional"` // seconds
	Bankroll    int    `hcl:"bankroll,optional"`     // opening ledger balance per player
}

// TableConfig defines a table configuration
type TableConfig struct {
	Name          string `hcl:"name,label"`
	Ante          int    `hcl:"ante,optional"`
	StartingChips int    `hcl:"starting_chips,optional"`
	Deck          string `hcl:"deck,optional"`
	PenaltyRank   int    `hcl:"penalty_rank,optional"`
	PenaltyNum    int    `hcl:"penalty_num,optional"`
	PenaltyDen    int    `hcl:"penalty_den,optional"`
	MaxPlayers    int    `hcl:"max_players,optional"`
	TurnTimeout   int    `hcl:"turn_timeout,optional"` // seconds, overrides server setting
}

// DefaultConfig returns default server configuration with a single table
// using the default rules.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			TurnTimeout: 30,
			Bankroll:    1000,
		},
		Tables: []TableConfig{
			tableDefaults(TableConfig{Name: "main"}),
		},
	}
}

func tableDefaults(tc TableConfig) TableConfig {
	defaults := game.DefaultRules()
	if tc.Ante == 0 {
		tc.Ante = defaults.Ante
	}
	if tc.StartingChips == 0 {
		tc.StartingChips = defaults.StartingChips
	}
	if tc.Deck == "" {
		tc.Deck = defaults.DeckPreset
	}
	if tc.PenaltyNum == 0 && tc.PenaltyDen == 0 {
		tc.PenaltyNum = defaults.PenaltyNum
		tc.PenaltyDen = defaults.PenaltyDen
	}
	if tc.MaxPlayers == 0 {
		tc.MaxPlayers = defaults.MaxPlayers
	}
	return tc
}

// LoadConfig loads server configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.TurnTimeout == 0 {
		config.Server.TurnTimeout = 30
	}
	if config.Server.Bankroll == 0 {
		config.Server.Bankroll = 1000
	}

	if len(config.Tables) == 0 {
		config.Tables = []TableConfig{tableDefaults(TableConfig{Name: "main"})}
	}
	for i := range config.Tables {
		config.Tables[i] = tableDefaults(config.Tables[i])
		if config.Tables[i].TurnTimeout == 0 {
			config.Tables[i].TurnTimeout = config.Server.TurnTimeout
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.Bankroll < 0 {
		return fmt.Errorf("bankroll must not be negative")
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := make(map[string]bool)
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("table %s: duplicate name", table.Name)
		}
		seen[table.Name] = true

		if err := table.Rules().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
		if table.TurnTimeout < 0 {
			return fmt.Errorf("table %s: turn timeout must not be negative", table.Name)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Rules converts the table configuration into engine rules.
func (tc TableConfig) Rules() game.Rules {
	return game.Rules{
		Ante:          tc.Ante,
		StartingChips: tc.StartingChips,
		DeckPreset:    tc.Deck,
		PenaltyRank:   deck.Rank(tc.PenaltyRank),
		PenaltyNum:    tc.PenaltyNum,
		PenaltyDen:    tc.PenaltyDen,
		MaxPlayers:    tc.MaxPlayers,
	}
}
