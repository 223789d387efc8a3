package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/indianpoker/cmd/indianpoker/shared"
	"github.com/lox/indianpoker/internal/client"
	"github.com/lox/indianpoker/internal/tui"
)

// ClientCmd connects to a server as an interactive player.
type ClientCmd struct {
	Server string `kong:"default='http://localhost:8080',help='Server URL'"`
	Name   string `kong:"required,help='Player name'"`
	Table  string `kong:"help='Table to join on connect'"`
	Debug  bool   `kong:"help='Enable debug logging to file'"`
}

func (c *ClientCmd) Run() error {
	// The terminal belongs to the TUI; debug logs go to a file.
	logger := log.New(io.Discard)
	if c.Debug {
		f, err := os.Create("indianpoker-client.log")
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		logger = shared.SetupLogger("debug", true)
		logger.SetOutput(f)
	}

	cl := client.NewClient(c.Server, logger)
	if err := cl.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer func() { _ = cl.Disconnect() }()

	model := tui.New(cl, logger)

	if err := cl.Auth(c.Name); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	if c.Table != "" {
		if err := cl.JoinTable(c.Table); err != nil {
			return fmt.Errorf("joining table: %w", err)
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
