package main

import (
	"fmt"

	"github.com/coder/quartz"

	"github.com/lox/indianpoker/cmd/indianpoker/shared"
	"github.com/lox/indianpoker/internal/server"
)

// ServerCmd runs the websocket game server.
type ServerCmd struct {
	Config string `kong:"default='indianpoker.hcl',help='Path to HCL configuration file'"`
	Addr   string `kong:"help='Listen address, overrides config'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel, c.Debug)

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	srv := server.NewServer(addr, logger)
	ledger := server.NewMemoryLedger(cfg.Server.Bankroll)
	svc := server.NewGameService(logger, srv, ledger, quartz.NewReal())
	srv.SetGameService(svc)

	for _, tc := range cfg.Tables {
		if _, err := svc.CreateTable(tc); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}

	logger.Info("Starting Indian poker server",
		"addr", addr,
		"tables", len(cfg.Tables),
		"bankroll", cfg.Server.Bankroll,
		"turn_timeout", cfg.Server.TurnTimeout)

	ctx := shared.SetupSignalHandler(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		return srv.Stop()
	case err := <-serverErr:
		return err
	}
}
