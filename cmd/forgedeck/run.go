package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpalmerr/forgedeck"
	"github.com/jpalmerr/forgedeck/config"
	"github.com/jpalmerr/forgedeck/internal/host"
	"github.com/jpalmerr/forgedeck/internal/server"
)

const shutdownTimeout = 10 * time.Second

// registrationFromFlags reads the host launch flags.
func registrationFromFlags(cmd *cobra.Command) host.Registration {
	port, _ := cmd.Flags().GetInt("port")
	uuid, _ := cmd.Flags().GetString("pluginUUID")
	event, _ := cmd.Flags().GetString("registerEvent")
	info, _ := cmd.Flags().GetString("info")
	return host.Registration{
		Port:          port,
		PluginUUID:    uuid,
		RegisterEvent: event,
		Info:          info,
	}
}

func runPlugin(cmd *cobra.Command, args []string) error {
	reg := registrationFromFlags(cmd)
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("not launched by the Stream Deck application (%w); see 'forgedeck --help'", err)
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("config loaded",
		zap.String("path", path),
		zap.String("api_url", cfg.APIURL),
		zap.Duration("min_refresh_interval", cfg.MinRefreshInterval.Duration()),
	)

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := host.Dial(ctx, reg, logger.Named("host"))
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	p, err := forgedeck.New(pluginOptions(cfg, conn, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create plugin: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- p.Run(runCtx)
	}()

	if cfg.DebugAddr != "" {
		debug := server.NewServer(p.Cache(), p, cfg.DebugAddr, logger.Named("debug"))
		if err := debug.Start(runCtx); err != nil {
			// diagnostics are optional; keep the dial working
			logger.Warn("debug server not started", zap.Error(err))
		}
	}

	d := newDispatcher(p, conn, logger)
	listenErr := conn.Listen(runCtx, d.handle)
	if listenErr != nil {
		logger.Error("host connection lost", zap.Error(listenErr))
	}

	cancel()
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("plugin error: %w", err)
		}
		logger.Info("shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timed out",
			zap.Duration("timeout", shutdownTimeout),
			zap.String("action", "forcing exit"),
		)
	}
	return listenErr
}

// pluginOptions combines the config file with the runtime collaborators.
func pluginOptions(cfg *config.Config, conn *host.Conn, logger *zap.Logger) []forgedeck.Option {
	opts := []forgedeck.Option{
		forgedeck.WithUserAgent("forgedeck/" + version),
	}
	// config options come after so a configured user_agent wins
	opts = append(opts, config.PluginOptions(cfg)...)
	return append(opts,
		forgedeck.WithDisplay(forgedeck.DisplayFunc(func(context string, fb forgedeck.Feedback) error {
			return conn.SetFeedback(context, fb)
		})),
		forgedeck.WithLogger(logger),
	)
}
