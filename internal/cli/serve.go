package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwtly10/kid-relay/internal/config"
	"github.com/jwtly10/kid-relay/internal/relay"
	"github.com/jwtly10/kid-relay/internal/server"
	"github.com/jwtly10/kid-relay/internal/upstream"
)

func newServeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the relay server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile)
		},
	}
}

func runServe(ctx context.Context, envFile string) error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	cfg, err := config.LoadConfig(files...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := cfg.Server.Logger

	client, err := upstream.NewClient(upstream.Config{
		BaseURL:    cfg.Upstream.BaseURL,
		APIKey:     cfg.Upstream.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Upstream.Timeout},
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}

	ops := relay.Operations()
	srv := server.NewServer(relay.New(client, logger), ops, logger, &cfg.Server)

	logger.Info("relay configured",
		"upstream", client.BaseURL(),
		"operations", len(ops),
		"log_level", cfg.Server.LogLevel(),
		"metrics", cfg.Server.MetricsEnabled)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
