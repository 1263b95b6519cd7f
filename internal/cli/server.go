package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	transport "learning-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	svc, issuer, err := be.services(cfg)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		if err := be.seedIfPresent(ctx, cfg.Seed.Dir, svc.Search); err != nil {
			return err
		}
	}

	server := transport.NewServer(svc, issuer, be.checks)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting learning service", "port", finalPort)
		errCh <- server.Listen(":" + finalPort)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.ShutdownWithContext(shutdownCtx)
}
