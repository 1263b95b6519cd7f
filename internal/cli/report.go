package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"learning-service/internal/app"
	"learning-service/internal/report"
)

// NewReportCmd groups the admin exports.
func NewReportCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export admin reports",
	}
	var out string
	progress := &cobra.Command{
		Use:   "progress",
		Short: "Write learner progress to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgressReport(cmd.Context(), *configPath, out)
		},
	}
	progress.Flags().StringVar(&out, "out", "progress.xlsx", "output file")
	cmd.AddCommand(progress)
	return cmd
}

func runProgressReport(ctx context.Context, configPath, out string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	rows, err := report.CollectProgress(ctx, be.gateway, app.NewProgressService(be.gateway))
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := report.WriteProgress(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("progress report written", "file", out, "users", len(rows))
	return nil
}
