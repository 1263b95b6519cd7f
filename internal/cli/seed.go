package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"learning-service/internal/app"
	"learning-service/internal/seed"
)

// NewSeedCmd loads module definition files into the database.
func NewSeedCmd(configPath *string) *cobra.Command {
	var (
		dir   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed modules from JSON/YAML definition files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, dir, force)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of module files (overrides seed.dir)")
	cmd.Flags().BoolVar(&force, "force", false, "replace modules whose order already exists")
	return cmd
}

func runSeed(ctx context.Context, configPath, dir string, force bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if dir == "" {
		dir = cfg.Seed.Dir
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	search := app.NewSearchService(be.gateway, cfg.Search.Limit, cfg.Search.ContextLength)
	sum, err := seed.NewSeeder(be.writer, search, force).Run(ctx, dir)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d module file(s) failed to seed", sum.Failed)
	}
	return nil
}
