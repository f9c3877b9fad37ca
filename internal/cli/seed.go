package cli

import (
	"github.com/spf13/cobra"
	"skillnest/internal/config"
	"skillnest/internal/logger"
	"skillnest/internal/seed"
)

// NewSeedCmd loads demo data into the configured store. It is mainly
// useful against Postgres, since the memory store is seeded on start.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, courses and badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Mode)
			if err != nil {
				return err
			}
			defer log.Sync()

			d, err := buildDeps(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()
			return seed.Run(cmd.Context(), d.service, d.repo, log)
		},
	}
}
