package commands

import (
	"github.com/dukerupert/householder/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := database.Version(cmd.Context(), db)
			if err != nil {
				return err
			}
			logger.Info("database is up to date", "path", cfg.DBPath, "version", v)
			return nil
		},
	}
}
