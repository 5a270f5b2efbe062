package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezkam/taskflow/internal/config"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/sqlite"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the embedded schema migrations to the database selected by
TASKFLOW_DB_DRIVER and TASKFLOW_DB_DSN.

Examples:
  taskflowctl migrate
  TASKFLOW_DB_DRIVER=postgres TASKFLOW_DB_DSN=postgres://... taskflowctl migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadCLIConfig()
			if err != nil {
				return err
			}

			var version int64
			switch cfg.Database.Driver {
			case config.DriverPostgres:
				version, err = postgres.Migrate(cmd.Context(), cfg.Database.DSN)
			default:
				version, err = sqlite.Migrate(cmd.Context(), cfg.Database.DSN)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}
