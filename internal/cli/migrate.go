package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Open the store and apply any due schema migrations",
		Long: `Open the local database and bring its schema up to the current version.

Migrations are additive-only and run one version per transaction; a failed
version rolls back whole and leaves the database at its previous version.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := opts.openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	version, err := rt.store.SchemaVersion()
	if err != nil {
		return formatter.Failure(ExitCommandError, "read schema version", err)
	}

	return formatter.Success(
		fmt.Sprintf("schema at v%d (%s)", version, rt.cfg.DBPath),
		map[string]any{"schema_version": version, "db_path": rt.cfg.DBPath},
	)
}
