package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	gwsync "github.com/glasswatch/glasswatch/internal/sync"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one pull/merge followed by pending pushes",
		Long: `Fetch the remote snapshot, merge it into the local store under
last-write-wins, and push everything still pending.

An unreachable remote leaves local state untouched and exits with a
recoverable error; per-record push failures are reported as a count and the
failed records stay pending for the next run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := opts.openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	engine, err := rt.syncEngine()
	if err != nil {
		return err
	}

	merged, err := engine.PullMerge(cmd.Context())
	switch {
	case gwsync.IsRemoteUnavailable(err):
		return formatter.Failure(ExitFailure, "remote unavailable, local state unchanged", err)
	case gwsync.IsPartialSync(err):
		return formatter.Success(
			fmt.Sprintf("merged %d report(s); %v", len(merged), err),
			map[string]any{"merged": len(merged), "partial": err.Error()},
		)
	case err != nil:
		return formatter.Failure(ExitFailure, "sync failed", err)
	}

	return formatter.Success(
		fmt.Sprintf("merged %d report(s)", len(merged)),
		map[string]any{"merged": len(merged)},
	)
}
