package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Archive resolved reports older than seven days",
		Long: `Run the auto-archive sweep: every resolved, unarchived report whose
last modification is more than seven days old is archived. The sweep is
idempotent - a second run right after the first changes nothing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(rootOpts, cmd)
		},
	}
}

func runSweep(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := opts.openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	archived, err := rt.votes.AutoArchiveSweep(cmd.Context())
	if err != nil {
		return formatter.Failure(ExitFailure, "archive sweep", err)
	}

	return formatter.Success(
		fmt.Sprintf("archived %d report(s)", len(archived)),
		map[string]any{"archived_ids": archived},
	)
}
