package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "resolve <report-id>...",
		Short: "Administratively set resolution state, bypassing the vote threshold",
		Long: `Force-resolve one or more reports without waiting for the vote quorum.

This is the privileged operator path; regular resolution happens through
cleared votes. --off un-resolves a single report instead.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args, off, cmd)
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "set resolved=false (single report only)")
	return cmd
}

func runResolve(opts *RootOptions, ids []string, off bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := opts.openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if off {
		if len(ids) != 1 {
			return formatter.Failure(ExitCommandError, "--off takes exactly one report id", nil)
		}
		if err := rt.votes.SetResolved(cmd.Context(), ids[0], false); err != nil {
			return formatter.Failure(ExitFailure, "unresolve report", err)
		}
		return formatter.Success(
			fmt.Sprintf("unresolved %s", ids[0]),
			map[string]any{"id": ids[0], "resolved": false},
		)
	}

	done, err := rt.votes.BulkMarkResolved(cmd.Context(), ids)
	if err != nil {
		return formatter.Failure(ExitFailure, "bulk resolve", err)
	}
	return formatter.Success(
		fmt.Sprintf("resolved %d of %d report(s)", len(done), len(ids)),
		map[string]any{"resolved_ids": done},
	)
}
