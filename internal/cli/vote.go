package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glasswatch/glasswatch/internal/votes"
)

// NewVoteCommand creates the vote command group.
func NewVoteCommand(rootOpts *RootOptions) *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Cast device-scoped hazard confirmations",
	}

	cmd.PersistentFlags().StringVar(&deviceID, "device", "", "device id (defaults to configured device)")

	cmd.AddCommand(&cobra.Command{
		Use:           "cleared <report-id>",
		Short:         "Confirm the hazard is gone",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVote(rootOpts, cmd, args[0], deviceID, "cleared")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "stillthere <report-id>",
		Short:         "Confirm the hazard persists",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVote(rootOpts, cmd, args[0], deviceID, "stillthere")
		},
	})

	return cmd
}

func runVote(opts *RootOptions, cmd *cobra.Command, reportID, deviceID, kind string) error {
	formatter := newFormatter(opts, cmd)

	rt, err := opts.openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if deviceID == "" {
		deviceID = rt.cfg.DeviceID
	}
	if deviceID == "" {
		return formatter.Failure(ExitCommandError, "no device id (set --device or GLASSWATCH_DEVICE_ID)", nil)
	}

	var res votes.Result
	switch kind {
	case "cleared":
		res, err = rt.votes.CastCleared(cmd.Context(), reportID, deviceID)
	default:
		res, err = rt.votes.CastStillThere(cmd.Context(), reportID, deviceID)
	}
	if err != nil {
		return formatter.Failure(ExitFailure, "cast vote", err)
	}

	text := fmt.Sprintf("%s vote recorded for %s", kind, reportID)
	if res.AlreadyConfirmed {
		text = fmt.Sprintf("%s vote already confirmed for %s", kind, reportID)
	}
	return formatter.Success(text, map[string]any{
		"success":           res.Success,
		"already_confirmed": res.AlreadyConfirmed,
	})
}
