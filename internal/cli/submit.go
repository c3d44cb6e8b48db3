package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var photoRef string

	cmd := &cobra.Command{
		Use:           "submit <lat> <lng> <description>",
		Short:         "Submit a new hazard report",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(rootOpts, args, photoRef, cmd)
		},
	}

	cmd.Flags().StringVar(&photoRef, "photo", "", "photo reference (URL or blob handle)")
	return cmd
}

func runSubmit(opts *RootOptions, args []string, photoRef string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return formatter.Failure(ExitCommandError, fmt.Sprintf("invalid latitude %q", args[0]), err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return formatter.Failure(ExitCommandError, fmt.Sprintf("invalid longitude %q", args[1]), err)
	}

	rt, err := opts.openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	rec, err := rt.votes.Submit(cmd.Context(), lat, lng, args[2], photoRef)
	if err != nil {
		return formatter.Failure(ExitFailure, "submit report", err)
	}

	return formatter.Success(
		fmt.Sprintf("submitted %s", rec.ID),
		map[string]any{"id": rec.ID, "sync_status": string(rec.SyncStatus)},
	)
}
