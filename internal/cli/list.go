package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glasswatch/glasswatch/internal/model"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hazard reports",
		Long: `List hazard reports in the local store.

By default only active reports (not resolved, not archived) are shown;
--all includes everything.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, all, cmd)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include resolved and archived reports")
	return cmd
}

// reportLine is the JSON row shape for list output.
type reportLine struct {
	ID           string  `json:"id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Description  string  `json:"description"`
	Cleared      int     `json:"cleared_count"`
	StillThere   int     `json:"still_there_count"`
	Resolved     bool    `json:"resolved"`
	Flagged      bool    `json:"flagged"`
	NoGlassFound bool    `json:"no_glass_found"`
	Archived     bool    `json:"archived"`
	SyncStatus   string  `json:"sync_status"`
}

func runList(opts *RootOptions, all bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := opts.openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	recs, err := rt.store.GetAll(cmd.Context())
	if err != nil {
		return formatter.Failure(ExitCommandError, "list reports", err)
	}

	var lines []reportLine
	var text strings.Builder
	for _, rec := range recs {
		if !all && !rec.Active() {
			continue
		}
		lines = append(lines, toLine(rec))
		fmt.Fprintf(&text, "%s  (%.6f, %.6f)  cleared=%d still=%d %s%s\n",
			rec.ID, rec.Lat, rec.Lng, rec.ClearedCount(), rec.StillThereCount(),
			rec.SyncStatus, lifecycleSuffix(rec))
	}

	if len(lines) == 0 {
		return formatter.Success("no reports", []reportLine{})
	}
	return formatter.Success(strings.TrimRight(text.String(), "\n"), lines)
}

func toLine(rec model.HazardReport) reportLine {
	return reportLine{
		ID:           rec.ID,
		Lat:          rec.Lat,
		Lng:          rec.Lng,
		Description:  rec.Description,
		Cleared:      rec.ClearedCount(),
		StillThere:   rec.StillThereCount(),
		Resolved:     rec.Resolved,
		Flagged:      rec.Flagged,
		NoGlassFound: rec.NoGlassFound,
		Archived:     rec.Archived,
		SyncStatus:   string(rec.SyncStatus),
	}
}

func lifecycleSuffix(rec model.HazardReport) string {
	switch {
	case rec.Archived:
		return " [archived]"
	case rec.Resolved:
		return " [resolved]"
	default:
		return ""
	}
}
