package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize snapshotted content",
		Long: "Stats counts the projects and certificates in the local snapshots and the\n" +
			"years of experience since stats.start_year. It does not contact the service.",
		Args: cobra.NoArgs,
		RunE: runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.fetcher.Stats(a.settings.Stats.StartYear)
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), s)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Projects:         %d\n", s.Projects)
	fmt.Fprintf(out, "Certificates:     %d\n", s.Certificates)
	fmt.Fprintf(out, "Years experience: %d\n", s.YearsExperience)
	return nil
}
