package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const barLength = 40

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show build statistics",
	Long: `Display totals, success rate, average duration and the time of the
most recent build.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	s, err := e.tracker.GetStats()
	if err != nil {
		return fmt.Errorf("error getting stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		return writeJSON(out, s)
	}

	mostRecent := "N/A"
	if s.MostRecent != nil {
		mostRecent = formatWhen(*s.MostRecent)
	}

	t := newTable("Metric", "Value").
		Row("Total Builds", fmt.Sprint(s.Total)).
		Row("Successful", successStyle.Render(fmt.Sprint(s.Success))).
		Row("Failed", failedStyle.Render(fmt.Sprint(s.Failed))).
		Row("Success Rate", fmt.Sprintf("%d%%", s.SuccessRate)).
		Row("Average Duration", formatDuration(s.AverageDuration)).
		Row("Most Recent", mostRecent)

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("📊 Build Statistics"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, t.Render())

	if s.Total > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render("📈 Success Rate Visualization"))
		fmt.Fprintf(out, "%s %d%%\n", successStyle.Render(successBar(s.SuccessRate, barLength)), s.SuccessRate)
	}
	return nil
}
