package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/neilberkman/buildtracker/internal/core/report"
)

var (
	reportJSON bool
	reportCopy bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a comprehensive report",
	Long: `Summarize statistics and the most recent builds.

The text layout is a mustache template; put your own in
~/.config/buildtracker/report_template.txt to change it.

Examples:
  buildtracker report
  buildtracker report --copy
  buildtracker report --json`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the report as JSON")
	reportCmd.Flags().BoolVarP(&reportCopy, "copy", "c", false, "Copy the report to the clipboard")
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	r, err := e.tracker.GenerateReport()
	if err != nil {
		return fmt.Errorf("error generating report: %w", err)
	}

	out := cmd.OutOrStdout()
	if reportJSON {
		return writeJSON(out, r)
	}

	text, err := report.Render(e.cfg.ReportTemplate, r, displayFormatter{color: true})
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, text)

	if reportCopy {
		plain, err := report.Render(e.cfg.ReportTemplate, r, displayFormatter{color: false})
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(plain); err != nil {
			return fmt.Errorf("failed to copy report: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✓ Copied to clipboard"))
	}
	return nil
}
