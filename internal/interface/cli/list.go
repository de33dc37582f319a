package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/buildtracker/internal/core/models"
	"github.com/neilberkman/buildtracker/internal/core/stats"
)

var (
	listLimit   int
	listProject string
	listStatus  string
	listSince   string
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent builds",
	Long: `List logged builds, most recent first.

Examples:
  buildtracker list
  buildtracker list --limit 5
  buildtracker list --project api --status failed
  buildtracker list --since yesterday`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "Number of builds to show (default from config, 20)")
	listCmd.Flags().StringVar(&listProject, "project", "", "Only builds for this project")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only builds with this status")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only builds after this date (e.g. yesterday, 2024-05-01)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print builds as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	limit := e.cfg.DefaultLimit
	if cmd.Flags().Changed("limit") {
		limit = listLimit
	}

	var builds []models.Build
	if listProject == "" && listStatus == "" && listSince == "" {
		builds, err = e.tracker.ListBuilds(limit)
	} else {
		filter := stats.Filter{Project: listProject, Status: models.Status(listStatus), Limit: limit}
		if listSince != "" {
			if filter.Since, err = parseSince(listSince, time.Now()); err != nil {
				return err
			}
		}
		builds, err = e.tracker.ListBuildsFiltered(filter)
	}
	if err != nil {
		return fmt.Errorf("error listing builds: %w", err)
	}

	out := cmd.OutOrStdout()
	if listJSON {
		return writeJSON(out, builds)
	}

	if len(builds) == 0 {
		fmt.Fprintln(out, warnStyle.Render("No builds found"))
		return nil
	}

	t := newTable("Project", "Status", "Duration", "When", "Repo")
	for _, b := range builds {
		t.Row(
			b.Project,
			formatStatus(b.Status),
			formatDuration(b.DurationMinutes),
			formatWhen(b.Timestamp),
			shortRepo(b.RepoURL),
		)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("🔨 Recent Builds"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, t.Render())
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
