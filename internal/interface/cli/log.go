package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/buildtracker/internal/core/models"
	"github.com/neilberkman/buildtracker/internal/core/tracker"
)

var (
	logProject     string
	logDescription string
	logStatus      string
	logRepoURL     string
	logDuration    float64
	logNotes       string
	logDirectory   string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a build",
	Long: `Record a build in the history.

Git commit and origin remote are read from --directory (default: current
directory) and a load/memory snapshot is taken from this host. Neither is
required: outside a repository those fields are stored as null.

Examples:
  buildtracker log -p api -s success -t 12.5
  buildtracker log -p web -s failed -n "flaky e2e" --directory ~/src/web
  buildtracker log -p docs -s running -r https://github.com/acme/docs`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringVarP(&logProject, "project", "p", "", "Project name")
	logCmd.Flags().StringVarP(&logDescription, "description", "d", "", "Build description")
	logCmd.Flags().StringVarP(&logStatus, "status", "s", "", "Build status (success/failed/running)")
	logCmd.Flags().StringVarP(&logRepoURL, "repo-url", "r", "", "GitHub repository URL")
	logCmd.Flags().Float64VarP(&logDuration, "duration", "t", 0, "Build duration in minutes")
	logCmd.Flags().StringVarP(&logNotes, "notes", "n", "", "Additional notes")
	logCmd.Flags().StringVar(&logDirectory, "directory", "", "Project directory (for git info, default current directory)")
	_ = logCmd.MarkFlagRequired("project")
	_ = logCmd.MarkFlagRequired("status")
}

func runLog(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	in := tracker.LogInput{
		Project:     logProject,
		Description: logDescription,
		Status:      models.Status(logStatus),
		RepoURL:     logRepoURL,
		Notes:       logNotes,
		Directory:   logDirectory,
	}
	if cmd.Flags().Changed("duration") {
		if logDuration < 0 {
			return fmt.Errorf("duration must not be negative")
		}
		d := logDuration
		in.Duration = &d
	}

	candidate := models.Build{Project: in.Project, Status: in.Status}
	if err := candidate.Validate(); err != nil {
		return err
	}
	if !in.Status.Known() {
		e.logger.Warn("unrecognized status, storing as given", "status", in.Status)
	}

	build, err := e.tracker.LogBuild(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("error logging build: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render("✓ Build logged successfully"))
	fmt.Fprintf(out, "  ID: %s\n", build.ID)
	fmt.Fprintf(out, "  Project: %s\n", build.Project)
	fmt.Fprintf(out, "  Status: %s\n", formatStatus(build.Status))
	if build.DurationMinutes != nil {
		fmt.Fprintf(out, "  Duration: %s\n", formatDuration(build.DurationMinutes))
	}
	if build.RepoURL != nil {
		fmt.Fprintf(out, "  Repo: %s\n", *build.RepoURL)
	}
	return nil
}
