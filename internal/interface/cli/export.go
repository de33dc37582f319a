package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neilberkman/buildtracker/internal/core/export"
)

var exportSQLite string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export build history to SQLite",
	Long: `Copy every build in the history into a SQLite database table named
"builds", for ad-hoc SQL. Rows with an existing id are replaced, so the
same database can be refreshed repeatedly.

Examples:
  buildtracker export --sqlite builds.db
  sqlite3 builds.db "SELECT project, AVG(duration_minutes) FROM builds GROUP BY project"`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportSQLite, "sqlite", "", "SQLite database to write")
	_ = exportCmd.MarkFlagRequired("sqlite")
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	doc, err := e.tracker.Store().Load()
	if err != nil {
		return fmt.Errorf("error loading builds: %w", err)
	}
	builds := doc.Builds

	// Make relative paths absolute to current directory
	outputPath := exportSQLite
	if !filepath.IsAbs(outputPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputPath = filepath.Join(cwd, outputPath)
	}

	n, err := export.ToSQLite(outputPath, builds)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d build(s) to %s\n", n, outputPath)
	return nil
}
