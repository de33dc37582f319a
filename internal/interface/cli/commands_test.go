package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/neilberkman/buildtracker/internal/core/history"
	"github.com/neilberkman/buildtracker/internal/core/models"
	"github.com/neilberkman/buildtracker/internal/core/stats"
)

// resetFlags restores every flag on cmd and its subcommands to its
// default, since cobra binds them to package-level variables
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		if err := f.Value.Set(f.DefValue); err != nil {
			t.Fatalf("reset flag %s: %v", f.Name, err)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(t, sub)
	}
}

// run executes the root command with a fresh history and config under dir
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(t, rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	full := append([]string{
		"--history", filepath.Join(dir, "build-history.json"),
		"--config", filepath.Join(dir, "config.toml"),
	}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BUILDTRACKER_HISTORY", "")

	out, err := run(t, dir, "log", "-p", "api", "-s", "success", "-t", "10", "-r", "https://github.com/acme/api", "--directory", dir)
	if err != nil {
		t.Fatalf("log failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Build logged successfully") || !strings.Contains(out, "Repo: https://github.com/acme/api") {
		t.Errorf("unexpected log output:\n%s", out)
	}

	out, err = run(t, dir, "log", "-p", "web", "-s", "failed", "-t", "20", "-r", "", "--directory", dir)
	if err != nil {
		t.Fatalf("log failed: %v\n%s", err, out)
	}

	out, err = run(t, dir, "list", "--json", "--limit", "1")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	var builds []models.Build
	if err := json.Unmarshal([]byte(out), &builds); err != nil {
		t.Fatalf("list --json output is not JSON: %v\n%s", err, out)
	}
	if len(builds) != 1 || builds[0].Project != "web" {
		t.Errorf("list --limit 1 = %+v", builds)
	}

	out, err = run(t, dir, "stats", "--json")
	if err != nil {
		t.Fatalf("stats failed: %v\n%s", err, out)
	}
	var s stats.Stats
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("stats --json output is not JSON: %v\n%s", err, out)
	}
	if s.Total != 2 || s.SuccessRate != 50 || s.AverageDuration == nil || *s.AverageDuration != 15 {
		t.Errorf("unexpected stats: %+v", s)
	}

	out, err = run(t, dir, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Success Rate") || !strings.Contains(out, "50%") {
		t.Errorf("unexpected stats table:\n%s", out)
	}

	out, err = run(t, dir, "report")
	if err != nil {
		t.Fatalf("report failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Total builds: 2") || !strings.Contains(out, "web") {
		t.Errorf("unexpected report:\n%s", out)
	}

	dbPath := filepath.Join(dir, "export.db")
	out, err = run(t, dir, "export", "--sqlite", dbPath)
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Exported 2 build(s)") {
		t.Errorf("unexpected export output:\n%s", out)
	}

	out, err = run(t, dir, "clear", "--yes")
	if err != nil {
		t.Fatalf("clear failed: %v\n%s", err, out)
	}
	out, err = run(t, dir, "list")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No builds found") {
		t.Errorf("expected empty list after clear:\n%s", out)
	}
}

func TestCommands_CorruptHistoryFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BUILDTRACKER_HISTORY", "")
	if err := os.WriteFile(filepath.Join(dir, "build-history.json"), []byte("{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, dir, "stats"); err == nil {
		t.Error("expected stats to fail on corrupt history")
	}
}

func TestCommands_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BUILDTRACKER_HISTORY", "")

	if out, err := run(t, dir, "log", "-p", "api", "-s", "success", "-r", "https://github.com/acme/api", "--directory", dir); err != nil {
		t.Fatalf("log failed: %v\n%s", err, out)
	}
	if out, err := run(t, dir, "stats", "--json"); err != nil {
		t.Fatalf("stats failed: %v\n%s", err, out)
	}

	// No --json this time: a table, not JSON
	out, err := run(t, dir, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Build Statistics") {
		t.Errorf("expected table output, got:\n%s", out)
	}

	// No --repo-url this time: the second build has none
	if out, err := run(t, dir, "log", "-p", "web", "-s", "failed", "--directory", dir); err != nil {
		t.Fatalf("log failed: %v\n%s", err, out)
	} else if strings.Contains(out, "Repo:") {
		t.Errorf("repo url leaked from previous run:\n%s", out)
	}
}

func TestCommands_ExportWritesEveryBuild(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BUILDTRACKER_HISTORY", "")

	// A hand-edited history may hold more than the retention cap
	const n = history.MaxBuilds + 5
	doc := &history.Document{}
	for i := 0; i < n; i++ {
		doc.Builds = append(doc.Builds, models.Build{
			ID:        fmt.Sprintf("build-%d", i),
			Timestamp: "2024-01-01T00:00:00.000Z",
			Project:   "api",
			Status:    models.StatusSuccess,
		})
	}
	if err := history.New(filepath.Join(dir, "build-history.json")).Save(doc); err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(dir, "export.db")
	out, err := run(t, dir, "export", "--sqlite", dbPath)
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}
	if want := fmt.Sprintf("Exported %d build(s)", n); !strings.Contains(out, want) {
		t.Errorf("expected %q in output:\n%s", want, out)
	}
}
