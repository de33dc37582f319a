package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/buildtracker/internal/core/config"
	"github.com/neilberkman/buildtracker/internal/core/history"
	"github.com/neilberkman/buildtracker/internal/core/sysinfo"
	"github.com/neilberkman/buildtracker/internal/core/tracker"
)

var (
	historyPath string
	configPath  string
	verbose     bool
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "buildtracker",
	Short: "Track nightly builds and their metadata",
	Long: `buildtracker - log builds and see how they are going

Records project, status, duration, git commit and a host resource snapshot
for every build in a local JSON history (the 100 most recent are kept), and
summarizes them as lists, statistics and reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "History file path (default from config, then ~/clawd/memory/build-history.json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.config/buildtracker/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// env holds everything a command needs, built from flags and config
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracker *tracker.Tracker
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if historyPath != "" {
		cfg.HistoryFile = historyPath
	}

	logger := newLogger(verbose || debugEnv())
	store := history.New(cfg.HistoryFile)
	tr := tracker.New(store,
		sysinfo.NewMonitor(logger),
		sysinfo.NewGit(cfg.GitTimeout, logger),
		tracker.WithLogger(logger),
	)
	logger.Debug("using history file", "path", cfg.HistoryFile)

	return &env{cfg: cfg, logger: logger, tracker: tr}, nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func debugEnv() bool {
	v := os.Getenv("BUILDTRACKER_DEBUG")
	return v == "1" || strings.EqualFold(v, "true")
}
