package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvHistory overrides the history file location
const EnvHistory = "BUILDTRACKER_HISTORY"

// DefaultReportTemplate is the mustache layout used when no report_template.txt exists
const DefaultReportTemplate = `Build Tracker Report

Statistics
Total builds: {{stats.total}}
Success rate: {{stats.success_rate}}%
Average duration: {{{average_duration}}}
{{#has_recent}}

Recent Builds
{{#recent}}
  {{{status}}} {{{project}}} ({{{when}}})
{{/recent}}
{{/has_recent}}
`

// Config holds user settings merged from config.toml, the environment and defaults
type Config struct {
	HistoryFile    string        // JSON history document
	DefaultLimit   int           // list limit when --limit is not given
	GitTimeout     time.Duration // bound on each git lookup
	ReportTemplate string        // mustache template for `report`
}

type tomlConfig struct {
	HistoryFile  string `toml:"history_file"`
	DefaultLimit int    `toml:"default_limit"`
	GitTimeout   string `toml:"git_timeout"`
}

// Dir returns ~/.config/buildtracker
func Dir() string {
	return filepath.Join(homeDir(), ".config", "buildtracker")
}

// DefaultHistoryFile returns ~/clawd/memory/build-history.json
func DefaultHistoryFile() string {
	return filepath.Join(homeDir(), "clawd", "memory", "build-history.json")
}

// Load reads config from path, or from ~/.config/buildtracker/config.toml
// when path is empty. A missing file yields defaults; a file that exists
// but does not parse is an error. BUILDTRACKER_HISTORY overrides
// history_file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HistoryFile:    DefaultHistoryFile(),
		DefaultLimit:   20,
		GitTimeout:     5 * time.Second,
		ReportTemplate: DefaultReportTemplate,
	}

	configDir := Dir()
	if path == "" {
		path = filepath.Join(configDir, "config.toml")
	} else {
		configDir = filepath.Dir(path)
	}
	templatePath := filepath.Join(configDir, "report_template.txt")

	// Load TOML config if it exists
	if _, err := os.Stat(path); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(path, &tc); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if tc.HistoryFile != "" {
			cfg.HistoryFile = expandHome(tc.HistoryFile)
		}
		if tc.DefaultLimit > 0 {
			cfg.DefaultLimit = tc.DefaultLimit
		}
		if tc.GitTimeout != "" {
			d, err := time.ParseDuration(tc.GitTimeout)
			if err != nil {
				return nil, fmt.Errorf("invalid git_timeout %q: %w", tc.GitTimeout, err)
			}
			cfg.GitTimeout = d
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	// If custom template exists, use it
	if data, err := os.ReadFile(templatePath); err == nil {
		cfg.ReportTemplate = string(data)
	}

	if env := strings.TrimSpace(os.Getenv(EnvHistory)); env != "" {
		cfg.HistoryFile = expandHome(env)
	}

	return cfg, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}
