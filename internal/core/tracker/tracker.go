// Package tracker is the entry point the CLI and MCP server call. It
// gathers provider data, builds records, and delegates storage and
// aggregation to the history and stats packages.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/neilberkman/buildtracker/internal/core/history"
	"github.com/neilberkman/buildtracker/internal/core/models"
	"github.com/neilberkman/buildtracker/internal/core/stats"
	"github.com/neilberkman/buildtracker/internal/core/sysinfo"
)

// DefaultListLimit is used by callers that have no explicit limit
const DefaultListLimit = 20

// ResourceUsageProvider returns a host snapshot. It must not fail; missing
// readings are nil fields.
type ResourceUsageProvider interface {
	Snapshot(ctx context.Context) models.ResourceSnapshot
}

// GitInfoProvider returns provenance for a directory. It must not fail;
// a non-repository yields nil fields.
type GitInfoProvider interface {
	Info(ctx context.Context, dir string) sysinfo.GitInfo
}

// LogInput describes a build to record
type LogInput struct {
	Project      string
	Description  string
	Status       models.Status
	RepoURL      string
	Duration     *float64 // minutes
	Notes        string
	Directory    string // empty means the current working directory
	EndResources *models.ResourceSnapshot
}

// Tracker records and summarizes builds
type Tracker struct {
	store     *history.Store
	resources ResourceUsageProvider
	git       GitInfoProvider
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides the time source used for ids and timestamps
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// New creates a Tracker
func New(store *history.Store, resources ResourceUsageProvider, git GitInfoProvider, opts ...Option) *Tracker {
	t := &Tracker{
		store:     store,
		resources: resources,
		git:       git,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Store returns the underlying history store
func (t *Tracker) Store() *history.Store {
	return t.store
}

// LogBuild records a build and returns the stored record
func (t *Tracker) LogBuild(ctx context.Context, in LogInput) (models.Build, error) {
	now := t.now()

	dir := in.Directory
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}

	var snapshot models.ResourceSnapshot
	if t.resources != nil {
		snapshot = t.resources.Snapshot(ctx)
	}
	if snapshot.Timestamp == "" {
		snapshot.Timestamp = sysinfo.FormatTimestamp(now)
	}

	var git sysinfo.GitInfo
	if t.git != nil {
		git = t.git.Info(ctx, dir)
	}

	// A zero duration is treated as not supplied.
	var duration *float64
	if in.Duration != nil && *in.Duration != 0 {
		d := *in.Duration
		duration = &d
	}

	build := models.Build{
		ID:              fmt.Sprintf("build-%d", now.UnixMilli()),
		Timestamp:       sysinfo.FormatTimestamp(now),
		Project:         in.Project,
		Description:     in.Description,
		Status:          in.Status,
		DurationMinutes: duration,
		ResourceUsage: models.ResourceUsage{
			Start: snapshot,
			End:   in.EndResources,
		},
		CommitHash:     git.CommitHash,
		RepoURLFromGit: git.RepoURL,
		RepoURL:        models.StringPtr(in.RepoURL),
		Notes:          in.Notes,
	}

	stored, err := t.store.Append(build)
	if err != nil {
		return models.Build{}, fmt.Errorf("failed to save build: %w", err)
	}
	t.logger.Debug("build logged", "id", stored.ID, "project", stored.Project, "path", t.store.Path())
	return stored, nil
}

// ListBuilds returns up to limit builds, most recent first
func (t *Tracker) ListBuilds(limit int) ([]models.Build, error) {
	doc, err := t.store.Load()
	if err != nil {
		return nil, err
	}
	return stats.List(doc.Builds, limit), nil
}

// ListBuildsFiltered returns builds matching f, most recent first
func (t *Tracker) ListBuildsFiltered(f stats.Filter) ([]models.Build, error) {
	doc, err := t.store.Load()
	if err != nil {
		return nil, err
	}
	return stats.Apply(doc.Builds, f), nil
}

// GetStats computes statistics over the current history
func (t *Tracker) GetStats() (stats.Stats, error) {
	doc, err := t.store.Load()
	if err != nil {
		return stats.Stats{}, err
	}
	return stats.Compute(doc.Builds), nil
}

// GenerateReport returns statistics plus the ten most recent builds,
// both taken from a single load of the history.
func (t *Tracker) GenerateReport() (stats.Report, error) {
	doc, err := t.store.Load()
	if err != nil {
		return stats.Report{}, err
	}
	return stats.BuildReport(doc.Builds), nil
}
