// Package sysinfo reads host state for build records: a load and memory
// snapshot, and git provenance for a directory. Every reading is best
// effort; failures produce nil fields, never errors.
package sysinfo

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/neilberkman/buildtracker/internal/core/models"
)

// DefaultTimeout bounds each external lookup
const DefaultTimeout = 5 * time.Second

// Monitor takes resource snapshots of the local host
type Monitor struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewMonitor creates a Monitor
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{now: time.Now, logger: logger}
}

// Snapshot returns the 1-minute load average and the used memory
// percentage, rounded to a whole percent.
func (m *Monitor) Snapshot(ctx context.Context) models.ResourceSnapshot {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	snap := models.ResourceSnapshot{Timestamp: FormatTimestamp(m.now())}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		m.logger.Warn("could not get load average", "error", err)
	} else {
		l := avg.Load1
		snap.LoadAverage = &l
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		m.logger.Warn("could not get memory usage", "error", err)
	} else if vm.Total > 0 {
		pct := math.Round(float64(vm.Used) / float64(vm.Total) * 100)
		snap.MemoryUsagePercent = &pct
	}

	return snap
}

// FormatTimestamp renders t as UTC RFC 3339 with millisecond precision,
// the format used for every timestamp in the history file.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
