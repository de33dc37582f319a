// Package stats derives read-only views over a build history.
package stats

import (
	"math"

	"github.com/neilberkman/buildtracker/internal/core/models"
)

// ReportSize is the number of recent builds included in a Report
const ReportSize = 10

// Stats represents aggregate build statistics
type Stats struct {
	Total           int      `json:"total"`
	Success         int      `json:"success"`
	Failed          int      `json:"failed"`
	SuccessRate     int      `json:"success_rate"` // whole percent
	AverageDuration *float64 `json:"average_duration"`
	MostRecent      *string  `json:"most_recent"`
}

// Report combines statistics with the most recent builds
type Report struct {
	Stats        Stats          `json:"stats"`
	RecentBuilds []models.Build `json:"recent_builds"`
}

// List returns the first limit builds, preserving order. A limit larger
// than the history returns everything; limit <= 0 returns nothing.
func List(builds []models.Build, limit int) []models.Build {
	if limit <= 0 {
		return []models.Build{}
	}
	if limit > len(builds) {
		limit = len(builds)
	}
	out := make([]models.Build, limit)
	copy(out, builds[:limit])
	return out
}

// Compute returns statistics for builds, which must be most-recent-first.
// An empty history yields zero counts and nil average and timestamp.
func Compute(builds []models.Build) Stats {
	stats := Stats{Total: len(builds)}
	if stats.Total == 0 {
		return stats
	}

	var durationSum float64
	var durationCount int
	for _, b := range builds {
		switch b.Status {
		case models.StatusSuccess:
			stats.Success++
		case models.StatusFailed:
			stats.Failed++
		}
		if b.DurationMinutes != nil {
			durationSum += *b.DurationMinutes
			durationCount++
		}
	}

	stats.SuccessRate = int(math.Round(float64(stats.Success) / float64(stats.Total) * 100))

	if durationCount > 0 {
		avg := math.Round(durationSum/float64(durationCount)*10) / 10
		stats.AverageDuration = &avg
	}

	mostRecent := builds[0].Timestamp
	stats.MostRecent = &mostRecent

	return stats
}

// BuildReport composes Compute and List over the same builds
func BuildReport(builds []models.Build) Report {
	return Report{
		Stats:        Compute(builds),
		RecentBuilds: List(builds, ReportSize),
	}
}
