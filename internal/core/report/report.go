// Package report renders a stats.Report as text through a mustache
// template.
package report

import (
	"fmt"

	"github.com/cbroglie/mustache"

	"github.com/neilberkman/buildtracker/internal/core/models"
	"github.com/neilberkman/buildtracker/internal/core/stats"
)

// MaxRecent is how many recent builds the rendered report shows
const MaxRecent = 5

// Formatter turns raw values into display strings
type Formatter interface {
	Status(models.Status) string
	Duration(*float64) string
	When(timestamp string) string
}

// Render executes tmpl against r. Available names:
//
//	stats.total, stats.success, stats.failed, stats.success_rate
//	average_duration, most_recent, has_recent
//	recent[]: id, project, status, raw_status, duration, when, description
func Render(tmpl string, r stats.Report, f Formatter) (string, error) {
	recent := r.RecentBuilds
	if len(recent) > MaxRecent {
		recent = recent[:MaxRecent]
	}

	items := make([]map[string]interface{}, 0, len(recent))
	for _, b := range recent {
		items = append(items, map[string]interface{}{
			"id":          b.ID,
			"project":     b.Project,
			"status":      f.Status(b.Status),
			"raw_status":  string(b.Status),
			"duration":    f.Duration(b.DurationMinutes),
			"when":        f.When(b.Timestamp),
			"description": b.Description,
		})
	}

	mostRecent := "N/A"
	if r.Stats.MostRecent != nil {
		mostRecent = f.When(*r.Stats.MostRecent)
	}

	data := map[string]interface{}{
		"stats": map[string]interface{}{
			"total":        r.Stats.Total,
			"success":      r.Stats.Success,
			"failed":       r.Stats.Failed,
			"success_rate": r.Stats.SuccessRate,
		},
		"average_duration": f.Duration(r.Stats.AverageDuration),
		"most_recent":      mostRecent,
		"has_recent":       len(items) > 0,
		"recent":           items,
	}

	out, err := mustache.Render(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}
