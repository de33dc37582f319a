package stats

import (
	"strings"
	"time"

	"github.com/neilberkman/buildtracker/internal/core/models"
)

// Filter narrows a build list. Zero-valued fields match everything.
type Filter struct {
	Project string
	Status  models.Status
	Since   time.Time
	Limit   int
}

// Apply returns builds matching f, in order, capped at f.Limit.
// Builds whose timestamp cannot be parsed never match a Since filter.
func Apply(builds []models.Build, f Filter) []models.Build {
	matched := make([]models.Build, 0, len(builds))
	for _, b := range builds {
		if f.Project != "" && !strings.EqualFold(b.Project, f.Project) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if !f.Since.IsZero() {
			ts, err := time.Parse(time.RFC3339Nano, b.Timestamp)
			if err != nil || ts.Before(f.Since) {
				continue
			}
		}
		matched = append(matched, b)
	}
	return List(matched, f.Limit)
}
