package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/buildtracker/internal/core/models"
)

// formatDuration renders minutes as seconds, minutes or hours
func formatDuration(minutes *float64) string {
	if minutes == nil {
		return "N/A"
	}
	m := *minutes
	switch {
	case m < 1:
		return fmt.Sprintf("%ds", int(math.Round(m*60)))
	case m < 60:
		return round1(m) + "m"
	default:
		return round1(m/60) + "h"
	}
}

func round1(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

// statusLabel is the uncolored display form of a status
func statusLabel(s models.Status) string {
	switch s {
	case models.StatusSuccess:
		return "✓ Success"
	case models.StatusFailed:
		return "✗ Failed"
	case models.StatusRunning:
		return "⚡ Running"
	default:
		return "? " + string(s)
	}
}

func formatStatus(s models.Status) string {
	label := statusLabel(s)
	switch s {
	case models.StatusSuccess:
		return successStyle.Render(label)
	case models.StatusFailed:
		return failedStyle.Render(label)
	case models.StatusRunning:
		return runningStyle.Render(label)
	default:
		return unknownStyle.Render(label)
	}
}

// formatWhen renders a stored timestamp relative to now for the last
// week, and as a date beyond that
func formatWhen(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	if time.Since(t) < 7*24*time.Hour {
		return humanize.Time(t)
	}
	local := t.Local()
	if local.Year() == time.Now().Year() {
		return local.Format("Jan 2")
	}
	return local.Format("Jan 2, 2006")
}

// shortRepo drops the github.com prefix from a repo URL
func shortRepo(url *string) string {
	if url == nil || *url == "" {
		return "N/A"
	}
	return strings.TrimPrefix(*url, "https://github.com/")
}

// successBar draws a width-wide bar with the success share filled
func successBar(rate, width int) string {
	filled := int(math.Round(float64(rate) / 100 * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// displayFormatter feeds the report template. Colors are dropped when
// the text is headed for the clipboard.
type displayFormatter struct {
	color bool
}

func (f displayFormatter) Status(s models.Status) string {
	if f.color {
		return formatStatus(s)
	}
	return statusLabel(s)
}

func (f displayFormatter) Duration(d *float64) string { return formatDuration(d) }

func (f displayFormatter) When(ts string) string { return formatWhen(ts) }
