package models

import (
	"errors"
	"strings"
)

// Status is the outcome of a build. Values outside the known set are
// stored and returned unchanged.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusRunning Status = "running"
)

// Known reports whether s is one of success, failed or running.
func (s Status) Known() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusRunning:
		return true
	}
	return false
}

// ResourceSnapshot is a point-in-time reading of host load and memory.
// Nil fields mean the reading was unavailable.
type ResourceSnapshot struct {
	LoadAverage        *float64 `json:"load_average"`
	MemoryUsagePercent *float64 `json:"memory_usage_percent"`
	Timestamp          string   `json:"timestamp"`
}

// ResourceUsage pairs the snapshot taken at log time with an optional
// snapshot supplied by the caller for the end of the build.
type ResourceUsage struct {
	Start ResourceSnapshot  `json:"start"`
	End   *ResourceSnapshot `json:"end"`
}

// Build is one logged build event
type Build struct {
	ID              string        `json:"id"`
	Timestamp       string        `json:"timestamp"` // RFC 3339, UTC
	Project         string        `json:"project"`
	Description     string        `json:"description"`
	Status          Status        `json:"status"`
	DurationMinutes *float64      `json:"duration_minutes"`
	ResourceUsage   ResourceUsage `json:"resource_usage"`
	CommitHash      *string       `json:"commit_hash"`
	RepoURLFromGit  *string       `json:"repo_url_from_git"`
	RepoURL         *string       `json:"repo_url"`
	Notes           string        `json:"notes"`
}

// Validate checks if the build has required fields
func (b *Build) Validate() error {
	if strings.TrimSpace(b.Project) == "" {
		return errors.New("project is required")
	}
	if strings.TrimSpace(string(b.Status)) == "" {
		return errors.New("status is required")
	}
	return nil
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
