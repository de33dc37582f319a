package sysinfo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// GitInfo is the provenance of a working directory. Fields are nil when
// the directory is not a repository or has no origin remote.
type GitInfo struct {
	CommitHash *string
	RepoURL    *string
}

// Git reads commit and remote information with the git CLI. Every
// command targets the directory via "git -C <dir>" so the process
// working directory is never changed.
type Git struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewGit creates a Git provider. A zero timeout uses DefaultTimeout.
func NewGit(timeout time.Duration, logger *slog.Logger) *Git {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Git{timeout: timeout, logger: logger}
}

// Info returns the HEAD commit and origin URL for dir. Both lookups must
// succeed; otherwise both fields are nil.
func (g *Git) Info(ctx context.Context, dir string) GitInfo {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	commit, err := g.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		g.logger.Debug("git commit lookup failed", "dir", dir, "error", err)
		return GitInfo{}
	}
	remote, err := g.run(ctx, dir, "config", "--get", "remote.origin.url")
	if err != nil {
		g.logger.Debug("git remote lookup failed", "dir", dir, "error", err)
		return GitInfo{}
	}

	return GitInfo{CommitHash: &commit, RepoURL: &remote}
}

func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := args
	if dir != "" {
		fullArgs = append([]string{"-C", dir}, args...)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("git %s: empty output", strings.Join(args, " "))
	}
	return out, nil
}
