// Package vcs inspects the git working tree the tools write into. Every
// generator assumes a clean tree so a bad run can be thrown away with a
// reset; this package only reports state and never modifies the repository.
package vcs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"pandaskit/internal/logging"
)

// ErrUnavailable is returned when git is not installed or Dir is not inside
// a work tree.
var ErrUnavailable = errors.New("git working tree unavailable")

// Change is one entry of `git status --porcelain`.
type Change struct {
	Status string // two-letter XY code, e.g. " M", "??"
	Path   string
}

// Git runs git commands rooted at Dir.
type Git struct {
	Dir string
}

// Available reports whether a git binary is on PATH.
func (g Git) Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsWorkTree reports whether Dir is inside a git work tree.
func (g Git) IsWorkTree(ctx context.Context) bool {
	if !g.Available() {
		return false
	}
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// Status lists uncommitted changes, optionally limited to paths.
func (g Git) Status(ctx context.Context, paths ...string) ([]Change, error) {
	if !g.IsWorkTree(ctx) {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, g.Dir)
	}

	args := []string{"status", "--porcelain"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	changes := parsePorcelain(out)
	logging.VCSDebug("git status in %s: %d change(s)", g.Dir, len(changes))
	return changes, nil
}

// Dirty reports whether any of paths (or the whole tree) has uncommitted
// changes.
func (g Git) Dirty(ctx context.Context, paths ...string) (bool, error) {
	changes, err := g.Status(ctx, paths...)
	if err != nil {
		return false, err
	}
	return len(changes) > 0, nil
}

// Branch returns the checked-out branch name, or "" on a detached HEAD.
func (g Git) Branch(ctx context.Context) (string, error) {
	if !g.IsWorkTree(ctx) {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, g.Dir)
	}
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	if err != nil {
		// A fresh repository has no HEAD commit yet.
		logging.VCSWarn("git rev-parse HEAD in %s: %v", g.Dir, err)
		return "", nil
	}
	name := strings.TrimSpace(string(out))
	if name == "HEAD" {
		return "", nil
	}
	return name, nil
}

func parsePorcelain(out []byte) []Change {
	var changes []Change
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if len(line) < 4 {
			continue
		}
		path := line[3:]
		// Renames are reported as "old -> new".
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		changes = append(changes, Change{Status: line[:2], Path: strings.Trim(path, `"`)})
	}
	return changes
}
