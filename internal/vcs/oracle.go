// Package vcs implements the Revision Oracle (spec §4.1): a best-effort
// view of the workspace's current version-control revision, grounded in
// the teacher's internal/world/git_scanner.go shell-out pattern but
// reduced to the two read-only queries the core actually needs.
package vcs

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"intentguard/internal/logging"
)

// Unknown is the sentinel returned whenever a query can't be answered —
// the workspace isn't a git repo, git isn't installed, or the command
// failed for any reason. The oracle never propagates these failures.
const Unknown = "unknown"

// Oracle is the Revision Oracle collaborator (spec §4.1, §6).
type Oracle interface {
	CurrentRevision() string
	FileDigestAtHead(path string) string
}

// GitOracle answers revision queries by shelling out to the git binary
// found on PATH. All failures are swallowed and translated to Unknown so
// the ledger stays writable outside a version-controlled workspace.
type GitOracle struct {
	workspaceRoot string
	timeout       time.Duration
}

// NewGitOracle returns an Oracle rooted at workspaceRoot.
func NewGitOracle(workspaceRoot string) *GitOracle {
	return &GitOracle{workspaceRoot: workspaceRoot, timeout: 5 * time.Second}
}

// CurrentRevision returns the 40-character commit id of HEAD, or Unknown.
func (g *GitOracle) CurrentRevision() string {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	out, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		logging.VCSDebug("current revision unavailable: %v", err)
		return Unknown
	}

	rev := strings.TrimSpace(out)
	if len(rev) != 40 {
		return Unknown
	}
	return rev
}

// FileDigestAtHead returns a content-addressed identifier for path as it
// exists at HEAD (the git blob hash), or Unknown.
func (g *GitOracle) FileDigestAtHead(path string) string {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	out, err := g.run(ctx, "rev-parse", "HEAD:"+path)
	if err != nil {
		logging.VCSDebug("file digest unavailable for %s: %v", path, err)
		return Unknown
	}

	digest := strings.TrimSpace(out)
	if digest == "" {
		return Unknown
	}
	return digest
}

func (g *GitOracle) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.workspaceRoot
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// NullOracle always reports Unknown; useful for tests and for running
// outside any workspace.
type NullOracle struct{}

func (NullOracle) CurrentRevision() string            { return Unknown }
func (NullOracle) FileDigestAtHead(path string) string { return Unknown }
