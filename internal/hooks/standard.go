// Package hooks implements the Hook Pipeline Engine (spec §4.6) and the
// Standard Hooks (spec §4.7): the built-in pre/post stages — context-load,
// scope-validate, approval-gate, post-trace — each a function over
// (event, context) so alternate drivers can reuse them (the concurrency
// guard is the ConcurrencyGuard type in concurrency.go, keyed by path),
// grounded in the teacher's internal/tools/registry.go ordered-registration
// pattern generalized from tool lookup to middleware stages.
package hooks

import (
	"fmt"

	"intentguard/internal/collab"
	"intentguard/internal/intent"
	"intentguard/internal/logging"
)

// PreHook may inspect and veto a tool call before it reaches the executor.
// Returning false aborts the pipeline with reason "Pre-hook blocked
// execution" (spec §4.6 stage 2).
type PreHook func(event collab.ToolEvent, hctx *Context) (bool, error)

// PostHook observes a tool call's outcome; it cannot alter the pipeline
// result. A returned error becomes a feedback diagnostic only (spec §4.6
// stage 8) — it never changes Result.Success or Result.Reason.
type PostHook func(event collab.ToolEvent, hctx *Context, result collab.ToolResult) error

// contextLoad implements stage 1: load the intent, evaluate the guard,
// transition PENDING to IN_PROGRESS, apply context-size controls, and
// populate hctx.ActiveIntent / hctx.AllowedPaths.
func contextLoad(event collab.ToolEvent, hctx *Context, store *intent.Store, machine *intent.Machine, limits Limits) error {
	status, err := machine.Guard(event.IntentID)
	if err != nil {
		return err
	}

	if status == intent.Pending {
		if err := machine.MarkInProgress(event.IntentID); err != nil {
			return err
		}
	}

	it, err := store.LoadOne(event.IntentID)
	if err != nil {
		return err
	}

	scope, constraints, acceptance, notes := truncateScope(it, limits)
	loaded := *it
	loaded.OwnedScope = scope
	loaded.Constraints = constraints
	loaded.AcceptanceCriteria = acceptance

	hctx.ActiveIntent = &loaded
	hctx.AllowedPaths = scope
	for _, n := range notes {
		hctx.note("%s", n)
		logging.HooksDebug("%s", n)
	}
	return nil
}

// scopeValidate implements stage 3. A payload with no filePath (e.g. a
// non-file tool call) is always in scope — there is nothing to confine.
func scopeValidate(event collab.ToolEvent, hctx *Context) error {
	path := event.Payload.FilePath
	if path == "" {
		return nil
	}

	ok, _ := inScope(hctx.WorkspaceRoot, path, hctx.AllowedPaths)
	if ok {
		return nil
	}

	hctx.note("Scope violation: Agent attempted to modify %s", path)
	logging.ScopeWarn("scope violation: %s not within %v", path, hctx.AllowedPaths)
	return scopeViolation(path)
}

// approvalGate implements stage 5. Non-destructive commands never prompt.
func approvalGate(event collab.ToolEvent, hctx *Context, prompter collab.ApprovalPrompter) error {
	if event.Payload.CommandType != "destructive" {
		return nil
	}
	if prompter == nil {
		// No approver wired: fail closed, matching the "approval gate
		// treats timeout as rejection" posture for the degenerate case of
		// no approver at all.
		hctx.note("no approval prompter configured; denying destructive command")
		return approvalDenied()
	}

	approved := prompter.Confirm(event.Payload.Command)
	logging.ApprovalInfo("approval request for %q: approved=%v", event.Payload.Command, approved)
	if !approved {
		return approvalDenied()
	}
	return nil
}

// postTrace implements stage 7: best-effort formatter/linter invocation
// followed by an unconditional appendFileChange call when the payload names
// a file.
func postTrace(event collab.ToolEvent, hctx *Context, formatter collab.FormatterLinter, ledger traceAppender) {
	path := event.Payload.FilePath
	if path == "" {
		return
	}

	if formatter != nil {
		result, err := formatter.Run(path)
		if err != nil {
			hctx.note("formatter/linter failed for %s: %v", path, err)
			logging.HooksDebug("formatter/linter error for %s: %v", path, err)
		} else {
			if result.Stdout != "" {
				hctx.note("formatter: %s", result.Stdout)
			}
			if result.Stderr != "" {
				hctx.note("linter: %s", result.Stderr)
			}
		}
	}

	input := traceFileChangeInput(event, hctx)
	if _, err := ledger.AppendFileChange(input); err != nil {
		hctx.note("post-trace failed for %s: %v", path, err)
		logging.HooksDebug("post-trace error: %v", err)
	}
}

func traceNote(event collab.ToolEvent) string {
	return fmt.Sprintf("tool=%s", event.ToolName)
}
