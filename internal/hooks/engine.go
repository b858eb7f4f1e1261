package hooks

import (
	"context"
	"time"

	"intentguard/internal/collab"
	"intentguard/internal/intent"
	"intentguard/internal/logging"
	"intentguard/internal/trace"
	"intentguard/internal/vcs"
)

// Result is the pipeline's outcome (spec §6's {success, reason?}). Feedback
// carries the Hook Context's diagnostic sink — multi-line context the spec
// says belongs here rather than in Reason, "to be surfaced by the host UI".
type Result struct {
	Success  bool
	Reason   string
	Feedback []string
}

// traceAppender is the narrow slice of *trace.Ledger the engine needs,
// named here so standard.go's postTrace can be exercised with a test double
// that never touches disk.
type traceAppender interface {
	AppendFileChange(trace.AppendFileChangeInput) (*trace.Entry, error)
}

// Engine is the Hook Pipeline Engine (spec §4.6): the ordered middleware
// driver wrapping each tool invocation.
type Engine struct {
	workspaceRoot string
	store         *intent.Store
	machine       *intent.Machine
	ledger        traceAppender
	guard         *ConcurrencyGuard
	limits        Limits
	formatter     collab.FormatterLinter
	approver      collab.ApprovalPrompter

	pre  []PreHook
	post []PostHook
}

// EngineConfig collects an Engine's collaborators and tuning knobs.
type EngineConfig struct {
	WorkspaceRoot string
	Store         *intent.Store
	Machine       *intent.Machine
	Ledger        *trace.Ledger
	SyncTracker   *vcs.SyncTracker
	Limits        Limits
	Formatter     collab.FormatterLinter
	Approver      collab.ApprovalPrompter
	// ConcurrencyTimeout bounds how long the concurrency guard waits for a
	// per-path lock before failing fast with ConcurrencyConflict.
	ConcurrencyTimeout time.Duration
}

// NewEngine builds an Engine from cfg.
func NewEngine(cfg EngineConfig) *Engine {
	timeout := cfg.ConcurrencyTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &Engine{
		workspaceRoot: cfg.WorkspaceRoot,
		store:         cfg.Store,
		machine:       cfg.Machine,
		ledger:        cfg.Ledger,
		guard:         NewConcurrencyGuard(cfg.SyncTracker, timeout),
		limits:        cfg.Limits,
		formatter:     cfg.Formatter,
		approver:      cfg.Approver,
	}
}

// RegisterPre appends hook to the ordered pre-hook registry.
func (e *Engine) RegisterPre(hook PreHook) { e.pre = append(e.pre, hook) }

// RegisterPost appends hook to the ordered post-hook registry.
func (e *Engine) RegisterPost(hook PostHook) { e.post = append(e.post, hook) }

// Execute drives a single tool invocation through all eight pipeline
// stages (spec §4.6). Any stage short-circuits the rest on a non-allow
// outcome; post stages run only after a successful executor return.
func (e *Engine) Execute(ctx context.Context, event collab.ToolEvent, executor collab.Executor) Result {
	if err := ctx.Err(); err != nil {
		return reject(NewContext(e.workspaceRoot), cancelled())
	}

	hctx := NewContext(e.workspaceRoot)

	// Stage 1: context-load.
	if err := contextLoad(event, hctx, e.store, e.machine, e.limits); err != nil {
		return reject(hctx, err)
	}

	// Stage 2: registered pre-hooks, in registration order.
	for _, hook := range e.pre {
		allow, err := hook(event, hctx)
		if err != nil {
			return reject(hctx, err)
		}
		if !allow {
			return reject(hctx, preHookBlocked())
		}
	}

	// Stage 3: scope validation.
	if err := scopeValidate(event, hctx); err != nil {
		return reject(hctx, err)
	}

	// Stage 4: concurrency guard. The lock is released at pipeline exit
	// regardless of outcome.
	release, err := e.guard.Acquire(ctx, event.Payload.FilePath)
	defer release()
	if err != nil {
		return reject(hctx, err)
	}

	// Stage 5: approval gate.
	if err := approvalGate(event, hctx, e.approver); err != nil {
		return reject(hctx, err)
	}

	if err := ctx.Err(); err != nil {
		return reject(hctx, cancelled())
	}

	// Stage 6: executor. Exceptions (returned errors) convert to a failed
	// result and skip post-trace and post-hooks, but a diagnostic is still
	// appended via AppendRaw so audits observe the attempted call.
	result, execErr := executor(event)
	if execErr != nil {
		e.recordAttempt(event, execErr)
		return reject(hctx, executorFailure(execErr.Error()))
	}
	if !result.Success {
		e.recordAttempt(event, nil)
		return Result{Success: false, Reason: result.Message, Feedback: hctx.Feedback}
	}
	e.guard.Resync()

	// Stage 7: post-trace (built-in post).
	postTrace(event, hctx, e.formatter, e.ledger)

	// Stage 8: registered post-hooks. Their own errors become feedback,
	// never alter the pipeline result.
	for _, hook := range e.post {
		if err := hook(event, hctx, result); err != nil {
			hctx.note("post-hook error: %v", err)
			logging.HooksDebug("post-hook error: %v", err)
		}
	}

	logging.HooksDebug("execute: tool=%s intent=%s success=true", event.ToolName, event.IntentID)
	return Result{Success: true, Feedback: hctx.Feedback}
}

// recordAttempt appends a best-effort diagnostic for an executor call that
// failed before post-trace could run (spec §7).
func (e *Engine) recordAttempt(event collab.ToolEvent, execErr error) {
	if raw, ok := e.ledger.(interface {
		AppendRaw(map[string]interface{}) error
	}); ok {
		record := map[string]interface{}{
			"toolName": event.ToolName,
			"intentId": event.IntentID,
			"attempted": true,
		}
		if execErr != nil {
			record["error"] = execErr.Error()
		}
		if err := raw.AppendRaw(record); err != nil {
			logging.HooksDebug("could not record attempted-call diagnostic: %v", err)
		}
	}
}

func reject(hctx *Context, err error) Result {
	return Result{Success: false, Reason: err.Error(), Feedback: hctx.Feedback}
}

func traceFileChangeInput(event collab.ToolEvent, hctx *Context) trace.AppendFileChangeInput {
	input := trace.AppendFileChangeInput{
		IntentID: event.IntentID,
		FilePath: event.Payload.FilePath,
		Notes:    traceNote(event),
	}
	if event.Payload.Before != "" || event.Payload.After != "" {
		before, after := event.Payload.Before, event.Payload.After
		input.Before = &before
		input.After = &after
	}
	return input
}
