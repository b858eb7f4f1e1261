package hooks

import (
	"errors"
	"fmt"
)

// Sentinel error kinds from spec §7 that originate in the pipeline itself
// (as opposed to the Intent Store/Machine's own sentinels in internal/intent,
// which the engine surfaces unchanged).
var (
	ErrScopeViolation        = errors.New("hooks: scope violation")
	ErrConcurrencyConflict   = errors.New("hooks: concurrency conflict")
	ErrApprovalDenied        = errors.New("hooks: approval denied")
	ErrExecutorFailure       = errors.New("hooks: executor failure")
	ErrPostProcessingFailure = errors.New("hooks: post-processing failure")
	ErrPreHookBlocked        = errors.New("hooks: pre-hook blocked execution")
	ErrCancelled             = errors.New("hooks: cancelled")
)

// pipelineError wraps a sentinel with the single human-readable reason
// string the engine returns to the caller (spec §7's "every pipeline
// failure returns {success: false, reason}").
type pipelineError struct {
	kind   error
	reason string
}

func (e *pipelineError) Error() string { return e.reason }
func (e *pipelineError) Unwrap() error { return e.kind }

func scopeViolation(path string) error {
	return &pipelineError{kind: ErrScopeViolation, reason: "Scope violation"}
}

func concurrencyConflict(conflictingRevision string) error {
	return &pipelineError{
		kind:   ErrConcurrencyConflict,
		reason: fmt.Sprintf("Concurrency conflict detected (revision %s)", conflictingRevision),
	}
}

func approvalDenied() error {
	return &pipelineError{kind: ErrApprovalDenied, reason: "Human approval denied"}
}

func preHookBlocked() error {
	return &pipelineError{kind: ErrPreHookBlocked, reason: "Pre-hook blocked execution"}
}

func cancelled() error {
	return &pipelineError{kind: ErrCancelled, reason: "cancelled"}
}

func executorFailure(message string) error {
	return &pipelineError{kind: ErrExecutorFailure, reason: message}
}
