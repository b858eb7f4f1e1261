// Package collab defines the collaborator interfaces the core consumes but
// never implements itself (spec §1, §6, §9's dependency-injection note):
// the revision provider, the formatter/linter invoker, the approval
// prompter, and the executor. Concrete implementations live outside this
// package — in cmd/intentguard for the CLI, or supplied by an embedding
// editor/agent host.
package collab

// RevisionProvider is the shape of the two read-only revision queries
// (current revision, per-file digest at HEAD). internal/vcs.Oracle has the
// same method set and satisfies it. The core does not consume this
// interface: internal/trace and internal/hooks take internal/vcs types
// (Oracle, SyncTracker) directly.
type RevisionProvider interface {
	CurrentRevision() string
	FileDigestAtHead(path string) string
}

// FormatterLinter runs an external formatter or linter against path and
// reports its raw output. Failures are never fatal to the pipeline — stdout
// and stderr become feedback diagnostics regardless of exit status.
type FormatterLinter interface {
	Run(path string) (FormatResult, error)
}

// FormatResult is the raw output of one formatter/linter invocation.
type FormatResult struct {
	Stdout string
	Stderr string
}

// ApprovalPrompter asks a human (or a scripted test double) whether a
// destructive command should proceed. Implementations must treat a timeout
// as rejection (spec §5).
type ApprovalPrompter interface {
	Confirm(message string) bool
}

// ApprovalPrompterFunc adapts a plain function to ApprovalPrompter.
type ApprovalPrompterFunc func(message string) bool

func (f ApprovalPrompterFunc) Confirm(message string) bool { return f(message) }

// ToolEvent is the caller-presented description of a single mutating tool
// invocation (spec §3 Hook Context, §6).
type ToolEvent struct {
	ToolName string
	IntentID string
	Payload  ToolPayload
}

// ToolPayload is the typed discriminated record spec §9 prescribes in place
// of an `any`-typed payload. The core reads only the fields named here and
// leaves everything else to the concrete executor.
type ToolPayload struct {
	FilePath    string
	Command     string
	CommandType string
	Before      string
	After       string
}

// ToolResult is the executor's outcome (spec §6).
type ToolResult struct {
	Success bool
	Message string
	Data    map[string]interface{}
}

// Executor performs the actual tool action described by a ToolEvent. The
// engine never imports a concrete executor — it receives one as a plain
// function value at Execute time (spec §9's circular-dependency note).
type Executor func(event ToolEvent) (ToolResult, error)
