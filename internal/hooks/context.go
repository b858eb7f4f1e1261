package hooks

import (
	"fmt"
	"sort"

	"intentguard/internal/intent"
)

// Context is the per-invocation Hook Context (spec §3). It is created fresh
// by the engine for each Execute call, mutated by stages and registered
// hooks, and discarded on return — never retained across invocations.
type Context struct {
	// WorkspaceRoot is the absolute path to the workspace under
	// orchestration.
	WorkspaceRoot string

	// ActiveIntent is populated by context-load.
	ActiveIntent *intent.Intent

	// AllowedPaths is derived from ActiveIntent.OwnedScope by context-load,
	// after context-size truncation.
	AllowedPaths []string

	// Feedback is an append-only sequence of diagnostic strings the caller
	// can surface to a human (formatter/linter output, scope-violation
	// notices, post-hook errors).
	Feedback []string
}

// NewContext returns a fresh Context rooted at workspaceRoot.
func NewContext(workspaceRoot string) *Context {
	return &Context{WorkspaceRoot: workspaceRoot}
}

// note appends a diagnostic to the feedback sink.
func (c *Context) note(format string, args ...interface{}) {
	c.Feedback = append(c.Feedback, fmt.Sprintf(format, args...))
}

// Limits bounds the context-size controls applied during context-load
// (spec §4.6 stage 1).
type Limits struct {
	MaxOwnedScope         int
	MaxConstraints        int
	MaxAcceptanceCriteria int
}

// DefaultLimits matches the 10/20/15 constants named in spec §4.6.
func DefaultLimits() Limits {
	return Limits{MaxOwnedScope: 10, MaxConstraints: 20, MaxAcceptanceCriteria: 15}
}

// truncateScope applies the context-size controls to a copy of it,
// returning the (possibly shortened) slice/map and the diagnostics to
// append to the feedback sink. It is idempotent: calling it again on its
// own output with the same limits is a no-op (spec §8 property 7), since
// truncation only ever removes entries past the cap and never reorders or
// regrows what remains.
func truncateScope(it *intent.Intent, limits Limits) (scope []string, constraints map[string]string, acceptance []string, notes []string) {
	scope = truncateStrings(it.OwnedScope, limits.MaxOwnedScope, "owned_scope", &notes)
	acceptance = truncateStrings(it.AcceptanceCriteria, limits.MaxAcceptanceCriteria, "acceptance_criteria", &notes)
	constraints, cTruncated := truncateConstraints(it.Constraints, limits.MaxConstraints)
	if cTruncated {
		notes = append(notes, fmt.Sprintf("context-size control: constraints truncated to %d entries", limits.MaxConstraints))
	}
	return scope, constraints, acceptance, notes
}

func truncateStrings(in []string, max int, label string, notes *[]string) []string {
	if max <= 0 || len(in) <= max {
		out := make([]string, len(in))
		copy(out, in)
		return out
	}
	*notes = append(*notes, fmt.Sprintf("context-size control: %s truncated to %d entries", label, max))
	out := make([]string, max)
	copy(out, in[:max])
	return out
}

func truncateConstraints(in map[string]string, max int) (map[string]string, bool) {
	if max <= 0 || len(in) <= max {
		out := make(map[string]string, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out, false
	}
	// Maps have no stable order; sort keys so truncation is deterministic
	// and therefore idempotent across repeated application.
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, max)
	for _, k := range keys[:max] {
		out[k] = in[k]
	}
	return out, true
}
