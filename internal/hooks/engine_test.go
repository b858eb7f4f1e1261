package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"intentguard/internal/collab"
	"intentguard/internal/intent"
	"intentguard/internal/trace"
	"intentguard/internal/vcs"
)

const engineTestLedger = `
active_intent: ""
intents:
  - id: INT-001
    description: "auth work"
    status: PENDING
    owned_scope: ["src/auth/**"]
  - id: INT-003
    description: "done work"
    status: COMPLETED
    owned_scope: ["src/done/**"]
  - id: INT-004
    description: "locked work"
    status: LOCKED
    owned_scope: ["src/locked/**"]
`

type testFixture struct {
	workspace string
	store     *intent.Store
	machine   *intent.Machine
	ledger    *trace.Ledger
	engine    *Engine
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	ws := t.TempDir()

	ledgerPath := filepath.Join(ws, intent.FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(ledgerPath), 0755))
	require.NoError(t, os.WriteFile(ledgerPath, []byte(engineTestLedger), 0644))

	store := intent.NewStore(ws)
	machine := intent.NewMachine(store)

	traceLedger, err := trace.Open(ws, vcs.NullOracle{})
	require.NoError(t, err)
	t.Cleanup(func() { traceLedger.Close() })

	engine := NewEngine(EngineConfig{
		WorkspaceRoot: ws,
		Store:         store,
		Machine:       machine,
		Ledger:        traceLedger,
		Limits:        DefaultLimits(),
	})

	return &testFixture{workspace: ws, store: store, machine: machine, ledger: traceLedger, engine: engine}
}

func (f *testFixture) traceLines(t *testing.T) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.workspace, trace.FileName))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func successExecutor(t *testing.T) (collab.Executor, *bool) {
	called := false
	return func(event collab.ToolEvent) (collab.ToolResult, error) {
		called = true
		return collab.ToolResult{Success: true}, nil
	}, &called
}

func TestExecuteHappyPathS1(t *testing.T) {
	f := newFixture(t)
	executor, called := successExecutor(t)

	result := f.engine.Execute(context.Background(), collab.ToolEvent{
		ToolName: "write_file",
		IntentID: "INT-001",
		Payload: collab.ToolPayload{
			FilePath: "src/auth/user.ts",
			Before:   "",
			After:    "export function hash(){}\n",
		},
	}, executor)

	require.True(t, result.Success)
	require.True(t, *called)

	status, err := f.machine.Status("INT-001")
	require.NoError(t, err)
	require.Equal(t, intent.InProgress, status)

	lines := f.traceLines(t)
	require.Len(t, lines, 1)
	require.Equal(t, "INT-001", lines[0]["intentId"])

	files := lines[0]["files"].([]interface{})
	require.Len(t, files, 1)
	record := files[0].(map[string]interface{})
	require.Equal(t, "src/auth/user.ts", record["relativePath"])

	classes := toStringSlice(record["mutationClasses"])
	require.Contains(t, classes, "ADD_FUNCTION")
	require.Contains(t, classes, "ADD_EXPORT")
}

func TestExecuteScopeViolationS2(t *testing.T) {
	f := newFixture(t)
	executor, called := successExecutor(t)

	result := f.engine.Execute(context.Background(), collab.ToolEvent{
		ToolName: "write_file",
		IntentID: "INT-001",
		Payload:  collab.ToolPayload{FilePath: "src/ui/Button.tsx"},
	}, executor)

	require.False(t, result.Success)
	require.Equal(t, "Scope violation", result.Reason)
	require.False(t, *called)
	require.Empty(t, f.traceLines(t))

	found := false
	for _, fb := range result.Feedback {
		if strings.Contains(fb, "Scope violation: Agent attempted to modify src/ui/Button.tsx") {
			found = true
		}
	}
	require.True(t, found, "expected scope violation feedback, got %v", result.Feedback)
}

func TestExecuteCompletedIntentS3(t *testing.T) {
	f := newFixture(t)
	executor, called := successExecutor(t)

	result := f.engine.Execute(context.Background(), collab.ToolEvent{
		ToolName: "write_file",
		IntentID: "INT-003",
		Payload:  collab.ToolPayload{FilePath: "src/done/x.ts"},
	}, executor)

	require.False(t, result.Success)
	require.Contains(t, result.Reason, "COMPLETED")
	require.Contains(t, result.Reason, "INT-001")
	require.False(t, *called)
}

func TestExecuteLockedIntentNeverReachesExecutor(t *testing.T) {
	f := newFixture(t)
	executor, called := successExecutor(t)

	result := f.engine.Execute(context.Background(), collab.ToolEvent{
		ToolName: "write_file",
		IntentID: "INT-004",
		Payload:  collab.ToolPayload{FilePath: "src/locked/x.ts"},
	}, executor)

	require.False(t, result.Success)
	require.False(t, *called)
}

func TestExecuteRevisionUnavailableS7(t *testing.T) {
	f := newFixture(t)
	executor, _ := successExecutor(t)

	result := f.engine.Execute(context.Background(), collab.ToolEvent{
		ToolName: "write_file",
		IntentID: "INT-001",
		Payload:  collab.ToolPayload{FilePath: "src/auth/a.ts", After: "let x = 1\n"},
	}, executor)
	require.True(t, result.Success)

	lines := f.traceLines(t)
	require.Len(t, lines, 1)
	vcsField := lines[0]["vcs"].(map[string]interface{})
	require.Equal(t, "unknown", vcsField["revision_id"])
}

func TestExecuteApprovalDeniedForDestructiveCommand(t *testing.T) {
	f := newFixture(t)
	f.engine.approver = collab.ApprovalPrompterFunc(func(message string) bool { return false })
	executor, called := successExecutor(t)

	result := f.engine.Execute(context.Background(), collab.ToolEvent{
		ToolName: "run_command",
		IntentID: "INT-001",
		Payload: collab.ToolPayload{
			FilePath:    "src/auth/a.ts",
			Command:     "rm -rf src/auth",
			CommandType: "destructive",
		},
	}, executor)

	require.False(t, result.Success)
	require.Equal(t, "Human approval denied", result.Reason)
	require.False(t, *called)
}

func TestExecuteApprovalGrantedForDestructiveCommand(t *testing.T) {
	f := newFixture(t)
	f.engine.approver = collab.ApprovalPrompterFunc(func(message string) bool { return true })
	executor, called := successExecutor(t)

	result := f.engine.Execute(context.Background(), collab.ToolEvent{
		ToolName: "run_command",
		IntentID: "INT-001",
		Payload: collab.ToolPayload{
			FilePath:    "src/auth/a.ts",
			Command:     "rm -rf src/auth/tmp",
			CommandType: "destructive",
		},
	}, executor)

	require.True(t, result.Success)
	require.True(t, *called)
}

func TestExecutorFailureSkipsPostTraceButRecordsAttempt(t *testing.T) {
	f := newFixture(t)

	executor := func(event collab.ToolEvent) (collab.ToolResult, error) {
		return collab.ToolResult{}, assertError{"boom"}
	}

	result := f.engine.Execute(context.Background(), collab.ToolEvent{
		ToolName: "write_file",
		IntentID: "INT-001",
		Payload:  collab.ToolPayload{FilePath: "src/auth/a.ts", After: "x"},
	}, executor)

	require.False(t, result.Success)
	require.Equal(t, "boom", result.Reason)

	lines := f.traceLines(t)
	require.Len(t, lines, 1)
	require.Equal(t, true, lines[0]["attempted"])
	require.Nil(t, lines[0]["files"])
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }

func TestTruncationIsIdempotent(t *testing.T) {
	it := &intent.Intent{
		OwnedScope:         make([]string, 15),
		Constraints:        map[string]string{"a": "1", "b": "2", "c": "3"},
		AcceptanceCriteria: make([]string, 20),
	}
	for i := range it.OwnedScope {
		it.OwnedScope[i] = "p" + string(rune('a'+i))
	}
	for i := range it.AcceptanceCriteria {
		it.AcceptanceCriteria[i] = "c" + string(rune('a'+i))
	}

	limits := Limits{MaxOwnedScope: 10, MaxConstraints: 2, MaxAcceptanceCriteria: 15}

	scope1, cons1, accept1, _ := truncateScope(it, limits)
	once := &intent.Intent{OwnedScope: scope1, Constraints: cons1, AcceptanceCriteria: accept1}
	scope2, cons2, accept2, _ := truncateScope(once, limits)

	require.Equal(t, scope1, scope2)
	require.Equal(t, cons1, cons2)
	require.Equal(t, accept1, accept2)
}

func toStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, len(raw))
	for i, x := range raw {
		out[i], _ = x.(string)
	}
	return out
}
