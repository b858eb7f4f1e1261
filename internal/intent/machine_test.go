package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMachineWithLedger(t *testing.T, body string) *Machine {
	t.Helper()
	ws := t.TempDir()
	path := filepath.Join(ws, FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return NewMachine(NewStore(ws))
}

const fourIntentLedger = `
active_intent: ""
intents:
  - id: INT-001
    description: "pending work"
    status: PENDING
    owned_scope: ["src/auth/**"]
  - id: INT-002
    description: "in progress work"
    status: IN_PROGRESS
    owned_scope: ["src/ui/**"]
  - id: INT-003
    description: "done"
    status: COMPLETED
    owned_scope: ["src/done/**"]
  - id: INT-004
    description: "locked"
    status: LOCKED
    owned_scope: ["src/locked/**"]
`

func TestTransitionPendingToInProgress(t *testing.T) {
	m := newMachineWithLedger(t, fourIntentLedger)
	require.NoError(t, m.Transition("INT-001", InProgress, false))

	status, err := m.Status("INT-001")
	require.NoError(t, err)
	require.Equal(t, InProgress, status)
}

func TestIllegalTransitionRejected(t *testing.T) {
	// spec §8 S4: PENDING -> COMPLETED directly is illegal.
	m := newMachineWithLedger(t, fourIntentLedger)
	err := m.Transition("INT-001", Completed, false)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestCompletedIsTerminal(t *testing.T) {
	m := newMachineWithLedger(t, fourIntentLedger)
	err := m.Transition("INT-003", InProgress, false)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestLockedRequiresAdminOverride(t *testing.T) {
	m := newMachineWithLedger(t, fourIntentLedger)

	err := m.Transition("INT-004", InProgress, false)
	require.ErrorIs(t, err, ErrIllegalTransition)

	require.NoError(t, m.Transition("INT-004", InProgress, true))
	status, err := m.Status("INT-004")
	require.NoError(t, err)
	require.Equal(t, InProgress, status)
}

func TestGuardAllowsPendingAndInProgress(t *testing.T) {
	m := newMachineWithLedger(t, fourIntentLedger)

	status, err := m.Guard("INT-001")
	require.NoError(t, err)
	require.Equal(t, Pending, status)

	status, err = m.Guard("INT-002")
	require.NoError(t, err)
	require.Equal(t, InProgress, status)
}

func TestGuardRejectsCompletedWithGuidedRecovery(t *testing.T) {
	// spec §8 S3.
	m := newMachineWithLedger(t, fourIntentLedger)

	_, err := m.Guard("INT-003")
	require.ErrorIs(t, err, ErrIntentCompleted)
	require.Contains(t, err.Error(), "COMPLETED")

	var guided *GuidedError
	require.ErrorAs(t, err, &guided)
	require.NotEmpty(t, guided.Alternatives)
}

func TestGuardRejectsLockedWithGuidedRecovery(t *testing.T) {
	m := newMachineWithLedger(t, fourIntentLedger)

	_, err := m.Guard("INT-004")
	require.ErrorIs(t, err, ErrIntentLocked)
}

func TestGuardRejectsUnknownIntent(t *testing.T) {
	m := newMachineWithLedger(t, fourIntentLedger)

	_, err := m.Guard("INT-999")
	require.ErrorIs(t, err, ErrIntentNotFound)
}

func TestMarkInProgressIsNoopWhenAlreadyInProgress(t *testing.T) {
	m := newMachineWithLedger(t, fourIntentLedger)
	require.NoError(t, m.MarkInProgress("INT-002"))

	status, err := m.Status("INT-002")
	require.NoError(t, err)
	require.Equal(t, InProgress, status)
}

func TestMarkCompletedAndLock(t *testing.T) {
	m := newMachineWithLedger(t, fourIntentLedger)

	require.NoError(t, m.MarkCompleted("INT-002"))
	status, err := m.Status("INT-002")
	require.NoError(t, err)
	require.Equal(t, Completed, status)

	m = newMachineWithLedger(t, fourIntentLedger)
	require.NoError(t, m.Lock("INT-002"))
	status, err = m.Status("INT-002")
	require.NoError(t, err)
	require.Equal(t, Locked, status)
}

func TestAllLegalTransitionsTableDriven(t *testing.T) {
	cases := []struct {
		from, to Status
		admin    bool
		wantErr  bool
	}{
		{Pending, InProgress, false, false},
		{InProgress, Completed, false, false},
		{InProgress, Locked, false, false},
		{Locked, InProgress, true, false},
		{Locked, InProgress, false, true},
		{Completed, InProgress, false, true},
		{Pending, Completed, false, true},
		{Pending, Locked, false, true},
	}

	for _, tc := range cases {
		ledger := `
active_intent: ""
intents:
  - id: INT-T
    description: "table"
    status: ` + string(tc.from) + `
    owned_scope: ["src/**"]
`
		m := newMachineWithLedger(t, ledger)
		err := m.Transition("INT-T", tc.to, tc.admin)
		if tc.wantErr {
			require.Error(t, err, "%s -> %s (admin=%v)", tc.from, tc.to, tc.admin)
		} else {
			require.NoError(t, err, "%s -> %s (admin=%v)", tc.from, tc.to, tc.admin)
		}
	}
}
