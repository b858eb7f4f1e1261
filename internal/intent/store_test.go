package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLedgerFile(t *testing.T, ws, body string) {
	t.Helper()
	path := filepath.Join(ws, FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadAllMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.LoadAll()
	require.ErrorIs(t, err, ErrFileMissing)
}

func TestLoadAllNormalizesMissingAndUnrecognizedStatus(t *testing.T) {
	ws := t.TempDir()
	writeLedgerFile(t, ws, `
active_intent: INT-001
intents:
  - id: INT-001
    description: "first"
    owned_scope: ["src/**"]
  - id: INT-002
    description: "second"
    status: BOGUS
    owned_scope: ["docs/**"]
`)

	store := NewStore(ws)
	ledger, err := store.LoadAll()
	require.NoError(t, err)

	require.Equal(t, Pending, ledger.Find("INT-001").Status)
	require.Equal(t, Pending, ledger.Find("INT-002").Status)
}

func TestLoadAllNormalizesLegacySchema(t *testing.T) {
	ws := t.TempDir()
	writeLedgerFile(t, ws, `
active_intent: ""
intents:
  - id: INT-003
    name: "legacy named intent"
    status: IN_PROGRESS
    owned_scope: ["lib/**"]
    constraints:
      - name: max_files
        value: "5"
      - name: language
        value: "ts"
`)

	store := NewStore(ws)
	ledger, err := store.LoadAll()
	require.NoError(t, err)

	it := ledger.Find("INT-003")
	require.Equal(t, "legacy named intent", it.Description)
	require.Equal(t, map[string]string{"max_files": "5", "language": "ts"}, it.Constraints)
}

func TestLoadOneNotFoundCarriesWorkableIDs(t *testing.T) {
	ws := t.TempDir()
	writeLedgerFile(t, ws, `
active_intent: ""
intents:
  - id: INT-001
    description: "a"
    status: PENDING
    owned_scope: ["src/**"]
  - id: INT-002
    description: "b"
    status: COMPLETED
    owned_scope: ["src/**"]
`)

	store := NewStore(ws)
	_, err := store.LoadOne("INT-999")

	var guided *GuidedError
	require.ErrorAs(t, err, &guided)
	require.ErrorIs(t, err, ErrIntentNotFound)
	require.Equal(t, []string{"INT-001"}, guided.Alternatives)
}

func TestPersistWritesLedgerAndMapMirror(t *testing.T) {
	ws := t.TempDir()
	store := NewStore(ws)

	ledger := &Ledger{
		ActiveIntent: "INT-001",
		Intents: []Intent{
			{
				ID:          "INT-001",
				Description: "first",
				Status:      Pending,
				OwnedScope:  []string{"src/**"},
				Constraints: map[string]string{},
			},
		},
	}

	require.NoError(t, store.Persist(ledger))

	_, err := os.Stat(filepath.Join(ws, FileName))
	require.NoError(t, err)

	mapData, err := os.ReadFile(filepath.Join(ws, MapFileName))
	require.NoError(t, err)
	require.Contains(t, string(mapData), "INT-001")

	reloaded, err := store.LoadAll()
	require.NoError(t, err)
	require.Equal(t, "first", reloaded.Find("INT-001").Description)
}

func TestUpdateIsAtomicReadModifyWrite(t *testing.T) {
	ws := t.TempDir()
	writeLedgerFile(t, ws, `
active_intent: ""
intents:
  - id: INT-001
    description: "a"
    status: PENDING
    owned_scope: ["src/**"]
`)

	store := NewStore(ws)
	_, err := store.Update(func(l *Ledger) error {
		l.Find("INT-001").Status = InProgress
		return nil
	})
	require.NoError(t, err)

	reloaded, err := store.LoadAll()
	require.NoError(t, err)
	require.Equal(t, InProgress, reloaded.Find("INT-001").Status)
}
