package intent

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"intentguard/internal/logging"
)

// FileName is the Intent Ledger's canonical location relative to a
// workspace root (spec §6).
const FileName = ".orchestration/active_intents.yaml"

// Store loads, validates, and persists the intent ledger. It exclusively
// owns the ledger file: every mutating operation holds store-wide mutex
// for the whole read-modify-write, per spec §5.
type Store struct {
	mu        sync.Mutex
	workspace string
	path      string
	writeMap  bool
}

// NewStore returns a Store rooted at workspace.
func NewStore(workspace string) *Store {
	return &Store{
		workspace: workspace,
		path:      filepath.Join(workspace, FileName),
		writeMap:  true,
	}
}

// Path returns the ledger file's absolute path.
func (s *Store) Path() string { return s.path }

// LoadAll reads and validates the whole ledger, normalizing each intent's
// status and schema shape on the way in (spec §4.4).
func (s *Store) LoadAll() (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (*Ledger, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrFileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	var ledger Ledger
	if err := yaml.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	return &ledger, nil
}

// LoadOne returns a single intent by id, or an IntentNotFound guided-
// recovery error carrying every workable id.
func (s *Store) LoadOne(id string) (*Intent, error) {
	ledger, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	found := ledger.Find(id)
	if found == nil {
		return nil, notFoundError(id, ledger.WorkableIDs())
	}
	return found, nil
}

// ActiveIntentID returns the ledger's active_intent pointer (may be empty).
func (s *Store) ActiveIntentID() (string, error) {
	ledger, err := s.LoadAll()
	if err != nil {
		return "", err
	}
	return ledger.ActiveIntent, nil
}

// Workable returns every PENDING or IN_PROGRESS intent.
func (s *Store) Workable() ([]Intent, error) {
	ledger, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	return ledger.Workable(), nil
}

// Persist writes ledger back to disk and, best-effort, regenerates the
// human-facing intent_map.md mirror (spec SPEC_FULL §3.1). Mirror
// generation failures are logged, never returned — the mirror isn't
// consumed by the core.
func (s *Store) Persist(ledger *Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ledger)
}

func (s *Store) persistLocked(ledger *Ledger) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("intent store: create dir: %w", err)
	}

	data, err := yaml.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("intent store: marshal: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("intent store: write: %w", err)
	}

	if s.writeMap {
		mapPath := filepath.Join(s.workspace, MapFileName)
		if err := os.WriteFile(mapPath, []byte(RenderIntentMap(ledger)), 0644); err != nil {
			logging.IntentWarn("could not write intent map mirror: %v", err)
		}
	}

	return nil
}

// Update loads the ledger, applies fn, and persists the result — all
// under a single exclusive lock, matching spec §5's "read-modify-write
// under an exclusive lock held over the whole update".
func (s *Store) Update(fn func(*Ledger) error) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	if err := fn(ledger); err != nil {
		return nil, err
	}

	if err := s.persistLocked(ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}
