// Package intent implements the Intent data model (spec §3), the Intent
// Store (spec §4.4), and the Intent State Machine (spec §4.5).
package intent

// Status is one of the four legal intent lifecycle states.
type Status string

const (
	Pending    Status = "PENDING"
	InProgress Status = "IN_PROGRESS"
	Completed  Status = "COMPLETED"
	Locked     Status = "LOCKED"
)

// legalStatuses is the closed set a loaded status must normalize into.
var legalStatuses = map[Status]struct{}{
	Pending:    {},
	InProgress: {},
	Completed:  {},
	Locked:     {},
}

// IsLegal reports whether s is one of the four recognized statuses.
func IsLegal(s Status) bool {
	_, ok := legalStatuses[s]
	return ok
}

// Intent is a named, stateful work item with an owned filesystem scope.
type Intent struct {
	ID                 string            `yaml:"id"`
	Description        string            `yaml:"description"`
	Status             Status            `yaml:"status"`
	OwnedScope         []string          `yaml:"owned_scope"`
	Constraints        map[string]string `yaml:"constraints"`
	AcceptanceCriteria []string          `yaml:"acceptance_criteria"`
	SpecRef            string            `yaml:"spec_ref,omitempty"`
}

// Ledger is the single persisted document: a pointer to the active
// intent plus the full list of intents.
type Ledger struct {
	ActiveIntent string   `yaml:"active_intent"`
	Intents      []Intent `yaml:"intents"`
}

// Find returns the intent with the given id, or nil.
func (l *Ledger) Find(id string) *Intent {
	for i := range l.Intents {
		if l.Intents[i].ID == id {
			return &l.Intents[i]
		}
	}
	return nil
}

// Workable returns every intent whose status is PENDING or IN_PROGRESS.
func (l *Ledger) Workable() []Intent {
	out := make([]Intent, 0, len(l.Intents))
	for _, it := range l.Intents {
		if it.Status == Pending || it.Status == InProgress {
			out = append(out, it)
		}
	}
	return out
}

// WorkableIDs is a convenience wrapper around Workable returning just ids,
// used to populate guided-recovery payloads.
func (l *Ledger) WorkableIDs() []string {
	workable := l.Workable()
	ids := make([]string, len(workable))
	for i, it := range workable {
		ids[i] = it.ID
	}
	return ids
}
