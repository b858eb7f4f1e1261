package intent

import (
	"intentguard/internal/logging"
)

// legalTransitions is the closed transition table from spec §4.5.
// COMPLETED is terminal — the machine never transitions out of it.
// LOCKED -> IN_PROGRESS is an administrative override only.
var legalTransitions = map[Status]map[Status]bool{
	Pending:    {InProgress: true},
	InProgress: {Completed: true, Locked: true},
	Completed:  {},
	Locked:     {InProgress: true},
}

// Machine is the Intent State Machine (spec §4.5), operating against a
// Store for persistence.
type Machine struct {
	store *Store
}

// NewMachine returns a Machine backed by store.
func NewMachine(store *Store) *Machine {
	return &Machine{store: store}
}

// Status returns id's current status, defaulting a missing/unrecognized
// field to PENDING per the Store's load-time normalization.
func (m *Machine) Status(id string) (Status, error) {
	it, err := m.store.LoadOne(id)
	if err != nil {
		return "", err
	}
	return it.Status, nil
}

// legal reports whether from -> to is in the legal transition table.
func legal(from, to Status) bool {
	targets, ok := legalTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Transition moves id from its current status to target. admin must be
// true to exercise the LOCKED -> IN_PROGRESS administrative override; the
// state machine accepts the caller's identification of itself as
// administrative but never decides how that identification happens
// (spec §4.5, §9 Open Question (a)).
func (m *Machine) Transition(id string, target Status, admin bool) error {
	_, err := m.store.Update(func(ledger *Ledger) error {
		it := ledger.Find(id)
		if it == nil {
			return notFoundError(id, ledger.WorkableIDs())
		}

		if it.Status == Locked && target == InProgress && !admin {
			return illegalTransitionError(id, it.Status, target)
		}

		if !legal(it.Status, target) {
			return illegalTransitionError(id, it.Status, target)
		}

		logging.IntentDebug("intent %s: %s -> %s (admin=%v)", id, it.Status, target, admin)
		it.Status = target
		return nil
	})
	return err
}

// Guard evaluates id's eligibility for continued work (spec §4.5, §4.6
// stage 1). It returns the current status if PENDING or IN_PROGRESS;
// otherwise a guided-recovery error: IntentNotFound, IntentCompleted, or
// IntentLocked.
func (m *Machine) Guard(id string) (Status, error) {
	ledger, err := m.store.LoadAll()
	if err != nil {
		return "", err
	}

	it := ledger.Find(id)
	if it == nil {
		return "", notFoundError(id, ledger.WorkableIDs())
	}

	switch it.Status {
	case Pending, InProgress:
		return it.Status, nil
	case Completed:
		return "", completedError(id, ledger.WorkableIDs())
	case Locked:
		return "", lockedError(id, ledger.WorkableIDs())
	default:
		// Unreachable: Store normalizes any unrecognized status to PENDING
		// on load.
		return Pending, nil
	}
}

// MarkInProgress transitions id from PENDING to IN_PROGRESS, or does
// nothing if it's already IN_PROGRESS.
func (m *Machine) MarkInProgress(id string) error {
	_, err := m.store.Update(func(ledger *Ledger) error {
		it := ledger.Find(id)
		if it == nil {
			return notFoundError(id, ledger.WorkableIDs())
		}
		if it.Status == InProgress {
			return nil
		}
		if !legal(it.Status, InProgress) {
			return illegalTransitionError(id, it.Status, InProgress)
		}
		it.Status = InProgress
		return nil
	})
	return err
}

// MarkCompleted transitions id to COMPLETED.
func (m *Machine) MarkCompleted(id string) error {
	return m.Transition(id, Completed, false)
}

// Lock transitions id to LOCKED.
func (m *Machine) Lock(id string) error {
	return m.Transition(id, Locked, false)
}
