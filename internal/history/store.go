// Package history mirrors the server's edit log on the client.
//
// The server is the single source of truth: the mirror is replaced wholesale
// from GET /history and patched in place from the refreshed records that
// reversal responses carry. Nothing here is persisted; a fresh client
// rebuilds the mirror with one fetch.
package history

import (
	"sync"

	"github.com/tagdeck/tagdeck/internal/api"
)

// Reversal names the two directions an action can be reversed in.
type Reversal int

const (
	Undo Reversal = iota
	Redo
)

// String returns the verb used in status lines and logs.
func (r Reversal) String() string {
	if r == Redo {
		return "redo"
	}
	return "undo"
}

// Mark is one in-flight reversal: which action, which direction.
type Mark struct {
	ActionID string
	Kind     Reversal
}

// Store holds the mirrored log, the selection, and the in-flight reversal
// markers behind a mutex. The markers are transient UI state: they are set
// before a reversal's first request and cleared on every exit path, and they
// never survive a restart because nothing here is written to disk.
type Store struct {
	mu sync.Mutex

	actions    []api.ActionRecord
	selectedID string
	detail     *api.ActionDetail
	processing map[Mark]struct{}
}

// Snapshot is an immutable copy of the store for rendering.
type Snapshot struct {
	Actions    []api.ActionRecord
	SelectedID string
	Detail     *api.ActionDetail // nil unless loaded for the selected action
	Marks      []Mark
}

// IsProcessing reports whether the given action has any reversal in flight.
func (s Snapshot) IsProcessing(actionID string) bool {
	for _, m := range s.Marks {
		if m.ActionID == actionID {
			return true
		}
	}
	return false
}

// NewStore returns an empty mirror.
func NewStore() *Store {
	return &Store{processing: make(map[Mark]struct{})}
}

// Replace installs a fresh copy of the server log, preserving server order
// verbatim. The selection survives if its id is still present; otherwise
// selection and cached detail are dropped together.
func (s *Store) Replace(actions []api.ActionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions = append([]api.ActionRecord(nil), actions...)

	if s.selectedID == "" {
		return
	}
	if _, ok := s.lookup(s.selectedID); !ok {
		s.selectedID = ""
		s.detail = nil
	}
}

// Actions returns a copy of the mirrored log.
func (s *Store) Actions() []api.ActionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.ActionRecord(nil), s.actions...)
}

// Get returns the mirrored record for an id.
func (s *Store) Get(actionID string) (api.ActionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.lookup(actionID); ok {
		return s.actions[i], true
	}
	return api.ActionRecord{}, false
}

// Select makes an action the selected one. Selecting a different action
// discards the previously cached detail; re-selecting the same action keeps
// it.
func (s *Store) Select(actionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedID != actionID {
		s.detail = nil
	}
	s.selectedID = actionID
}

// ClearSelection drops the selection and its cached detail.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedID = ""
	s.detail = nil
}

// SelectedID returns the selected action id, "" when none.
func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// SetDetail caches the expanded view for an action, but only while that
// action is still the selected one. A detail that arrives after the user
// moved on is dropped.
func (s *Store) SetDetail(actionID string, detail *api.ActionDetail) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedID != actionID {
		return false
	}
	s.detail = detail
	return true
}

// MarkProcessing records that a reversal is in flight for an action. It must
// be called before the first network request of the reversal.
func (s *Store) MarkProcessing(actionID string, kind Reversal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing[Mark{ActionID: actionID, Kind: kind}] = struct{}{}
}

// ClearProcessing removes an in-flight marker. Reversal paths call it from a
// deferred block so no outcome, error or success, leaves a marker behind.
func (s *Store) ClearProcessing(actionID string, kind Reversal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processing, Mark{ActionID: actionID, Kind: kind})
}

// IsProcessing reports whether the given reversal is in flight.
func (s *Store) IsProcessing(actionID string, kind Reversal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processing[Mark{ActionID: actionID, Kind: kind}]
	return ok
}

// Apply splices a refreshed record into the mirror by id. A record the
// mirror has never seen is appended: the server knows actions this client's
// last wholesale fetch predates, and appending converges until the next one.
func (s *Store) Apply(record api.ActionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.lookup(record.ID); ok {
		s.actions[i] = record
		return
	}
	s.actions = append(s.actions, record)
}

// Snapshot returns an immutable copy of the store for rendering.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	marks := make([]Mark, 0, len(s.processing))
	for m := range s.processing {
		marks = append(marks, m)
	}

	var detail *api.ActionDetail
	if s.detail != nil {
		d := *s.detail
		detail = &d
	}

	return Snapshot{
		Actions:    append([]api.ActionRecord(nil), s.actions...),
		SelectedID: s.selectedID,
		Detail:     detail,
		Marks:      marks,
	}
}

// lookup finds an action index by id. Caller holds the lock.
func (s *Store) lookup(actionID string) (int, bool) {
	for i := range s.actions {
		if s.actions[i].ID == actionID {
			return i, true
		}
	}
	return 0, false
}
