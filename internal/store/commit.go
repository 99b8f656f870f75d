package store

import (
	"fmt"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// Commit appends the store.commit boundary event that closes a logical
// transaction. It rejects any other event name so a caller cannot close a
// transaction with the wrong marker.
func (s *Store) Commit(ev qdpi.Event) (qdpi.Event, error) {
	if ev.Name != qdpi.NameStoreCommit {
		return qdpi.Event{}, fmt.Errorf("commit: event name %q, want %q", ev.Name, qdpi.NameStoreCommit)
	}
	return s.Append(ev)
}

// CommitFailed appends the store.commit_failed terminal event. Events
// already appended for the failed operation stay in the log; this marker is
// how the failure is recorded, not a rollback.
func (s *Store) CommitFailed(ev qdpi.Event) (qdpi.Event, error) {
	if ev.Name != qdpi.NameStoreCommitFailed {
		return qdpi.Event{}, fmt.Errorf("commit failed: event name %q, want %q", ev.Name, qdpi.NameStoreCommitFailed)
	}
	return s.Append(ev)
}
