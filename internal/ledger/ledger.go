// Package ledger computes derived, read-only views over the event log:
// the credits balance, the balance consistency check, and item lineage.
// Nothing here writes; the views are recomputed from events on every call.
package ledger

import (
	"fmt"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// EventSource supplies ordered events. *store.Store satisfies it; tests may
// substitute a fixed slice.
type EventSource interface {
	Events(episodeID string) ([]qdpi.Event, error)
}

// Entry is one credits.delta event with its fold position.
type Entry struct {
	EpisodeID    string
	Seq          int64
	Delta        int64
	BalanceAfter int64
	Reason       qdpi.Reason
	EventID      string
}

// Balance folds every credits.delta in (episode_id, seq) order starting
// from zero. Pass an empty episodeID for the whole log: credits are a
// property of the network, not of one episode.
func Balance(src EventSource, episodeID string) (int64, error) {
	entries, err := Entries(src, episodeID)
	if err != nil {
		return 0, err
	}
	var balance int64
	for _, e := range entries {
		balance += e.Delta
	}
	return balance, nil
}

// Entries returns the credits.delta events as typed entries, in log order.
func Entries(src EventSource, episodeID string) ([]Entry, error) {
	events, err := src.Events(episodeID)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, ev := range events {
		if ev.Name != qdpi.NameCreditsDelta {
			continue
		}
		cd, err := qdpi.CreditsDeltaOf(ev)
		if err != nil {
			return nil, fmt.Errorf("ledger: event %s: %w", ev.ID, err)
		}
		entries = append(entries, Entry{
			EpisodeID:    ev.EpisodeID,
			Seq:          ev.Seq,
			Delta:        cd.Delta,
			BalanceAfter: cd.BalanceAfter,
			Reason:       cd.Reason,
			EventID:      ev.ID,
		})
	}
	return entries, nil
}

// DriftError reports a credits.delta whose recorded balance_after does not
// match the running fold. The log is the source of truth, so drift means a
// writer computed its balance against stale state.
type DriftError struct {
	EventID  string
	Recorded int64
	Computed int64
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("ledger drift at %s: recorded balance %d, computed %d", e.EventID, e.Recorded, e.Computed)
}

// Verify cross-checks every recorded balance_after against the running
// fold. Returns the final balance on success, a DriftError on the first
// mismatch.
func Verify(src EventSource, episodeID string) (int64, error) {
	entries, err := Entries(src, episodeID)
	if err != nil {
		return 0, err
	}
	var balance int64
	for _, e := range entries {
		balance += e.Delta
		if e.BalanceAfter != balance {
			return 0, &DriftError{EventID: e.EventID, Recorded: e.BalanceAfter, Computed: balance}
		}
	}
	return balance, nil
}

// Origin identifies what produced an Item: a Bond execution or a Holologue
// run. Items with no origin were created directly by the user.
type Origin struct {
	Kind             string
	BondID           string
	HolologueEventID string
	ArtifactKind     string
	SourceItemIDs    []string
}

// Lineage resolves the origin of an item from the event log. The third
// return is false for directly user-created items.
func Lineage(src EventSource, itemID string) (Origin, bool, error) {
	events, err := src.Events("")
	if err != nil {
		return Origin{}, false, err
	}

	for _, ev := range events {
		switch ev.Name {
		case qdpi.NameBondExecuted:
			out := qdpi.RefString(ev.Refs, "output_item_id")
			if out != itemID {
				continue
			}
			bondID := qdpi.RefString(ev.Refs, "bond_id")
			inputs := qdpi.RefStrings(ev.Refs, "input_item_ids")
			return Origin{Kind: "bond", BondID: bondID, SourceItemIDs: inputs}, true, nil

		case qdpi.NameHolologueCompleted:
			out := qdpi.RefString(ev.Refs, "output_item_id")
			if out != itemID {
				continue
			}
			kind := qdpi.RefString(ev.Refs, "artifact_kind")
			selected := qdpi.RefStrings(ev.Refs, "selected_item_ids")
			return Origin{
				Kind:             "holologue",
				HolologueEventID: ev.ID,
				ArtifactKind:     kind,
				SourceItemIDs:    selected,
			}, true, nil
		}
	}
	return Origin{}, false, nil
}
