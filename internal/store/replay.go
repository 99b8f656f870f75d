package store

import (
	"fmt"
	"sort"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// Projection is the structural state recoverable from the event log alone.
// Events carry references, not content bodies, so replay reconstructs
// existence, relationships, and the credit fold rather than full snapshots.
type Projection struct {
	Episodes map[string]*EpisodeState
	Items    map[string]*ItemState
	Bonds    map[string]*BondState
	Balance  int64
}

// EpisodeState is the replayed view of one episode.
type EpisodeState struct {
	ID      string
	Title   string
	Ordinal int64
	LastSeq int64
}

// ItemState is the replayed view of one item. CreatedBy is "user", "bond",
// or "holologue" depending on which event introduced the item.
type ItemState struct {
	ID        string
	Type      string
	Title     string
	CreatedBy string
}

// BondState is the replayed view of one bond.
type BondState struct {
	ID             string
	InputItemIDs   []string
	PromptText     string
	Status         string
	OutputItemID   string
	ExecutionCount int64
}

// Replay folds an event sequence into a Projection. The input must be
// ordered by (episode_id, seq); per-episode sequences are checked to be
// gapless from 1 and a violation is an error, since replaying the same log
// twice must yield the same projection.
func Replay(events []qdpi.Event) (*Projection, error) {
	p := &Projection{
		Episodes: make(map[string]*EpisodeState),
		Items:    make(map[string]*ItemState),
		Bonds:    make(map[string]*BondState),
	}

	for _, ev := range events {
		ep := p.Episodes[ev.EpisodeID]
		var last int64
		if ep != nil {
			last = ep.LastSeq
		}
		if ev.Seq != last+1 {
			return nil, fmt.Errorf("replay: episode %s: seq %d after %d", ev.EpisodeID, ev.Seq, last)
		}

		if err := p.apply(ev); err != nil {
			return nil, err
		}

		if ep = p.Episodes[ev.EpisodeID]; ep == nil {
			ep = &EpisodeState{ID: ev.EpisodeID}
			p.Episodes[ev.EpisodeID] = ep
		}
		ep.LastSeq = ev.Seq
	}
	return p, nil
}

func (p *Projection) apply(ev qdpi.Event) error {
	switch ev.Name {
	case qdpi.NameEpisodeCreated:
		id := qdpi.RefString(ev.Refs, "episode_id")
		title := qdpi.RefString(ev.Refs, "title")
		ordinal, _ := qdpi.RefInt(ev.Refs, "ordinal")
		st := p.Episodes[id]
		if st == nil {
			st = &EpisodeState{ID: id}
			p.Episodes[id] = st
		}
		st.Title = title
		st.Ordinal = ordinal

	case qdpi.NameItemCreated:
		id := qdpi.RefString(ev.Refs, "item_id")
		typ := qdpi.RefString(ev.Refs, "type")
		title := qdpi.RefString(ev.Refs, "title")
		p.Items[id] = &ItemState{ID: id, Type: typ, Title: title, CreatedBy: "user"}

	case qdpi.NameBondDraftCreated:
		id := qdpi.RefString(ev.Refs, "bond_id")
		inputs := qdpi.RefStrings(ev.Refs, "input_item_ids")
		prompt := qdpi.RefString(ev.Refs, "prompt_text")
		p.Bonds[id] = &BondState{
			ID:           id,
			InputItemIDs: inputs,
			PromptText:   prompt,
			Status:       "draft",
		}

	case qdpi.NameBondExecuted:
		id := qdpi.RefString(ev.Refs, "bond_id")
		output := qdpi.RefString(ev.Refs, "output_item_id")
		count, _ := qdpi.RefInt(ev.Refs, "execution_count")
		b := p.Bonds[id]
		if b == nil {
			return fmt.Errorf("replay: bond.executed for unknown bond %s", id)
		}
		b.Status = "executed"
		b.OutputItemID = output
		b.ExecutionCount = count
		// The event carries the output reference, not the item body or
		// type; the snapshot file owns those.
		p.Items[output] = &ItemState{ID: output, CreatedBy: "bond"}

	case qdpi.NameHolologueCompleted:
		output := qdpi.RefString(ev.Refs, "output_item_id")
		p.Items[output] = &ItemState{ID: output, Type: "H", CreatedBy: "holologue"}

	case qdpi.NameCreditsDelta:
		cd, err := qdpi.CreditsDeltaOf(ev)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		p.Balance += cd.Delta
	}
	return nil
}

// Project replays the current log for one episode, or the whole directory
// when episodeID is empty. Recovery after a crash is this plus nothing:
// open, project, continue.
func (s *Store) Project(episodeID string) (*Projection, error) {
	events, err := s.Events(episodeID)
	if err != nil {
		return nil, err
	}
	return Replay(events)
}

// SortEvents orders events by (episode_id, seq) in place. Exposed for
// callers that assemble event slices from multiple reads.
func SortEvents(events []qdpi.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].EpisodeID != events[j].EpisodeID {
			return events[i].EpisodeID < events[j].EpisodeID
		}
		return events[i].Seq < events[j].Seq
	})
}
