package qdpi

import (
	"fmt"
	"time"
)

// Event is an immutable entry in the append-only event log.
//
// Seq is assigned by the store at append time: strictly increasing, gapless,
// starting at 1 per episode. Events are totally ordered within an episode by
// (episode_id, seq); no cross-episode ordering is defined.
type Event struct {
	ID        string         `json:"id"`
	EpisodeID string         `json:"episode_id"`
	Seq       int64          `json:"seq"`
	Name      Name           `json:"name"`
	QDPI      Tag            `json:"qdpi"`
	Direction Direction      `json:"direction"`
	Refs      map[string]any `json:"refs"`
	CreatedAt string         `json:"created_at"`
}

// Payload is one variant of the tagged union behind Event.Refs. Each
// canonical event name has exactly one payload type carrying its required
// fields; the tag and direction are properties of the variant, not of the
// caller.
type Payload interface {
	EventName() Name
	Tag() Tag
	Direction() Direction
	Refs() map[string]any
}

// New builds an Event for the given episode from a typed payload. The seq
// field is zero until the store assigns it on append.
func New(episodeID string, p Payload, at time.Time) (Event, error) {
	name := p.EventName()
	if !name.Valid() {
		return Event{}, fmt.Errorf("event name %q is not canonical", name)
	}
	refs := p.Refs()
	if refs == nil {
		refs = map[string]any{}
	}
	return Event{
		ID:        RandomID(PrefixEvent),
		EpisodeID: episodeID,
		Name:      name,
		QDPI:      p.Tag(),
		Direction: p.Direction(),
		Refs:      refs,
		CreatedAt: Timestamp(at),
	}, nil
}

// Validate checks the structural invariants of an event read back from the
// log: canonical name, valid tag and direction, positive seq.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event has no id")
	}
	if e.EpisodeID == "" {
		return fmt.Errorf("event %s has no episode id", e.ID)
	}
	if !e.Name.Valid() {
		return fmt.Errorf("event %s has non-canonical name %q", e.ID, e.Name)
	}
	if !e.QDPI.Valid() {
		return fmt.Errorf("event %s has invalid qdpi tag %q", e.ID, e.QDPI)
	}
	if !e.Direction.Valid() {
		return fmt.Errorf("event %s has invalid direction %q", e.ID, e.Direction)
	}
	if e.Seq < 1 {
		return fmt.Errorf("event %s has seq %d, want >= 1", e.ID, e.Seq)
	}
	return nil
}
