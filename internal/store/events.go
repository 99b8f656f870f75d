package store

import (
	"encoding/json"
	"fmt"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// Append assigns the next sequence number for the event's episode, encodes
// the event canonically, and appends it to the log. The sequence counter
// advances only after the line is durable, so a failed append leaves no
// gap.
//
// The returned event carries the assigned Seq.
func (s *Store) Append(ev qdpi.Event) (qdpi.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.Seq = s.seq[ev.EpisodeID] + 1

	if err := ev.Validate(); err != nil {
		return qdpi.Event{}, &AppendError{Name: ev.Name, Err: err}
	}

	line, err := ev.MarshalCanonical()
	if err != nil {
		return qdpi.Event{}, &AppendError{Name: ev.Name, Err: err}
	}
	if err := appendLine(s.path(eventsFile), line); err != nil {
		return qdpi.Event{}, &AppendError{Name: ev.Name, Err: err}
	}

	s.seq[ev.EpisodeID] = ev.Seq
	return ev, nil
}

// Events returns the log for one episode in sequence order, or the whole
// log ordered by (episode_id, seq) when episodeID is empty.
func (s *Store) Events(episodeID string) ([]qdpi.Event, error) {
	all, err := s.readEvents()
	if err != nil {
		return nil, err
	}

	events := all
	if episodeID != "" {
		events = events[:0:0]
		for _, ev := range all {
			if ev.EpisodeID == episodeID {
				events = append(events, ev)
			}
		}
	}

	SortEvents(events)
	return events, nil
}

// LastSeq returns the highest sequence number assigned in the episode, 0
// when the episode has no events yet.
func (s *Store) LastSeq(episodeID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[episodeID]
}

func (s *Store) readEvents() ([]qdpi.Event, error) {
	s.mu.Lock()
	lines, err := readLines(s.path(eventsFile))
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	events := make([]qdpi.Event, 0, len(lines))
	for i, line := range lines {
		var ev qdpi.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("read events: line %d: %w", i+1, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
