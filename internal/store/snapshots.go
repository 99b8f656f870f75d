package store

import (
	"encoding/json"
	"fmt"

	"github.com/holographic-rest/field-kit/internal/model"
)

// loadLatest reads a snapshot file and resolves latest-write-wins: the last
// line for each id is the current state. Order of first appearance is
// preserved, which matches creation order for append-only writers. The file
// read happens under the store mutex so a reader never observes a
// half-written line.
func loadLatest[T any](s *Store, file string, idOf func(*T) string) ([]T, error) {
	s.mu.Lock()
	lines, err := readLines(s.path(file))
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var order []string
	latest := make(map[string]T)
	for i, line := range lines {
		var obj T
		if err := json.Unmarshal(line, &obj); err != nil {
			return nil, fmt.Errorf("load snapshots: line %d: %w", i+1, err)
		}
		id := idOf(&obj)
		if _, seen := latest[id]; !seen {
			order = append(order, id)
		}
		latest[id] = obj
	}

	out := make([]T, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out, nil
}

func upsert[T any](s *Store, file string, obj T) error {
	line, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLine(s.path(file), line)
}

// UpsertNetwork writes the network snapshot, replacing any prior state.
func (s *Store) UpsertNetwork(n model.Network) error {
	return upsert(s, networksFile, n)
}

// Networks returns all network snapshots. A field-kit data directory
// normally holds exactly one.
func (s *Store) Networks() ([]model.Network, error) {
	return loadLatest(s, networksFile, func(n *model.Network) string { return n.ID })
}

// GetNetwork returns the network with the given id.
func (s *Store) GetNetwork(id string) (model.Network, error) {
	nets, err := s.Networks()
	if err != nil {
		return model.Network{}, err
	}
	for _, n := range nets {
		if n.ID == id {
			return n, nil
		}
	}
	return model.Network{}, &NotFoundError{Kind: "network", ID: id}
}

// UpsertEpisode writes an episode snapshot, replacing any prior state.
func (s *Store) UpsertEpisode(ep model.Episode) error {
	return upsert(s, episodesFile, ep)
}

// Episodes returns episode snapshots, all of them or those of one network.
func (s *Store) Episodes(networkID string) ([]model.Episode, error) {
	eps, err := loadLatest(s, episodesFile, func(e *model.Episode) string { return e.ID })
	if err != nil {
		return nil, err
	}
	if networkID == "" {
		return eps, nil
	}
	out := eps[:0:0]
	for _, ep := range eps {
		if ep.NetworkID == networkID {
			out = append(out, ep)
		}
	}
	return out, nil
}

// GetEpisode returns the episode with the given id.
func (s *Store) GetEpisode(id string) (model.Episode, error) {
	eps, err := s.Episodes("")
	if err != nil {
		return model.Episode{}, err
	}
	for _, ep := range eps {
		if ep.ID == id {
			return ep, nil
		}
	}
	return model.Episode{}, &NotFoundError{Kind: "episode", ID: id}
}

// ItemFilter selects item snapshots by equality. Zero fields match
// everything; archived items are excluded unless IncludeArchived is set.
type ItemFilter struct {
	EpisodeID       string
	Type            model.ItemType
	IncludeArchived bool
}

// UpsertItem writes an item snapshot, replacing any prior state.
func (s *Store) UpsertItem(it model.Item) error {
	return upsert(s, itemsFile, it)
}

// Items returns item snapshots matching the filter, in creation order.
func (s *Store) Items(f ItemFilter) ([]model.Item, error) {
	items, err := loadLatest(s, itemsFile, func(it *model.Item) string { return it.ID })
	if err != nil {
		return nil, err
	}
	out := items[:0:0]
	for _, it := range items {
		if f.EpisodeID != "" && it.EpisodeID != f.EpisodeID {
			continue
		}
		if f.Type != "" && it.Type != f.Type {
			continue
		}
		if it.Archived() && !f.IncludeArchived {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// GetItem returns the item with the given id, archived or not.
func (s *Store) GetItem(id string) (model.Item, error) {
	items, err := s.Items(ItemFilter{IncludeArchived: true})
	if err != nil {
		return model.Item{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.Item{}, &NotFoundError{Kind: "item", ID: id}
}

// BondFilter selects bond snapshots by equality. Zero fields match
// everything; archived bonds are excluded unless IncludeArchived is set.
type BondFilter struct {
	EpisodeID       string
	Status          model.BondStatus
	IncludeArchived bool
}

// UpsertBond writes a bond snapshot, replacing any prior state.
func (s *Store) UpsertBond(b model.Bond) error {
	return upsert(s, bondsFile, b)
}

// Bonds returns bond snapshots matching the filter, in creation order.
func (s *Store) Bonds(f BondFilter) ([]model.Bond, error) {
	bonds, err := loadLatest(s, bondsFile, func(b *model.Bond) string { return b.ID })
	if err != nil {
		return nil, err
	}
	out := bonds[:0:0]
	for _, b := range bonds {
		if f.EpisodeID != "" && b.EpisodeID != f.EpisodeID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if b.Archived() && !f.IncludeArchived {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// GetBond returns the bond with the given id, archived or not.
func (s *Store) GetBond(id string) (model.Bond, error) {
	bonds, err := s.Bonds(BondFilter{IncludeArchived: true})
	if err != nil {
		return model.Bond{}, err
	}
	for _, b := range bonds {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Bond{}, &NotFoundError{Kind: "bond", ID: id}
}
