package engine

import (
	"slices"

	"github.com/holographic-rest/field-kit/internal/model"
	"github.com/holographic-rest/field-kit/internal/qdpi"
	"github.com/holographic-rest/field-kit/internal/store"
)

// CurateItemAdd appends an item id to the episode's curated list. The item
// must exist now; it may later be archived without being removed.
func (e *Engine) CurateItemAdd(sess Session, itemID string) (model.Episode, error) {
	if _, err := e.store.GetItem(itemID); err != nil {
		return model.Episode{}, err
	}
	return e.mutateEpisode(sess, func(ep *model.Episode) bool {
		if slices.Contains(ep.CuratedItemIDs, itemID) {
			return false
		}
		ep.CuratedItemIDs = append(ep.CuratedItemIDs, itemID)
		return true
	})
}

// CurateItemRemove drops an item id from the curated list. Removing an id
// that is not listed is a no-op.
func (e *Engine) CurateItemRemove(sess Session, itemID string) (model.Episode, error) {
	return e.mutateEpisode(sess, func(ep *model.Episode) bool {
		n := len(ep.CuratedItemIDs)
		ep.CuratedItemIDs = slices.DeleteFunc(ep.CuratedItemIDs, func(id string) bool { return id == itemID })
		return len(ep.CuratedItemIDs) != n
	})
}

// CurateBondAdd appends a bond id to the episode's curated list.
func (e *Engine) CurateBondAdd(sess Session, bondID string) (model.Episode, error) {
	if _, err := e.store.GetBond(bondID); err != nil {
		return model.Episode{}, err
	}
	return e.mutateEpisode(sess, func(ep *model.Episode) bool {
		if slices.Contains(ep.CuratedBondIDs, bondID) {
			return false
		}
		ep.CuratedBondIDs = append(ep.CuratedBondIDs, bondID)
		return true
	})
}

// CurateBondRemove drops a bond id from the curated list.
func (e *Engine) CurateBondRemove(sess Session, bondID string) (model.Episode, error) {
	return e.mutateEpisode(sess, func(ep *model.Episode) bool {
		n := len(ep.CuratedBondIDs)
		ep.CuratedBondIDs = slices.DeleteFunc(ep.CuratedBondIDs, func(id string) bool { return id == bondID })
		return len(ep.CuratedBondIDs) != n
	})
}

// mutateEpisode read-modify-writes the episode snapshot and commits when
// the mutation changed anything.
func (e *Engine) mutateEpisode(sess Session, mutate func(*model.Episode) bool) (model.Episode, error) {
	ep, err := e.store.GetEpisode(sess.EpisodeID)
	if err != nil {
		return model.Episode{}, err
	}
	if !mutate(&ep) {
		return ep, nil
	}

	ep.UpdatedAt = qdpi.Timestamp(e.now())
	if err := e.store.UpsertEpisode(ep); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return model.Episode{}, err
	}
	if err := e.commit(sess.EpisodeID, "", []string{ep.ID}); err != nil {
		return model.Episode{}, err
	}
	return ep, nil
}

// Curated is the resolved curated projection of an episode. Warnings name
// curated ids that no longer resolve cleanly; the lists themselves are
// kept in curation order.
type Curated struct {
	Items    []model.Item
	Bonds    []model.Bond
	Warnings []string
}

// CuratedProjection resolves the episode's curated lists against the
// snapshots. Archived entries are included with a warning; missing ids are
// skipped with a warning.
func (e *Engine) CuratedProjection(sess Session) (Curated, error) {
	ep, err := e.store.GetEpisode(sess.EpisodeID)
	if err != nil {
		return Curated{}, err
	}

	var cur Curated
	for _, id := range ep.CuratedItemIDs {
		item, err := e.store.GetItem(id)
		if err != nil {
			cur.Warnings = append(cur.Warnings, "curated item "+id+" is missing")
			continue
		}
		if item.Archived() {
			cur.Warnings = append(cur.Warnings, "curated item "+id+" is archived")
		}
		cur.Items = append(cur.Items, item)
	}
	for _, id := range ep.CuratedBondIDs {
		bond, err := e.store.GetBond(id)
		if err != nil {
			cur.Warnings = append(cur.Warnings, "curated bond "+id+" is missing")
			continue
		}
		if bond.Archived() {
			cur.Warnings = append(cur.Warnings, "curated bond "+id+" is archived")
		}
		cur.Bonds = append(cur.Bonds, bond)
	}
	return cur, nil
}

// Export is the JSON shape of an episode export: the episode snapshot, its
// items and bonds, and the curated projection resolved at export time.
type Export struct {
	Episode model.Episode `json:"episode"`
	Items   []model.Item  `json:"items"`
	Bonds   []model.Bond  `json:"bonds"`
	Curated struct {
		ItemIDs  []string `json:"item_ids,omitempty"`
		BondIDs  []string `json:"bond_ids,omitempty"`
		Warnings []string `json:"warnings,omitempty"`
	} `json:"curated"`
}

// ExportEpisode assembles the full export of the session's episode.
func (e *Engine) ExportEpisode(sess Session) (Export, error) {
	ep, err := e.store.GetEpisode(sess.EpisodeID)
	if err != nil {
		return Export{}, err
	}
	items, err := e.store.Items(store.ItemFilter{EpisodeID: sess.EpisodeID, IncludeArchived: true})
	if err != nil {
		return Export{}, err
	}
	bonds, err := e.store.Bonds(store.BondFilter{EpisodeID: sess.EpisodeID, IncludeArchived: true})
	if err != nil {
		return Export{}, err
	}
	cur, err := e.CuratedProjection(sess)
	if err != nil {
		return Export{}, err
	}

	out := Export{Episode: ep, Items: items, Bonds: bonds}
	out.Curated.ItemIDs = ep.CuratedItemIDs
	out.Curated.BondIDs = ep.CuratedBondIDs
	out.Curated.Warnings = cur.Warnings
	return out, nil
}
