package engine

import (
	"strings"

	"github.com/holographic-rest/field-kit/internal/model"
	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// CreateItemParams describes a directly user-created item. Type defaults
// to Q.
type CreateItemParams struct {
	Type  model.ItemType
	Title string
	Body  string
}

// CreateItem creates a content item: item.created, the snapshot, the
// item_created credit, commit.
func (e *Engine) CreateItem(sess Session, p CreateItemParams) (model.Item, error) {
	if strings.TrimSpace(p.Title) == "" {
		return model.Item{}, &ValidationError{Msg: "item title is empty"}
	}
	if p.Type == "" {
		p.Type = model.ItemQ
	}
	if !p.Type.Valid() {
		return model.Item{}, &ValidationError{Msg: "item type " + string(p.Type) + " is not one of Q, M, D, H"}
	}

	now := qdpi.Timestamp(e.now())
	item := model.Item{
		ID:         e.ids.NewID(qdpi.PrefixItem),
		NetworkID:  sess.NetworkID,
		EpisodeID:  sess.EpisodeID,
		Type:       p.Type,
		Title:      p.Title,
		Body:       p.Body,
		Provenance: model.UserProvenance(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := e.append(sess.EpisodeID, qdpi.ItemCreated{
		ItemID: item.ID,
		Type:   string(item.Type),
		Title:  item.Title,
	}); err != nil {
		return model.Item{}, err
	}
	if err := e.store.UpsertItem(item); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return model.Item{}, err
	}
	if _, err := e.appendDelta(sess.EpisodeID, qdpi.ReasonItemCreated, func(cd *qdpi.CreditsDelta) {
		cd.ItemID = item.ID
	}); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return model.Item{}, err
	}
	if err := e.commit(sess.EpisodeID, item.ID, []string{item.ID}); err != nil {
		return model.Item{}, err
	}

	e.log.Info("item created", "item", item.ID, "type", string(item.Type))
	return item, nil
}

// ArchiveItem marks an item archived. The item stays loadable and keeps
// its place in curated lists; readers skip it by default. Archiving an
// already-archived item is rejected.
func (e *Engine) ArchiveItem(sess Session, itemID string) (model.Item, error) {
	item, err := e.store.GetItem(itemID)
	if err != nil {
		return model.Item{}, err
	}
	if item.Archived() {
		return model.Item{}, &InvalidStateError{Msg: "item " + itemID + " is already archived"}
	}

	now := qdpi.Timestamp(e.now())
	item.ArchivedAt = now
	item.UpdatedAt = now
	if err := e.store.UpsertItem(item); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return model.Item{}, err
	}
	if err := e.commit(sess.EpisodeID, item.ID, []string{item.ID}); err != nil {
		return model.Item{}, err
	}
	return item, nil
}
