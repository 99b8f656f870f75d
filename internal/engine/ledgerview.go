package engine

import (
	"github.com/holographic-rest/field-kit/internal/ledger"
	"github.com/holographic-rest/field-kit/internal/model"
	"github.com/holographic-rest/field-kit/internal/qdpi"
	"github.com/holographic-rest/field-kit/internal/store"
)

// LedgerView is the collaborator contract for open-ledger: the episode's
// objects, its ordered events, and the derived balance.
type LedgerView struct {
	Items   []model.Item
	Bonds   []model.Bond
	Events  []qdpi.Event
	Balance int64
}

// OpenLedger records ledger.opened and returns the view. The balance is
// verified against every event's recorded balance_after on the way; drift
// is surfaced as an error rather than a stale number.
func (e *Engine) OpenLedger(sess Session) (LedgerView, error) {
	if _, err := e.append(sess.EpisodeID, qdpi.LedgerOpened{}); err != nil {
		return LedgerView{}, err
	}

	items, err := e.store.Items(store.ItemFilter{EpisodeID: sess.EpisodeID})
	if err != nil {
		return LedgerView{}, err
	}
	bonds, err := e.store.Bonds(store.BondFilter{EpisodeID: sess.EpisodeID})
	if err != nil {
		return LedgerView{}, err
	}
	events, err := e.store.Events(sess.EpisodeID)
	if err != nil {
		return LedgerView{}, err
	}
	balance, err := ledger.Verify(e.store, "")
	if err != nil {
		return LedgerView{}, err
	}

	return LedgerView{Items: items, Bonds: bonds, Events: events, Balance: balance}, nil
}

// Lineage resolves an item's origin from the event log.
func (e *Engine) Lineage(itemID string) (ledger.Origin, bool, error) {
	return ledger.Lineage(e.store, itemID)
}
