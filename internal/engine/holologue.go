package engine

import (
	"context"
	"fmt"

	"github.com/holographic-rest/field-kit/internal/model"
	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// RunHolologueParams describes a holologue run: 2+ distinct selected items
// and an artifact kind from the policy list.
type RunHolologueParams struct {
	SelectedItemIDs []string
	ArtifactKind    string
}

// HolologueResult reports a completed holologue run.
type HolologueResult struct {
	Output    model.Item
	Proposals []qdpi.Suggestion
	Balance   int64
}

// RunHolologue synthesizes exactly one type-H item from the selected
// items: spend, synthesize, complete, reward, proposals, commit.
//
// Invalid input (fewer than 2 distinct items, a missing item, an unknown
// artifact kind) appends a single holologue.validation_failed event and
// nothing else; the balance does not move. A synthesis failure after the
// spend appends holologue.failed and a refund; no item persists.
func (e *Engine) RunHolologue(ctx context.Context, sess Session, p RunHolologueParams) (HolologueResult, error) {
	selected, reason := e.validateSelection(p)
	if reason != "" {
		if _, err := e.append(sess.EpisodeID, qdpi.HolologueValidationFailed{Reason: reason}); err != nil {
			return HolologueResult{}, err
		}
		return HolologueResult{}, &ValidationError{Msg: reason}
	}

	if _, err := e.append(sess.EpisodeID, qdpi.HolologueRunRequested{
		SelectedItemIDs: p.SelectedItemIDs,
		ArtifactKind:    p.ArtifactKind,
	}); err != nil {
		return HolologueResult{}, err
	}
	if _, err := e.appendDelta(sess.EpisodeID, qdpi.ReasonHolologueRunSpend, nil); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return HolologueResult{}, err
	}

	synthesis, synthErr := e.synth.Synthesize(ctx, SynthesizeRequest{
		Selected:     selected,
		ArtifactKind: p.ArtifactKind,
	})
	if synthErr != nil {
		return HolologueResult{}, e.failHolologue(sess, synthErr)
	}

	outputID := e.ids.NewID(qdpi.PrefixItem)
	// The completion event is appended first so the item's provenance can
	// reference it as the run id.
	completed, err := e.append(sess.EpisodeID, qdpi.HolologueCompleted{
		SelectedItemIDs: p.SelectedItemIDs,
		OutputItemID:    outputID,
		ArtifactKind:    p.ArtifactKind,
	})
	if err != nil {
		return HolologueResult{}, err
	}

	now := qdpi.Timestamp(e.now())
	output := model.Item{
		ID:         outputID,
		NetworkID:  sess.NetworkID,
		EpisodeID:  sess.EpisodeID,
		Type:       model.ItemH,
		Title:      synthesis.Title,
		Body:       synthesis.Body,
		Provenance: model.HolologueProvenance(completed.ID, p.SelectedItemIDs, p.ArtifactKind),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.UpsertItem(output); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return HolologueResult{}, err
	}

	balance, err := e.appendDelta(sess.EpisodeID, qdpi.ReasonHolologueCompletedReward, func(cd *qdpi.CreditsDelta) {
		cd.OutputItemID = output.ID
		cd.EventID = completed.ID
	})
	if err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return HolologueResult{}, err
	}

	proposals := proposalsFor(output.Title)
	if _, err := e.append(sess.EpisodeID, qdpi.ProposalsPresented{
		SourceOutputItemID: output.ID,
		Suggestions:        proposals,
	}); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return HolologueResult{}, err
	}
	if err := e.commit(sess.EpisodeID, output.ID, []string{output.ID}); err != nil {
		return HolologueResult{}, err
	}

	e.log.Info("holologue completed",
		"output", output.ID,
		"kind", p.ArtifactKind,
		"balance", balance)
	return HolologueResult{Output: output, Proposals: proposals, Balance: balance}, nil
}

// validateSelection resolves the selected items, returning a non-empty
// reason when the run must be rejected.
func (e *Engine) validateSelection(p RunHolologueParams) ([]model.Item, string) {
	distinct := make(map[string]bool, len(p.SelectedItemIDs))
	for _, id := range p.SelectedItemIDs {
		distinct[id] = true
	}
	if len(distinct) < 2 {
		return nil, fmt.Sprintf("holologue needs at least 2 distinct items, got %d", len(distinct))
	}

	selected := make([]model.Item, 0, len(p.SelectedItemIDs))
	for _, id := range p.SelectedItemIDs {
		item, err := e.store.GetItem(id)
		if err != nil {
			return nil, "selected item " + id + " does not exist"
		}
		selected = append(selected, item)
	}

	if !e.policy.ValidArtifactKind(p.ArtifactKind) {
		return nil, "unknown artifact kind " + p.ArtifactKind
	}
	return selected, ""
}

// failHolologue records a synthesis failure: failure event, refund,
// commit. No item persists.
func (e *Engine) failHolologue(sess Session, synthErr error) error {
	reason := synthErr.Error()
	if _, err := e.append(sess.EpisodeID, qdpi.HolologueFailed{Reason: reason}); err != nil {
		return err
	}
	if _, err := e.appendDelta(sess.EpisodeID, qdpi.ReasonHolologueRunRefund, nil); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return err
	}
	if err := e.commit(sess.EpisodeID, "", nil); err != nil {
		return err
	}

	e.log.Warn("holologue failed", "reason", reason)
	return &ExecutionError{Op: "run holologue", Err: synthErr}
}
