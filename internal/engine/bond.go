package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/holographic-rest/field-kit/internal/model"
	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// CreateBondParams describes a bond draft. Origin optionally names the
// suggestion recipe the user confirmed.
type CreateBondParams struct {
	InputItemIDs []string
	PromptText   string
	Origin       string
}

// CreateBond creates a draft bond after checking every input item exists.
// Validation failures are rejected before any event is appended.
func (e *Engine) CreateBond(sess Session, p CreateBondParams) (model.Bond, error) {
	if len(p.InputItemIDs) == 0 {
		return model.Bond{}, &ValidationError{Msg: "bond needs at least one input item"}
	}
	if strings.TrimSpace(p.PromptText) == "" {
		return model.Bond{}, &ValidationError{Msg: "bond prompt text is empty"}
	}
	for _, id := range p.InputItemIDs {
		if _, err := e.store.GetItem(id); err != nil {
			return model.Bond{}, &ValidationError{Msg: "bond input item " + id + " does not exist"}
		}
	}

	now := qdpi.Timestamp(e.now())
	bond := model.Bond{
		ID:           e.ids.NewID(qdpi.PrefixBond),
		NetworkID:    sess.NetworkID,
		EpisodeID:    sess.EpisodeID,
		InputItemIDs: p.InputItemIDs,
		PromptText:   p.PromptText,
		Status:       model.BondDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := e.append(sess.EpisodeID, qdpi.BondDraftCreated{
		BondID:       bond.ID,
		InputItemIDs: bond.InputItemIDs,
		PromptText:   bond.PromptText,
		Origin:       p.Origin,
	}); err != nil {
		return model.Bond{}, err
	}
	if err := e.store.UpsertBond(bond); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return model.Bond{}, err
	}
	if err := e.commit(sess.EpisodeID, "", []string{bond.ID}); err != nil {
		return model.Bond{}, err
	}

	e.log.Info("bond drafted", "bond", bond.ID, "inputs", len(bond.InputItemIDs))
	return bond, nil
}

// BondRunResult reports a successful bond execution.
type BondRunResult struct {
	Bond    model.Bond
	Output  model.Item
	Balance int64
}

// RunBond executes a draft bond: spend, synthesize exactly one output
// item, mark the bond executed, reward, commit.
//
// A bond already executed is rejected with InvalidStateError before any
// event. A missing input item appends one bond.execution_failed event and
// nothing else. A synthesis failure after the spend appends
// bond.execution_failed, sets last_error, refunds, and leaves the bond
// draft so it may be re-run.
func (e *Engine) RunBond(ctx context.Context, sess Session, bondID string) (BondRunResult, error) {
	bond, err := e.store.GetBond(bondID)
	if err != nil {
		return BondRunResult{}, err
	}
	if bond.Status == model.BondExecuted {
		return BondRunResult{}, &InvalidStateError{Msg: "bond " + bondID + " is already executed"}
	}

	inputs := make([]model.Item, 0, len(bond.InputItemIDs))
	for _, id := range bond.InputItemIDs {
		item, err := e.store.GetItem(id)
		if err != nil {
			reason := "input item " + id + " does not exist"
			if _, aerr := e.append(sess.EpisodeID, qdpi.BondExecutionFailed{
				BondID: bond.ID,
				Reason: reason,
			}); aerr != nil {
				return BondRunResult{}, aerr
			}
			return BondRunResult{}, &ValidationError{Msg: "bond " + bondID + ": " + reason}
		}
		inputs = append(inputs, item)
	}

	if _, err := e.append(sess.EpisodeID, qdpi.BondRunRequested{BondID: bond.ID}); err != nil {
		return BondRunResult{}, err
	}
	if _, err := e.appendDelta(sess.EpisodeID, qdpi.ReasonBondRunSpend, func(cd *qdpi.CreditsDelta) {
		cd.BondID = bond.ID
	}); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return BondRunResult{}, err
	}

	synthesis, synthErr := e.synth.Transform(ctx, TransformRequest{
		PromptText: bond.PromptText,
		Inputs:     inputs,
	})
	if synthErr != nil {
		return BondRunResult{}, e.failBondRun(sess, bond, synthErr)
	}

	// Only a run that produced an output counts.
	bond.ExecutionCount++

	now := qdpi.Timestamp(e.now())
	output := model.Item{
		ID:         e.ids.NewID(qdpi.PrefixItem),
		NetworkID:  sess.NetworkID,
		EpisodeID:  sess.EpisodeID,
		Type:       bondOutputType(bond),
		Title:      synthesis.Title,
		Body:       synthesis.Body,
		Provenance: model.BondProvenance(bond.ID, bond.InputItemIDs),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := e.append(sess.EpisodeID, qdpi.BondExecuted{
		BondID:         bond.ID,
		InputItemIDs:   bond.InputItemIDs,
		OutputItemID:   output.ID,
		ExecutionCount: bond.ExecutionCount,
	}); err != nil {
		return BondRunResult{}, err
	}

	bond.Status = model.BondExecuted
	bond.OutputItemID = output.ID
	bond.ExecutedAt = now
	bond.UpdatedAt = now
	if err := bond.CheckInvariant(); err != nil {
		return BondRunResult{}, err
	}
	if err := e.store.UpsertItem(output); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return BondRunResult{}, err
	}
	if err := e.store.UpsertBond(bond); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return BondRunResult{}, err
	}

	balance, err := e.appendDelta(sess.EpisodeID, qdpi.ReasonBondExecutedReward, func(cd *qdpi.CreditsDelta) {
		cd.BondID = bond.ID
		cd.OutputItemID = output.ID
	})
	if err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return BondRunResult{}, err
	}
	if err := e.commit(sess.EpisodeID, output.ID, []string{bond.ID, output.ID}); err != nil {
		return BondRunResult{}, err
	}

	e.log.Info("bond executed", "bond", bond.ID, "output", output.ID, "balance", balance)
	return BondRunResult{Bond: bond, Output: output, Balance: balance}, nil
}

// failBondRun records a synthesis failure: failure event, last_error on
// the snapshot, refund, commit. The bond stays draft.
func (e *Engine) failBondRun(sess Session, bond model.Bond, synthErr error) error {
	reason := synthErr.Error()
	if _, err := e.append(sess.EpisodeID, qdpi.BondExecutionFailed{
		BondID: bond.ID,
		Reason: reason,
	}); err != nil {
		return err
	}

	now := qdpi.Timestamp(e.now())
	bond.LastError = &model.ErrorInfo{Message: reason, At: now}
	bond.UpdatedAt = now
	if err := e.store.UpsertBond(bond); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return err
	}
	if _, err := e.appendDelta(sess.EpisodeID, qdpi.ReasonBondRunRefund, func(cd *qdpi.CreditsDelta) {
		cd.BondID = bond.ID
	}); err != nil {
		e.commitFailed(sess.EpisodeID, err.Error())
		return err
	}
	if err := e.commit(sess.EpisodeID, "", []string{bond.ID}); err != nil {
		return err
	}

	e.log.Warn("bond execution failed", "bond", bond.ID, "reason", reason)
	return &ExecutionError{Op: fmt.Sprintf("run bond %s", bond.ID), Err: synthErr}
}

// bondOutputType picks the output item type: a dialogue when the bond
// draws on several items, a monologue for one.
func bondOutputType(b model.Bond) model.ItemType {
	if len(b.InputItemIDs) > 1 {
		return model.ItemD
	}
	return model.ItemM
}
