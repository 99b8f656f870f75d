package qdpi

import (
	"encoding/json"
	"fmt"
)

// Suggestion is one content-shaped prompt inside a suggestions/proposals
// event. Suggestions are events-only: presenting them never creates a Bond.
type Suggestion struct {
	RecipeID   string `json:"recipe_id"`
	IntentType string `json:"intent_type"`
	PromptText string `json:"prompt_text"`
}

func suggestionRefs(ss []Suggestion) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = map[string]any{
			"recipe_id":   s.RecipeID,
			"intent_type": s.IntentType,
			"prompt_text": s.PromptText,
		}
	}
	return out
}

func idList(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// FirstRunStarted marks the very first initialization of a network.
type FirstRunStarted struct{}

func (FirstRunStarted) EventName() Name      { return NameFirstRunStarted }
func (FirstRunStarted) Tag() Tag             { return TagQ }
func (FirstRunStarted) Direction() Direction { return DirSystemToField }
func (FirstRunStarted) Refs() map[string]any { return map[string]any{} }

// EpisodeCreated records a new episode opening within a network.
type EpisodeCreated struct {
	EpisodeID string
	Title     string
	Ordinal   int64
}

func (EpisodeCreated) EventName() Name      { return NameEpisodeCreated }
func (EpisodeCreated) Tag() Tag             { return TagQ }
func (EpisodeCreated) Direction() Direction { return DirSystemToField }
func (p EpisodeCreated) Refs() map[string]any {
	return map[string]any{
		"episode_id": p.EpisodeID,
		"title":      p.Title,
		"ordinal":    p.Ordinal,
	}
}

// TutorialStarted records the user opening the tutorial.
type TutorialStarted struct{}

func (TutorialStarted) EventName() Name      { return NameTutorialStarted }
func (TutorialStarted) Tag() Tag             { return TagQ }
func (TutorialStarted) Direction() Direction { return DirUserToField }
func (TutorialStarted) Refs() map[string]any { return map[string]any{} }

// ItemCreated records a new Item snapshot being written.
type ItemCreated struct {
	ItemID string
	Type   string
	Title  string
}

func (ItemCreated) EventName() Name      { return NameItemCreated }
func (ItemCreated) Tag() Tag             { return TagM }
func (ItemCreated) Direction() Direction { return DirUserToField }
func (p ItemCreated) Refs() map[string]any {
	return map[string]any{
		"item_id": p.ItemID,
		"type":    p.Type,
		"title":   p.Title,
	}
}

// SuggestionsPresented records bond suggestions shown for an Item
// (events-only side channel).
type SuggestionsPresented struct {
	ItemID      string
	Suggestions []Suggestion
}

func (SuggestionsPresented) EventName() Name      { return NameBondSuggestionsPresented }
func (SuggestionsPresented) Tag() Tag             { return TagQ }
func (SuggestionsPresented) Direction() Direction { return DirSystemToField }
func (p SuggestionsPresented) Refs() map[string]any {
	return map[string]any{
		"item_id":     p.ItemID,
		"suggestions": suggestionRefs(p.Suggestions),
	}
}

// BondDraftCreated records a new draft Bond.
type BondDraftCreated struct {
	BondID       string
	InputItemIDs []string
	PromptText   string
	Origin       string // recipe id when the draft came from a suggestion
}

func (BondDraftCreated) EventName() Name      { return NameBondDraftCreated }
func (BondDraftCreated) Tag() Tag             { return TagD }
func (BondDraftCreated) Direction() Direction { return DirUserToField }
func (p BondDraftCreated) Refs() map[string]any {
	refs := map[string]any{
		"bond_id":        p.BondID,
		"input_item_ids": idList(p.InputItemIDs),
		"prompt_text":    p.PromptText,
	}
	if p.Origin != "" {
		refs["origin"] = p.Origin
	}
	return refs
}

// BondRunRequested records the user asking to execute a draft Bond.
type BondRunRequested struct {
	BondID string
}

func (BondRunRequested) EventName() Name      { return NameBondRunRequested }
func (BondRunRequested) Tag() Tag             { return TagQ }
func (BondRunRequested) Direction() Direction { return DirUserToField }
func (p BondRunRequested) Refs() map[string]any {
	return map[string]any{"bond_id": p.BondID}
}

// BondExecuted records a successful Bond run and its single output Item.
type BondExecuted struct {
	BondID         string
	InputItemIDs   []string
	OutputItemID   string
	ExecutionCount int64
}

func (BondExecuted) EventName() Name      { return NameBondExecuted }
func (BondExecuted) Tag() Tag             { return TagM }
func (BondExecuted) Direction() Direction { return DirSystemToField }
func (p BondExecuted) Refs() map[string]any {
	return map[string]any{
		"bond_id":         p.BondID,
		"input_item_ids":  idList(p.InputItemIDs),
		"output_item_id":  p.OutputItemID,
		"execution_count": p.ExecutionCount,
	}
}

// BondExecutionFailed records a failed Bond run; the Bond stays draft.
type BondExecutionFailed struct {
	BondID string
	Reason string
}

func (BondExecutionFailed) EventName() Name      { return NameBondExecutionFailed }
func (BondExecutionFailed) Tag() Tag             { return TagM }
func (BondExecutionFailed) Direction() Direction { return DirSystemToField }
func (p BondExecutionFailed) Refs() map[string]any {
	return map[string]any{
		"bond_id": p.BondID,
		"reason":  p.Reason,
	}
}

// HolologueRunRequested records the start of a many→one synthesis.
type HolologueRunRequested struct {
	SelectedItemIDs []string
	ArtifactKind    string
}

func (HolologueRunRequested) EventName() Name      { return NameHolologueRunRequested }
func (HolologueRunRequested) Tag() Tag             { return TagH }
func (HolologueRunRequested) Direction() Direction { return DirUserToField }
func (p HolologueRunRequested) Refs() map[string]any {
	return map[string]any{
		"selected_item_ids": idList(p.SelectedItemIDs),
		"artifact_kind":     p.ArtifactKind,
	}
}

// HolologueValidationFailed records a rejected run before any spend.
type HolologueValidationFailed struct {
	Reason string
}

func (HolologueValidationFailed) EventName() Name      { return NameHolologueValidationFailed }
func (HolologueValidationFailed) Tag() Tag             { return TagH }
func (HolologueValidationFailed) Direction() Direction { return DirUserToField }
func (p HolologueValidationFailed) Refs() map[string]any {
	return map[string]any{"reason": p.Reason}
}

// HolologueCompleted records a successful synthesis and its single output
// Item. The event id doubles as the run reference in Item provenance.
type HolologueCompleted struct {
	SelectedItemIDs []string
	OutputItemID    string
	ArtifactKind    string
}

func (HolologueCompleted) EventName() Name      { return NameHolologueCompleted }
func (HolologueCompleted) Tag() Tag             { return TagH }
func (HolologueCompleted) Direction() Direction { return DirSystemToField }
func (p HolologueCompleted) Refs() map[string]any {
	return map[string]any{
		"selected_item_ids": idList(p.SelectedItemIDs),
		"output_item_id":    p.OutputItemID,
		"artifact_kind":     p.ArtifactKind,
	}
}

// HolologueFailed records a synthesis failure after spend.
type HolologueFailed struct {
	Reason string
}

func (HolologueFailed) EventName() Name      { return NameHolologueFailed }
func (HolologueFailed) Tag() Tag             { return TagH }
func (HolologueFailed) Direction() Direction { return DirSystemToField }
func (p HolologueFailed) Refs() map[string]any {
	return map[string]any{"reason": p.Reason}
}

// ProposalsPresented records follow-on bond proposals after a Holologue run
// (events-only side channel).
type ProposalsPresented struct {
	SourceOutputItemID string
	Suggestions        []Suggestion
}

func (ProposalsPresented) EventName() Name      { return NameBondProposalsPresented }
func (ProposalsPresented) Tag() Tag             { return TagQ }
func (ProposalsPresented) Direction() Direction { return DirSystemToField }
func (p ProposalsPresented) Refs() map[string]any {
	return map[string]any{
		"source": map[string]any{
			"kind":           "holologue",
			"output_item_id": p.SourceOutputItemID,
		},
		"suggestions": suggestionRefs(p.Suggestions),
	}
}

// LedgerOpened records the user opening the ledger view.
type LedgerOpened struct{}

func (LedgerOpened) EventName() Name      { return NameLedgerOpened }
func (LedgerOpened) Tag() Tag             { return TagQ }
func (LedgerOpened) Direction() Direction { return DirUserToField }
func (LedgerOpened) Refs() map[string]any { return map[string]any{} }

// Commit marks the logical transaction boundary after a successful
// multi-step mutation.
type Commit struct {
	ItemID      string
	EpisodeID   string
	ModifiedIDs []string
}

func (Commit) EventName() Name      { return NameStoreCommit }
func (Commit) Tag() Tag             { return TagQ }
func (Commit) Direction() Direction { return DirSystemToField }
func (p Commit) Refs() map[string]any {
	refs := map[string]any{}
	if p.ItemID != "" {
		refs["item_id"] = p.ItemID
	}
	if p.EpisodeID != "" {
		refs["episode_id"] = p.EpisodeID
	}
	if len(p.ModifiedIDs) > 0 {
		refs["modified_ids"] = idList(p.ModifiedIDs)
	}
	return refs
}

// CommitFailed marks a transaction whose underlying write did not complete.
type CommitFailed struct {
	Reason string
}

func (CommitFailed) EventName() Name      { return NameStoreCommitFailed }
func (CommitFailed) Tag() Tag             { return TagQ }
func (CommitFailed) Direction() Direction { return DirSystemToField }
func (p CommitFailed) Refs() map[string]any {
	return map[string]any{"reason": p.Reason}
}

// CreditsDelta records a signed credits movement. Delta, BalanceAfter and
// Reason are required on the wire; the optional ids link the delta to the
// object that caused it.
type CreditsDelta struct {
	Delta        int64
	BalanceAfter int64
	Reason       Reason
	ItemID       string
	BondID       string
	OutputItemID string
	EventID      string
}

func (CreditsDelta) EventName() Name      { return NameCreditsDelta }
func (CreditsDelta) Tag() Tag             { return TagQ }
func (CreditsDelta) Direction() Direction { return DirSystemToField }
func (p CreditsDelta) Refs() map[string]any {
	refs := map[string]any{
		"delta":         p.Delta,
		"balance_after": p.BalanceAfter,
		"reason":        string(p.Reason),
	}
	if p.ItemID != "" {
		refs["item_id"] = p.ItemID
	}
	if p.BondID != "" {
		refs["bond_id"] = p.BondID
	}
	if p.OutputItemID != "" {
		refs["output_item_id"] = p.OutputItemID
	}
	if p.EventID != "" {
		refs["event_id"] = p.EventID
	}
	return refs
}

// CreditsDeltaOf decodes the typed credits payload back out of a
// credits.delta event. Used by the ledger fold and by replay verification.
func CreditsDeltaOf(e Event) (CreditsDelta, error) {
	if e.Name != NameCreditsDelta {
		return CreditsDelta{}, fmt.Errorf("event %s is %q, not credits.delta", e.ID, e.Name)
	}
	delta, err := RefInt(e.Refs, "delta")
	if err != nil {
		return CreditsDelta{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	after, err := RefInt(e.Refs, "balance_after")
	if err != nil {
		return CreditsDelta{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	reason, _ := e.Refs["reason"].(string)
	if !Reason(reason).Valid() {
		return CreditsDelta{}, fmt.Errorf("event %s: unknown credits reason %q", e.ID, reason)
	}
	p := CreditsDelta{
		Delta:        delta,
		BalanceAfter: after,
		Reason:       Reason(reason),
	}
	p.ItemID, _ = e.Refs["item_id"].(string)
	p.BondID, _ = e.Refs["bond_id"].(string)
	p.OutputItemID, _ = e.Refs["output_item_id"].(string)
	p.EventID, _ = e.Refs["event_id"].(string)
	return p, nil
}

// RefInt extracts an integer ref value. Refs decoded from JSON arrive as
// json.Number or float64 depending on the decoder; builders use int64.
func RefInt(refs map[string]any, key string) (int64, error) {
	v, ok := refs[key]
	if !ok {
		return 0, fmt.Errorf("refs missing required key %q", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("refs[%q] = %v is not an integer", key, n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("refs[%q] has non-numeric type %T", key, v)
	}
}

// RefString extracts a string ref value, empty if absent.
func RefString(refs map[string]any, key string) string {
	s, _ := refs[key].(string)
	return s
}

// RefStrings extracts a list-of-ids ref value.
func RefStrings(refs map[string]any, key string) []string {
	list, ok := refs[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
