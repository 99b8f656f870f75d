package qdpi

// Name is a canonical event name. The set is closed: appending an event with
// any other name is rejected by the store.
type Name string

const (
	NameFirstRunStarted           Name = "app.first_run.started"
	NameEpisodeCreated            Name = "episode.created"
	NameTutorialStarted           Name = "tutorial.started"
	NameItemCreated               Name = "item.created"
	NameBondSuggestionsPresented  Name = "bond.suggestions.presented"
	NameBondDraftCreated          Name = "bond.draft_created"
	NameBondRunRequested          Name = "bond.run_requested"
	NameBondExecuted              Name = "bond.executed"
	NameBondExecutionFailed       Name = "bond.execution_failed"
	NameHolologueRunRequested     Name = "holologue.run_requested"
	NameHolologueValidationFailed Name = "holologue.validation_failed"
	NameHolologueCompleted        Name = "holologue.completed"
	NameHolologueFailed           Name = "holologue.failed"
	NameBondProposalsPresented    Name = "bond.proposals.presented"
	NameLedgerOpened              Name = "ledger.opened"
	NameStoreCommit               Name = "store.commit"
	NameStoreCommitFailed         Name = "store.commit_failed"
	NameCreditsDelta              Name = "credits.delta"
)

// CanonicalNames lists every permitted event name in declaration order.
var CanonicalNames = []Name{
	NameFirstRunStarted,
	NameEpisodeCreated,
	NameTutorialStarted,
	NameItemCreated,
	NameBondSuggestionsPresented,
	NameBondDraftCreated,
	NameBondRunRequested,
	NameBondExecuted,
	NameBondExecutionFailed,
	NameHolologueRunRequested,
	NameHolologueValidationFailed,
	NameHolologueCompleted,
	NameHolologueFailed,
	NameBondProposalsPresented,
	NameLedgerOpened,
	NameStoreCommit,
	NameStoreCommitFailed,
	NameCreditsDelta,
}

var canonicalSet = func() map[Name]bool {
	m := make(map[Name]bool, len(CanonicalNames))
	for _, n := range CanonicalNames {
		m[n] = true
	}
	return m
}()

// Valid reports whether n is one of the canonical event names.
func (n Name) Valid() bool {
	return canonicalSet[n]
}

// Tag is the QDPI classification of an event or item: Question, Monologue,
// Dialogue, or Holologue.
type Tag string

const (
	TagQ Tag = "Q"
	TagM Tag = "M"
	TagD Tag = "D"
	TagH Tag = "H"
)

// Valid reports whether t is one of the four QDPI tags.
func (t Tag) Valid() bool {
	switch t {
	case TagQ, TagM, TagD, TagH:
		return true
	}
	return false
}

// Direction records who pushed the event into the field.
type Direction string

const (
	DirUserToField   Direction = "user→field"
	DirSystemToField Direction = "system→field"
)

// Valid reports whether d is a permitted direction.
func (d Direction) Valid() bool {
	return d == DirUserToField || d == DirSystemToField
}

// Reason classifies a credits.delta event. The set is fixed; the ledger
// rejects deltas with any other reason.
type Reason string

const (
	ReasonSeed                     Reason = "seed"
	ReasonItemCreated              Reason = "item_created"
	ReasonBondRunSpend             Reason = "bond_run_spend"
	ReasonBondExecutedReward       Reason = "bond_executed_reward"
	ReasonBondRunRefund            Reason = "bond_run_refund"
	ReasonHolologueRunSpend        Reason = "holologue_run_spend"
	ReasonHolologueCompletedReward Reason = "holologue_completed_reward"
	ReasonHolologueRunRefund       Reason = "holologue_run_refund"
)

// Reasons lists every permitted credits.delta reason.
var Reasons = []Reason{
	ReasonSeed,
	ReasonItemCreated,
	ReasonBondRunSpend,
	ReasonBondExecutedReward,
	ReasonBondRunRefund,
	ReasonHolologueRunSpend,
	ReasonHolologueCompletedReward,
	ReasonHolologueRunRefund,
}

// Valid reports whether r is one of the fixed credit reasons.
func (r Reason) Valid() bool {
	for _, known := range Reasons {
		if r == known {
			return true
		}
	}
	return false
}
