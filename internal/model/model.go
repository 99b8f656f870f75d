// Package model defines the mutable object snapshots held by the snapshot
// store: Network, Episode, Item, and Bond. Snapshots are overwritable
// latest-write-wins projections; the event log remains the sole owner of
// historical truth.
package model

import "fmt"

// ItemType classifies a content Item: Question, Monologue, Dialogue,
// or Holologue artifact.
type ItemType string

const (
	ItemQ ItemType = "Q"
	ItemM ItemType = "M"
	ItemD ItemType = "D"
	ItemH ItemType = "H"
)

// Valid reports whether t is one of the four item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemQ, ItemM, ItemD, ItemH:
		return true
	}
	return false
}

// BondStatus is the Bond lifecycle state. There are exactly two states:
// failures leave the bond draft with last_error set, never a third state.
type BondStatus string

const (
	BondDraft    BondStatus = "draft"
	BondExecuted BondStatus = "executed"
)

// Network is the root container, created once at first run and never mutated.
type Network struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	RootEpisodeID   string `json:"root_episode_id"`
	ActiveEpisodeID string `json:"active_episode_id,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// Episode scopes event ordering to a session. Mutated only to update the
// curated projection lists; never deleted.
type Episode struct {
	ID              string   `json:"id"`
	NetworkID       string   `json:"network_id"`
	Title           string   `json:"title"`
	Ordinal         int64    `json:"ordinal"`
	CuratedItemIDs  []string `json:"curated_item_ids,omitempty"`
	CuratedBondIDs  []string `json:"curated_bond_ids,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// Provenance links a derived Item back to what produced it. The union is
// tagged by CreatedBy: "user" (no further fields), "bond" (BondID plus the
// input items), or "holologue" (the completion event id, the selected items,
// and the artifact kind).
type Provenance struct {
	CreatedBy        string   `json:"created_by"`
	BondID           string   `json:"bond_id,omitempty"`
	InputItemIDs     []string `json:"input_item_ids,omitempty"`
	HolologueEventID string   `json:"holologue_event_id,omitempty"`
	SelectedItemIDs  []string `json:"selected_item_ids,omitempty"`
	ArtifactKind     string   `json:"artifact_kind,omitempty"`
}

// UserProvenance marks an Item created directly by the user.
func UserProvenance() Provenance {
	return Provenance{CreatedBy: "user"}
}

// BondProvenance marks an Item produced by a Bond execution.
func BondProvenance(bondID string, inputItemIDs []string) Provenance {
	return Provenance{CreatedBy: "bond", BondID: bondID, InputItemIDs: inputItemIDs}
}

// HolologueProvenance marks an Item produced by a Holologue run. The event id
// is the holologue.completed event, serving as the run reference.
func HolologueProvenance(eventID string, selectedItemIDs []string, artifactKind string) Provenance {
	return Provenance{
		CreatedBy:        "holologue",
		HolologueEventID: eventID,
		SelectedItemIDs:  selectedItemIDs,
		ArtifactKind:     artifactKind,
	}
}

// Item is a content node. Immutable once created, except for the archive
// marker; content Items are never edited or deleted.
type Item struct {
	ID         string     `json:"id"`
	NetworkID  string     `json:"network_id"`
	EpisodeID  string     `json:"episode_id"`
	Type       ItemType   `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	Provenance Provenance `json:"provenance"`
	CreatedAt  string     `json:"created_at"`
	UpdatedAt  string     `json:"updated_at"`
	ArchivedAt string     `json:"archived_at,omitempty"`
}

// Archived reports whether the item has been archived.
func (it *Item) Archived() bool { return it.ArchivedAt != "" }

// ErrorInfo records the last failed run of a Bond. Set on failure, never
// cleared.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	At      string `json:"at"`
}

// Bond is a transformation from input Items to exactly one output Item.
// Created as draft; mutated in place exactly once, on successful execution;
// never reverts.
type Bond struct {
	ID             string     `json:"id"`
	NetworkID      string     `json:"network_id"`
	EpisodeID      string     `json:"episode_id"`
	InputItemIDs   []string   `json:"input_item_ids"`
	PromptText     string     `json:"prompt_text"`
	Status         BondStatus `json:"status"`
	OutputItemID   string     `json:"output_item_id,omitempty"`
	ExecutedAt     string     `json:"executed_at,omitempty"`
	ExecutionCount int64      `json:"execution_count,omitempty"`
	LastError      *ErrorInfo `json:"last_error,omitempty"`
	CreatedAt      string     `json:"created_at"`
	UpdatedAt      string     `json:"updated_at"`
	ArchivedAt     string     `json:"archived_at,omitempty"`
}

// CheckInvariant verifies status="draft" ⇔ output_item_id unset. Holds
// before and after every operation; a violation means the snapshot is
// corrupt.
func (b *Bond) CheckInvariant() error {
	switch b.Status {
	case BondDraft:
		if b.OutputItemID != "" {
			return fmt.Errorf("bond %s: draft with output item %s", b.ID, b.OutputItemID)
		}
	case BondExecuted:
		if b.OutputItemID == "" {
			return fmt.Errorf("bond %s: executed without output item", b.ID)
		}
	default:
		return fmt.Errorf("bond %s: unknown status %q", b.ID, b.Status)
	}
	return nil
}

// Archived reports whether the bond has been archived.
func (b *Bond) Archived() bool { return b.ArchivedAt != "" }
