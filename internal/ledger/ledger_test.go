package ledger

import (
	"errors"
	"testing"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// sliceSource serves a fixed event slice, filtered the way the store does.
type sliceSource []qdpi.Event

func (s sliceSource) Events(episodeID string) ([]qdpi.Event, error) {
	if episodeID == "" {
		return s, nil
	}
	var out []qdpi.Event
	for _, ev := range s {
		if ev.EpisodeID == episodeID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func creditEvent(id string, seq int64, delta, after int64, reason qdpi.Reason) qdpi.Event {
	return qdpi.Event{
		ID:        id,
		EpisodeID: "ep_A",
		Seq:       seq,
		Name:      qdpi.NameCreditsDelta,
		QDPI:      qdpi.TagQ,
		Direction: qdpi.DirSystemToField,
		Refs: map[string]any{
			"delta":         delta,
			"balance_after": after,
			"reason":        string(reason),
		},
	}
}

func TestBalanceFoldsFromZero(t *testing.T) {
	src := sliceSource{
		creditEvent("ev_1", 1, 100, 100, qdpi.ReasonSeed),
		creditEvent("ev_2", 2, 1, 101, qdpi.ReasonItemCreated),
		creditEvent("ev_3", 3, -10, 91, qdpi.ReasonBondRunSpend),
		creditEvent("ev_4", 4, 3, 94, qdpi.ReasonBondExecutedReward),
	}
	got, err := Balance(src, "ep_A")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got != 94 {
		t.Errorf("balance = %d, want 94", got)
	}
}

func TestVerifyDetectsDrift(t *testing.T) {
	src := sliceSource{
		creditEvent("ev_1", 1, 100, 100, qdpi.ReasonSeed),
		creditEvent("ev_2", 2, 1, 102, qdpi.ReasonItemCreated), // recorded 102, fold says 101
	}
	_, err := Verify(src, "ep_A")
	var drift *DriftError
	if !errors.As(err, &drift) {
		t.Fatalf("err = %v, want drift", err)
	}
	if drift.EventID != "ev_2" || drift.Recorded != 102 || drift.Computed != 101 {
		t.Errorf("drift = %+v", drift)
	}
}

func TestVerifyCleanLog(t *testing.T) {
	src := sliceSource{
		creditEvent("ev_1", 1, 100, 100, qdpi.ReasonSeed),
		creditEvent("ev_2", 2, -20, 80, qdpi.ReasonHolologueRunSpend),
		creditEvent("ev_3", 3, 20, 100, qdpi.ReasonHolologueRunRefund),
	}
	got, err := Verify(src, "ep_A")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != 100 {
		t.Errorf("final balance = %d, want 100", got)
	}
}

func TestLineage(t *testing.T) {
	src := sliceSource{
		{
			ID: "ev_1", EpisodeID: "ep_A", Seq: 1, Name: qdpi.NameBondExecuted,
			Refs: map[string]any{
				"bond_id":        "bd_1",
				"input_item_ids": []any{"it_1", "it_2"},
				"output_item_id": "it_3",
			},
		},
		{
			ID: "ev_2", EpisodeID: "ep_A", Seq: 2, Name: qdpi.NameHolologueCompleted,
			Refs: map[string]any{
				"selected_item_ids": []any{"it_1", "it_3"},
				"output_item_id":    "it_4",
				"artifact_kind":     "plan",
			},
		},
	}

	origin, ok, err := Lineage(src, "it_3")
	if err != nil || !ok {
		t.Fatalf("lineage it_3: ok=%v err=%v", ok, err)
	}
	if origin.Kind != "bond" || origin.BondID != "bd_1" || len(origin.SourceItemIDs) != 2 {
		t.Errorf("bond origin = %+v", origin)
	}

	origin, ok, err = Lineage(src, "it_4")
	if err != nil || !ok {
		t.Fatalf("lineage it_4: ok=%v err=%v", ok, err)
	}
	if origin.Kind != "holologue" || origin.HolologueEventID != "ev_2" || origin.ArtifactKind != "plan" {
		t.Errorf("holologue origin = %+v", origin)
	}

	_, ok, err = Lineage(src, "it_1")
	if err != nil {
		t.Fatalf("lineage it_1: %v", err)
	}
	if ok {
		t.Error("user-created item reported an origin")
	}
}
