package qdpi

import (
	"strings"
	"testing"
	"time"
)

func TestRandomID_PrefixAndShape(t *testing.T) {
	id := RandomID(PrefixItem)
	if !strings.HasPrefix(id, "it_") {
		t.Errorf("id %q missing it_ prefix", id)
	}
	if len(id) != len(PrefixItem)+24 {
		t.Errorf("id %q has length %d, want %d", id, len(id), len(PrefixItem)+24)
	}
	if id == RandomID(PrefixItem) {
		t.Error("two generated ids collided")
	}
}

func TestTimestamp_UTCMilliseconds(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.FixedZone("PST", -8*3600))
	got := Timestamp(at)
	want := "2025-03-14T17:26:53.589Z"
	if got != want {
		t.Errorf("Timestamp() = %q, want %q", got, want)
	}
}

func TestNew_AssignsIdentityFromPayload(t *testing.T) {
	ev, err := New("ep_1", CreditsDelta{Delta: -10, BalanceAfter: 90, Reason: ReasonBondRunSpend, BondID: "bd_1"}, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if ev.Name != NameCreditsDelta {
		t.Errorf("name = %q", ev.Name)
	}
	if ev.QDPI != TagQ || ev.Direction != DirSystemToField {
		t.Errorf("tag/direction = %q/%q", ev.QDPI, ev.Direction)
	}
	if ev.Seq != 0 {
		t.Errorf("seq = %d before append, want 0", ev.Seq)
	}
	if got := ev.Refs["bond_id"]; got != "bd_1" {
		t.Errorf("refs[bond_id] = %v", got)
	}
}

func TestEvent_Validate(t *testing.T) {
	ev, err := New("ep_1", TutorialStarted{}, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := ev.Validate(); err == nil {
		t.Error("expected validate error for unassigned seq")
	}
	ev.Seq = 1
	if err := ev.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	ev.Name = "made.up"
	if err := ev.Validate(); err == nil {
		t.Error("expected validate error for non-canonical name")
	}
}

func TestCanonicalNames_Closed(t *testing.T) {
	if len(CanonicalNames) != 18 {
		t.Fatalf("canonical set has %d names, want 18", len(CanonicalNames))
	}
	for _, n := range CanonicalNames {
		if !n.Valid() {
			t.Errorf("canonical name %q reported invalid", n)
		}
	}
	if Name("bond.retried").Valid() {
		t.Error("non-canonical name reported valid")
	}
}

func TestCreditsDeltaOf_RoundTrip(t *testing.T) {
	ev, err := New("ep_1", CreditsDelta{Delta: 5, BalanceAfter: 84, Reason: ReasonHolologueCompletedReward, OutputItemID: "it_9"}, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	got, err := CreditsDeltaOf(ev)
	if err != nil {
		t.Fatalf("CreditsDeltaOf() failed: %v", err)
	}
	if got.Delta != 5 || got.BalanceAfter != 84 || got.Reason != ReasonHolologueCompletedReward || got.OutputItemID != "it_9" {
		t.Errorf("decoded payload = %+v", got)
	}
}

func TestCreditsDeltaOf_RejectsUnknownReason(t *testing.T) {
	ev, _ := New("ep_1", CreditsDelta{Delta: 1, BalanceAfter: 1, Reason: ReasonSeed}, time.Unix(0, 0))
	ev.Refs["reason"] = "jackpot"
	if _, err := CreditsDeltaOf(ev); err == nil {
		t.Error("expected error for unknown reason")
	}
}

func TestRefInt_DecoderShapes(t *testing.T) {
	refs := map[string]any{"a": int64(3), "b": float64(4), "c": float64(4.5)}
	if n, err := RefInt(refs, "a"); err != nil || n != 3 {
		t.Errorf("int64: got %d, %v", n, err)
	}
	if n, err := RefInt(refs, "b"); err != nil || n != 4 {
		t.Errorf("float64: got %d, %v", n, err)
	}
	if _, err := RefInt(refs, "c"); err == nil {
		t.Error("expected error for fractional float")
	}
	if _, err := RefInt(refs, "missing"); err == nil {
		t.Error("expected error for missing key")
	}
}
