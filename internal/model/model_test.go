package model

import "testing"

func TestItemTypeValid(t *testing.T) {
	for _, typ := range []ItemType{ItemQ, ItemM, ItemD, ItemH} {
		if !typ.Valid() {
			t.Errorf("type %q should be valid", typ)
		}
	}
	if ItemType("X").Valid() {
		t.Error("unknown type accepted")
	}
}

func TestBondInvariant(t *testing.T) {
	b := &Bond{ID: "bd_1", Status: BondDraft}
	if err := b.CheckInvariant(); err != nil {
		t.Fatalf("draft without output: %v", err)
	}
	b.OutputItemID = "it_1"
	if err := b.CheckInvariant(); err == nil {
		t.Fatal("draft with output item accepted")
	}
	b.Status = BondExecuted
	if err := b.CheckInvariant(); err != nil {
		t.Fatalf("executed with output: %v", err)
	}
	b.OutputItemID = ""
	if err := b.CheckInvariant(); err == nil {
		t.Fatal("executed without output item accepted")
	}
	b.Status = "done"
	if err := b.CheckInvariant(); err == nil {
		t.Fatal("unknown status accepted")
	}
}

func TestProvenanceConstructors(t *testing.T) {
	u := UserProvenance()
	if u.CreatedBy != "user" || u.BondID != "" {
		t.Errorf("user provenance: %+v", u)
	}
	bp := BondProvenance("bd_1", []string{"it_1", "it_2"})
	if bp.CreatedBy != "bond" || bp.BondID != "bd_1" || len(bp.InputItemIDs) != 2 {
		t.Errorf("bond provenance: %+v", bp)
	}
	hp := HolologueProvenance("ev_9", []string{"it_1", "it_2"}, "plan")
	if hp.CreatedBy != "holologue" || hp.HolologueEventID != "ev_9" || hp.ArtifactKind != "plan" {
		t.Errorf("holologue provenance: %+v", hp)
	}
}
