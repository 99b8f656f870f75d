package qdpi

import (
	"testing"
	"time"
)

func TestMarshalCanonical_SortedKeysNoHTMLEscape(t *testing.T) {
	got, err := marshalCanonical(map[string]any{
		"b":     "x<y>&z",
		"a":     int64(1),
		"items": []any{"it_1", "it_2"},
	})
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}
	want := `{"a":1,"b":"x<y>&z","items":["it_1","it_2"]}`
	if string(got) != want {
		t.Errorf("canonical = %s, want %s", got, want)
	}
}

func TestMarshalCanonical_RejectsFloatsAndNull(t *testing.T) {
	if _, err := marshalCanonical(map[string]any{"x": 1.5}); err == nil {
		t.Error("expected error for float")
	}
	if _, err := marshalCanonical(map[string]any{"x": nil}); err == nil {
		t.Error("expected error for null")
	}
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	ev, err := New("ep_1", BondExecuted{
		BondID:         "bd_1",
		InputItemIDs:   []string{"it_1"},
		OutputItemID:   "it_2",
		ExecutionCount: 1,
	}, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	ev.Seq = 7

	first, err := ev.MarshalCanonical()
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}
	second, err := ev.MarshalCanonical()
	if err != nil {
		t.Fatalf("second MarshalCanonical() failed: %v", err)
	}
	if string(first) != string(second) {
		t.Error("canonical form not deterministic across calls")
	}
}

func TestUTF16Less_SupplementaryPlane(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before 0xFF61 in UTF-16 code units even though it is the larger
	// code point. This is where UTF-16 order diverges from rune order.
	if !utf16Less("\U00010000", "｡") {
		t.Error("expected U+10000 < U+FF61 in UTF-16 code unit order")
	}
	if utf16Less("｡", "\U00010000") {
		t.Error("expected U+FF61 > U+10000 in UTF-16 code unit order")
	}
}
