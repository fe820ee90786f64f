package hashedstring

import "testing"

func TestMakeInternsIdenticalStrings(t *testing.T) {
	a := Make("system.physics")
	b := Make("system.physics")
	if !a.Equal(b) {
		t.Fatalf("expected interned strings to compare equal by pointer identity")
	}
	if a.String() != "system.physics" {
		t.Fatalf("got %q", a.String())
	}
}

func TestMakeDistinctStringsNotEqual(t *testing.T) {
	a := Make("system.physics")
	b := Make("system.render")
	if a.Equal(b) {
		t.Fatalf("distinct strings must not compare equal")
	}
}

func TestEqualTemp(t *testing.T) {
	a := Make("entity.root")
	temp := MakeTemp("entity.root")
	if !a.EqualTemp(temp) {
		t.Fatalf("expected hash-based equality against TempHashedString")
	}
}

func TestReleaseThenClearUnused(t *testing.T) {
	s := "hashedstring.cleanup.candidate"
	h := Make(s)
	before := Count()
	h.Release()
	removed := ClearUnused()
	if removed < 1 {
		t.Fatalf("expected at least one entry removed, got %d", removed)
	}
	if Count() != before-removed {
		t.Fatalf("count mismatch after clear: before=%d removed=%d after=%d", before, removed, Count())
	}
}

func TestEmptyStringIsZeroValue(t *testing.T) {
	var zero HashedString
	empty := Make("")
	if !zero.Equal(empty) {
		t.Fatalf("zero value must compare equal to an interned empty string")
	}
	if !zero.IsEmpty() || !empty.IsEmpty() {
		t.Fatalf("expected both to report empty")
	}
}
