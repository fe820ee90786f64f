package blackboard

import (
	"testing"

	"github.com/lixenwraith/enginecore/variant"
)

func TestSetAndGetEntryValue(t *testing.T) {
	b := New("test")
	b.SetEntryValue("health", variant.FromInt32(100))

	v, ok := b.GetEntry("health")
	if !ok {
		t.Fatal("expected entry to exist")
	}
	if got := variant.MustGet[int32](v.Value); got != 100 {
		t.Fatalf("value = %d, want 100", got)
	}
}

func TestGetEntryValueFallback(t *testing.T) {
	b := New("test")
	fallback := variant.FromInt32(-1)
	got := b.GetEntryValue("missing", fallback)
	if variant.MustGet[int32](got) != -1 {
		t.Fatalf("expected fallback value")
	}
}

func TestNewEntryNeverFiresChangeEvent(t *testing.T) {
	b := New("test")
	b.SetEntryFlags("never-created", FlagOnChangeEvent)

	fired := false
	b.OnEntryEvent(func(ev EntryEvent) { fired = true })
	b.SetEntryValue("score", variant.FromInt32(0))
	b.SetEntryFlags("score", FlagOnChangeEvent)

	if fired {
		t.Fatal("creation of a new entry must not fire a change event")
	}
}

func TestChangeEventFiresOnlyWhenValueDiffers(t *testing.T) {
	b := New("test")
	b.SetEntryValue("score", variant.FromInt32(0))
	b.SetEntryFlags("score", FlagOnChangeEvent)

	fireCount := 0
	var lastOld variant.Variant
	b.OnEntryEvent(func(ev EntryEvent) {
		fireCount++
		lastOld = ev.OldValue
	})

	b.SetEntryValue("score", variant.FromInt32(0)) // same value, no event
	if fireCount != 0 {
		t.Fatalf("fireCount = %d, want 0 for a no-op write", fireCount)
	}

	b.SetEntryValue("score", variant.FromInt32(10))
	if fireCount != 1 {
		t.Fatalf("fireCount = %d, want 1", fireCount)
	}
	if variant.MustGet[int32](lastOld) != 0 {
		t.Fatalf("old value = %v, want 0", lastOld)
	}
}

func TestBoardChangeCounterTracksAddRemoveNotModify(t *testing.T) {
	b := New("test")
	b.SetEntryValue("a", variant.FromInt32(1))
	afterAdd := b.BoardChangeCounter()
	if afterAdd != 1 {
		t.Fatalf("board counter after add = %d, want 1", afterAdd)
	}

	b.SetEntryValue("a", variant.FromInt32(2))
	if b.BoardChangeCounter() != afterAdd {
		t.Fatalf("board counter must not move on value modification")
	}
	if b.EntryChangeCounter() != 1 {
		t.Fatalf("entry counter = %d, want 1", b.EntryChangeCounter())
	}

	b.RemoveEntry("a")
	if b.BoardChangeCounter() != 2 {
		t.Fatalf("board counter after remove = %d, want 2", b.BoardChangeCounter())
	}
}

func TestIncrementDecrementEntryValue(t *testing.T) {
	b := New("test")
	b.SetEntryValue("ammo", variant.FromInt32(5))

	got := b.IncrementEntryValue("ammo")
	if variant.MustGet[int32](got) != 6 {
		t.Fatalf("after increment = %v, want 6", got)
	}

	got = b.DecrementEntryValue("ammo")
	if variant.MustGet[int32](got) != 5 {
		t.Fatalf("after decrement = %v, want 5", got)
	}
}

func TestIncrementNonNumericReturnsNil(t *testing.T) {
	b := New("test")
	b.SetEntryValue("name", variant.FromString("player"))
	got := b.IncrementEntryValue("name")
	if got.IsValid() {
		t.Fatal("expected invalid result incrementing a non-numeric entry")
	}
}

func TestIncrementMissingEntryReturnsNil(t *testing.T) {
	b := New("test")
	got := b.IncrementEntryValue("does-not-exist")
	if got.IsValid() {
		t.Fatal("expected invalid result incrementing a missing entry")
	}
}

func TestGlobalBoardIsSingletonPerName(t *testing.T) {
	a := GetOrCreateGlobal("shared-world-state")
	b := GetOrCreateGlobal("shared-world-state")
	if a != b {
		t.Fatal("expected the same global board instance for the same name")
	}
	if !a.IsGlobalBoard() {
		t.Fatal("expected global board flag to be set")
	}

	found, ok := FindGlobal("shared-world-state")
	if !ok || found != a {
		t.Fatal("FindGlobal did not return the registered global board")
	}
}

func TestFindGlobalMissingReturnsFalse(t *testing.T) {
	if _, ok := FindGlobal("never-registered-board-name"); ok {
		t.Fatal("expected FindGlobal to report false for an unregistered name")
	}
}
