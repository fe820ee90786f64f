package rtti

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	base := &Descriptor{Name: "Component", Version: 1}
	derived := &Descriptor{Name: "PhysicsComponent", Parent: base, Version: 1}

	if err := r.Register(base); err != nil {
		t.Fatalf("register base: %v", err)
	}
	if err := r.Register(derived); err != nil {
		t.Fatalf("register derived: %v", err)
	}

	got, err := r.Lookup("PhysicsComponent")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !got.IsDerivedFrom("Component") {
		t.Fatalf("expected PhysicsComponent to derive from Component")
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	d := &Descriptor{Name: "Foo"}
	if err := r.Register(d); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(d); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestAfterRegistrationFires(t *testing.T) {
	r := NewRegistry()
	var seen []string
	r.OnAfterRegistration(func(d *Descriptor) { seen = append(seen, d.Name) })
	r.Register(&Descriptor{Name: "A"})
	r.Register(&Descriptor{Name: "B"})
	if len(seen) != 2 || seen[0] != "A" || seen[1] != "B" {
		t.Fatalf("unexpected callback sequence: %v", seen)
	}
}

func TestEnumRoundTrip(t *testing.T) {
	e := NewEnumDescriptor("Priority", map[string]int64{"Critical": 0, "High": 1, "Normal": 2})
	encoded, err := e.EncodeEnum(1)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded != "Priority::High" {
		t.Fatalf("got %q", encoded)
	}
	decoded, err := e.DecodeEnum(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != 1 {
		t.Fatalf("got %d", decoded)
	}
}

func TestEnumUnknownFails(t *testing.T) {
	e := NewEnumDescriptor("Priority", map[string]int64{"Critical": 0})
	if _, err := e.DecodeEnum("Priority::Nonexistent"); err == nil {
		t.Fatalf("expected unknown enumerant error")
	}
}

func TestBitflagsPartialRecovery(t *testing.T) {
	e := NewEnumDescriptor("Flags", map[string]int64{"A": 1, "B": 2, "C": 4})
	value, unknown := e.DecodeBitflags("Flags::A|Flags::Ghost|Flags::C")
	if value != 5 {
		t.Fatalf("expected recognized bits A|C=5, got %d", value)
	}
	if len(unknown) != 1 || unknown[0] != "Flags::Ghost" {
		t.Fatalf("expected exactly one unknown entry, got %v", unknown)
	}
}
