package stream

import (
	"bytes"
	"testing"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/variant"
)

func TestScalarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := WriteU32(w, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if err := WriteF64(w, 3.5); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	u, err := ReadU32(r)
	if err != nil || u != 0xDEADBEEF {
		t.Fatalf("got %x, %v", u, err)
	}
	f, err := ReadF64(r)
	if err != nil || f != 3.5 {
		t.Fatalf("got %v, %v", f, err)
	}
}

func TestVariantRoundTrip(t *testing.T) {
	values := []variant.Variant{
		variant.FromBool(true),
		variant.FromInt32(-7),
		variant.FromFloat(1.5),
		variant.FromString("hello world"),
		variant.FromVec3(corevalue.Vec3{X: 1, Y: 2, Z: 3}),
		variant.FromUuid(corevalue.NewUuid()),
		variant.FromArray(variant.VariantArray{variant.FromInt32(1), variant.FromInt32(2)}),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range values {
		if err := WriteVariant(w, nil, v); err != nil {
			t.Fatalf("write %v: %v", v, err)
		}
	}

	r := NewReader(&buf)
	for _, want := range values {
		got, err := ReadVariant(r, nil)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got.Type() != want.Type() {
			t.Fatalf("type mismatch: got %s want %s", got.Type(), want.Type())
		}
	}
}

func TestStringDedupRoundTrip(t *testing.T) {
	ctx := BeginDedupWrite()
	var out bytes.Buffer

	sw := ctx.Writer()
	strs := []string{"PhysicsComponent", "RenderComponent", "PhysicsComponent", "AudioComponent", "PhysicsComponent"}
	for _, s := range strs {
		if err := writeDedupString(sw, ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := ctx.End(NewWriter(&out)); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&out)
	rctx, err := BeginDedupRead(r)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range strs {
		got, err := readDedupString(rctx.Reader(), rctx)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}
