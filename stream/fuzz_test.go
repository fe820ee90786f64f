package stream

import (
	"bytes"
	"testing"

	fuzz "github.com/google/gofuzz"

	"github.com/d4l3k/messagediff"
	"github.com/lixenwraith/enginecore/corevalue"
)

// TestTransformRoundTripFuzz throws randomized transforms at the codec
// instead of a handful of hand-picked values, catching the kind of
// field-ordering mistake a fixed example set would miss.
func TestTransformRoundTripFuzz(t *testing.T) {
	// Constrain floats to finite values: the wire format round-trips bit
	// patterns exactly, but a random NaN payload would fail the later
	// equality check (NaN != NaN) even on a correct codec.
	f := fuzz.New().NilChance(0).Funcs(func(v *float32, c fuzz.Continue) {
		*v = c.Float32()*2000 - 1000
	})

	for i := 0; i < 200; i++ {
		var want corevalue.Transform
		f.Fuzz(&want)

		var buf bytes.Buffer
		if err := WriteTransform(NewWriter(&buf), want); err != nil {
			t.Fatalf("write: %v", err)
		}
		got, err := ReadTransform(NewReader(&buf))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != want {
			diff, _ := messagediff.PrettyDiff(want, got)
			t.Fatalf("transform round trip mismatch:\n%s", diff)
		}
	}
}
