package resource

import (
	"context"
	"testing"
	"time"

	"github.com/lixenwraith/enginecore/corevalue"
)

func testClock() func() corevalue.Time {
	start := corevalue.Time(0)
	return func() corevalue.Time { return start }
}

func instantLoader(state LoadingState) LoaderFunc {
	return func(ctx context.Context, uniqueID string) (LoadDesc, any, error) {
		return LoadDesc{State: state, QualityLoadable: 0, QualityDiscardable: 1}, "payload:" + uniqueID, nil
	}
}

func TestRefCountMatchesAcquiresMinusReleases(t *testing.T) {
	m := NewManager(2, testClock())
	m.RegisterLoader("text", instantLoader(Loaded))
	h := Load[string](m, "a.txt")

	for i := 0; i < 3; i++ {
		if _, err := Acquire(context.Background(), m, h, BlockTillLoaded, "text"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	Release(m, h)

	r, ok := m.lookup(h.id)
	if !ok {
		t.Fatal("resource not found")
	}
	if got := r.RefCount(); got != 2 {
		t.Fatalf("ref count = %d, want 2", got)
	}

	Release(m, h)
	Release(m, h)
	if got := r.RefCount(); got != 0 {
		t.Fatalf("ref count = %d, want 0", got)
	}
}

func TestBlockTillLoadedSuccessImpliesPointerOnlySuccess(t *testing.T) {
	m := NewManager(2, testClock())
	m.RegisterLoader("text", instantLoader(Loaded))
	h := Load[string](m, "a.txt")

	if _, err := Acquire(context.Background(), m, h, BlockTillLoaded, "text"); err != nil {
		t.Fatalf("BlockTillLoaded: %v", err)
	}
	if _, err := Acquire(context.Background(), m, h, PointerOnly, "text"); err != nil {
		t.Fatalf("PointerOnly after successful load: %v", err)
	}
}

func TestBlockTillLoadedNeverFailFallsBackToFallback(t *testing.T) {
	m := NewManager(2, testClock())
	m.RegisterLoader("text", func(ctx context.Context, uniqueID string) (LoadDesc, any, error) {
		return LoadDesc{}, nil, ErrAssetNotFound
	})
	m.RegisterLoader("fallback-text", instantLoader(Loaded))
	fb := Load[string](m, "default.txt")
	if _, err := Acquire(context.Background(), m, fb, BlockTillLoaded, "fallback-text"); err != nil {
		t.Fatalf("loading fallback asset: %v", err)
	}
	m.RegisterFallback("text", "default.txt")

	h := Load[string](m, "missing.txt")
	v, err := Acquire(context.Background(), m, h, BlockTillLoadedNeverFail, "text")
	if err != nil {
		t.Fatalf("BlockTillLoadedNeverFail: %v", err)
	}
	if *v != "payload:default.txt" {
		t.Fatalf("got %q, want fallback payload", *v)
	}
}

func TestPointerOnlyFailsBeforeLoad(t *testing.T) {
	m := NewManager(2, testClock())
	m.RegisterLoader("text", instantLoader(Loaded))
	h := Load[string](m, "a.txt")
	if _, err := Acquire(context.Background(), m, h, PointerOnly, "text"); err == nil {
		t.Fatal("expected error acquiring unloaded resource with PointerOnly")
	}
}

func TestQualityRefinementInvariant(t *testing.T) {
	r := newResource("x")
	if err := r.ApplyLoadDesc(LoadDesc{State: Loaded, QualityLoadable: 2, QualityDiscardable: 0}); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	if err := r.ApplyLoadDesc(LoadDesc{State: Loaded, QualityLoadable: 1, QualityDiscardable: 1}); err != nil {
		t.Fatalf("refining move rejected: %v", err)
	}

	if err := r.ApplyLoadDesc(LoadDesc{State: Loaded, QualityLoadable: 2, QualityDiscardable: 0}); err != nil {
		t.Fatalf("eviction move rejected: %v", err)
	}

	if err := r.ApplyLoadDesc(LoadDesc{State: Loaded, QualityLoadable: 0, QualityDiscardable: 0}); err == nil {
		t.Fatal("expected rejection of a move that decreases both counters")
	}

	if err := r.ApplyLoadDesc(LoadDesc{State: Loaded, QualityLoadable: 0xFF, QualityDiscardable: 0}); err == nil {
		t.Fatal("expected rejection of saturated quality counter")
	}
}

func TestMissingResourceReportsOnce(t *testing.T) {
	r := newResource("x")
	if ok := mustReport(r); !ok {
		t.Fatal("first MarkMissing should request a report")
	}
	if ok := mustReport(r); ok {
		t.Fatal("second MarkMissing should not request a report")
	}
}

func mustReport(r *Resource) bool {
	return r.MarkMissing(ErrAssetNotFound)
}

func TestAtMostOneInFlightLoadPerResource(t *testing.T) {
	started := make(chan struct{}, 10)
	release := make(chan struct{})
	m := NewManager(4, testClock())
	m.RegisterLoader("slow", func(ctx context.Context, uniqueID string) (LoadDesc, any, error) {
		started <- struct{}{}
		<-release
		return LoadDesc{State: Loaded}, "done", nil
	})

	h := Load[string](m, "slow.bin")
	r, _ := m.lookup(h.id)
	m.pool.enqueue(r, "slow")
	m.pool.enqueue(r, "slow")
	m.pool.enqueue(r, "slow")

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("loader never started")
	}
	select {
	case <-started:
		t.Fatal("loader started twice for the same resource")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
}

func TestShutdownReportsLeakedResources(t *testing.T) {
	m := NewManager(2, testClock())
	m.RegisterLoader("text", instantLoader(Loaded))
	h := Load[string](m, "leaked.txt")
	if _, err := Acquire(context.Background(), m, h, BlockTillLoaded, "text"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	leaked := m.Shutdown()
	if len(leaked) != 1 || leaked[0] != "leaked.txt" {
		t.Fatalf("leaked = %v, want [leaked.txt]", leaked)
	}
}

func TestReloadFiresSubscriberOnce(t *testing.T) {
	m := NewManager(2, testClock())
	m.RegisterLoader("text", instantLoader(Loaded))
	h := Load[string](m, "a.txt")
	if _, err := Acquire(context.Background(), m, h, BlockTillLoaded, "text"); err != nil {
		t.Fatalf("initial acquire: %v", err)
	}

	notified := make(chan LoadingState, 4)
	m.Subscribe("a.txt", func(uniqueID string, state LoadingState) {
		notified <- state
	})

	if err := m.Reload(context.Background(), "a.txt", "text", true); err != nil {
		t.Fatalf("reload: %v", err)
	}

	select {
	case state := <-notified:
		if state != Loaded {
			t.Fatalf("state = %v, want Loaded", state)
		}
	case <-time.After(time.Second):
		t.Fatal("reload did not notify subscriber")
	}

	select {
	case <-notified:
		t.Fatal("reload notified subscriber more than once")
	case <-time.After(50 * time.Millisecond):
	}
}
