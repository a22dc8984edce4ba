package repository

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
)

const testPath = "artifacts/test/users/u1/portfolios"

// nextSnapshot waits for one snapshot or fails the test
func nextSnapshot(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("subscription channel closed")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestPortfolioCollectionPath(t *testing.T) {
	got := PortfolioCollectionPath("padtrack", "user-1")
	if got != "artifacts/padtrack/users/user-1/portfolios" {
		t.Errorf("unexpected path %q", got)
	}
}

func TestHub_LatestSnapshotWins(t *testing.T) {
	h := NewHub()
	ch := h.Add(testPath)

	h.Publish(Snapshot{Path: testPath, Documents: []Document{{ID: "a"}}})
	h.Publish(Snapshot{Path: testPath, Documents: []Document{{ID: "a"}, {ID: "b"}}})

	snap := nextSnapshot(t, ch)
	if len(snap.Documents) != 2 {
		t.Fatalf("expected the newer snapshot, got %d docs", len(snap.Documents))
	}
	select {
	case extra := <-ch:
		t.Fatalf("stale snapshot was kept: %+v", extra)
	default:
	}
}

func TestHub_PathsAndRemove(t *testing.T) {
	h := NewHub()
	a := h.Add("p/a")
	h.Add("p/b")

	paths := h.Paths()
	sort.Strings(paths)
	if len(paths) != 2 || paths[0] != "p/a" || paths[1] != "p/b" {
		t.Fatalf("unexpected watched paths %v", paths)
	}

	h.Remove("p/a", a)
	h.Remove("p/a", a)
	if h.Watched("p/a") {
		t.Error("expected p/a to be unwatched after remove")
	}
	if _, ok := <-a; ok {
		t.Error("expected removed channel to be closed")
	}
}

func TestListenWithRetry_ReconnectsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	once := func(ctx context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("connection reset")
		}
		cancel()
		<-ctx.Done()
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- listenWithRetry(ctx, retry.NewConstant(time.Millisecond), once) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil after cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 listen attempts, got %d", got)
	}
}

func TestListenWithRetry_StopsWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	once := func(context.Context) error {
		calls.Add(1)
		cancel()
		return errors.New("acquire failed")
	}

	if err := listenWithRetry(ctx, retry.NewConstant(time.Hour), once); err != nil {
		t.Fatalf("expected nil after cancel, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 listen attempt, got %d", got)
	}
}
