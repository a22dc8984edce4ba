package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/epeers/stocktrack/internal/models"
	"github.com/epeers/stocktrack/internal/repository"
	"github.com/epeers/stocktrack/internal/repository/repositorytest"
)

const testPath = "artifacts/test/users/u1/portfolios"

// startAdapter runs an adapter over a memory store and waits for the first snapshot
func startAdapter(t *testing.T, docs *repositorytest.MemoryDocumentStore) *Adapter {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a := NewAdapter(docs, testPath)
	go a.Run(ctx)

	waitFor(t, "first snapshot", func() bool { return a.Ready() && len(a.Portfolios()) > 0 })
	return a
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func seed(t *testing.T, docs *repositorytest.MemoryDocumentStore, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, err := docs.Add(context.Background(), testPath, map[string]any{"name": n, "stocks": []models.Holding{}})
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestAdapter_EmptySnapshotCreatesOneDefault(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	a := startAdapter(t, docs)

	ps := a.Portfolios()
	if len(ps) != 1 || ps[0].Name != DefaultPortfolioName {
		t.Fatalf("expected the default portfolio, got %+v", ps)
	}
	if a.SelectedID() != ps[0].ID {
		t.Errorf("expected default portfolio selected, got %q", a.SelectedID())
	}
	if docs.Calls("Add") != 1 {
		t.Errorf("expected exactly 1 Add, got %d", docs.Calls("Add"))
	}
}

func TestAdapter_RepeatedEmptySnapshotsCreateOnce(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	a := NewAdapter(&stallingStore{MemoryDocumentStore: docs, release: make(chan struct{})}, testPath)
	stall := a.docs.(*stallingStore)

	ctx := context.Background()
	empty := repository.Snapshot{Path: testPath}

	done := make(chan struct{})
	go func() {
		a.HandleSnapshot(ctx, empty)
		close(done)
	}()

	// a second empty snapshot while the first creation is outstanding
	waitFor(t, "creation in flight", func() bool { return a.Busy() })
	a.HandleSnapshot(ctx, empty)

	close(stall.release)
	<-done

	if docs.Calls("Add") != 1 {
		t.Errorf("expected exactly 1 Add, got %d", docs.Calls("Add"))
	}
}

func TestAdapter_DefaultCreationFailure(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	docs.FailWrites = errors.New("permission denied")
	a := NewAdapter(docs, testPath)

	a.HandleSnapshot(context.Background(), repository.Snapshot{Path: testPath})

	if a.Err() != "Failed to create default portfolio: failed to add portfolio: permission denied" {
		t.Errorf("unexpected error message: %q", a.Err())
	}

	// the guard is released so the next empty snapshot retries
	docs.FailWrites = nil
	a.HandleSnapshot(context.Background(), repository.Snapshot{Path: testPath})
	if docs.Calls("Add") != 2 {
		t.Errorf("expected a retry on the next empty snapshot, got %d Adds", docs.Calls("Add"))
	}
}

func TestAdapter_LoadError(t *testing.T) {
	a := NewAdapter(repositorytest.NewMemoryDocumentStore(), testPath)
	a.HandleSnapshot(context.Background(), repository.Snapshot{Path: testPath, Err: errors.New("connection reset")})

	if a.Err() != "Failed to load portfolios: connection reset" {
		t.Errorf("unexpected error message: %q", a.Err())
	}
	if a.Ready() {
		t.Error("a failed snapshot should not mark the store ready")
	}
}

func TestAdapter_SelectionPolicy(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	ids := seed(t, docs, "First", "Second")
	a := startAdapter(t, docs)

	if a.SelectedID() != ids[0] {
		t.Fatalf("expected first portfolio selected, got %q", a.SelectedID())
	}

	a.Select(ids[1])
	if err := docs.MergeUpdate(context.Background(), testPath, ids[0], map[string]any{"name": "Renamed"}); err != nil {
		t.Fatalf("merge update failed: %v", err)
	}
	waitFor(t, "rename", func() bool {
		p, _ := a.Portfolio(ids[0])
		return p.Name == "Renamed"
	})
	if a.SelectedID() != ids[1] {
		t.Errorf("selection should survive unrelated snapshots, got %q", a.SelectedID())
	}

	if err := docs.Delete(context.Background(), testPath, ids[1]); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	waitFor(t, "reselection", func() bool { return a.SelectedID() == ids[0] })
}

func TestAdapter_CreatePortfolio(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	seed(t, docs, "Existing")
	a := startAdapter(t, docs)

	if _, err := a.CreatePortfolio(context.Background(), "   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if docs.Calls("Add") != 1 {
		t.Errorf("empty name should not reach the store, got %d Adds", docs.Calls("Add"))
	}

	id, err := a.CreatePortfolio(context.Background(), "  Growth  ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if a.SelectedID() != id {
		t.Errorf("expected new portfolio selected, got %q", a.SelectedID())
	}
	waitFor(t, "new portfolio", func() bool {
		p, ok := a.Portfolio(id)
		return ok && p.Name == "Growth" && p.CreatedAt != ""
	})
}

func TestAdapter_DeletePortfolio(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	ids := seed(t, docs, "Only")
	a := startAdapter(t, docs)

	if err := a.DeletePortfolio(context.Background(), ids[0]); !errors.Is(err, ErrLastPortfolio) {
		t.Fatalf("expected ErrLastPortfolio, got %v", err)
	}
	if docs.Calls("Delete") != 0 {
		t.Fatalf("last portfolio delete should not reach the store")
	}

	second, err := a.CreatePortfolio(context.Background(), "Second")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	waitFor(t, "two portfolios", func() bool { return len(a.Portfolios()) == 2 })

	if err := a.DeletePortfolio(context.Background(), second); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if a.SelectedID() != ids[0] {
		t.Errorf("expected reselection of remaining portfolio, got %q", a.SelectedID())
	}
	if err := a.DeletePortfolio(context.Background(), "missing"); !errors.Is(err, ErrLastPortfolio) {
		t.Errorf("expected ErrLastPortfolio with one portfolio left, got %v", err)
	}
}

func TestAdapter_UpdateHoldingsSerialized(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	ids := seed(t, docs, "Main")
	a := startAdapter(t, docs)

	symbols := []string{"AAPL", "MSFT", "GOOG", "AMZN", "NVDA"}
	var wg sync.WaitGroup
	for _, s := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			err := a.UpdateHoldings(context.Background(), ids[0], func(cur []models.Holding) ([]models.Holding, error) {
				return append(cur, models.Holding{Symbol: sym}), nil
			})
			if err != nil {
				t.Errorf("update failed: %v", err)
			}
		}(s)
	}
	wg.Wait()

	p, _ := a.Portfolio(ids[0])
	if len(p.Stocks) != len(symbols) {
		t.Errorf("expected %d holdings, got %d: lost update", len(symbols), len(p.Stocks))
	}
	if docs.Calls("MergeUpdate") != len(symbols) {
		t.Errorf("expected %d writes, got %d", len(symbols), docs.Calls("MergeUpdate"))
	}
}

func TestAdapter_UpdateHoldingsNoChange(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	ids := seed(t, docs, "Main")
	a := startAdapter(t, docs)

	err := a.UpdateHoldings(context.Background(), ids[0], func([]models.Holding) ([]models.Holding, error) {
		return nil, ErrNoChange
	})
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if docs.Calls("MergeUpdate") != 0 {
		t.Errorf("expected no write, got %d", docs.Calls("MergeUpdate"))
	}

	if err := a.SetHoldings(context.Background(), "missing", nil); !errors.Is(err, ErrPortfolioNotFound) {
		t.Errorf("expected ErrPortfolioNotFound, got %v", err)
	}
}

func TestAdapter_SetHoldingsKeepsOtherFields(t *testing.T) {
	docs := repositorytest.NewMemoryDocumentStore()
	ids := seed(t, docs, "Main")
	a := startAdapter(t, docs)

	if err := a.SetHoldings(context.Background(), ids[0], []models.Holding{{Symbol: "IBM"}}); err != nil {
		t.Fatalf("set holdings failed: %v", err)
	}
	waitFor(t, "holdings", func() bool {
		p, _ := a.Portfolio(ids[0])
		return len(p.Stocks) == 1
	})
	p, _ := a.Portfolio(ids[0])
	if p.Name != "Main" {
		t.Errorf("expected name to be preserved, got %q", p.Name)
	}
	if a.Busy() {
		t.Error("busy flag should be cleared after the write")
	}
}

// loadAdapter builds an adapter from the store's current contents without
// subscribing, so the test controls every snapshot the adapter sees.
func loadAdapter(t *testing.T, docs listingStore) (*Adapter, []repository.Document) {
	t.Helper()
	list, err := docs.List(context.Background(), testPath)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	a := NewAdapter(docs, testPath)
	a.HandleSnapshot(context.Background(), repository.Snapshot{Path: testPath, Documents: list})
	return a, list
}

type listingStore interface {
	DocumentStore
	List(ctx context.Context, path string) ([]repository.Document, error)
}

func TestAdapter_OlderSnapshotKeepsLocalHoldings(t *testing.T) {
	ctx := context.Background()
	docs := repositorytest.NewMemoryDocumentStore()
	ids := seed(t, docs, "Main")
	a, beforeWrite := loadAdapter(t, docs)

	if err := a.SetHoldings(ctx, ids[0], []models.Holding{{Symbol: "IBM"}}); err != nil {
		t.Fatalf("set holdings failed: %v", err)
	}
	if p, _ := a.Portfolio(ids[0]); p.Rev != 1 {
		t.Fatalf("expected rev 1 after one write, got %d", p.Rev)
	}

	// read before the write landed
	a.HandleSnapshot(ctx, repository.Snapshot{Path: testPath, Documents: beforeWrite})
	p, _ := a.Portfolio(ids[0])
	if len(p.Stocks) != 1 || p.Stocks[0].Symbol != "IBM" || p.Rev != 1 {
		t.Fatalf("rev 0 snapshot rolled back local holdings: %+v", p)
	}

	current := repository.Document{
		ID:   ids[0],
		Data: json.RawMessage(`{"name":"Renamed","stocks":[{"symbol":"MSFT"}],"rev":1}`),
	}
	a.HandleSnapshot(ctx, repository.Snapshot{Path: testPath, Documents: []repository.Document{current}})
	p, _ = a.Portfolio(ids[0])
	if p.Name != "Renamed" || len(p.Stocks) != 1 || p.Stocks[0].Symbol != "MSFT" {
		t.Errorf("snapshot at the local rev should replace the mirror, got %+v", p)
	}

	newer := repository.Document{
		ID:   ids[0],
		Data: json.RawMessage(`{"name":"Renamed","stocks":[],"rev":2}`),
	}
	a.HandleSnapshot(ctx, repository.Snapshot{Path: testPath, Documents: []repository.Document{newer}})
	p, _ = a.Portfolio(ids[0])
	if len(p.Stocks) != 0 || p.Rev != 2 {
		t.Errorf("newer snapshot should replace the mirror, got %+v", p)
	}
}

func TestAdapter_ConcurrentDeletesKeepOnePortfolio(t *testing.T) {
	mem := repositorytest.NewMemoryDocumentStore()
	ids := seed(t, mem, "First", "Second")
	docs := &slowDeleteStore{MemoryDocumentStore: mem, release: make(chan struct{})}
	a, _ := loadAdapter(t, docs)

	errs := make(chan error, 2)
	go func() { errs <- a.DeletePortfolio(context.Background(), ids[0]) }()
	waitFor(t, "first delete in flight", func() bool { return a.Busy() })
	go func() { errs <- a.DeletePortfolio(context.Background(), ids[1]) }()

	time.Sleep(20 * time.Millisecond)
	close(docs.release)

	var deleted, rejected int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			deleted++
		case errors.Is(err, ErrLastPortfolio):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if deleted != 1 || rejected != 1 {
		t.Errorf("expected one delete and one rejection, got %d and %d", deleted, rejected)
	}
	list, _ := mem.List(context.Background(), testPath)
	if len(list) != 1 {
		t.Errorf("expected 1 stored portfolio, got %d", len(list))
	}
}

func TestAdapter_DeleteAlreadyRemoved(t *testing.T) {
	ctx := context.Background()
	docs := repositorytest.NewMemoryDocumentStore()
	ids := seed(t, docs, "Main")

	a := NewAdapter(docs, testPath)
	list, _ := docs.List(ctx, testPath)
	ghost := repository.Document{ID: "ghost", Data: json.RawMessage(`{"name":"Gone","stocks":[]}`)}
	a.HandleSnapshot(ctx, repository.Snapshot{Path: testPath, Documents: append(list, ghost)})

	if err := a.DeletePortfolio(ctx, "ghost"); !errors.Is(err, ErrPortfolioNotFound) {
		t.Fatalf("expected ErrPortfolioNotFound, got %v", err)
	}
	if _, ok := a.Portfolio("ghost"); ok {
		t.Error("expected the missing portfolio to leave the mirror")
	}
	if _, ok := a.Portfolio(ids[0]); !ok {
		t.Error("expected the remaining portfolio to stay")
	}
	if a.Busy() {
		t.Error("busy flag should be cleared")
	}
}

// slowDeleteStore blocks Delete until release is closed
type slowDeleteStore struct {
	*repositorytest.MemoryDocumentStore
	release chan struct{}
}

func (s *slowDeleteStore) Delete(ctx context.Context, path, id string) error {
	<-s.release
	return s.MemoryDocumentStore.Delete(ctx, path, id)
}

// stallingStore blocks Add until release is closed
type stallingStore struct {
	*repositorytest.MemoryDocumentStore
	release chan struct{}
}

func (s *stallingStore) Add(ctx context.Context, path string, data map[string]any) (string, error) {
	<-s.release
	return s.MemoryDocumentStore.Add(ctx, path, data)
}
