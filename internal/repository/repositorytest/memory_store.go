// Package repositorytest provides an in-process document store for tests of
// packages built on repository collections.
package repositorytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/epeers/stocktrack/internal/repository"
	"github.com/google/uuid"
)

// MemoryDocumentStore is an in-process document collection store with the
// same change-stream behavior as repository.DocumentRepository. Every write
// publishes a fresh snapshot synchronously.
type MemoryDocumentStore struct {
	mu    sync.Mutex
	docs  map[string]map[string]memoryDoc
	hub   *repository.Hub
	now   func() time.Time
	calls map[string]int

	// FailWrites makes Add, Delete and MergeUpdate fail when non-nil
	FailWrites error
}

type memoryDoc struct {
	data      map[string]json.RawMessage
	createdAt time.Time
	seq       int
}

// NewMemoryDocumentStore creates an empty MemoryDocumentStore
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs:  make(map[string]map[string]memoryDoc),
		hub:   repository.NewHub(),
		now:   time.Now,
		calls: make(map[string]int),
	}
}

// Calls returns how many times the named write operation (Add, Delete, MergeUpdate) was invoked
func (s *MemoryDocumentStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// List returns all documents in a collection ordered by creation time
func (s *MemoryDocumentStore) List(_ context.Context, path string) ([]repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(path)
}

func (s *MemoryDocumentStore) listLocked(path string) ([]repository.Document, error) {
	type entry struct {
		id  string
		doc memoryDoc
	}
	entries := make([]entry, 0, len(s.docs[path]))
	for id, d := range s.docs[path] {
		entries = append(entries, entry{id, d})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].doc.seq < entries[j].doc.seq
	})

	docs := make([]repository.Document, 0, len(entries))
	for _, e := range entries {
		body, err := json.Marshal(e.doc.data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document: %w", err)
		}
		docs = append(docs, repository.Document{ID: e.id, Data: body, CreatedAt: e.doc.createdAt})
	}
	return docs, nil
}

// Add inserts a document with a generated id and returns the id
func (s *MemoryDocumentStore) Add(_ context.Context, path string, data map[string]any) (string, error) {
	s.mu.Lock()
	s.calls["Add"]++
	if s.FailWrites != nil {
		s.mu.Unlock()
		return "", s.FailWrites
	}

	fields, err := toFields(data)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}

	if s.docs[path] == nil {
		s.docs[path] = make(map[string]memoryDoc)
	}
	id := uuid.NewString()
	s.docs[path][id] = memoryDoc{data: fields, createdAt: s.now(), seq: s.calls["Add"]}
	s.mu.Unlock()

	s.publish(path)
	return id, nil
}

// Delete removes a document
func (s *MemoryDocumentStore) Delete(_ context.Context, path, id string) error {
	s.mu.Lock()
	s.calls["Delete"]++
	if s.FailWrites != nil {
		s.mu.Unlock()
		return s.FailWrites
	}
	if _, ok := s.docs[path][id]; !ok {
		s.mu.Unlock()
		return repository.ErrDocumentNotFound
	}
	delete(s.docs[path], id)
	s.mu.Unlock()

	s.publish(path)
	return nil
}

// MergeUpdate overwrites the top-level fields present in partial and keeps all others
func (s *MemoryDocumentStore) MergeUpdate(_ context.Context, path, id string, partial map[string]any) error {
	s.mu.Lock()
	s.calls["MergeUpdate"]++
	if s.FailWrites != nil {
		s.mu.Unlock()
		return s.FailWrites
	}
	doc, ok := s.docs[path][id]
	if !ok {
		s.mu.Unlock()
		return repository.ErrDocumentNotFound
	}
	fields, err := toFields(partial)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	for k, v := range fields {
		doc.data[k] = v
	}
	s.mu.Unlock()

	s.publish(path)
	return nil
}

// Subscribe delivers the current collection immediately and a fresh snapshot
// after every change to it. The channel is closed when ctx is done.
func (s *MemoryDocumentStore) Subscribe(ctx context.Context, path string) (<-chan repository.Snapshot, error) {
	ch := s.hub.Add(path)

	docs, err := s.List(ctx, path)
	if err != nil {
		s.hub.Remove(path, ch)
		return nil, err
	}
	s.hub.Send(ch, repository.Snapshot{Path: path, Documents: docs})

	go func() {
		<-ctx.Done()
		s.hub.Remove(path, ch)
	}()
	return ch, nil
}

// publish builds and delivers the snapshot under the store lock so
// subscribers observe writes in order.
func (s *MemoryDocumentStore) publish(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.listLocked(path)
	if err != nil {
		s.hub.Publish(repository.Snapshot{Path: path, Err: err})
		return
	}
	s.hub.Publish(repository.Snapshot{Path: path, Documents: docs})
}

func toFields(data map[string]any) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage, len(data))
	for k, v := range data {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", k, err)
		}
		fields[k] = b
	}
	return fields, nil
}
