package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	log "github.com/sirupsen/logrus"
)

// changeChannel is the NOTIFY channel raised by the document trigger; the payload is the collection path
const changeChannel = "document_changes"

// DocumentRepository is a schemaless document collection store on PostgreSQL.
// Writes raise a NOTIFY through a table trigger; Listen turns those into
// fresh collection snapshots for every subscriber of the changed path.
type DocumentRepository struct {
	pool *pgxpool.Pool
	hub  *Hub
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool, hub: NewHub()}
}

// List returns all documents in a collection ordered by creation time
func (r *DocumentRepository) List(ctx context.Context, path string) ([]Document, error) {
	query := `
		SELECT id, data, created_at
		FROM document
		WHERE path = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Data, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Add inserts a document with a generated id and returns the id
func (r *DocumentRepository) Add(ctx context.Context, path string, data map[string]any) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	id := uuid.NewString()
	query := `INSERT INTO document (path, id, data) VALUES ($1, $2, $3::jsonb)`
	if _, err := r.pool.Exec(ctx, query, path, id, string(body)); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}
	return id, nil
}

// Delete removes a document
func (r *DocumentRepository) Delete(ctx context.Context, path, id string) error {
	query := `DELETE FROM document WHERE path = $1 AND id = $2`
	result, err := r.pool.Exec(ctx, query, path, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// MergeUpdate overwrites the top-level fields present in partial and keeps all others
func (r *DocumentRepository) MergeUpdate(ctx context.Context, path, id string, partial map[string]any) error {
	body, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
		UPDATE document
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE path = $1 AND id = $2
	`
	result, err := r.pool.Exec(ctx, query, path, id, string(body))
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Subscribe delivers the current collection immediately and a fresh snapshot
// after every change to it. The channel is closed when ctx is done.
// Snapshots only flow while Listen is running.
func (r *DocumentRepository) Subscribe(ctx context.Context, path string) (<-chan Snapshot, error) {
	ch := r.hub.Add(path)

	docs, err := r.List(ctx, path)
	if err != nil {
		r.hub.Remove(path, ch)
		return nil, err
	}
	r.hub.Send(ch, Snapshot{Path: path, Documents: docs})

	go func() {
		<-ctx.Done()
		r.hub.Remove(path, ch)
	}()
	return ch, nil
}

// Listen holds one connection in LISTEN mode and republishes changed
// collections until ctx is done. A dropped connection is re-acquired with
// backoff, and every watched collection is reloaded once listening resumes.
func (r *DocumentRepository) Listen(ctx context.Context) error {
	return listenWithRetry(ctx, listenBackoff(), r.listenOnce)
}

func listenBackoff() retry.Backoff {
	return retry.WithCappedDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))
}

// listenWithRetry runs once until ctx is done, retrying every failure after b's delay
func listenWithRetry(ctx context.Context, b retry.Backoff, once func(context.Context) error) error {
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := once(ctx)
		if err == nil || ctx.Err() != nil {
			return nil
		}
		log.Errorf("document change listener dropped, reconnecting: %v", err)
		return retry.RetryableError(err)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (r *DocumentRepository) listenOnce(ctx context.Context) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", changeChannel, err)
	}
	log.Infof("listening for document changes on %s", changeChannel)

	// changes made while no connection was listening
	for _, path := range r.hub.Paths() {
		r.refresh(ctx, path)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed waiting for notification: %w", err)
		}
		r.refresh(ctx, n.Payload)
	}
}

func (r *DocumentRepository) refresh(ctx context.Context, path string) {
	if !r.hub.Watched(path) {
		return
	}
	docs, err := r.List(ctx, path)
	if err != nil {
		log.WithField("path", path).Errorf("failed to reload collection: %v", err)
		r.hub.Publish(Snapshot{Path: path, Err: err})
		return
	}
	r.hub.Publish(Snapshot{Path: path, Documents: docs})
}
