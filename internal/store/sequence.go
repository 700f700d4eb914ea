package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sequenceCounter hands out the global monotonic sequence number stored in
// a single-row table. The mutex serializes within the process; the
// RETURNING clause makes the increment atomic at the database level. Next
// runs on the caller's transaction so a rolled back append also gives its
// number back.
type sequenceCounter struct {
	mu sync.Mutex
}

// newSequenceCounter ensures the tracking table exists and is seeded.
func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.ExecContext(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{}, nil
}

// Next returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context, q queryRower) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
