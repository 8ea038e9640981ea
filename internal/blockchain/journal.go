// =============================
// File: internal/blockchain/journal.go
// =============================
package blockchain

import (
	"context"
	"sync"
)

// Journal is an undo log. Every state change made on behalf of an operation
// appends the function that reverses it; reverting runs them newest first.
// Undo functions apply deltas rather than restoring snapshots, so changes made
// outside the journal to the same accounts survive a revert.
type Journal struct {
	mu      sync.Mutex
	entries []func()
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{entries: make([]func(), 0, 8)}
}

// Append records an undo function.
func (j *Journal) Append(undo func()) {
	j.mu.Lock()
	j.entries = append(j.entries, undo)
	j.mu.Unlock()
}

// Len returns the number of recorded entries, usable as a restore point.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// RevertTo undoes every entry recorded after restorePoint.
func (j *Journal) RevertTo(restorePoint int) {
	for {
		j.mu.Lock()
		if len(j.entries) <= restorePoint {
			j.mu.Unlock()
			return
		}
		undo := j.entries[len(j.entries)-1]
		j.entries = j.entries[:len(j.entries)-1]
		j.mu.Unlock()

		undo()
	}
}

// Revert undoes every entry.
func (j *Journal) Revert() {
	j.RevertTo(0)
}

type journalKey struct{}

// WithJournal returns a context whose state changes are recorded in j.
func WithJournal(ctx context.Context, j *Journal) context.Context {
	return context.WithValue(ctx, journalKey{}, j)
}

// JournalFrom returns the journal attached to ctx, or nil.
func JournalFrom(ctx context.Context) *Journal {
	j, _ := ctx.Value(journalKey{}).(*Journal)
	return j
}

// Record appends undo to the journal attached to ctx. Without a journal the
// change is permanent.
func Record(ctx context.Context, undo func()) {
	if j := JournalFrom(ctx); j != nil {
		j.Append(undo)
	}
}
