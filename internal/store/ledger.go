package store

import (
	"context"

	"bilancio/internal/core"
)

// MemoryLedger adapts the in-memory store to the ledger port the HTTP
// handlers consume. It backs the "memory" data backend: no durability, no
// event publication, everything else identical.
type MemoryLedger struct {
	store *Store
}

func NewMemoryLedger(store *Store) *MemoryLedger {
	return &MemoryLedger{store: store}
}

func (l *MemoryLedger) RecordTransaction(_ context.Context, t core.Transaction, categoryName string) (core.Transaction, error) {
	return l.store.AddTransaction(t, categoryName)
}

func (l *MemoryLedger) RemoveTransaction(_ context.Context, id int64) (bool, error) {
	return l.store.DeleteTransaction(id), nil
}

func (l *MemoryLedger) CreateCategory(_ context.Context, name string, limit *core.Money) (core.BudgetCategory, error) {
	return l.store.AddCategory(name, limit)
}

func (l *MemoryLedger) RemoveCategory(_ context.Context, name string) (bool, error) {
	return l.store.DeleteCategory(name), nil
}

func (l *MemoryLedger) WriteCheckpoint(_ context.Context, date core.Date, amount core.Money) error {
	l.store.SetCheckpoint(date, amount)
	return nil
}

func (l *MemoryLedger) Snapshot(_ context.Context) (core.Snapshot, error) {
	return l.store.Snapshot(), nil
}
