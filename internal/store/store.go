// Package store holds the in-memory entity store: transactions, budget
// categories, and balance checkpoints. Cross-references use integer IDs
// instead of pointers, so snapshots are plain value copies with no shared
// structure. The engines in internal/services read snapshots and never touch
// the store directly.
package store

import (
	"sort"
	"sync"

	"bilancio/internal/core"
)

// Store owns the mutable collections. All mutation goes through its methods,
// which maintain the invariants the engines rely on: unique transaction IDs,
// bidirectional category membership, and a checkpoint list sorted ascending
// with at most one entry per date.
type Store struct {
	mu sync.Mutex

	nextTxnID int64
	nextCatID int64

	transactions []core.Transaction
	categories   []core.BudgetCategory
	checkpoints  []core.BalanceCheckpoint
}

// TransactionFilter selects transactions for bulk deletion. Nil fields match
// everything.
type TransactionFilter struct {
	Amount   *core.Money
	Kind     *core.TransactionKind
	From     *core.Date
	To       *core.Date
	Category *string
}

// New creates an empty store.
func New() *Store {
	return &Store{nextTxnID: 1, nextCatID: 1}
}

// AddCategory creates a category if no category with that name exists yet.
// Names are case-sensitive and not normalized. Returns the existing or new
// category.
func (s *Store) AddCategory(name string, limit *core.Money) (core.BudgetCategory, error) {
	cat := core.BudgetCategory{Name: name, MonthlyLimit: limit}
	if err := cat.Validate(); err != nil {
		return core.BudgetCategory{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.findCategory(name); existing != nil {
		return *existing, nil
	}
	cat.ID = s.nextCatID
	s.nextCatID++
	s.categories = append(s.categories, cat)
	return cat, nil
}

// DeleteCategory removes the named category and unlinks its member
// transactions, which stay in the store as uncategorized. Returns false if
// no such category exists.
func (s *Store) DeleteCategory(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.categories {
		if s.categories[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	id := s.categories[idx].ID
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	for i := range s.transactions {
		if s.transactions[i].CategoryID == id {
			s.transactions[i].CategoryID = 0
		}
	}
	return true
}

// AddTransaction validates and stores a transaction, assigns its ID, and
// links category membership. An empty categoryName leaves the transaction
// uncategorized; a new name creates the category on the fly.
func (s *Store) AddTransaction(t core.Transaction, categoryName string) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextTxnID
	s.nextTxnID++
	if !t.Recurring {
		t.Interval = core.None
	}

	if categoryName != "" {
		cat := s.findCategory(categoryName)
		if cat == nil {
			s.categories = append(s.categories, core.BudgetCategory{
				ID:   s.nextCatID,
				Name: categoryName,
			})
			s.nextCatID++
			cat = &s.categories[len(s.categories)-1]
		}
		t.CategoryID = cat.ID
		cat.TransactionIDs = append(cat.TransactionIDs, t.ID)
	} else {
		t.CategoryID = 0
	}

	s.transactions = append(s.transactions, t)
	return t, nil
}

// DeleteTransaction removes a transaction by ID and unlinks it from its
// category. Returns false if the ID is unknown.
func (s *Store) DeleteTransaction(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID != id {
			continue
		}
		s.unlinkMembership(map[int64]struct{}{id: {}})
		s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
		return true
	}
	return false
}

// DeleteTransactionsMatching removes every transaction matching all set
// filter fields and returns how many were removed.
func (s *Store) DeleteTransactionsMatching(f TransactionFilter) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var catID int64 = -1
	if f.Category != nil {
		if cat := s.findCategory(*f.Category); cat != nil {
			catID = cat.ID
		}
	}

	doomed := make(map[int64]struct{})
	kept := s.transactions[:0]
	for _, t := range s.transactions {
		if s.matches(t, f, catID) {
			doomed[t.ID] = struct{}{}
			continue
		}
		kept = append(kept, t)
	}
	s.transactions = kept
	s.unlinkMembership(doomed)
	return len(doomed)
}

// SetCheckpoint records the balance at the end of a date. An existing
// checkpoint on the same date is replaced, and the list stays sorted.
func (s *Store) SetCheckpoint(date core.Date, amount core.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.checkpoints[:0]
	for _, cp := range s.checkpoints {
		if !cp.Date.Equal(date.Time) {
			kept = append(kept, cp)
		}
	}
	s.checkpoints = append(kept, core.BalanceCheckpoint{Date: date, Amount: amount})
	sort.Slice(s.checkpoints, func(i, j int) bool {
		return s.checkpoints[i].Date.Before(s.checkpoints[j].Date.Time)
	})
}

// Snapshot returns a deep copy of the current collections for the engines.
// The copy shares nothing with the store, so callers can keep mutating the
// store while a query runs over the snapshot.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := core.Snapshot{
		Transactions: append([]core.Transaction(nil), s.transactions...),
		Checkpoints:  append([]core.BalanceCheckpoint(nil), s.checkpoints...),
		Categories:   make([]core.BudgetCategory, len(s.categories)),
	}
	for i, c := range s.categories {
		c.TransactionIDs = append([]int64(nil), c.TransactionIDs...)
		if c.MonthlyLimit != nil {
			limit := *c.MonthlyLimit
			c.MonthlyLimit = &limit
		}
		snap.Categories[i] = c
	}
	return snap
}

// ReplaceAll swaps the store contents for a loaded snapshot, recomputing the
// ID counters so later additions stay unique.
func (s *Store) ReplaceAll(snap core.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append([]core.Transaction(nil), snap.Transactions...)
	s.categories = append([]core.BudgetCategory(nil), snap.Categories...)
	s.checkpoints = append([]core.BalanceCheckpoint(nil), snap.Checkpoints...)
	sort.Slice(s.checkpoints, func(i, j int) bool {
		return s.checkpoints[i].Date.Before(s.checkpoints[j].Date.Time)
	})

	s.nextTxnID = 1
	for _, t := range s.transactions {
		if t.ID >= s.nextTxnID {
			s.nextTxnID = t.ID + 1
		}
	}
	s.nextCatID = 1
	for _, c := range s.categories {
		if c.ID >= s.nextCatID {
			s.nextCatID = c.ID + 1
		}
	}
}

// findCategory must be called with the lock held.
func (s *Store) findCategory(name string) *core.BudgetCategory {
	for i := range s.categories {
		if s.categories[i].Name == name {
			return &s.categories[i]
		}
	}
	return nil
}

// unlinkMembership drops the given transaction IDs from every category's
// member list. Must be called with the lock held.
func (s *Store) unlinkMembership(ids map[int64]struct{}) {
	if len(ids) == 0 {
		return
	}
	for i := range s.categories {
		members := s.categories[i].TransactionIDs[:0]
		for _, id := range s.categories[i].TransactionIDs {
			if _, gone := ids[id]; !gone {
				members = append(members, id)
			}
		}
		s.categories[i].TransactionIDs = members
	}
}

func (s *Store) matches(t core.Transaction, f TransactionFilter, catID int64) bool {
	if f.Amount != nil && t.Amount.Cents != f.Amount.Cents {
		return false
	}
	if f.Kind != nil && t.Kind != *f.Kind {
		return false
	}
	if f.From != nil && t.OccurredOn.Before(f.From.Time) {
		return false
	}
	if f.To != nil && t.OccurredOn.After(f.To.Time) {
		return false
	}
	if f.Category != nil && t.CategoryID != catID {
		return false
	}
	return true
}
