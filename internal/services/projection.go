package services

import (
	"sort"

	"bilancio/internal/core"
)

// Projector is the balance projection engine. It reads a snapshot of the
// entity store and never mutates it, so a single instance can serve any
// number of queries over the same snapshot.
type Projector struct {
	snap core.Snapshot
}

// NewProjector creates a projector over a store snapshot.
func NewProjector(snap core.Snapshot) *Projector {
	return &Projector{snap: snap}
}

// ProjectBalance simulates the balance day by day up to target and returns
// the result. It anchors on the latest checkpoint at or before target; with
// no usable checkpoint it starts from zero at the earliest transaction date
// (or at target itself when the store is empty).
//
// Transactions falling exactly on the anchor-checkpoint date are applied on
// top of the checkpoint value. The checkpoint records the balance at the end
// of its date, so this can double-count that day; the behavior is kept
// deliberately, see DESIGN.md.
func (p *Projector) ProjectBalance(target core.Date) core.Money {
	var balance int64
	cursor := target

	if anchor, ok := p.NearestCheckpoint(target); ok {
		balance = anchor.Amount.Cents
		cursor = anchor.Date
	} else {
		for _, t := range p.snap.Transactions {
			if t.OccurredOn.Before(cursor.Time) {
				cursor = t.OccurredOn
			}
		}
	}

	for !cursor.After(target.Time) {
		for _, t := range p.snap.Transactions {
			if t.OccurredOn.After(cursor.Time) {
				continue
			}
			if Occurs(t, cursor) {
				balance += t.Signed().Cents
			}
		}
		cursor = cursor.AddDays(1)
	}

	return core.Money{Cents: balance}
}

// NearestCheckpoint returns the checkpoint with the latest date at or before
// target. The checkpoint slice is sorted ascending by date, so a binary
// search finds the first checkpoint after target and the answer sits just
// before it.
func (p *Projector) NearestCheckpoint(target core.Date) (core.BalanceCheckpoint, bool) {
	cps := p.snap.Checkpoints
	i := sort.Search(len(cps), func(i int) bool {
		return cps[i].Date.After(target.Time)
	})
	if i == 0 {
		return core.BalanceCheckpoint{}, false
	}
	return cps[i-1], true
}
