package services

import (
	"testing"

	"bilancio/internal/core"
)

func TestProjectBalance_EmptyStore(t *testing.T) {
	p := NewProjector(core.Snapshot{})

	for _, target := range []core.Date{
		core.NewDate(2020, 1, 1),
		core.NewDate(2023, 6, 15),
		core.NewDate(2050, 12, 31),
	} {
		if got := p.ProjectBalance(target); got.Cents != 0 {
			t.Errorf("ProjectBalance(%s) = %s, want 0.00", target, got)
		}
	}
}

func TestProjectBalance_CheckpointAnchored(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 10000, core.NewDate(2023, 1, 2), core.None),
			txn(core.Expense, 5000, core.NewDate(2023, 1, 3), core.None),
		},
		Checkpoints: []core.BalanceCheckpoint{
			{Date: core.NewDate(2023, 1, 1), Amount: core.Money{Cents: 100000}},
		},
	}

	got := NewProjector(snap).ProjectBalance(core.NewDate(2023, 1, 4))
	if got.Cents != 105000 {
		t.Errorf("ProjectBalance = %s, want 1050.00", got)
	}
}

func TestProjectBalance_OverlappingMonthlySchedules(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 100000, core.NewDate(2023, 1, 1), core.Monthly),
			txn(core.Expense, 50000, core.NewDate(2023, 2, 1), core.Monthly),
		},
	}

	// Jan 1000 + Feb 1000 - Feb 500 + Mar 1000 - Mar 500
	got := NewProjector(snap).ProjectBalance(core.NewDate(2023, 3, 1))
	if got.Cents != 200000 {
		t.Errorf("ProjectBalance = %s, want 2000.00", got)
	}
}

func TestProjectBalance_NoCheckpointStartsAtEarliestTransaction(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 2500, core.NewDate(2023, 3, 10), core.None),
			txn(core.Income, 1000, core.NewDate(2023, 3, 12), core.None),
		},
	}

	got := NewProjector(snap).ProjectBalance(core.NewDate(2023, 3, 15))
	if got.Cents != 3500 {
		t.Errorf("ProjectBalance = %s, want 35.00", got)
	}
}

func TestProjectBalance_CheckpointAfterTargetIgnored(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 1000, core.NewDate(2023, 1, 5), core.None),
		},
		Checkpoints: []core.BalanceCheckpoint{
			{Date: core.NewDate(2023, 6, 1), Amount: core.Money{Cents: 999900}},
		},
	}

	got := NewProjector(snap).ProjectBalance(core.NewDate(2023, 1, 10))
	if got.Cents != 1000 {
		t.Errorf("ProjectBalance = %s, want 10.00", got)
	}
}

// A transaction dated exactly on the anchor checkpoint's date is applied on
// top of the checkpoint amount. Inherited inclusion rule; see DESIGN.md.
func TestProjectBalance_AnchorDateTransactionReapplied(t *testing.T) {
	day := core.NewDate(2023, 5, 1)
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 5000, day, core.None),
		},
		Checkpoints: []core.BalanceCheckpoint{
			{Date: day, Amount: core.Money{Cents: 10000}},
		},
	}

	got := NewProjector(snap).ProjectBalance(day)
	if got.Cents != 15000 {
		t.Errorf("ProjectBalance = %s, want 150.00", got)
	}
}

func TestProjectBalance_MonotonicAdditive(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 10000, core.NewDate(2023, 1, 1), core.Weekly),
			txn(core.Expense, 2500, core.NewDate(2023, 1, 3), core.Daily),
		},
	}
	p := NewProjector(snap)

	d1 := core.NewDate(2023, 1, 10)
	d2 := core.NewDate(2023, 2, 10)

	at1 := p.ProjectBalance(d1)
	at2 := p.ProjectBalance(d2)

	// Sum the contributions on each day in (d1, d2].
	var between int64
	for day := d1.AddDays(1); !day.After(d2.Time); day = day.AddDays(1) {
		for _, tx := range snap.Transactions {
			if Occurs(tx, day) {
				between += tx.Signed().Cents
			}
		}
	}

	if at2.Cents != at1.Cents+between {
		t.Errorf("projection not additive: %d != %d + %d", at2.Cents, at1.Cents, between)
	}
}

func TestProjectBalance_Idempotent(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 100000, core.NewDate(2023, 1, 1), core.Monthly),
		},
		Checkpoints: []core.BalanceCheckpoint{
			{Date: core.NewDate(2023, 1, 15), Amount: core.Money{Cents: 50000}},
		},
	}
	p := NewProjector(snap)
	target := core.NewDate(2023, 4, 1)

	first := p.ProjectBalance(target)
	second := p.ProjectBalance(target)
	if first != second {
		t.Errorf("projection not idempotent: %s then %s", first, second)
	}
}

func TestNearestCheckpoint(t *testing.T) {
	cps := []core.BalanceCheckpoint{
		{Date: core.NewDate(2023, 1, 1), Amount: core.Money{Cents: 100}},
		{Date: core.NewDate(2023, 3, 1), Amount: core.Money{Cents: 300}},
		{Date: core.NewDate(2023, 5, 1), Amount: core.Money{Cents: 500}},
	}
	p := NewProjector(core.Snapshot{Checkpoints: cps})

	tests := []struct {
		name      string
		target    core.Date
		wantCents int64
		wantFound bool
	}{
		{"before all checkpoints", core.NewDate(2022, 12, 31), 0, false},
		{"exact match", core.NewDate(2023, 3, 1), 300, true},
		{"between checkpoints", core.NewDate(2023, 4, 15), 300, true},
		{"after all checkpoints", core.NewDate(2024, 1, 1), 500, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp, found := p.NearestCheckpoint(tt.target)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && cp.Amount.Cents != tt.wantCents {
				t.Errorf("checkpoint amount = %d, want %d", cp.Amount.Cents, tt.wantCents)
			}
		})
	}

	if _, found := NewProjector(core.Snapshot{}).NearestCheckpoint(core.NewDate(2023, 1, 1)); found {
		t.Error("empty checkpoint set should find nothing")
	}
}
