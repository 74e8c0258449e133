package services

import (
	"testing"

	"bilancio/internal/core"
)

func categorized(t core.Transaction, categoryID int64) core.Transaction {
	t.CategoryID = categoryID
	return t
}

func TestAggregate_DayTotals(t *testing.T) {
	day := core.NewDate(2023, 1, 1)
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 10000, day, core.None),
			txn(core.Expense, 5000, day, core.None),
			txn(core.Expense, 3000, day, core.None),
			txn(core.Expense, 9999, core.NewDate(2023, 1, 2), core.None), // outside window
		},
	}

	report := NewReporter(snap).Aggregate(DayWindow(day))

	if report.Window != "2023-01-01" {
		t.Errorf("Window = %q, want 2023-01-01", report.Window)
	}
	if report.Totals.Income.Cents != 10000 {
		t.Errorf("Income = %d, want 10000", report.Totals.Income.Cents)
	}
	if report.Totals.Expense.Cents != 8000 {
		t.Errorf("Expense = %d, want 8000", report.Totals.Expense.Cents)
	}
	if report.Totals.Net.Cents != 2000 {
		t.Errorf("Net = %d, want 2000", report.Totals.Net.Cents)
	}
}

func TestAggregate_EmptyCategoryStillListed(t *testing.T) {
	snap := core.Snapshot{
		Categories: []core.BudgetCategory{
			{ID: 1, Name: "Food"},
		},
	}

	report := NewReporter(snap).Aggregate(MonthWindow(2023, 1))

	totals, ok := report.ByCategory["Food"]
	if !ok {
		t.Fatal("category with no transactions missing from breakdown")
	}
	if totals.Income.Cents != 0 || totals.Expense.Cents != 0 || totals.Net.Cents != 0 {
		t.Errorf("empty category totals = %+v, want all zero", totals)
	}
}

func TestAggregate_UncategorizedCountsTowardTotalsOnly(t *testing.T) {
	day := core.NewDate(2023, 2, 10)
	snap := core.Snapshot{
		Categories: []core.BudgetCategory{
			{ID: 1, Name: "Rent", TransactionIDs: []int64{1}},
		},
		Transactions: []core.Transaction{
			categorized(txn(core.Expense, 80000, day, core.None), 1),
			txn(core.Expense, 1500, day, core.None), // no category
		},
	}

	report := NewReporter(snap).Aggregate(MonthWindow(2023, 2))

	if report.Totals.Expense.Cents != 81500 {
		t.Errorf("total expense = %d, want 81500", report.Totals.Expense.Cents)
	}
	if got := report.ByCategory["Rent"].Expense.Cents; got != 80000 {
		t.Errorf("Rent expense = %d, want 80000", got)
	}
	if len(report.ByCategory) != 1 {
		t.Errorf("breakdown has %d entries, want 1", len(report.ByCategory))
	}
}

func TestAggregate_RecurringNotExpanded(t *testing.T) {
	// The projection engine expands recurring schedules; aggregation counts
	// only the literal stored date.
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Expense, 2000, core.NewDate(2023, 1, 15), core.Monthly),
		},
	}
	r := NewReporter(snap)

	jan := r.Aggregate(MonthWindow(2023, 1))
	if jan.Totals.Expense.Cents != 2000 {
		t.Errorf("Jan expense = %d, want 2000", jan.Totals.Expense.Cents)
	}

	feb := r.Aggregate(MonthWindow(2023, 2))
	if feb.Totals.Expense.Cents != 0 {
		t.Errorf("Feb expense = %d, want 0: recurring rows must not be expanded", feb.Totals.Expense.Cents)
	}
}

func TestAggregate_YearWindow(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			txn(core.Income, 100, core.NewDate(2022, 12, 31), core.None),
			txn(core.Income, 200, core.NewDate(2023, 1, 1), core.None),
			txn(core.Income, 300, core.NewDate(2023, 12, 31), core.None),
			txn(core.Income, 400, core.NewDate(2024, 1, 1), core.None),
		},
	}

	report := NewReporter(snap).Aggregate(YearWindow(2023))

	if report.Window != "2023" {
		t.Errorf("Window = %q, want 2023", report.Window)
	}
	if report.Totals.Income.Cents != 500 {
		t.Errorf("Income = %d, want 500", report.Totals.Income.Cents)
	}
}

func TestResolveWindow(t *testing.T) {
	today := core.NewDate(2023, 8, 15)

	tests := []struct {
		name             string
		day, month, year int
		wantKind         WindowKind
		wantResolved     string
	}{
		{"nothing selects today", 0, 0, 0, WindowDay, "2023-08-15"},
		{"day defaults month and year", 3, 0, 0, WindowDay, "2023-08-03"},
		{"day with explicit month", 3, 2, 0, WindowDay, "2023-02-03"},
		{"day fully explicit", 3, 2, 2021, WindowDay, "2021-02-03"},
		{"month defaults year", 0, 5, 0, WindowMonth, "2023-05"},
		{"month with year", 0, 5, 2022, WindowMonth, "2022-05"},
		{"year alone", 0, 0, 2020, WindowYear, "2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ResolveWindow(tt.day, tt.month, tt.year, today)
			if w.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", w.Kind, tt.wantKind)
			}
			if got := w.Resolved(); got != tt.wantResolved {
				t.Errorf("Resolved() = %q, want %q", got, tt.wantResolved)
			}
		})
	}
}
