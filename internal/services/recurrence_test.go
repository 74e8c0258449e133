package services

import (
	"testing"

	"bilancio/internal/core"
)

func txn(kind core.TransactionKind, cents int64, date core.Date, interval core.RecurrenceInterval) core.Transaction {
	return core.Transaction{
		Amount:     core.Money{Cents: cents},
		Kind:       kind,
		OccurredOn: date,
		Recurring:  interval != core.None,
		Interval:   interval,
	}
}

func TestOccurs_FirstOccurrenceAndBefore(t *testing.T) {
	anchor := core.NewDate(2023, 6, 15)

	tests := []struct {
		name string
		txn  core.Transaction
		day  core.Date
		want bool
	}{
		{
			name: "before anchor never contributes",
			txn:  txn(core.Expense, 100, anchor, core.Daily),
			day:  core.NewDate(2023, 6, 14),
			want: false,
		},
		{
			name: "anchor day contributes for one-time",
			txn:  txn(core.Expense, 100, anchor, core.None),
			day:  anchor,
			want: true,
		},
		{
			name: "anchor day contributes for recurring",
			txn:  txn(core.Income, 100, anchor, core.Monthly),
			day:  anchor,
			want: true,
		},
		{
			name: "one-time never contributes after its date",
			txn:  txn(core.Expense, 100, anchor, core.None),
			day:  core.NewDate(2023, 6, 16),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Occurs(tt.txn, tt.day); got != tt.want {
				t.Errorf("Occurs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDailyRule_OccursOn(t *testing.T) {
	anchor := core.NewDate(2023, 1, 1)
	rule := DailyRule{}

	if !rule.OccursOn(anchor, core.NewDate(2023, 1, 2)) {
		t.Error("daily should occur the day after the anchor")
	}
	if !rule.OccursOn(anchor, core.NewDate(2023, 12, 31)) {
		t.Error("daily should occur on any later day")
	}
	if rule.OccursOn(anchor, anchor) {
		t.Error("rule is only consulted after the anchor day")
	}
}

func TestWeeklyRule_OccursOn(t *testing.T) {
	anchor := core.NewDate(2023, 1, 2) // a Monday
	rule := WeeklyRule{}

	tests := []struct {
		name string
		day  core.Date
		want bool
	}{
		{"7 days later", core.NewDate(2023, 1, 9), true},
		{"14 days later", core.NewDate(2023, 1, 16), true},
		{"3 days later", core.NewDate(2023, 1, 5), false},
		{"10 days later", core.NewDate(2023, 1, 12), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.OccursOn(anchor, tt.day); got != tt.want {
				t.Errorf("OccursOn(%s) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestMonthlyRule_OccursOn(t *testing.T) {
	rule := MonthlyRule{}

	tests := []struct {
		name   string
		anchor core.Date
		day    core.Date
		want   bool
	}{
		{
			name:   "same day next month",
			anchor: core.NewDate(2023, 1, 15),
			day:    core.NewDate(2023, 2, 15),
			want:   true,
		},
		{
			name:   "jan 31 clamps to feb 28",
			anchor: core.NewDate(2023, 1, 31),
			day:    core.NewDate(2023, 2, 28),
			want:   true,
		},
		{
			name:   "jan 31 back on mar 31 after the clamp",
			anchor: core.NewDate(2023, 1, 31),
			day:    core.NewDate(2023, 3, 31),
			want:   true,
		},
		{
			name:   "jan 31 not on mar 28",
			anchor: core.NewDate(2023, 1, 31),
			day:    core.NewDate(2023, 3, 28),
			want:   false,
		},
		{
			name:   "jan 31 clamps to feb 29 in leap years",
			anchor: core.NewDate(2024, 1, 31),
			day:    core.NewDate(2024, 2, 29),
			want:   true,
		},
		{
			name:   "wrong day of month",
			anchor: core.NewDate(2023, 1, 15),
			day:    core.NewDate(2023, 2, 16),
			want:   false,
		},
		{
			name:   "crosses a year boundary",
			anchor: core.NewDate(2023, 11, 30),
			day:    core.NewDate(2024, 2, 29),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.OccursOn(tt.anchor, tt.day); got != tt.want {
				t.Errorf("OccursOn(%s, %s) = %v, want %v", tt.anchor, tt.day, got, tt.want)
			}
		})
	}
}

func TestYearlyRule_OccursOn(t *testing.T) {
	rule := YearlyRule{}

	tests := []struct {
		name   string
		anchor core.Date
		day    core.Date
		want   bool
	}{
		{
			name:   "same month and day next year",
			anchor: core.NewDate(2022, 7, 4),
			day:    core.NewDate(2023, 7, 4),
			want:   true,
		},
		{
			name:   "wrong day",
			anchor: core.NewDate(2022, 7, 4),
			day:    core.NewDate(2023, 7, 5),
			want:   false,
		},
		{
			name:   "leap anchor falls on feb 28 in non-leap year",
			anchor: core.NewDate(2020, 2, 29),
			day:    core.NewDate(2021, 2, 28),
			want:   true,
		},
		{
			name:   "leap anchor falls on feb 29 in leap year",
			anchor: core.NewDate(2020, 2, 29),
			day:    core.NewDate(2024, 2, 29),
			want:   true,
		},
		{
			name:   "leap anchor not on feb 28 in leap year",
			anchor: core.NewDate(2020, 2, 29),
			day:    core.NewDate(2024, 2, 28),
			want:   false,
		},
		{
			name:   "leap anchor not on mar 1",
			anchor: core.NewDate(2020, 2, 29),
			day:    core.NewDate(2021, 3, 1),
			want:   false,
		},
		{
			name:   "feb 28 anchor stays feb 28 in leap year",
			anchor: core.NewDate(2021, 2, 28),
			day:    core.NewDate(2024, 2, 28),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.OccursOn(tt.anchor, tt.day); got != tt.want {
				t.Errorf("OccursOn(%s, %s) = %v, want %v", tt.anchor, tt.day, got, tt.want)
			}
		})
	}
}

func TestRuleFor(t *testing.T) {
	for _, interval := range []core.RecurrenceInterval{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if _, err := RuleFor(interval); err != nil {
			t.Errorf("RuleFor(%s) unexpected error: %v", interval, err)
		}
	}
	if _, err := RuleFor("fortnightly"); err == nil {
		t.Error("RuleFor should reject unknown intervals")
	}
}
