package services

import (
	"fmt"

	"bilancio/internal/core"
)

const (
	WindowDay   WindowKind = "day"
	WindowMonth WindowKind = "month"
	WindowYear  WindowKind = "year"
)

type (
	WindowKind string

	// Window is the period a spending report covers: exactly one of a
	// specific day, a specific year+month, or a specific year.
	Window struct {
		Kind  WindowKind
		Date  core.Date // set for day windows
		Year  int       // set for month and year windows
		Month int       // set for month windows, 1-12
	}

	// Totals carries the aggregated figures for a window or category.
	Totals struct {
		Income  core.Money
		Expense core.Money
		Net     core.Money
	}

	// SpendingReport is the aggregation engine's output. ByCategory has an
	// entry for every known category, including those with no activity in
	// the window; uncategorized transactions count toward Totals only.
	SpendingReport struct {
		Window     string // resolved window identifier
		Kind       WindowKind
		Totals     Totals
		ByCategory map[string]Totals
	}
)

// DayWindow covers a single calendar day.
func DayWindow(d core.Date) Window {
	return Window{Kind: WindowDay, Date: d}
}

// MonthWindow covers a specific year and month.
func MonthWindow(year, month int) Window {
	return Window{Kind: WindowMonth, Year: year, Month: month}
}

// YearWindow covers a full calendar year.
func YearWindow(year int) Window {
	return Window{Kind: WindowYear, Year: year}
}

// ResolveWindow turns optional day/month/year selectors into a concrete
// window, defaulting missing pieces from today. The caller supplies today so
// the engines stay clock-free: day selects a day window (year and month
// defaulted), month selects a month window (year defaulted), year alone
// selects a year window, and nothing selects today as a day window.
func ResolveWindow(day, month, year int, today core.Date) Window {
	switch {
	case day > 0:
		y := year
		if y == 0 {
			y = today.Year()
		}
		m := month
		if m == 0 {
			m = today.Month()
		}
		return DayWindow(core.NewDate(y, m, day))
	case month > 0:
		y := year
		if y == 0 {
			y = today.Year()
		}
		return MonthWindow(y, month)
	case year > 0:
		return YearWindow(year)
	default:
		return DayWindow(today)
	}
}

// Contains reports whether a transaction date falls inside the window.
func (w Window) Contains(d core.Date) bool {
	switch w.Kind {
	case WindowDay:
		return d.Equal(w.Date.Time)
	case WindowMonth:
		return d.Year() == w.Year && d.Month() == w.Month
	case WindowYear:
		return d.Year() == w.Year
	default:
		return false
	}
}

// Resolved returns the concrete period identifier: "2023-01-15" for a day,
// "2023-01" for a month, "2023" for a year.
func (w Window) Resolved() string {
	switch w.Kind {
	case WindowDay:
		return w.Date.String()
	case WindowMonth:
		return fmt.Sprintf("%04d-%02d", w.Year, w.Month)
	default:
		return fmt.Sprintf("%04d", w.Year)
	}
}

// Reporter is the spending aggregation engine. Like the projector it works
// on a borrowed snapshot and performs pure reads.
type Reporter struct {
	snap core.Snapshot
}

// NewReporter creates a reporter over a store snapshot.
func NewReporter(snap core.Snapshot) *Reporter {
	return &Reporter{snap: snap}
}

// Aggregate buckets transactions whose literal occurrence date falls inside
// the window. Recurring transactions are not expanded into virtual
// occurrences here; only their stored date row counts. That asymmetry with
// the projection engine is inherited behavior, see DESIGN.md.
func (r *Reporter) Aggregate(w Window) SpendingReport {
	report := SpendingReport{
		Window:     w.Resolved(),
		Kind:       w.Kind,
		ByCategory: make(map[string]Totals, len(r.snap.Categories)),
	}

	names := make(map[int64]string, len(r.snap.Categories))
	for _, c := range r.snap.Categories {
		names[c.ID] = c.Name
		report.ByCategory[c.Name] = Totals{}
	}

	for _, t := range r.snap.Transactions {
		if !w.Contains(t.OccurredOn) {
			continue
		}
		switch t.Kind {
		case core.Income:
			report.Totals.Income.Cents += t.Amount.Cents
		case core.Expense:
			report.Totals.Expense.Cents += t.Amount.Cents
		}
		name, ok := names[t.CategoryID]
		if !ok {
			continue
		}
		ct := report.ByCategory[name]
		switch t.Kind {
		case core.Income:
			ct.Income.Cents += t.Amount.Cents
		case core.Expense:
			ct.Expense.Cents += t.Amount.Cents
		}
		ct.Net = ct.Income.Sub(ct.Expense)
		report.ByCategory[name] = ct
	}

	report.Totals.Net = report.Totals.Income.Sub(report.Totals.Expense)
	return report
}
