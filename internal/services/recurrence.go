// Package services hosts the two read-only engines (balance projection and
// spending aggregation), the recurrence rules they share, and the ledger
// service that orchestrates persistence and event publication.
//
// This file implements the Strategy Pattern for recurrence evaluation. Each
// interval (daily, weekly, monthly, yearly) has its own rule deciding whether
// a transaction anchored on a start date repeats on a given later day.
package services

import (
	"fmt"
	"time"

	"bilancio/internal/core"
)

// OccurrenceRule is the strategy interface for recurrence evaluation.
// OccursOn is only consulted for days strictly after the anchor date; the
// anchor day itself always counts and is handled by Occurs.
type OccurrenceRule interface {
	OccursOn(anchor, day core.Date) bool
}

// DailyRule repeats on every day after the anchor.
type DailyRule struct{}

func (DailyRule) OccursOn(anchor, day core.Date) bool {
	return day.DaysSince(anchor) > 0
}

// WeeklyRule repeats on every positive multiple of 7 days after the anchor.
type WeeklyRule struct{}

func (WeeklyRule) OccursOn(anchor, day core.Date) bool {
	days := day.DaysSince(anchor)
	return days > 0 && days%7 == 0
}

// MonthlyRule repeats once per calendar month, clamping to the last day of
// shorter months: an anchor on Jan 31 repeats on Feb 28 (or 29) and again on
// Mar 31.
type MonthlyRule struct{}

func (MonthlyRule) OccursOn(anchor, day core.Date) bool {
	months := (day.Year()-anchor.Year())*12 + (day.Month() - anchor.Month())
	if months <= 0 {
		return false
	}
	expected := addMonthsClamped(anchor, months)
	return day.Equal(expected.Time)
}

// YearlyRule repeats on the same month and day in later years. A Feb 29
// anchor falls on Feb 28 in non-leap years and on Feb 29 in leap years.
type YearlyRule struct{}

func (YearlyRule) OccursOn(anchor, day core.Date) bool {
	if day.Year() <= anchor.Year() {
		return false
	}
	if anchor.Month() == 2 && anchor.Day() == 29 {
		if isLeapYear(day.Year()) {
			return day.Month() == 2 && day.Day() == 29
		}
		return day.Month() == 2 && day.Day() == 28
	}
	return day.Month() == anchor.Month() && day.Day() == anchor.Day()
}

// occurrenceRules maps recurrence intervals to their rules.
var occurrenceRules = map[core.RecurrenceInterval]OccurrenceRule{
	core.Daily:   DailyRule{},
	core.Weekly:  WeeklyRule{},
	core.Monthly: MonthlyRule{},
	core.Yearly:  YearlyRule{},
}

// RuleFor returns the occurrence rule for an interval.
func RuleFor(interval core.RecurrenceInterval) (OccurrenceRule, error) {
	rule, ok := occurrenceRules[interval]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence interval: %s", interval)
	}
	return rule, nil
}

// Occurs reports whether transaction t contributes its effect on day. It is
// a pure function of its arguments:
//   - day before the first occurrence: never
//   - day equal to the first occurrence: always, recurring or not
//   - later days: only for recurring transactions, per the interval's rule
func Occurs(t core.Transaction, day core.Date) bool {
	if day.Before(t.OccurredOn.Time) {
		return false
	}
	if day.Equal(t.OccurredOn.Time) {
		return true
	}
	if !t.Recurring {
		return false
	}
	rule, ok := occurrenceRules[t.Interval]
	if !ok {
		return false
	}
	return rule.OccursOn(t.OccurredOn, day)
}

// addMonthsClamped advances d by the given number of months, clamping the day
// to the last day of the target month. time.AddDate would normalize Jan 31 +
// 1 month into early March, which is not what a monthly schedule means.
func addMonthsClamped(d core.Date, months int) core.Date {
	year := d.Year()
	month := d.Month() + months
	year += (month - 1) / 12
	month = (month-1)%12 + 1

	day := d.Day()
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return core.NewDate(year, month, day)
}

// lastDayOfMonth returns the number of days in the given month.
func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
