package budget

import (
	"sort"
	"time"

	"github.com/theirongolddev/mobius/internal/model"
)

// DailyTotal is the spend of one calendar day.
type DailyTotal struct {
	Date   time.Time
	Amount float64
	Count  int
}

// ExpensesInRange returns the valid expenses dated within [since, until],
// both days inclusive, sorted oldest first.
func ExpensesInRange(expenses []model.Expense, since, until time.Time) []model.Expense {
	start, end := Day(since), Day(until)
	var out []model.Expense
	for _, e := range expenses {
		if !e.Valid() || e.Date.IsZero() {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// GroupByDate buckets valid expenses by their "2006-01-02" day key.
func GroupByDate(expenses []model.Expense) map[string][]model.Expense {
	groups := make(map[string][]model.Expense)
	for _, e := range expenses {
		if !e.Valid() || e.Date.IsZero() {
			continue
		}
		key := DayKey(e.Date)
		groups[key] = append(groups[key], e)
	}
	return groups
}

// DailySeries totals spend per day over [since, until]. Every day in the
// range is present so charts show gaps as zeros. Oldest day first.
func DailySeries(expenses []model.Expense, since, until time.Time) []DailyTotal {
	byDay := make(map[string]*DailyTotal)

	day, end := Day(since), Day(until)
	for !day.After(end) {
		byDay[DayKey(day)] = &DailyTotal{Date: day}
		day = day.AddDate(0, 0, 1)
	}

	for _, e := range ExpensesInRange(expenses, since, until) {
		dt, ok := byDay[DayKey(e.Date)]
		if !ok {
			continue
		}
		dt.Amount += SafeAmount(e.Amount)
		dt.Count++
	}

	out := make([]DailyTotal, 0, len(byDay))
	for _, dt := range byDay {
		out = append(out, *dt)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// MonthBounds returns the first and last calendar day of t's month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	t = t.Local()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
	last := time.Date(t.Year(), t.Month(), DaysInMonth(t.Year(), t.Month()), 0, 0, 0, 0, time.Local)
	return first, last
}
