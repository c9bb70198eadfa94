package budget

import (
	"time"

	"github.com/theirongolddev/mobius/internal/model"
)

const (
	// averageWindowDays is both the trailing window and the divisor of
	// DailyAverage. The divisor stays fixed even when fewer days of data exist.
	averageWindowDays = 30
	trendWindowDays   = 7
)

// ComputeAnalytics computes the aggregate view over all categories and
// expenses. now anchors the trailing windows and the projection.
//
// Trailing windows are counted in calendar days ending today: the 30-day
// window starts 29 days ago, "this week" covers today and the 6 days
// before, "last week" the 7 days before that. Windows have no upper bound,
// so expenses dated in the future count toward the current window.
func ComputeAnalytics(categories []model.Category, expenses []model.Expense, totalBudget float64, now time.Time) model.SpendingAnalytics {
	a := model.SpendingAnalytics{
		TotalSpent:  TotalSpent(expenses),
		TotalBudget: SafeAmount(totalBudget),
	}

	for _, c := range categories {
		cs := ComputeCategorySpending(c, expenses, totalBudget)
		a.TotalLimit += cs.Limit
		if cs.IsOverspent {
			a.CategoriesOverspent++
		}
	}

	today := Day(now)
	a.DailyAverage = sumSince(expenses, today.AddDate(0, 0, -(averageWindowDays-1))) / averageWindowDays

	thisWeekStart := today.AddDate(0, 0, -(trendWindowDays - 1))
	lastWeekStart := thisWeekStart.AddDate(0, 0, -trendWindowDays)
	thisWeek := sumSince(expenses, thisWeekStart)
	lastWeek := sumBetween(expenses, lastWeekStart, thisWeekStart)
	a.WeeklyTrend = WeeklyTrend(thisWeek, lastWeek)

	a.MonthlyProjection = MonthlyProjection(a.TotalSpent, now)
	return a
}

// WeeklyTrend is the percent change from lastWeek to thisWeek, or 0 when
// there is nothing to compare against.
func WeeklyTrend(thisWeek, lastWeek float64) float64 {
	if lastWeek <= 0 {
		return 0
	}
	return (thisWeek - lastWeek) / lastWeek * 100
}

// MonthlyProjection extrapolates spend-to-date linearly to the end of
// now's month.
func MonthlyProjection(spent float64, now time.Time) float64 {
	now = now.Local()
	daysPassed := now.Day()
	if daysPassed <= 0 {
		return 0
	}
	return spent / float64(daysPassed) * float64(DaysInMonth(now.Year(), now.Month()))
}

func sumSince(expenses []model.Expense, start time.Time) float64 {
	var total float64
	for _, e := range expenses {
		if !e.Valid() || e.Date.IsZero() {
			continue
		}
		if !e.Date.Before(start) {
			total += SafeAmount(e.Amount)
		}
	}
	return total
}

// sumBetween sums expenses dated in [start, end).
func sumBetween(expenses []model.Expense, start, end time.Time) float64 {
	var total float64
	for _, e := range expenses {
		if !e.Valid() || e.Date.IsZero() {
			continue
		}
		if !e.Date.Before(start) && e.Date.Before(end) {
			total += SafeAmount(e.Amount)
		}
	}
	return total
}
