// Package export writes budget reports as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/model"
)

func amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func writeRows(cw *csv.Writer, rows [][]string) error {
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteMonthlyCSV writes an archived month: a summary block followed by the
// per-category balances.
func WriteMonthlyCSV(w io.Writer, rec model.MonthlyRecord) error {
	cw := csv.NewWriter(w)

	header := [][]string{
		{"Monthly Budget Report"},
		{"Period", rec.Key()},
		{"Archived", rec.ResetDate.Format(time.RFC3339)},
		{},
		{"SUMMARY"},
		{"Total Budget", amount(rec.TotalBudget)},
		{"Total Spent", amount(rec.TotalSpent)},
		{"Total Remaining", amount(rec.TotalRemaining)},
		{"Expenses", strconv.Itoa(rec.ExpenseCount)},
		{},
		{"CATEGORY BALANCES"},
		{"Category", "Percentage", "Allocated", "Spent", "Remaining"},
	}
	if err := writeRows(cw, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, cb := range rec.CategoryBalances {
		row := []string{
			cb.CategoryName,
			percent(cb.Percentage),
			amount(cb.BudgetAllocated),
			amount(cb.TotalSpent),
			amount(cb.RemainingBalance),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing balance %s: %w", cb.CategoryID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCurrentCSV writes the live month: analytics, per-category spending
// and every expense in date order.
func WriteCurrentCSV(w io.Writer, b model.BudgetData, now time.Time) error {
	cw := csv.NewWriter(w)

	a := budget.ComputeAnalytics(b.Categories, b.Expenses, b.TotalBudget, now)
	header := [][]string{
		{"Current Budget Report"},
		{"Period", model.PeriodKey(b.Year, b.Month)},
		{"Generated", now.Format(time.RFC3339)},
		{},
		{"SUMMARY"},
		{"Total Budget", amount(a.TotalBudget)},
		{"Total Spent", amount(a.TotalSpent)},
		{"Total Limit", amount(a.TotalLimit)},
		{"Categories Overspent", strconv.Itoa(a.CategoriesOverspent)},
		{"Daily Average", amount(a.DailyAverage)},
		{"Weekly Trend", percent(a.WeeklyTrend)},
		{"Monthly Projection", amount(a.MonthlyProjection)},
		{},
		{"CATEGORIES"},
		{"Category", "Percentage", "Limit", "Spent", "Remaining", "Overspent"},
	}
	if err := writeRows(cw, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	spending := budget.ComputeAllSpending(b.Categories, b.Expenses, b.TotalBudget)
	for i, s := range spending {
		row := []string{
			s.CategoryName,
			percent(b.Categories[i].Percentage),
			amount(s.Limit),
			amount(s.TotalSpent),
			amount(s.Remaining),
			amount(s.OverspentAmount),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing category %s: %w", s.CategoryID, err)
		}
	}

	if err := writeRows(cw, [][]string{{}, {"EXPENSES"}, {"Date", "Category", "Amount", "Description", "ID"}}); err != nil {
		return err
	}

	expenses := append([]model.Expense(nil), b.Expenses...)
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.Before(expenses[j].Date)
	})
	for _, e := range expenses {
		if !e.Valid() {
			continue
		}
		name := e.CategoryID
		if c, ok := b.Category(e.CategoryID); ok {
			name = c.Name
		}
		date := ""
		if !e.Date.IsZero() {
			date = budget.DayKey(e.Date)
		}
		row := []string{date, name, amount(budget.SafeAmount(e.Amount)), e.Description, e.ID}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing expense %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteHistoryCSV writes one row per archived month, oldest first.
func WriteHistoryCSV(w io.Writer, records []model.MonthlyRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Period", "Budget", "Spent", "Remaining", "Expenses", "Change vs previous"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		change := "N/A"
		if i > 0 && records[i-1].TotalSpent != 0 {
			prev := records[i-1].TotalSpent
			change = percent((r.TotalSpent - prev) / prev * 100)
		}
		row := []string{
			r.Key(),
			amount(r.TotalBudget),
			amount(r.TotalSpent),
			amount(r.TotalRemaining),
			strconv.Itoa(r.ExpenseCount),
			change,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %s: %w", r.Key(), err)
		}
	}

	cw.Flush()
	return cw.Error()
}
