package budget

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/mobius/internal/model"
)

func TestComputeAnalytics_DailyAverageUsesFixedDivisor(t *testing.T) {
	now := mustDate(t, "2025-05-20").Add(15 * time.Hour)
	var expenses []model.Expense
	for i := 0; i < 30; i++ {
		day := Day(now).AddDate(0, 0, -(i % 10))
		expenses = append(expenses, expense(fmt.Sprint(i), "a", 10, day))
	}

	a := ComputeAnalytics(cats(100), expenses, 1000, now)

	if a.TotalSpent != 300 {
		t.Fatalf("TotalSpent = %.2f, want 300", a.TotalSpent)
	}
	if a.DailyAverage != 10 {
		t.Fatalf("DailyAverage = %.2f, want 10", a.DailyAverage)
	}
}

func TestComputeAnalytics_DailyAverageWindow(t *testing.T) {
	now := mustDate(t, "2025-05-31")
	expenses := []model.Expense{
		expense("in-first-day", "a", 30, now.AddDate(0, 0, -29)),
		expense("today", "a", 30, now),
		expense("too-old", "a", 300, now.AddDate(0, 0, -30)),
	}

	a := ComputeAnalytics(cats(100), expenses, 1000, now)

	if a.DailyAverage != 2 {
		t.Fatalf("DailyAverage = %.2f, want 2", a.DailyAverage)
	}
	if a.TotalSpent != 360 {
		t.Fatalf("TotalSpent = %.2f, want 360", a.TotalSpent)
	}
}

func TestComputeAnalytics_WeeklyTrend(t *testing.T) {
	now := mustDate(t, "2025-05-20")
	tests := []struct {
		name     string
		thisWeek []float64 // days ago 0..6
		lastWeek []float64 // days ago 7..13
		want     float64
	}{
		{"no previous week", []float64{50}, nil, 0},
		{"growth", []float64{100, 50}, []float64{100}, 50},
		{"decline", []float64{25}, []float64{50, 50}, -75},
		{"flat", []float64{40}, []float64{40}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var expenses []model.Expense
			for i, a := range tt.thisWeek {
				expenses = append(expenses, expense(fmt.Sprint("t", i), "a", a, now.AddDate(0, 0, -i)))
			}
			for i, a := range tt.lastWeek {
				expenses = append(expenses, expense(fmt.Sprint("l", i), "a", a, now.AddDate(0, 0, -7-i)))
			}

			a := ComputeAnalytics(cats(100), expenses, 1000, now)
			if math.Abs(a.WeeklyTrend-tt.want) > 1e-9 {
				t.Fatalf("WeeklyTrend = %.2f, want %.2f", a.WeeklyTrend, tt.want)
			}
		})
	}
}

func TestWeeklyTrend_ZeroPreviousWeek(t *testing.T) {
	got := WeeklyTrend(50, 0)
	if got != 0 || math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("WeeklyTrend(50, 0) = %v, want 0", got)
	}
}

func TestMonthlyProjection_UsesCalendarMonthLength(t *testing.T) {
	tests := []struct {
		now  string
		want float64
	}{
		{"2024-02-10", 290}, // leap year
		{"2023-02-10", 280},
		{"2025-04-10", 300},
		{"2025-01-10", 310},
		{"2025-12-31", 100},
	}
	for _, tt := range tests {
		got := MonthlyProjection(100, mustDate(t, tt.now))
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("MonthlyProjection(100, %s) = %.2f, want %.2f", tt.now, got, tt.want)
		}
	}
}

func TestComputeAnalytics_TotalsAndOverspentCount(t *testing.T) {
	now := mustDate(t, "2025-05-15")
	limit := 50.0
	categories := []model.Category{
		{ID: "ess", Percentage: 50},
		{ID: "life", Percentage: 30, Limit: &limit},
		{ID: "sav", Percentage: 20},
	}
	expenses := []model.Expense{
		expense("1", "ess", 400, now),
		expense("2", "life", 80, now),
		expense("3", "sav", 250, now),
	}

	a := ComputeAnalytics(categories, expenses, 1000, now)

	if a.TotalSpent != 730 {
		t.Fatalf("TotalSpent = %.2f, want 730", a.TotalSpent)
	}
	if a.TotalBudget != 1000 {
		t.Fatalf("TotalBudget = %.2f, want 1000", a.TotalBudget)
	}
	if a.TotalLimit != 750 {
		t.Fatalf("TotalLimit = %.2f, want 750 (500 + 50 + 200)", a.TotalLimit)
	}
	if a.CategoriesOverspent != 2 {
		t.Fatalf("CategoriesOverspent = %d, want 2", a.CategoriesOverspent)
	}
	if want := 730.0 / 15 * 31; math.Abs(a.MonthlyProjection-want) > 1e-9 {
		t.Fatalf("MonthlyProjection = %.2f, want %.2f", a.MonthlyProjection, want)
	}
}

func TestComputeAnalytics_DoesNotMutateInputs(t *testing.T) {
	now := mustDate(t, "2025-05-15")
	categories := cats(60, 40)
	expenses := []model.Expense{expense("1", "a", 10, now)}

	_ = ComputeAnalytics(categories, expenses, 500, now)

	if categories[0].Percentage != 60 || expenses[0].Amount != 10 {
		t.Fatal("ComputeAnalytics modified its inputs")
	}
}
