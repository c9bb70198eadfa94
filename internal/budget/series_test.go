package budget

import (
	"testing"

	"github.com/theirongolddev/mobius/internal/model"
)

func TestDailySeries_ZeroFillsRange(t *testing.T) {
	since := mustDate(t, "2025-03-01")
	until := mustDate(t, "2025-03-05")
	expenses := []model.Expense{
		expense("1", "a", 10, mustDate(t, "2025-03-02")),
		expense("2", "a", 5, mustDate(t, "2025-03-02")),
		expense("3", "a", 7, mustDate(t, "2025-03-05")),
		expense("4", "a", 99, mustDate(t, "2025-03-06")),
	}

	days := DailySeries(expenses, since, until)

	if len(days) != 5 {
		t.Fatalf("len(days) = %d, want 5", len(days))
	}
	want := []float64{0, 15, 0, 0, 7}
	for i, d := range days {
		if d.Amount != want[i] {
			t.Fatalf("day %s amount = %.2f, want %.2f", DayKey(d.Date), d.Amount, want[i])
		}
	}
	if days[1].Count != 2 {
		t.Fatalf("2025-03-02 count = %d, want 2", days[1].Count)
	}
	if !days[0].Date.Equal(since) {
		t.Fatalf("first day = %v, want %v", days[0].Date, since)
	}
}

func TestExpensesInRange_InclusiveAndSorted(t *testing.T) {
	expenses := []model.Expense{
		expense("late", "a", 1, mustDate(t, "2025-03-31")),
		expense("early", "a", 1, mustDate(t, "2025-03-01")),
		expense("outside", "a", 1, mustDate(t, "2025-04-01")),
		expense("", "a", 1, mustDate(t, "2025-03-10")),
	}

	got := ExpensesInRange(expenses, mustDate(t, "2025-03-01"), mustDate(t, "2025-03-31"))

	if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
		t.Fatalf("ExpensesInRange = %+v, want [early late]", got)
	}
}

func TestGroupByDate(t *testing.T) {
	day := mustDate(t, "2025-03-10")
	groups := GroupByDate([]model.Expense{
		expense("1", "a", 1, day),
		expense("2", "b", 2, day),
		expense("3", "a", 3, day.AddDate(0, 0, 1)),
	})
	if len(groups["2025-03-10"]) != 2 || len(groups["2025-03-11"]) != 1 {
		t.Fatalf("GroupByDate = %v", groups)
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(mustDate(t, "2024-02-17"))
	if DayKey(first) != "2024-02-01" || DayKey(last) != "2024-02-29" {
		t.Fatalf("MonthBounds = %s..%s, want 2024-02-01..2024-02-29", DayKey(first), DayKey(last))
	}
}
