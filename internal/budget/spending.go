package budget

import (
	"math"

	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"
)

// ComputeCategorySpending derives the spending view of one category from
// the full expense list. Invalid expenses are ignored, unusable amounts
// count as 0 and expenses without a date are left out of DailySpending.
func ComputeCategorySpending(category model.Category, expenses []model.Expense, totalBudget float64) model.CategorySpending {
	cs := model.CategorySpending{
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		DailySpending: make(map[string]float64),
	}

	for _, e := range expenses {
		if !e.Valid() || e.CategoryID != category.ID {
			continue
		}
		amount := SafeAmount(e.Amount)
		cs.TotalSpent += amount
		cs.Expenses = append(cs.Expenses, e)

		if e.Date.IsZero() {
			log.For(log.ComponentBudget).Warn("skipping expense with malformed date in daily breakdown",
				log.FieldExpenseID, e.ID, log.FieldCategoryID, e.CategoryID)
			continue
		}
		cs.DailySpending[DayKey(e.Date)] += amount
	}

	cs.BudgetAllocated = SafeAmount(totalBudget) * category.Percentage / 100
	cs.Limit = EffectiveLimit(category, totalBudget)
	cs.Remaining = cs.Limit - cs.TotalSpent
	cs.IsOverspent = cs.TotalSpent > cs.Limit
	cs.OverspentAmount = math.Max(0, cs.TotalSpent-cs.Limit)
	return cs
}

// ComputeAllSpending runs ComputeCategorySpending for every category, in order.
func ComputeAllSpending(categories []model.Category, expenses []model.Expense, totalBudget float64) []model.CategorySpending {
	out := make([]model.CategorySpending, 0, len(categories))
	for _, c := range categories {
		out = append(out, ComputeCategorySpending(c, expenses, totalBudget))
	}
	return out
}

// EffectiveLimit is the category's explicit limit when set, otherwise its
// share of the total budget.
func EffectiveLimit(category model.Category, totalBudget float64) float64 {
	if category.Limit != nil {
		return *category.Limit
	}
	return SafeAmount(totalBudget) * category.Percentage / 100
}

// TotalSpent sums the amounts of all valid expenses.
func TotalSpent(expenses []model.Expense) float64 {
	var total float64
	for _, e := range expenses {
		if e.Valid() {
			total += SafeAmount(e.Amount)
		}
	}
	return total
}
