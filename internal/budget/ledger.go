package budget

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/mobius/internal/model"
)

// Ledger errors.
var (
	ErrInvalidAllocation = errors.New("category percentages must add up to 100")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrExpenseNotFound   = errors.New("expense not found")
)

// CategoriesFromPresets turns onboarding templates into categories with
// fresh IDs.
func CategoriesFromPresets(presets []model.CategoryPreset) []model.Category {
	out := make([]model.Category, 0, len(presets))
	for _, p := range presets {
		out = append(out, model.Category{
			ID:         uuid.NewString(),
			Name:       p.Name,
			Percentage: p.Percentage,
			Color:      p.Color,
			Icon:       p.Icon,
		})
	}
	return out
}

// NewBudget builds the first snapshot at the end of onboarding.
func NewBudget(totalBudget float64, categories []model.Category, now time.Time) (model.BudgetData, error) {
	if err := ValidateBudgetAmount(totalBudget); err != nil {
		return model.BudgetData{}, err
	}
	if !IsAllocationValid(categories) {
		return model.BudgetData{}, fmt.Errorf("%w: total is %.0f%%", ErrInvalidAllocation, TotalPercentage(categories))
	}

	cats := make([]model.Category, len(categories))
	copy(cats, categories)
	for i := range cats {
		if cats[i].ID == "" {
			cats[i].ID = uuid.NewString()
		}
	}

	local := now.Local()
	return model.BudgetData{
		ID:          uuid.NewString(),
		TotalBudget: totalBudget,
		Categories:  cats,
		Expenses:    []model.Expense{},
		Month:       int(local.Month()),
		Year:        local.Year(),
		CreatedAt:   now,
	}, nil
}

// FindCategory resolves a category by ID or, case-insensitively, by name.
func FindCategory(b model.BudgetData, ref string) (int, model.Category, error) {
	ref = strings.TrimSpace(ref)
	for i, c := range b.Categories {
		if c.ID == ref {
			return i, c, nil
		}
	}
	for i, c := range b.Categories {
		if strings.EqualFold(c.Name, ref) {
			return i, c, nil
		}
	}
	return -1, model.Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, ref)
}

// AddExpense validates e and appends it with a new ID. A zero Date means
// today.
func AddExpense(b model.BudgetData, e model.Expense, now time.Time) (model.BudgetData, model.Expense, error) {
	if err := checkExpense(b, e); err != nil {
		return b, model.Expense{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = now
	if e.Date.IsZero() {
		e.Date = Day(now)
	} else {
		e.Date = Day(e.Date)
	}

	out := CloneBudget(b)
	out.Expenses = append(out.Expenses, e)
	return out, e, nil
}

// UpdateExpense replaces the expense with e.ID, keeping its CreatedAt.
func UpdateExpense(b model.BudgetData, e model.Expense) (model.BudgetData, error) {
	if err := checkExpense(b, e); err != nil {
		return b, err
	}
	out := CloneBudget(b)
	for i := range out.Expenses {
		if out.Expenses[i].ID != e.ID {
			continue
		}
		e.CreatedAt = out.Expenses[i].CreatedAt
		if e.Date.IsZero() {
			e.Date = out.Expenses[i].Date
		} else {
			e.Date = Day(e.Date)
		}
		out.Expenses[i] = e
		return out, nil
	}
	return b, fmt.Errorf("%w: %s", ErrExpenseNotFound, e.ID)
}

// RemoveExpense drops the expense with the given ID.
func RemoveExpense(b model.BudgetData, id string) (model.BudgetData, error) {
	out := CloneBudget(b)
	for i := range out.Expenses {
		if out.Expenses[i].ID == id {
			out.Expenses = append(out.Expenses[:i], out.Expenses[i+1:]...)
			return out, nil
		}
	}
	return b, fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
}

// FindExpense looks an expense up by ID or unique ID prefix.
func FindExpense(b model.BudgetData, ref string) (model.Expense, error) {
	var match *model.Expense
	for i := range b.Expenses {
		e := &b.Expenses[i]
		if e.ID == ref {
			return *e, nil
		}
		if ref != "" && strings.HasPrefix(e.ID, ref) {
			if match != nil {
				return model.Expense{}, fmt.Errorf("expense prefix %q is ambiguous", ref)
			}
			match = e
		}
	}
	if match == nil {
		return model.Expense{}, fmt.Errorf("%w: %s", ErrExpenseNotFound, ref)
	}
	return *match, nil
}

// SetCategoryPercentage clamps pct and rebalances the other categories.
func SetCategoryPercentage(b model.BudgetData, ref string, pct float64) (model.BudgetData, error) {
	idx, _, err := FindCategory(b, ref)
	if err != nil {
		return b, err
	}
	out := CloneBudget(b)
	out.Categories = Rebalance(b.Categories, idx, ClampPercentage(pct))
	return out, nil
}

// SetCategoryLimit sets or, with nil, clears a category's explicit limit.
func SetCategoryLimit(b model.BudgetData, ref string, limit *float64) (model.BudgetData, error) {
	idx, _, err := FindCategory(b, ref)
	if err != nil {
		return b, err
	}
	if limit != nil && (math.IsNaN(*limit) || math.IsInf(*limit, 0) || *limit < 0) {
		return b, ErrInvalidAmount
	}
	out := CloneBudget(b)
	if limit == nil {
		out.Categories[idx].Limit = nil
	} else {
		v := *limit
		out.Categories[idx].Limit = &v
	}
	return out, nil
}

func checkExpense(b model.BudgetData, e model.Expense) error {
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, ok := b.Category(e.CategoryID); !ok {
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, e.CategoryID)
	}
	return nil
}

// CloneBudget deep-copies b so the copy shares no slices or pointers with it.
func CloneBudget(b model.BudgetData) model.BudgetData {
	out := b
	out.Categories = append([]model.Category(nil), b.Categories...)
	for i, c := range out.Categories {
		if c.Limit != nil {
			v := *c.Limit
			out.Categories[i].Limit = &v
		}
	}
	out.Expenses = append([]model.Expense(nil), b.Expenses...)
	if b.LastResetDate != nil {
		t := *b.LastResetDate
		out.LastResetDate = &t
	}
	return out
}
