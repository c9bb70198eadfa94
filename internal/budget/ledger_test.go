package budget

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/mobius/internal/model"
)

func TestNewBudget(t *testing.T) {
	now := mustDate(t, "2025-03-15")

	b, err := NewBudget(2000, CategoriesFromPresets(model.DefaultCategories), now)
	if err != nil {
		t.Fatalf("NewBudget: %v", err)
	}
	if b.ID == "" || b.Month != 3 || b.Year != 2025 || !b.CreatedAt.Equal(now) {
		t.Fatalf("NewBudget = %+v", b)
	}
	for _, c := range b.Categories {
		if c.ID == "" {
			t.Fatalf("category %q has no id", c.Name)
		}
	}

	if _, err := NewBudget(2000, cats(50, 30), now); !errors.Is(err, ErrInvalidAllocation) {
		t.Fatalf("80%% allocation err = %v, want ErrInvalidAllocation", err)
	}
	if _, err := NewBudget(0, cats(100), now); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("zero budget err = %v, want ErrInvalidBudget", err)
	}
	if _, err := NewBudget(MaxBudget+1, cats(100), now); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("oversized budget err = %v, want ErrInvalidBudget", err)
	}
}

func TestExtendedPresetsAreAValidAllocation(t *testing.T) {
	if !IsAllocationValid(CategoriesFromPresets(model.ExtendedCategories)) {
		t.Fatal("extended presets do not add up to 100")
	}
}

func TestAddUpdateRemoveExpense(t *testing.T) {
	now := mustDate(t, "2025-03-15")
	b, err := NewBudget(1000, cats(60, 40), now)
	if err != nil {
		t.Fatalf("NewBudget: %v", err)
	}

	b2, e, err := AddExpense(b, model.Expense{Amount: 12.5, CategoryID: "a", Description: "lunch"}, now.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if e.ID == "" || !e.Date.Equal(now) {
		t.Fatalf("added expense = %+v, want id and today's date", e)
	}
	if len(b.Expenses) != 0 || len(b2.Expenses) != 1 {
		t.Fatalf("expenses before/after = %d/%d, want 0/1", len(b.Expenses), len(b2.Expenses))
	}

	e.Amount = 20
	e.CategoryID = "b"
	b3, err := UpdateExpense(b2, e)
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if got := b3.Expenses[0]; got.Amount != 20 || got.CategoryID != "b" || !got.CreatedAt.Equal(e.CreatedAt) {
		t.Fatalf("updated expense = %+v", got)
	}
	if b2.Expenses[0].Amount != 12.5 {
		t.Fatal("UpdateExpense modified the previous snapshot")
	}

	found, err := FindExpense(b3, e.ID[:8])
	if err != nil || found.ID != e.ID {
		t.Fatalf("FindExpense by prefix = %+v, %v", found, err)
	}

	b4, err := RemoveExpense(b3, e.ID)
	if err != nil {
		t.Fatalf("RemoveExpense: %v", err)
	}
	if len(b4.Expenses) != 0 || len(b3.Expenses) != 1 {
		t.Fatalf("expenses after remove = %d (previous %d)", len(b4.Expenses), len(b3.Expenses))
	}
	if _, err := RemoveExpense(b4, e.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("second remove err = %v, want ErrExpenseNotFound", err)
	}
}

func TestAddExpense_Rejects(t *testing.T) {
	now := mustDate(t, "2025-03-15")
	b, _ := NewBudget(1000, cats(100), now)

	if _, _, err := AddExpense(b, model.Expense{Amount: -1, CategoryID: "a"}, now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount err = %v, want ErrInvalidAmount", err)
	}
	if _, _, err := AddExpense(b, model.Expense{Amount: 5, CategoryID: "zzz"}, now); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("unknown category err = %v, want ErrCategoryNotFound", err)
	}
}

func TestSetCategoryPercentage(t *testing.T) {
	b, _ := NewBudget(2000, []model.Category{
		{ID: "ess", Name: "Essential", Percentage: 50},
		{ID: "life", Name: "Lifestyle", Percentage: 30},
		{ID: "sav", Name: "Savings", Percentage: 20},
	}, mustDate(t, "2025-03-15"))

	got, err := SetCategoryPercentage(b, "essential", 70)
	if err != nil {
		t.Fatalf("SetCategoryPercentage: %v", err)
	}
	want := []float64{70, 18, 12}
	for i, p := range percentages(got.Categories) {
		if p != want[i] {
			t.Fatalf("percentages = %v, want %v", percentages(got.Categories), want)
		}
	}

	got, err = SetCategoryPercentage(b, "sav", 250)
	if err != nil {
		t.Fatalf("SetCategoryPercentage: %v", err)
	}
	if got.Categories[2].Percentage != 100 {
		t.Fatalf("clamped percentage = %.0f, want 100", got.Categories[2].Percentage)
	}

	if _, err := SetCategoryPercentage(b, "nope", 10); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("unknown category err = %v, want ErrCategoryNotFound", err)
	}
}

func TestSetCategoryLimit(t *testing.T) {
	b, _ := NewBudget(1000, cats(100), mustDate(t, "2025-03-15"))
	limit := 250.0

	withLimit, err := SetCategoryLimit(b, "A", &limit)
	if err != nil {
		t.Fatalf("SetCategoryLimit: %v", err)
	}
	limit = 1
	if withLimit.Categories[0].Limit == nil || *withLimit.Categories[0].Limit != 250 {
		t.Fatalf("Limit = %v, want 250", withLimit.Categories[0].Limit)
	}
	if b.Categories[0].Limit != nil {
		t.Fatal("SetCategoryLimit modified the previous snapshot")
	}

	cleared, err := SetCategoryLimit(withLimit, "a", nil)
	if err != nil {
		t.Fatalf("clear limit: %v", err)
	}
	if cleared.Categories[0].Limit != nil {
		t.Fatal("limit not cleared")
	}

	for _, bad := range []float64{math.Inf(1), math.NaN(), -1} {
		v := bad
		got, err := SetCategoryLimit(b, "A", &v)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("SetCategoryLimit(%v) err = %v, want ErrInvalidAmount", bad, err)
		}
		if got.Categories[0].Limit != nil {
			t.Errorf("SetCategoryLimit(%v) stored a limit", bad)
		}
	}
}
