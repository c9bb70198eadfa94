package model

import (
	"fmt"
	"time"
)

// Category is a named share of the monthly budget.
type Category struct {
	ID         string   `json:"id" bson:"id"`
	Name       string   `json:"name" bson:"name"`
	Percentage float64  `json:"percentage" bson:"percentage"`
	Color      string   `json:"color,omitempty" bson:"color,omitempty"`
	Icon       string   `json:"icon,omitempty" bson:"icon,omitempty"`
	Limit      *float64 `json:"limit,omitempty" bson:"limit,omitempty"` // overrides the percentage allocation
}

// Expense is a single recorded spend against a category.
// Date is a calendar day at local midnight; the zero value means the
// stored date could not be parsed.
type Expense struct {
	ID          string    `json:"id" bson:"id"`
	Amount      float64   `json:"amount" bson:"amount"`
	CategoryID  string    `json:"categoryId" bson:"categoryId"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Date        time.Time `json:"date" bson:"date"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Valid reports whether the expense carries the fields the calculators need.
func (e Expense) Valid() bool {
	return e.ID != "" && e.CategoryID != "" && e.Amount != 0
}

// BudgetData is the active month's snapshot.
type BudgetData struct {
	ID            string     `json:"id" bson:"id"`
	TotalBudget   float64    `json:"totalBudget" bson:"totalBudget"`
	Categories    []Category `json:"categories" bson:"categories"`
	Expenses      []Expense  `json:"expenses" bson:"expenses"`
	Month         int        `json:"month" bson:"month"`
	Year          int        `json:"year" bson:"year"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	LastResetDate *time.Time `json:"lastResetDate,omitempty" bson:"lastResetDate,omitempty"`
}

// Category returns the category with the given ID.
func (b BudgetData) Category(id string) (Category, bool) {
	for _, c := range b.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategorySpending is the derived spending view for one category.
type CategorySpending struct {
	CategoryID      string             `json:"categoryId"`
	CategoryName    string             `json:"categoryName"`
	TotalSpent      float64            `json:"totalSpent"`
	BudgetAllocated float64            `json:"budgetAllocated"`
	Limit           float64            `json:"limit"`
	Remaining       float64            `json:"remaining"`
	IsOverspent     bool               `json:"isOverspent"`
	OverspentAmount float64            `json:"overspentAmount"`
	DailySpending   map[string]float64 `json:"dailySpending"` // keyed by 2006-01-02
	Expenses        []Expense          `json:"expenses"`
}

// SpendingAnalytics holds the aggregate view across all categories.
type SpendingAnalytics struct {
	TotalSpent          float64 `json:"totalSpent"`
	TotalBudget         float64 `json:"totalBudget"`
	TotalLimit          float64 `json:"totalLimit"`
	CategoriesOverspent int     `json:"categoriesOverspent"`
	DailyAverage        float64 `json:"dailyAverage"`
	WeeklyTrend         float64 `json:"weeklyTrend"` // percent change vs the previous week
	MonthlyProjection   float64 `json:"monthlyProjection"`
}

// CategoryBalance is a category's outcome frozen inside a MonthlyRecord.
type CategoryBalance struct {
	CategoryID       string  `json:"categoryId" bson:"categoryId"`
	CategoryName     string  `json:"categoryName" bson:"categoryName"`
	BudgetAllocated  float64 `json:"budgetAllocated" bson:"budgetAllocated"`
	TotalSpent       float64 `json:"totalSpent" bson:"totalSpent"`
	RemainingBalance float64 `json:"remainingBalance" bson:"remainingBalance"`
	Color            string  `json:"color,omitempty" bson:"color,omitempty"`
	Icon             string  `json:"icon,omitempty" bson:"icon,omitempty"`
	Percentage       float64 `json:"percentage" bson:"percentage"`
}

// MonthlyRecord is the archived outcome of one month.
type MonthlyRecord struct {
	ID               string            `json:"id" bson:"recordId"`
	Month            int               `json:"month" bson:"month"`
	Year             int               `json:"year" bson:"year"`
	TotalBudget      float64           `json:"totalBudget" bson:"totalBudget"`
	TotalSpent       float64           `json:"totalSpent" bson:"totalSpent"`
	TotalRemaining   float64           `json:"totalRemaining" bson:"totalRemaining"`
	CategoryBalances []CategoryBalance `json:"categoryBalances" bson:"categoryBalances"`
	ResetDate        time.Time         `json:"resetDate" bson:"resetDate"`
	ExpenseCount     int               `json:"expenseCount" bson:"expenseCount"`
}

// Key identifies the record's period. Two records with the same key
// describe the same month and must not coexist.
func (r MonthlyRecord) Key() string {
	return PeriodKey(r.Year, r.Month)
}

// Before orders records ascending by year, then month.
func (r MonthlyRecord) Before(o MonthlyRecord) bool {
	if r.Year != o.Year {
		return r.Year < o.Year
	}
	return r.Month < o.Month
}

// PeriodKey formats a year/month pair as "2006-01".
func PeriodKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// HistoricalData aggregates every archived month.
type HistoricalData struct {
	MonthlyRecords        []MonthlyRecord `json:"monthlyRecords"`
	TotalSavedAllTime     float64         `json:"totalSavedAllTime"`
	TotalOverspentAllTime float64         `json:"totalOverspentAllTime"`
	BestSavingMonth       *MonthlyRecord  `json:"bestSavingMonth"`
	WorstOverspentMonth   *MonthlyRecord  `json:"worstOverspentMonth"`
	AverageMonthlyBalance float64         `json:"averageMonthlyBalance"`
	LastUpdated           time.Time       `json:"lastUpdated"`
}
