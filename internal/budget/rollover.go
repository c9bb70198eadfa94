package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"
)

// ShouldReset reports whether the snapshot belongs to an earlier month
// than now. The reference point is LastResetDate, or CreatedAt for a
// budget that has never been reset. A budget with neither never resets.
func ShouldReset(b model.BudgetData, now time.Time) bool {
	ref := b.CreatedAt
	if b.LastResetDate != nil {
		ref = *b.LastResetDate
	}
	if ref.IsZero() {
		return false
	}
	ref, now = ref.Local(), now.Local()
	return ref.Month() != now.Month() || ref.Year() != now.Year()
}

// PerformReset archives the snapshot's month into a MonthlyRecord and
// returns the snapshot for now's month with its expenses cleared.
// Categories and the total budget carry over unchanged.
func PerformReset(b model.BudgetData, now time.Time) (model.BudgetData, model.MonthlyRecord) {
	balances := make([]model.CategoryBalance, 0, len(b.Categories))
	for _, c := range b.Categories {
		cs := ComputeCategorySpending(c, b.Expenses, b.TotalBudget)
		balances = append(balances, model.CategoryBalance{
			CategoryID:       c.ID,
			CategoryName:     c.Name,
			BudgetAllocated:  cs.Limit,
			TotalSpent:       cs.TotalSpent,
			RemainingBalance: cs.Remaining,
			Color:            c.Color,
			Icon:             c.Icon,
			Percentage:       c.Percentage,
		})
	}

	spent := TotalSpent(b.Expenses)
	rec := model.MonthlyRecord{
		ID:               uuid.NewString(),
		Month:            b.Month,
		Year:             b.Year,
		TotalBudget:      b.TotalBudget,
		TotalSpent:       spent,
		TotalRemaining:   b.TotalBudget - spent,
		CategoryBalances: balances,
		ResetDate:        now,
		ExpenseCount:     len(b.Expenses),
	}

	reset := b
	reset.Categories = append([]model.Category(nil), b.Categories...)
	reset.Expenses = []model.Expense{}
	local := now.Local()
	reset.Month = int(local.Month())
	reset.Year = local.Year()
	stamp := now
	reset.LastResetDate = &stamp

	return reset, rec
}

// RolloverResult describes what a rollover check did.
type RolloverResult struct {
	Reset   bool
	Budget  model.BudgetData
	Record  model.MonthlyRecord
	History model.HistoricalData
	// ArchiveErr is set when the month could not be archived. The reset
	// still happened.
	ArchiveErr error
}

// Rollover runs the monthly reset against a Repository.
type Rollover struct {
	repo   Repository
	logger *log.Logger
}

// NewRollover creates a rollover service. A nil logger uses the default.
func NewRollover(repo Repository, logger *log.Logger) *Rollover {
	if logger == nil {
		logger = log.For(log.ComponentBudget)
	}
	return &Rollover{repo: repo, logger: logger}
}

// Check loads the snapshot and resets it when its month has passed.
// Archival failures are logged and reported in the result; only failing
// to load or save the snapshot is an error.
func (r *Rollover) Check(ctx context.Context, now time.Time) (RolloverResult, error) {
	b, err := r.repo.Load(ctx)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("loading budget: %w", err)
	}
	if !ShouldReset(b, now) {
		return RolloverResult{Budget: b}, nil
	}

	reset, rec := PerformReset(b, now)
	res := RolloverResult{Reset: true, Budget: reset, Record: rec}

	history, err := r.archive(ctx, rec, now)
	if err != nil {
		res.ArchiveErr = err
		r.logger.ErrorContext(ctx, "archiving month failed, continuing with reset",
			rolloverFields(rec).WithError(err).Args()...)
	} else {
		res.History = history
	}

	if err := r.repo.Save(ctx, reset); err != nil {
		return res, fmt.Errorf("saving reset budget: %w", err)
	}

	r.logger.InfoContext(ctx, "monthly reset completed",
		append(rolloverFields(rec).Args(), "total_spent", rec.TotalSpent, "total_remaining", rec.TotalRemaining)...)
	return res, nil
}

func rolloverFields(rec model.MonthlyRecord) log.Fields {
	return log.NewFields().WithOperation("rollover").WithPeriod(rec.Year, rec.Month, rec.Key())
}

func (r *Rollover) archive(ctx context.Context, rec model.MonthlyRecord, now time.Time) (model.HistoricalData, error) {
	if err := r.repo.AppendOrReplaceRecord(ctx, rec); err != nil {
		return model.HistoricalData{}, fmt.Errorf("storing monthly record: %w", err)
	}
	records, err := r.repo.LoadHistory(ctx)
	if err != nil {
		return model.HistoricalData{}, fmt.Errorf("reloading history: %w", err)
	}
	return Summarize(records, now), nil
}
