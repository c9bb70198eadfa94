package budget

import (
	"context"
	"errors"

	"github.com/theirongolddev/mobius/internal/model"
)

// ErrNoBudget is returned by Repository.Load before onboarding has saved
// a snapshot.
var ErrNoBudget = errors.New("no budget configured")

// Repository persists the active snapshot and the archived months.
type Repository interface {
	Load(ctx context.Context) (model.BudgetData, error)
	Save(ctx context.Context, b model.BudgetData) error
	// LoadHistory returns archived months ascending by period.
	LoadHistory(ctx context.Context) ([]model.MonthlyRecord, error)
	// AppendOrReplaceRecord stores rec, replacing any record for the same month.
	AppendOrReplaceRecord(ctx context.Context, rec model.MonthlyRecord) error
	Close() error
}
