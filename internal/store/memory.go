package store

import (
	"context"
	"sync"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/model"
)

// Memory keeps everything in process. Used by tests and `--storage memory`.
type Memory struct {
	mu      sync.RWMutex
	budget  *model.BudgetData
	records []model.MonthlyRecord
}

// NewMemory returns an empty repository.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (model.BudgetData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.budget == nil {
		return model.BudgetData{}, budget.ErrNoBudget
	}
	return budget.CloneBudget(*m.budget), nil
}

func (m *Memory) Save(_ context.Context, b model.BudgetData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := budget.CloneBudget(b)
	m.budget = &c
	return nil
}

func (m *Memory) LoadHistory(context.Context) ([]model.MonthlyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyRecords(m.records), nil
}

func (m *Memory) AppendOrReplaceRecord(_ context.Context, rec model.MonthlyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = budget.UpsertRecord(m.records, rec)
	return nil
}

func (m *Memory) Close() error { return nil }

func copyRecords(records []model.MonthlyRecord) []model.MonthlyRecord {
	out := make([]model.MonthlyRecord, len(records))
	for i, r := range records {
		r.CategoryBalances = append([]model.CategoryBalance(nil), r.CategoryBalances...)
		out[i] = r
	}
	return out
}
