// Package store implements budget.Repository on SQLite, MongoDB, Redis
// and in memory.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

const (
	dayLayout  = "2006-01-02"
	timeLayout = time.RFC3339Nano
)

// SQLite is the default on-disk repository.
type SQLite struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLite opens or creates the database at dbPath and migrates it.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening budget db: %w", err)
	}
	return &SQLite{db: db, logger: log.For(log.ComponentStorage).With(log.FieldBackend, "sqlite")}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Load reads the active snapshot.
func (s *SQLite) Load(ctx context.Context) (model.BudgetData, error) {
	var b model.BudgetData
	var createdAt string
	var lastReset sql.NullString

	err := s.db.QueryRowContext(ctx, `SELECT id, total_budget, month, year, created_at, last_reset_date
		FROM budget WHERE slot = 1`).Scan(&b.ID, &b.TotalBudget, &b.Month, &b.Year, &createdAt, &lastReset)
	if err == sql.ErrNoRows {
		return model.BudgetData{}, budget.ErrNoBudget
	}
	if err != nil {
		return model.BudgetData{}, fmt.Errorf("reading budget: %w", err)
	}
	b.CreatedAt = parseTime(createdAt)
	if lastReset.Valid && lastReset.String != "" {
		t := parseTime(lastReset.String)
		b.LastResetDate = &t
	}

	if b.Categories, err = s.loadCategories(ctx); err != nil {
		return model.BudgetData{}, err
	}
	if b.Expenses, err = s.loadExpenses(ctx); err != nil {
		return model.BudgetData{}, err
	}
	return b, nil
}

func (s *SQLite) loadCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, percentage, color, icon, limit_amount
		FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cats := []model.Category{}
	for rows.Next() {
		var c model.Category
		var limit sql.NullFloat64
		if err := rows.Scan(&c.ID, &c.Name, &c.Percentage, &c.Color, &c.Icon, &limit); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		if limit.Valid {
			v := limit.Float64
			c.Limit = &v
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *SQLite) loadExpenses(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category_id, amount, description, date, created_at
		FROM expenses ORDER BY date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("reading expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	expenses := []model.Expense{}
	for rows.Next() {
		var e model.Expense
		var date, createdAt string
		if err := rows.Scan(&e.ID, &e.CategoryID, &e.Amount, &e.Description, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		// A malformed stored date leaves Date zero; calculators skip it.
		if d, err := budget.ParseDate(date); err == nil {
			e.Date = d
		} else {
			s.logger.Warn("stored expense has malformed date", log.FieldExpenseID, e.ID, "date", date)
		}
		e.CreatedAt = parseTime(createdAt)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Save replaces the active snapshot.
func (s *SQLite) Save(ctx context.Context, b model.BudgetData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var lastReset any
	if b.LastResetDate != nil {
		lastReset = b.LastResetDate.UTC().Format(timeLayout)
	}
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO budget
		(slot, id, total_budget, month, year, created_at, last_reset_date, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.TotalBudget, b.Month, b.Year, formatTime(b.CreatedAt), lastReset,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("writing budget: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM categories"); err != nil {
		return fmt.Errorf("clearing categories: %w", err)
	}
	for i, c := range b.Categories {
		var limit any
		if c.Limit != nil {
			limit = *c.Limit
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO categories
			(id, position, name, percentage, color, icon, limit_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, c.Name, c.Percentage, c.Color, c.Icon, limit,
		)
		if err != nil {
			return fmt.Errorf("writing category %s: %w", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses"); err != nil {
		return fmt.Errorf("clearing expenses: %w", err)
	}
	for _, e := range b.Expenses {
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.Format(dayLayout)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO expenses
			(id, category_id, amount, description, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.CategoryID, e.Amount, e.Description, date, formatTime(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("writing expense %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// LoadHistory reads every archived month, oldest first.
func (s *SQLite) LoadHistory(ctx context.Context) ([]model.MonthlyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT period, id, year, month, total_budget, total_spent,
		total_remaining, reset_date, expense_count
		FROM monthly_records ORDER BY year, month`)
	if err != nil {
		return nil, fmt.Errorf("reading monthly records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.MonthlyRecord
	idx := make(map[string]int)
	for rows.Next() {
		var r model.MonthlyRecord
		var period, resetDate string
		err := rows.Scan(&period, &r.ID, &r.Year, &r.Month, &r.TotalBudget, &r.TotalSpent,
			&r.TotalRemaining, &resetDate, &r.ExpenseCount)
		if err != nil {
			return nil, fmt.Errorf("scanning monthly record: %w", err)
		}
		r.ResetDate = parseTime(resetDate)
		idx[period] = len(records)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	balRows, err := s.db.QueryContext(ctx, `SELECT period, category_id, category_name, budget_allocated,
		total_spent, remaining_balance, color, icon, percentage
		FROM category_balances ORDER BY period, position`)
	if err != nil {
		return nil, fmt.Errorf("reading category balances: %w", err)
	}
	defer func() { _ = balRows.Close() }()

	for balRows.Next() {
		var period string
		var cb model.CategoryBalance
		err := balRows.Scan(&period, &cb.CategoryID, &cb.CategoryName, &cb.BudgetAllocated,
			&cb.TotalSpent, &cb.RemainingBalance, &cb.Color, &cb.Icon, &cb.Percentage)
		if err != nil {
			return nil, fmt.Errorf("scanning category balance: %w", err)
		}
		if i, ok := idx[period]; ok {
			records[i].CategoryBalances = append(records[i].CategoryBalances, cb)
		}
	}
	return records, balRows.Err()
}

// AppendOrReplaceRecord stores rec, replacing the record for the same month.
func (s *SQLite) AppendOrReplaceRecord(ctx context.Context, rec model.MonthlyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	period := rec.Key()
	if _, err := tx.ExecContext(ctx, "DELETE FROM category_balances WHERE period = ?", period); err != nil {
		return fmt.Errorf("clearing balances for %s: %w", period, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM monthly_records WHERE period = ?", period); err != nil {
		return fmt.Errorf("clearing record for %s: %w", period, err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO monthly_records
		(period, id, year, month, total_budget, total_spent, total_remaining, reset_date, expense_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		period, rec.ID, rec.Year, rec.Month, rec.TotalBudget, rec.TotalSpent,
		rec.TotalRemaining, formatTime(rec.ResetDate), rec.ExpenseCount,
	)
	if err != nil {
		return fmt.Errorf("writing record for %s: %w", period, err)
	}

	for i, cb := range rec.CategoryBalances {
		_, err = tx.ExecContext(ctx, `INSERT INTO category_balances
			(period, position, category_id, category_name, budget_allocated, total_spent,
			 remaining_balance, color, icon, percentage)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			period, i, cb.CategoryID, cb.CategoryName, cb.BudgetAllocated, cb.TotalSpent,
			cb.RemainingBalance, cb.Color, cb.Icon, cb.Percentage,
		)
		if err != nil {
			return fmt.Errorf("writing balance %s/%s: %w", period, cb.CategoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("archived month", log.FieldPeriod, period)
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.Local()
}
