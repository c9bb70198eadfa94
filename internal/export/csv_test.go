package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/mobius/internal/model"
)

func readAll(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	r := csv.NewReader(buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	return rows
}

func find(rows [][]string, first string) []string {
	for _, r := range rows {
		if len(r) > 0 && r[0] == first {
			return r
		}
	}
	return nil
}

func TestWriteMonthlyCSV(t *testing.T) {
	rec := model.MonthlyRecord{
		Year: 2025, Month: 2,
		TotalBudget: 1000, TotalSpent: 1100.5, TotalRemaining: -100.5,
		ResetDate:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		ExpenseCount: 3,
		CategoryBalances: []model.CategoryBalance{
			{CategoryID: "a", CategoryName: "Casa, affitto", Percentage: 60, BudgetAllocated: 600, TotalSpent: 700.5, RemainingBalance: -100.5},
			{CategoryID: "b", CategoryName: "Svago", Percentage: 40, BudgetAllocated: 400, TotalSpent: 400},
		},
	}

	var buf bytes.Buffer
	if err := WriteMonthlyCSV(&buf, rec); err != nil {
		t.Fatalf("WriteMonthlyCSV: %v", err)
	}
	rows := readAll(t, &buf)

	if r := find(rows, "Period"); r == nil || r[1] != "2025-02" {
		t.Fatalf("Period row = %v", r)
	}
	if r := find(rows, "Total Remaining"); r == nil || r[1] != "-100.50" {
		t.Fatalf("Total Remaining row = %v", r)
	}
	if r := find(rows, "Casa, affitto"); r == nil || r[1] != "60.0%" || r[4] != "-100.50" {
		t.Fatalf("balance row = %v", r)
	}
}

func TestWriteCurrentCSV(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	b := model.BudgetData{
		TotalBudget: 1000, Month: 3, Year: 2025,
		Categories: []model.Category{
			{ID: "a", Name: "Essenziali", Percentage: 60},
			{ID: "b", Name: "Svago", Percentage: 40},
		},
		Expenses: []model.Expense{
			{ID: "e2", CategoryID: "b", Amount: 20, Date: time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local)},
			{ID: "e1", CategoryID: "a", Amount: 15.5, Description: "pane", Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local)},
			{ID: "", CategoryID: "a", Amount: 99},
		},
	}

	var buf bytes.Buffer
	if err := WriteCurrentCSV(&buf, b, now); err != nil {
		t.Fatalf("WriteCurrentCSV: %v", err)
	}
	out := buf.String()
	rows := readAll(t, &buf)

	if r := find(rows, "Total Spent"); r == nil || r[1] != "35.50" {
		t.Fatalf("Total Spent row = %v", r)
	}
	if r := find(rows, "Svago"); r == nil || r[2] != "400.00" || r[3] != "20.00" {
		t.Fatalf("Svago row = %v", r)
	}
	first := strings.Index(out, "2025-03-02")
	second := strings.Index(out, "2025-03-09")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expenses not in date order:\n%s", out)
	}
	if strings.Contains(out, "99.00") {
		t.Fatal("invalid expense exported")
	}
}

func TestWriteHistoryCSV(t *testing.T) {
	records := []model.MonthlyRecord{
		{Year: 2025, Month: 1, TotalSpent: 800},
		{Year: 2025, Month: 2, TotalSpent: 1000},
	}
	var buf bytes.Buffer
	if err := WriteHistoryCSV(&buf, records); err != nil {
		t.Fatalf("WriteHistoryCSV: %v", err)
	}
	rows := readAll(t, &buf)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1][5] != "N/A" || rows[2][5] != "25.0%" {
		t.Fatalf("change column = %q, %q", rows[1][5], rows[2][5])
	}
}
