package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/config"
	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/store"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

func testBudget(t *testing.T) model.BudgetData {
	t.Helper()
	cats := []model.Category{
		{ID: "ess", Name: "Essenziali", Percentage: 50},
		{ID: "fun", Name: "Lifestyle", Percentage: 30},
		{ID: "sav", Name: "Risparmi", Percentage: 20},
	}
	b, err := budget.NewBudget(1000, cats, time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatal(err)
	}
	b.Expenses = []model.Expense{
		{ID: "e1", Amount: 120, CategoryID: "ess", Description: "spesa", Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)},
		{ID: "e2", Amount: 40, CategoryID: "fun", Description: "cinema", Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.Local)},
	}
	return b
}

func newTestApp(t *testing.T, repo budget.Repository) App {
	t.Helper()
	cfg := config.DefaultConfig()
	return NewApp(Options{
		Repo:       repo,
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Logger:     log.Discard(),
		Now:        func() time.Time { return testNow },
	})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds the resulting message back into the app.
func run(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := a.Update(cmd())
	return next.(App)
}

func TestLoadDataCmd_NoBudget(t *testing.T) {
	msg := loadDataCmd(store.NewMemory(), log.Discard(), testNow)()
	loaded, ok := msg.(DataLoadedMsg)
	if !ok {
		t.Fatalf("got %T, want DataLoadedMsg", msg)
	}
	if !loaded.NoBudget || loaded.Err != nil {
		t.Fatalf("got %+v, want NoBudget", loaded)
	}
}

func TestLoadDataCmd_RollsOverPreviousMonth(t *testing.T) {
	repo := store.NewMemory()
	b := testBudget(t)
	b.CreatedAt = time.Date(2025, 2, 1, 9, 0, 0, 0, time.Local)
	b.Month, b.Year = 2, 2025
	if err := repo.Save(context.Background(), b); err != nil {
		t.Fatal(err)
	}

	loaded := loadDataCmd(repo, log.Discard(), testNow)().(DataLoadedMsg)
	if loaded.Err != nil {
		t.Fatal(loaded.Err)
	}
	if !loaded.RolledOver {
		t.Fatal("expected a rollover")
	}
	if len(loaded.Budget.Expenses) != 0 || loaded.Budget.Month != 3 {
		t.Fatalf("budget not reset: month=%d expenses=%d", loaded.Budget.Month, len(loaded.Budget.Expenses))
	}
	if len(loaded.History) != 1 || loaded.History[0].Key() != "2025-02" {
		t.Fatalf("history = %+v, want one 2025-02 record", loaded.History)
	}
}

func TestDataLoadedRecomputes(t *testing.T) {
	a := newTestApp(t, store.NewMemory())
	next, _ := a.Update(DataLoadedMsg{Budget: testBudget(t)})
	a = next.(App)

	if !a.loaded {
		t.Fatal("app should be loaded")
	}
	if a.analytics.TotalSpent != 160 {
		t.Errorf("TotalSpent = %v, want 160", a.analytics.TotalSpent)
	}
	if len(a.spending) != 3 {
		t.Errorf("spending rows = %d, want 3", len(a.spending))
	}
	if len(a.daily) != 10 {
		t.Errorf("daily series length = %d, want 10 (1..10 March)", len(a.daily))
	}
	if a.expenses[0].ID != "e2" {
		t.Errorf("expenses should be newest first, got %s", a.expenses[0].ID)
	}
}

func TestNoBudgetOpensSetup(t *testing.T) {
	a := newTestApp(t, store.NewMemory())
	next, _ := a.Update(DataLoadedMsg{NoBudget: true})
	a = next.(App)
	if a.setupForm == nil || !a.needSetup {
		t.Fatal("setup form should be open")
	}
}

func TestCategoryAdjustRebalancesAndSaves(t *testing.T) {
	repo := store.NewMemory()
	a := newTestApp(t, repo)
	next, _ := a.Update(DataLoadedMsg{Budget: testBudget(t)})
	a = next.(App)
	a.activeTab = tabCategories

	next, cmd := a.Update(key("]"))
	a = run(t, next.(App), cmd)

	if got := a.budget.Categories[0].Percentage; got != 55 {
		t.Fatalf("Essenziali = %v, want 55", got)
	}
	if !budget.IsAllocationValid(a.budget.Categories) {
		t.Fatalf("allocation should stay valid, total %v", budget.TotalPercentage(a.budget.Categories))
	}
	saved, err := repo.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if saved.Categories[0].Percentage != 55 {
		t.Fatalf("stored Essenziali = %v, want 55", saved.Categories[0].Percentage)
	}
	if a.busy {
		t.Fatal("busy should clear after save")
	}
}

func TestDeleteExpenseNeedsConfirmation(t *testing.T) {
	repo := store.NewMemory()
	a := newTestApp(t, repo)
	next, _ := a.Update(DataLoadedMsg{Budget: testBudget(t)})
	a = next.(App)
	a.activeTab = tabExpenses

	next, _ = a.Update(key("d"))
	a = next.(App)
	if !a.exps.confirmDelete {
		t.Fatal("d should ask for confirmation")
	}

	next, _ = a.Update(key("n"))
	a = next.(App)
	if a.exps.confirmDelete || len(a.budget.Expenses) != 2 {
		t.Fatal("n should cancel the delete")
	}

	next, _ = a.Update(key("d"))
	next, cmd := next.(App).Update(key("y"))
	a = run(t, next.(App), cmd)

	if len(a.budget.Expenses) != 1 || a.budget.Expenses[0].ID != "e1" {
		t.Fatalf("expected e2 removed, got %+v", a.budget.Expenses)
	}
	saved, _ := repo.Load(context.Background())
	if len(saved.Expenses) != 1 {
		t.Fatalf("stored expenses = %d, want 1", len(saved.Expenses))
	}
}

func TestSubmitExpense(t *testing.T) {
	repo := store.NewMemory()
	a := newTestApp(t, repo)
	next, _ := a.Update(DataLoadedMsg{Budget: testBudget(t)})
	a = next.(App)

	next, cmd := a.submitExpense(&expenseValues{Amount: "12,50", CategoryID: "sav", Description: " deposito "})
	a = run(t, next.(App), cmd)

	if len(a.budget.Expenses) != 3 {
		t.Fatalf("expenses = %d, want 3", len(a.budget.Expenses))
	}
	added := a.expenses[0]
	if added.Amount != 12.5 || added.Description != "deposito" || !added.Date.Equal(budget.Day(testNow)) {
		t.Fatalf("unexpected expense %+v", added)
	}
}

func TestSubmitExpense_RejectsBadAmount(t *testing.T) {
	a := newTestApp(t, store.NewMemory())
	next, _ := a.Update(DataLoadedMsg{Budget: testBudget(t)})
	a = next.(App)

	next, cmd := a.submitExpense(&expenseValues{Amount: "abc", CategoryID: "sav"})
	if cmd != nil {
		t.Fatal("no save should be issued")
	}
	if next.(App).notice == "" {
		t.Fatal("expected an error notice")
	}
}

func TestSetupValuesBuild(t *testing.T) {
	vals := newSetupValues("")
	vals.Suggestion = customAmount
	vals.Custom = "1800"
	vals.Preset = presetExtended

	b, err := vals.build(testNow)
	if err != nil {
		t.Fatal(err)
	}
	if b.TotalBudget != 1800 {
		t.Errorf("TotalBudget = %v, want 1800", b.TotalBudget)
	}
	if len(b.Categories) != len(model.ExtendedCategories) {
		t.Errorf("categories = %d, want %d", len(b.Categories), len(model.ExtendedCategories))
	}
	if b.Month != 3 || b.Year != 2025 {
		t.Errorf("period = %d-%d, want 2025-3", b.Year, b.Month)
	}

	vals.Custom = "0"
	if _, err := vals.build(testNow); err == nil {
		t.Error("zero budget should be rejected")
	}
}

func TestSettingsCycleThemeSavesConfig(t *testing.T) {
	a := newTestApp(t, store.NewMemory())
	next, _ := a.Update(DataLoadedMsg{Budget: testBudget(t)})
	a = next.(App)
	a.activeTab = tabSettings

	before := a.cfg.Appearance.Theme
	next, _ = a.Update(key("t"))
	a = next.(App)
	if a.cfg.Appearance.Theme == before {
		t.Fatal("theme did not change")
	}

	saved, err := config.LoadFrom(a.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Appearance.Theme != a.cfg.Appearance.Theme {
		t.Fatalf("saved theme = %q, want %q", saved.Appearance.Theme, a.cfg.Appearance.Theme)
	}
}

func TestTabKeysAndView(t *testing.T) {
	a := newTestApp(t, store.NewMemory())
	next, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.(App).Update(DataLoadedMsg{Budget: testBudget(t)})
	a = next.(App)

	for _, k := range []string{"c", "e", "h", "x", "o"} {
		next, _ = a.Update(key(k))
		a = next.(App)
		if view := a.View(); view == "" {
			t.Fatalf("empty view on tab %d", a.activeTab)
		}
	}
	if a.activeTab != tabOverview {
		t.Fatalf("activeTab = %d, want overview", a.activeTab)
	}
}
