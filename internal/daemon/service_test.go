package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/notify"
	"github.com/theirongolddev/mobius/internal/store"
)

func marchBudget() model.BudgetData {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	return model.BudgetData{
		ID:          "b1",
		TotalBudget: 1000,
		Month:       3,
		Year:        2025,
		CreatedAt:   created,
		Categories: []model.Category{
			{ID: "ess", Name: "Essenziali", Percentage: 80},
			{ID: "fun", Name: "Svago", Percentage: 20},
		},
		Expenses: []model.Expense{
			{ID: "e1", CategoryID: "ess", Amount: 100, Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local)},
		},
	}
}

func newTestService(t *testing.T, repo *store.Memory, now time.Time) *Service {
	t.Helper()
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 50}, repo, nil, log.Discard())
	s.now = func() time.Time { return now }
	return s
}

func eventTypes(events []notify.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestDiffBudgets(t *testing.T) {
	prev := marchBudget()
	curr := marchBudget()
	curr.Expenses = []model.Expense{
		{ID: "e2", CategoryID: "fun", Amount: 250, Description: "concerto", Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local)},
	}

	events := diffBudgets(prev, curr)
	got := eventTypes(events)
	want := []string{notify.EventExpenseAdded, notify.EventExpenseRemoved, notify.EventCategoryOverspent}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	if events[0].ExpenseID != "e2" || events[0].CategoryName != "Svago" {
		t.Fatalf("added event = %+v", events[0])
	}
	if events[2].CategoryID != "fun" || events[2].Amount != 50 {
		t.Fatalf("overspent event = %+v", events[2])
	}
}

func TestDiffBudgets_NoChange(t *testing.T) {
	if events := diffBudgets(marchBudget(), marchBudget()); len(events) != 0 {
		t.Fatalf("unexpected events %v", eventTypes(events))
	}
}

func TestDiffBudgets_StillOverspentIsSilent(t *testing.T) {
	prev := marchBudget()
	prev.Expenses = append(prev.Expenses, model.Expense{ID: "big", CategoryID: "fun", Amount: 300, Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)})
	curr := prev
	curr.Expenses = append(append([]model.Expense(nil), prev.Expenses...),
		model.Expense{ID: "more", CategoryID: "fun", Amount: 10, Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.Local)})

	got := eventTypes(diffBudgets(prev, curr))
	if len(got) != 1 || got[0] != notify.EventExpenseAdded {
		t.Fatalf("events = %v, want only expense_added", got)
	}
}

func TestDiffBudgets_PeriodChange(t *testing.T) {
	curr := marchBudget()
	curr.Month = 4
	events := diffBudgets(marchBudget(), curr)
	if len(events) != 1 || events[0].Type != notify.EventRollover || events[0].Period != "2025-04" {
		t.Fatalf("events = %+v", events)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, store.NewMemory(), nil, log.Discard())

	s.publishEvent(notify.Event{Type: notify.EventExpenseAdded})
	s.publishEvent(notify.Event{Type: notify.EventExpenseAdded})
	s.publishEvent(notify.Event{Type: notify.EventExpenseAdded})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	s := newTestService(t, repo, time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local))

	s.pollOnce(ctx)
	if st := s.snapshotStatus(); st.PollCount != 1 || st.EventCount != 0 || st.LastError != "" {
		t.Fatalf("empty repo status = %+v", st)
	}

	if err := repo.Save(ctx, marchBudget()); err != nil {
		t.Fatal(err)
	}
	s.pollOnce(ctx)

	b := marchBudget()
	b.Expenses = append(b.Expenses, model.Expense{ID: "e2", CategoryID: "ess", Amount: 40, Date: time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local)})
	if err := repo.Save(ctx, b); err != nil {
		t.Fatal(err)
	}
	s.pollOnce(ctx)

	st := s.snapshotStatus()
	if st.Summary.TotalSpent != 140 || st.Summary.Period != "2025-03" || st.Summary.Remaining != 860 {
		t.Fatalf("summary = %+v", st.Summary)
	}
	if len(st.Categories) != 2 || st.Categories[0].TotalSpent != 140 {
		t.Fatalf("categories = %+v", st.Categories)
	}

	s.mu.RLock()
	got := eventTypes(s.events)
	s.mu.RUnlock()
	if len(got) != 2 || got[0] != notify.EventSnapshot || got[1] != notify.EventExpenseAdded {
		t.Fatalf("events = %v", got)
	}
}

func TestCheckRollover(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	if err := repo.Save(ctx, marchBudget()); err != nil {
		t.Fatal(err)
	}
	s := newTestService(t, repo, time.Date(2025, 4, 1, 9, 0, 0, 0, time.Local))

	s.checkRollover(ctx)

	b, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if b.Month != 4 || len(b.Expenses) != 0 {
		t.Fatalf("budget not reset: month=%d expenses=%d", b.Month, len(b.Expenses))
	}
	history, _ := repo.LoadHistory(ctx)
	if len(history) != 1 || history[0].Key() != "2025-03" {
		t.Fatalf("history = %+v", history)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 1 || s.events[0].Type != notify.EventRollover || s.events[0].Amount != 900 {
		t.Fatalf("events = %+v", s.events)
	}
	if s.snapshot.Period != "2025-04" {
		t.Fatalf("snapshot period = %s, want 2025-04", s.snapshot.Period)
	}
}

// laggingRepo serves a fixed snapshot on Load, like a read that started
// before a concurrent write.
type laggingRepo struct {
	*store.Memory
	snap model.BudgetData
}

func (r laggingRepo) Load(context.Context) (model.BudgetData, error) {
	return r.snap, nil
}

func TestPollOnce_IgnoresSnapshotOlderThanRollover(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	if err := mem.Save(ctx, marchBudget()); err != nil {
		t.Fatal(err)
	}
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 50}, laggingRepo{Memory: mem, snap: marchBudget()}, nil, log.Discard())
	s.now = func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.Local) }

	s.checkRollover(ctx)
	s.pollOnce(ctx)

	st := s.snapshotStatus()
	if st.Summary.Period != "2025-04" {
		t.Fatalf("period = %s, want 2025-04", st.Summary.Period)
	}
	if st.PollCount != 1 {
		t.Fatalf("PollCount = %d, want 1", st.PollCount)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if got := eventTypes(s.events); len(got) != 1 || got[0] != notify.EventRollover {
		t.Fatalf("events = %v, want a single rollover", got)
	}
}

func TestHandlers(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	_ = repo.Save(ctx, marchBudget())
	_ = repo.AppendOrReplaceRecord(ctx, model.MonthlyRecord{Year: 2025, Month: 2, TotalBudget: 1000, TotalSpent: 800, TotalRemaining: 200})

	s := newTestService(t, repo, time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local))
	s.pollOnce(ctx)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %v %v", resp, err)
	}
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	_ = resp.Body.Close()
	if st.Summary.TotalSpent != 100 || st.PollCount != 1 {
		t.Fatalf("status = %+v", st)
	}

	resp, err = http.Get(srv.URL + "/v1/history")
	if err != nil {
		t.Fatal(err)
	}
	var h model.HistoricalData
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	_ = resp.Body.Close()
	if len(h.MonthlyRecords) != 1 || h.TotalSavedAllTime != 200 {
		t.Fatalf("history = %+v", h)
	}
}
