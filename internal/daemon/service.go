// Package daemon provides the long-running budget monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/notify"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr             string
	Interval         time.Duration
	EventsBuffer     int
	RolloverSchedule string // standard 5-field cron expression
	Backend          string
}

// Snapshot is a compact budget state for status/event payloads.
type Snapshot struct {
	At                  time.Time `json:"at"`
	Period              string    `json:"period"`
	TotalBudget         float64   `json:"totalBudget"`
	TotalSpent          float64   `json:"totalSpent"`
	Remaining           float64   `json:"remaining"`
	ExpenseCount        int       `json:"expenseCount"`
	CategoriesOverspent int       `json:"categoriesOverspent"`
	DailyAverage        float64   `json:"dailyAverage"`
	WeeklyTrend         float64   `json:"weeklyTrend"`
	MonthlyProjection   float64   `json:"monthlyProjection"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time                `json:"startedAt"`
	LastPollAt      time.Time                `json:"lastPollAt"`
	LastRolloverAt  time.Time                `json:"lastRolloverAt,omitzero"`
	PollIntervalSec int                      `json:"pollIntervalSec"`
	PollCount       int64                    `json:"pollCount"`
	Backend         string                   `json:"backend"`
	Summary         Snapshot                 `json:"summary"`
	Categories      []model.CategorySpending `json:"categories"`
	LastError       string                   `json:"lastError,omitempty"`
	EventCount      int                      `json:"eventCount"`
	SubscriberCount int                      `json:"subscriberCount"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg      Config
	repo     budget.Repository
	rollover *budget.Rollover
	notifier notify.Notifier
	logger   *log.Logger
	now      func() time.Time

	mu             sync.RWMutex
	startedAt      time.Time
	lastPollAt     time.Time
	lastRolloverAt time.Time
	pollCount      int64
	lastError      string
	hasBudget      bool
	budget         model.BudgetData
	snapshot       Snapshot
	categories     []model.CategorySpending
	nextEventID    int64
	events         []notify.Event

	nextSubID int
	subs      map[int]chan notify.Event

	outbox chan notify.Event
}

// New returns a new daemon service. notifier may be nil.
func New(cfg Config, repo budget.Repository, notifier notify.Notifier, logger *log.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8765"
	}
	if cfg.RolloverSchedule == "" {
		cfg.RolloverSchedule = "0 9 1 * *"
	}
	if logger == nil {
		logger = log.For(log.ComponentDaemon)
	}
	if notifier == nil {
		notifier = notify.Multi{}
	}

	return &Service{
		cfg:       cfg,
		repo:      repo,
		rollover:  budget.NewRollover(repo, logger.WithComponent(log.ComponentBudget)),
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan notify.Event),
		outbox:    make(chan notify.Event, 64),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run serves HTTP, polls the repository, schedules rollover checks and
// delivers notifications until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	schedule, err := cron.ParseStandard(s.cfg.RolloverSchedule)
	if err != nil {
		return fmt.Errorf("rollover schedule %q: %w", s.cfg.RolloverSchedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		// A month may have turned while the daemon was down.
		s.checkRollover(ctx)
		s.pollOnce(ctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(ctx)
			}
		}
	})

	g.Go(func() error {
		c := cron.New()
		c.Schedule(schedule, cron.FuncJob(func() { s.checkRollover(ctx) }))
		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	})

	g.Go(func() error {
		s.deliver(ctx)
		return nil
	})

	s.logger.Info("daemon started",
		"addr", s.cfg.Addr,
		"interval", s.cfg.Interval.String(),
		"rollover_schedule", s.cfg.RolloverSchedule,
	)

	return g.Wait()
}

func (s *Service) deliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.outbox:
			if err := s.notifier.Notify(ctx, ev); err != nil {
				s.logger.Warn("notification failed", "event_id", ev.ID, "type", ev.Type, log.FieldError, err)
			}
		}
	}
}

func (s *Service) checkRollover(ctx context.Context) {
	now := s.now()
	res, err := s.rollover.Check(ctx, now)
	if errors.Is(err, budget.ErrNoBudget) {
		return
	}
	if err != nil {
		s.setError(err)
		s.logger.Error("rollover check failed", log.FieldError, err)
		return
	}
	if !res.Reset {
		return
	}

	s.mu.Lock()
	s.lastRolloverAt = now
	s.applyBudget(res.Budget, now)
	s.mu.Unlock()

	rec := res.Record
	s.publishEvent(notify.Event{
		Type:    notify.EventRollover,
		Period:  rec.Key(),
		Amount:  rec.TotalRemaining,
		Message: rolloverMessage(rec),
	})
}

func rolloverMessage(rec model.MonthlyRecord) string {
	if rec.TotalRemaining >= 0 {
		return fmt.Sprintf("Month %s closed with %.2f left over", rec.Key(), rec.TotalRemaining)
	}
	return fmt.Sprintf("Month %s closed %.2f over budget", rec.Key(), -rec.TotalRemaining)
}

func (s *Service) pollOnce(ctx context.Context) {
	b, err := s.repo.Load(ctx)
	now := s.now()
	if err != nil {
		if !errors.Is(err, budget.ErrNoBudget) {
			s.setError(err)
			s.logger.Warn("poll failed", log.FieldError, err)
		}
		s.mu.Lock()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	prev := s.budget
	hadBudget := s.hasBudget
	if hadBudget && periodBefore(b, prev) {
		// A rollover landed while this load was in flight.
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.logger.Debug("discarded stale poll", log.FieldPeriod, model.PeriodKey(b.Year, b.Month))
		return
	}
	s.applyBudget(b, now)
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	snap := s.snapshot
	s.mu.Unlock()

	if !hadBudget {
		s.publishEvent(notify.Event{
			Type:    notify.EventSnapshot,
			Period:  snap.Period,
			Amount:  snap.TotalSpent,
			Message: fmt.Sprintf("Tracking %s: %.2f of %.2f spent", snap.Period, snap.TotalSpent, snap.TotalBudget),
		})
		return
	}
	for _, ev := range diffBudgets(prev, b) {
		s.publishEvent(ev)
	}
}

func periodBefore(a, b model.BudgetData) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Month < b.Month
}

// applyBudget recomputes the derived views. Caller holds s.mu.
func (s *Service) applyBudget(b model.BudgetData, now time.Time) {
	s.hasBudget = true
	s.budget = b
	s.categories = budget.ComputeAllSpending(b.Categories, b.Expenses, b.TotalBudget)
	s.snapshot = snapshotFromBudget(b, now)
}

func (s *Service) setError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}

func snapshotFromBudget(b model.BudgetData, at time.Time) Snapshot {
	a := budget.ComputeAnalytics(b.Categories, b.Expenses, b.TotalBudget, at)
	return Snapshot{
		At:                  at,
		Period:              model.PeriodKey(b.Year, b.Month),
		TotalBudget:         b.TotalBudget,
		TotalSpent:          a.TotalSpent,
		Remaining:           budget.RoundCents(b.TotalBudget - a.TotalSpent),
		ExpenseCount:        len(b.Expenses),
		CategoriesOverspent: a.CategoriesOverspent,
		DailyAverage:        a.DailyAverage,
		WeeklyTrend:         a.WeeklyTrend,
		MonthlyProjection:   a.MonthlyProjection,
	}
}

// diffBudgets lists the events that explain the change from prev to curr.
// A period change is reported as a single rollover event.
func diffBudgets(prev, curr model.BudgetData) []notify.Event {
	period := model.PeriodKey(curr.Year, curr.Month)
	if prev.Year != curr.Year || prev.Month != curr.Month {
		return []notify.Event{{
			Type:    notify.EventRollover,
			Period:  period,
			Message: fmt.Sprintf("Budget rolled over from %s to %s", model.PeriodKey(prev.Year, prev.Month), period),
		}}
	}

	var events []notify.Event

	before := make(map[string]model.Expense, len(prev.Expenses))
	for _, e := range prev.Expenses {
		before[e.ID] = e
	}
	after := make(map[string]bool, len(curr.Expenses))
	for _, e := range curr.Expenses {
		after[e.ID] = true
		if _, ok := before[e.ID]; ok {
			continue
		}
		events = append(events, expenseEvent(notify.EventExpenseAdded, e, curr, period))
	}
	for _, e := range prev.Expenses {
		if !after[e.ID] {
			events = append(events, expenseEvent(notify.EventExpenseRemoved, e, prev, period))
		}
	}

	wasOver := make(map[string]bool, len(prev.Categories))
	for _, cs := range budget.ComputeAllSpending(prev.Categories, prev.Expenses, prev.TotalBudget) {
		wasOver[cs.CategoryID] = cs.IsOverspent
	}
	for _, cs := range budget.ComputeAllSpending(curr.Categories, curr.Expenses, curr.TotalBudget) {
		if cs.IsOverspent && !wasOver[cs.CategoryID] {
			events = append(events, notify.Event{
				Type:         notify.EventCategoryOverspent,
				Period:       period,
				CategoryID:   cs.CategoryID,
				CategoryName: cs.CategoryName,
				Amount:       cs.OverspentAmount,
				Message:      fmt.Sprintf("%s is %.2f over its %.2f limit", cs.CategoryName, cs.OverspentAmount, cs.Limit),
			})
		}
	}

	return events
}

func expenseEvent(typ string, e model.Expense, b model.BudgetData, period string) notify.Event {
	name := e.CategoryID
	if c, ok := b.Category(e.CategoryID); ok {
		name = c.Name
	}
	verb := "added"
	if typ == notify.EventExpenseRemoved {
		verb = "removed"
	}
	msg := fmt.Sprintf("%.2f %s in %s", e.Amount, verb, name)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return notify.Event{
		Type:         typ,
		Period:       period,
		CategoryID:   e.CategoryID,
		CategoryName: name,
		ExpenseID:    e.ID,
		Amount:       e.Amount,
		Message:      msg,
	}
}

func (s *Service) publishEvent(ev notify.Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()

	if ev.Type == notify.EventSnapshot {
		return
	}
	select {
	case s.outbox <- ev:
	default:
		s.logger.Warn("notification queue full, dropping event", "event_id", ev.ID, "type", ev.Type)
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		LastRolloverAt:  s.lastRolloverAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Backend:         s.cfg.Backend,
		Summary:         s.snapshot,
		Categories:      append([]model.CategorySpending(nil), s.categories...),
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.repo.LoadHistory(r.Context())
	if err != nil {
		s.logger.Warn("loading history failed", log.FieldError, err)
		http.Error(w, "loading history failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(budget.Summarize(records, s.now()))
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]notify.Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan notify.Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current state immediately.
	summary := s.snapshotStatus().Summary
	writeSSE(w, "status", summary)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev.Type, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan notify.Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
