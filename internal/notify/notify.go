// Package notify delivers budget events to external sinks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/mobius/internal/log"
)

// Event types.
const (
	EventSnapshot          = "snapshot"
	EventExpenseAdded      = "expense_added"
	EventExpenseRemoved    = "expense_removed"
	EventCategoryOverspent = "category_overspent"
	EventRollover          = "rollover"
)

// Event is a change observed in the budget.
type Event struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	Period       string    `json:"period"`
	CategoryID   string    `json:"categoryId,omitempty"`
	CategoryName string    `json:"categoryName,omitempty"`
	ExpenseID    string    `json:"expenseId,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
	Message      string    `json:"message"`
}

// Notifier delivers events to one sink.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

// Notify sends ev to every notifier, continuing past failures.
func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every notifier.
func (m Multi) Close() error {
	var errs []error
	for _, n := range m {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Filter wraps a notifier so it only receives the listed event types.
func Filter(n Notifier, types ...string) Notifier {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return &filtered{next: n, allowed: allowed}
}

type filtered struct {
	next    Notifier
	allowed map[string]bool
}

func (f *filtered) Notify(ctx context.Context, ev Event) error {
	if !f.allowed[ev.Type] {
		return nil
	}
	return f.next.Notify(ctx, ev)
}

func (f *filtered) Close() error { return f.next.Close() }

// Log writes events to a logger. It is always installed so events are
// visible even without external sinks.
type Log struct {
	logger *log.Logger
}

// NewLog returns a notifier that logs through logger.
func NewLog(logger *log.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, ev Event) error {
	l.logger.InfoContext(ctx, "budget event",
		"event_id", ev.ID,
		"type", ev.Type,
		log.FieldPeriod, ev.Period,
		"message", ev.Message,
	)
	return nil
}

func (l *Log) Close() error { return nil }

// FormatText renders ev as a short human-readable message.
func FormatText(ev Event) string {
	var b strings.Builder
	switch ev.Type {
	case EventExpenseAdded:
		b.WriteString("💸 ")
	case EventExpenseRemoved:
		b.WriteString("🗑 ")
	case EventCategoryOverspent:
		b.WriteString("⚠️ ")
	case EventRollover:
		b.WriteString("📅 ")
	}
	b.WriteString(ev.Message)
	if ev.Period != "" {
		fmt.Fprintf(&b, " [%s]", ev.Period)
	}
	return b.String()
}
