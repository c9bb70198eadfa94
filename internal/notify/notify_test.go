package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rabbitmq/amqp091-go"

	"github.com/theirongolddev/mobius/internal/log"
)

type recorder struct {
	events []Event
	err    error
	closed bool
}

func (r *recorder) Notify(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestMulti_ContinuesPastFailures(t *testing.T) {
	failing := &recorder{err: errors.New("boom")}
	ok := &recorder{}
	m := Multi{failing, ok}

	err := m.Notify(context.Background(), Event{ID: 1, Type: EventRollover})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Notify err = %v, want boom", err)
	}
	if len(ok.events) != 1 {
		t.Fatal("second notifier skipped after first failed")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !failing.closed || !ok.closed {
		t.Fatal("Close did not reach every notifier")
	}
}

func TestFilter(t *testing.T) {
	r := &recorder{}
	n := Filter(r, EventRollover, EventCategoryOverspent)
	ctx := context.Background()

	_ = n.Notify(ctx, Event{Type: EventExpenseAdded})
	_ = n.Notify(ctx, Event{Type: EventRollover})
	_ = n.Notify(ctx, Event{Type: EventCategoryOverspent})

	if len(r.events) != 2 {
		t.Fatalf("got %d events, want 2", len(r.events))
	}
}

func TestLogNotifier(t *testing.T) {
	n := NewLog(log.Discard())
	if err := n.Notify(context.Background(), Event{Type: EventSnapshot}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}

func TestFormatText(t *testing.T) {
	got := FormatText(Event{Type: EventCategoryOverspent, Message: "Svago over limit", Period: "2025-03"})
	if got != "⚠️ Svago over limit [2025-03]" {
		t.Fatalf("FormatText = %q", got)
	}
}

type fakeChannel struct {
	exchange, key string
	msg           amqp091.Publishing
	closed        bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQP_Notify(t *testing.T) {
	ch := &fakeChannel{}
	a := &AMQP{channel: ch, exchange: "mobius", queue: "mobius.events", logger: log.Discard()}

	ev := Event{ID: 7, Type: EventExpenseAdded, Timestamp: time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC), Amount: 12.5}
	if err := a.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if ch.exchange != "mobius" || ch.key != "mobius.events" {
		t.Fatalf("published to %s/%s", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp091.Persistent || ch.msg.ContentType != "application/json" || ch.msg.MessageId != "7" {
		t.Fatalf("publishing = %+v", ch.msg)
	}
	var got Event
	if err := json.Unmarshal(ch.msg.Body, &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if got.Amount != 12.5 || got.Type != EventExpenseAdded {
		t.Fatalf("decoded body = %+v", got)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ch.closed {
		t.Fatal("channel not closed")
	}
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func TestTelegram_Notify(t *testing.T) {
	bot := &fakeBot{}
	tg := &Telegram{bot: bot, chatID: 99}

	_ = tg.Notify(context.Background(), Event{Type: EventRollover, Message: "Marzo archiviato"})
	_ = tg.Notify(context.Background(), Event{Type: EventExpenseAdded, Message: "12,50 € Svago"})

	if len(bot.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(bot.sent))
	}
	if bot.sent[0].ChatID != 99 || !strings.Contains(bot.sent[0].Text, "Marzo archiviato") {
		t.Fatalf("first message = %+v", bot.sent[0])
	}
	if bot.sent[0].DisableNotification || !bot.sent[1].DisableNotification {
		t.Fatal("only expense events should be silent")
	}
}
